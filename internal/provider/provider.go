// Package provider adapts the upstream API clients to the interfaces the
// core components consume: raw statement feeds for the normalizer, the
// classification roster for the peer resolver, and typed company detail for
// the dashboard.
package provider

import (
	"context"
	"time"

	"github.com/richslow/vnmarket/internal/mapper"
	"github.com/richslow/vnmarket/internal/model"
	"github.com/richslow/vnmarket/internal/peers"
	"github.com/richslow/vnmarket/pkg/tcbs"
	"github.com/richslow/vnmarket/pkg/vci"
)

// TCBSStatements adapts the TCBS flat statement endpoints to the
// normalizer's flat-record feed.
type TCBSStatements struct {
	client tcbs.Client
}

// NewTCBSStatements wires the adapter.
func NewTCBSStatements(client tcbs.Client) *TCBSStatements {
	return &TCBSStatements{client: client}
}

var tcbsReports = map[model.StatementKind]tcbs.Report{
	model.KindIncome:   tcbs.ReportIncome,
	model.KindBalance:  tcbs.ReportBalance,
	model.KindCashFlow: tcbs.ReportCashFlow,
	model.KindRatio:    tcbs.ReportRatio,
}

func (a *TCBSStatements) Statements(ctx context.Context, ticker string, period model.PeriodType, kind model.StatementKind) ([]mapper.RawRecord, error) {
	rows, err := a.client.Statements(ctx, ticker, tcbsReports[kind], period == model.PeriodYear)
	if err != nil {
		return nil, err
	}
	out := make([]mapper.RawRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapper.RawRecord(row))
	}
	return out, nil
}

// VCIStatements adapts the VCI grouped line items to the normalizer's
// two-level record feed. Reporting-period columns arrive as ungrouped
// fields so the period extractor finds them alongside the line items.
type VCIStatements struct {
	client vci.Client
}

// NewVCIStatements wires the adapter.
func NewVCIStatements(client vci.Client) *VCIStatements {
	return &VCIStatements{client: client}
}

var vciKinds = map[model.StatementKind]string{
	model.KindIncome:   vci.KindIncome,
	model.KindBalance:  vci.KindBalance,
	model.KindCashFlow: vci.KindCashFlow,
	model.KindRatio:    vci.KindRatio,
}

var vciPeriods = map[model.PeriodType]string{
	model.PeriodYear:    vci.PeriodYear,
	model.PeriodQuarter: vci.PeriodQuarter,
}

func (a *VCIStatements) Statements(ctx context.Context, ticker string, period model.PeriodType, kind model.StatementKind) ([]mapper.TwoLevelRecord, error) {
	rows, err := a.client.Statements(ctx, ticker, vciKinds[kind], vciPeriods[period])
	if err != nil {
		return nil, err
	}
	out := make([]mapper.TwoLevelRecord, 0, len(rows))
	for _, row := range rows {
		var rec mapper.TwoLevelRecord
		rec.Set("", "yearReport", row.YearReport)
		rec.Set("", "lengthReport", row.LengthReport)
		for _, item := range row.Items {
			rec.Set(item.Group, item.Field, item.Value)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Listing adapts the VCI classification catalog to the peer resolver.
type Listing struct {
	client vci.Client
}

// NewListing wires the adapter.
func NewListing(client vci.Client) *Listing {
	return &Listing{client: client}
}

func (l *Listing) SymbolsByIndustry(ctx context.Context) ([]peers.IndustrySymbol, error) {
	rows, err := l.client.SymbolsByIndustry(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]peers.IndustrySymbol, 0, len(rows))
	for _, row := range rows {
		out = append(out, peers.IndustrySymbol{
			Symbol:   row.Symbol,
			ICBCode2: row.ICBCode2,
			ICBCode3: row.ICBCode3,
			ICBCode4: row.ICBCode4,
		})
	}
	return out, nil
}

// Industries prefers the English ICB name and falls back to Vietnamese.
func (l *Listing) Industries(ctx context.Context) (map[string]string, error) {
	rows, err := l.client.Industries(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		name := row.EnName
		if name == "" {
			name = row.Name
		}
		out[row.ICBCode] = name
	}
	return out, nil
}

// Company adapts the TCBS company-detail endpoints to the dashboard's
// typed model. Prices covers a fixed lookback window ending today.
type Company struct {
	client   tcbs.Client
	lookback time.Duration
	now      func() time.Time
}

// NewCompany wires the adapter. lookback <= 0 defaults to one year.
func NewCompany(client tcbs.Client, lookback time.Duration) *Company {
	if lookback <= 0 {
		lookback = 365 * 24 * time.Hour
	}
	return &Company{client: client, lookback: lookback, now: time.Now}
}

func (c *Company) Overview(ctx context.Context, ticker string) (*model.Overview, error) {
	ov, err := c.client.Overview(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return &model.Overview{
		Ticker:           ov.Ticker,
		Exchange:         ov.Exchange,
		Industry:         ov.Industry,
		IndustryID:       ov.IndustryID,
		IndustryIDv2:     ov.IndustryIDv2,
		CompanyType:      ov.CompanyType,
		ShortName:        ov.ShortName,
		Website:          ov.Website,
		EstablishedYear:  ov.EstablishedYear,
		NoShareholders:   ov.NoShareholders,
		NoEmployees:      ov.NoEmployees,
		ForeignPercent:   ov.ForeignPercent,
		OutstandingShare: ov.OutstandingShare,
		IssueShare:       ov.IssueShare,
		StockRating:      ov.StockRating,
		DeltaInWeek:      ov.DeltaInWeek,
		DeltaInMonth:     ov.DeltaInMonth,
		DeltaInYear:      ov.DeltaInYear,
	}, nil
}

func (c *Company) Profile(ctx context.Context, ticker string) (*model.Profile, error) {
	p, err := c.client.Profile(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return &model.Profile{
		CompanyName:        p.CompanyName,
		CompanyProfile:     p.CompanyProfile,
		HistoryDev:         p.HistoryDev,
		CompanyPromise:     p.CompanyPromise,
		BusinessRisk:       p.BusinessRisk,
		KeyDevelopments:    p.KeyDevelopments,
		BusinessStrategies: p.BusinessStrategies,
	}, nil
}

func (c *Company) Shareholders(ctx context.Context, ticker string) ([]model.Shareholder, error) {
	rows, err := c.client.Shareholders(ctx, ticker)
	if err != nil {
		return nil, err
	}
	out := make([]model.Shareholder, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Shareholder{Name: row.Name, OwnPercent: row.OwnPercent})
	}
	return out, nil
}

func (c *Company) Officers(ctx context.Context, ticker string) ([]model.Officer, error) {
	rows, err := c.client.Officers(ctx, ticker)
	if err != nil {
		return nil, err
	}
	out := make([]model.Officer, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Officer{Name: row.Name, Position: row.Position, OwnPercent: row.OwnPercent})
	}
	return out, nil
}

func (c *Company) Subsidiaries(ctx context.Context, ticker string) ([]model.Subsidiary, error) {
	rows, err := c.client.Subsidiaries(ctx, ticker)
	if err != nil {
		return nil, err
	}
	out := make([]model.Subsidiary, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Subsidiary{Name: row.CompanyName, OwnPercent: row.OwnPercent})
	}
	return out, nil
}

func (c *Company) Dividends(ctx context.Context, ticker string) ([]model.Dividend, error) {
	rows, err := c.client.Dividends(ctx, ticker)
	if err != nil {
		return nil, err
	}
	out := make([]model.Dividend, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Dividend{
			ExerciseDate:        row.ExerciseDate,
			CashYear:            row.CashYear,
			CashDividendPercent: row.CashDividendPercent,
			IssueMethod:         row.IssueMethod,
		})
	}
	return out, nil
}

func (c *Company) InsiderDeals(ctx context.Context, ticker string) ([]model.InsiderDeal, error) {
	rows, err := c.client.InsiderDeals(ctx, ticker)
	if err != nil {
		return nil, err
	}
	out := make([]model.InsiderDeal, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.InsiderDeal{
			AnnounceDate: row.AnnounceDate,
			Method:       row.Method,
			Action:       row.Action,
			Quantity:     row.Quantity,
			Price:        row.Price.Float64(),
			Ratio:        row.Ratio.Float64(),
		})
	}
	return out, nil
}

func (c *Company) Events(ctx context.Context, ticker string) ([]model.Event, error) {
	rows, err := c.client.Events(ctx, ticker)
	if err != nil {
		return nil, err
	}
	out := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Event{
			Name:          row.Name,
			Code:          row.Code,
			Description:   row.Description,
			NotifyDate:    row.NotifyDate,
			ExerciseDate:  row.ExerciseDate,
			RegFinalDate:  row.RegFinalDate,
			ExerRightDate: row.ExerRightDate,
		})
	}
	return out, nil
}

func (c *Company) News(ctx context.Context, ticker string) ([]model.News, error) {
	rows, err := c.client.News(ctx, ticker)
	if err != nil {
		return nil, err
	}
	out := make([]model.News, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.News{
			Title:       row.Title,
			Source:      row.Source,
			PublishDate: row.PublishDate,
			Price:       row.Price.Float64(),
			PriceChange: row.PriceChange.Float64(),
		})
	}
	return out, nil
}

func (c *Company) Prices(ctx context.Context, ticker string) ([]model.PriceBar, error) {
	to := c.now()
	bars, err := c.client.Prices(ctx, ticker, to.Add(-c.lookback), to)
	if err != nil {
		return nil, err
	}
	out := make([]model.PriceBar, 0, len(bars))
	for _, bar := range bars {
		out = append(out, model.PriceBar{
			Date:   bar.TradingDate,
			Open:   float64(bar.Open),
			High:   float64(bar.High),
			Low:    float64(bar.Low),
			Close:  float64(bar.Close),
			Volume: float64(bar.Volume),
		})
	}
	return out, nil
}
