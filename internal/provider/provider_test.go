package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richslow/vnmarket/internal/mapper"
	"github.com/richslow/vnmarket/internal/model"
	"github.com/richslow/vnmarket/pkg/tcbs"
	"github.com/richslow/vnmarket/pkg/vci"
)

type fakeVCI struct {
	rows       []vci.StatementRow
	symbols    []vci.IndustrySymbol
	industries []vci.Industry
}

func (f *fakeVCI) Statements(ctx context.Context, ticker, kind, period string) ([]vci.StatementRow, error) {
	return f.rows, nil
}

func (f *fakeVCI) SymbolsByIndustry(ctx context.Context) ([]vci.IndustrySymbol, error) {
	return f.symbols, nil
}

func (f *fakeVCI) Industries(ctx context.Context) ([]vci.Industry, error) {
	return f.industries, nil
}

type fakeTCBS struct {
	tcbs.Client

	statements []map[string]any
	deals      []tcbs.InsiderDeal
	bars       []tcbs.PriceBar
	pricesFrom time.Time
	pricesTo   time.Time
}

func (f *fakeTCBS) Statements(ctx context.Context, ticker string, report tcbs.Report, yearly bool) ([]map[string]any, error) {
	return f.statements, nil
}

func (f *fakeTCBS) InsiderDeals(ctx context.Context, ticker string) ([]tcbs.InsiderDeal, error) {
	return f.deals, nil
}

func (f *fakeTCBS) Prices(ctx context.Context, ticker string, from, to time.Time) ([]tcbs.PriceBar, error) {
	f.pricesFrom, f.pricesTo = from, to
	return f.bars, nil
}

func TestVCIStatements_WrapsRowsAsTwoLevelRecords(t *testing.T) {
	t.Parallel()

	client := &fakeVCI{rows: []vci.StatementRow{
		{
			YearReport:   2024,
			LengthReport: 5,
			Items: []vci.Item{
				{Group: "Chỉ tiêu định giá", Field: "P/E", Value: 14.1},
				{Group: "", Field: "Revenue (Bn. VND)", Value: 62849.0},
			},
		},
	}}

	recs, err := NewVCIStatements(client).Statements(context.Background(), "FPT", model.PeriodYear, model.KindRatio)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	flat := mapper.Flatten(recs[0], "_")
	assert.Equal(t, 2024, flat["yearReport"])
	assert.Equal(t, 5, flat["lengthReport"])
	assert.Equal(t, 14.1, flat["Chỉ tiêu định giá_P/E"])
	assert.Equal(t, 62849.0, flat["Revenue (Bn. VND)"])
}

func TestTCBSStatements_RawRecords(t *testing.T) {
	t.Parallel()

	client := &fakeTCBS{statements: []map[string]any{
		{"year": float64(2024), "quarter": float64(0), "revenue": float64(62849)},
	}}

	recs, err := NewTCBSStatements(client).Statements(context.Background(), "FPT", model.PeriodYear, model.KindIncome)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, float64(62849), recs[0]["revenue"])
}

func TestCompany_InsiderDealNumbers(t *testing.T) {
	t.Parallel()

	price := tcbs.Number(91500)
	client := &fakeTCBS{deals: []tcbs.InsiderDeal{
		{AnnounceDate: "25/07/25", Action: "Bán", Quantity: 150000, Price: &price, Ratio: nil},
	}}

	deals, err := NewCompany(client, 0).InsiderDeals(context.Background(), "VCB")
	require.NoError(t, err)
	require.Len(t, deals, 1)
	require.NotNil(t, deals[0].Price)
	assert.Equal(t, 91500.0, *deals[0].Price)
	assert.Nil(t, deals[0].Ratio)
}

func TestCompany_PricesLookbackWindow(t *testing.T) {
	t.Parallel()

	client := &fakeTCBS{bars: []tcbs.PriceBar{
		{TradingDate: "2025-08-25T00:00:00.000Z", Open: 26.9, Close: 27.1, Volume: 1000},
	}}

	c := NewCompany(client, 30*24*time.Hour)
	now := time.Date(2025, 8, 26, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	bars, err := c.Prices(context.Background(), "HPG")
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 27.1, bars[0].Close)
	assert.Equal(t, now, client.pricesTo)
	assert.Equal(t, now.Add(-30*24*time.Hour), client.pricesFrom)
}

func TestListing_IndustryNameFallback(t *testing.T) {
	t.Parallel()

	client := &fakeVCI{industries: []vci.Industry{
		{ICBCode: "8355", Name: "Ngân hàng", EnName: "Banks"},
		{ICBCode: "8637", Name: "Bất động sản", EnName: ""},
	}}

	catalog, err := NewListing(client).Industries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Banks", catalog["8355"])
	assert.Equal(t, "Bất động sản", catalog["8637"])
}
