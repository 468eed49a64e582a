// Package tcbs provides a client for the TCBS public market-data API. TCBS
// serves flat camelCase records: company detail, corporate actions, daily
// price bars and the four financial-statement reports.
package tcbs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Report selects one of the financial-statement endpoints.
type Report string

const (
	ReportIncome   Report = "incomestatement"
	ReportBalance  Report = "balancesheet"
	ReportCashFlow Report = "cashflow"
	ReportRatio    Report = "financialratio"
)

// Client defines the TCBS operations the aggregator consumes.
type Client interface {
	// Overview fetches the company summary, including the ICB industry code.
	Overview(ctx context.Context, ticker string) (*Overview, error)
	// Profile fetches the long-form company description.
	Profile(ctx context.Context, ticker string) (*Profile, error)
	Shareholders(ctx context.Context, ticker string) ([]Shareholder, error)
	Officers(ctx context.Context, ticker string) ([]Officer, error)
	Subsidiaries(ctx context.Context, ticker string) ([]Subsidiary, error)
	Dividends(ctx context.Context, ticker string) ([]Dividend, error)
	InsiderDeals(ctx context.Context, ticker string) ([]InsiderDeal, error)
	Events(ctx context.Context, ticker string) ([]Event, error)
	News(ctx context.Context, ticker string) ([]News, error)
	// Prices fetches daily OHLCV bars for the date range.
	Prices(ctx context.Context, ticker string, from, to time.Time) ([]PriceBar, error)
	// Statements fetches one report's rows as raw flat records. Keys are
	// TCBS camelCase column names; the caller maps them to canonical fields.
	Statements(ctx context.Context, ticker string, report Report, yearly bool) ([]map[string]any, error)
}

// Overview mirrors /tcanalysis/v1/ticker/{ticker}/overview.
type Overview struct {
	Ticker           string  `json:"ticker"`
	Exchange         string  `json:"exchange"`
	Industry         string  `json:"industry"`
	IndustryID       int     `json:"industryID"`
	IndustryIDv2     string  `json:"industryIDv2"`
	CompanyType      string  `json:"companyType"`
	ShortName        string  `json:"shortName"`
	Website          string  `json:"website"`
	EstablishedYear  string  `json:"establishedYear"`
	NoShareholders   int     `json:"noShareholders"`
	NoEmployees      int     `json:"noEmployees"`
	ForeignPercent   float64 `json:"foreignPercent"`
	OutstandingShare float64 `json:"outstandingShare"`
	IssueShare       float64 `json:"issueShare"`
	StockRating      float64 `json:"stockRating"`
	DeltaInWeek      float64 `json:"deltaInWeek"`
	DeltaInMonth     float64 `json:"deltaInMonth"`
	DeltaInYear      float64 `json:"deltaInYear"`
}

// Profile mirrors /tcanalysis/v1/company/{ticker}/overview.
type Profile struct {
	CompanyName        string `json:"companyName"`
	CompanyProfile     string `json:"companyProfile"`
	HistoryDev         string `json:"historyDev"`
	CompanyPromise     string `json:"companyPromise"`
	BusinessRisk       string `json:"businessRisk"`
	KeyDevelopments    string `json:"keyDevelopments"`
	BusinessStrategies string `json:"businessStrategies"`
}

// Shareholder is one entry of listShareHolder.
type Shareholder struct {
	Name       string  `json:"name"`
	OwnPercent float64 `json:"ownPercent"`
}

// Officer is one entry of listKeyOfficer.
type Officer struct {
	Name       string  `json:"name"`
	Position   string  `json:"position"`
	OwnPercent float64 `json:"ownPercent"`
}

// Subsidiary is one entry of listSubCompany.
type Subsidiary struct {
	CompanyName string  `json:"companyName"`
	OwnPercent  float64 `json:"ownPercent"`
}

// Dividend is one entry of listDividendPaymentHis.
type Dividend struct {
	ExerciseDate        string  `json:"exerciseDate"`
	CashYear            int     `json:"cashYear"`
	CashDividendPercent float64 `json:"cashDividendPercentage"`
	IssueMethod         string  `json:"issueMethod"`
}

// InsiderDeal is one entry of listInsiderDealing.
type InsiderDeal struct {
	AnnounceDate string  `json:"anDate"`
	Method       string  `json:"dealingMethod"`
	Action       string  `json:"dealingAction"`
	Quantity     float64 `json:"quantity"`
	Price        *Number `json:"price"`
	Ratio        *Number `json:"ratio"`
}

// Event is one entry of listEventNews.
type Event struct {
	Name          string `json:"eventName"`
	Code          string `json:"eventCode"`
	Description   string `json:"eventDesc"`
	NotifyDate    string `json:"notifyDate"`
	ExerciseDate  string `json:"exerDate"`
	RegFinalDate  string `json:"regFinalDate"`
	ExerRightDate string `json:"exRightDate"`
}

// News is one entry of listActivityNews.
type News struct {
	Title       string  `json:"title"`
	Source      string  `json:"source"`
	PublishDate string  `json:"publishDate"`
	Price       *Number `json:"price"`
	PriceChange *Number `json:"priceChange"`
}

// PriceBar is one daily OHLCV bar from bars-long-term.
type PriceBar struct {
	TradingDate string `json:"tradingDate"`
	Open        Number `json:"open"`
	High        Number `json:"high"`
	Low         Number `json:"low"`
	Close       Number `json:"close"`
	Volume      Number `json:"volume"`
}

// Option configures the TCBS client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing requests per second. TCBS throttles
// aggressively under the benchmark fan-out without one.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a TCBS client with default rate limiting.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://apipubaws.tcbs.com.vn",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError reports a non-200 response from the TCBS API. Callers use
// errors.As to recover the status code after eris wrapping.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// retryableStatusCode returns true if the HTTP status should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// getJSON performs a rate-limited GET with exponential backoff on transient
// failures and decodes the response into out.
func (c *httpClient) getJSON(ctx context.Context, path string, out any) error {
	const maxAttempts = 3
	backoff := 1 * time.Second

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "tcbs: create request")
	}
	req.Header.Set("Accept", "application/json")

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, doErr := c.http.Do(req.Clone(ctx))
		if doErr != nil {
			lastErr = doErr
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return eris.Wrapf(lastErr, "tcbs: GET %s", path)
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return eris.Wrap(readErr, "tcbs: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = &StatusError{Code: resp.StatusCode, Body: string(body)}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return eris.Wrapf(&StatusError{Code: resp.StatusCode, Body: string(body)}, "tcbs: GET %s", path)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return eris.Wrapf(err, "tcbs: unmarshal %s", path)
		}
		return nil
	}

	return eris.Wrapf(lastErr, "tcbs: GET %s", path)
}

func (c *httpClient) Overview(ctx context.Context, ticker string) (*Overview, error) {
	var out Overview
	if err := c.getJSON(ctx, fmt.Sprintf("/tcanalysis/v1/ticker/%s/overview", ticker), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Profile(ctx context.Context, ticker string) (*Profile, error) {
	var out Profile
	if err := c.getJSON(ctx, fmt.Sprintf("/tcanalysis/v1/company/%s/overview", ticker), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Shareholders(ctx context.Context, ticker string) ([]Shareholder, error) {
	var out struct {
		List []Shareholder `json:"listShareHolder"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/tcanalysis/v1/company/%s/large-share-holders?page=0&size=100", ticker), &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

func (c *httpClient) Officers(ctx context.Context, ticker string) ([]Officer, error) {
	var out struct {
		List []Officer `json:"listKeyOfficer"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/tcanalysis/v1/company/%s/key-officers?page=0&size=100", ticker), &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

func (c *httpClient) Subsidiaries(ctx context.Context, ticker string) ([]Subsidiary, error) {
	var out struct {
		List []Subsidiary `json:"listSubCompany"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/tcanalysis/v1/company/%s/sub-companies?page=0&size=100", ticker), &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

func (c *httpClient) Dividends(ctx context.Context, ticker string) ([]Dividend, error) {
	var out struct {
		List []Dividend `json:"listDividendPaymentHis"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/tcanalysis/v1/company/%s/dividend-payment-histories?page=0&size=50", ticker), &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

func (c *httpClient) InsiderDeals(ctx context.Context, ticker string) ([]InsiderDeal, error) {
	var out struct {
		List []InsiderDeal `json:"listInsiderDealing"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/tcanalysis/v1/company/%s/insider-dealing?page=0&size=50", ticker), &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

func (c *httpClient) Events(ctx context.Context, ticker string) ([]Event, error) {
	var out struct {
		List []Event `json:"listEventNews"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/tcanalysis/v1/ticker/%s/events-news?page=0&size=50", ticker), &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

func (c *httpClient) News(ctx context.Context, ticker string) ([]News, error) {
	var out struct {
		List []News `json:"listActivityNews"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/tcanalysis/v1/ticker/%s/activity-news?page=0&size=50", ticker), &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

func (c *httpClient) Prices(ctx context.Context, ticker string, from, to time.Time) ([]PriceBar, error) {
	var out struct {
		Data []PriceBar `json:"data"`
	}
	path := fmt.Sprintf("/stock-insight/v2/stock/bars-long-term?ticker=%s&type=stock&resolution=D&from=%d&to=%d",
		ticker, from.Unix(), to.Unix())
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *httpClient) Statements(ctx context.Context, ticker string, report Report, yearly bool) ([]map[string]any, error) {
	y := 0
	if yearly {
		y = 1
	}
	var out []map[string]any
	path := fmt.Sprintf("/tcanalysis/v1/finance/%s/%s?yearly=%d&isAll=true", ticker, report, y)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}
