// Package vci provides a client for the VCI market-data API. VCI serves
// financial statements as grouped line items (a two-level group/field
// hierarchy, headers partly in Vietnamese) and the ICB listing catalog used
// for peer resolution.
package vci

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

// Statement kinds accepted by Statements.
const (
	KindIncome   = "income"
	KindBalance  = "balance"
	KindCashFlow = "cashflow"
	KindRatio    = "ratio"
)

// Reporting periods accepted by Statements.
const (
	PeriodYear    = "year"
	PeriodQuarter = "quarter"
)

// Client defines the VCI operations the aggregator consumes.
type Client interface {
	// Statements fetches one kind's rows. Each row is a reporting period
	// with its grouped line items; the caller flattens and maps them.
	Statements(ctx context.Context, ticker, kind, period string) ([]StatementRow, error)
	// SymbolsByIndustry returns every listed symbol with its ICB codes.
	SymbolsByIndustry(ctx context.Context) ([]IndustrySymbol, error)
	// Industries returns the ICB classification catalog.
	Industries(ctx context.Context) ([]Industry, error)
}

// StatementRow is one reporting period's grouped line items.
type StatementRow struct {
	YearReport   int    `json:"yearReport"`
	LengthReport int    `json:"lengthReport"`
	Items        []Item `json:"items"`
}

// Item is one line item. Group is empty for ungrouped columns; headers
// arrive in whatever Unicode form VCI emits, normalization is the caller's
// concern. Value is float64, string or nil after JSON decoding.
type Item struct {
	Group string `json:"group"`
	Field string `json:"field"`
	Value any    `json:"value"`
}

// IndustrySymbol is one listing roster entry.
type IndustrySymbol struct {
	Symbol   string `json:"symbol"`
	ICBCode2 string `json:"icbCode2"`
	ICBCode3 string `json:"icbCode3"`
	ICBCode4 string `json:"icbCode4"`
}

// Industry is one ICB catalog entry.
type Industry struct {
	ICBCode string `json:"icbCode"`
	Name    string `json:"icbName"`
	EnName  string `json:"enIcbName"`
	Level   int    `json:"level"`
}

// Option configures the VCI client.
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

// WithRateLimit caps outgoing requests per second.
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

// NewClient creates a VCI client with default rate limiting.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://api.vietcap.com.vn",
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

// StatusError reports a non-200 response from the VCI API. Callers use
// errors.As to recover the status code after eris wrapping.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

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
		return eris.Wrap(err, "vci: create request")
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
			return eris.Wrapf(lastErr, "vci: GET %s", path)
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return eris.Wrap(readErr, "vci: read response body")
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
			return eris.Wrapf(&StatusError{Code: resp.StatusCode, Body: string(body)}, "vci: GET %s", path)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return eris.Wrapf(err, "vci: unmarshal %s", path)
		}
		return nil
	}

	return eris.Wrapf(lastErr, "vci: GET %s", path)
}

func (c *httpClient) Statements(ctx context.Context, ticker, kind, period string) ([]StatementRow, error) {
	var out struct {
		Data []StatementRow `json:"data"`
	}
	path := fmt.Sprintf("/api/v2/company/%s/financial-statements?kind=%s&period=%s", ticker, kind, period)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *httpClient) SymbolsByIndustry(ctx context.Context) ([]IndustrySymbol, error) {
	var out struct {
		Data []IndustrySymbol `json:"data"`
	}
	if err := c.getJSON(ctx, "/api/v2/listing/symbols-by-industry", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *httpClient) Industries(ctx context.Context) ([]Industry, error) {
	var out struct {
		Data []Industry `json:"data"`
	}
	if err := c.getJSON(ctx, "/api/v2/listing/industries", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
