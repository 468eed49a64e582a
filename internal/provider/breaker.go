package provider

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/richslow/vnmarket/internal/resilience"
	"github.com/richslow/vnmarket/pkg/tcbs"
	"github.com/richslow/vnmarket/pkg/vci"
)

// NewBreaker builds a circuit breaker for the named upstream. Only upstream
// faults trip it: transient network failures and retryable HTTP statuses.
// A 404 for an unknown ticker leaves the circuit closed.
func NewBreaker(name string, cfg resilience.CircuitBreakerConfig) *resilience.CircuitBreaker {
	cfg.ShouldTrip = upstreamFault
	cfg.OnStateChange = func(from, to resilience.CircuitState) {
		zap.L().Warn("circuit state changed",
			zap.String("provider", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()))
	}
	return resilience.NewCircuitBreaker(cfg)
}

func upstreamFault(err error) bool {
	var tse *tcbs.StatusError
	if errors.As(err, &tse) {
		return resilience.IsTransientHTTPStatus(tse.Code)
	}
	var vse *vci.StatusError
	if errors.As(err, &vse) {
		return resilience.IsTransientHTTPStatus(vse.Code)
	}
	return resilience.IsTransient(err)
}

// GuardTCBS wraps a TCBS client so every call flows through the circuit
// breaker. When the circuit is open, calls fail fast with ErrCircuitOpen
// instead of stacking retries against a dead upstream during the benchmark
// fan-out.
func GuardTCBS(client tcbs.Client, cb *resilience.CircuitBreaker) tcbs.Client {
	return &guardedTCBS{client: client, cb: cb}
}

type guardedTCBS struct {
	client tcbs.Client
	cb     *resilience.CircuitBreaker
}

func (g *guardedTCBS) Overview(ctx context.Context, ticker string) (*tcbs.Overview, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) (*tcbs.Overview, error) {
		return g.client.Overview(ctx, ticker)
	})
}

func (g *guardedTCBS) Profile(ctx context.Context, ticker string) (*tcbs.Profile, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) (*tcbs.Profile, error) {
		return g.client.Profile(ctx, ticker)
	})
}

func (g *guardedTCBS) Shareholders(ctx context.Context, ticker string) ([]tcbs.Shareholder, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) ([]tcbs.Shareholder, error) {
		return g.client.Shareholders(ctx, ticker)
	})
}

func (g *guardedTCBS) Officers(ctx context.Context, ticker string) ([]tcbs.Officer, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) ([]tcbs.Officer, error) {
		return g.client.Officers(ctx, ticker)
	})
}

func (g *guardedTCBS) Subsidiaries(ctx context.Context, ticker string) ([]tcbs.Subsidiary, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) ([]tcbs.Subsidiary, error) {
		return g.client.Subsidiaries(ctx, ticker)
	})
}

func (g *guardedTCBS) Dividends(ctx context.Context, ticker string) ([]tcbs.Dividend, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) ([]tcbs.Dividend, error) {
		return g.client.Dividends(ctx, ticker)
	})
}

func (g *guardedTCBS) InsiderDeals(ctx context.Context, ticker string) ([]tcbs.InsiderDeal, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) ([]tcbs.InsiderDeal, error) {
		return g.client.InsiderDeals(ctx, ticker)
	})
}

func (g *guardedTCBS) Events(ctx context.Context, ticker string) ([]tcbs.Event, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) ([]tcbs.Event, error) {
		return g.client.Events(ctx, ticker)
	})
}

func (g *guardedTCBS) News(ctx context.Context, ticker string) ([]tcbs.News, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) ([]tcbs.News, error) {
		return g.client.News(ctx, ticker)
	})
}

func (g *guardedTCBS) Prices(ctx context.Context, ticker string, from, to time.Time) ([]tcbs.PriceBar, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) ([]tcbs.PriceBar, error) {
		return g.client.Prices(ctx, ticker, from, to)
	})
}

func (g *guardedTCBS) Statements(ctx context.Context, ticker string, report tcbs.Report, yearly bool) ([]map[string]any, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) ([]map[string]any, error) {
		return g.client.Statements(ctx, ticker, report, yearly)
	})
}

// GuardVCI wraps a VCI client the same way.
func GuardVCI(client vci.Client, cb *resilience.CircuitBreaker) vci.Client {
	return &guardedVCI{client: client, cb: cb}
}

type guardedVCI struct {
	client vci.Client
	cb     *resilience.CircuitBreaker
}

func (g *guardedVCI) Statements(ctx context.Context, ticker, kind, period string) ([]vci.StatementRow, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) ([]vci.StatementRow, error) {
		return g.client.Statements(ctx, ticker, kind, period)
	})
}

func (g *guardedVCI) SymbolsByIndustry(ctx context.Context) ([]vci.IndustrySymbol, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) ([]vci.IndustrySymbol, error) {
		return g.client.SymbolsByIndustry(ctx)
	})
}

func (g *guardedVCI) Industries(ctx context.Context) ([]vci.Industry, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) ([]vci.Industry, error) {
		return g.client.Industries(ctx)
	})
}
