// Package benchmark computes cross-company statistical summaries of
// financial ratios over a peer group. It is the most failure-prone path in
// the system: peer counts range from single digits to hundreds and upstream
// reliability varies, so every per-peer failure is recorded and excluded
// rather than propagated.
package benchmark

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/richslow/vnmarket/internal/model"
)

// RatioSource fetches one peer's most recent canonical ratio map.
type RatioSource interface {
	LatestRatios(ctx context.Context, ticker string) (map[string]float64, error)
}

// Config tunes the engine.
type Config struct {
	// MinSamples is the minimum successful sample count for a ratio to be
	// emitted. Ratios below it are omitted entirely, never returned as
	// degenerate statistics.
	MinSamples int
	// Concurrency caps in-flight peer fetches. A tuning knob for upstream
	// rate limits, not a correctness requirement.
	Concurrency int
	// PeerTimeout bounds each individual peer fetch. A timed-out peer is
	// excluded like any other failed peer.
	PeerTimeout time.Duration
}

// DefaultConfig mirrors the thresholds the dashboard has always used.
func DefaultConfig() Config {
	return Config{
		MinSamples:  5,
		Concurrency: 8,
		PeerTimeout: 15 * time.Second,
	}
}

// Engine computes benchmarks for a resolved peer group.
type Engine struct {
	source RatioSource
	cfg    Config
}

// NewEngine wires an Engine.
func NewEngine(source RatioSource, cfg Config) *Engine {
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = 1
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Engine{source: source, cfg: cfg}
}

// Compute fetches every group member's ratios concurrently (bounded by
// Concurrency) and aggregates per-ratio statistics for ratioNames. One bad
// peer never aborts the computation: its samples are tagged failed and
// excluded. The only error returned is context cancellation.
func (e *Engine) Compute(ctx context.Context, group *model.PeerGroup, ratioNames []string) (*model.BenchmarkReport, error) {
	log := zap.L().With(
		zap.String("subject", group.Subject),
		zap.String("industry_code", group.Code),
		zap.Int("members", len(group.Members)),
	)

	var mu sync.Mutex
	samples := make(map[string][]model.RatioSample, len(ratioNames))
	analyzed := 0

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	for _, ticker := range group.Members {
		g.Go(func() error {
			fetchCtx := gCtx
			if e.cfg.PeerTimeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(gCtx, e.cfg.PeerTimeout)
				defer cancel()
			}

			ratios, err := e.source.LatestRatios(fetchCtx, ticker)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Debug("benchmark: peer excluded", zap.String("peer", ticker), zap.Error(err))
				for _, name := range ratioNames {
					samples[name] = append(samples[name], model.RatioSample{Ticker: ticker, Err: err.Error()})
				}
				return nil
			}

			analyzed++
			for _, name := range ratioNames {
				v, ok := ratios[name]
				if !ok {
					continue // absent ratio, not a failed peer
				}
				samples[name] = append(samples[name], model.RatioSample{Ticker: ticker, Value: v, OK: true})
			}
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	report := &model.BenchmarkReport{
		IndustryName:      group.Name,
		IndustryCode:      group.Code,
		CompanyCount:      len(group.Members),
		CompaniesAnalyzed: analyzed,
		Benchmarks:        make(map[string]model.Benchmark, len(ratioNames)),
	}

	for _, name := range ratioNames {
		values := make([]float64, 0, len(samples[name]))
		for _, s := range samples[name] {
			if s.OK {
				values = append(values, s.Value)
			}
		}
		if len(values) < e.cfg.MinSamples {
			continue
		}
		mean, median, p25, p75, std := summarize(values)
		report.Benchmarks[name] = model.Benchmark{
			Mean:   mean,
			Median: median,
			P25:    p25,
			P75:    p75,
			Std:    std,
			Count:  len(values),
		}
	}

	report.RatiosAvailable = make([]string, 0, len(report.Benchmarks))
	for name := range report.Benchmarks {
		report.RatiosAvailable = append(report.RatiosAvailable, name)
	}
	sort.Strings(report.RatiosAvailable)

	log.Info("benchmark: computed",
		zap.Int("companies_analyzed", analyzed),
		zap.Int("ratios_available", len(report.RatiosAvailable)),
	)

	return report, nil
}

// DefaultRatioNames is the ratio set the dashboard benchmarks by default.
var DefaultRatioNames = []string{
	"pe_ratio", "pb_ratio", "ps_ratio", "ev_ebitda",
	"roe", "roa", "roic",
	"gross_profit_margin", "operating_margin", "net_profit_margin",
	"asset_turnover", "inventory_turnover", "average_collection_days",
	"debt_to_equity", "debt_to_assets",
	"current_ratio", "quick_ratio",
	"cash_conversion_cycle",
}
