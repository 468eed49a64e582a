package normalize

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/richslow/vnmarket/internal/mapper"
	"github.com/richslow/vnmarket/internal/model"
)

// ErrProviderOutage marks a total dual-provider failure: neither upstream
// returned a single statement record. Single-provider failures degrade to
// nulls and never surface as errors.
var ErrProviderOutage = eris.New("normalize: all statement providers failed")

// FlatProvider is provider A's statement surface: flat raw records.
type FlatProvider interface {
	Statements(ctx context.Context, ticker string, period model.PeriodType, kind model.StatementKind) ([]mapper.RawRecord, error)
}

// HierProvider is provider B's statement surface: two-level records (flat
// upstream columns arrive wrapped in an empty group).
type HierProvider interface {
	Statements(ctx context.Context, ticker string, period model.PeriodType, kind model.StatementKind) ([]mapper.TwoLevelRecord, error)
}

// Service fetches raw statements from both providers and normalizes them.
type Service struct {
	norm *Normalizer
	a    FlatProvider
	b    HierProvider
}

// NewService wires a Service.
func NewService(norm *Normalizer, a FlatProvider, b HierProvider) *Service {
	return &Service{norm: norm, a: a, b: b}
}

// kindRows is one kind's raw material from both sides.
type kindRows struct {
	a []mapper.RawRecord
	b []mapper.TwoLevelRecord
}

// StatementSet fetches and normalizes all four statement kinds for one
// ticker. Per-provider, per-kind failures are logged and degrade to nulls;
// only a total outage of both providers across every kind returns
// ErrProviderOutage.
func (s *Service) StatementSet(ctx context.Context, ticker string, period model.PeriodType) (*model.StatementSet, error) {
	log := zap.L().With(zap.String("ticker", ticker), zap.String("period", string(period)))

	var mu sync.Mutex
	rows := make(map[model.StatementKind]*kindRows, len(model.Kinds))
	anyOK := false

	g, gCtx := errgroup.WithContext(ctx)
	for _, kind := range model.Kinds {
		rows[kind] = &kindRows{}

		g.Go(func() error {
			a, err := s.a.Statements(gCtx, ticker, period, kind)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn("normalize: provider A fetch failed",
					zap.String("kind", string(kind)),
					zap.Error(err),
				)
				return nil
			}
			rows[kind].a = a
			anyOK = true
			return nil
		})

		g.Go(func() error {
			b, err := s.b.Statements(gCtx, ticker, period, kind)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn("normalize: provider B fetch failed",
					zap.String("kind", string(kind)),
					zap.Error(err),
				)
				return nil
			}
			rows[kind].b = b
			anyOK = true
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return nil, eris.Wrap(ctx.Err(), "normalize: statement fetch canceled")
	}
	if !anyOK {
		return nil, ErrProviderOutage
	}

	set := &model.StatementSet{Ticker: ticker, PeriodType: period}
	set.Income = s.norm.Series(ticker, rows[model.KindIncome].a, rows[model.KindIncome].b, model.KindIncome)
	set.Balance = s.norm.Series(ticker, rows[model.KindBalance].a, rows[model.KindBalance].b, model.KindBalance)
	set.CashFlow = s.norm.Series(ticker, rows[model.KindCashFlow].a, rows[model.KindCashFlow].b, model.KindCashFlow)
	set.Ratios = s.norm.Series(ticker, rows[model.KindRatio].a, rows[model.KindRatio].b, model.KindRatio)

	seen := make(map[int]bool)
	for _, stmt := range set.Income {
		if stmt.Period.Year != 0 && !seen[stmt.Period.Year] {
			seen[stmt.Period.Year] = true
			set.Years = append(set.Years, stmt.Period.Year)
		}
	}

	return set, nil
}

// Series fetches and normalizes a single statement kind.
func (s *Service) Series(ctx context.Context, ticker string, period model.PeriodType, kind model.StatementKind) ([]model.Statement, error) {
	var (
		rowsA []mapper.RawRecord
		rowsB []mapper.TwoLevelRecord
		errA  error
		errB  error
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rowsA, errA = s.a.Statements(gCtx, ticker, period, kind)
		return nil
	})
	g.Go(func() error {
		rowsB, errB = s.b.Statements(gCtx, ticker, period, kind)
		return nil
	})
	_ = g.Wait()

	if errA != nil && errB != nil {
		return nil, ErrProviderOutage
	}
	if errA != nil {
		zap.L().Warn("normalize: provider A fetch failed", zap.String("ticker", ticker), zap.Error(errA))
	}
	if errB != nil {
		zap.L().Warn("normalize: provider B fetch failed", zap.String("ticker", ticker), zap.Error(errB))
	}

	return s.norm.Series(ticker, rowsA, rowsB, kind), nil
}

// LatestRatios returns the most recent annual ratio record as a canonical
// name → value map, the shape the benchmark engine samples. Nil canonical
// fields are omitted.
func (s *Service) LatestRatios(ctx context.Context, ticker string) (map[string]float64, error) {
	series, err := s.Series(ctx, ticker, model.PeriodYear, model.KindRatio)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, eris.Errorf("normalize: no ratio records for %s", ticker)
	}

	latest := series[len(series)-1]
	out := make(map[string]float64, len(latest.Fields))
	for name, v := range latest.Fields {
		if v != nil {
			out[name] = *v
		}
	}
	return out, nil
}
