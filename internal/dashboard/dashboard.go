// Package dashboard orchestrates the upstream calls behind one company view.
// Calls run in three ordered tiers: a tier's calls execute concurrently, the
// tier settles when every call has settled, and only then does the next tier
// begin. Later tiers carry the heaviest calls and must not compete with the
// critical tier for upstream rate-limit budget.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/richslow/vnmarket/internal/model"
)

// State is the orchestration state surfaced on every snapshot.
type State string

const (
	StateIdle              State = "idle"
	StateCriticalInFlight  State = "critical_in_flight"
	StateCriticalDone      State = "critical_done"
	StateSecondaryInFlight State = "secondary_in_flight"
	StateSecondaryDone     State = "secondary_done"
	StateDeferredInFlight  State = "deferred_in_flight"
	StateComplete          State = "complete"
)

// Snapshot is one emission of the orchestration. Each emission is a strict
// superset of the previous one: fields are only ever filled in, never
// overwritten with worse data. A failed call leaves its field empty and
// records the failure in Errors keyed by call name.
type Snapshot struct {
	RunID  string `json:"run_id"`
	Ticker string `json:"ticker"`
	State  State  `json:"state"`

	Overview     *model.Overview        `json:"overview,omitempty"`
	Statements   *model.StatementSet    `json:"statements,omitempty"`
	Prices       []model.PriceBar       `json:"prices,omitempty"`
	Profile      *model.Profile         `json:"profile,omitempty"`
	Dividends    []model.Dividend       `json:"dividends,omitempty"`
	InsiderDeals []model.InsiderDeal    `json:"insider_deals,omitempty"`
	Events       []model.Event          `json:"events,omitempty"`
	News         []model.News           `json:"news,omitempty"`
	Subsidiaries []model.Subsidiary     `json:"subsidiaries,omitempty"`
	Shareholders []model.Shareholder    `json:"shareholders,omitempty"`
	Officers     []model.Officer        `json:"officers,omitempty"`
	Benchmark    *model.BenchmarkReport `json:"benchmark,omitempty"`

	Errors map[string]string `json:"errors,omitempty"`
}

func (s *Snapshot) clone() Snapshot {
	out := *s
	out.Errors = make(map[string]string, len(s.Errors))
	for k, v := range s.Errors {
		out.Errors[k] = v
	}
	return out
}

// StatementSource yields the four normalized statement series in one call.
type StatementSource interface {
	StatementSet(ctx context.Context, ticker string, period model.PeriodType) (*model.StatementSet, error)
}

// CompanySource yields per-ticker company detail.
type CompanySource interface {
	Overview(ctx context.Context, ticker string) (*model.Overview, error)
	Profile(ctx context.Context, ticker string) (*model.Profile, error)
	Shareholders(ctx context.Context, ticker string) ([]model.Shareholder, error)
	Officers(ctx context.Context, ticker string) ([]model.Officer, error)
	Subsidiaries(ctx context.Context, ticker string) ([]model.Subsidiary, error)
	Dividends(ctx context.Context, ticker string) ([]model.Dividend, error)
	InsiderDeals(ctx context.Context, ticker string) ([]model.InsiderDeal, error)
	Events(ctx context.Context, ticker string) ([]model.Event, error)
	News(ctx context.Context, ticker string) ([]model.News, error)
	Prices(ctx context.Context, ticker string) ([]model.PriceBar, error)
}

// BenchmarkSource yields the industry benchmark, the single most expensive
// call in the system: it fans out across the subject's whole peer group.
type BenchmarkSource interface {
	Report(ctx context.Context, ticker string) (*model.BenchmarkReport, error)
}

// Config tunes the orchestrator.
type Config struct {
	// CallTimeout bounds each individual call. A timed-out call is treated
	// identically to a failed call.
	CallTimeout time.Duration
	// TierConcurrency caps in-flight calls within one tier.
	TierConcurrency int
}

// DefaultConfig returns the tuning the serve command ships with.
func DefaultConfig() Config {
	return Config{
		CallTimeout:     30 * time.Second,
		TierConcurrency: 4,
	}
}

// Orchestrator runs staged fetches. At most one run is live per
// Orchestrator: starting a new run cancels the previous one so a superseded
// view stops spending upstream budget.
type Orchestrator struct {
	statements StatementSource
	company    CompanySource
	benchmark  BenchmarkSource
	cfg        Config

	mu      sync.Mutex
	current *run
}

type run struct {
	id     string
	cancel context.CancelFunc
}

// New wires an Orchestrator.
func New(statements StatementSource, company CompanySource, benchmark BenchmarkSource, cfg Config) *Orchestrator {
	if cfg.TierConcurrency <= 0 {
		cfg.TierConcurrency = 1
	}
	return &Orchestrator{
		statements: statements,
		company:    company,
		benchmark:  benchmark,
		cfg:        cfg,
	}
}

type call struct {
	name string
	fn   func(ctx context.Context, snap *Snapshot) error
}

type tier struct {
	name     string
	inFlight State
	done     State
	calls    []call
}

// Start begins a staged fetch for ticker and returns the snapshot stream.
// One snapshot is emitted on entering each tier and one on completing it;
// the final emission carries StateComplete and the channel closes. Any
// previously started run is cancelled first. If ctx is cancelled the channel
// closes without a StateComplete emission.
func (o *Orchestrator) Start(ctx context.Context, ticker string, period model.PeriodType) <-chan Snapshot {
	runCtx, cancel := context.WithCancel(ctx)
	r := &run{id: uuid.NewString(), cancel: cancel}

	o.mu.Lock()
	if o.current != nil {
		o.current.cancel()
	}
	o.current = r
	o.mu.Unlock()

	snap := &Snapshot{
		RunID:  r.id,
		Ticker: ticker,
		State:  StateIdle,
		Errors: make(map[string]string),
	}

	out := make(chan Snapshot, 8)
	go func() {
		defer close(out)
		defer func() {
			o.mu.Lock()
			if o.current == r {
				o.current = nil
			}
			o.mu.Unlock()
			cancel()
		}()
		o.runTiers(runCtx, snap, period, out)
	}()
	return out
}

// Stop cancels the live run, if any.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current != nil {
		o.current.cancel()
		o.current = nil
	}
}

func (o *Orchestrator) runTiers(ctx context.Context, snap *Snapshot, period model.PeriodType, out chan<- Snapshot) {
	log := zap.L().With(zap.String("ticker", snap.Ticker), zap.String("run_id", snap.RunID))

	var mu sync.Mutex
	tiers := o.tiers(snap.Ticker, period)
	for _, t := range tiers {
		mu.Lock()
		snap.State = t.inFlight
		out <- snap.clone()
		mu.Unlock()

		start := time.Now()
		var g errgroup.Group
		g.SetLimit(o.cfg.TierConcurrency)
		for _, c := range t.calls {
			g.Go(func() error {
				callCtx := ctx
				if o.cfg.CallTimeout > 0 {
					var cancel context.CancelFunc
					callCtx, cancel = context.WithTimeout(ctx, o.cfg.CallTimeout)
					defer cancel()
				}

				err := c.fn(callCtx, snap)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					snap.Errors[c.name] = err.Error()
					log.Warn("dashboard: call failed",
						zap.String("tier", t.name),
						zap.String("call", c.name),
						zap.Error(err),
					)
				}
				return nil
			})
		}
		_ = g.Wait()

		if ctx.Err() != nil {
			log.Info("dashboard: run cancelled", zap.String("tier", t.name))
			return
		}

		mu.Lock()
		snap.State = t.done
		out <- snap.clone()
		mu.Unlock()

		log.Info("dashboard: tier settled",
			zap.String("tier", t.name),
			zap.Int("calls", len(t.calls)),
			zap.Duration("took", time.Since(start)),
		)
	}
}

// tiers builds the call plan for one ticker. Critical carries what the
// primary view needs, secondary the supplementary detail, deferred the
// peer-group benchmark. Each call fn owns exactly one snapshot field, so
// concurrent calls within a tier never touch the same location; only Errors
// is shared, and runTiers serializes writes to it.
func (o *Orchestrator) tiers(ticker string, period model.PeriodType) []tier {
	return []tier{
		{
			name:     "critical",
			inFlight: StateCriticalInFlight,
			done:     StateCriticalDone,
			calls: []call{
				{"overview", func(ctx context.Context, snap *Snapshot) error {
					ov, err := o.company.Overview(ctx, ticker)
					if err != nil {
						return err
					}
					snap.Overview = ov
					return nil
				}},
				{"statements", func(ctx context.Context, snap *Snapshot) error {
					set, err := o.statements.StatementSet(ctx, ticker, period)
					if err != nil {
						return err
					}
					snap.Statements = set
					return nil
				}},
				{"prices", func(ctx context.Context, snap *Snapshot) error {
					bars, err := o.company.Prices(ctx, ticker)
					if err != nil {
						return err
					}
					snap.Prices = bars
					return nil
				}},
			},
		},
		{
			name:     "secondary",
			inFlight: StateSecondaryInFlight,
			done:     StateSecondaryDone,
			calls: []call{
				{"profile", func(ctx context.Context, snap *Snapshot) error {
					p, err := o.company.Profile(ctx, ticker)
					if err != nil {
						return err
					}
					snap.Profile = p
					return nil
				}},
				{"dividends", func(ctx context.Context, snap *Snapshot) error {
					rows, err := o.company.Dividends(ctx, ticker)
					if err != nil {
						return err
					}
					snap.Dividends = rows
					return nil
				}},
				{"insider_deals", func(ctx context.Context, snap *Snapshot) error {
					rows, err := o.company.InsiderDeals(ctx, ticker)
					if err != nil {
						return err
					}
					snap.InsiderDeals = rows
					return nil
				}},
				{"events", func(ctx context.Context, snap *Snapshot) error {
					rows, err := o.company.Events(ctx, ticker)
					if err != nil {
						return err
					}
					snap.Events = rows
					return nil
				}},
				{"news", func(ctx context.Context, snap *Snapshot) error {
					rows, err := o.company.News(ctx, ticker)
					if err != nil {
						return err
					}
					snap.News = rows
					return nil
				}},
				{"subsidiaries", func(ctx context.Context, snap *Snapshot) error {
					rows, err := o.company.Subsidiaries(ctx, ticker)
					if err != nil {
						return err
					}
					snap.Subsidiaries = rows
					return nil
				}},
				{"shareholders", func(ctx context.Context, snap *Snapshot) error {
					rows, err := o.company.Shareholders(ctx, ticker)
					if err != nil {
						return err
					}
					snap.Shareholders = rows
					return nil
				}},
				{"officers", func(ctx context.Context, snap *Snapshot) error {
					rows, err := o.company.Officers(ctx, ticker)
					if err != nil {
						return err
					}
					snap.Officers = rows
					return nil
				}},
			},
		},
		{
			name:     "deferred",
			inFlight: StateDeferredInFlight,
			done:     StateComplete,
			calls: []call{
				{"benchmark", func(ctx context.Context, snap *Snapshot) error {
					report, err := o.benchmark.Report(ctx, ticker)
					if err != nil {
						return err
					}
					snap.Benchmark = report
					return nil
				}},
			},
		},
	}
}
