package benchmark

import (
	"context"

	"github.com/richslow/vnmarket/internal/model"
)

// PeerResolver determines the subject's peer group.
type PeerResolver interface {
	Resolve(ctx context.Context, ticker string) (*model.PeerGroup, error)
}

// Reporter resolves a subject's peer group and benchmarks the default ratio
// set over it.
type Reporter struct {
	resolver PeerResolver
	engine   *Engine
	ratios   []string
}

// NewReporter wires a Reporter. ratios nil means DefaultRatioNames.
func NewReporter(resolver PeerResolver, engine *Engine, ratios []string) *Reporter {
	if len(ratios) == 0 {
		ratios = DefaultRatioNames
	}
	return &Reporter{resolver: resolver, engine: engine, ratios: ratios}
}

// Report benchmarks ticker against its resolved peer group. Resolution
// failures (including classification unavailability) propagate; benchmark
// computation itself only fails on cancellation.
func (r *Reporter) Report(ctx context.Context, ticker string) (*model.BenchmarkReport, error) {
	group, err := r.resolver.Resolve(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return r.engine.Compute(ctx, group, r.ratios)
}
