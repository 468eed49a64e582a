// Package peers resolves a ticker's classification group and enumerates the
// companies sharing it.
package peers

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/richslow/vnmarket/internal/model"
)

// ErrClassificationUnavailable means the subject's own industry code could
// not be determined, so no peer benchmarking is possible at all. This is
// distinct from an empty peer group, which is valid and handled by the
// benchmark engine's minimum-sample check.
var ErrClassificationUnavailable = eris.New("peers: classification unavailable")

// OverviewSource supplies the subject's classification.
type OverviewSource interface {
	Overview(ctx context.Context, ticker string) (*model.Overview, error)
}

// ListingSource enumerates the market roster with ICB classifications.
type ListingSource interface {
	// SymbolsByIndustry returns every listed symbol with its ICB codes.
	SymbolsByIndustry(ctx context.Context) ([]IndustrySymbol, error)
	// Industries returns the ICB code → name catalog.
	Industries(ctx context.Context) (map[string]string, error)
}

// IndustrySymbol is one roster entry from the classification lookup.
type IndustrySymbol struct {
	Symbol   string `json:"symbol"`
	ICBCode2 string `json:"icb_code2"`
	ICBCode3 string `json:"icb_code3"`
	ICBCode4 string `json:"icb_code4"`
}

// Resolver determines peer groups from the classification lookup.
type Resolver struct {
	overview OverviewSource
	listing  ListingSource
	maxPeers int
}

// NewResolver wires a Resolver. maxPeers caps the roster (0 = unlimited);
// peer counts range from single digits to hundreds and the benchmark fan-out
// pays per member.
func NewResolver(overview OverviewSource, listing ListingSource, maxPeers int) *Resolver {
	return &Resolver{overview: overview, listing: listing, maxPeers: maxPeers}
}

// Resolve returns the subject's peer group. The subject itself is a member
// of the group it resolves to; benchmark statistics cover the whole group,
// subject included. Returns ErrClassificationUnavailable when the subject's
// own code cannot be determined.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (*model.PeerGroup, error) {
	ov, err := r.overview.Overview(ctx, ticker)
	if err != nil {
		return nil, eris.Wrapf(ErrClassificationUnavailable, "overview fetch for %s: %v", ticker, err)
	}
	code := ov.IndustryIDv2
	if code == "" {
		return nil, eris.Wrapf(ErrClassificationUnavailable, "no industry code on overview for %s", ticker)
	}

	roster, err := r.listing.SymbolsByIndustry(ctx)
	if err != nil {
		return nil, eris.Wrapf(ErrClassificationUnavailable, "roster fetch: %v", err)
	}

	others := make([]string, 0, 32)
	seen := map[string]bool{ticker: true}
	for _, sym := range roster {
		if sym.Symbol == "" || seen[sym.Symbol] {
			continue
		}
		if sym.ICBCode2 == code || sym.ICBCode3 == code || sym.ICBCode4 == code {
			seen[sym.Symbol] = true
			others = append(others, sym.Symbol)
		}
	}
	sort.Strings(others)

	// The subject always survives the cap; it anchors the group.
	if r.maxPeers > 0 && len(others) > r.maxPeers-1 {
		others = others[:r.maxPeers-1]
	}
	members := append([]string{ticker}, others...)

	name := ov.Industry
	if industries, err := r.listing.Industries(ctx); err == nil {
		if n, ok := industries[code]; ok && n != "" {
			name = n
		}
	} else {
		zap.L().Warn("peers: industry catalog unavailable, using overview name",
			zap.String("ticker", ticker),
			zap.Error(err),
		)
	}

	zap.L().Debug("peers: resolved group",
		zap.String("ticker", ticker),
		zap.String("industry_code", code),
		zap.Int("members", len(members)),
	)

	return &model.PeerGroup{
		Code:    code,
		Name:    name,
		Subject: ticker,
		Members: members,
	}, nil
}
