package peers

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richslow/vnmarket/internal/model"
)

type fakeOverview struct {
	ov  *model.Overview
	err error
}

func (f *fakeOverview) Overview(context.Context, string) (*model.Overview, error) {
	return f.ov, f.err
}

type fakeListing struct {
	roster     []IndustrySymbol
	rosterErr  error
	industries map[string]string
	indErr     error
}

func (f *fakeListing) SymbolsByIndustry(context.Context) ([]IndustrySymbol, error) {
	return f.roster, f.rosterErr
}

func (f *fakeListing) Industries(context.Context) (map[string]string, error) {
	return f.industries, f.indErr
}

func bankRoster() []IndustrySymbol {
	return []IndustrySymbol{
		{Symbol: "VCB", ICBCode3: "8355"},
		{Symbol: "BID", ICBCode3: "8355"},
		{Symbol: "CTG", ICBCode3: "8355"},
		{Symbol: "ACB", ICBCode3: "8355"},
		{Symbol: "FPT", ICBCode3: "9537"},
		{Symbol: "HPG", ICBCode3: "1757"},
	}
}

func TestResolve_GroupIncludesSubject(t *testing.T) {
	t.Parallel()

	r := NewResolver(
		&fakeOverview{ov: &model.Overview{Ticker: "VCB", Industry: "Banks", IndustryIDv2: "8355"}},
		&fakeListing{roster: bankRoster(), industries: map[string]string{"8355": "Banking"}},
		0,
	)

	group, err := r.Resolve(context.Background(), "VCB")
	require.NoError(t, err)

	assert.Equal(t, "8355", group.Code)
	assert.Equal(t, "Banking", group.Name)
	assert.Equal(t, "VCB", group.Subject)
	assert.Equal(t, []string{"VCB", "ACB", "BID", "CTG"}, group.Members)
}

func TestResolve_CapKeepsSubject(t *testing.T) {
	t.Parallel()

	r := NewResolver(
		&fakeOverview{ov: &model.Overview{Ticker: "VCB", IndustryIDv2: "8355"}},
		&fakeListing{roster: bankRoster()},
		2,
	)

	group, err := r.Resolve(context.Background(), "VCB")
	require.NoError(t, err)
	assert.Equal(t, []string{"VCB", "ACB"}, group.Members)
}

func TestResolve_ClassificationUnavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		overview *fakeOverview
		listing  *fakeListing
	}{
		{"overview error", &fakeOverview{err: eris.New("timeout")}, &fakeListing{}},
		{"no industry code", &fakeOverview{ov: &model.Overview{Ticker: "XYZ"}}, &fakeListing{}},
		{"roster error", &fakeOverview{ov: &model.Overview{IndustryIDv2: "8355"}}, &fakeListing{rosterErr: eris.New("503")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewResolver(tt.overview, tt.listing, 0)
			_, err := r.Resolve(context.Background(), "XYZ")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrClassificationUnavailable)
		})
	}
}

func TestResolve_SingletonGroupIsValid(t *testing.T) {
	t.Parallel()

	// A subject missing from the roster still resolves; an undersized group
	// is the benchmark engine's concern, not a resolution failure.
	r := NewResolver(
		&fakeOverview{ov: &model.Overview{IndustryIDv2: "0001"}},
		&fakeListing{roster: bankRoster(), indErr: eris.New("unavailable")},
		0,
	)

	group, err := r.Resolve(context.Background(), "NEW")
	require.NoError(t, err)
	assert.Equal(t, []string{"NEW"}, group.Members)
}
