// Package normalize turns raw provider records into canonical statement
// series. A missing provider is not an error here: whichever side is absent
// simply contributes nulls, and the output record always carries the full
// canonical key set for its kind.
package normalize

import (
	"sort"

	"github.com/richslow/vnmarket/internal/mapper"
	"github.com/richslow/vnmarket/internal/model"
)

// FlatSeparator joins (group, field) pairs when flattening hierarchical
// records, matching the flattened keys in the field tables.
const FlatSeparator = "_"

// Source identifies which provider a raw record came from.
type Source string

const (
	SourceTCBS Source = "tcbs" // provider A, flat records
	SourceVCI  Source = "vci"  // provider B, hierarchical records
)

// periodYear and periodQuarter locate the reporting-period identifiers in
// either provider's raw shape. lengthReport is VCI's quarter column; values
// outside 1..4 mark annual records.
var (
	periodYear    = mapper.FieldSpec{Name: "year", Keys: []string{"yearReport", "year_report", "year"}, Type: mapper.TypeNumber}
	periodQuarter = mapper.FieldSpec{Name: "quarter", Keys: []string{"lengthReport", "length_report", "quarter"}, Type: mapper.TypeNumber}
)

// Normalizer maps raw records onto canonical statements using the loaded
// field tables.
type Normalizer struct {
	tables  *mapper.Tables
	primary map[model.StatementKind]Source
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithPrimary overrides the preferred source for one statement kind.
func WithPrimary(kind model.StatementKind, src Source) Option {
	return func(n *Normalizer) {
		n.primary[kind] = src
	}
}

// New creates a Normalizer. VCI is the primary source for every kind unless
// overridden; TCBS fills whatever VCI leaves null.
func New(tables *mapper.Tables, opts ...Option) *Normalizer {
	n := &Normalizer{
		tables:  tables,
		primary: make(map[model.StatementKind]Source, len(model.Kinds)),
	}
	for _, kind := range model.Kinds {
		n.primary[kind] = SourceVCI
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize produces one canonical statement from whichever raw inputs are
// present. rawA is provider A's flat record; rawB is provider B's
// hierarchical record; either may be nil. Every canonical field of the kind
// is present in the result, nil when neither side can supply it.
func (n *Normalizer) Normalize(ticker string, rawA mapper.RawRecord, rawB *mapper.TwoLevelRecord, kind model.StatementKind) model.Statement {
	var flatB mapper.RawRecord
	if rawB != nil {
		flatB = mapper.Flatten(*rawB, FlatSeparator)
	}

	first, second := flatB, rawA
	if n.primary[kind] == SourceTCBS {
		first, second = rawA, flatB
	}

	stmt := model.Statement{
		Ticker: ticker,
		Kind:   kind,
		Period: periodOf(rawA, flatB),
		Fields: make(map[string]*float64, len(n.tables.Fields(kind))),
	}
	for _, spec := range n.tables.Fields(kind) {
		v := mapper.ExtractFloat(first, spec)
		if v == nil {
			v = mapper.ExtractFloat(second, spec)
		}
		stmt.Fields[spec.Name] = v
	}
	return stmt
}

// Series merges both providers' record sets into one canonical series,
// pairing records by reporting period, ascending by period. Callers wanting
// most-recent-first must reverse explicitly.
func (n *Normalizer) Series(ticker string, rowsA []mapper.RawRecord, rowsB []mapper.TwoLevelRecord, kind model.StatementKind) []model.Statement {
	type pair struct {
		a mapper.RawRecord
		b *mapper.TwoLevelRecord
	}

	byPeriod := make(map[model.Period]*pair)
	var order []model.Period

	for _, row := range rowsA {
		p := periodOf(row, nil)
		if byPeriod[p] == nil {
			byPeriod[p] = &pair{}
			order = append(order, p)
		}
		byPeriod[p].a = row
	}
	for i := range rowsB {
		flat := mapper.Flatten(rowsB[i], FlatSeparator)
		p := periodOf(nil, flat)
		if byPeriod[p] == nil {
			byPeriod[p] = &pair{}
			order = append(order, p)
		}
		byPeriod[p].b = &rowsB[i]
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	out := make([]model.Statement, 0, len(order))
	for _, p := range order {
		pr := byPeriod[p]
		stmt := n.Normalize(ticker, pr.a, pr.b, kind)
		stmt.Period = p
		out = append(out, stmt)
	}
	return out
}

// periodOf reads the reporting period from whichever record carries it.
func periodOf(rawA, flatB mapper.RawRecord) model.Period {
	var p model.Period
	for _, rec := range []mapper.RawRecord{flatB, rawA} {
		if rec == nil {
			continue
		}
		if y, ok := mapper.ExtractInt(rec, periodYear); ok {
			p.Year = y
			if q, ok := mapper.ExtractInt(rec, periodQuarter); ok && q >= 1 && q <= 4 {
				p.Quarter = q
			}
			return p
		}
	}
	return p
}
