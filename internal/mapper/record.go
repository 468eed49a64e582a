// Package mapper reconciles the two providers' raw record shapes into
// canonical field values. Field fallback behavior is data (ordered
// candidate-key tables), not code, so it can be revised as provider schemas
// drift without a release.
package mapper

import (
	"golang.org/x/text/unicode/norm"
)

// RawRecord is an untyped provider record for one ticker and one reporting
// period: provider key strings mapped to scalar or nil values.
type RawRecord map[string]any

// TwoLevelKey addresses one column of a hierarchical record.
type TwoLevelKey struct {
	Group string
	Field string
}

// TwoLevelRecord is a hierarchical (group, field) record. Columns carries
// the provider's original column order; flattening must not depend on map
// iteration order, so the order is kept explicitly.
type TwoLevelRecord struct {
	Columns []TwoLevelKey
	Values  map[TwoLevelKey]any
}

// Set appends a column and its value, recording column order.
func (r *TwoLevelRecord) Set(group, field string, value any) {
	key := TwoLevelKey{Group: group, Field: field}
	if r.Values == nil {
		r.Values = make(map[TwoLevelKey]any)
	}
	if _, seen := r.Values[key]; !seen {
		r.Columns = append(r.Columns, key)
	}
	r.Values[key] = value
}

// Flatten converts a two-level record into a flat RawRecord with keys
// "group{sep}field". Columns with an empty group keep the bare field name
// (the ticker-level wrapper group is dropped by the provider adapters, not
// folded into keys). When two source groups collide on the same flat key the
// first group in the original column order wins and later ones are
// discarded; the choice is deterministic so fixtures reproduce.
//
// Both key parts are NFC-normalized first: the providers emit Vietnamese
// group names in inconsistent Unicode composition forms.
func Flatten(rec TwoLevelRecord, sep string) RawRecord {
	flat := make(RawRecord, len(rec.Columns))
	for _, col := range rec.Columns {
		group := norm.NFC.String(col.Group)
		field := norm.NFC.String(col.Field)

		key := field
		if group != "" {
			key = group + sep + field
		}

		if _, exists := flat[key]; exists {
			continue // first group wins
		}
		flat[key] = rec.Values[col]
	}
	return flat
}
