// Package model defines the canonical, provider-independent entities the
// rest of the system produces and consumes.
package model

import "fmt"

// StatementKind identifies one of the four canonical statement record types.
type StatementKind string

const (
	KindIncome   StatementKind = "income"
	KindBalance  StatementKind = "balance"
	KindCashFlow StatementKind = "cashflow"
	KindRatio    StatementKind = "ratio"
)

// Kinds lists all statement kinds in presentation order.
var Kinds = []StatementKind{KindIncome, KindBalance, KindCashFlow, KindRatio}

// Valid reports whether k names a known statement kind.
func (k StatementKind) Valid() bool {
	switch k {
	case KindIncome, KindBalance, KindCashFlow, KindRatio:
		return true
	}
	return false
}

// PeriodType selects annual or quarterly reporting series.
type PeriodType string

const (
	PeriodYear    PeriodType = "year"
	PeriodQuarter PeriodType = "quarter"
)

// Valid reports whether p names a known period type.
func (p PeriodType) Valid() bool {
	return p == PeriodYear || p == PeriodQuarter
}

// Period identifies one reporting snapshot. Quarter 0 means an annual
// report. Periods sort chronologically: year major, quarter minor, with the
// annual record for a year sorting after that year's quarters.
type Period struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter,omitempty"`
}

// Before reports whether p is chronologically earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.sortQuarter() < other.sortQuarter()
}

func (p Period) sortQuarter() int {
	if p.Quarter == 0 {
		return 5 // annual closes the year
	}
	return p.Quarter
}

// Label renders the period for display, e.g. "2023" or "2023Q2".
func (p Period) Label() string {
	if p.Quarter == 0 {
		return fmt.Sprintf("%d", p.Year)
	}
	return fmt.Sprintf("%dQ%d", p.Year, p.Quarter)
}

// Statement is a normalized statement record for one ticker and one
// reporting period. Fields always carries the complete canonical key set for
// the kind; absent upstream values are nil, never missing keys.
type Statement struct {
	Ticker string              `json:"ticker"`
	Kind   StatementKind       `json:"kind"`
	Period Period              `json:"period"`
	Fields map[string]*float64 `json:"fields"`
}

// Field returns the value for a canonical field, or nil when the field is
// absent or was never populated upstream.
func (s *Statement) Field(name string) *float64 {
	if s == nil {
		return nil
	}
	return s.Fields[name]
}

// StatementSet bundles the four normalized series for one ticker.
type StatementSet struct {
	Ticker     string      `json:"ticker"`
	PeriodType PeriodType  `json:"period"`
	Income     []Statement `json:"income_statements"`
	Balance    []Statement `json:"balance_sheets"`
	CashFlow   []Statement `json:"cash_flows"`
	Ratios     []Statement `json:"ratios"`
	Years      []int       `json:"years"`
}
