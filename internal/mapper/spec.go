package mapper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// FieldType selects the coercion rule applied to raw values.
type FieldType string

const (
	TypeNumber FieldType = "number"
	TypeString FieldType = "string"
	TypeDate   FieldType = "date"
)

// FieldSpec describes how one canonical field is sourced from raw records:
// candidate raw keys in priority order, a coercion rule, and a default for
// when every candidate is absent.
type FieldSpec struct {
	Name    string    `yaml:"name"`
	Keys    []string  `yaml:"keys"`
	Type    FieldType `yaml:"type"`
	Default any       `yaml:"default"`
}

// Extract walks the spec's candidate keys in priority order against the
// record and returns the first present value that survives coercion, or the
// spec's default. Absence is expected, never an error: missing keys, nils,
// and uncoercible values all fall through to the next candidate.
func Extract(rec RawRecord, spec FieldSpec) any {
	if rec != nil {
		for _, key := range spec.Keys {
			raw, ok := rec[norm.NFC.String(key)]
			if !ok {
				raw, ok = rec[key]
			}
			if !ok || raw == nil {
				continue
			}
			if v, ok := coerce(raw, spec.Type); ok {
				return v
			}
		}
	}
	return spec.Default
}

// ExtractFloat applies Extract under the number rule and returns a nullable
// float, the shape normalized statement fields use.
func ExtractFloat(rec RawRecord, spec FieldSpec) *float64 {
	v := Extract(rec, spec)
	if v == nil {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &f
}

// ExtractString applies Extract under the string rule.
func ExtractString(rec RawRecord, spec FieldSpec) string {
	v := Extract(rec, spec)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// ExtractInt applies Extract under the number rule, truncating to int.
func ExtractInt(rec RawRecord, spec FieldSpec) (int, bool) {
	v := Extract(rec, spec)
	if v == nil {
		return 0, false
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func coerce(raw any, t FieldType) (any, bool) {
	switch t {
	case TypeString:
		return toString(raw)
	case TypeDate:
		return toDate(raw)
	default:
		f, ok := toFloat(raw)
		if !ok {
			return nil, false
		}
		return f, true
	}
}

// toFloat coerces numeric raw values. Strings are accepted in the Vietnamese
// provider format: comma-grouped thousands, and "-" standing in for missing.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case decimal.Decimal:
		return v.InexactFloat64(), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" || s == "-" {
			return 0, false
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
		if err != nil {
			return 0, false
		}
		return d.InexactFloat64(), true
	default:
		return 0, false
	}
}

func toString(raw any) (any, bool) {
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil, false
	}
	return s, true
}

// dateLayouts covers the formats the two providers emit.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
	time.RFC3339,
}

func toDate(raw any) (any, bool) {
	if t, ok := raw.(time.Time); ok {
		return t, true
	}
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return nil, false
}
