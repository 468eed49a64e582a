package tcbs

import (
	"bytes"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// Number is a float64 that also accepts the comma-grouped strings some TCBS
// endpoints return for prices ("12,500.5"). null and "-" decode to zero.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" {
		*n = 0
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return eris.Wrapf(err, "tcbs: parse number %q", string(data))
	}
	*n = Number(d.InexactFloat64())
	return nil
}

// Float64 returns the parsed value, or nil when the source field was absent.
func (n *Number) Float64() *float64 {
	if n == nil {
		return nil
	}
	v := float64(*n)
	return &v
}
