package rates

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseRate parses a rate written as decimal text, tolerating a leading
// dollar sign and thousands separators ("$1,234.50").
func ParseRate(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// CompareRates orders two rate strings numerically. Unparseable rates sort
// below every parseable one and compare equal to each other.
func CompareRates(a, b string) int {
	da, okA := ParseRate(a)
	db, okB := ParseRate(b)
	switch {
	case okA && okB:
		return da.Cmp(db)
	case okA:
		return 1
	case okB:
		return -1
	}
	return 0
}

// Newer reports whether a should replace b as the representative of their
// configuration: a later effective date wins, and on the same date the
// numerically larger rate wins.
//
// The same-date rule silently drops the other record. Such pairs are usually
// upstream data-quality duplicates.
func Newer(a, b *RateRecord) bool {
	da, _ := ParseDate(a.EffectiveDate)
	db, _ := ParseDate(b.EffectiveDate)
	if c := da.Compare(db); c != 0 {
		return c > 0
	}
	return CompareRates(a.Rate, b.Rate) > 0
}
