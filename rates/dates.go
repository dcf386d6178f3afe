package rates

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Date is a calendar date with no time zone. Effective dates are compared as
// dates, never as instants, so a record can not slide to the previous day
// when parsed in a zone west of UTC.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// IsZero reports whether d is the zero date (an unparseable effective date).
func (d Date) IsZero() bool {
	return d == Date{}
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// USString formats d as MM/DD/YYYY, the display form used in exports.
func (d Date) USString() string {
	return fmt.Sprintf("%02d/%02d/%04d", int(d.Month), d.Day, d.Year)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseDate(s)
	if !ok {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = parsed
	return nil
}

// dateLayouts are the two textual forms the rate data uses.
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
}

// ParseDate parses an effective date. MM/DD/YYYY and YYYY-MM-DD are tried
// first, then a generic parser; ok is false when nothing recognizes the text,
// in which case callers keep the raw text for display and sort it as the zero
// date.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), true
		}
	}
	// Timestamps such as "2023-06-15T00:00:00.000Z" keep their written date.
	if len(s) > 10 && s[4] == '-' && s[7] == '-' && (s[10] == 'T' || s[10] == ' ') {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return DateOf(t), true
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return Date{}, false
	}
	return DateOf(t), true
}

// FormatDate renders an effective date as MM/DD/YYYY, or returns the raw
// text unchanged when it does not parse.
func FormatDate(s string) string {
	d, ok := ParseDate(s)
	if !ok {
		return s
	}
	return d.USString()
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
