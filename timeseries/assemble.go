// Package timeseries aligns the rate histories of several configurations on
// one shared date axis for charting.
package timeseries

import (
	"sort"
	"strings"

	"ratetool/rates"
)

// Meta describes the configuration a series plots.
type Meta struct {
	State           string    `json:"state_name"`
	ServiceCategory string    `json:"service_category"`
	ServiceCode     string    `json:"service_code"`
	Program         string    `json:"program,omitempty"`
	LocationRegion  string    `json:"location_region,omitempty"`
	DurationUnit    string    `json:"duration_unit"`
	ProviderType    string    `json:"provider_type,omitempty"`
	Modifiers       [4]string `json:"modifiers"`
	ModifierDetails [4]string `json:"modifier_details"`
}

func metaOf(r *rates.RateRecord) *Meta {
	return &Meta{
		State:           r.State,
		ServiceCategory: r.ServiceCategory,
		ServiceCode:     r.ServiceCode,
		Program:         r.Program,
		LocationRegion:  r.LocationRegion,
		DurationUnit:    r.DurationUnit,
		ProviderType:    r.ProviderType,
		Modifiers:       r.Modifiers,
		ModifierDetails: r.ModifierDetails,
	}
}

// Point is one series value at an axis date. Rate is nil before the series'
// first observation. Observed is false for carried-forward values.
type Point struct {
	Date     rates.Date `json:"date"`
	Rate     *float64   `json:"rate"`
	Observed bool       `json:"observed"`
	Meta     *Meta      `json:"-"`
}

// Series is the aligned point sequence of one configuration.
type Series struct {
	Meta   *Meta   `json:"meta"`
	Points []Point `json:"points"`
}

// Chart is a shared ascending date axis and one series per selected entry.
// Every series has exactly one point per axis date.
type Chart struct {
	Axis   []rates.Date `json:"axis"`
	Series []Series     `json:"series"`
}

type track struct {
	entry rates.RateRecord
	codes map[string]bool
	key   string
	byDay map[rates.Date]string
}

// Builder collects observations for a fixed set of entries from records
// delivered in any number of batches.
type Builder struct {
	tracks []*track
}

// NewBuilder prepares one series per selected entry.
func NewBuilder(selected []rates.RateRecord) *Builder {
	b := &Builder{tracks: make([]*track, len(selected))}
	for i, e := range selected {
		t := &track{entry: e, byDay: make(map[rates.Date]string)}
		if strings.Contains(e.ServiceCode, ",") {
			t.codes = make(map[string]bool)
			for _, c := range strings.Split(e.ServiceCode, ",") {
				if c = strings.TrimSpace(c); c != "" {
					t.codes[c] = true
				}
			}
		}
		k := e
		k.ServiceCode = ""
		t.key = k.Key()
		b.tracks[i] = t
	}
	return b
}

func (t *track) matches(r *rates.RateRecord) bool {
	if t.codes != nil {
		if !t.codes[strings.TrimSpace(r.ServiceCode)] {
			return false
		}
	} else if r.ServiceCode != t.entry.ServiceCode {
		return false
	}
	k := *r
	k.ServiceCode = ""
	return k.Key() == t.key
}

// Add feeds population records to every series they belong to. Records whose
// date or rate cannot be parsed have no place on the chart and are skipped.
func (b *Builder) Add(records ...rates.RateRecord) {
	for i := range records {
		r := &records[i]
		d, ok := rates.ParseDate(r.EffectiveDate)
		if !ok {
			continue
		}
		if _, ok := rates.ParseRate(r.Rate); !ok {
			continue
		}
		for _, t := range b.tracks {
			if !t.matches(r) {
				continue
			}
			cur, seen := t.byDay[d]
			if !seen || rates.CompareRates(r.Rate, cur) > 0 {
				t.byDay[d] = r.Rate
			}
		}
	}
}

// Chart aligns the collected series. today is appended to the axis when the
// latest observed date is before it.
func (b *Builder) Chart(today rates.Date) Chart {
	seen := make(map[rates.Date]bool)
	var axis []rates.Date
	for _, t := range b.tracks {
		for d := range t.byDay {
			if !seen[d] {
				seen[d] = true
				axis = append(axis, d)
			}
		}
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i].Before(axis[j]) })
	if n := len(axis); n > 0 && axis[n-1].Before(today) {
		axis = append(axis, today)
	}

	chart := Chart{Axis: axis, Series: make([]Series, 0, len(b.tracks))}
	for _, t := range b.tracks {
		meta := metaOf(&t.entry)
		s := Series{Meta: meta, Points: make([]Point, len(axis))}
		var last *float64
		for i, d := range axis {
			p := Point{Date: d, Meta: meta}
			if rate, ok := t.byDay[d]; ok {
				v, _ := rates.ParseRate(rate)
				f := v.InexactFloat64()
				last = &f
				p.Observed = true
			}
			p.Rate = last
			s.Points[i] = p
		}
		chart.Series = append(chart.Series, s)
	}
	return chart
}

// Assemble builds the chart for selected entries from the full record
// population of the active query.
func Assemble(selected, population []rates.RateRecord, today rates.Date) Chart {
	b := NewBuilder(selected)
	b.Add(population...)
	return b.Chart(today)
}
