package grouping

import (
	"strings"

	"ratetool/rates"
)

// Column is one table column over grouped entries.
type Column struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Always bool   `json:"always"`
	value  func(*rates.RateRecord) string
}

// Value returns the column's cell text for r.
func (c Column) Value(r *rates.RateRecord) string {
	return c.value(r)
}

// Columns lists every table column in display order.
var Columns = []Column{
	{Name: "state_name", Title: "State", Always: true, value: func(r *rates.RateRecord) string { return r.State }},
	{Name: "service_category", Title: "Service Category", Always: true, value: func(r *rates.RateRecord) string { return r.ServiceCategory }},
	{Name: "service_code", Title: "Service Code", Always: true, value: func(r *rates.RateRecord) string { return r.ServiceCode }},
	{Name: "service_description", Title: "Service Description", value: func(r *rates.RateRecord) string { return r.ServiceDescription }},
	{Name: "program", Title: "Program", value: func(r *rates.RateRecord) string { return r.Program }},
	{Name: "location_region", Title: "Location/Region", value: func(r *rates.RateRecord) string { return r.LocationRegion }},
	{Name: "modifier_1", Title: "Modifier 1", value: func(r *rates.RateRecord) string { return r.Modifier(0) }},
	{Name: "modifier_2", Title: "Modifier 2", value: func(r *rates.RateRecord) string { return r.Modifier(1) }},
	{Name: "modifier_3", Title: "Modifier 3", value: func(r *rates.RateRecord) string { return r.Modifier(2) }},
	{Name: "modifier_4", Title: "Modifier 4", value: func(r *rates.RateRecord) string { return r.Modifier(3) }},
	{Name: "duration_unit", Title: "Duration Unit", value: func(r *rates.RateRecord) string { return r.DurationUnit }},
	{Name: "provider_type", Title: "Provider Type", value: func(r *rates.RateRecord) string { return r.ProviderType }},
	{Name: "rate", Title: "Rate", Always: true, value: func(r *rates.RateRecord) string { return r.Rate }},
	{Name: "rate_effective_date", Title: "Effective Date", Always: true, value: func(r *rates.RateRecord) string { return r.EffectiveDate }},
}

// isPlaceholder reports cell text that carries no information.
func isPlaceholder(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", rates.BlankValue, "N/A", "NA", "NULL":
		return true
	}
	return false
}

// VisibleColumns returns the always-shown columns plus every other column
// that has a real value in at least one entry.
func VisibleColumns(entries []rates.RateRecord) []Column {
	var out []Column
	for _, c := range Columns {
		if c.Always {
			out = append(out, c)
			continue
		}
		for i := range entries {
			if !isPlaceholder(c.value(&entries[i])) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
