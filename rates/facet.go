package rates

import "fmt"

// Facet is one filterable dimension of a rate record. The declaration order
// is the selection dependency chain: changing a facet invalidates every
// facet after it.
type Facet int

const (
	ServiceCategory Facet = iota
	State
	ServiceCode
	ServiceDescription
	Program
	LocationRegion
	ProviderType
	DurationUnit
	Modifier

	numFacets
)

// BlankValue selects rows where a facet is explicitly blank in the source data.
const BlankValue = "-"

var facetNames = [numFacets]string{
	ServiceCategory:    "service_category",
	State:              "state_name",
	ServiceCode:        "service_code",
	ServiceDescription: "service_description",
	Program:            "program",
	LocationRegion:     "location_region",
	ProviderType:       "provider_type",
	DurationUnit:       "duration_unit",
	Modifier:           "modifier_1",
}

// Facets lists every facet in chain order.
func Facets() []Facet {
	out := make([]Facet, numFacets)
	for i := range out {
		out[i] = Facet(i)
	}
	return out
}

// String returns the facet's wire name, which is also its column name.
func (f Facet) String() string {
	if f < 0 || f >= numFacets {
		return fmt.Sprintf("facet(%d)", int(f))
	}
	return facetNames[f]
}

// MultiSelect reports whether the facet accepts several values at once.
func (f Facet) MultiSelect() bool {
	switch f {
	case ServiceCode, Program, LocationRegion, ProviderType, DurationUnit, Modifier:
		return true
	}
	return false
}

// ParseFacet maps a wire name back to its facet. "modifier" is accepted as
// an alias of "modifier_1".
func ParseFacet(name string) (Facet, bool) {
	if name == "modifier" {
		return Modifier, true
	}
	for i, n := range facetNames {
		if n == name {
			return Facet(i), true
		}
	}
	return 0, false
}

// SetColumn assigns a value by column name, covering all four modifier
// columns. It reports false for unknown columns.
func (d *Dimensions) SetColumn(name, v string) bool {
	switch name {
	case "modifier_2":
		d.Modifiers[1] = v
		return true
	case "modifier_3":
		d.Modifiers[2] = v
		return true
	case "modifier_4":
		d.Modifiers[3] = v
		return true
	}
	f, ok := ParseFacet(name)
	if !ok {
		return false
	}
	d.SetValue(f, v)
	return true
}

// Column returns the value stored under a column name; see SetColumn.
func (d *Dimensions) Column(name string) string {
	switch name {
	case "modifier_2":
		return d.Modifiers[1]
	case "modifier_3":
		return d.Modifiers[2]
	case "modifier_4":
		return d.Modifiers[3]
	}
	if f, ok := ParseFacet(name); ok {
		return d.Value(f)
	}
	return ""
}

// CombinationColumns is the column set written to a filter-options payload.
var CombinationColumns = []string{
	"state_name",
	"service_category",
	"service_code",
	"service_description",
	"program",
	"location_region",
	"modifier_1",
	"modifier_2",
	"modifier_3",
	"modifier_4",
	"duration_unit",
	"provider_type",
}
