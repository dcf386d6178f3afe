package rates

import "strings"

// Dimensions holds the facet-relevant fields shared by a full rate record
// and its compressed-dataset projection.
type Dimensions struct {
	State              string
	ServiceCategory    string
	ServiceCode        string
	ServiceDescription string
	Program            string
	LocationRegion     string
	DurationUnit       string
	ProviderType       string
	Modifiers          [4]string
}

// Combination is one row of the compressed filter-options dataset: the
// dimensions of a group of rate records, without rate or date.
type Combination struct {
	Dimensions
}

// RateRecord is one historical rate observation.
//
// Records are not unique: rate revisions share every dimension except rate
// and date, and upstream data sometimes repeats a date with a different rate.
type RateRecord struct {
	Dimensions
	ModifierDetails [4]string
	Rate            string
	EffectiveDate   string
}

// Value returns the text of a single-valued facet. For the modifier facet it
// returns the first modifier code.
func (d *Dimensions) Value(f Facet) string {
	switch f {
	case ServiceCategory:
		return d.ServiceCategory
	case State:
		return d.State
	case ServiceCode:
		return d.ServiceCode
	case ServiceDescription:
		return d.ServiceDescription
	case Program:
		return d.Program
	case LocationRegion:
		return d.LocationRegion
	case ProviderType:
		return d.ProviderType
	case DurationUnit:
		return d.DurationUnit
	case Modifier:
		return d.Modifiers[0]
	}
	return ""
}

// SetValue assigns the field backing a facet. Modifier sets the first code.
func (d *Dimensions) SetValue(f Facet, v string) {
	switch f {
	case ServiceCategory:
		d.ServiceCategory = v
	case State:
		d.State = v
	case ServiceCode:
		d.ServiceCode = v
	case ServiceDescription:
		d.ServiceDescription = v
	case Program:
		d.Program = v
	case LocationRegion:
		d.LocationRegion = v
	case ProviderType:
		d.ProviderType = v
	case DurationUnit:
		d.DurationUnit = v
	case Modifier:
		d.Modifiers[0] = v
	}
}

// Values returns the non-blank values a facet takes on this row. Only the
// modifier facet can yield more than one.
func (d *Dimensions) Values(f Facet) []string {
	if f == Modifier {
		var out []string
		for _, m := range d.Modifiers {
			if m = strings.TrimSpace(m); m != "" {
				out = append(out, m)
			}
		}
		return out
	}
	if v := strings.TrimSpace(d.Value(f)); v != "" {
		return []string{v}
	}
	return nil
}

// IsBlank reports whether the row has no value for f. A row is blank on the
// modifier facet only when all four modifier codes are empty.
func (d *Dimensions) IsBlank(f Facet) bool {
	if f == Modifier {
		for _, m := range d.Modifiers {
			if strings.TrimSpace(m) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(d.Value(f)) == ""
}

// MatchesAny reports whether the row satisfies a facet selection: any
// selected value matching is enough. BlankValue matches a blank row.
func (d *Dimensions) MatchesAny(f Facet, selected []string) bool {
	for _, want := range selected {
		if want == BlankValue {
			if d.IsBlank(f) {
				return true
			}
			continue
		}
		if f == Modifier {
			for _, m := range d.Modifiers {
				if strings.TrimSpace(m) == want {
					return true
				}
			}
			continue
		}
		if strings.TrimSpace(d.Value(f)) == want {
			return true
		}
	}
	return false
}

// Modifier returns modifier code i (0-based) and its detail text formatted
// as "code - detail", or just the code when there is no detail.
func (r *RateRecord) Modifier(i int) string {
	code := strings.TrimSpace(r.Modifiers[i])
	if code == "" {
		return ""
	}
	if detail := strings.TrimSpace(r.ModifierDetails[i]); detail != "" {
		return code + " - " + detail
	}
	return code
}

// Key identifies a record's configuration: every field except the rate and
// effective date, modifier details included.
func (r *RateRecord) Key() string {
	var b strings.Builder
	for _, s := range []string{
		r.State, r.ServiceCategory, r.ServiceCode, r.ServiceDescription,
		r.Program, r.LocationRegion, r.DurationUnit, r.ProviderType,
	} {
		b.WriteString(s)
		b.WriteByte('\t')
	}
	for i := range r.Modifiers {
		b.WriteString(r.Modifiers[i])
		b.WriteByte('|')
		b.WriteString(r.ModifierDetails[i])
		b.WriteByte('\t')
	}
	return b.String()
}
