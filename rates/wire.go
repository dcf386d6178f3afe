package rates

import "encoding/json"

// recordJSON is the flat wire shape of a rate record, matching the column
// names of the rates table.
type recordJSON struct {
	State              string `json:"state_name"`
	ServiceCategory    string `json:"service_category"`
	ServiceCode        string `json:"service_code"`
	ServiceDescription string `json:"service_description,omitempty"`
	Program            string `json:"program"`
	LocationRegion     string `json:"location_region"`
	Modifier1          string `json:"modifier_1,omitempty"`
	Modifier1Details   string `json:"modifier_1_details,omitempty"`
	Modifier2          string `json:"modifier_2,omitempty"`
	Modifier2Details   string `json:"modifier_2_details,omitempty"`
	Modifier3          string `json:"modifier_3,omitempty"`
	Modifier3Details   string `json:"modifier_3_details,omitempty"`
	Modifier4          string `json:"modifier_4,omitempty"`
	Modifier4Details   string `json:"modifier_4_details,omitempty"`
	DurationUnit       string `json:"duration_unit"`
	ProviderType       string `json:"provider_type"`
	Rate               string `json:"rate"`
	EffectiveDate      string `json:"rate_effective_date"`
}

func (r RateRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		State:              r.State,
		ServiceCategory:    r.ServiceCategory,
		ServiceCode:        r.ServiceCode,
		ServiceDescription: r.ServiceDescription,
		Program:            r.Program,
		LocationRegion:     r.LocationRegion,
		Modifier1:          r.Modifiers[0],
		Modifier1Details:   r.ModifierDetails[0],
		Modifier2:          r.Modifiers[1],
		Modifier2Details:   r.ModifierDetails[1],
		Modifier3:          r.Modifiers[2],
		Modifier3Details:   r.ModifierDetails[2],
		Modifier4:          r.Modifiers[3],
		Modifier4Details:   r.ModifierDetails[3],
		DurationUnit:       r.DurationUnit,
		ProviderType:       r.ProviderType,
		Rate:               r.Rate,
		EffectiveDate:      r.EffectiveDate,
	})
}

func (r *RateRecord) UnmarshalJSON(data []byte) error {
	var w recordJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = RateRecord{
		Dimensions: Dimensions{
			State:              w.State,
			ServiceCategory:    w.ServiceCategory,
			ServiceCode:        w.ServiceCode,
			ServiceDescription: w.ServiceDescription,
			Program:            w.Program,
			LocationRegion:     w.LocationRegion,
			DurationUnit:       w.DurationUnit,
			ProviderType:       w.ProviderType,
			Modifiers:          [4]string{w.Modifier1, w.Modifier2, w.Modifier3, w.Modifier4},
		},
		ModifierDetails: [4]string{w.Modifier1Details, w.Modifier2Details, w.Modifier3Details, w.Modifier4Details},
		Rate:            w.Rate,
		EffectiveDate:   w.EffectiveDate,
	}
	return nil
}
