// Package export turns rate records into download rows and writes them as
// Parquet.
package export

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ratetool/rates"
)

// Row is one exported rate record, formatted for people rather than for
// further processing.
type Row struct {
	State              string `parquet:"state,dict" json:"state"`
	ServiceCategory    string `parquet:"service_category,dict" json:"service_category"`
	ServiceCode        string `parquet:"service_code,dict" json:"service_code"`
	ServiceDescription string `parquet:"service_description" json:"service_description"`
	Rate               string `parquet:"rate" json:"rate"`
	DurationUnit       string `parquet:"duration_unit,dict" json:"duration_unit"`
	EffectiveDate      string `parquet:"effective_date" json:"effective_date"`
	ProviderType       string `parquet:"provider_type,dict" json:"provider_type"`
	Modifier1          string `parquet:"modifier_1" json:"modifier_1"`
	Modifier2          string `parquet:"modifier_2" json:"modifier_2"`
	Modifier3          string `parquet:"modifier_3" json:"modifier_3"`
	Modifier4          string `parquet:"modifier_4" json:"modifier_4"`
	Program            string `parquet:"program,dict" json:"program"`
	LocationRegion     string `parquet:"location_region,dict" json:"location_region"`
}

var currency = message.NewPrinter(language.AmericanEnglish)

// FormatRate renders a rate as US currency ("$1,234.50"). Text that is not a
// number is returned unchanged.
func FormatRate(s string) string {
	d, ok := rates.ParseRate(s)
	if !ok {
		return strings.TrimSpace(s)
	}
	return currency.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

// FromRecord formats r for export.
func FromRecord(r *rates.RateRecord) Row {
	return Row{
		State:              AbbreviateState(r.State),
		ServiceCategory:    AbbreviateCategory(r.ServiceCategory),
		ServiceCode:        r.ServiceCode,
		ServiceDescription: r.ServiceDescription,
		Rate:               FormatRate(r.Rate),
		DurationUnit:       r.DurationUnit,
		EffectiveDate:      rates.FormatDate(r.EffectiveDate),
		ProviderType:       r.ProviderType,
		Modifier1:          r.Modifier(0),
		Modifier2:          r.Modifier(1),
		Modifier3:          r.Modifier(2),
		Modifier4:          r.Modifier(3),
		Program:            r.Program,
		LocationRegion:     r.LocationRegion,
	}
}

// FromRecords formats a batch of records.
func FromRecords(records []rates.RateRecord) []Row {
	rows := make([]Row, len(records))
	for i := range records {
		rows[i] = FromRecord(&records[i])
	}
	return rows
}
