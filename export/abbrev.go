package export

import "strings"

var stateAbbreviations = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR",
	"CALIFORNIA": "CA", "COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE",
	"DISTRICT OF COLUMBIA": "DC", "FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI",
	"IDAHO": "ID", "ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA",
	"KANSAS": "KS", "KENTUCKY": "KY", "LOUISIANA": "LA", "MAINE": "ME",
	"MARYLAND": "MD", "MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN",
	"MISSISSIPPI": "MS", "MISSOURI": "MO", "MONTANA": "MT", "NEBRASKA": "NE",
	"NEVADA": "NV", "NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM",
	"NEW YORK": "NY", "NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND", "OHIO": "OH",
	"OKLAHOMA": "OK", "OREGON": "OR", "PENNSYLVANIA": "PA", "RHODE ISLAND": "RI",
	"SOUTH CAROLINA": "SC", "SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX",
	"UTAH": "UT", "VERMONT": "VT", "VIRGINIA": "VA", "WASHINGTON": "WA",
	"WEST VIRGINIA": "WV", "WISCONSIN": "WI", "WYOMING": "WY",
	"PUERTO RICO": "PR", "GUAM": "GU", "U.S. VIRGIN ISLANDS": "VI",
}

var categoryAbbreviations = map[string]string{
	"APPLIED BEHAVIORAL ANALYSIS":              "ABA",
	"APPLIED BEHAVIOR ANALYSIS":                "ABA",
	"BEHAVIORAL HEALTH":                        "BH",
	"HOME AND COMMUNITY BASED SERVICES":        "HCBS",
	"HOME AND COMMUNITY-BASED SERVICES":        "HCBS",
	"INTELLECTUAL AND DEVELOPMENTAL DISABILITY": "IDD",
	"PERSONAL CARE SERVICES":                   "PCS",
	"DURABLE MEDICAL EQUIPMENT":                "DME",
	"NON-EMERGENCY MEDICAL TRANSPORTATION":     "NEMT",
	"EARLY INTERVENTION":                       "EI",
	"SUBSTANCE USE DISORDER":                   "SUD",
}

// AbbreviateState returns the postal code for a state name, or the name
// itself when there is none.
func AbbreviateState(name string) string {
	if a, ok := stateAbbreviations[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return a
	}
	return name
}

// AbbreviateCategory shortens well-known service category names.
func AbbreviateCategory(name string) string {
	if a, ok := categoryAbbreviations[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return a
	}
	return name
}
