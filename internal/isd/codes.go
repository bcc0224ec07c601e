package isd

import "sort"

// CodeTable maps a coded field's exact text to its documented description.
// Tables are copied on construction and never modified afterwards.
type CodeTable struct {
	name    string
	entries map[string]string
}

// NewCodeTable copies m into a new table. A nil or empty map is a valid,
// empty table.
func NewCodeTable(m map[string]string) CodeTable {
	entries := make(map[string]string, len(m))
	for k, v := range m {
		entries[k] = v
	}
	return CodeTable{entries: entries}
}

// Lookup returns the description for an exact code match.
func (t CodeTable) Lookup(code string) (string, bool) {
	d, ok := t.entries[code]
	return d, ok
}

// Name returns the built-in table name, or "" for tables built by callers.
func (t CodeTable) Name() string { return t.name }

// Len returns the number of codes in the table.
func (t CodeTable) Len() int { return len(t.entries) }

// Codes returns the table's codes in sorted order.
func (t CodeTable) Codes() []string {
	codes := make([]string, 0, len(t.entries))
	for k := range t.entries {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}

// Map returns a copy of the table contents.
func (t CodeTable) Map() map[string]string {
	m := make(map[string]string, len(t.entries))
	for k, v := range t.entries {
		m[k] = v
	}
	return m
}

// Code tables transcribed from the ISD format document.
var (
	DataSourceFlags = builtinCodeTable("data_source_flag", map[string]string{
		"1": "USAF SURFACE HOURLY observation, candidate for merge with NCEI SURFACE HOURLY (not yet merged, element cross-checks)",
		"2": "NCEI SURFACE HOURLY observation, candidate for merge with USAF SURFACE HOURLY (not yet merged, failed element cross-checks)",
		"3": "USAF SURFACE HOURLY/NCEI SURFACE HOURLY merged observation",
		"4": "USAF SURFACE HOURLY observation",
		"5": "NCEI SURFACE HOURLY observation",
		"6": "ASOS/AWOS observation from NCEI",
		"7": "ASOS/AWOS observation merged with USAF SURFACE HOURLY observation",
		"8": "MAPSO observation (NCEI)",
		"A": "USAF SURFACE HOURLY/NCEI HOURLY PRECIPITATION merged observation, candidate for merge with NCEI SURFACE HOURLY (not yet merged, failed element cross-checks)",
		"B": "NCEI SURFACE HOURLY/NCEI HOURLY PRECIPITATION merged observation, candidate for merge with USAF SURFACE HOURLY (not yet merged, failed element cross-checks)",
		"C": "USAF SURFACE HOURLY/NCEI SURFACE HOURLY/NCEI HOURLY PRECIPITATION merged observation",
		"D": "USAF SURFACE HOURLY/NCEI HOURLY PRECIPITATION merged observation",
		"E": "NCEI SURFACE HOURLY/NCEI HOURLY PRECIPITATION merged observation",
		"F": "Form OMR/1001 – Weather Bureau city office (keyed data)",
		"G": "SAO surface airways observation, pre-1949 (keyed data)",
		"H": "SAO surface airways observation, 1965-1981 format/period (keyed data)",
		"I": "Climate Reference Network observation",
		"J": "Cooperative Network observation",
		"K": "Radiation Network observation",
		"L": "Data from Climate Data Modernization Program (CDMP) data source",
		"M": "Data from National Renewable Energy Laboratory (NREL) data source",
		"N": "NCAR / NCEI cooperative effort (various national datasets)",
		"O": "Summary observation created by NCEI using hourly observations that may not share the same data source flag.",
		"9": "Missing",
	})

	GeophysicalReportTypes = builtinCodeTable("geophysical_report_type", map[string]string{
		"AERO":  "Aerological report",
		"AUST":  "Dataset from Australia",
		"AUTO":  "Report from an automatic station",
		"BOGUS": "Bogus report",
		"BRAZ":  "Dataset from Brazil",
		"COOPD": "US Cooperative Network summary of day report",
		"COOPS": "US Cooperative Network soil temperature report",
		"CRB":   "Climate Reference Book data from CDMP",
		"CRN05": "Climate Reference Network report, with 5-minute reporting interval",
		"CRN15": "Climate Reference Network report, with 15-minute reporting interval",
		"FM-12": "SYNOP Report of surface observation from a fixed land station",
		"FM-13": "SHIP Report of surface observation from a sea station",
		"FM-14": "SYNOP MOBIL Report of surface observation from a mobile land station",
		"FM-15": "METAR Aviation routine weather report",
		"FM-16": "SPECI Aviation selected special weather report",
		"FM-18": "BUOY Report of a buoy observation",
		"GREEN": "Dataset from Greenland",
		"MESOH": "Hydrological observations from MESONET operated civilian or government agency",
		"MESOS": "MESONET operated civilian or government agency",
		"MESOW": "Snow observations from MESONET operated civilian or government agency",
		"MEXIC": "Dataset from Mexico",
		"NSRDB": "National Solar Radiation Data Base",
		"PCP15": "US 15-minute precipitation network report",
		"PCP60": "US 60-minute precipitation network report",
		"S-S-A": "Synoptic, airways, and auto merged report",
		"SA-AU": "Airways and auto merged report",
		"SAO":   "Airways report (includes record specials)",
		"SAOSP": "Airways special report (excluding record specials)",
		"SHEF":  "Standard Hydrologic Exchange Format",
		"SMARS": "Supplementary airways station report",
		"SOD":   "Summary of day report from U.S. ASOS or AWOS station",
		"SOM":   "Summary of month report from U.S. ASOS or AWOS station",
		"SURF":  "Surface Radiation Network report",
		"SY-AE": "Synoptic and aero merged report",
		"SY-AU": "Synoptic and auto merged report",
		"SY-MT": "Synoptic and METAR merged report",
		"SY-SA": "Synoptic and airways merged report",
		"WBO":   "Weather Bureau Office",
		"WNO":   "Washington Naval Observatory",
		"99999": "Missing",
	})

	QualityControlProcesses = builtinCodeTable("quality_control_process", map[string]string{
		"V010": "No A or M Quality Control applied",
		"V020": "Automated Quality Control",
		"V030": "subjected to Quality Control",
	})

	QualityCodes = builtinCodeTable("quality_code", map[string]string{
		"0": "Passed gross limits check",
		"1": "Passed all quality control checks",
		"2": "Suspect",
		"3": "Erroneous",
		"4": "Passed gross limits check, data originate from an NCEI data source",
		"5": "Passed all quality control checks, data originate from an NCEI data source",
		"6": "Suspect, data originate from an NCEI data source",
		"7": "Erroneous, data originate from an NCEI data source",
		"9": "Passed gross limits check if element is present",
		"A": "Data value flagged as suspect, but accepted as a good value",
		"C": "Temperature and dew point received from Automated Weather Observing System (AWOS) are reported in whole degrees Celsius. Automated QC flags these values, but they are accepted as valid.",
		"I": "Data value not originally in data, but inserted by validator",
		"M": "Manual changes made to value based on information provided by NWS or FAA",
		"P": "Data value not originally flagged as suspect, but replaced by validator",
		"R": "Data value replaced with value computed by NCEI software",
		"U": "Data value replaced with edited value",
	})

	WindObservationTypes = builtinCodeTable("wind_observation_type", map[string]string{
		"A": "Abridged Beaufort",
		"B": "Beaufort",
		"C": "Calm",
		"H": "5-Minute Average Speed",
		"N": "Normal",
		"R": "60-Minute Average Speed",
		"Q": "Squall",
		"T": "180 Minute Average Speed",
		"V": "Variable",
		"9": "Missing",
	})

	CeilingDeterminations = builtinCodeTable("ceiling_determination", map[string]string{
		"A": "Aircraft",
		"B": "Balloon",
		"C": "Statistically derived",
		"D": "Persistent cirriform ceiling (pre-1950 data)",
		"E": "Estimated",
		"M": "Measured",
		"P": "Precipitation ceiling (pre-1950 data)",
		"R": "Radar",
		"S": "ASOS augmented",
		"U": "Unknown ceiling (pre-1950 data)",
		"V": "Variable ceiling (pre-1950 data)",
		"W": "Obscured",
		"9": "Missing",
	})

	CAVOKCodes = builtinCodeTable("cavok", map[string]string{
		"N": "No",
		"Y": "Yes",
		"9": "Missing",
	})

	VisibilityVariabilityCodes = builtinCodeTable("visibility_variability", map[string]string{
		"N": "Not Variable",
		"V": "Variable",
		"9": "Missing",
	})
)

var namedCodeTables = map[string]CodeTable{}

func builtinCodeTable(name string, m map[string]string) CodeTable {
	t := NewCodeTable(m)
	t.name = name
	namedCodeTables[name] = t
	return t
}

// LookupCodeTable returns a built-in table by the name used in section
// definition files.
func LookupCodeTable(name string) (CodeTable, bool) {
	t, ok := namedCodeTables[name]
	return t, ok
}

// CodeTableNames lists the built-in table names in sorted order.
func CodeTableNames() []string {
	names := make([]string, 0, len(namedCodeTables))
	for k := range namedCodeTables {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
