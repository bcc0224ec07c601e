// Package isd parses fixed-width NOAA Integrated Surface Database (ISD)
// records into a nested, self-describing tree.
//
// # Data Source
//
// ISD files are published by NCEI, one file per station and year, at
// https://www.ncei.noaa.gov/data/global-hourly/. Each line is one
// observation. The first 105 characters are the control and mandatory data
// sections; an optional variable-length additional section follows and is
// not decoded here.
//
// # ISD Data Conventions
//
// Positions:
//
//	The format document numbers columns from 1, inclusive on both ends:
//	"POS 5-10" is the USAF station number. Columns(5, 10) converts that to
//	the zero-based half-open Position{Start: 4, End: 10} used internally.
//
// Scaled numbers:
//
//	Signed or unsigned integers with an implied scaling factor. Latitude
//	"+69067" with scaling factor 1000 is 69.067 degrees; air temperature
//	"-0029" with scaling factor 10 is -2.9 degrees Celsius. Values are kept
//	as integer units plus scale, so 69067/1000 is written "69.067" exactly.
//
// Missing values:
//
//	Every scaled field has an all-nines sentinel as wide as the field
//	("+9999", "99999", "999"). A field equal to its sentinel decodes to an
//	absent value, which serializes as JSON null.
//
// Codes:
//
//	Single- or multi-character codes ("4", "FM-12", "V020") are looked up
//	in the code tables of the format document. Unknown codes keep their
//	value and carry no description.
//
// # Record Shape
//
//	{
//	  "datestamp": "2020-01-01T00:00:00Z",
//	  "identifier": "010230-99999",
//	  "sections": [
//	    {"name": "control", "measures": [{"usaf": "010230"}, ...]},
//	    {"name": "mandatory", "measures": [...]}
//	  ]
//	}
//
// The identifier is "<usaf>-<wban>" and the datestamp combines the
// YYYYMMDD date and HHMM time fields of the control section in UTC.
//
// Measure, Section and Parser values are immutable once built and safe for
// concurrent use.
package isd
