// Package ingest holds the shared model of the agricultural ingestion pipeline:
// content types, raw rows, typed records and the error taxonomy.
package ingest

import (
	"strings"
)

// ContentType identifies which record schema a file carries.
type ContentType string

const (
	CropCalendar       ContentType = "crop_calendar"
	ProductionCalendar ContentType = "production_calendar"
	PoultryCalendar    ContentType = "poultry_calendar"
	CommodityAdvisory  ContentType = "commodity_advisory"
	AgrometAdvisory    ContentType = "agromet_advisory"
	Unknown            ContentType = "unknown"
)

// ContentTypes lists every known content type except Unknown.
func ContentTypes() []ContentType {
	return []ContentType{CropCalendar, ProductionCalendar, PoultryCalendar, CommodityAdvisory, AgrometAdvisory}
}

// ParseContentType maps a token onto a ContentType, returning Unknown for anything else.
func ParseContentType(s string) ContentType {
	ct := ContentType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ContentTypes() {
		if ct == known {
			return ct
		}
	}
	return Unknown
}

// FileType is the declared container format of an upload.
type FileType string

const (
	FileTypeCSV   FileType = "csv"
	FileTypeExcel FileType = "excel"
)

// ParseFileType accepts the declared token as well as common extensions.
func ParseFileType(s string) (FileType, bool) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv", "tsv", "txt":
		return FileTypeCSV, true
	case "excel", "xlsx", "xlsm", "xls":
		return FileTypeExcel, true
	}
	return "", false
}

// RawRow is one data row keyed by header text.
type RawRow struct {
	Row     int               // 0-based row in the source sheet or file
	Headers []string          // header order as found in the file
	Values  map[string]string // header -> raw cell text
}

// Get returns the raw value under header, or "".
func (r RawRow) Get(header string) string {
	return r.Values[header]
}

// Has reports whether header exists with a non-blank value.
func (r RawRow) Has(header string) bool {
	return strings.TrimSpace(r.Values[header]) != ""
}

// IsBlank reports whether every value in the row is empty or whitespace.
func (r RawRow) IsBlank() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// NewRawRow zips headers with cells positionally. Missing cells become "".
func NewRawRow(row int, headers, cells []string) RawRow {
	values := make(map[string]string, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		v := ""
		if i < len(cells) {
			v = cells[i]
		}
		if _, dup := values[h]; dup {
			// first column wins for duplicated headers
			continue
		}
		values[h] = v
	}
	return RawRow{Row: row, Headers: headers, Values: values}
}

// Sheet is one worksheet's header-keyed rows.
type Sheet struct {
	Name string
	Rows []RawRow
}
