package service

import (
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/analyzer"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/quality"
)

// Input is one uploaded file.
type Input struct {
	Data     []byte
	FileType ingest.FileType
	Filename string
}

// ParseResult is the outcome of a successful parse.
type ParseResult struct {
	ContentType ingest.ContentType     `json:"contentType"`
	Records     []ingest.Record        `json:"records"`
	Sheets      []SheetSummary         `json:"sheets,omitempty"`
	Calendar    *analyzer.CalendarType `json:"calendar,omitempty"`
	Metadata    Metadata               `json:"metadata"`
}

// Metadata describes the parsed file.
type Metadata struct {
	OriginalName string          `json:"originalName"`
	RecordCount  int             `json:"recordCount"`
	ParsedAt     string          `json:"parsedAt"`
	DataQuality  quality.Report  `json:"dataQuality"`
	IsMultiSheet bool            `json:"isMultiSheet"`
	FileType     ingest.FileType `json:"fileType"`
	Fingerprint  string          `json:"fingerprint,omitempty"`
	SheetNames   []string        `json:"sheetNames,omitempty"`
	SkippedRows  int             `json:"skippedRows,omitempty"`
	Warnings     []string        `json:"warnings,omitempty"`
}

// SheetSummary is the structural outline of one sheet of a multi-sheet file.
type SheetSummary struct {
	Name           string                `json:"name"`
	Rows           int                   `json:"rows"`
	Records        int                   `json:"records"`
	ActivityColumn int                   `json:"activityColumn"`
	TimelineRow    int                   `json:"timelineRow"`
	TimelineKind   analyzer.TimelineKind `json:"timelineKind"`
	Activities     int                   `json:"activities"`
	Colors         []string              `json:"colors,omitempty"`
}
