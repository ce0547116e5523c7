// Package analyzer reconstructs activity timelines from workbook cell
// geometry, styling and color.
package analyzer

import "github.com/FACorreiaa/agro-ingest/internal/domain/ingest/normalizer"

// ============================================================================
// Cells
// ============================================================================

// CellType is the storage type of a cell value.
type CellType string

const (
	CellEmpty   CellType = "empty"
	CellString  CellType = "string"
	CellNumber  CellType = "number"
	CellBool    CellType = "bool"
	CellDate    CellType = "date"
	CellFormula CellType = "formula"
	CellError   CellType = "error"
)

// ContentTag is the semantic role assigned to a cell's text.
type ContentTag string

const (
	TagEmpty             ContentTag = "empty"
	TagPlanting          ContentTag = "activity-planting"
	TagHarvest           ContentTag = "activity-harvest"
	TagFertilizer        ContentTag = "activity-fertilizer"
	TagWeeding           ContentTag = "activity-weeding"
	TagPestControl       ContentTag = "activity-pest-control"
	TagNumbered          ContentTag = "activity-numbered"
	TagTimeIndicator     ContentTag = "time-indicator"
	TagPotentialActivity ContentTag = "potential-activity"
	TagContent           ContentTag = "content"
)

// IsActivity reports whether the tag names a farm activity.
func (t ContentTag) IsActivity() bool {
	return len(t) >= len("activity") && t[:len("activity")] == "activity"
}

// FillFormat is the cell background.
type FillFormat struct {
	Type       string   `json:"type,omitempty"`
	Pattern    int      `json:"pattern,omitempty"`
	Foreground string   `json:"foreground,omitempty"`
	Background string   `json:"background,omitempty"`
	Colors     []string `json:"colors,omitempty"`
}

// FontFormat is the font of a cell.
type FontFormat struct {
	Name      string  `json:"name,omitempty"`
	Size      float64 `json:"size,omitempty"`
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Underline string  `json:"underline,omitempty"`
	Color     string  `json:"color,omitempty"`
}

// BorderFormat is one edge of a cell border.
type BorderFormat struct {
	Type  string `json:"type"`
	Color string `json:"color,omitempty"`
	Style int    `json:"style"`
}

// AlignmentFormat is the text placement of a cell.
type AlignmentFormat struct {
	Horizontal string `json:"horizontal,omitempty"`
	Vertical   string `json:"vertical,omitempty"`
	WrapText   bool   `json:"wrapText,omitempty"`
	Indent     int    `json:"indent,omitempty"`
}

// Formatting is the visual marking of a cell. An entry is present whenever
// the cell style declares it, even when it matches the sheet defaults.
type Formatting struct {
	Fill      *FillFormat      `json:"fill,omitempty"`
	Font      *FontFormat      `json:"font,omitempty"`
	Borders   []BorderFormat   `json:"borders,omitempty"`
	Alignment *AlignmentFormat `json:"alignment,omitempty"`
}

// IsEmpty reports whether no formatting entry is present.
func (f Formatting) IsEmpty() bool {
	return f.Fill == nil && f.Font == nil && len(f.Borders) == 0 && f.Alignment == nil
}

// Colors are the normalized #RRGGBB colors of a cell.
type Colors struct {
	Background          string `json:"background,omitempty"`
	BackgroundSecondary string `json:"backgroundSecondary,omitempty"`
	Text                string `json:"text,omitempty"`
}

// IsEmpty reports whether no color is set.
func (c Colors) IsEmpty() bool {
	return c.Background == "" && c.BackgroundSecondary == "" && c.Text == ""
}

// CellInfo is everything the analyzer knows about one cell.
type CellInfo struct {
	Address      string     `json:"address"`
	Row          int        `json:"row"` // 0-based
	Col          int        `json:"col"` // 0-based
	Value        string     `json:"value,omitempty"`
	DisplayValue string     `json:"displayValue,omitempty"`
	Type         CellType   `json:"type"`
	Formula      string     `json:"formula,omitempty"`
	StyleID      int        `json:"styleId,omitempty"`
	NumFmt       int        `json:"numFmt,omitempty"`
	Formatting   Formatting `json:"formatting"`
	Colors       Colors     `json:"colors"`
	Tag          ContentTag `json:"tag"`
	Active       bool       `json:"active"`
}

// Range is an inclusive 0-based cell rectangle.
type Range struct {
	StartRow int `json:"startRow"`
	StartCol int `json:"startCol"`
	EndRow   int `json:"endRow"`
	EndCol   int `json:"endCol"`
}

// Grid is the populated range of a sheet, row-major.
type Grid struct {
	Sheet string
	Range Range
	cells [][]*CellInfo
}

// At returns the cell at absolute 0-based coordinates, or nil outside the range.
func (g *Grid) At(row, col int) *CellInfo {
	r, c := row-g.Range.StartRow, col-g.Range.StartCol
	if r < 0 || c < 0 || r >= len(g.cells) || c >= len(g.cells[r]) {
		return nil
	}
	return g.cells[r][c]
}

// ============================================================================
// Analysis output
// ============================================================================

// Period is one active cell to the right of an activity name.
type Period struct {
	Column     int        `json:"column"`
	WeekIndex  int        `json:"weekIndex"`
	RawValue   string     `json:"rawValue,omitempty"`
	Colors     Colors     `json:"colors"`
	Formatting Formatting `json:"formatting"`
	Active     bool       `json:"active"`
}

// Activity is a named row with at least one active period.
type Activity struct {
	Name    string   `json:"name"`
	Row     int      `json:"row"`
	Periods []Period `json:"periods"`
	Colors  []string `json:"colors,omitempty"`
}

// WeekSpan returns the smallest and largest week index of the activity.
func (a Activity) WeekSpan() (start, end int) {
	for i, p := range a.Periods {
		if i == 0 || p.WeekIndex < start {
			start = p.WeekIndex
		}
		if i == 0 || p.WeekIndex > end {
			end = p.WeekIndex
		}
	}
	return start, end
}

// TimelineKind tells whether timeline labels came from the sheet.
type TimelineKind string

const (
	TimelineInferred  TimelineKind = "inferred"
	TimelineExtracted TimelineKind = "extracted"
)

// TimelinePeriod is one column of the timeline.
type TimelinePeriod struct {
	Index  int    `json:"index"`
	Column int    `json:"column"`
	Label  string `json:"label"`
	Type   string `json:"type"`
}

// Timeline labels the period columns of a sheet.
type Timeline struct {
	Kind    TimelineKind     `json:"kind"`
	Periods []TimelinePeriod `json:"periods"`
}

// ColorPattern counts the cells using one color.
type ColorPattern struct {
	Color string   `json:"color"`
	Count int      `json:"count"`
	Cells []string `json:"cells"`
}

// Structure is the detected layout of a sheet. -1 means not found.
type Structure struct {
	ActivityColumn int `json:"activityColumn"`
	TimelineRow    int `json:"timelineRow"`
}

// SheetAnalysis is the full structural analysis of one sheet.
type SheetAnalysis struct {
	Name          string         `json:"name"`
	Range         Range          `json:"range"`
	Structure     Structure      `json:"structure"`
	Activities    []Activity     `json:"activities"`
	Timeline      Timeline       `json:"timeline"`
	ColorPatterns []ColorPattern `json:"colorPatterns"`

	grid *Grid
}

// Grid returns the analyzed cells.
func (s *SheetAnalysis) Grid() *Grid { return s.grid }

// Color looks up the pattern for a normalized hex color.
func (s *SheetAnalysis) Color(hex string) (ColorPattern, bool) {
	for _, p := range s.ColorPatterns {
		if p.Color == hex {
			return p, true
		}
	}
	return ColorPattern{}, false
}

// CalendarKind is the inferred calendar family of a workbook.
type CalendarKind string

const (
	CalendarCycle    CalendarKind = "cycle"
	CalendarSeasonal CalendarKind = "seasonal"
	CalendarUnknown  CalendarKind = "unknown"
)

// CalendarType is the result of calendar inference.
type CalendarType struct {
	Type         CalendarKind `json:"type"`
	Confidence   float64      `json:"confidence"`
	PoultryCount int          `json:"poultryCount"`
	CropCount    int          `json:"cropCount"`
}

// Workbook is the analysis of every sheet, in workbook order.
type Workbook struct {
	Sheets   []*SheetAnalysis `json:"sheets"`
	Calendar CalendarType     `json:"calendar"`
}

// Sheet returns the analysis of the named sheet.
func (w *Workbook) Sheet(name string) (*SheetAnalysis, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// WeeksAt returns the clamped week span of the activity on the given 0-based row.
func (w *Workbook) WeeksAt(sheet string, row int) (start, end int, ok bool) {
	s, found := w.Sheet(sheet)
	if !found {
		return 0, 0, false
	}
	for _, a := range s.Activities {
		if a.Row == row && len(a.Periods) > 0 {
			start, end = a.WeekSpan()
			return normalizer.ClampWeek(start), normalizer.ClampWeek(end), true
		}
	}
	return 0, 0, false
}
