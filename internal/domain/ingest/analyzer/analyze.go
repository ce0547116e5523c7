package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/extractor"
)

// Scan windows for structural detection.
const (
	activityScanCols = 5
	activityScanRows = 20
	timelineScanRows = 5
	timelineScanCols = 20

	minActivityCells = 2
	minTimeCells     = 3
)

// Analyzer performs structural analysis of workbooks.
type Analyzer struct {
	logger  *slog.Logger
	workers int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWorkers bounds the number of sheets analyzed concurrently.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// New creates an Analyzer. A nil logger discards output.
func New(logger *slog.Logger, opts ...Option) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &Analyzer{logger: logger, workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze opens xlsx bytes and analyzes every sheet.
func (a *Analyzer) Analyze(ctx context.Context, data []byte) (*Workbook, error) {
	f, err := extractor.OpenWorkbook(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return a.AnalyzeFile(ctx, f)
}

// AnalyzeFile analyzes every sheet of an open workbook. Cells are read
// sequentially; the per-sheet analysis runs concurrently and results keep
// workbook order.
func (a *Analyzer) AnalyzeFile(ctx context.Context, f *excelize.File) (*Workbook, error) {
	names := f.GetSheetList()
	styles := newStyleCache(f)

	grids := make([]*Grid, len(names))
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := readGrid(f, name, styles)
		if err != nil {
			return nil, err
		}
		grids[i] = g
	}

	sheets := make([]*SheetAnalysis, len(grids))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(a.workers)
	for i, g := range grids {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sheets[i] = AnalyzeGrid(g)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to analyze workbook: %w", err)
	}

	wb := &Workbook{Sheets: sheets, Calendar: CalendarType{Type: CalendarUnknown}}
	if len(sheets) > 0 {
		wb.Calendar = InferCalendar(sheets[0].Activities)
	}

	for _, s := range sheets {
		a.logger.Debug("sheet analyzed",
			slog.String("sheet", s.Name),
			slog.Int("activity_column", s.Structure.ActivityColumn),
			slog.Int("timeline_row", s.Structure.TimelineRow),
			slog.Int("activities", len(s.Activities)),
			slog.Int("colors", len(s.ColorPatterns)),
		)
	}
	return wb, nil
}

// ============================================================================
// Per-sheet analysis
// ============================================================================

// AnalyzeGrid tags every cell of g and derives the sheet structure. It does
// not touch the workbook and is safe to run concurrently for distinct grids.
func AnalyzeGrid(g *Grid) *SheetAnalysis {
	for _, row := range g.cells {
		for _, c := range row {
			c.Tag = Tag(c.Value, c.Row, c.Col)
			c.Active = isActive(c)
		}
	}

	s := &SheetAnalysis{
		Name:  g.Sheet,
		Range: g.Range,
		Structure: Structure{
			ActivityColumn: detectActivityColumn(g),
			TimelineRow:    detectTimelineRow(g),
		},
		grid: g,
	}
	s.Activities = extractActivities(g, s.Structure)
	s.Timeline = buildTimeline(g, s.Structure)
	s.ColorPatterns = aggregateColors(g)
	return s
}

func detectActivityColumn(g *Grid) int {
	for col := 0; col < activityScanCols && col <= g.Range.EndCol; col++ {
		n := 0
		for row := 0; row < activityScanRows && row <= g.Range.EndRow; row++ {
			if c := g.At(row, col); c != nil && c.Tag.IsActivity() {
				n++
			}
		}
		if n >= minActivityCells {
			return col
		}
	}
	return -1
}

func detectTimelineRow(g *Grid) int {
	for row := 0; row < timelineScanRows && row <= g.Range.EndRow; row++ {
		n := 0
		for col := 0; col < timelineScanCols && col <= g.Range.EndCol; col++ {
			if c := g.At(row, col); c != nil && c.Tag == TagTimeIndicator {
				n++
			}
		}
		if n >= minTimeCells {
			return row
		}
	}
	return -1
}

func extractActivities(g *Grid, st Structure) []Activity {
	col := max(st.ActivityColumn, 0)
	start := 1
	if st.TimelineRow >= 0 {
		start = st.TimelineRow + 1
	}

	var out []Activity
	for row := start; row <= g.Range.EndRow; row++ {
		name := g.At(row, col)
		if name == nil || strings.TrimSpace(name.Value) == "" {
			continue
		}
		act := Activity{Name: strings.TrimSpace(name.DisplayValue), Row: row}
		if act.Name == "" {
			act.Name = strings.TrimSpace(name.Value)
		}
		for c := col + 1; c <= g.Range.EndCol; c++ {
			cell := g.At(row, c)
			if !isActive(cell) {
				continue
			}
			act.Periods = append(act.Periods, Period{
				Column:     c,
				WeekIndex:  c - col,
				RawValue:   cell.Value,
				Colors:     cell.Colors,
				Formatting: cell.Formatting,
				Active:     true,
			})
			if bg := cell.Colors.Background; bg != "" && bg != White && !contains(act.Colors, bg) {
				act.Colors = append(act.Colors, bg)
			}
		}
		if len(act.Periods) > 0 {
			out = append(out, act)
		}
	}
	return out
}

func buildTimeline(g *Grid, st Structure) Timeline {
	if st.TimelineRow < 0 {
		tl := Timeline{Kind: TimelineInferred}
		for col := 2; col <= g.Range.EndCol; col++ {
			tl.Periods = append(tl.Periods, TimelinePeriod{
				Index:  len(tl.Periods),
				Column: col,
				Label:  fmt.Sprintf("Week %d", col-1),
				Type:   "week",
			})
		}
		return tl
	}

	tl := Timeline{Kind: TimelineExtracted}
	for col := 0; col <= g.Range.EndCol; col++ {
		c := g.At(st.TimelineRow, col)
		if c == nil || strings.TrimSpace(c.Value) == "" {
			continue
		}
		tl.Periods = append(tl.Periods, TimelinePeriod{
			Index:  len(tl.Periods),
			Column: col,
			Label:  c.DisplayValue,
			Type:   string(c.Tag),
		})
	}
	return tl
}

// aggregateColors walks the grid row-major and counts every non-white color.
func aggregateColors(g *Grid) []ColorPattern {
	var out []ColorPattern
	index := make(map[string]int)
	for _, row := range g.cells {
		for _, c := range row {
			for _, color := range []string{c.Colors.Background, c.Colors.BackgroundSecondary, c.Colors.Text} {
				if color == "" || color == White {
					continue
				}
				i, ok := index[color]
				if !ok {
					i = len(out)
					index[color] = i
					out = append(out, ColorPattern{Color: color})
				}
				out[i].Count++
				out[i].Cells = append(out[i].Cells, c.Address)
			}
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ============================================================================
// Calendar inference
// ============================================================================

var (
	poultryTerms = ahocorasick.NewStringMatcher([]string{"brooding", "laying", "feeding", "vaccination", "egg"})
	cropTerms    = ahocorasick.NewStringMatcher([]string{"planting", "sowing", "harvest", "weeding", "fertilizer"})
)

// InferCalendar decides whether activities describe a poultry cycle or a
// crop season.
func InferCalendar(activities []Activity) CalendarType {
	ct := CalendarType{Type: CalendarUnknown}
	for _, a := range activities {
		name := strings.ToLower(a.Name)
		if len(poultryTerms.MatchThreadSafe([]byte(name))) > 0 {
			ct.PoultryCount++
		}
		if len(cropTerms.MatchThreadSafe([]byte(name))) > 0 {
			ct.CropCount++
		}
	}

	switch {
	case ct.PoultryCount > ct.CropCount:
		ct.Type = CalendarCycle
	case ct.CropCount > ct.PoultryCount:
		ct.Type = CalendarSeasonal
	}
	if len(activities) > 0 {
		ct.Confidence = float64(max(ct.PoultryCount, ct.CropCount)) / float64(len(activities))
	}
	return ct
}
