// Package normalizer cleans and canonicalizes field values coming out of
// heterogeneous agricultural spreadsheets: strings, months, dates, Excel
// serial dates, week ranges and "CODE/Name" pairs.
package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Months in calendar order.
var Months = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

const (
	MinWeek = 1
	MaxWeek = 52

	isoDate = "2006-01-02"
)

// dateFormats are tried in order. US month-first layouts come before
// day-first ones so that ambiguous dates resolve month-first.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"2/1/2006",
	"1-2-2006",
	"2-1-2006",
	"02.01.2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"01-02-06",
	"1/2/06",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

var digitRun = regexp.MustCompile(`\d+`)

// CleanString renders v as trimmed text. nil becomes "".
func CleanString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// ParseMonth canonicalizes a month reference to its full English name.
// Exact names pass through, integers 1-12 map to names, and otherwise the
// first month whose lower-case name contains the input (or is contained by
// it) wins. Anything else is returned cleaned.
func ParseMonth(v string) string {
	s := CleanString(v)
	if s == "" {
		return ""
	}

	for _, m := range Months {
		if s == m {
			return m
		}
	}

	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
		return Months[n-1]
	}

	lower := strings.ToLower(s)
	for _, m := range Months {
		lm := strings.ToLower(m)
		if strings.Contains(lm, lower) || strings.Contains(lower, lm) {
			return m
		}
	}
	return s
}

// ParseDate returns YYYY-MM-DD when v is a recognizable date, otherwise v cleaned.
func ParseDate(v string) string {
	s := CleanString(v)
	if s == "" {
		return ""
	}
	if t, ok := parseTime(s); ok {
		return t.Format(isoDate)
	}
	return s
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseExcelSerialDate converts an Excel date serial (1900 date system) to
// YYYY-MM-DD. Non-numeric, zero or out-of-range input yields "".
func ParseExcelSerialDate(v string) string {
	s := CleanString(v)
	if s == "" {
		return ""
	}
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial <= 0 {
		return ""
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return ""
	}
	return t.Format(isoDate)
}

// WeekRange is an inclusive span of production weeks.
type WeekRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ParseWeekRange reads "a-b" or "n" into a clamped range. Sides that carry no
// number default to 1. The order of the sides is kept as written.
func ParseWeekRange(v string) WeekRange {
	s := CleanString(v)
	if s == "" {
		return WeekRange{Start: MinWeek, End: MinWeek}
	}

	if before, after, found := strings.Cut(s, "-"); found {
		return WeekRange{
			Start: ClampWeek(weekNumber(before)),
			End:   ClampWeek(weekNumber(after)),
		}
	}

	if n, ok := firstInt(s); ok {
		w := ClampWeek(n)
		return WeekRange{Start: w, End: w}
	}
	return WeekRange{Start: MinWeek, End: MinWeek}
}

// Ordered returns the range with Start <= End.
func (w WeekRange) Ordered() WeekRange {
	if w.Start > w.End {
		return WeekRange{Start: w.End, End: w.Start}
	}
	return w
}

// ClampWeek bounds n to [MinWeek, MaxWeek].
func ClampWeek(n int) int {
	return min(MaxWeek, max(MinWeek, n))
}

// ParseInt reads the first integer in v, falling back to def.
func ParseInt(v string, def int) int {
	if n, ok := firstInt(CleanString(v)); ok {
		return n
	}
	return def
}

func weekNumber(s string) int {
	if n, ok := firstInt(s); ok {
		return n
	}
	return MinWeek
}

func firstInt(s string) (int, bool) {
	m := digitRun.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SplitCode splits a "CODE/Name" cell. Without a slash the whole value is the name.
func SplitCode(v string) (code, name string) {
	s := CleanString(v)
	before, after, found := strings.Cut(s, "/")
	if !found {
		return "", s
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}
