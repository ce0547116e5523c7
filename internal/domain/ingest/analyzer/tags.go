package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type tagRule struct {
	tag   ContentTag
	terms []string
}

// activityRules are checked in order; the first matching term wins.
var activityRules = []tagRule{
	{TagPlanting, []string{"plant", "sowing"}},
	{TagHarvest, []string{"harvest"}},
	{TagFertilizer, []string{"fertiliz", "fertiliser"}},
	{TagWeeding, []string{"weed"}},
	{TagPestControl, []string{"pest", "spray"}},
}

var (
	ordinalPattern = regexp.MustCompile(`(?i)\d+(st|nd|rd|th)`)
	timePattern    = regexp.MustCompile(`(?i)\b(weeks?|wk|months?|mon(day)?|tue(s|sday)?|wed(nesday)?|thu(r|rs|rsday)?|fri(day)?|sat(urday)?|sun(day)?|jan(uary)?|feb(ruary)?|mar(ch)?|apr(il)?|may|june?|july?|aug(ust)?|sep(t|tember)?|oct(ober)?|nov(ember)?|dec(ember)?)\d*\b`)
)

// Tag classifies a cell value at the given 0-based position.
func Tag(value string, row, col int) ContentTag {
	v := strings.TrimSpace(value)
	if v == "" {
		return TagEmpty
	}
	lower := strings.ToLower(v)
	for _, rule := range activityRules {
		for _, term := range rule.terms {
			if strings.Contains(lower, term) {
				return rule.tag
			}
		}
	}
	switch {
	case ordinalPattern.MatchString(v):
		return TagNumbered
	case timePattern.MatchString(v):
		return TagTimeIndicator
	case row > 2 && col <= 3 && utf8.RuneCountInString(v) > 3:
		return TagPotentialActivity
	}
	return TagContent
}

// isActive reports whether a cell carries a value, a color or any
// formatting entry. A white fill or a plain border still counts.
func isActive(c *CellInfo) bool {
	if c == nil {
		return false
	}
	if strings.TrimSpace(c.Value) != "" {
		return true
	}
	return !c.Colors.IsEmpty() || !c.Formatting.IsEmpty()
}
