// Package classifier decides which record schema an upload carries, first
// from its filename and then from its header row.
package classifier

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
)

// Basis records which evidence produced a classification.
type Basis string

const (
	BasisFilename Basis = "filename"
	BasisHeaders  Basis = "headers"
	BasisNone     Basis = "none"
)

// Classification is the outcome of Classify.
type Classification struct {
	Type  ingest.ContentType `json:"type"`
	Basis Basis              `json:"basis"`
	Rule  string             `json:"rule,omitempty"`
}

// keywords is a compiled substring set.
type keywords struct {
	matcher *ahocorasick.Matcher
}

func newKeywords(words ...string) keywords {
	return keywords{matcher: ahocorasick.NewStringMatcher(words)}
}

// matches reports whether text contains at least one keyword.
func (k keywords) matches(text string) bool {
	return len(k.matcher.MatchThreadSafe([]byte(text))) > 0
}

// commodityHeaders must all be present for the bracketed header rule.
var commodityHeaders = []string{"[zone]", "[region]", "[district]", "[crop]"}

// Classifier holds compiled keyword sets. It is safe for concurrent use.
type Classifier struct {
	crop, calendarOrSchedule, production, calendar, poultry keywords
	advisory, commodities, agrometName                      keywords

	headerPlantHarvest, headerProduction, headerAgromet, headerPoultry keywords
}

// New compiles the keyword sets.
func New() *Classifier {
	return &Classifier{
		crop:               newKeywords("crop"),
		calendarOrSchedule: newKeywords("calendar", "schedule"),
		production:         newKeywords("production"),
		calendar:           newKeywords("calendar"),
		poultry:            newKeywords("poultry"),
		advisory:           newKeywords("advisory"),
		commodities:        newKeywords("rice", "maize", "tomato", "layers", "broilers", "soyabean", "sorghum"),
		agrometName:        newKeywords("agromet", "advisory", "weather"),

		headerPlantHarvest: newKeywords("plant", "harvest"),
		headerProduction:   newKeywords("production", "activity"),
		headerAgromet:      newKeywords("weather", "advisory", "recommendation"),
		headerPoultry:      newKeywords("poultry", "bird", "layer", "broiler"),
	}
}

var defaultClassifier = New()

// Classify uses the shared default classifier.
func Classify(filename string, headers []string) Classification {
	return defaultClassifier.Classify(filename, headers)
}

// Classify applies the filename rules, then the header rules, in fixed
// precedence. The first rule that matches wins.
func (c *Classifier) Classify(filename string, headers []string) Classification {
	if res := c.ClassifyFilename(filename); res.Type != ingest.Unknown {
		return res
	}
	if len(headers) > 0 {
		if res := c.classifyHeaders(headers); res.Type != ingest.Unknown {
			return res
		}
	}
	return Classification{Type: ingest.Unknown, Basis: BasisNone}
}

// ClassifyFilename applies only the filename rules.
func (c *Classifier) ClassifyFilename(filename string) Classification {
	name := strings.ToLower(filename)
	match := func(ct ingest.ContentType, rule string) Classification {
		return Classification{Type: ct, Basis: BasisFilename, Rule: rule}
	}

	switch {
	case c.crop.matches(name) && c.calendarOrSchedule.matches(name):
		return match(ingest.CropCalendar, "crop+calendar|schedule")
	case c.production.matches(name) && c.calendar.matches(name):
		return match(ingest.ProductionCalendar, "production+calendar")
	case c.poultry.matches(name) && c.calendar.matches(name):
		return match(ingest.PoultryCalendar, "poultry+calendar")
	case c.advisory.matches(name) && c.commodities.matches(name):
		return match(ingest.CommodityAdvisory, "advisory+commodity")
	case c.agrometName.matches(name):
		return match(ingest.AgrometAdvisory, "agromet|advisory|weather")
	}
	return Classification{Type: ingest.Unknown, Basis: BasisNone}
}

func (c *Classifier) classifyHeaders(headers []string) Classification {
	lowered := make([]string, len(headers))
	set := make(map[string]bool, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
		set[lowered[i]] = true
	}
	joined := strings.Join(lowered, " ")

	match := func(ct ingest.ContentType, rule string) Classification {
		return Classification{Type: ct, Basis: BasisHeaders, Rule: rule}
	}

	switch {
	case c.crop.matches(joined) && c.headerPlantHarvest.matches(joined):
		return match(ingest.CropCalendar, "crop+plant|harvest")
	case c.headerProduction.matches(joined):
		return match(ingest.ProductionCalendar, "production|activity")
	case c.headerAgromet.matches(joined):
		return match(ingest.AgrometAdvisory, "weather|advisory|recommendation")
	case c.headerPoultry.matches(joined):
		return match(ingest.PoultryCalendar, "poultry|bird|layer|broiler")
	case containsAll(set, commodityHeaders):
		return match(ingest.CommodityAdvisory, "bracketed commodity headers")
	}
	return Classification{Type: ingest.Unknown, Basis: BasisNone}
}

func containsAll(set map[string]bool, keys []string) bool {
	for _, k := range keys {
		if !set[k] {
			return false
		}
	}
	return true
}
