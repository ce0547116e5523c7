// Package quality scores parsed records and collects advisory warnings.
package quality

import (
	"fmt"
	"math"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/normalizer"
)

// Report summarizes the validity of a batch of records. Quality is the
// rounded percentage of valid records and ignores warnings.
type Report struct {
	Total    int      `json:"total"`
	Valid    int      `json:"valid"`
	Invalid  int      `json:"invalid"`
	Quality  int      `json:"quality"`
	Warnings []string `json:"warnings"`
}

// Validator checks records against reference data.
type Validator struct {
	ref *normalizer.Reference
}

// New creates a Validator. A nil reference uses the embedded default.
func New(ref *normalizer.Reference) *Validator {
	if ref == nil {
		ref = normalizer.DefaultReference()
	}
	return &Validator{ref: ref}
}

// Validate scores recs, which are expected to be of type ct.
func (v *Validator) Validate(ct ingest.ContentType, recs []ingest.Record) Report {
	r := Report{Total: len(recs), Warnings: []string{}}
	for i, rec := range recs {
		if complete(rec) {
			r.Valid++
		}
		r.Warnings = append(r.Warnings, v.warnings(ct, i+1, rec)...)
	}
	r.Invalid = r.Total - r.Valid
	if r.Total > 0 {
		r.Quality = int(math.Round(100 * float64(r.Valid) / float64(r.Total)))
	}
	return r
}

func complete(rec ingest.Record) bool {
	for _, v := range rec.RequiredFields() {
		if v == "" {
			return false
		}
	}
	return true
}

func (v *Validator) warnings(ct ingest.ContentType, n int, rec ingest.Record) []string {
	var out []string
	switch r := rec.(type) {
	case ingest.CropCalendarRecord:
		if ct != ingest.CropCalendar || r.District == "" || v.ref.KnownDistrict(r.District) {
			break
		}
		msg := fmt.Sprintf("record %d: unrecognized district %q", n, r.District)
		if s := v.ref.SuggestDistrict(r.District); s != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}
		out = append(out, msg)

	case ingest.PoultryCalendarRecord:
		if w := weekWarning(n, r.StartWeek, r.EndWeek); w != "" {
			out = append(out, w)
		}

	case ingest.CommodityAdvisoryRecord:
		if w := weekWarning(n, r.StartWeek, r.EndWeek); w != "" {
			out = append(out, w)
		}
		if r.CommodityCode == "" {
			out = append(out, fmt.Sprintf("record %d: missing commodity code for crop %q", n, r.Crop))
		}
	}
	return out
}

func weekWarning(n, start, end int) string {
	if validWeek(start) && validWeek(end) {
		return ""
	}
	return fmt.Sprintf("record %d: week range %d-%d outside %d-%d", n, start, end, normalizer.MinWeek, normalizer.MaxWeek)
}

func validWeek(w int) bool {
	return w >= normalizer.MinWeek && w <= normalizer.MaxWeek
}
