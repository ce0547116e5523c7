// Package records turns header-keyed rows into typed records using one
// declarative schema per content type.
package records

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/normalizer"
)

// FieldSpec describes one canonical field.
type FieldSpec struct {
	Name      string
	Aliases   []string
	Normalize func(string) string
	Default   func(now time.Time) string
	Required  bool
	// Passthrough fields take the first alias present even when its value is
	// blank, so presentation placeholders such as "" and "-" survive.
	Passthrough bool
}

// Meta carries per-row context into a schema's Build function.
type Meta struct {
	ID        string
	CreatedAt string
	Sheet     string
	Row       int // 0-based source row
}

// Values holds resolved and normalized field values by canonical name.
type Values map[string]string

// Int returns the integer value of name, or def when it has none.
func (v Values) Int(name string, def int) int {
	return normalizer.ParseInt(v[name], def)
}

// Schema maps raw rows onto one record type.
type Schema struct {
	Type   ingest.ContentType
	Fields []FieldSpec
	Build  func(m Meta, v Values) ingest.Record
}

// resolve looks up, defaults and normalizes every field of the schema.
// It returns the name of the first required field left empty.
func (s Schema) resolve(row ingest.RawRow, now time.Time) (Values, string) {
	v := make(Values, len(s.Fields))
	for _, f := range s.Fields {
		var (
			raw string
			ok  bool
		)
		if f.Passthrough {
			raw, ok = normalizer.ResolveRaw(row, f.Aliases)
		} else {
			raw, ok = normalizer.Resolve(row, f.Aliases)
		}
		if !ok && f.Default != nil {
			raw = f.Default(now)
		}

		if f.Normalize != nil {
			raw = f.Normalize(raw)
		} else {
			raw = normalizer.CleanString(raw)
		}

		if f.Required && raw == "" {
			return nil, f.Name
		}
		v[f.Name] = raw
	}
	return v, ""
}

// missingRequired returns the first empty discriminator of rec, in name order.
func missingRequired(rec ingest.Record) string {
	fields := rec.RequiredFields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.TrimSpace(fields[name]) == "" {
			return name
		}
	}
	return ""
}

func recordID(ct ingest.ContentType, now time.Time, index int) string {
	return fmt.Sprintf("%s_%d_%d", ct, now.UnixMilli(), index)
}

func constant(s string) func(time.Time) string {
	return func(time.Time) string { return s }
}

func currentYear(now time.Time) string {
	return strconv.Itoa(now.Year())
}
