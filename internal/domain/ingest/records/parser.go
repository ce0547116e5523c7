package records

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
)

// Parser builds typed records from raw rows.
type Parser struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// New creates a Parser. A nil logger discards output.
func New(logger *slog.Logger, opts ...Option) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Parser{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CommodityResult holds the records of a commodity workbook and the rows
// that were skipped.
type CommodityResult struct {
	Records []ingest.Record
	Skipped []*ingest.RowValidationError
}

// Parse builds records of type ct. For every type except commodity
// advisories the first row missing a required field aborts the parse.
func (p *Parser) Parse(ct ingest.ContentType, rows []ingest.RawRow) ([]ingest.Record, error) {
	if ct == ingest.CommodityAdvisory {
		res := p.ParseCommodity([]ingest.Sheet{{Rows: rows}}, nil)
		return res.Records, nil
	}

	schema, ok := rowSchemas[ct]
	if !ok {
		return nil, fmt.Errorf("%w: no schema for %q", ingest.ErrClassification, ct)
	}

	now := p.now()
	createdAt := now.UTC().Format(time.RFC3339)
	out := make([]ingest.Record, 0, len(rows))
	for _, row := range rows {
		v, missing := schema.resolve(row, now)
		if missing != "" {
			return nil, &ingest.RowValidationError{ContentType: ct, Row: row.Row + 1, Field: missing}
		}
		out = append(out, schema.Build(Meta{
			ID:        recordID(ct, now, len(out)),
			CreatedAt: createdAt,
			Row:       row.Row,
		}, v))
	}
	return filterComplete(out), nil
}

// ParseCommodity builds commodity advisory records from every sheet. Rows
// missing a district or crop are logged and skipped.
func (p *Parser) ParseCommodity(sheets []ingest.Sheet, hints WeekHints) CommodityResult {
	schema := commoditySchema(hints)
	now := p.now()
	createdAt := now.UTC().Format(time.RFC3339)

	var res CommodityResult
	index := 0
	for _, sheet := range sheets {
		for _, row := range sheet.Rows {
			v, _ := schema.resolve(row, now)
			rec := schema.Build(Meta{
				ID:        recordID(ingest.CommodityAdvisory, now, index),
				CreatedAt: createdAt,
				Sheet:     sheet.Name,
				Row:       row.Row,
			}, v)

			if field := missingRequired(rec); field != "" {
				rowErr := &ingest.RowValidationError{
					ContentType: ingest.CommodityAdvisory,
					Sheet:       sheet.Name,
					Row:         row.Row + 1,
					Field:       field,
				}
				p.logger.Warn("skipping commodity advisory row",
					slog.String("sheet", sheet.Name),
					slog.Int("row", row.Row+1),
					slog.String("field", field),
				)
				res.Skipped = append(res.Skipped, rowErr)
				continue
			}

			res.Records = append(res.Records, rec)
			index++
		}
	}
	res.Records = filterComplete(res.Records)
	return res
}

// filterComplete drops records with an empty discriminator field.
func filterComplete(in []ingest.Record) []ingest.Record {
	out := in[:0]
	for _, rec := range in {
		if missingRequired(rec) == "" {
			out = append(out, rec)
		}
	}
	return out
}
