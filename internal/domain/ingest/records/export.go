package records

import (
	"fmt"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
)

// MarshalCSV writes records of a single content type as CSV with a header row.
func MarshalCSV(recs []ingest.Record) ([]byte, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	var (
		rows any
		err  error
	)
	switch recs[0].(type) {
	case ingest.CropCalendarRecord:
		rows, err = collect[ingest.CropCalendarRecord](recs)
	case ingest.ProductionCalendarRecord:
		rows, err = collect[ingest.ProductionCalendarRecord](recs)
	case ingest.AgrometAdvisoryRecord:
		rows, err = collect[ingest.AgrometAdvisoryRecord](recs)
	case ingest.PoultryCalendarRecord:
		rows, err = collect[ingest.PoultryCalendarRecord](recs)
	case ingest.CommodityAdvisoryRecord:
		rows, err = collect[ingest.CommodityAdvisoryRecord](recs)
	default:
		return nil, fmt.Errorf("unsupported record type %T", recs[0])
	}
	if err != nil {
		return nil, err
	}

	out, err := gocsv.MarshalBytes(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	return out, nil
}

// collect converts recs to a typed slice, failing when recs mixes types.
func collect[T ingest.Record](recs []ingest.Record) (*[]T, error) {
	out := make([]T, 0, len(recs))
	for i, r := range recs {
		typed, ok := r.(T)
		if !ok {
			return nil, fmt.Errorf("record %d has type %T, want %T", i, r, *new(T))
		}
		out = append(out, typed)
	}
	return &out, nil
}
