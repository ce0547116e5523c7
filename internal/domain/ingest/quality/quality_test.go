package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
)

func TestValidator_Score(t *testing.T) {
	recs := make([]ingest.Record, 0, 10)
	for i := 0; i < 7; i++ {
		recs = append(recs, ingest.ProductionCalendarRecord{District: "Tolon", Activity: "Weeding"})
	}
	for i := 0; i < 3; i++ {
		recs = append(recs, ingest.ProductionCalendarRecord{District: "Tolon"})
	}

	r := New(nil).Validate(ingest.ProductionCalendar, recs)
	assert.Equal(t, 10, r.Total)
	assert.Equal(t, 7, r.Valid)
	assert.Equal(t, 3, r.Invalid)
	assert.Equal(t, 70, r.Quality)
	assert.Empty(t, r.Warnings)
}

func TestValidator_Rounding(t *testing.T) {
	recs := []ingest.Record{
		ingest.AgrometAdvisoryRecord{District: "Bole", Advisory: "Expect rain"},
		ingest.AgrometAdvisoryRecord{District: "Bole", Advisory: "Dry spell"},
		ingest.AgrometAdvisoryRecord{District: "Bole"},
	}
	r := New(nil).Validate(ingest.AgrometAdvisory, recs)
	assert.Equal(t, 67, r.Quality)
}

func TestValidator_Empty(t *testing.T) {
	r := New(nil).Validate(ingest.CropCalendar, nil)
	assert.Equal(t, Report{Warnings: []string{}}, r)
}

func TestValidator_Warnings(t *testing.T) {
	tests := []struct {
		name     string
		ct       ingest.ContentType
		recs     []ingest.Record
		contains []string
		quality  int
	}{
		{
			name: "unknown district with suggestion",
			ct:   ingest.CropCalendar,
			recs: []ingest.Record{
				ingest.CropCalendarRecord{District: "Tamale Metropolitan", Crop: "Maize"},
				ingest.CropCalendarRecord{District: "Tamalle Metropolitan", Crop: "Maize"},
			},
			contains: []string{`record 2: unrecognized district "Tamalle Metropolitan" (did you mean "Tamale Metropolitan"?)`},
			quality:  100,
		},
		{
			name:     "unknown district without suggestion",
			ct:       ingest.CropCalendar,
			recs:     []ingest.Record{ingest.CropCalendarRecord{District: "Zzyzx", Crop: "Maize"}},
			contains: []string{`record 1: unrecognized district "Zzyzx"`},
			quality:  100,
		},
		{
			name:     "poultry week range",
			ct:       ingest.PoultryCalendar,
			recs:     []ingest.Record{ingest.PoultryCalendarRecord{District: "Keta", Activity: "Brooding", StartWeek: 0, EndWeek: 60}},
			contains: []string{"record 1: week range 0-60 outside 1-52"},
			quality:  100,
		},
		{
			name: "commodity code and weeks",
			ct:   ingest.CommodityAdvisory,
			recs: []ingest.Record{
				ingest.CommodityAdvisoryRecord{District: "Tolon", Crop: "Rice", CommodityCode: "CR01", StartWeek: 1, EndWeek: 4},
				ingest.CommodityAdvisoryRecord{District: "Tolon", Crop: "Rice", StartWeek: 1, EndWeek: 53},
				ingest.CommodityAdvisoryRecord{Crop: "Rice", CommodityCode: "CR01", StartWeek: 1, EndWeek: 1},
			},
			contains: []string{
				"record 2: week range 1-53 outside 1-52",
				`record 2: missing commodity code for crop "Rice"`,
			},
			quality: 67,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(nil).Validate(tt.ct, tt.recs)
			require.Len(t, r.Warnings, len(tt.contains))
			for i, want := range tt.contains {
				assert.Equal(t, want, r.Warnings[i])
			}
			assert.Equal(t, tt.quality, r.Quality)
		})
	}
}
