package records

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
)

var fixedNow = time.Date(2024, time.May, 1, 8, 30, 0, 0, time.UTC)

func newTestParser(logger *slog.Logger) *Parser {
	return New(logger, WithClock(func() time.Time { return fixedNow }))
}

// table builds rows numbered as they would be under a header on row 0.
func table(headers []string, rows ...[]string) []ingest.RawRow {
	out := make([]ingest.RawRow, len(rows))
	for i, cells := range rows {
		out[i] = ingest.NewRawRow(i+1, headers, cells)
	}
	return out
}

func TestParse_CropCalendar(t *testing.T) {
	rows := table(
		[]string{"District Name", "Crop", "Planting Start", "planting_end", "Harvest Start", "HarvestEnd", "Remarks", "Season"},
		[]string{" Tolon ", "Maize", "3", "apr", "July", "aug", "Early rains", ""},
		[]string{"Yendi", "Rice", "May", "June", "9", "October", "", "Minor"},
	)

	recs, err := newTestParser(nil).Parse(ingest.CropCalendar, rows)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first, ok := recs[0].(ingest.CropCalendarRecord)
	require.True(t, ok)
	assert.Equal(t, fmt.Sprintf("crop_calendar_%d_0", fixedNow.UnixMilli()), first.ID)
	assert.Equal(t, "Tolon", first.District)
	assert.Equal(t, "March", first.PlantingStart)
	assert.Equal(t, "April", first.PlantingEnd)
	assert.Equal(t, "July", first.HarvestStart)
	assert.Equal(t, "August", first.HarvestEnd)
	assert.Equal(t, "Early rains", first.Notes)
	assert.Equal(t, "Major", first.Season)
	assert.Equal(t, 2024, first.Year)
	assert.Equal(t, "2024-05-01T08:30:00Z", first.CreatedAt)

	second := recs[1].(ingest.CropCalendarRecord)
	assert.Equal(t, "Minor", second.Season)
	assert.Equal(t, "September", second.HarvestStart)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestParse_AbortsOnMissingRequired(t *testing.T) {
	tests := []struct {
		ct      ingest.ContentType
		headers []string
		rows    [][]string
		field   string
		row     int
	}{
		{
			ct:      ingest.CropCalendar,
			headers: []string{"District", "Crop"},
			rows:    [][]string{{"Tolon", "Maize"}, {"Yendi", " "}, {"Bole", "Yam"}},
			field:   "crop",
			row:     3,
		},
		{
			ct:      ingest.ProductionCalendar,
			headers: []string{"District", "Activity"},
			rows:    [][]string{{"", "Weeding"}},
			field:   "district",
			row:     2,
		},
		{
			ct:      ingest.AgrometAdvisory,
			headers: []string{"District", "Weather"},
			rows:    [][]string{{"Tolon", "Sunny"}},
			field:   "advisory",
			row:     2,
		},
		{
			ct:      ingest.PoultryCalendar,
			headers: []string{"District", "Week"},
			rows:    [][]string{{"Tolon", "1-4"}},
			field:   "activity",
			row:     2,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.ct), func(t *testing.T) {
			recs, err := newTestParser(nil).Parse(tt.ct, table(tt.headers, tt.rows...))
			require.Error(t, err)
			assert.Nil(t, recs)
			assert.ErrorIs(t, err, ingest.ErrRowValidation)

			var rowErr *ingest.RowValidationError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, tt.field, rowErr.Field)
			assert.Equal(t, tt.row, rowErr.Row)
			assert.Equal(t, tt.ct, rowErr.ContentType)
		})
	}
}

func TestParse_ProductionCalendar(t *testing.T) {
	rows := table(
		[]string{"District", "Crop", "Activity", "Month", "Week", "Priority"},
		[]string{"Savelugu", "Maize", "Land preparation", "jan", "", ""},
		[]string{"Savelugu", "Maize", "Planting", "4", "Week 2", "High"},
	)

	recs, err := newTestParser(nil).Parse(ingest.ProductionCalendar, rows)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first := recs[0].(ingest.ProductionCalendarRecord)
	assert.Equal(t, "January", first.Month)
	assert.Equal(t, 0, first.Week)
	assert.Equal(t, "Medium", first.Priority)

	second := recs[1].(ingest.ProductionCalendarRecord)
	assert.Equal(t, "April", second.Month)
	assert.Equal(t, 2, second.Week)
	assert.Equal(t, "High", second.Priority)
}

func TestParse_AgrometAdvisory(t *testing.T) {
	rows := table(
		[]string{"District", "Date", "Valid From", "Valid To", "Weather Condition", "Advisory", "rainfall_advisory", "temperature_advisory", "SMS Text"},
		[]string{"Wa Municipal", "03/15/2024", "2024-03-15", "bad date", "Cloudy", "Delay planting", "-", "", "Delay planting this week"},
	)

	recs, err := newTestParser(nil).Parse(ingest.AgrometAdvisory, rows)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0].(ingest.AgrometAdvisoryRecord)
	assert.Equal(t, "2024-03-15", rec.Date)
	assert.Equal(t, "2024-03-15", rec.ValidFrom)
	assert.Equal(t, "bad date", rec.ValidTo)
	assert.Equal(t, "Cloudy", rec.WeatherCondition)
	assert.Equal(t, "Medium", rec.Priority)
	assert.Equal(t, "-", rec.RainfallAdvisory)
	assert.Equal(t, "", rec.TemperatureAdvisory)
	assert.Equal(t, "Delay planting this week", rec.SMSText)
}

func TestParse_PoultryCalendar(t *testing.T) {
	t.Run("start and end columns", func(t *testing.T) {
		rows := table(
			[]string{"District", "Activity", "Start Week", "End Week", "Poultry Type"},
			[]string{"Ho Municipal", "Vaccination", "7", "3", ""},
			[]string{"Ho Municipal", "Laying", "20", "60", "Broilers"},
			[]string{"Ho Municipal", "Brooding", "0", "", ""},
		)

		recs, err := newTestParser(nil).Parse(ingest.PoultryCalendar, rows)
		require.NoError(t, err)
		require.Len(t, recs, 3)

		swapped := recs[0].(ingest.PoultryCalendarRecord)
		assert.Equal(t, 3, swapped.StartWeek)
		assert.Equal(t, 7, swapped.EndWeek)
		assert.Equal(t, "Layers", swapped.PoultryType)

		clamped := recs[1].(ingest.PoultryCalendarRecord)
		assert.Equal(t, 20, clamped.StartWeek)
		assert.Equal(t, 52, clamped.EndWeek)
		assert.Equal(t, "Broilers", clamped.PoultryType)

		single := recs[2].(ingest.PoultryCalendarRecord)
		assert.Equal(t, 1, single.StartWeek)
		assert.Equal(t, 1, single.EndWeek)
	})

	t.Run("range column", func(t *testing.T) {
		rows := table(
			[]string{"District", "Activity", "Weeks"},
			[]string{"Keta", "Feeding", "10-4"},
		)

		recs, err := newTestParser(nil).Parse(ingest.PoultryCalendar, rows)
		require.NoError(t, err)

		rec := recs[0].(ingest.PoultryCalendarRecord)
		assert.Equal(t, 4, rec.StartWeek)
		assert.Equal(t, 10, rec.EndWeek)
	})
}

func TestParse_UnknownType(t *testing.T) {
	_, err := newTestParser(nil).Parse(ingest.Unknown, nil)
	assert.ErrorIs(t, err, ingest.ErrClassification)
}

type stubHints map[string][2]int

func (h stubHints) WeeksAt(sheet string, row int) (int, int, bool) {
	w, ok := h[fmt.Sprintf("%s:%d", sheet, row)]
	return w[0], w[1], ok
}

func TestParseCommodity(t *testing.T) {
	headers := []string{"[Zone]", "[Region]", "[District]", "[Crop]", "Activity", "[Week]", "Start Date", "End Date", "SMS"}
	planting := ingest.Sheet{Name: "Planting", Rows: table(headers,
		[]string{"Guinea Savannah", "NR/Northern", "TL/Tolon", "MZ/Maize", "Sow seeds", "7-3", "45306", "45313", "-"},
		[]string{"Guinea Savannah", "NR/Northern", "TL/Tolon", "", "Trailer", "", "", "", ""},
		[]string{"Guinea Savannah", "NR/Northern", "Yendi", "Rice", "Transplant", "12", "", "", ""},
	)}
	harvest := ingest.Sheet{Name: "Harvest", Rows: table(
		[]string{"[Zone]", "[Region]", "[District]", "[Crop]", "Activity"},
		[]string{"Coastal", "GA/Greater Accra", "AD/Ada East", "TM/Tomato", "Pick fruit"},
		[]string{"Coastal", "GA/Greater Accra", "", "TM/Tomato", "Orphan"},
	)}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	res := newTestParser(logger).ParseCommodity([]ingest.Sheet{planting, harvest}, stubHints{"Harvest:1": {30, 34}})

	require.Len(t, res.Records, 3)
	require.Len(t, res.Skipped, 2)

	first := res.Records[0].(ingest.CommodityAdvisoryRecord)
	assert.Equal(t, "Planting", first.Stage)
	assert.Equal(t, "NR", first.RegionCode)
	assert.Equal(t, "Northern", first.Region)
	assert.Equal(t, "TL", first.DistrictCode)
	assert.Equal(t, "Tolon", first.District)
	assert.Equal(t, "MZ", first.CommodityCode)
	assert.Equal(t, "Maize", first.Crop)
	assert.Equal(t, 3, first.StartWeek)
	assert.Equal(t, 7, first.EndWeek)
	assert.Equal(t, "2024-01-15", first.StartDate)
	assert.Equal(t, "2024-01-22", first.EndDate)
	assert.Equal(t, "-", first.SMSText)
	assert.Equal(t, 2, first.SourceRow)

	noCode := res.Records[1].(ingest.CommodityAdvisoryRecord)
	assert.Equal(t, "", noCode.CommodityCode)
	assert.Equal(t, "Rice", noCode.Crop)
	assert.Equal(t, 12, noCode.StartWeek)
	assert.Equal(t, 12, noCode.EndWeek)

	hinted := res.Records[2].(ingest.CommodityAdvisoryRecord)
	assert.Equal(t, "Harvest", hinted.Stage)
	assert.Equal(t, 30, hinted.StartWeek)
	assert.Equal(t, 34, hinted.EndWeek)

	assert.Equal(t, "Planting", res.Skipped[0].Sheet)
	assert.Equal(t, "crop", res.Skipped[0].Field)
	assert.Equal(t, 3, res.Skipped[0].Row)
	assert.Equal(t, "Harvest", res.Skipped[1].Sheet)
	assert.Equal(t, "district", res.Skipped[1].Field)

	assert.Equal(t, 2, strings.Count(logs.String(), "skipping commodity advisory row"))

	ids := map[string]bool{}
	for _, r := range res.Records {
		ids[r.RecordID()] = true
	}
	assert.Len(t, ids, 3)
}

func TestParse_CommodityRowsAsSingleSheet(t *testing.T) {
	rows := table([]string{"[District]", "[Crop]"}, []string{"TL/Tolon", "SR/Sorghum"})

	recs, err := newTestParser(nil).Parse(ingest.CommodityAdvisory, rows)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "SR", recs[0].(ingest.CommodityAdvisoryRecord).CommodityCode)
}

func TestParse_IDsUniqueAndComplete(t *testing.T) {
	faker := gofakeit.New(42)
	districts := []string{"Tolon", "Yendi", "Bole", "Keta", "Wenchi"}
	activities := []string{"Weeding", "Planting", "Spraying", "Harvesting"}

	headers := []string{"District", "Activity", "Month", "Week"}
	var cells [][]string
	for i := 0; i < 250; i++ {
		cells = append(cells, []string{
			faker.RandomString(districts),
			faker.RandomString(activities),
			faker.MonthString(),
			fmt.Sprint(faker.Number(0, 60)),
		})
	}

	recs, err := newTestParser(nil).Parse(ingest.ProductionCalendar, table(headers, cells...))
	require.NoError(t, err)
	require.Len(t, recs, len(cells))

	seen := make(map[string]bool, len(recs))
	for _, r := range recs {
		assert.False(t, seen[r.RecordID()], "duplicate id %s", r.RecordID())
		seen[r.RecordID()] = true
		for field, v := range r.RequiredFields() {
			assert.NotEmpty(t, v, field)
		}
	}
}

func TestMarshalCSV(t *testing.T) {
	recs, err := newTestParser(nil).Parse(ingest.CropCalendar, table(
		[]string{"District", "Crop"},
		[]string{"Tolon", "Maize"},
	))
	require.NoError(t, err)

	out, err := MarshalCSV(recs)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,district,region,crop"))
	assert.Contains(t, lines[1], "Tolon")

	empty, err := MarshalCSV(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = MarshalCSV([]ingest.Record{recs[0], ingest.PoultryCalendarRecord{ID: "x"}})
	assert.Error(t, err)
}
