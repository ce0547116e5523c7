package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/ingesttest"
)

func TestExtractDelimited(t *testing.T) {
	t.Run("comma with bom", func(t *testing.T) {
		data := append([]byte("\uFEFF"), ingesttest.Delimited(",",
			[]string{"District", "Crop", "Planting Start"},
			[]string{"Tolon", "Maize", "April"},
			[]string{"Yendi", "Rice", "May"},
		)...)

		table, err := ExtractDelimited(data)
		require.NoError(t, err)

		assert.Equal(t, []string{"District", "Crop", "Planting Start"}, table.Headers)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "Tolon", table.Rows[0].Get("District"))
		assert.Equal(t, "May", table.Rows[1].Get("Planting Start"))
		assert.Equal(t, 1, table.Rows[0].Row)
		assert.Equal(t, ',', table.Delimiter)
		assert.NotEmpty(t, table.Fingerprint)
	})

	t.Run("semicolon", func(t *testing.T) {
		data := ingesttest.Delimited(";",
			[]string{"District", "Activity"},
			[]string{"Wa Municipal", "Land preparation"},
		)

		table, err := ExtractDelimited(data)
		require.NoError(t, err)
		assert.Equal(t, "Land preparation", table.Rows[0].Get("Activity"))
	})

	t.Run("blank lines skipped", func(t *testing.T) {
		data := ingesttest.Delimited(",",
			[]string{"District", "Activity"},
			[]string{"", ""},
			[]string{"Bole", "Weeding"},
		)

		table, err := ExtractDelimited(data)
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, 2, table.Rows[0].Row)
	})

	t.Run("windows-1252 text", func(t *testing.T) {
		data := []byte("District,Notes\r\nHo Municipal,Caf\xe9 crop\r\n")

		table, err := ExtractDelimited(data)
		require.NoError(t, err)
		assert.Equal(t, "Café crop", table.Rows[0].Get("Notes"))
	})
}

func TestExtractDelimited_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"header only", []byte("District,Crop\r\n")},
		{"ragged row", []byte("District,Crop\r\nTolon,Maize,extra\r\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractDelimited(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ingest.ErrFormat)

			var fe *ingest.FormatError
			assert.ErrorAs(t, err, &fe)
		})
	}
}

func TestExtractSpreadsheet(t *testing.T) {
	data := ingesttest.Workbook(t,
		ingesttest.SheetSpec{Name: "Calendar", Rows: [][]any{
			{"District", "Crop", "Season"},
			{"Tolon", "Maize"},
			{"Yendi", "Rice", "Minor"},
		}},
		ingesttest.SheetSpec{Name: "Ignored", Rows: [][]any{
			{"District"},
			{"Bole"},
		}},
	)

	table, err := ExtractSpreadsheet(data)
	require.NoError(t, err)

	assert.Equal(t, "Calendar", table.Sheet)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "", table.Rows[0].Get("Season"))
	assert.Equal(t, "Minor", table.Rows[1].Get("Season"))
	assert.Equal(t, "Yendi", table.Rows[1].Get("District"))
}

func TestExtractSpreadsheet_TooFewRows(t *testing.T) {
	data := ingesttest.Workbook(t, ingesttest.SheetSpec{Name: "Only", Rows: [][]any{
		{"District", "Crop"},
	}})

	_, err := ExtractSpreadsheet(data)
	assert.ErrorIs(t, err, ingest.ErrFormat)
}

func TestExtractSpreadsheet_Corrupt(t *testing.T) {
	_, err := ExtractSpreadsheet([]byte("definitely not a zip archive"))
	assert.ErrorIs(t, err, ingest.ErrFormat)
}

func TestExtractMultiSheet(t *testing.T) {
	data := ingesttest.Workbook(t,
		ingesttest.SheetSpec{Name: "Planting", Rows: [][]any{
			{"[District]", "[Crop]", "Start Date"},
			{"TL/Tolon", "MZ/Maize", 45306},
			{"", "  ", ""},
			{"YD/Yendi", "RC/Rice", 45310},
		}},
		ingesttest.SheetSpec{Name: "Harvest", Rows: [][]any{
			{"[District]", "[Crop]"},
			{"BL/Bole", "MZ/Maize"},
		}},
		ingesttest.SheetSpec{Name: "Empty"},
	)

	sheets, err := ExtractMultiSheet(data)
	require.NoError(t, err)
	require.Len(t, sheets, 3)

	assert.Equal(t, "Planting", sheets[0].Name)
	require.Len(t, sheets[0].Rows, 2)
	assert.Equal(t, "YD/Yendi", sheets[0].Rows[1].Get("[District]"))
	assert.Equal(t, 3, sheets[0].Rows[1].Row)
	assert.Equal(t, "45306", sheets[0].Rows[0].Get("Start Date"))

	assert.Equal(t, "Harvest", sheets[1].Name)
	assert.Len(t, sheets[1].Rows, 1)

	assert.Equal(t, "Empty", sheets[2].Name)
	assert.Empty(t, sheets[2].Rows)
}
