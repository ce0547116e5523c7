package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name string
		line string
		want rune
	}{
		{"comma", "District,Crop,Variety", ','},
		{"semicolon", "District;Crop;Variety", ';'},
		{"tab", "District\tCrop\tVariety", '\t'},
		{"pipe", "District|Crop|Variety", '|'},
		{"tie prefers comma", "District,Crop;Variety", ','},
		{"none", "District", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := DetectDelimiter(tt.line)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectConfig(t *testing.T) {
	data := []byte("\uFEFFDistrict;Crop;Planting Start\r\nTolon;Maize;April\r\nYendi;Rice;May\r\n")

	cfg, err := DetectConfig(data)
	require.NoError(t, err)

	assert.Equal(t, ';', cfg.Delimiter)
	assert.Equal(t, []string{"District", "Crop", "Planting Start"}, cfg.Headers)
	assert.Len(t, cfg.Fingerprint, 64)
	require.Len(t, cfg.SampleRows, 2)
	assert.Equal(t, []string{"Tolon", "Maize", "April"}, cfg.SampleRows[0])
}

func TestDetectConfig_Empty(t *testing.T) {
	_, err := DetectConfig([]byte("   \n"))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"District", "Crop", "Planting Start"})
	b := Fingerprint([]string{" district ", "CROP", "planting_start"})
	c := Fingerprint([]string{"District", "Activity"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
