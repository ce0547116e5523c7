package classifier

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
)

func TestClassify_Filename(t *testing.T) {
	tests := []struct {
		filename string
		want     ingest.ContentType
	}{
		{"Crop_Calendar_2024.xlsx", ingest.CropCalendar},
		{"crop planting schedule.csv", ingest.CropCalendar},
		{"Production Calendar - Northern.xlsx", ingest.ProductionCalendar},
		{"poultry-calendar.csv", ingest.PoultryCalendar},
		{"RiceAdvisory.xlsx", ingest.CommodityAdvisory},
		{"Broilers advisory Q3.xlsx", ingest.CommodityAdvisory},
		{"soyabean_advisory.xlsx", ingest.CommodityAdvisory},
		{"advisory.csv", ingest.AgrometAdvisory},
		{"weekly_weather.csv", ingest.AgrometAdvisory},
		{"Agromet bulletin.xlsx", ingest.AgrometAdvisory},
		// crop+calendar outranks the advisory rules
		{"crop calendar advisory rice.xlsx", ingest.CropCalendar},
		// production needs calendar
		{"production report.csv", ingest.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := Classify(tt.filename, nil)
			assert.Equal(t, tt.want, got.Type)
			if tt.want != ingest.Unknown {
				assert.Equal(t, BasisFilename, got.Basis)
			}
		})
	}
}

func TestClassify_Headers(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    ingest.ContentType
	}{
		{"crop with planting", []string{"District", "Crop", "Planting Start"}, ingest.CropCalendar},
		{"crop with harvest", []string{"district", "CROP", "harvest_end"}, ingest.CropCalendar},
		{"crop without window", []string{"District", "Crop"}, ingest.Unknown},
		{"activity", []string{"District", "Activity", "Month"}, ingest.ProductionCalendar},
		{"weather", []string{"District", "Weather Condition"}, ingest.AgrometAdvisory},
		{"recommendation", []string{"District", "Recommendation"}, ingest.AgrometAdvisory},
		{"poultry", []string{"District", "Bird Type", "Week"}, ingest.PoultryCalendar},
		{"broiler", []string{"Broiler", "Week"}, ingest.PoultryCalendar},
		{"bracketed commodity", []string{"[Zone]", "[Region]", "[District]", "[Crop]", "[Week]"}, ingest.CommodityAdvisory},
		{"bracketed incomplete", []string{"[Zone]", "[Region]", "[District]"}, ingest.Unknown},
		// activity is matched before the bracketed rule
		{"bracketed with activity", []string{"[Zone]", "[Region]", "[District]", "[Crop]", "Activity"}, ingest.ProductionCalendar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("upload.xlsx", tt.headers)
			assert.Equal(t, tt.want, got.Type)
			if tt.want != ingest.Unknown {
				assert.Equal(t, BasisHeaders, got.Basis)
			} else {
				assert.Equal(t, BasisNone, got.Basis)
			}
		})
	}
}

func TestClassify_FilenameWinsOverHeaders(t *testing.T) {
	got := Classify("poultry calendar.csv", []string{"District", "Crop", "Planting Start"})
	assert.Equal(t, ingest.PoultryCalendar, got.Type)
}

func TestClassifier_ConcurrentUse(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, ingest.CommodityAdvisory, c.Classify("maize advisory.xlsx", nil).Type)
			assert.Equal(t, ingest.AgrometAdvisory, c.Classify("x.csv", []string{"Advisory"}).Type)
		}()
	}
	wg.Wait()
}
