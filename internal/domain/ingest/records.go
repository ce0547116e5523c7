package ingest

// Record is one normalized row of any content type.
type Record interface {
	RecordID() string
	RecordType() ContentType
	// RequiredFields returns the discriminating fields that must be non-empty
	// for the record to count as valid.
	RequiredFields() map[string]string
}

// CropCalendarRecord describes planting and harvest windows for a crop in a district.
type CropCalendarRecord struct {
	ID            string `json:"id" csv:"id"`
	District      string `json:"district" csv:"district"`
	Region        string `json:"region" csv:"region"`
	Crop          string `json:"crop" csv:"crop"`
	Variety       string `json:"variety" csv:"variety"`
	Season        string `json:"season" csv:"season"`
	Year          int    `json:"year" csv:"year"`
	PlantingStart string `json:"plantingStart" csv:"planting_start"`
	PlantingEnd   string `json:"plantingEnd" csv:"planting_end"`
	HarvestStart  string `json:"harvestStart" csv:"harvest_start"`
	HarvestEnd    string `json:"harvestEnd" csv:"harvest_end"`
	Notes         string `json:"notes" csv:"notes"`
	CreatedAt     string `json:"createdAt" csv:"created_at"`
}

func (r CropCalendarRecord) RecordID() string        { return r.ID }
func (r CropCalendarRecord) RecordType() ContentType { return CropCalendar }
func (r CropCalendarRecord) RequiredFields() map[string]string {
	return map[string]string{"district": r.District, "crop": r.Crop}
}

// ProductionCalendarRecord is one scheduled production activity.
type ProductionCalendarRecord struct {
	ID          string `json:"id" csv:"id"`
	District    string `json:"district" csv:"district"`
	Region      string `json:"region" csv:"region"`
	Crop        string `json:"crop" csv:"crop"`
	Activity    string `json:"activity" csv:"activity"`
	Month       string `json:"month" csv:"month"`
	Week        int    `json:"week" csv:"week"`
	Priority    string `json:"priority" csv:"priority"`
	Description string `json:"description" csv:"description"`
	Notes       string `json:"notes" csv:"notes"`
	CreatedAt   string `json:"createdAt" csv:"created_at"`
}

func (r ProductionCalendarRecord) RecordID() string        { return r.ID }
func (r ProductionCalendarRecord) RecordType() ContentType { return ProductionCalendar }
func (r ProductionCalendarRecord) RequiredFields() map[string]string {
	return map[string]string{"district": r.District, "activity": r.Activity}
}

// AgrometAdvisoryRecord is a dated weather advisory for a district.
// The snake_case presentation fields are passed through verbatim, including "" and "-".
type AgrometAdvisoryRecord struct {
	ID                  string `json:"id" csv:"id"`
	District            string `json:"district" csv:"district"`
	Region              string `json:"region" csv:"region"`
	Date                string `json:"date" csv:"date"`
	ValidFrom           string `json:"validFrom" csv:"valid_from"`
	ValidTo             string `json:"validTo" csv:"valid_to"`
	WeatherCondition    string `json:"weatherCondition" csv:"weather_condition"`
	Temperature         string `json:"temperature" csv:"temperature"`
	Rainfall            string `json:"rainfall" csv:"rainfall"`
	Humidity            string `json:"humidity" csv:"humidity"`
	WindSpeed           string `json:"windSpeed" csv:"wind_speed"`
	Advisory            string `json:"advisory" csv:"advisory"`
	Priority            string `json:"priority" csv:"priority"`
	RainfallAdvisory    string `json:"rainfall_advisory" csv:"rainfall_advisory"`
	TemperatureAdvisory string `json:"temperature_advisory" csv:"temperature_advisory"`
	SMSText             string `json:"sms_text" csv:"sms_text"`
	CreatedAt           string `json:"createdAt" csv:"created_at"`
}

func (r AgrometAdvisoryRecord) RecordID() string        { return r.ID }
func (r AgrometAdvisoryRecord) RecordType() ContentType { return AgrometAdvisory }
func (r AgrometAdvisoryRecord) RequiredFields() map[string]string {
	return map[string]string{"district": r.District, "advisory": r.Advisory}
}

// PoultryCalendarRecord is an activity over a span of production-cycle weeks.
type PoultryCalendarRecord struct {
	ID          string `json:"id" csv:"id"`
	District    string `json:"district" csv:"district"`
	Region      string `json:"region" csv:"region"`
	PoultryType string `json:"poultryType" csv:"poultry_type"`
	Activity    string `json:"activity" csv:"activity"`
	StartWeek   int    `json:"startWeek" csv:"start_week"`
	EndWeek     int    `json:"endWeek" csv:"end_week"`
	Description string `json:"description" csv:"description"`
	Notes       string `json:"notes" csv:"notes"`
	CreatedAt   string `json:"createdAt" csv:"created_at"`
}

func (r PoultryCalendarRecord) RecordID() string        { return r.ID }
func (r PoultryCalendarRecord) RecordType() ContentType { return PoultryCalendar }
func (r PoultryCalendarRecord) RequiredFields() map[string]string {
	return map[string]string{"district": r.District, "activity": r.Activity}
}

// CommodityAdvisoryRecord is one advisory row of a multi-sheet commodity workbook.
// Stage is the name of the sheet the row came from.
type CommodityAdvisoryRecord struct {
	ID                  string `json:"id" csv:"id"`
	Zone                string `json:"zone" csv:"zone"`
	Region              string `json:"region" csv:"region"`
	RegionCode          string `json:"regionCode" csv:"region_code"`
	District            string `json:"district" csv:"district"`
	DistrictCode        string `json:"districtCode" csv:"district_code"`
	Crop                string `json:"crop" csv:"crop"`
	CommodityCode       string `json:"commodityCode" csv:"commodity_code"`
	Stage               string `json:"stage" csv:"stage"`
	Activity            string `json:"activity" csv:"activity"`
	Advisory            string `json:"advisory" csv:"advisory"`
	StartWeek           int    `json:"startWeek" csv:"start_week"`
	EndWeek             int    `json:"endWeek" csv:"end_week"`
	StartDate           string `json:"startDate" csv:"start_date"`
	EndDate             string `json:"endDate" csv:"end_date"`
	RainfallAdvisory    string `json:"rainfall_advisory" csv:"rainfall_advisory"`
	TemperatureAdvisory string `json:"temperature_advisory" csv:"temperature_advisory"`
	SMSText             string `json:"sms_text" csv:"sms_text"`
	SourceRow           int    `json:"sourceRow" csv:"source_row"`
	CreatedAt           string `json:"createdAt" csv:"created_at"`
}

func (r CommodityAdvisoryRecord) RecordID() string        { return r.ID }
func (r CommodityAdvisoryRecord) RecordType() ContentType { return CommodityAdvisory }
func (r CommodityAdvisoryRecord) RequiredFields() map[string]string {
	return map[string]string{"district": r.District, "crop": r.Crop}
}
