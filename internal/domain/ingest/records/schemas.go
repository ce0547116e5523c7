package records

import (
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/normalizer"
)

// Shared header variants.
var (
	districtAliases = normalizer.Aliases("District", "District Name", "district_name", "DistrictName", "[District]")
	regionAliases   = normalizer.Aliases("Region", "Region Name", "region_name", "RegionName", "[Region]")
	cropAliases     = normalizer.Aliases("Crop", "Crop Name", "crop_name", "CropName", "Commodity", "[Crop]")
	activityAliases = normalizer.Aliases("Activity", "Activity Name", "activity_name", "ActivityName", "Operation", "Task", "[Activity]")
	notesAliases    = normalizer.Aliases("Notes", "Note", "Remarks", "Remark", "Comments", "Comment")
	descAliases     = normalizer.Aliases("Description", "Details", "Activity Description", "activity_description")
	priorityAliases = normalizer.Aliases("Priority", "Importance", "Urgency")

	rainfallAdvisoryAliases    = normalizer.Aliases("rainfall_advisory", "Rainfall Advisory", "RainfallAdvisory", "[Rainfall Advisory]")
	temperatureAdvisoryAliases = normalizer.Aliases("temperature_advisory", "Temperature Advisory", "TemperatureAdvisory", "[Temperature Advisory]")
	smsAliases                 = normalizer.Aliases("sms_text", "SMS Text", "SMSText", "SMS", "SMS Message", "[SMS]")
)

func monthField(name string, aliases ...string) FieldSpec {
	return FieldSpec{Name: name, Aliases: normalizer.Aliases(aliases...), Normalize: normalizer.ParseMonth}
}

func dateField(name string, aliases ...string) FieldSpec {
	return FieldSpec{Name: name, Aliases: normalizer.Aliases(aliases...), Normalize: normalizer.ParseDate}
}

var cropCalendarSchema = Schema{
	Type: ingest.CropCalendar,
	Fields: []FieldSpec{
		{Name: "district", Aliases: districtAliases, Required: true},
		{Name: "region", Aliases: regionAliases},
		{Name: "crop", Aliases: cropAliases, Required: true},
		{Name: "variety", Aliases: normalizer.Aliases("Variety", "Crop Variety", "crop_variety", "Cultivar")},
		{Name: "season", Aliases: normalizer.Aliases("Season", "Cropping Season", "cropping_season", "Season Type"), Default: constant("Major")},
		{Name: "year", Aliases: normalizer.Aliases("Year", "Crop Year", "Season Year"), Default: currentYear},
		monthField("plantingStart", "PlantingStart", "Planting Start", "planting_start", "Planting Start Month", "Sowing Start", "Planting From"),
		monthField("plantingEnd", "PlantingEnd", "Planting End", "planting_end", "Planting End Month", "Sowing End", "Planting To"),
		monthField("harvestStart", "HarvestStart", "Harvest Start", "harvest_start", "Harvest Start Month", "Harvest From"),
		monthField("harvestEnd", "HarvestEnd", "Harvest End", "harvest_end", "Harvest End Month", "Harvest To"),
		{Name: "notes", Aliases: notesAliases},
	},
	Build: func(m Meta, v Values) ingest.Record {
		return ingest.CropCalendarRecord{
			ID:            m.ID,
			District:      v["district"],
			Region:        v["region"],
			Crop:          v["crop"],
			Variety:       v["variety"],
			Season:        v["season"],
			Year:          v.Int("year", 0),
			PlantingStart: v["plantingStart"],
			PlantingEnd:   v["plantingEnd"],
			HarvestStart:  v["harvestStart"],
			HarvestEnd:    v["harvestEnd"],
			Notes:         v["notes"],
			CreatedAt:     m.CreatedAt,
		}
	},
}

var productionCalendarSchema = Schema{
	Type: ingest.ProductionCalendar,
	Fields: []FieldSpec{
		{Name: "district", Aliases: districtAliases, Required: true},
		{Name: "region", Aliases: regionAliases},
		{Name: "crop", Aliases: cropAliases},
		{Name: "activity", Aliases: activityAliases, Required: true},
		monthField("month", "Month", "Activity Month", "activity_month", "Period"),
		{Name: "week", Aliases: normalizer.Aliases("Week", "Week Number", "week_number", "Week No", "WeekNo"), Default: constant("0")},
		{Name: "priority", Aliases: priorityAliases, Default: constant("Medium")},
		{Name: "description", Aliases: descAliases},
		{Name: "notes", Aliases: notesAliases},
	},
	Build: func(m Meta, v Values) ingest.Record {
		return ingest.ProductionCalendarRecord{
			ID:          m.ID,
			District:    v["district"],
			Region:      v["region"],
			Crop:        v["crop"],
			Activity:    v["activity"],
			Month:       v["month"],
			Week:        v.Int("week", 0),
			Priority:    v["priority"],
			Description: v["description"],
			Notes:       v["notes"],
			CreatedAt:   m.CreatedAt,
		}
	},
}

var agrometAdvisorySchema = Schema{
	Type: ingest.AgrometAdvisory,
	Fields: []FieldSpec{
		{Name: "district", Aliases: districtAliases, Required: true},
		{Name: "region", Aliases: regionAliases},
		dateField("date", "Date", "Issue Date", "issue_date", "Forecast Date", "forecast_date"),
		dateField("validFrom", "ValidFrom", "Valid From", "valid_from", "From"),
		dateField("validTo", "ValidTo", "Valid To", "valid_to", "To"),
		{Name: "weatherCondition", Aliases: normalizer.Aliases("WeatherCondition", "Weather Condition", "weather_condition", "Weather", "Forecast")},
		{Name: "temperature", Aliases: normalizer.Aliases("Temperature", "Temp", "Temperature (°C)", "Max Temperature")},
		{Name: "rainfall", Aliases: normalizer.Aliases("Rainfall", "Rainfall (mm)", "Precipitation", "Rain")},
		{Name: "humidity", Aliases: normalizer.Aliases("Humidity", "Relative Humidity", "relative_humidity", "RH")},
		{Name: "windSpeed", Aliases: normalizer.Aliases("WindSpeed", "Wind Speed", "wind_speed", "Wind")},
		{Name: "advisory", Aliases: normalizer.Aliases("Advisory", "Advisory Message", "advisory_message", "Advice", "Recommendation", "Recommendations"), Required: true},
		{Name: "priority", Aliases: priorityAliases, Default: constant("Medium")},
		{Name: "rainfall_advisory", Aliases: rainfallAdvisoryAliases, Passthrough: true},
		{Name: "temperature_advisory", Aliases: temperatureAdvisoryAliases, Passthrough: true},
		{Name: "sms_text", Aliases: smsAliases, Passthrough: true},
	},
	Build: func(m Meta, v Values) ingest.Record {
		return ingest.AgrometAdvisoryRecord{
			ID:                  m.ID,
			District:            v["district"],
			Region:              v["region"],
			Date:                v["date"],
			ValidFrom:           v["validFrom"],
			ValidTo:             v["validTo"],
			WeatherCondition:    v["weatherCondition"],
			Temperature:         v["temperature"],
			Rainfall:            v["rainfall"],
			Humidity:            v["humidity"],
			WindSpeed:           v["windSpeed"],
			Advisory:            v["advisory"],
			Priority:            v["priority"],
			RainfallAdvisory:    v["rainfall_advisory"],
			TemperatureAdvisory: v["temperature_advisory"],
			SMSText:             v["sms_text"],
			CreatedAt:           m.CreatedAt,
		}
	},
}

var weekRangeAliases = normalizer.Aliases("Week", "Weeks", "Week Range", "week_range", "WeekRange", "[Week]", "[Weeks]")

var poultryCalendarSchema = Schema{
	Type: ingest.PoultryCalendar,
	Fields: []FieldSpec{
		{Name: "district", Aliases: districtAliases, Required: true},
		{Name: "region", Aliases: regionAliases},
		{Name: "poultryType", Aliases: normalizer.Aliases("PoultryType", "Poultry Type", "poultry_type", "Bird Type", "bird_type", "Breed"), Default: constant("Layers")},
		{Name: "activity", Aliases: activityAliases, Required: true},
		{Name: "startWeek", Aliases: normalizer.Aliases("StartWeek", "Start Week", "start_week", "Week From", "From Week")},
		{Name: "endWeek", Aliases: normalizer.Aliases("EndWeek", "End Week", "end_week", "Week To", "To Week")},
		{Name: "weeks", Aliases: weekRangeAliases},
		{Name: "description", Aliases: descAliases},
		{Name: "notes", Aliases: notesAliases},
	},
	Build: func(m Meta, v Values) ingest.Record {
		weeks := explicitWeeks(v)
		if v["startWeek"] == "" && v["endWeek"] == "" && v["weeks"] != "" {
			weeks = normalizer.ParseWeekRange(v["weeks"])
		}
		weeks = weeks.Ordered()
		return ingest.PoultryCalendarRecord{
			ID:          m.ID,
			District:    v["district"],
			Region:      v["region"],
			PoultryType: v["poultryType"],
			Activity:    v["activity"],
			StartWeek:   weeks.Start,
			EndWeek:     weeks.End,
			Description: v["description"],
			Notes:       v["notes"],
			CreatedAt:   m.CreatedAt,
		}
	},
}

// explicitWeeks reads separate start/end week columns. A missing end takes
// the start value.
func explicitWeeks(v Values) normalizer.WeekRange {
	start := v.Int("startWeek", normalizer.MinWeek)
	end := v.Int("endWeek", start)
	return normalizer.WeekRange{
		Start: normalizer.ClampWeek(start),
		End:   normalizer.ClampWeek(end),
	}
}

// WeekHints supplies a week span for a source row when the row itself has none.
type WeekHints interface {
	WeeksAt(sheet string, row int) (start, end int, ok bool)
}

var commodityFields = []FieldSpec{
	{Name: "zone", Aliases: normalizer.Aliases("[Zone]", "Zone", "Agro-ecological Zone", "Ecological Zone")},
	{Name: "region", Aliases: regionAliases},
	{Name: "district", Aliases: districtAliases},
	{Name: "crop", Aliases: normalizer.Aliases("[Crop]", "[Commodity]", "Crop", "Commodity", "Crop Name")},
	{Name: "activity", Aliases: activityAliases},
	{Name: "advisory", Aliases: normalizer.Aliases("[Advisory]", "Advisory", "Advisory Message", "Recommendation", "Advice")},
	{Name: "weeks", Aliases: weekRangeAliases},
	{Name: "startWeek", Aliases: normalizer.Aliases("Start Week", "StartWeek", "start_week", "[Start Week]")},
	{Name: "endWeek", Aliases: normalizer.Aliases("End Week", "EndWeek", "end_week", "[End Week]")},
	{Name: "startDate", Aliases: normalizer.Aliases("Start Date", "StartDate", "start_date", "[Start Date]"), Normalize: normalizer.ParseExcelSerialDate},
	{Name: "endDate", Aliases: normalizer.Aliases("End Date", "EndDate", "end_date", "[End Date]"), Normalize: normalizer.ParseExcelSerialDate},
	{Name: "rainfall_advisory", Aliases: rainfallAdvisoryAliases, Passthrough: true},
	{Name: "temperature_advisory", Aliases: temperatureAdvisoryAliases, Passthrough: true},
	{Name: "sms_text", Aliases: smsAliases, Passthrough: true},
}

// commoditySchema builds records whose stage is the sheet name. Week spans
// come from the row, then from hints, then default to week 1.
func commoditySchema(hints WeekHints) Schema {
	return Schema{
		Type:   ingest.CommodityAdvisory,
		Fields: commodityFields,
		Build: func(m Meta, v Values) ingest.Record {
			regionCode, region := normalizer.SplitCode(v["region"])
			districtCode, district := normalizer.SplitCode(v["district"])
			commodityCode, crop := normalizer.SplitCode(v["crop"])

			var weeks normalizer.WeekRange
			switch {
			case v["weeks"] != "":
				weeks = normalizer.ParseWeekRange(v["weeks"])
			case v["startWeek"] != "" || v["endWeek"] != "":
				weeks = explicitWeeks(v)
			default:
				weeks = normalizer.WeekRange{Start: normalizer.MinWeek, End: normalizer.MinWeek}
				if hints != nil {
					if start, end, ok := hints.WeeksAt(m.Sheet, m.Row); ok {
						weeks = normalizer.WeekRange{Start: normalizer.ClampWeek(start), End: normalizer.ClampWeek(end)}
					}
				}
			}
			weeks = weeks.Ordered()

			return ingest.CommodityAdvisoryRecord{
				ID:                  m.ID,
				Zone:                v["zone"],
				Region:              region,
				RegionCode:          regionCode,
				District:            district,
				DistrictCode:        districtCode,
				Crop:                crop,
				CommodityCode:       commodityCode,
				Stage:               m.Sheet,
				Activity:            v["activity"],
				Advisory:            v["advisory"],
				StartWeek:           weeks.Start,
				EndWeek:             weeks.End,
				StartDate:           v["startDate"],
				EndDate:             v["endDate"],
				RainfallAdvisory:    v["rainfall_advisory"],
				TemperatureAdvisory: v["temperature_advisory"],
				SMSText:             v["sms_text"],
				SourceRow:           m.Row + 1,
				CreatedAt:           m.CreatedAt,
			}
		},
	}
}

var rowSchemas = map[ingest.ContentType]Schema{
	ingest.CropCalendar:       cropCalendarSchema,
	ingest.ProductionCalendar: productionCalendarSchema,
	ingest.AgrometAdvisory:    agrometAdvisorySchema,
	ingest.PoultryCalendar:    poultryCalendarSchema,
}
