package weather

import (
	"strings"
	"time"
)

// Units is the measurement system requested from the provider and used for display.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// ParseUnits normalizes a user supplied unit mode. Anything unrecognized is metric.
func ParseUnits(s string) Units {
	if strings.EqualFold(strings.TrimSpace(s), string(UnitsImperial)) {
		return UnitsImperial
	}
	return UnitsMetric
}

// ToCelsius converts a temperature expressed in u to Celsius.
func (u Units) ToCelsius(t Reading) Reading {
	v, ok := t.Value()
	if !ok {
		return Unknown
	}
	if u == UnitsImperial {
		return Known((v - 32) * 5 / 9)
	}
	return Known(v)
}

// WindUnit is the display label for wind speed in u.
func (u Units) WindUnit() string {
	if u == UnitsImperial {
		return "mph"
	}
	return "m/s"
}

// Location represents a logical place for which we show weather.
// City must be provided; Country is optional.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return strings.ToLower(strings.TrimSpace(l.City)) + ":" + strings.ToUpper(strings.TrimSpace(l.Country))
}

// ViewKey identifies a computed view. Views are unit specific.
func ViewKey(loc Location, units Units) string {
	return loc.Key() + "|" + string(units)
}

// WeatherSample is one normalized reading, either the current conditions or
// a single 3-hour forecast interval. All numeric fields are expressed in the
// unit mode the sample was fetched with.
type WeatherSample struct {
	Timestamp time.Time `json:"timestamp"` // always UTC

	Temperature    Reading `json:"temperature"`
	TemperatureMin Reading `json:"temperatureMin"`
	TemperatureMax Reading `json:"temperatureMax"`
	Humidity       Reading `json:"humidityPercent"`
	Pressure       Reading `json:"pressureMbar"`
	CloudCover     Reading `json:"cloudCoverPercent"`
	WindSpeed      Reading `json:"windSpeed"`
	WindDirection  Reading `json:"windDirectionDegrees"`

	// PrecipitationMM is 0 when the provider reported neither rain nor snow.
	PrecipitationMM float64 `json:"precipitationMm"`

	ConditionMain string `json:"conditionMain,omitempty"`
	ConditionIcon string `json:"conditionIcon,omitempty"`
}

// DateKey is the UTC calendar date of the sample in YYYY-MM-DD form.
func (s WeatherSample) DateKey() string {
	return s.Timestamp.UTC().Format(dateKeyLayout)
}

// HasCondition reports whether the sample carried any condition info.
func (s WeatherSample) HasCondition() bool {
	return s.ConditionMain != "" || s.ConditionIcon != ""
}

// CurrentConditions is the provider's answer for "weather now".
type CurrentConditions struct {
	City    string        `json:"city"`
	Country string        `json:"country,omitempty"`
	Sample  WeatherSample `json:"sample"`
}

// DailySummary is one calendar day of forecast reduced to its extremes and
// a representative condition.
type DailySummary struct {
	DateKey        string    `json:"dateKey"`
	Date           time.Time `json:"date"`
	MinTemperature Reading   `json:"minTemperature"`
	MaxTemperature Reading   `json:"maxTemperature"`
	Icon           string    `json:"icon,omitempty"`
	Condition      string    `json:"condition,omitempty"`
}

// HourlyDetail is a forecast sample plus the fields derived from it.
type HourlyDetail struct {
	WeatherSample
	DewPointC   Reading `json:"dewPointC"`
	WindCompass string  `json:"windCompass"`
}

// View is the full display model for one location and unit mode. It is
// recomputed from scratch on every refresh and replaced as a whole.
type View struct {
	Location  Location          `json:"location"`
	Units     Units             `json:"units"`
	Current   CurrentConditions `json:"current"`
	Daily     []DailySummary    `json:"daily"`
	Hourly    []HourlyDetail    `json:"hourly"`
	Advice    Advice            `json:"advice"`
	FetchedAt time.Time         `json:"fetchedAt"`

	// Samples is the raw forecast list the view was computed from; the
	// hourly endpoint filters it by day.
	Samples []WeatherSample `json:"-"`
}

// InZone returns a copy of v whose daily summaries pick the midday
// condition on the clock of zone. A nil zone returns v unchanged.
func (v View) InZone(zone *time.Location) View {
	if zone == nil {
		return v
	}
	v.Daily = AggregateDailyIn(v.Samples, zone)
	return v
}
