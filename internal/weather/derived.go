package weather

import "math"

// CompassUnknown is returned when no wind direction was reported.
const CompassUnknown = "unknown"

// UpcomingHours is how many 3-hour samples make up the "next hours" list (about 36h).
const UpcomingHours = 12

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Magnus coefficients.
const (
	magnusA = 17.625
	magnusB = 243.04
)

// CompassFromDegrees maps a wind direction to one of 16 compass points.
func CompassFromDegrees(deg Reading) string {
	d, ok := deg.Value()
	if !ok {
		return CompassUnknown
	}
	// Round half up so that exact sector boundaries resolve clockwise.
	idx := int(math.Floor(d/22.5+0.5)) % len(compassPoints)
	if idx < 0 {
		idx += len(compassPoints)
	}
	return compassPoints[idx]
}

// DewPoint approximates the dew point in Celsius with the Magnus formula.
// Humidity is clamped to [1, 100] to keep the logarithm defined.
func DewPoint(tempC, humidity Reading) Reading {
	t, ok := tempC.Value()
	if !ok {
		return Unknown
	}
	rh, ok := humidity.Value()
	if !ok {
		return Unknown
	}
	rh = math.Min(100, math.Max(1, rh))

	gamma := (magnusA*t)/(magnusB+t) + math.Log(rh/100)
	return Known((magnusB * gamma) / (magnusA - gamma))
}

// DeriveHourly computes the per-sample detail fields. Temperatures are
// converted to Celsius before the dew point is computed.
func DeriveHourly(samples []WeatherSample, units Units) []HourlyDetail {
	out := make([]HourlyDetail, 0, len(samples))
	for _, s := range samples {
		out = append(out, HourlyDetail{
			WeatherSample: s,
			DewPointC:     DewPoint(units.ToCelsius(s.Temperature), s.Humidity),
			WindCompass:   CompassFromDegrees(s.WindDirection),
		})
	}
	return out
}

// SelectHourly picks the samples for an hourly listing. An empty dayKey
// means the upcoming hours; otherwise only samples on that UTC date are kept.
func SelectHourly(samples []WeatherSample, dayKey string) []WeatherSample {
	if dayKey == "" {
		if len(samples) > UpcomingHours {
			return samples[:UpcomingHours]
		}
		return samples
	}

	var out []WeatherSample
	for _, s := range samples {
		if s.DateKey() == dayKey {
			out = append(out, s)
		}
	}
	return out
}
