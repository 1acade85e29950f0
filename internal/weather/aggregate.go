package weather

import (
	"math"
	"sort"
	"time"
)

const (
	// MaxForecastDays caps the number of daily summaries.
	MaxForecastDays = 7

	dateKeyLayout = "2006-01-02"

	middayFirstHour = 11
	middayLastHour  = 14
)

// dayAccumulator collects one calendar day while folding samples.
type dayAccumulator struct {
	key       string
	date      time.Time
	min       float64
	max       float64
	icon      string
	condition string
	seen      bool // representative fields set at least once
}

// AggregateDaily reduces a forecast list into one summary per UTC calendar
// day, evaluating the midday preference in UTC.
func AggregateDaily(samples []WeatherSample) []DailySummary {
	return AggregateDailyIn(samples, time.UTC)
}

// AggregateDailyIn is AggregateDaily with the midday window evaluated in loc.
// Days are still keyed by their UTC date.
func AggregateDailyIn(samples []WeatherSample, loc *time.Location) []DailySummary {
	if loc == nil {
		loc = time.UTC
	}

	days := make(map[string]*dayAccumulator)
	order := make([]string, 0, MaxForecastDays)

	for _, s := range samples {
		ts := s.Timestamp.UTC()
		k := ts.Format(dateKeyLayout)

		acc, ok := days[k]
		if !ok {
			acc = &dayAccumulator{
				key:  k,
				date: time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
				min:  math.Inf(1),
				max:  math.Inf(-1),
			}
			days[k] = acc
			order = append(order, k)
		}

		lo := s.TemperatureMin
		if !lo.IsKnown() {
			lo = s.Temperature
		}
		if v, ok := lo.Value(); ok && v < acc.min {
			acc.min = v
		}

		hi := s.TemperatureMax
		if !hi.IsKnown() {
			hi = s.Temperature
		}
		if v, ok := hi.Value(); ok && v > acc.max {
			acc.max = v
		}

		if !s.HasCondition() {
			continue
		}
		hour := s.Timestamp.In(loc).Hour()
		if !acc.seen || (hour >= middayFirstHour && hour <= middayLastHour) {
			acc.icon = s.ConditionIcon
			acc.condition = s.ConditionMain
			acc.seen = true
		}
	}

	out := make([]DailySummary, 0, len(order))
	for _, k := range order {
		acc := days[k]
		// Known maps an untouched ±Inf sentinel to Unknown.
		out = append(out, DailySummary{
			DateKey:        acc.key,
			Date:           acc.date,
			MinTemperature: Known(acc.min),
			MaxTemperature: Known(acc.max),
			Icon:           acc.icon,
			Condition:      acc.condition,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	if len(out) > MaxForecastDays {
		out = out[:MaxForecastDays]
	}
	return out
}
