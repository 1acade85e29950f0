package weather

import (
	"sync"

	"github.com/i474232898/tempus/internal/common"
)

// AdviceCategory names the row of the decision table that matched.
type AdviceCategory string

const (
	AdviceStorm      AdviceCategory = "storm"
	AdviceSnow       AdviceCategory = "snow"
	AdviceRain       AdviceCategory = "rain"
	AdviceVisibility AdviceCategory = "low-visibility"
	AdviceWindy      AdviceCategory = "windy"
	AdviceLayering   AdviceCategory = "layering"
	AdviceHot        AdviceCategory = "hot"
	AdviceWarm       AdviceCategory = "warm"
	AdviceMild       AdviceCategory = "mild"
	AdviceCold       AdviceCategory = "cold"
)

// windyThreshold is compared against the wind speed in whatever unit the
// caller fetched with; no conversion is applied.
const windyThreshold = 8

var adviceVariants = map[AdviceCategory][]string{
	AdviceStorm: {
		"Storms around! Stay in if you can, or wear a sturdy waterproof shell and skip the umbrella.",
		"Thunder in the forecast. Waterproof boots and a hooded rain jacket are the safe bet.",
	},
	AdviceSnow: {
		"Snow day! Insulated boots, a warm coat, gloves and a hat.",
		"It's snowing. Layer up with thermals and waterproof outerwear.",
	},
	AdviceRain: {
		"It's raining! Grab an umbrella and a waterproof jacket.",
		"Wet out there. A waterproof trench coat and water-resistant shoes will keep you dry.",
	},
	AdviceVisibility: {
		"Low visibility today. Wear something bright or reflective if you're heading out.",
	},
	AdviceWindy: {
		"It's windy! A snug windbreaker beats a loose scarf or an umbrella today.",
		"Gusty conditions. Zip up a wind-resistant jacket and tie back anything loose.",
	},
	AdviceLayering: {
		"Hard to call today. Dress in layers you can add or remove.",
	},
	AdviceHot: {
		"It's hot! Wear light cotton and breathable shoes.",
		"Heat alert. Linen, sunglasses and a hat, and keep some water with you.",
	},
	AdviceWarm: {
		"Pleasant weather. A light t-shirt or a blouse is perfect.",
		"Comfortable out. Short sleeves with a light overshirt for the evening.",
	},
	AdviceMild: {
		"Chilly. Time for a denim jacket or layered knits.",
		"Mild but crisp. A sweater or light jacket over a long-sleeve top.",
	},
	AdviceCold: {
		"Cold alert! Heavy coats and boots are a must.",
		"Bundle up. A warm coat, scarf and gloves will make the day bearable.",
	},
}

// Advice is the outfit recommendation for one snapshot.
type Advice struct {
	Category AdviceCategory `json:"category"`
	Variants []string       `json:"variants"`
}

// Variant returns the i-th variant, wrapping around in either direction.
func (a Advice) Variant(i int) string {
	n := len(a.Variants)
	if n == 0 {
		return ""
	}
	i %= n
	if i < 0 {
		i += n
	}
	return a.Variants[i]
}

// SelectAdvisory evaluates the decision table in priority order; the first
// matching row wins, so a cold thunderstorm still gets storm advice.
func SelectAdvisory(temperature Reading, units Units, condition string, windSpeed Reading) Advice {
	category := classifyAdvice(temperature, units, condition, windSpeed)
	variants := adviceVariants[category]
	return Advice{
		Category: category,
		Variants: append([]string(nil), variants...),
	}
}

func classifyAdvice(temperature Reading, units Units, condition string, windSpeed Reading) AdviceCategory {
	switch {
	case common.HasAny(condition, "thunder", "storm"):
		return AdviceStorm
	case common.HasAny(condition, "snow"):
		return AdviceSnow
	case common.HasAny(condition, "rain", "drizzle"):
		return AdviceRain
	case common.HasAny(condition, "fog", "mist", "haze", "smoke"):
		return AdviceVisibility
	case windSpeed.Or(0) > windyThreshold:
		return AdviceWindy
	}

	c, ok := units.ToCelsius(temperature).Value()
	if !ok {
		return AdviceLayering
	}
	switch {
	case c > 28:
		return AdviceHot
	case c > 20:
		return AdviceWarm
	case c > 12:
		return AdviceMild
	default:
		return AdviceCold
	}
}

// Rotation is the "show another option" cursor over an Advice. It is safe
// for concurrent use.
type Rotation struct {
	mu     sync.Mutex
	advice Advice
	index  int
}

// NewRotation starts a rotation at the first variant.
func NewRotation(a Advice) *Rotation {
	return &Rotation{advice: a}
}

// Reset replaces the advice and rewinds to the first variant.
func (r *Rotation) Reset(a Advice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advice = a
	r.index = 0
}

// AdviceState is a consistent read of a rotation: the advice and its
// active variant.
type AdviceState struct {
	Advice Advice
	Text   string
	Index  int
}

// State returns the advice together with its active variant.
func (r *Rotation) State() AdviceState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return AdviceState{Advice: r.advice, Text: r.advice.Variant(r.index), Index: r.index}
}

// Next advances to the following variant, wrapping to the first.
func (r *Rotation) Next() (string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.advice.Variants); n > 0 {
		r.index = (r.index + 1) % n
	}
	return r.advice.Variant(r.index), r.index
}
