package weather

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Reading is a numeric measurement that may be unknown. The zero value is
// unknown, so a missing field never silently reads as 0.
type Reading struct {
	value float64
	known bool
}

// Unknown is the reading for a missing or invalid value.
var Unknown = Reading{}

// Known wraps v. NaN and infinities are not valid measurements and become Unknown.
func Known(v float64) Reading {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unknown
	}
	return Reading{value: v, known: true}
}

// FromPtr converts an optional decoded JSON number.
func FromPtr(v *float64) Reading {
	if v == nil {
		return Unknown
	}
	return Known(*v)
}

// Value returns the measurement and whether it is known.
func (r Reading) Value() (float64, bool) {
	return r.value, r.known
}

// IsKnown reports whether r carries a finite value.
func (r Reading) IsKnown() bool {
	return r.known
}

// Or returns the value, or def when unknown.
func (r Reading) Or(def float64) float64 {
	if !r.known {
		return def
	}
	return r.value
}

func (r Reading) String() string {
	if !r.known {
		return "unknown"
	}
	return strconv.FormatFloat(r.value, 'f', -1, 64)
}

// MarshalJSON encodes unknown readings as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.known {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

// UnmarshalJSON accepts a number or null.
func (r *Reading) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = Unknown
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Known(v)
	return nil
}
