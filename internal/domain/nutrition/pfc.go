// Package nutrition holds the PFC (protein/fat/carbs/calories) estimate
// attached to meals. Estimates come from a second provider call and are
// always best-effort; a meal can exist without one.
package nutrition

import "math"

// PFC is a per-serving macro-nutrient estimate. All fields are
// non-negative and integer-rounded at the boundary.
type PFC struct {
	Protein  int `json:"protein"`
	Fat      int `json:"fat"`
	Carbs    int `json:"carbs"`
	Calories int `json:"calories"`
}

// FromEstimate coerces raw provider numbers into a PFC: values are
// rounded to the nearest integer and clamped at zero. Missing fields
// arrive as zero and stay zero rather than failing.
func FromEstimate(protein, fat, carbs, calories float64) PFC {
	return PFC{
		Protein:  coerce(protein),
		Fat:      coerce(fat),
		Carbs:    coerce(carbs),
		Calories: coerce(calories),
	}
}

func coerce(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return int(math.Round(v))
}

// Add returns the component-wise sum of two estimates.
func (p PFC) Add(other PFC) PFC {
	return PFC{
		Protein:  p.Protein + other.Protein,
		Fat:      p.Fat + other.Fat,
		Carbs:    p.Carbs + other.Carbs,
		Calories: p.Calories + other.Calories,
	}
}

// MacroTotal is the sum of the three macro masses in grams, used for
// ratio-based balance comments.
func (p PFC) MacroTotal() int {
	return p.Protein + p.Fat + p.Carbs
}

// IsZero reports whether every field is zero.
func (p PFC) IsZero() bool {
	return p == PFC{}
}
