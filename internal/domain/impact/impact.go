// Package impact maps alignment identity to a predicted functional impact.
package impact

import (
	"fmt"
	"math"

	"github.com/algobio/dnacore/internal/domain/model"
)

// Level is an ordered impact band.
type Level string

// Impact levels, most severe first.
const (
	Critical Level = "CRITICAL"
	High     Level = "HIGH"
	Moderate Level = "MODERATE"
	Low      Level = "LOW"
)

// Assessment is the classification of one identity percentage.
type Assessment struct {
	Level       Level   `json:"level"`
	Severity    float64 `json:"severity"`
	Rationale   string  `json:"rationale"`
	Description string  `json:"description"`
	Identity    float64 `json:"identity_percent"`
}

type band struct {
	lower       float64
	level       Level
	rationale   string
	description string
}

// bands are evaluated in order; each lower bound is inclusive.
var bands = []band{
	{85, Low, "minimal_impact", "Minimal impact expected"},
	{65, Moderate, "moderate_functional_effect", "Moderate effect on function"},
	{40, High, "significant_structural_impact", "Significant impact on protein structure"},
	{0, Critical, "severe_functional_impact", "Severe functional impact predicted"},
}

// Validate reports whether identity can be classified.
func Validate(identity float64) error {
	if math.IsNaN(identity) || identity < 0 || identity > 100 {
		return model.NewValidation(model.KindOutOfRange, "identity", "identity %v outside [0,100]", identity)
	}
	return nil
}

// Classify returns the assessment for an identity percentage in [0,100].
// Any other value is a caller bug and panics; run Validate first on
// untrusted input.
func Classify(identity float64) Assessment {
	if err := Validate(identity); err != nil {
		panic(fmt.Sprintf("impact: %v", err))
	}
	for _, b := range bands {
		if identity >= b.lower {
			return Assessment{
				Level:       b.level,
				Severity:    Severity(identity),
				Rationale:   b.rationale,
				Description: b.description,
				Identity:    identity,
			}
		}
	}
	panic("impact: no band matched")
}

// Severity is 10 - identity/10 clamped to [0,10] and rounded to one decimal.
func Severity(identity float64) float64 {
	s := 10 - identity/10
	s = math.Max(0, math.Min(10, s))
	return math.Round(s*10) / 10
}
