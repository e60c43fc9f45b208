package alignment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/algobio/dnacore/internal/domain/model"
)

// Algorithm selects the alignment strategy. The zero value is invalid so a
// forgotten field never silently picks a default.
type Algorithm int

// Supported algorithms.
const (
	Global Algorithm = iota + 1 // Needleman–Wunsch
	Local                       // simplified seed-and-extend
)

// Canonical tags.
const (
	tagGlobal = "NEEDLEMAN_WUNSCH"
	tagLocal  = "BLAST_SIMPLIFIED"
)

// String returns the canonical tag.
func (a Algorithm) String() string {
	switch a {
	case Global:
		return tagGlobal
	case Local:
		return tagLocal
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether a names a supported algorithm.
func (a Algorithm) Valid() bool { return a == Global || a == Local }

// ParseAlgorithm maps a tag to an Algorithm. Matching ignores case and treats
// '-' and '_' alike. Unknown tags fail with UnsupportedAlgorithm.
func ParseAlgorithm(tag string) (Algorithm, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(tag), "-", "_"))
	switch norm {
	case tagGlobal, "GLOBAL", "NW":
		return Global, nil
	case tagLocal, "LOCAL", "BLAST":
		return Local, nil
	}
	return 0, &model.ValidationError{
		Kind:    model.KindUnsupportedAlgorithm,
		Field:   "algorithm",
		Message: fmt.Sprintf("unsupported algorithm %q; expected %s or %s", tag, tagGlobal, tagLocal),
	}
}

// MarshalJSON encodes the canonical tag.
func (a Algorithm) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a tag through ParseAlgorithm.
func (a *Algorithm) UnmarshalJSON(b []byte) error {
	var tag string
	if err := json.Unmarshal(b, &tag); err != nil {
		return err
	}
	parsed, err := ParseAlgorithm(tag)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func unsupported(a Algorithm) error {
	return &model.ValidationError{
		Kind:    model.KindUnsupportedAlgorithm,
		Field:   "algorithm",
		Message: fmt.Sprintf("unsupported algorithm value %d", int(a)),
	}
}
