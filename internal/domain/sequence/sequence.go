// Package sequence normalizes and validates nucleotide text.
package sequence

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/algobio/dnacore/internal/domain/model"
)

// Bases is the nucleotide alphabet, in the order used for random draws.
const Bases = "ATCG"

// Gap is the symbol placed in aligned output opposite an insertion or deletion.
const Gap = '-'

// Sequence is an immutable run of bases from Bases. Values returned by
// Normalize are non-empty; values produced by mutation may be empty.
type Sequence string

// Len returns the number of bases.
func (s Sequence) Len() int { return len(s) }

// String implements fmt.Stringer.
func (s Sequence) String() string { return string(s) }

// IsBase reports whether b belongs to the alphabet.
func IsBase(b byte) bool { return b == 'A' || b == 'T' || b == 'C' || b == 'G' }

// Normalize strips all whitespace, upper-cases the rest and validates the
// alphabet. Positions in errors are 1-based and count non-whitespace runes.
func Normalize(raw string) (Sequence, error) {
	var b strings.Builder
	b.Grow(len(raw))
	pos := 0
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		pos++
		u := unicode.ToUpper(r)
		if u > unicode.MaxASCII || !IsBase(byte(u)) {
			return "", &model.ValidationError{
				Kind:     model.KindInvalidAlphabet,
				Message:  fmt.Sprintf("invalid base %q at position %d; allowed: A T C G", r, pos),
				Char:     r,
				Position: pos,
			}
		}
		b.WriteByte(byte(u))
	}
	if b.Len() == 0 {
		return "", &model.ValidationError{Kind: model.KindEmptySequence, Message: "sequence is empty"}
	}
	return Sequence(b.String()), nil
}

// CheckLength rejects sequences longer than limit. A limit <= 0 disables the check.
func CheckLength(s Sequence, limit int) error {
	if limit > 0 && s.Len() > limit {
		return &model.ValidationError{
			Kind:    model.KindOutOfRange,
			Message: fmt.Sprintf("sequence length %d exceeds maximum %d", s.Len(), limit),
		}
	}
	return nil
}

// GCContent returns the fraction of G and C bases.
func GCContent(s Sequence) float64 {
	if len(s) == 0 {
		return 0
	}
	gc := 0
	for i := 0; i < len(s); i++ {
		if s[i] == 'G' || s[i] == 'C' {
			gc++
		}
	}
	return float64(gc) / float64(len(s))
}
