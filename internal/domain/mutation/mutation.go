// Package mutation generates random point-mutation variants of a sequence.
package mutation

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	mrand "math/rand"
	"strings"
	"time"

	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/internal/domain/sequence"
)

// Kind selects the mutation event applied at a position.
type Kind int

// Supported kinds.
const (
	Substitution Kind = iota + 1
	Insertion
	Deletion
)

const (
	tagSubstitution = "SUBSTITUTION"
	tagInsertion    = "INSERTION"
	tagDeletion     = "DELETION"
)

// String returns the canonical tag.
func (k Kind) String() string {
	switch k {
	case Substitution:
		return tagSubstitution
	case Insertion:
		return tagInsertion
	case Deletion:
		return tagDeletion
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether k names a supported kind.
func (k Kind) Valid() bool { return k >= Substitution && k <= Deletion }

// ParseKind maps a tag to a Kind, ignoring case and surrounding space.
func ParseKind(tag string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case tagSubstitution:
		return Substitution, nil
	case tagInsertion:
		return Insertion, nil
	case tagDeletion:
		return Deletion, nil
	}
	return 0, model.NewValidation(model.KindUnsupportedMutation, "mutation_type",
		"unsupported mutation type %q; expected %s, %s or %s", tag, tagSubstitution, tagInsertion, tagDeletion)
}

// MarshalJSON encodes the canonical tag.
func (k Kind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

// UnmarshalJSON decodes a tag through ParseKind.
func (k *Kind) UnmarshalJSON(b []byte) error {
	var tag string
	if err := json.Unmarshal(b, &tag); err != nil {
		return err
	}
	parsed, err := ParseKind(tag)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Source is the randomness consumed by Mutate. *math/rand.Rand satisfies it.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// NewSource returns a reproducible Source for seed. It is not safe for
// concurrent use; give each goroutine its own.
func NewSource(seed int64) Source {
	return mrand.New(mrand.NewSource(seed))
}

// DeriveSeed derives the seed of stream index from a master seed with one
// SplitMix64 step, so sibling streams are decorrelated.
func DeriveSeed(master int64, index int) int64 {
	z := uint64(master) + uint64(index+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}

// RandomSeed returns a non-deterministic seed.
func RandomSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// ValidateRate checks that rate is a probability.
func ValidateRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return model.NewValidation(model.KindOutOfRange, "mutation_rate", "mutation rate %v outside [0,1]", rate)
	}
	return nil
}

// Mutate walks src once, drawing one value per position and applying kind
// when the draw is below rate. It returns the variant and the number of
// events applied. Bases inserted by Insertion are not revisited.
func Mutate(src sequence.Sequence, kind Kind, rate float64, rng Source) (sequence.Sequence, int, error) {
	if !kind.Valid() {
		return "", 0, model.NewValidation(model.KindUnsupportedMutation, "mutation_type", "unsupported mutation kind %d", int(kind))
	}
	if err := ValidateRate(rate); err != nil {
		return "", 0, err
	}
	if rng == nil {
		return "", 0, fmt.Errorf("mutation: nil random source")
	}

	var b strings.Builder
	switch kind {
	case Insertion:
		b.Grow(2 * len(src))
	default:
		b.Grow(len(src))
	}

	applied := 0
	for i := 0; i < len(src); i++ {
		base := src[i]
		if rng.Float64() >= rate {
			b.WriteByte(base)
			continue
		}
		applied++
		switch kind {
		case Substitution:
			b.WriteByte(substitute(base, rng))
		case Insertion:
			b.WriteByte(base)
			b.WriteByte(sequence.Bases[rng.Intn(len(sequence.Bases))])
		case Deletion:
			// dropped
		}
	}
	return sequence.Sequence(b.String()), applied, nil
}

// substitute picks one of the three bases different from base.
func substitute(base byte, rng Source) byte {
	own := strings.IndexByte(sequence.Bases, base)
	r := rng.Intn(len(sequence.Bases) - 1)
	if own >= 0 && r >= own {
		r++
	}
	return sequence.Bases[r]
}
