package mutation_test

import (
	"errors"
	"testing"

	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/internal/domain/mutation"
	"github.com/algobio/dnacore/internal/domain/sequence"
	. "github.com/smartystreets/goconvey/convey"
)

const src = sequence.Sequence("ATCGATCGGCTAAGCTTACGATCGATCGTTAA")

func TestMutate(t *testing.T) {
	Convey("Given a seeded random source", t, func() {
		kinds := []mutation.Kind{mutation.Substitution, mutation.Insertion, mutation.Deletion}

		Convey("When the rate is zero", func() {
			Convey("Then every kind returns the source unchanged", func() {
				for _, k := range kinds {
					out, n, err := mutation.Mutate(src, k, 0, mutation.NewSource(1))
					So(err, ShouldBeNil)
					So(out, ShouldEqual, src)
					So(n, ShouldEqual, 0)
				}
			})
		})

		Convey("When substituting at rate one", func() {
			out, n, err := mutation.Mutate(src, mutation.Substitution, 1, mutation.NewSource(7))

			Convey("Then every position differs and the length is kept", func() {
				So(err, ShouldBeNil)
				So(out.Len(), ShouldEqual, src.Len())
				So(n, ShouldEqual, src.Len())
				for i := 0; i < src.Len(); i++ {
					So(out[i], ShouldNotEqual, src[i])
					So(sequence.IsBase(out[i]), ShouldBeTrue)
				}
			})
		})

		Convey("When deleting at rate one", func() {
			out, _, err := mutation.Mutate("ATCGATCG", mutation.Deletion, 1, mutation.NewSource(3))

			Convey("Then nothing is left", func() {
				So(err, ShouldBeNil)
				So(out.Len(), ShouldEqual, 0)
			})
		})

		Convey("When inserting at rate one", func() {
			out, n, err := mutation.Mutate("ATCG", mutation.Insertion, 1, mutation.NewSource(3))

			Convey("Then each original base is followed by one new base", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 4)
				So(out.Len(), ShouldEqual, 8)
				for i, b := range []byte("ATCG") {
					So(out[2*i], ShouldEqual, b)
				}
			})
		})

		Convey("When mutating at intermediate rates", func() {
			Convey("Then lengths move only in the kind's direction", func() {
				for seed := int64(0); seed < 20; seed++ {
					sub, _, _ := mutation.Mutate(src, mutation.Substitution, 0.3, mutation.NewSource(seed))
					ins, _, _ := mutation.Mutate(src, mutation.Insertion, 0.3, mutation.NewSource(seed))
					del, _, _ := mutation.Mutate(src, mutation.Deletion, 0.3, mutation.NewSource(seed))
					So(sub.Len(), ShouldEqual, src.Len())
					So(ins.Len(), ShouldBeGreaterThanOrEqualTo, src.Len())
					So(del.Len(), ShouldBeLessThanOrEqualTo, src.Len())
				}
			})
		})

		Convey("When the same seed is reused", func() {
			a, _, _ := mutation.Mutate(src, mutation.Substitution, 0.5, mutation.NewSource(42))
			b, _, _ := mutation.Mutate(src, mutation.Substitution, 0.5, mutation.NewSource(42))

			Convey("Then the variants are identical", func() {
				So(a, ShouldEqual, b)
			})
		})
	})
}

func TestMutateRejectsBadInput(t *testing.T) {
	Convey("Given invalid parameters", t, func() {
		_, _, err := mutation.Mutate(src, mutation.Substitution, 1.5, mutation.NewSource(1))
		So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		So(model.KindOf(err), ShouldEqual, model.KindOutOfRange)

		_, _, err = mutation.Mutate(src, mutation.Kind(9), 0.1, mutation.NewSource(1))
		So(model.KindOf(err), ShouldEqual, model.KindUnsupportedMutation)
	})
}

func TestParseKind(t *testing.T) {
	Convey("Given mutation tags", t, func() {
		k, err := mutation.ParseKind(" deletion ")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, mutation.Deletion)
		So(k.String(), ShouldEqual, "DELETION")

		_, err = mutation.ParseKind("INVERSION")
		So(model.KindOf(err), ShouldEqual, model.KindUnsupportedMutation)
		So(err.Error(), ShouldContainSubstring, "INVERSION")
	})
}

func TestDeriveSeed(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 50; i++ {
		s := mutation.DeriveSeed(99, i)
		if seen[s] {
			t.Fatalf("derived seed %d repeated at index %d", s, i)
		}
		seen[s] = true
	}
	if mutation.DeriveSeed(99, 3) != mutation.DeriveSeed(99, 3) {
		t.Fatal("derivation is not deterministic")
	}
}
