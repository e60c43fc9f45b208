package alignment_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/algobio/dnacore/internal/domain/alignment"
	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/internal/domain/sequence"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGlobalAlignment(t *testing.T) {
	Convey("Given a default aligner", t, func() {
		a := alignment.New()
		ctx := context.Background()

		Convey("When two identical sequences are aligned", func() {
			res, err := a.Align(ctx, "ATCG", "ATCG", alignment.Global)

			Convey("Then every column matches", func() {
				So(err, ShouldBeNil)
				So(res.Aligned1, ShouldEqual, "ATCG")
				So(res.Aligned2, ShouldEqual, "ATCG")
				So(res.Score, ShouldEqual, 4)
				So(res.IdentityPercent, ShouldEqual, 100.0)
				So(res.Algorithm, ShouldEqual, alignment.Global)
				So(res.Window, ShouldBeNil)
			})
		})

		Convey("When the sequences differ by one substitution", func() {
			res, err := a.Align(ctx, "ATCG", "ATGG", alignment.Global)

			Convey("Then the mismatch is kept on the diagonal", func() {
				So(err, ShouldBeNil)
				So(res.Aligned1, ShouldEqual, "ATCG")
				So(res.Aligned2, ShouldEqual, "ATGG")
				So(res.Score, ShouldEqual, 2)
				So(res.IdentityPercent, ShouldEqual, 75.0)
			})
		})

		Convey("When one sequence is much shorter", func() {
			res, err := a.Align(ctx, "ATCG", "A", alignment.Global)

			Convey("Then the remainder is filled with gaps", func() {
				So(err, ShouldBeNil)
				So(res.Aligned1, ShouldEqual, "ATCG")
				So(res.Aligned2, ShouldEqual, "A---")
				So(res.Score, ShouldEqual, -5)
				So(res.IdentityPercent, ShouldEqual, 25.0)
			})
		})

		Convey("When the traceback meets equally scored moves", func() {
			down, err := a.Align(ctx, "AA", "A", alignment.Global)
			So(err, ShouldBeNil)
			right, err2 := a.Align(ctx, "A", "AA", alignment.Global)
			So(err2, ShouldBeNil)

			Convey("Then the diagonal is preferred over the gap moves", func() {
				So(down.Aligned1, ShouldEqual, "AA")
				So(down.Aligned2, ShouldEqual, "-A")
				So(down.Score, ShouldEqual, -1)
				So(down.IdentityPercent, ShouldEqual, 50.0)

				So(right.Aligned1, ShouldEqual, "-A")
				So(right.Aligned2, ShouldEqual, "AA")
				So(right.Score, ShouldEqual, -1)
			})
		})

		Convey("When a custom scoring scheme is used", func() {
			custom := alignment.New(alignment.WithScoring(alignment.Scoring{Match: 2, Mismatch: -3, Gap: -4}))
			res, err := custom.Align(ctx, "ATCG", "ATCG", alignment.Global)

			Convey("Then the score follows the scheme", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 8)
				So(res.IdentityPercent, ShouldEqual, 100.0)
			})
		})
	})
}

func TestLocalAlignment(t *testing.T) {
	Convey("Given the local strategy", t, func() {
		ctx := context.Background()

		Convey("When the inputs are shorter than a seed", func() {
			res, err := alignment.New().Align(ctx, "ATCG", "ATCG", alignment.Local)

			Convey("Then the best diagonal placement is used", func() {
				So(err, ShouldBeNil)
				So(res.Aligned1, ShouldEqual, "ATCG")
				So(res.Aligned2, ShouldEqual, "ATCG")
				So(res.Score, ShouldEqual, 4)
				So(res.IdentityPercent, ShouldEqual, 100.0)
				So(*res.Window, ShouldResemble, alignment.Window{Start1: 0, End1: 4, Start2: 0, End2: 4})
			})
		})

		Convey("When the shorter input fits inside the longer one", func() {
			res, err := alignment.New().Align(ctx, "AAAA", "CCAAAAC", alignment.Local)

			Convey("Then the flanks are set against gaps", func() {
				So(err, ShouldBeNil)
				So(res.Aligned1, ShouldEqual, "--AAAA-")
				So(res.Aligned2, ShouldEqual, "CCAAAAC")
				So(res.Score, ShouldEqual, 4)
				So(res.IdentityPercent, ShouldEqual, 100.0)
				So(*res.Window, ShouldResemble, alignment.Window{Start1: 0, End1: 4, Start2: 2, End2: 6})
			})
		})

		Convey("When the inputs share a seeded region", func() {
			a := alignment.New(alignment.WithSeedLength(4))
			res, err := a.Align(ctx, "CCCCACGTACGT", "ACGTACGTGGGG", alignment.Local)

			Convey("Then the extended seed becomes the window", func() {
				So(err, ShouldBeNil)
				So(*res.Window, ShouldResemble, alignment.Window{Start1: 4, End1: 12, Start2: 0, End2: 8})
				So(res.Score, ShouldEqual, 8)
				So(res.IdentityPercent, ShouldEqual, 100.0)
				So(res.Aligned1, ShouldEqual, "CCCCACGTACGT----")
				So(res.Aligned2, ShouldEqual, "----ACGTACGTGGGG")
			})
		})
	})
}

func TestAlignmentProperties(t *testing.T) {
	inputs := []sequence.Sequence{
		"A",
		"ATCG",
		"GATTACA",
		"ATCGGCTAAGCTTACG",
		sequence.Sequence(strings.Repeat("ACGTTGCA", 6)),
	}
	others := []sequence.Sequence{"T", "GGCC", "ATCGATCG", "TTTTTTTTTTTTGATTACA"}

	Convey("Given both algorithms", t, func() {
		a := alignment.New()
		ctx := context.Background()

		for _, alg := range []alignment.Algorithm{alignment.Global, alignment.Local} {
			Convey("Self-alignment is perfect for "+alg.String(), func() {
				for _, s := range inputs {
					res, err := a.Align(ctx, s, s, alg)
					So(err, ShouldBeNil)
					So(res.IdentityPercent, ShouldEqual, 100.0)
					So(res.Score, ShouldEqual, s.Len())
				}
			})

			Convey("Aligned outputs are well formed for "+alg.String(), func() {
				for _, s1 := range inputs {
					for _, s2 := range others {
						res, err := a.Align(ctx, s1, s2, alg)
						So(err, ShouldBeNil)
						So(len(res.Aligned1), ShouldEqual, len(res.Aligned2))
						So(res.IdentityPercent, ShouldBeBetweenOrEqual, 0.0, 100.0)
						So(strings.ReplaceAll(res.Aligned1, "-", ""), ShouldEqual, string(s1))
						So(strings.ReplaceAll(res.Aligned2, "-", ""), ShouldEqual, string(s2))
					}
				}
			})
		}
	})
}

func TestAlignmentErrors(t *testing.T) {
	Convey("Given invalid requests", t, func() {
		a := alignment.New()
		ctx := context.Background()

		Convey("An unknown algorithm is rejected", func() {
			_, err := a.Align(ctx, "A", "A", alignment.Algorithm(0))
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			So(model.KindOf(err), ShouldEqual, model.KindUnsupportedAlgorithm)
		})

		Convey("An empty input is rejected", func() {
			_, err := a.Align(ctx, "", "ATCG", alignment.Global)
			So(model.KindOf(err), ShouldEqual, model.KindInvalidInput)
		})

		Convey("A cancelled context stops the computation", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			long := sequence.Sequence(strings.Repeat("ACGT", 50))

			_, err := a.Align(cctx, long, long, alignment.Global)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)

			_, err = a.Align(cctx, long, long, alignment.Local)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestParseAlgorithm(t *testing.T) {
	Convey("Given algorithm tags", t, func() {
		cases := map[string]alignment.Algorithm{
			"NEEDLEMAN_WUNSCH": alignment.Global,
			"needleman-wunsch": alignment.Global,
			"global":           alignment.Global,
			"BLAST_SIMPLIFIED": alignment.Local,
			" blast ":          alignment.Local,
		}
		for tag, want := range cases {
			got, err := alignment.ParseAlgorithm(tag)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}

		_, err := alignment.ParseAlgorithm("SMITH_WATERMAN")
		So(model.KindOf(err), ShouldEqual, model.KindUnsupportedAlgorithm)

		var alg alignment.Algorithm
		So(alg.UnmarshalJSON([]byte(`"BLAST_SIMPLIFIED"`)), ShouldBeNil)
		So(alg, ShouldEqual, alignment.Local)
		b, err := alg.MarshalJSON()
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, `"BLAST_SIMPLIFIED"`)
	})
}
