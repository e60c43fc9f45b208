package sequence_test

import (
	"errors"
	"testing"

	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/internal/domain/sequence"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw nucleotide text", t, func() {
		Convey("When it has mixed case and whitespace", func() {
			s, err := sequence.Normalize(" at cg\n\tAT\r\ncg ")

			Convey("Then whitespace is stripped and bases upper-cased", func() {
				So(err, ShouldBeNil)
				So(s, ShouldEqual, sequence.Sequence("ATCGATCG"))
				So(s.Len(), ShouldEqual, 8)
			})
		})

		Convey("When it is only whitespace", func() {
			_, err := sequence.Normalize(" \n\t ")

			Convey("Then it fails with EmptySequence", func() {
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
				So(model.KindOf(err), ShouldEqual, model.KindEmptySequence)
			})
		})

		Convey("When it contains a character outside the alphabet", func() {
			_, err := sequence.Normalize("AC G\nTN")

			Convey("Then the character and its position are reported", func() {
				var ve *model.ValidationError
				So(errors.As(err, &ve), ShouldBeTrue)
				So(ve.Kind, ShouldEqual, model.KindInvalidAlphabet)
				So(ve.Char, ShouldEqual, 'N')
				So(ve.Position, ShouldEqual, 5)
				So(err.Error(), ShouldContainSubstring, "'N'")
			})
		})

		Convey("When it contains a non-ASCII letter", func() {
			_, err := sequence.Normalize("ATÇG")

			Convey("Then it is rejected", func() {
				So(model.KindOf(err), ShouldEqual, model.KindInvalidAlphabet)
			})
		})

		Convey("When it is normalized twice", func() {
			a, errA := sequence.Normalize("gattaca")
			b, errB := sequence.Normalize(string(a))

			Convey("Then the result is stable", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(b, ShouldEqual, a)
			})
		})
	})
}

func TestCheckLength(t *testing.T) {
	Convey("Given a length limit", t, func() {
		s := sequence.Sequence("ATCGATCGAT")

		So(sequence.CheckLength(s, 10), ShouldBeNil)
		So(sequence.CheckLength(s, 0), ShouldBeNil)
		So(model.KindOf(sequence.CheckLength(s, 9)), ShouldEqual, model.KindOutOfRange)
	})
}

func TestGCContent(t *testing.T) {
	if got := sequence.GCContent("GCGA"); got != 0.75 {
		t.Errorf("expected 0.75, got %v", got)
	}
	if got := sequence.GCContent(""); got != 0 {
		t.Errorf("expected 0 for empty sequence, got %v", got)
	}
}
