package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	service "github.com/algobio/dnacore/internal/app"
	"github.com/algobio/dnacore/internal/domain/alignment"
	"github.com/algobio/dnacore/internal/domain/impact"
	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/internal/domain/mutation"
	"github.com/algobio/dnacore/internal/domain/simulation"
	"github.com/algobio/dnacore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func startService(opts ...service.Option) (*service.Service, context.Context, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	svc := service.New(append([]service.Option{
		service.WithWorkerCount(4),
		service.WithQueueSize(256),
	}, opts...)...)
	So(svc.Start(ctx), ShouldBeNil)
	return svc, ctx, func() {
		svc.Stop(ctx)
		cancel()
	}
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("Operations before Start are rejected", func() {
			_, err := svc.Align(ctx, "A", "A", alignment.Global)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("Start and Stop are idempotent", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
			svc.Stop(ctx)
			svc.Stop(ctx)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("Stored sequences survive a restart", func() {
			So(svc.Start(ctx), ShouldBeNil)
			rec, err := svc.AddSequence(ctx, "kept", "ATCG")
			So(err, ShouldBeNil)
			svc.Stop(ctx)

			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop(ctx)
			got, err := svc.GetSequence(ctx, rec.ID)
			So(err, ShouldBeNil)
			So(got.Sequence, ShouldEqual, "ATCG")
		})
	})

	Convey("Given an invalid node id", t, func() {
		svc := service.New(service.WithNodeID(-1))
		So(svc.Start(context.Background()), ShouldNotBeNil)
	})
}

func TestService_Align(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx, stop := startService(service.WithMaxSequenceLength(20))
		defer stop()

		Convey("Raw inputs are normalized before alignment", func() {
			res, err := svc.Align(ctx, " atcg ", "AT\nGG", alignment.Global)
			So(err, ShouldBeNil)
			So(res.Aligned1, ShouldEqual, "ATCG")
			So(res.Aligned2, ShouldEqual, "ATGG")
			So(res.IdentityPercent, ShouldEqual, 75.0)
			So(svc.GetStats()["totalAlignments"], ShouldEqual, int64(1))
		})

		Convey("Repeated alignments are served from the cache", func() {
			for i := 0; i < 3; i++ {
				_, err := svc.Align(ctx, "ATCG", "ATCG", alignment.Local)
				So(err, ShouldBeNil)
			}
			So(svc.GetStats()["cachedAlignments"], ShouldEqual, int64(1))
		})

		Convey("Validation errors name the offending field", func() {
			_, err := svc.Align(ctx, "ATXG", "ATCG", alignment.Global)
			So(model.KindOf(err), ShouldEqual, model.KindInvalidAlphabet)
			So(err.Error(), ShouldStartWith, "seq1:")

			_, err = svc.Align(ctx, "ATCG", "", alignment.Global)
			So(model.KindOf(err), ShouldEqual, model.KindEmptySequence)
			So(err.Error(), ShouldStartWith, "seq2:")

			_, err = svc.Align(ctx, strings.Repeat("A", 21), "A", alignment.Global)
			So(model.KindOf(err), ShouldEqual, model.KindOutOfRange)

			_, err = svc.Align(ctx, "A", "A", alignment.Algorithm(0))
			So(model.KindOf(err), ShouldEqual, model.KindUnsupportedAlgorithm)
		})
	})
}

func TestService_Simulate(t *testing.T) {
	Convey("Given a started service with a fixed master seed", t, func() {
		svc, ctx, stop := startService(service.WithMasterSeed(7))
		defer stop()

		req := service.SimulateRequest{Request: simulation.Request{
			Source:       "ATCGATCGATCG",
			Kind:         mutation.Substitution,
			Rate:         0.25,
			VariantCount: 5,
			Algorithm:    alignment.Global,
		}}

		Convey("Variants are generated on the pool in order", func() {
			res, err := svc.Simulate(ctx, req)
			So(err, ShouldBeNil)
			So(res.Variants, ShouldHaveLength, 5)
			for i, v := range res.Variants {
				So(v.Index, ShouldEqual, i)
				So(v.Err, ShouldBeNil)
				So(v.Sequence.Len(), ShouldEqual, 12)
			}
			So(res.Impact, ShouldNotBeNil)
			So(svc.GetStats()["totalVariants"], ShouldEqual, int64(5))
		})

		Convey("An explicit seed reproduces the variants", func() {
			seed := int64(99)
			req.Seed = &seed
			first, err := svc.Simulate(ctx, req)
			So(err, ShouldBeNil)
			second, err := svc.Simulate(ctx, req)
			So(err, ShouldBeNil)
			for i := range first.Variants {
				So(second.Variants[i].Sequence, ShouldEqual, first.Variants[i].Sequence)
			}
		})

		Convey("A stored sequence can be referenced by id", func() {
			rec, err := svc.AddSequence(ctx, "ref", "GATTACAGATTACA")
			So(err, ShouldBeNil)

			idReq := req
			idReq.Source = ""
			idReq.SequenceID = rec.ID
			res, err := svc.Simulate(ctx, idReq)
			So(err, ShouldBeNil)
			So(string(res.Original), ShouldEqual, "GATTACAGATTACA")
		})

		Convey("An unknown sequence id is not found", func() {
			idReq := req
			idReq.Source = ""
			idReq.SequenceID = "404"
			_, err := svc.Simulate(ctx, idReq)
			So(errors.Is(err, service.ErrSequenceNotFound), ShouldBeTrue)
		})

		Convey("Giving both a sequence id and text is rejected", func() {
			idReq := req
			idReq.SequenceID = "1"
			_, err := svc.Simulate(ctx, idReq)
			So(model.KindOf(err), ShouldEqual, model.KindInvalidInput)
		})

		Convey("Invalid requests are rejected as a whole", func() {
			bad := req
			bad.Rate = 1.5
			_, err := svc.Simulate(ctx, bad)
			So(model.KindOf(err), ShouldEqual, model.KindOutOfRange)
		})
	})
}

func TestService_BatchAndSearch(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx, stop := startService()
		defer stop()

		Convey("BatchCompare returns every pair ranked by identity", func() {
			pairs, err := svc.BatchCompare(ctx, []string{"ATCG", "ATGG", "ATCG", "TTTT"}, alignment.Global, 0)
			So(err, ShouldBeNil)
			So(pairs, ShouldHaveLength, 6)
			So(pairs[0].Result.IdentityPercent, ShouldEqual, 100.0)
			for i := 1; i < len(pairs); i++ {
				So(pairs[i].Result.IdentityPercent, ShouldBeLessThanOrEqualTo, pairs[i-1].Result.IdentityPercent)
			}
		})

		Convey("BatchCompare feeds batches larger than the queue", func() {
			seqs := make([]string, 40)
			for i := range seqs {
				seqs[i] = strings.Repeat("ACGT"[i%4:i%4+1], 1+i%5) + "ATCG"
			}
			pairs, err := svc.BatchCompare(ctx, seqs, alignment.Global, 40)
			So(err, ShouldBeNil)
			So(pairs, ShouldHaveLength, 40*39/2)
			for _, p := range pairs {
				So(p.Error, ShouldBeNil)
			}
		})

		Convey("BatchCompare rejects max_sequences above the hard cap", func() {
			_, err := svc.BatchCompare(ctx, []string{"ATCG", "ATGG"}, alignment.Global, 201)
			So(model.KindOf(err), ShouldEqual, model.KindOutOfRange)
		})

		Convey("BatchCompare needs two sequences", func() {
			_, err := svc.BatchCompare(ctx, []string{"ATCG"}, alignment.Global, 0)
			So(model.KindOf(err), ShouldEqual, model.KindInsufficientInput)
		})

		Convey("Search ranks stored sequences against the query", func() {
			for _, s := range []struct{ name, seq string }{
				{"same", "ATCGATCG"},
				{"close", "ATCGATGG"},
				{"far", "TTTTTTTT"},
			} {
				_, err := svc.AddSequence(ctx, s.name, s.seq)
				So(err, ShouldBeNil)
			}

			hits, err := svc.Search(ctx, "ATCGATCG", alignment.Global, 10)
			So(err, ShouldBeNil)
			So(hits, ShouldHaveLength, 2)
			So(hits[0].Name, ShouldEqual, "close")
			So(hits[1].Name, ShouldEqual, "far")
			So(svc.GetStats()["storedSequences"], ShouldEqual, 3)
		})
	})
}

func TestService_ClassifyImpact(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()

		a, err := svc.ClassifyImpact(100)
		So(err, ShouldBeNil)
		So(a.Level, ShouldEqual, impact.Low)
		So(a.Severity, ShouldEqual, 0.0)

		a, err = svc.ClassifyImpact(0)
		So(err, ShouldBeNil)
		So(a.Level, ShouldEqual, impact.Critical)
		So(a.Severity, ShouldEqual, 10.0)

		_, err = svc.ClassifyImpact(101)
		So(model.KindOf(err), ShouldEqual, model.KindOutOfRange)
	})
}
