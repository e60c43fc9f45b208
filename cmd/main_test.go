package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/algobio/dnacore/internal/config"
	"github.com/algobio/dnacore/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainWiring(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		_ = os.Setenv("DNACORE_ADDR", ":8080")
		_ = os.Setenv("DNACORE_QUEUE_SIZE", "64")
		_ = os.Setenv("DNACORE_WORKER_COUNT", "2")
		defer func() {
			_ = os.Unsetenv("DNACORE_ADDR")
			_ = os.Unsetenv("DNACORE_QUEUE_SIZE")
			_ = os.Unsetenv("DNACORE_WORKER_COUNT")
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
		convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
		convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)

		convey.Convey("When the service and routes are wired", func() {
			svc := newService(cfg, logger.Get())
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop(ctx)
			mux := newMux(ctx, svc, cfg)

			convey.Convey("Then every route group answers", func() {
				for _, path := range []string{"/", "/healthz", "/stats", "/metrics", "/api-docs", "/openapi.yaml", "/sequences"} {
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}

				w := httptest.NewRecorder()
				body := strings.NewReader(`{"seq1":"ATCG","seq2":"ATCG","algorithm":"NEEDLEMAN_WUNSCH"}`)
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/align", body))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	// must not panic
	updateSystemMetrics()
}
