// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	service "github.com/algobio/dnacore/internal/app"
	"github.com/algobio/dnacore/internal/domain/alignment"
	"github.com/algobio/dnacore/internal/domain/batch"
	"github.com/algobio/dnacore/internal/domain/impact"
	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/internal/domain/simulation"
	"github.com/algobio/dnacore/internal/domain/types"
	"github.com/algobio/dnacore/pkg/logger"
)

// maxBodyBytes bounds request bodies. Ten sequences at the default length
// limit fit comfortably.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Align(ctx context.Context, seq1, seq2 string, alg alignment.Algorithm) (alignment.Result, error)
	Simulate(ctx context.Context, req service.SimulateRequest) (simulation.Result, error)
	BatchCompare(ctx context.Context, seqs []string, alg alignment.Algorithm, maxSequences int) ([]batch.Pair, error)
	Search(ctx context.Context, query string, alg alignment.Algorithm, maxResults int) ([]batch.Hit, error)
	ClassifyImpact(identity float64) (impact.Assessment, error)

	AddSequence(ctx context.Context, name, seq string) (types.SequenceRecord, error)
	GetSequence(ctx context.Context, id string) (types.SequenceRecord, error)
	ListSequences(ctx context.Context) []types.SequenceRecord
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithRequestTimeout bounds how long one request may compute.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets a custom logger for the handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	alignHandler     *AlignHandler
	simulateHandler  *SimulateHandler
	batchHandler     *BatchHandler
	impactHandler    *ImpactHandler
	sequencesHandler *SequencesHandler

	timeout time.Duration
	logger  logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		logger: logger.Get().Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.alignHandler = &AlignHandler{deps: deps, logger: s.logger}
	s.simulateHandler = &SimulateHandler{deps: deps, logger: s.logger}
	s.batchHandler = &BatchHandler{deps: deps, logger: s.logger}
	s.impactHandler = &ImpactHandler{deps: deps}
	s.sequencesHandler = &SequencesHandler{deps: deps, logger: s.logger}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/align", MetricsMiddleware(s.withTimeout(s.alignHandler.HandleAlign), "align"))
	mux.HandleFunc("/simulate", MetricsMiddleware(s.withTimeout(s.simulateHandler.HandleSimulate), "simulate"))
	mux.HandleFunc("/batch", MetricsMiddleware(s.withTimeout(s.batchHandler.HandleBatch), "batch"))
	mux.HandleFunc("/search", MetricsMiddleware(s.withTimeout(s.batchHandler.HandleSearch), "search"))
	mux.HandleFunc("/impact", MetricsMiddleware(s.impactHandler.HandleImpact, "impact"))
	mux.HandleFunc("/sequences", MetricsMiddleware(s.sequencesHandler.HandleCollection, "sequences"))
	mux.HandleFunc("/sequences/", MetricsMiddleware(s.sequencesHandler.HandleGet, "sequence"))
}

// withTimeout derives the request context used for computation.
func (s *Server) withTimeout(next http.HandlerFunc) http.HandlerFunc {
	if s.timeout <= 0 {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	tagError(w, code)
	writeJSON(w, status, errorResponse{Code: code, Message: msg, Field: fieldOf(err)})
}

// writeFailure maps err to a status and logs server-side failures.
func writeFailure(ctx context.Context, w http.ResponseWriter, l logger.Logger, op string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError && l != nil {
		l.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
	}
	if model.IsValidation(err) {
		// validation messages are already user-facing
		writeError(w, status, code, err)
		return
	}
	writeError(w, status, code, Wrap(op, err))
}

// decode reads a JSON body. Tag errors raised while decoding keep their
// validation kind; anything else is a bad request.
func decode(r *http.Request, op string, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if model.IsValidation(err) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return WrapKind(op, ErrBadRequest, errors.New("empty body"))
		}
		return WrapKind(op, ErrBadRequest, fmt.Errorf("decode body: %w", err))
	}
	return nil
}
