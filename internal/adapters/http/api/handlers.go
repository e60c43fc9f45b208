package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	service "github.com/algobio/dnacore/internal/app"
	"github.com/algobio/dnacore/internal/domain/alignment"
	"github.com/algobio/dnacore/internal/domain/batch"
	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/pkg/logger"
)

// alignRequest mirrors the OpenAPI schema for POST /align.
type alignRequest struct {
	Seq1      string              `json:"seq1"`
	Seq2      string              `json:"seq2"`
	Algorithm alignment.Algorithm `json:"algorithm"`
}

// AlignHandler handles pairwise alignment requests.
type AlignHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// HandleAlign handles POST /align requests.
func (h *AlignHandler) HandleAlign(w http.ResponseWriter, r *http.Request) {
	const op = "api.align"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req alignRequest
	if err := decode(r, op, &req); err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	res, err := h.deps.Align(r.Context(), req.Seq1, req.Seq2, req.Algorithm)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SimulateHandler handles mutation simulation requests.
type SimulateHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// HandleSimulate handles POST /simulate requests.
func (h *SimulateHandler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "api.simulate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req service.SimulateRequest
	if err := decode(r, op, &req); err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	res, err := h.deps.Simulate(r.Context(), req)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// batchRequest mirrors the OpenAPI schema for POST /batch.
type batchRequest struct {
	Sequences    []string            `json:"sequences"`
	Algorithm    alignment.Algorithm `json:"algorithm"`
	MaxSequences int                 `json:"max_sequences"`
}

type batchResponse struct {
	ID        string              `json:"id"`
	Algorithm alignment.Algorithm `json:"algorithm"`
	Count     int                 `json:"count"`
	Pairs     []batch.Pair        `json:"pairs"`
}

// searchRequest mirrors the OpenAPI schema for POST /search.
type searchRequest struct {
	Query      string              `json:"query"`
	Algorithm  alignment.Algorithm `json:"algorithm"`
	MaxResults int                 `json:"max_results"`
}

type searchResponse struct {
	Algorithm alignment.Algorithm `json:"algorithm"`
	Count     int                 `json:"count"`
	Hits      []batch.Hit         `json:"hits"`
}

// BatchHandler handles all-pairs comparison and similarity search.
type BatchHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// HandleBatch handles POST /batch requests.
func (h *BatchHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchRequest
	if err := decode(r, op, &req); err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	pairs, err := h.deps.BatchCompare(r.Context(), req.Sequences, req.Algorithm, req.MaxSequences)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{
		ID:        uuid.NewString(),
		Algorithm: req.Algorithm,
		Count:     len(pairs),
		Pairs:     pairs,
	})
}

// HandleSearch handles POST /search requests.
func (h *BatchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req searchRequest
	if err := decode(r, op, &req); err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	hits, err := h.deps.Search(r.Context(), req.Query, req.Algorithm, req.MaxResults)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Algorithm: req.Algorithm, Count: len(hits), Hits: hits})
}

// ImpactHandler handles impact classification.
type ImpactHandler struct {
	deps Dependencies
}

// HandleImpact handles GET /impact?identity= requests.
func (h *ImpactHandler) HandleImpact(w http.ResponseWriter, r *http.Request) {
	const op = "api.impact"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := strings.TrimSpace(r.URL.Query().Get("identity"))
	identity, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		verr := model.NewValidation(model.KindInvalidInput, "identity", "identity %q is not a number", raw)
		writeFailure(r.Context(), w, nil, op, verr)
		return
	}
	a, err := h.deps.ClassifyImpact(identity)
	if err != nil {
		writeFailure(r.Context(), w, nil, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// sequenceRequest mirrors the OpenAPI schema for POST /sequences.
type sequenceRequest struct {
	Name     string `json:"name"`
	Sequence string `json:"sequence"`
}

// SequencesHandler exposes the sequence store.
type SequencesHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// HandleCollection handles GET and POST /sequences requests.
func (h *SequencesHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	const op = "api.sequences"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.ListSequences(r.Context()))
	case http.MethodPost:
		var req sequenceRequest
		if err := decode(r, op, &req); err != nil {
			writeFailure(r.Context(), w, h.logger, op, err)
			return
		}
		rec, err := h.deps.AddSequence(r.Context(), req.Name, req.Sequence)
		if err != nil {
			writeFailure(r.Context(), w, h.logger, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	default:
		http.NotFound(w, r)
	}
}

// HandleGet handles GET /sequences/{id} requests.
func (h *SequencesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.sequence"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/sequences/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	rec, err := h.deps.GetSequence(r.Context(), id)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
