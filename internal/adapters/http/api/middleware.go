package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/pkg/metrics"
)

// Error classes recorded for the http component.
const (
	classCaller   = "caller"   // the request itself was wrong
	classCapacity = "capacity" // the engine could not take or finish the work
	classDefect   = "defect"   // an internal failure
)

// MetricsMiddleware records request counts and latency per endpoint and, for
// failed requests, the API error code the handler answered with.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, float64(time.Since(start).Microseconds())/1000)

		if rec.status < http.StatusBadRequest {
			return
		}
		code := rec.errorCode()
		metrics.RecordErrorByEndpoint(endpoint, r.Method, code)
		metrics.RecordErrorByComponent("http", errorClass(rec.status, code))
	}
}

// errorClass groups an API error code for alerting: capacity errors call for
// more workers or a larger queue, defects for a fix.
func errorClass(status int, code string) string {
	switch {
	case code == "backpressure", code == "unavailable", code == model.CodeCancelled:
		return classCapacity
	case status >= http.StatusInternalServerError:
		return classDefect
	default:
		return classCaller
	}
}

// statusRecorder captures the status and error code of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	code   string
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

// errorCode returns the code set by writeError. Responses written elsewhere,
// such as http.NotFound for unknown methods, fall back to the status.
func (rec *statusRecorder) errorCode() string {
	if rec.code != "" {
		return rec.code
	}
	if rec.status == http.StatusNotFound {
		return "not_found"
	}
	return "http_" + strconv.Itoa(rec.status)
}

// tagError records code on w when w is instrumented.
func tagError(w http.ResponseWriter, code string) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.code = code
	}
}
