package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"quotebuilder/metrics"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID returns the ID stored by RequestIDMiddleware, or "" if none.
func RequestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestIDMiddleware reuses an incoming X-Request-ID or generates one, echoes
// it on the response and stores it in the request context for log lines.
func RequestIDMiddleware() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		e.Response.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(e.Request.Context(), requestIDKey, id)
		e.Request = e.Request.WithContext(ctx)
		return e.Next()
	}
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// MetricsMiddleware records count and duration per route pattern and status.
// A handler error that was not written yet is counted with its API status.
func MetricsMiddleware(m *metrics.Metrics) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		start := time.Now()

		original := e.Response
		rec := &statusRecorder{ResponseWriter: original}
		e.Response = rec
		err := e.Next()
		e.Response = original

		status := rec.status
		if status == 0 {
			status = http.StatusOK
			if err != nil {
				status = http.StatusInternalServerError
				var apiErr *router.ApiError
				if errors.As(err, &apiErr) {
					status = apiErr.Status
				}
			}
		}

		path := e.Request.Pattern
		if path == "" {
			path = "unmatched"
		}
		m.ObserveRequest(e.Request.Method, path, status, time.Since(start))
		return err
	}
}
