package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"quotebuilder/metrics"
)

func TestRequestIDMiddleware_Generates(t *testing.T) {
	e, rec := newBareEvent()

	if err := RequestIDMiddleware()(e); err != nil {
		t.Fatalf("middleware error: %v", err)
	}

	id := rec.Header().Get(RequestIDHeader)
	if len(id) != 36 {
		t.Fatalf("expected a uuid request id, got %q", id)
	}
	if got := RequestID(e.Request); got != id {
		t.Errorf("RequestID() = %q, want %q", got, id)
	}
}

func TestRequestIDMiddleware_ReusesIncoming(t *testing.T) {
	e, rec := newBareEvent()
	e.Request.Header.Set(RequestIDHeader, "client-supplied")

	if err := RequestIDMiddleware()(e); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "client-supplied" {
		t.Errorf("response request id = %q, want client-supplied", got)
	}
}

func TestRequestID_NotInContext(t *testing.T) {
	if got := RequestID(httptest.NewRequest(http.MethodGet, "/", nil)); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}
	if got := RequestID(nil); got != "" {
		t.Errorf("expected empty id for nil request, got %q", got)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New("qb_test")
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Request = httptest.NewRequest(http.MethodGet, "/api/quotes", nil)
	e.Request.Pattern = "GET /api/quotes"
	e.Response = rec

	if err := MetricsMiddleware(m)(e); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if e.Response != rec {
		t.Error("expected original response writer to be restored")
	}

	got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "GET /api/quotes", "200"))
	if got != 1 {
		t.Errorf("request counter = %v, want 1", got)
	}
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &statusRecorder{ResponseWriter: rec}

	w.WriteHeader(http.StatusNotFound)
	w.WriteHeader(http.StatusOK)
	if w.status != http.StatusNotFound {
		t.Errorf("status = %d, want first written 404", w.status)
	}

	w2 := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	w2.Write([]byte("ok"))
	if w2.status != http.StatusOK {
		t.Errorf("implicit status = %d, want 200", w2.status)
	}
}
