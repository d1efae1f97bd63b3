package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/shopsearch/internal/logger"
)

func TestJSONRecoverer(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	handler := JSONRecoverer(zap.NewNop())(panicking)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/products", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if e := decodeError(t, rr); e.Code != CodeInternalError {
		t.Errorf("code = %q", e.Code)
	}
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside")
		w.Header().Set(HeaderSearchSource, "lexical")
		w.Header().Set(HeaderSearchFallback, "quota_exceeded")
		w.WriteHeader(http.StatusOK)
	})
	handler := chiMiddleware.RequestID(WideEventMiddleware(log)(inner))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/search?q=lamp", http.NoBody))

	reqID := rr.Header().Get("X-Request-ID")
	if reqID == "" {
		t.Fatal("expected X-Request-ID header")
	}

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one http_request entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != reqID {
		t.Errorf("request_id = %v, want %s", fields["request_id"], reqID)
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Errorf("status = %v", fields["status"])
	}
	if fields["search_source"] != "lexical" || fields["search_fallback"] != "quota_exceeded" {
		t.Errorf("search fields = %v / %v", fields["search_source"], fields["search_fallback"])
	}

	inside := logs.FilterMessage("inside").All()
	if len(inside) != 1 || inside[0].ContextMap()["request_id"] != reqID {
		t.Errorf("handler log entry should carry request_id, got %+v", inside)
	}
}
