package adminapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clickrouter/router/elements/standard"
	"github.com/clickrouter/router/router"
)

func buildTestRouter(t *testing.T) *router.Router {
	t.Helper()
	r := router.NewRouter(nil)
	srcH, err := r.AddElement("s", &standard.Source{}, "test:0", []string{"hello"})
	if err != nil {
		t.Fatalf("AddElement(s) error = %v", err)
	}
	cH, err := r.AddElement("c", &standard.Counter{}, "test:1", nil)
	if err != nil {
		t.Fatalf("AddElement(c) error = %v", err)
	}
	kH, err := r.AddElement("k", &standard.Sink{}, "test:2", nil)
	if err != nil {
		t.Fatalf("AddElement(k) error = %v", err)
	}
	if err := r.Connect(srcH, 0, cH, 0); err != nil {
		t.Fatalf("Connect(s->c) error = %v", err)
	}
	if err := r.Connect(cH, 0, kH, 0); err != nil {
		t.Fatalf("Connect(c->k) error = %v", err)
	}
	r.SetRawConfig("s :: Source(hello) -> c :: Counter -> k :: Sink;")

	errh := router.NewErrorHandler(nil)
	if err := r.Validate(errh); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := r.ConfigureAll(errh); err != nil {
		t.Fatalf("ConfigureAll() error = %v", err)
	}
	r.InstallHandlers()
	return r
}

func TestHandleRouterSummaryReportsState(t *testing.T) {
	r := buildTestRouter(t)
	s := New(r, nil)
	req := httptest.NewRequest(http.MethodGet, "/router", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"num_elements":3`) {
		t.Fatalf("body = %q, want num_elements=3", rec.Body.String())
	}
}

func TestHandleRouterConfigServesRawConfigWithETag(t *testing.T) {
	r := buildTestRouter(t)
	s := New(r, nil)
	req := httptest.NewRequest(http.MethodGet, "/router/config", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != r.RawConfig() {
		t.Fatalf("body = %q, want %q", rec.Body.String(), r.RawConfig())
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected a non-empty ETag header")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/router/config", nil)
	req2.Header.Set("If-None-Match", etag)
	rec2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304 on matching If-None-Match", rec2.Code)
	}
}

func TestHandleHandlerReadAndWriteRoundTrip(t *testing.T) {
	r := buildTestRouter(t)
	s := New(r, nil)

	req := httptest.NewRequest(http.MethodGet, "/elements/c/count", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET count status = %d, want 200, body = %q", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "0" {
		t.Fatalf("count = %q, want 0", got)
	}

	writeReq := httptest.NewRequest(http.MethodPost, "/elements/c/reset_counts", strings.NewReader(""))
	writeRec := httptest.NewRecorder()
	s.Handler().ServeHTTP(writeRec, writeReq)
	if writeRec.Code != http.StatusNoContent {
		t.Fatalf("POST reset_counts status = %d, want 204, body = %q", writeRec.Code, writeRec.Body.String())
	}
}

func TestHandleHandlerReadUnknownElementReturns404(t *testing.T) {
	r := buildTestRouter(t)
	s := New(r, nil)
	req := httptest.NewRequest(http.MethodGet, "/elements/ghost/count", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleHandlerWriteUnknownHandlerReturns400(t *testing.T) {
	r := buildTestRouter(t)
	s := New(r, nil)
	req := httptest.NewRequest(http.MethodPost, "/elements/c/no_such_handler", strings.NewReader("x"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
