package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/giygas/medref-api/config"
)

// recordingHandler implements interfaces.HTTPHandler and remembers which method served a request.
type recordingHandler struct {
	mu    sync.Mutex
	calls []string
}

func (h *recordingHandler) serve(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.calls = append(h.calls, name)
		h.mu.Unlock()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(name))
	}
}

func (h *recordingHandler) LookupPoints(w http.ResponseWriter, r *http.Request) {
	h.serve("LookupPoints")(w, r)
}

func (h *recordingHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	h.serve("ListCollections")(w, r)
}

func (h *recordingHandler) ClinicalNoteChapter(w http.ResponseWriter, r *http.Request) {
	h.serve("ClinicalNoteChapter")(w, r)
}

func (h *recordingHandler) ClinicalNotePage(w http.ResponseWriter, r *http.Request) {
	h.serve("ClinicalNotePage")(w, r)
}

func (h *recordingHandler) PackageInsertChapter(w http.ResponseWriter, r *http.Request) {
	h.serve("PackageInsertChapter")(w, r)
}

func (h *recordingHandler) PackageInsertCoreSections(w http.ResponseWriter, r *http.Request) {
	h.serve("PackageInsertCoreSections")(w, r)
}

func (h *recordingHandler) GuidelineChapter(w http.ResponseWriter, r *http.Request) {
	h.serve("GuidelineChapter")(w, r)
}

func (h *recordingHandler) GuidelinePage(w http.ResponseWriter, r *http.Request) {
	h.serve("GuidelinePage")(w, r)
}

func (h *recordingHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.serve("HealthCheck")(w, r)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Address:        "127.0.0.1",
		MaxRequestBody: 1024,
		MaxHeaderSize:  2048,
		CORSOrigins:    []string{"https://app.example"},
		Qdrant:         config.QdrantConfig{Timeout: time.Second},
	}
}

func TestRoutes(t *testing.T) {
	handler := &recordingHandler{}
	s := NewServer(testConfig(), handler)

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodPost, "/api", "LookupPoints"},
		{http.MethodGet, "/collections", "ListCollections"},
		{http.MethodPost, "/api/cubec-note/chapter", "ClinicalNoteChapter"},
		{http.MethodPost, "/api/cubec-note/page", "ClinicalNotePage"},
		{http.MethodPost, "/api/package-insert/chapter", "PackageInsertChapter"},
		{http.MethodPost, "/api/package-insert/core-sections", "PackageInsertCoreSections"},
		{http.MethodPost, "/api/guideline/chapter", "GuidelineChapter"},
		{http.MethodPost, "/api/guideline/page", "GuidelinePage"},
		{http.MethodGet, "/health", "HealthCheck"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			req.RemoteAddr = "10.0.0.1:1234"
			w := httptest.NewRecorder()

			s.Router().ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if w.Body.String() != tt.want {
				t.Errorf("Expected %s to serve %s %s, got %q", tt.want, tt.method, tt.path, w.Body.String())
			}
		})
	}
}

func TestRoutesRejectWrongMethod(t *testing.T) {
	s := NewServer(testConfig(), &recordingHandler{})

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(testConfig(), &recordingHandler{})

	// Generate one observation first.
	s.Router().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/collections", nil))

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_request_total") {
		t.Error("Expected http_request_total in metrics output")
	}
}

func TestCORSPreflight(t *testing.T) {
	s := NewServer(testConfig(), &recordingHandler{})

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
	}{
		{"allowed origin", "https://app.example", "https://app.example"},
		{"other origin", "https://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()

			s.Router().ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Expected Access-Control-Allow-Origin %q, got %q", tt.wantOrigin, got)
			}
		})
	}
}

func TestShutdown(t *testing.T) {
	s := NewServer(testConfig(), &recordingHandler{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Unexpected shutdown error: %v", err)
	}
	// A second Stop must not panic.
	s.limiter.Stop()
}

func TestBodyCappedWithoutContentLength(t *testing.T) {
	cfg := testConfig()
	var readErr error
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	})
	h := RequestSizeMiddleware(cfg)(next)

	req := httptest.NewRequest(http.MethodPost, "/api", io.NopCloser(strings.NewReader(strings.Repeat("a", 4096))))
	req.ContentLength = -1
	h.ServeHTTP(httptest.NewRecorder(), req)

	if readErr == nil {
		t.Error("Expected the body read to fail past the size limit")
	}
}
