package logging

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func newCapturingHandler(status int) (http.Handler, *strings.Builder) {
	var logOutput strings.Builder
	logger := slog.New(slog.NewTextHandler(&logOutput, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("ok"))
	})

	return LoggingMiddleware(logger)(next), &logOutput
}

func TestLoggingMiddlewareSkipsQuietPaths(t *testing.T) {
	handler, logOutput := newCapturingHandler(http.StatusOK)

	for _, path := range []string{"/health", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			logOutput.Reset()
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Errorf("expected status 200, got %d", rr.Code)
			}
			if logs := logOutput.String(); logs != "" {
				t.Errorf("expected no logs for %s, got: %s", path, logs)
			}
		})
	}
}

func TestLoggingMiddlewareLogsRequests(t *testing.T) {
	handler, logOutput := newCapturingHandler(http.StatusOK)

	req := httptest.NewRequest(http.MethodPost, "/api/guideline/page", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "test-789"))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	logs := logOutput.String()
	for _, want := range []string{"HTTP request", "/api/guideline/page", "request_id=test-789", "status_code=200", "bytes_written=2"} {
		if !strings.Contains(logs, want) {
			t.Errorf("log should contain %q, got: %s", want, logs)
		}
	}
	if strings.Contains(logs, "query=") {
		t.Errorf("log should not contain 'query=' field when empty, got: %s", logs)
	}
}

func TestLoggingMiddlewareRequestIDFallback(t *testing.T) {
	handler, logOutput := newCapturingHandler(http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/collections?x=1", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, 12345))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	logs := logOutput.String()
	if !strings.Contains(logs, "request_id=unknown") {
		t.Errorf("log should contain request_id=unknown for non-string ID, got: %s", logs)
	}
	if !strings.Contains(logs, `query="x=1"`) {
		t.Errorf("log should contain query, got: %s", logs)
	}
}

func TestLoggingMiddlewareLevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusUnprocessableEntity, "level=WARN"},
		{http.StatusInternalServerError, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			handler, logOutput := newCapturingHandler(tt.status)

			req := httptest.NewRequest(http.MethodPost, "/api", nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if !strings.Contains(logOutput.String(), tt.level) {
				t.Errorf("expected %s, got: %s", tt.level, logOutput.String())
			}
		})
	}
}
