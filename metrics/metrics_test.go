package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStoreCall(t *testing.T) {
	before := testutil.CollectAndCount(StoreRequestDuration)
	collection := fmt.Sprintf("metrics_test_%d", time.Now().UnixNano())

	ObserveStoreCall("retrieve", collection, time.Now(), nil)
	ObserveStoreCall("retrieve", collection, time.Now(), errors.New("boom"))

	assert.Equal(t, before+2, testutil.CollectAndCount(StoreRequestDuration))
}

func TestRecordReferenceLookup(t *testing.T) {
	before := testutil.ToFloat64(ReferenceLookupsTotal.WithLabelValues(LookupFailed))

	RecordReferenceLookup(LookupFailed)

	assert.Equal(t, before+1, testutil.ToFloat64(ReferenceLookupsTotal.WithLabelValues(LookupFailed)))
}

func TestSetStoreUp(t *testing.T) {
	SetStoreUp(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(StoreUp))

	SetStoreUp(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(StoreUp))
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Post("/api/guideline/page", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	counter := HTTPRequestTotals.WithLabelValues("POST", "/api/guideline/page", "422")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodPost, "/api/guideline/page", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMetricsMiddlewareUnmatchedPath(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/collections", func(w http.ResponseWriter, r *http.Request) {})

	counter := HTTPRequestTotals.WithLabelValues("GET", "unmatched", "404")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
