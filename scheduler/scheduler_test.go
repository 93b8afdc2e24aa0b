package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/giygas/medref-api/data"
	"github.com/giygas/medref-api/entities"
	"github.com/qdrant/go-client/qdrant"
)

// mockProbeStore implements interfaces.DocumentStore for probe tests
type mockProbeStore struct {
	pingErr     error
	listErr     error
	collections []string
	pings       atomic.Int32
}

func (m *mockProbeStore) FetchByIDs(context.Context, string, []uint64, entities.FetchOptions) ([]entities.Record, error) {
	return nil, nil
}

func (m *mockProbeStore) Scan(context.Context, string, *qdrant.Filter, entities.FetchOptions, int) ([]entities.Record, error) {
	return nil, nil
}

func (m *mockProbeStore) Ping(context.Context) error {
	m.pings.Add(1)
	return m.pingErr
}

func (m *mockProbeStore) ListCollections(context.Context) ([]string, error) {
	return m.collections, m.listErr
}

func (m *mockProbeStore) Close() error { return nil }

func testCatalog() entities.Catalog {
	return entities.Catalog{
		entities.ClinicalNote:  "notes",
		entities.PackageInsert: "inserts",
		entities.Guideline:     "guidelines",
	}
}

func TestProbeReachable(t *testing.T) {
	store := &mockProbeStore{collections: []string{"notes", "inserts", "guidelines"}}
	status := data.NewStatusContainer()
	s := NewScheduler(store, status, testCatalog(), time.Minute)

	if err := s.probe(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := status.GetStatus()
	if !got.Reachable || !got.Checked() {
		t.Errorf("Expected reachable checked status, got %+v", got)
	}
	if len(got.Collections) != 3 {
		t.Errorf("Expected 3 collections, got %v", got.Collections)
	}
	if status.IsProbing() {
		t.Error("Probe flag should be released after the probe")
	}
}

func TestProbeFailures(t *testing.T) {
	tests := []struct {
		name    string
		store   *mockProbeStore
		wantErr string
	}{
		{"ping fails", &mockProbeStore{pingErr: fmt.Errorf("%w: connection refused", entities.ErrUpstreamUnavailable)}, "ping"},
		{"list fails", &mockProbeStore{listErr: fmt.Errorf("%w: deadline exceeded", entities.ErrUpstreamUnavailable)}, "list collections"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := data.NewStatusContainer()
			s := NewScheduler(tt.store, status, testCatalog(), time.Minute)

			err := s.probe()

			if err == nil || !errors.Is(err, entities.ErrUpstreamUnavailable) {
				t.Fatalf("Expected upstream error, got %v", err)
			}
			got := status.GetStatus()
			if got.Reachable || !got.Checked() {
				t.Errorf("Expected unreachable checked status, got %+v", got)
			}
			if !strings.Contains(got.Error, tt.wantErr) {
				t.Errorf("Expected status error to mention %q, got %q", tt.wantErr, got.Error)
			}
		})
	}
}

func TestProbeSkippedWhileRunning(t *testing.T) {
	store := &mockProbeStore{}
	status := data.NewStatusContainer()
	s := NewScheduler(store, status, testCatalog(), time.Minute)

	status.BeginProbe()
	defer status.EndProbe()

	if err := s.probe(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if store.pings.Load() != 0 {
		t.Error("Store should not be pinged while another probe runs")
	}
	if status.GetStatus().Checked() {
		t.Error("Skipped probe should not record a status")
	}
}

func TestStartRunsInitialProbe(t *testing.T) {
	store := &mockProbeStore{collections: []string{"notes"}}
	status := data.NewStatusContainer()
	s := NewScheduler(store, status, testCatalog(), time.Hour)

	if err := s.Start(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer s.Stop()

	if store.pings.Load() != 1 {
		t.Errorf("Expected exactly one initial ping, got %d", store.pings.Load())
	}
	if !status.GetStatus().Reachable {
		t.Error("Status should be reachable after the initial probe")
	}
}

func TestStartWithUnreachableStore(t *testing.T) {
	store := &mockProbeStore{pingErr: entities.ErrUpstreamUnavailable}
	status := data.NewStatusContainer()
	s := NewScheduler(store, status, testCatalog(), time.Hour)

	if err := s.Start(); err != nil {
		t.Fatalf("Start should not fail on an unreachable store: %v", err)
	}
	defer s.Stop()

	if status.GetStatus().Reachable {
		t.Error("Status should record the unreachable store")
	}
}

func TestStartInvalidInterval(t *testing.T) {
	s := NewScheduler(&mockProbeStore{}, data.NewStatusContainer(), testCatalog(), 0)

	if err := s.Start(); err == nil {
		t.Error("Expected error for a zero interval")
	}
}
