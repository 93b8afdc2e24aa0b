package health

import (
	"errors"
	"testing"
	"time"

	"github.com/giygas/medref-api/entities"
)

// MockStatusStore for testing
type MockStatusStore struct {
	status    entities.StoreStatus
	probing   bool
	startTime time.Time
}

func (m *MockStatusStore) GetStatus() entities.StoreStatus { return m.status }
func (m *MockStatusStore) UpdateStatus(s entities.StoreStatus) { m.status = s }
func (m *MockStatusStore) GetServerStartTime() time.Time { return m.startTime }
func (m *MockStatusStore) BeginProbe() bool { return true }
func (m *MockStatusStore) EndProbe() {}
func (m *MockStatusStore) IsProbing() bool { return m.probing }

func TestHealthCheck(t *testing.T) {
	interval := 5 * time.Minute

	tests := []struct {
		name       string
		status     entities.StoreStatus
		wantStatus string
		wantErr    bool
	}{
		{
			name:       "never probed",
			status:     entities.StoreStatus{},
			wantStatus: "degraded",
		},
		{
			name:       "reachable and fresh",
			status:     entities.StoreStatus{Reachable: true, CheckedAt: time.Now().Add(-time.Minute), Collections: []string{"notes"}},
			wantStatus: "healthy",
		},
		{
			name:       "reachable but stale",
			status:     entities.StoreStatus{Reachable: true, CheckedAt: time.Now().Add(-time.Hour)},
			wantStatus: "degraded",
		},
		{
			name:       "unreachable",
			status:     entities.StoreStatus{CheckedAt: time.Now(), Error: "connection refused"},
			wantStatus: "unhealthy",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewHealthChecker(&MockStatusStore{status: tt.status}, interval)

			status, details, err := checker.HealthCheck()

			if status != tt.wantStatus {
				t.Errorf("Expected status %q, got %q", tt.wantStatus, status)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, entities.ErrUpstreamUnavailable) {
				t.Errorf("Expected ErrUpstreamUnavailable, got %v", err)
			}
			if details["store_reachable"] != tt.status.Reachable {
				t.Errorf("Expected store_reachable %v, got %v", tt.status.Reachable, details["store_reachable"])
			}
			if _, ok := details["last_probe"]; ok != tt.status.Checked() {
				t.Errorf("last_probe present = %v, want %v", ok, tt.status.Checked())
			}
		})
	}
}

func TestHealthCheckUnreachableCarriesDetail(t *testing.T) {
	store := &MockStatusStore{status: entities.StoreStatus{CheckedAt: time.Now(), Error: "dial tcp: connection refused"}}
	checker := NewHealthChecker(store, time.Minute)

	_, _, err := checker.HealthCheck()

	if err == nil || err.Error() != "upstream unavailable: dial tcp: connection refused" {
		t.Errorf("Unexpected error %v", err)
	}
}

func TestHealthCheckUptime(t *testing.T) {
	store := &MockStatusStore{startTime: time.Now().Add(-90 * time.Second)}
	checker := NewHealthChecker(store, time.Minute)

	_, details, _ := checker.HealthCheck()

	uptime, ok := details["uptime_seconds"].(float64)
	if !ok {
		t.Fatalf("Expected uptime_seconds, got %v", details["uptime_seconds"])
	}
	if uptime < 89 || uptime > 95 {
		t.Errorf("Expected about 90 seconds uptime, got %v", uptime)
	}

	store.startTime = time.Time{}
	_, details, _ = checker.HealthCheck()
	if _, ok := details["uptime_seconds"]; ok {
		t.Error("uptime_seconds should be absent without a start time")
	}
}

func TestHealthCheckNoIntervalNeverStale(t *testing.T) {
	store := &MockStatusStore{status: entities.StoreStatus{Reachable: true, CheckedAt: time.Now().Add(-48 * time.Hour)}}
	checker := NewHealthChecker(store, 0)

	status, _, err := checker.HealthCheck()

	if status != "healthy" || err != nil {
		t.Errorf("Expected healthy without error, got %q (%v)", status, err)
	}
}

func TestCalculateNextProbe(t *testing.T) {
	interval := 5 * time.Minute
	checkedAt := time.Now().Add(-time.Minute)
	store := &MockStatusStore{status: entities.StoreStatus{Reachable: true, CheckedAt: checkedAt}}
	checker := NewHealthChecker(store, interval)

	if next := checker.CalculateNextProbe(); !next.Equal(checkedAt.Add(interval)) {
		t.Errorf("Expected %v, got %v", checkedAt.Add(interval), next)
	}

	store.status.CheckedAt = time.Now().Add(-time.Hour)
	before := time.Now()
	if next := checker.CalculateNextProbe(); next.Before(before) {
		t.Errorf("Overdue probe should be due now, got %v", next)
	}

	store.status = entities.StoreStatus{}
	if next := checker.CalculateNextProbe(); next.Before(before) {
		t.Errorf("Unprobed store should be due now, got %v", next)
	}
}
