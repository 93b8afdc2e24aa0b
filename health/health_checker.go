// Package health evaluates the service health from the document store probe status.
package health

import (
	"fmt"
	"math"
	"time"

	"github.com/giygas/medref-api/entities"
	"github.com/giygas/medref-api/interfaces"
)

// staleProbes is how many probe intervals may pass without a result before the
// status is reported as degraded.
const staleProbes = 3

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	statusStore   interfaces.StatusStore
	probeInterval time.Duration
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(statusStore interfaces.StatusStore, probeInterval time.Duration) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		statusStore:   statusStore,
		probeInterval: probeInterval,
	}
}

// HealthCheck reports "unhealthy" with an error when the last probe failed,
// "degraded" when no recent probe result exists and "healthy" otherwise.
func (h *HealthCheckerImpl) HealthCheck() (status string, details map[string]any, err error) {
	st := h.statusStore.GetStatus()
	probeAge := time.Since(st.CheckedAt)

	switch {
	case !st.Checked():
		status = "degraded"

	case !st.Reachable:
		status = "unhealthy"
		err = fmt.Errorf("%w: %s", entities.ErrUpstreamUnavailable, st.Error)

	case h.probeInterval > 0 && probeAge > staleProbes*h.probeInterval:
		status = "degraded"

	default:
		status = "healthy"
	}

	details = map[string]any{
		"store_reachable": st.Reachable,
		"collections":     st.Collections,
		"is_probing":      h.statusStore.IsProbing(),
	}

	if st.Checked() {
		details["last_probe"] = st.CheckedAt.Format(time.RFC3339)
		details["probe_age_seconds"] = math.Round(probeAge.Seconds()*10) / 10
	}

	if start := h.statusStore.GetServerStartTime(); !start.IsZero() {
		details["uptime_seconds"] = math.Round(time.Since(start).Seconds())
	}

	return status, details, err
}

// CalculateNextProbe returns the next scheduled probe time
func (h *HealthCheckerImpl) CalculateNextProbe() time.Time {
	st := h.statusStore.GetStatus()
	if !st.Checked() || h.probeInterval <= 0 {
		return time.Now()
	}

	next := st.CheckedAt.Add(h.probeInterval)
	if next.Before(time.Now()) {
		return time.Now()
	}
	return next
}
