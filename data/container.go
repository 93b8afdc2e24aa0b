// Package data provides thread-safe holding of the document store status.
// The StatusContainer uses atomic replacement so readers never block the probe job.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/medref-api/entities"
	"github.com/giygas/medref-api/interfaces"
	"github.com/giygas/medref-api/logging"
)

// Compile-time check to ensure StatusContainer implements StatusStore
var _ interfaces.StatusStore = (*StatusContainer)(nil)

// StatusContainer holds the last probe result with atomic pointers for lock-free reads
type StatusContainer struct {
	status          atomic.Pointer[entities.StoreStatus]
	probing         atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewStatusContainer creates a container with an unchecked status
func NewStatusContainer() *StatusContainer {
	sc := &StatusContainer{}
	sc.status.Store(&entities.StoreStatus{})
	sc.serverStartTime.Store(time.Time{})
	return sc
}

// GetStatus returns a copy of the last probe result
func (sc *StatusContainer) GetStatus() entities.StoreStatus {
	if s := sc.status.Load(); s != nil {
		return *s
	}
	return entities.StoreStatus{}
}

// UpdateStatus atomically replaces the probe result
func (sc *StatusContainer) UpdateStatus(status entities.StoreStatus) {
	if status.Collections != nil {
		status.Collections = append([]string(nil), status.Collections...)
	}
	prev := sc.status.Swap(&status)

	if prev != nil && prev.Checked() && prev.Reachable != status.Reachable {
		if status.Reachable {
			logging.Info("Document store reachable again", "collections", len(status.Collections))
		} else {
			logging.Warn("Document store became unreachable", "error", status.Error)
		}
	}
}

// SetServerStartTime sets the server start time
func (sc *StatusContainer) SetServerStartTime(startTime time.Time) {
	sc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (sc *StatusContainer) GetServerStartTime() time.Time {
	if v := sc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// BeginProbe marks the start of a probe
// Returns true if the probe can proceed, false if another probe is in progress
func (sc *StatusContainer) BeginProbe() bool {
	return sc.probing.CompareAndSwap(false, true)
}

// EndProbe marks the end of a probe
func (sc *StatusContainer) EndProbe() {
	sc.probing.Store(false)
}

// IsProbing returns true if a probe is currently running
func (sc *StatusContainer) IsProbing() bool {
	return sc.probing.Load()
}
