package entities

import "time"

// StoreStatus is the outcome of the most recent document store probe.
type StoreStatus struct {
	Reachable   bool
	CheckedAt   time.Time
	Collections []string
	Error       string
}

// Checked reports whether a probe has completed at least once.
func (s StoreStatus) Checked() bool {
	return !s.CheckedAt.IsZero()
}
