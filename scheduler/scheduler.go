// Package scheduler runs the background store probe. The probe result feeds the
// health endpoint and the store_up gauge, and warns when a configured collection
// is missing from the store.
package scheduler

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/giygas/medref-api/entities"
	"github.com/giygas/medref-api/interfaces"
	"github.com/giygas/medref-api/logging"
	"github.com/giygas/medref-api/metrics"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

const defaultProbeTimeout = 10 * time.Second

// Scheduler probes the document store on a fixed interval using dependency injection
type Scheduler struct {
	store     interfaces.DocumentStore
	status    interfaces.StatusStore
	catalog   entities.Catalog
	interval  time.Duration
	timeout   time.Duration
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(store interfaces.DocumentStore, status interfaces.StatusStore, catalog entities.Catalog, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:     store,
		status:    status,
		catalog:   catalog,
		interval:  interval,
		timeout:   defaultProbeTimeout,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start runs a first probe synchronously and schedules the following ones.
// An unreachable store at startup is logged, not fatal: the health endpoint reports it.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("probe interval must be positive, got %v", s.interval)
	}

	if err := s.probe(); err != nil {
		logging.Error("Initial store probe failed", "error", err)
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		if err := s.probe(); err != nil {
			logging.Error("Store probe failed", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule store probe", "error", err)
		return fmt.Errorf("failed to schedule store probe: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Store probe scheduled", "interval", s.interval.String())

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// probe pings the store, lists its collections and records the outcome.
func (s *Scheduler) probe() error {
	// Prevent concurrent probes
	if !s.status.BeginProbe() {
		logging.Info("Store probe already in progress, skipping...")
		return nil
	}
	defer s.status.EndProbe()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	collections, err := s.check(ctx)
	if err != nil {
		s.status.UpdateStatus(entities.StoreStatus{CheckedAt: time.Now(), Error: err.Error()})
		metrics.SetStoreUp(false)
		return err
	}

	s.status.UpdateStatus(entities.StoreStatus{
		Reachable:   true,
		CheckedAt:   time.Now(),
		Collections: collections,
	})
	metrics.SetStoreUp(true)

	for _, entry := range s.catalog.Entries() {
		if !slices.Contains(collections, entry.Name) {
			logging.Warn("Configured collection not found in store", "variant", entry.Key, "collection", entry.Name)
		}
	}

	logging.Debug("Store probe completed", "duration", time.Since(start).String(), "collections", len(collections))
	return nil
}

func (s *Scheduler) check(ctx context.Context) ([]string, error) {
	if err := s.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	collections, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return collections, nil
}
