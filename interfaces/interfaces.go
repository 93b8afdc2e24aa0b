// Package interfaces defines the contracts between the packages of the reference
// API so each stage of the retrieval pipeline can be replaced by a fake in tests.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/medref-api/entities"
	"github.com/qdrant/go-client/qdrant"
)

// DocumentStore is the retrieval adapter over the vector store.
// Implementations must be safe for concurrent use by in-flight requests.
type DocumentStore interface {
	// FetchByIDs returns the points with the given ids, in store order.
	FetchByIDs(ctx context.Context, collection string, ids []uint64, opts entities.FetchOptions) ([]entities.Record, error)

	// Scan returns the points matching filter, truncated to limit.
	Scan(ctx context.Context, collection string, filter *qdrant.Filter, opts entities.FetchOptions, limit int) ([]entities.Record, error)

	Ping(ctx context.Context) error
	ListCollections(ctx context.Context) ([]string, error)
	Close() error
}

// URLResolver resolves reference codes to document URLs.
// A code whose lookup fails maps to no URLs; Resolve itself never fails.
type URLResolver interface {
	Resolve(ctx context.Context, codes []string) entities.URLCache
}

// Retriever runs the retrieval pipeline for the HTTP layer.
type Retriever interface {
	// Lookup fetches records by id and returns them transformed and enriched.
	Lookup(ctx context.Context, variant entities.Variant, ids []uint64, opts entities.FetchOptions) ([]entities.TransformedRecord, error)

	// Search scans a collection with the given conditions.
	Search(ctx context.Context, variant entities.Variant, conditions []entities.FilterCondition, opts entities.FetchOptions) ([]entities.TransformedRecord, error)

	// CoreSections collects the four core package-insert sections for a YJ code.
	CoreSections(ctx context.Context, yjCode string) (entities.CoreSectionsPayload, error)

	// Collections lists the configured variant to collection mapping.
	Collections() []entities.CollectionEntry
}

// StatusStore holds the last known document store status.
// It provides thread-safe access with atomic replacement of the status.
type StatusStore interface {
	GetStatus() entities.StoreStatus
	UpdateStatus(status entities.StoreStatus)
	GetServerStartTime() time.Time

	// BeginProbe returns false when another probe is already running.
	BeginProbe() bool
	EndProbe()
	IsProbing() bool
}

// Scheduler defines the contract for background jobs.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	LookupPoints(w http.ResponseWriter, r *http.Request)
	ListCollections(w http.ResponseWriter, r *http.Request)

	ClinicalNoteChapter(w http.ResponseWriter, r *http.Request)
	ClinicalNotePage(w http.ResponseWriter, r *http.Request)
	PackageInsertChapter(w http.ResponseWriter, r *http.Request)
	PackageInsertCoreSections(w http.ResponseWriter, r *http.Request)
	GuidelineChapter(w http.ResponseWriter, r *http.Request)
	GuidelinePage(w http.ResponseWriter, r *http.Request)

	// This will stay in all versions
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker evaluates system health from the probe status.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck() (status string, details map[string]any, err error)

	// CalculateNextProbe returns the next scheduled store probe time
	CalculateNextProbe() time.Time
}

// InputValidator validates user supplied request values.
type InputValidator interface {
	// ValidateInput checks a free-text filter value
	ValidateInput(input string) error

	// ValidateYJCode normalises and checks a YJ code, returning the normalised form
	ValidateYJCode(input string) (string, error)

	// ValidatePointIDs checks a list of point ids
	ValidatePointIDs(ids []int64) ([]uint64, error)
}
