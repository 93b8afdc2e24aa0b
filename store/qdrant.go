// Package store wraps the Qdrant document store behind fetch-by-id and filtered
// scan operations returning uniform records. One Store is created at startup and
// shared by all requests.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/medref-api/entities"
	"github.com/giygas/medref-api/interfaces"
	"github.com/giygas/medref-api/logging"
	"github.com/giygas/medref-api/metrics"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// MaxScanLimit caps the number of records a single scan returns. Results past the
// cap are dropped; no continuation cursor is exposed.
const MaxScanLimit = 10000

// Compile-time check to ensure Store implements DocumentStore
var _ interfaces.DocumentStore = (*Store)(nil)

// PointsClient is the subset of *qdrant.Client used by Store.
type PointsClient interface {
	Get(ctx context.Context, request *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Scroll(ctx context.Context, request *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error)
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
	ListCollections(ctx context.Context) ([]string, error)
	Close() error
}

// Config holds the connection parameters for the Qdrant gRPC endpoint.
type Config struct {
	Host           string
	Port           int
	APIKey         string
	UseTLS         bool
	Timeout        time.Duration // per store call
	MaxMessageSize int           // bytes, applies to both directions
}

// Store implements interfaces.DocumentStore over Qdrant.
type Store struct {
	client  PointsClient
	timeout time.Duration
}

// New dials Qdrant. The returned Store is safe for concurrent use and must be closed on shutdown.
func New(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid qdrant port: %d", cfg.Port)
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 64 * 1024 * 1024
	}

	qcfg := &qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(cfg.MaxMessageSize),
				grpc.MaxCallSendMsgSize(cfg.MaxMessageSize),
			),
		},
	}
	if !cfg.UseTLS {
		qcfg.GrpcOptions = append(qcfg.GrpcOptions, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	client, err := qdrant.NewClient(qcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	logging.Info("Qdrant client created", "host", cfg.Host, "port", cfg.Port, "tls", cfg.UseTLS)
	return NewWithClient(client, cfg.Timeout), nil
}

// NewWithClient wraps an existing client. A zero timeout disables the per-call deadline.
func NewWithClient(client PointsClient, timeout time.Duration) *Store {
	return &Store{client: client, timeout: timeout}
}

// FetchByIDs retrieves the points with the given ids. Duplicate ids are collapsed;
// the order of the result is decided by the store.
func (s *Store) FetchByIDs(ctx context.Context, collection string, ids []uint64, opts entities.FetchOptions) ([]entities.Record, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: point ids cannot be empty", entities.ErrInvalidArgument)
	}

	seen := make(map[uint64]struct{}, len(ids))
	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		pointIDs = append(pointIDs, qdrant.NewIDNum(id))
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: collection,
		Ids:            pointIDs,
		WithPayload:    qdrant.NewWithPayload(opts.WithPayload),
		WithVectors:    qdrant.NewWithVectors(opts.WithVectors),
	})
	metrics.ObserveStoreCall("retrieve", collection, start, err)
	if err != nil {
		logging.Error("Qdrant retrieve failed", "collection", collection, "ids", len(pointIDs), "error", err)
		return nil, upstreamError("retrieve", collection, err)
	}

	return toRecords(points, opts)
}

// Scan returns the points matching filter, up to limit (capped at MaxScanLimit).
func (s *Store) Scan(ctx context.Context, collection string, filter *qdrant.Filter, opts entities.FetchOptions, limit int) ([]entities.Record, error) {
	if limit <= 0 || limit > MaxScanLimit {
		limit = MaxScanLimit
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collection,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(opts.WithPayload),
		WithVectors:    qdrant.NewWithVectors(opts.WithVectors),
	})
	metrics.ObserveStoreCall("scroll", collection, start, err)
	if err != nil {
		logging.Error("Qdrant scroll failed", "collection", collection, "error", err)
		return nil, upstreamError("scroll", collection, err)
	}

	if len(points) >= limit {
		logging.Warn("Scan hit the record cap, results truncated", "collection", collection, "limit", limit)
	}

	return toRecords(points, opts)
}

// Ping checks that the store answers a health check.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.HealthCheck(ctx); err != nil {
		return upstreamError("health check", "", err)
	}
	return nil
}

// ListCollections returns the collection names known to the store.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	names, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, upstreamError("list collections", "", err)
	}
	return names, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// upstreamError wraps a client failure as ErrUpstreamUnavailable, keeping the gRPC detail.
func upstreamError(op, collection string, err error) error {
	detail := err.Error()
	if st, ok := status.FromError(err); ok {
		detail = fmt.Sprintf("%s: %s", st.Code(), st.Message())
	}
	if collection != "" {
		return fmt.Errorf("%w: %s %s: %s", entities.ErrUpstreamUnavailable, op, collection, detail)
	}
	return fmt.Errorf("%w: %s: %s", entities.ErrUpstreamUnavailable, op, detail)
}
