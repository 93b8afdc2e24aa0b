// Package retrieval runs the lookup and search pipeline: build the filter, read
// from the document store, transform per collection, resolve reference URLs and
// assemble the ordered result.
package retrieval

import (
	"context"
	"fmt"

	"github.com/giygas/medref-api/entities"
	"github.com/giygas/medref-api/filter"
	"github.com/giygas/medref-api/interfaces"
	"github.com/giygas/medref-api/logging"
	"github.com/giygas/medref-api/store"
	"github.com/giygas/medref-api/transform"
)

// Compile-time check to ensure Service implements Retriever
var _ interfaces.Retriever = (*Service)(nil)

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	store    interfaces.DocumentStore
	resolver interfaces.URLResolver
	catalog  entities.Catalog
	registry transform.Registry
}

// NewService wires the pipeline. A nil registry selects transform.DefaultRegistry.
func NewService(ds interfaces.DocumentStore, resolver interfaces.URLResolver, catalog entities.Catalog, registry transform.Registry) *Service {
	if registry == nil {
		registry = transform.DefaultRegistry()
	}
	return &Service{
		store:    ds,
		resolver: resolver,
		catalog:  catalog,
		registry: registry,
	}
}

// Lookup fetches records by id. The result follows the store's order and holds
// one entry per distinct id found.
func (s *Service) Lookup(ctx context.Context, variant entities.Variant, ids []uint64, opts entities.FetchOptions) ([]entities.TransformedRecord, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: point ids cannot be empty", entities.ErrInvalidArgument)
	}

	collection, tr, err := s.route(variant)
	if err != nil {
		return nil, err
	}

	records, err := s.store.FetchByIDs(ctx, collection, ids, opts)
	if err != nil {
		return nil, fmt.Errorf("lookup in %s: %w", collection, err)
	}

	logging.Debug("Points retrieved", "variant", variant, "collection", collection, "requested", len(ids), "found", len(records))
	return s.assemble(ctx, tr, records, opts), nil
}

// Search scans a collection for records matching every condition.
func (s *Service) Search(ctx context.Context, variant entities.Variant, conditions []entities.FilterCondition, opts entities.FetchOptions) ([]entities.TransformedRecord, error) {
	collection, tr, err := s.route(variant)
	if err != nil {
		return nil, err
	}

	f, err := filter.Build(conditions)
	if err != nil {
		return nil, err
	}

	records, err := s.store.Scan(ctx, collection, f, opts, store.MaxScanLimit)
	if err != nil {
		return nil, fmt.Errorf("search in %s: %w", collection, err)
	}

	logging.Debug("Points scanned", "variant", variant, "collection", collection, "conditions", len(conditions), "found", len(records))
	return s.assemble(ctx, tr, records, opts), nil
}

// CoreSections gathers the package insert chunks of a YJ code and folds them into
// the four core sections. No matching chunk yields four empty sections.
func (s *Service) CoreSections(ctx context.Context, yjCode string) (entities.CoreSectionsPayload, error) {
	collection, err := s.catalog.Resolve(entities.PackageInsert)
	if err != nil {
		return entities.CoreSectionsPayload{}, err
	}

	f, err := filter.Build([]entities.FilterCondition{
		{Field: "metadata.yj_code", Value: yjCode, Match: entities.TextSearch},
	})
	if err != nil {
		return entities.CoreSectionsPayload{}, err
	}

	records, err := s.store.Scan(ctx, collection, f, entities.DefaultFetchOptions(), store.MaxScanLimit)
	if err != nil {
		return entities.CoreSectionsPayload{}, fmt.Errorf("core sections in %s: %w", collection, err)
	}

	return transform.CoreSections(records), nil
}

// Collections lists the configured variant to collection mapping.
func (s *Service) Collections() []entities.CollectionEntry {
	return s.catalog.Entries()
}

func (s *Service) route(variant entities.Variant) (string, transform.Transformer, error) {
	collection, err := s.catalog.Resolve(variant)
	if err != nil {
		return "", nil, err
	}
	tr, err := s.registry.Lookup(variant)
	if err != nil {
		return "", nil, err
	}
	return collection, tr, nil
}
