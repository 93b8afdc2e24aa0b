// Package transform maps raw store records to the public payload of each
// collection. Transformers are pure; dispatch goes through a Registry keyed by
// collection variant, so a new collection only adds an entry.
package transform

import (
	"fmt"

	"github.com/giygas/medref-api/entities"
)

// Transformer maps one record to its public payload. urls holds the resolved
// reference-code URLs for the request and may be nil.
type Transformer interface {
	Transform(rec entities.Record, urls entities.URLCache) entities.Payload
}

// CodeCollector is implemented by transformers whose payloads embed resolved URLs.
type CodeCollector interface {
	ReferenceCodes(rec entities.Record) []string
}

// Registry selects the transformer for a variant.
type Registry map[entities.Variant]Transformer

// DefaultRegistry returns the transformers for the built-in collections.
func DefaultRegistry() Registry {
	return Registry{
		entities.ClinicalNote:  ClinicalNote{},
		entities.PackageInsert: PackageInsert{},
		entities.Guideline:     Guideline{},
	}
}

// Lookup returns the transformer registered for v.
func (r Registry) Lookup(v entities.Variant) (Transformer, error) {
	t, ok := r[v]
	if !ok || t == nil {
		return nil, fmt.Errorf("%w: no transformer for %q", entities.ErrUnknownVariant, v)
	}
	return t, nil
}

// CollectCodes returns the unique reference codes of records in first-seen order,
// or nil when t does not use reference codes.
func CollectCodes(t Transformer, records []entities.Record) []string {
	collector, ok := t.(CodeCollector)
	if !ok {
		return nil
	}

	seen := make(map[string]struct{})
	var codes []string
	for _, rec := range records {
		for _, code := range collector.ReferenceCodes(rec) {
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			codes = append(codes, code)
		}
	}
	return codes
}
