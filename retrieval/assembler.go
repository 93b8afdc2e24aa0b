package retrieval

import (
	"context"

	"github.com/giygas/medref-api/entities"
	"github.com/giygas/medref-api/transform"
)

// assemble transforms records in order, resolving the reference codes of the
// whole batch once beforehand. Without payload, records carry an empty payload
// and no lookups are made.
func (s *Service) assemble(ctx context.Context, tr transform.Transformer, records []entities.Record, opts entities.FetchOptions) []entities.TransformedRecord {
	out := make([]entities.TransformedRecord, 0, len(records))

	var urls entities.URLCache
	if opts.WithPayload && s.resolver != nil {
		if codes := transform.CollectCodes(tr, records); len(codes) > 0 {
			urls = s.resolver.Resolve(ctx, codes)
		}
	}

	for _, rec := range records {
		item := entities.TransformedRecord{ID: rec.ID, Payload: entities.Payload{}}
		if opts.WithPayload {
			item.Payload = tr.Transform(rec, urls)
		}
		if opts.WithVectors {
			item.Vector = rec.Vector
		}
		out = append(out, item)
	}
	return out
}
