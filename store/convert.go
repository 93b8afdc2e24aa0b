package store

import (
	"fmt"

	"github.com/giygas/medref-api/entities"
	"github.com/qdrant/go-client/qdrant"
)

func toRecords(points []*qdrant.RetrievedPoint, opts entities.FetchOptions) ([]entities.Record, error) {
	records := make([]entities.Record, 0, len(points))
	for _, p := range points {
		if p == nil {
			return nil, fmt.Errorf("%w: nil point in response", entities.ErrUpstreamUnavailable)
		}

		id, err := numericID(p.GetId())
		if err != nil {
			return nil, err
		}

		rec := entities.Record{
			ID:      id,
			Payload: decodePayload(p.GetPayload()),
		}
		if opts.WithVectors {
			rec.Vector = denseVector(p.GetVectors())
		}
		records = append(records, rec)
	}
	return records, nil
}

func numericID(id *qdrant.PointId) (uint64, error) {
	if id == nil {
		return 0, fmt.Errorf("%w: point without id", entities.ErrUpstreamUnavailable)
	}
	if _, ok := id.GetPointIdOptions().(*qdrant.PointId_Num); !ok {
		return 0, fmt.Errorf("%w: non-numeric point id %q", entities.ErrUpstreamUnavailable, id.GetUuid())
	}
	return id.GetNum(), nil
}

func denseVector(vectors *qdrant.VectorsOutput) []float32 {
	vec := vectors.GetVector()
	if vec == nil {
		return nil
	}
	if dense := vec.GetDense(); dense != nil {
		return dense.GetData()
	}
	return vec.GetData()
}

// decodePayload converts a Qdrant payload into plain Go values. A missing payload becomes an empty map.
func decodePayload(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = decodeValue(v)
	}
	return out
}

func decodeValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}

	switch kind := v.GetKind().(type) {
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_StructValue:
		return decodePayload(kind.StructValue.GetFields())
	case *qdrant.Value_ListValue:
		values := kind.ListValue.GetValues()
		list := make([]any, len(values))
		for i, item := range values {
			list[i] = decodeValue(item)
		}
		return list
	default:
		return nil
	}
}
