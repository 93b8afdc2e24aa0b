// Package filter turns declarative filter conditions into Qdrant's native filter.
package filter

import (
	"fmt"
	"strings"

	"github.com/giygas/medref-api/entities"
	"github.com/qdrant/go-client/qdrant"
)

// Build returns the conjunction of all valid conditions. A condition is valid when
// both its field and its value are non-blank; invalid ones are dropped. At least one
// valid condition is required.
func Build(conditions []entities.FilterCondition) (*qdrant.Filter, error) {
	if len(conditions) == 0 {
		return nil, fmt.Errorf("%w: no conditions provided", entities.ErrInvalidFilter)
	}

	must := make([]*qdrant.Condition, 0, len(conditions))
	for _, c := range conditions {
		field := strings.TrimSpace(c.Field)
		if field == "" || strings.TrimSpace(c.Value) == "" {
			continue
		}

		cond, err := condition(field, c.Value, c.Match)
		if err != nil {
			return nil, err
		}
		must = append(must, cond)
	}

	if len(must) == 0 {
		return nil, fmt.Errorf("%w: no valid filter conditions provided", entities.ErrInvalidFilter)
	}

	return &qdrant.Filter{Must: must}, nil
}

func condition(field, value string, kind entities.MatchKind) (*qdrant.Condition, error) {
	var match *qdrant.Match
	switch kind {
	case entities.Exact:
		match = &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: value}}
	case entities.TextSearch:
		match = &qdrant.Match{MatchValue: &qdrant.Match_Text{Text: value}}
	default:
		return nil, fmt.Errorf("%w: unsupported match kind %d for %s", entities.ErrInvalidFilter, kind, field)
	}

	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{Key: field, Match: match},
		},
	}, nil
}
