package entities

// Record is one point read from the document store.
type Record struct {
	ID      uint64
	Payload map[string]any
	Vector  []float32
}

// FetchOptions controls which parts of a point the store returns.
type FetchOptions struct {
	WithPayload bool
	WithVectors bool
}

// DefaultFetchOptions returns payload without vectors.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{WithPayload: true}
}

// MatchKind selects how a filter value is compared against a payload field.
type MatchKind int

const (
	// Exact matches a keyword-indexed field verbatim.
	Exact MatchKind = iota
	// TextSearch matches against a full-text indexed field.
	TextSearch
)

func (m MatchKind) String() string {
	switch m {
	case Exact:
		return "exact"
	case TextSearch:
		return "text"
	default:
		return "unknown"
	}
}

// FilterCondition is one clause of a conjunctive filter. Field is a dotted path into the payload.
type FilterCondition struct {
	Field string
	Value string
	Match MatchKind
}

// URLCache maps a reference code to its resolved document URLs for the lifetime of one request.
type URLCache map[string][]string
