package entities

// Payload is a transformed, schema-stable record payload.
type Payload map[string]any

// TransformedRecord is a record as returned to API consumers.
type TransformedRecord struct {
	ID      uint64    `json:"id"`
	Payload Payload   `json:"payload"`
	Vector  []float32 `json:"vector,omitempty"`
}

// Envelope wraps a list of records. Count always equals len(Data).
type Envelope struct {
	Success bool                `json:"success"`
	Data    []TransformedRecord `json:"data"`
	Count   int                 `json:"count"`
}

// NewEnvelope builds a successful envelope; a nil slice is emitted as an empty array.
func NewEnvelope(data []TransformedRecord) *Envelope {
	if data == nil {
		data = []TransformedRecord{}
	}
	return &Envelope{Success: true, Data: data, Count: len(data)}
}

// CoreSectionsPayload carries the four core package-insert sections. Absent sections are empty strings.
type CoreSectionsPayload struct {
	Indications             string `json:"indications"`
	DosageAndAdministration string `json:"dosage_and_administration"`
	Contraindications       string `json:"contraindications"`
	AdverseReactions        string `json:"adverse_reactions"`
}

// CoreSections is the data block of the core-sections endpoint.
type CoreSections struct {
	YJCode  string              `json:"yj_code"`
	Payload CoreSectionsPayload `json:"payload"`
}

// CoreSectionsEnvelope wraps CoreSections.
type CoreSectionsEnvelope struct {
	Success bool         `json:"success"`
	Data    CoreSections `json:"data"`
}

// Reviewer is the medical reviewer attached to a clinical note.
type Reviewer struct {
	Name               string   `json:"name"`
	AffiliatedHospital string   `json:"affiliated_hospital"`
	BoardCertified     []string `json:"board_certified"`
}

// GuidelineRef is one cited guideline of a clinical note. Fields missing from the
// source arrays are nil.
type GuidelineRef struct {
	Name       any `json:"name"`
	Link       any `json:"link"`
	Publisher  any `json:"publisher"`
	Department any `json:"department"`
	Access     any `json:"access"`
}
