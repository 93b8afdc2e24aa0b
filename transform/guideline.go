package transform

import (
	"github.com/giygas/medref-api/entities"
)

var guidelineRenames = map[string]string{
	"gl_name":   "guideline_name",
	"heading_1": "heading1",
	"heading_2": "heading2",
	"heading_3": "heading3",
}

var guidelineConsumed = keySet("gl_name", "heading_1", "heading_2", "heading_3")

// Guideline transforms guideline records.
type Guideline struct{}

func (Guideline) Transform(rec entities.Record, _ entities.URLCache) entities.Payload {
	meta := metadataOf(rec)

	out := flatten(meta, guidelineConsumed)
	for from, to := range guidelineRenames {
		out[to] = text(meta[from])
	}
	out["context"] = text(rec.Payload[pageContentKey])

	if source, ok := out["source"].(string); ok && source == "GL" {
		out["source"] = "GUIDELINE"
	}

	setDefault(out, "publication_date", "author", "link", "bibliographic_information")
	return out
}
