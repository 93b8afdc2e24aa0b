package transform

import (
	"github.com/giygas/medref-api/entities"
)

const (
	noteSourceLabel   = "医学ノート"
	noteSourceDisplay = "Cubec医学ノート"
)

// PlaceholderReviewer is attached to notes whose metadata names no reviewer.
var PlaceholderReviewer = entities.Reviewer{
	Name:               "XX 太郎",
	AffiliatedHospital: "XX病院",
	BoardCertified:     []string{"XX専門医"},
}

// guideline reference arrays, zipped by index into GuidelineRef
const (
	glNames       = "gl_names"
	glLinks       = "gl_links"
	glPublishers  = "gl_publishers"
	glDepartments = "gl_departments"
	glAccess      = "gl_free_or_paid"
)

var clinicalNoteConsumed = keySet(
	"main_category", "disease_name", "date",
	glNames, glLinks, glPublishers, glDepartments, glAccess,
	"reviewer", "reviewer_name", "reviewer_affiliated_hospital", "reviewer_board_certified",
)

// ClinicalNote transforms clinical note records.
type ClinicalNote struct{}

func (ClinicalNote) Transform(rec entities.Record, _ entities.URLCache) entities.Payload {
	meta := metadataOf(rec)

	out := flatten(meta, clinicalNoteConsumed)
	out["title"] = text(meta["main_category"])
	out["disease"] = text(meta["disease_name"])
	out["context"] = text(rec.Payload[pageContentKey])
	out["publicationDate"] = FormatPublicationDate(text(meta["date"]))

	if source, ok := out["source"].(string); ok && source == noteSourceLabel {
		out["source"] = noteSourceDisplay
	}

	out["gl"] = zipGuidelineRefs(meta)
	out["reviewer"] = reviewerOf(meta)
	return out
}

// FormatPublicationDate turns a six character YYMMDD token into YYYY-MM-DD in
// the 2000s. Any other input is returned unchanged.
func FormatPublicationDate(date string) string {
	r := []rune(date)
	if len(r) != 6 {
		return date
	}
	return "20" + string(r[0:2]) + "-" + string(r[2:4]) + "-" + string(r[4:6])
}

// zipGuidelineRefs joins the parallel gl_* arrays index by index. The result is as
// long as the longest array; shorter or missing arrays contribute nil.
func zipGuidelineRefs(meta map[string]any) []entities.GuidelineRef {
	names := list(meta[glNames])
	links := list(meta[glLinks])
	publishers := list(meta[glPublishers])
	departments := list(meta[glDepartments])
	access := list(meta[glAccess])

	n := max(len(names), len(links), len(publishers), len(departments), len(access))
	refs := make([]entities.GuidelineRef, n)
	for i := range refs {
		refs[i] = entities.GuidelineRef{
			Name:       at(names, i),
			Link:       at(links, i),
			Publisher:  at(publishers, i),
			Department: at(departments, i),
			Access:     at(access, i),
		}
	}
	return refs
}

func at(values []any, i int) any {
	if i < len(values) {
		return values[i]
	}
	return nil
}

// reviewerOf reads a nested reviewer object, then flat reviewer_* keys, and falls
// back to the placeholder.
func reviewerOf(meta map[string]any) entities.Reviewer {
	if nested, ok := meta["reviewer"].(map[string]any); ok {
		if r, ok := buildReviewer(nested["name"], nested["affiliated_hospital"], nested["board_certified"]); ok {
			return r
		}
	}
	if r, ok := buildReviewer(meta["reviewer_name"], meta["reviewer_affiliated_hospital"], meta["reviewer_board_certified"]); ok {
		return r
	}

	placeholder := PlaceholderReviewer
	placeholder.BoardCertified = append([]string(nil), PlaceholderReviewer.BoardCertified...)
	return placeholder
}

func buildReviewer(name, hospital, certified any) (entities.Reviewer, bool) {
	r := entities.Reviewer{
		Name:               text(name),
		AffiliatedHospital: text(hospital),
		BoardCertified:     stringList(certified),
	}
	if r.Name == "" && r.AffiliatedHospital == "" && len(r.BoardCertified) == 0 {
		return entities.Reviewer{}, false
	}
	if r.BoardCertified == nil {
		r.BoardCertified = []string{}
	}
	return r, true
}
