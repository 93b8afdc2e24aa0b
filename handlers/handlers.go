package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/giygas/medref-api/entities"
	"github.com/giygas/medref-api/logging"
)

// FetchFlags selects what the store returns. Both the camelCase keys and the
// legacy snake_case keys are accepted; camelCase wins when both are present.
type FetchFlags struct {
	WithPayload       *bool `json:"withPayload,omitempty"`
	WithVectors       *bool `json:"withVectors,omitempty"`
	LegacyWithPayload *bool `json:"with_payload,omitempty"`
	LegacyWithVectors *bool `json:"with_vectors,omitempty"`
}

// Options resolves the flags against the defaults: payload on, vectors off.
func (f FetchFlags) Options() entities.FetchOptions {
	opts := entities.DefaultFetchOptions()
	if v := firstSet(f.WithPayload, f.LegacyWithPayload); v != nil {
		opts.WithPayload = *v
	}
	if v := firstSet(f.WithVectors, f.LegacyWithVectors); v != nil {
		opts.WithVectors = *v
	}
	return opts
}

func firstSet(values ...*bool) *bool {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// PointsRequest is the body of POST /api.
type PointsRequest struct {
	PointIDs          []int64 `json:"pointIds"`
	LegacyPointIDs    []int64 `json:"point_ids"`
	CollectionVariant string  `json:"collectionVariant"`
	LegacyCollection  string  `json:"collection_name"`
	FetchFlags
}

func (p PointsRequest) ids() []int64 {
	if p.PointIDs != nil {
		return p.PointIDs
	}
	return p.LegacyPointIDs
}

func (p PointsRequest) variant() string {
	if p.CollectionVariant != "" {
		return p.CollectionVariant
	}
	return p.LegacyCollection
}

type clinicalNoteChapterRequest struct {
	Title   string `json:"title"`
	Disease string `json:"disease"`
	FetchFlags
}

type clinicalNotePageRequest struct {
	Disease string `json:"disease"`
	FetchFlags
}

// packageInsertChapterRequest selects chapters by YJ code. Older clients send
// package_insert_no instead, which is matched against the top-level payload key.
type packageInsertChapterRequest struct {
	YJCode          string `json:"yj_code"`
	PackageInsertNo string `json:"package_insert_no"`
	SectionTitle    string `json:"section_title"`
	FetchFlags
}

type coreSectionsRequest struct {
	YJCode string `json:"yj_code"`
}

type guidelineChapterRequest struct {
	GuidelineName string `json:"guideline_name"`
	Heading1      string `json:"heading1"`
	FetchFlags
}

type guidelinePageRequest struct {
	GuidelineName string `json:"guideline_name"`
	FetchFlags
}

// requiredField is a named request value that must be present and pass input validation.
type requiredField struct {
	name  string
	value string
}

func (h *HTTPHandlerImpl) checkFields(fields ...requiredField) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: field %s is required", entities.ErrValidation, f.name)
		}
		if err := h.validator.ValidateInput(f.value); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

// LookupPoints returns the records of one collection by point id.
func (h *HTTPHandlerImpl) LookupPoints(w http.ResponseWriter, r *http.Request) {
	var req PointsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	raw := req.ids()
	if raw == nil {
		h.respondWithServiceError(w, r, fmt.Errorf("%w: field pointIds is required", entities.ErrValidation))
		return
	}

	ids, err := h.validator.ValidatePointIDs(raw)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	variant, err := entities.ParseVariant(req.variant())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	records, err := h.retriever.Lookup(r.Context(), variant, ids, req.Options())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, entities.NewEnvelope(records))
}

// ListCollections returns the configured variant to collection mapping.
func (h *HTTPHandlerImpl) ListCollections(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, map[string]any{
		"collections": h.retriever.Collections(),
	})
}

// ClinicalNoteChapter searches clinical notes by chapter title and disease.
func (h *HTTPHandlerImpl) ClinicalNoteChapter(w http.ResponseWriter, r *http.Request) {
	var req clinicalNoteChapterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	if err := h.checkFields(requiredField{"title", req.Title}, requiredField{"disease", req.Disease}); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.search(w, r, entities.ClinicalNote, req.Options(),
		entities.FilterCondition{Field: "metadata.main_category", Value: req.Title, Match: entities.TextSearch},
		entities.FilterCondition{Field: "metadata.disease_name", Value: req.Disease, Match: entities.TextSearch},
	)
}

// ClinicalNotePage returns every clinical note chunk of a disease.
func (h *HTTPHandlerImpl) ClinicalNotePage(w http.ResponseWriter, r *http.Request) {
	var req clinicalNotePageRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	if err := h.checkFields(requiredField{"disease", req.Disease}); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.search(w, r, entities.ClinicalNote, req.Options(),
		entities.FilterCondition{Field: "metadata.disease_name", Value: req.Disease, Match: entities.TextSearch},
	)
}

// PackageInsertChapter searches package inserts by YJ code and section title.
func (h *HTTPHandlerImpl) PackageInsertChapter(w http.ResponseWriter, r *http.Request) {
	var req packageInsertChapterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	if strings.TrimSpace(req.YJCode) == "" && strings.TrimSpace(req.PackageInsertNo) != "" {
		if err := h.checkFields(requiredField{"package_insert_no", req.PackageInsertNo}, requiredField{"section_title", req.SectionTitle}); err != nil {
			h.respondWithServiceError(w, r, err)
			return
		}
		h.search(w, r, entities.PackageInsert, req.Options(),
			entities.FilterCondition{Field: "package_insert_no", Value: strings.TrimSpace(req.PackageInsertNo), Match: entities.Exact},
			entities.FilterCondition{Field: "section_title", Value: req.SectionTitle, Match: entities.TextSearch},
		)
		return
	}

	if err := h.checkFields(requiredField{"yj_code", req.YJCode}, requiredField{"section_title", req.SectionTitle}); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	code, err := h.validator.ValidateYJCode(req.YJCode)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.search(w, r, entities.PackageInsert, req.Options(),
		entities.FilterCondition{Field: "metadata.yj_code", Value: code, Match: entities.TextSearch},
		entities.FilterCondition{Field: "metadata.section_title", Value: req.SectionTitle, Match: entities.TextSearch},
	)
}

// PackageInsertCoreSections returns the four core sections of a package insert.
func (h *HTTPHandlerImpl) PackageInsertCoreSections(w http.ResponseWriter, r *http.Request) {
	var req coreSectionsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	if strings.TrimSpace(req.YJCode) == "" {
		h.respondWithServiceError(w, r, fmt.Errorf("%w: field yj_code is required", entities.ErrValidation))
		return
	}
	code, err := h.validator.ValidateYJCode(req.YJCode)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	payload, err := h.retriever.CoreSections(r.Context(), code)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, entities.CoreSectionsEnvelope{
		Success: true,
		Data:    entities.CoreSections{YJCode: code, Payload: payload},
	})
}

// GuidelineChapter searches one guideline by its first-level heading.
func (h *HTTPHandlerImpl) GuidelineChapter(w http.ResponseWriter, r *http.Request) {
	var req guidelineChapterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	if err := h.checkFields(requiredField{"guideline_name", req.GuidelineName}, requiredField{"heading1", req.Heading1}); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.search(w, r, entities.Guideline, req.Options(),
		entities.FilterCondition{Field: "metadata.gl_name", Value: req.GuidelineName, Match: entities.Exact},
		entities.FilterCondition{Field: "metadata.heading_1", Value: req.Heading1, Match: entities.TextSearch},
	)
}

// GuidelinePage returns every chunk of one guideline.
func (h *HTTPHandlerImpl) GuidelinePage(w http.ResponseWriter, r *http.Request) {
	var req guidelinePageRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	if err := h.checkFields(requiredField{"guideline_name", req.GuidelineName}); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.search(w, r, entities.Guideline, req.Options(),
		entities.FilterCondition{Field: "metadata.gl_name", Value: req.GuidelineName, Match: entities.Exact},
	)
}

func (h *HTTPHandlerImpl) search(w http.ResponseWriter, r *http.Request, variant entities.Variant, opts entities.FetchOptions, conditions ...entities.FilterCondition) {
	records, err := h.retriever.Search(r.Context(), variant, conditions, opts)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	logging.Debug("Search served", "variant", variant, "path", r.URL.Path, "count", len(records))
	h.RespondWithJSON(w, http.StatusOK, entities.NewEnvelope(records))
}
