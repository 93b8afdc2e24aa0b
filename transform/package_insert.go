package transform

import (
	"net/url"
	"path"
	"strings"

	"github.com/giygas/medref-api/entities"
)

// retiredInsertFields are no longer sourced but stay in the payload as nulls.
var retiredInsertFields = []string{
	"product_number",
	"sccj_no",
	"source_row_index",
	"therapeutic_category",
	"approval_number",
}

// PackageInsert transforms package insert records into the legacy payload shape.
type PackageInsert struct{}

// ReferenceCodes returns the YJ codes listed on the record.
func (PackageInsert) ReferenceCodes(rec entities.Record) []string {
	return splitCodes(text(metadataOf(rec)["yj_code"]))
}

func (p PackageInsert) Transform(rec entities.Record, urls entities.URLCache) entities.Payload {
	meta := metadataOf(rec)
	links := MergeURLs(p.ReferenceCodes(rec), urls)

	out := entities.Payload{
		"brand_name":        text(meta["product_name"]),
		"company_name":      text(meta["manufacturer"]),
		"generic_name":      text(meta["general_name"]),
		"yj_code":           text(meta["yj_code"]),
		"section_title":     text(meta["section_title"]),
		"section_number":    meta["section_number"],
		"context":           text(rec.Payload[pageContentKey]),
		"url":               links,
		"package_insert_no": nil,
	}
	for _, field := range retiredInsertFields {
		out[field] = nil
	}

	if len(links) > 0 {
		if no := PackageInsertNo(links[0]); no != "" {
			out["package_insert_no"] = no
		}
	}
	return out
}

// MergeURLs concatenates the URLs of each code in order and removes duplicates,
// keeping the first occurrence. The result is never nil.
func MergeURLs(codes []string, urls entities.URLCache) []string {
	merged := []string{}
	seen := make(map[string]struct{})
	for _, code := range codes {
		for _, u := range urls[code] {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			merged = append(merged, u)
		}
	}
	return merged
}

// PackageInsertNo extracts the insert number from a document URL: the part of the
// last path segment after its first underscore, without extension.
// ".../ResultDataSetPDF/780069_1149019F1560_1_08" yields "1149019F1560_1_08".
// It returns "" when the last segment has no underscore.
func PackageInsertNo(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}

	base := path.Base(p)
	_, rest, ok := strings.Cut(base, "_")
	if !ok {
		return ""
	}
	return strings.TrimSuffix(rest, path.Ext(rest))
}
