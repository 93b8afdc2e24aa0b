package transform

import (
	"sort"
	"strconv"
	"strings"

	"github.com/giygas/medref-api/entities"
	"golang.org/x/text/unicode/norm"
)

// Normalised titles of the four core sections.
const (
	SectionIndications       = "効能又は効果"
	SectionDosage            = "用法及び用量"
	SectionContraindications = "禁忌"
	SectionAdverseReactions  = "副作用"
)

// chunkHeaderPrefixes start the metadata lines prepended to every chunk.
var chunkHeaderPrefixes = []string{"販売名:", "製造販売元:", "一般名:", "セクション名:"}

// CoreSections groups package insert chunks into the four core sections. Chunks
// are ordered by metadata.chunk_index, then id, and concatenated per section.
func CoreSections(records []entities.Record) entities.CoreSectionsPayload {
	ordered := make([]entities.Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		ci, cj := chunkIndex(ordered[i]), chunkIndex(ordered[j])
		if ci != cj {
			return ci < cj
		}
		return ordered[i].ID < ordered[j].ID
	})

	parts := make(map[string][]string, 4)
	for _, rec := range ordered {
		title := NormalizeSectionTitle(text(metadataOf(rec)["section_title"]))
		switch title {
		case SectionIndications, SectionDosage, SectionContraindications, SectionAdverseReactions:
		default:
			continue
		}
		if body := StripChunkHeader(text(rec.Payload[pageContentKey])); body != "" {
			parts[title] = append(parts[title], body)
		}
	}

	return entities.CoreSectionsPayload{
		Indications:             strings.Join(parts[SectionIndications], "\n\n"),
		DosageAndAdministration: strings.Join(parts[SectionDosage], "\n\n"),
		Contraindications:       strings.Join(parts[SectionContraindications], "\n\n"),
		AdverseReactions:        strings.Join(parts[SectionAdverseReactions], "\n\n"),
	}
}

// chunkIndex reads metadata.chunk_index; records without one sort last.
func chunkIndex(rec entities.Record) int64 {
	switch v := metadataOf(rec)["chunk_index"].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return int64(^uint64(0) >> 1)
}

// StripChunkHeader drops the leading blank and metadata lines of a chunk so the
// content starts at its heading.
func StripChunkHeader(content string) string {
	lines := strings.Split(content, "\n")
	start := 0
	for ; start < len(lines); start++ {
		line := strings.TrimSpace(norm.NFKC.String(lines[start]))
		if line == "" || hasHeaderPrefix(line) {
			continue
		}
		break
	}
	return strings.TrimSpace(strings.Join(lines[start:], "\n"))
}

func hasHeaderPrefix(line string) bool {
	for _, prefix := range chunkHeaderPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
