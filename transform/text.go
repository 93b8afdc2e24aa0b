package transform

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeSectionTitle folds a section title to a comparable form: NFKC, leading
// numbering and enclosing brackets removed, trailing parenthetical dropped.
// "４．効能又は効果" and "【効能又は効果】" both yield "効能又は効果".
func NormalizeSectionTitle(title string) string {
	t := norm.NFKC.String(title)
	t = strings.TrimLeftFunc(t, func(r rune) bool {
		return unicode.IsDigit(r) || unicode.IsSpace(r) || r == '.'
	})
	t = strings.Trim(t, "【】[] \t")
	if head, _, found := strings.Cut(t, "("); found {
		t = head
	}
	return strings.TrimSpace(t)
}

// splitCodes splits a reference-code field on commas after NFKC folding, so
// full-width commas separate codes too.
func splitCodes(field string) []string {
	var codes []string
	for _, part := range strings.Split(norm.NFKC.String(field), ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
