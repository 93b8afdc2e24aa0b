// Package validation checks user supplied request values before they reach the
// document store.
package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/medref-api/entities"
	"github.com/giygas/medref-api/interfaces"
	"golang.org/x/text/unicode/norm"
)

const (
	MaxInputLength  = 200
	MaxPointIDs     = 1000
	minYJCodeLength = 4
	maxYJCodeLength = 12
	maxRepeatedRune = 20
)

// dangerousPatterns are rejected anywhere in a filter value, case-insensitively.
var dangerousPatterns = []string{
	"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
	"onclick=", "onmouseover=", "onfocus=", "eval(", "expression(", "@import",
	// SQL injection patterns
	"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
	// Command injection patterns
	"`", "$(", "${",
	// Path traversal patterns
	"../", "..\\", "%2e%2e", "file://",
	// NoSQL injection patterns
	"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:",
}

// InputValidator implements interfaces.InputValidator
type InputValidator struct{}

// NewInputValidator creates a new input validator
func NewInputValidator() interfaces.InputValidator {
	return &InputValidator{}
}

// ValidateInput checks a free-text filter value such as a disease name or a
// section title. Japanese text is expected, so there is no character allowlist.
func (v *InputValidator) ValidateInput(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fmt.Errorf("%w: input cannot be empty", entities.ErrValidation)
	}

	if !utf8.ValidString(trimmed) {
		return fmt.Errorf("%w: input is not valid UTF-8", entities.ErrValidation)
	}

	if n := utf8.RuneCountInString(trimmed); n > MaxInputLength {
		return fmt.Errorf("%w: input too long: maximum %d characters, got %d", entities.ErrValidation, MaxInputLength, n)
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: input contains control characters", entities.ErrValidation)
		}
	}

	lower := strings.ToLower(norm.NFKC.String(trimmed))
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("%w: input contains potentially dangerous content", entities.ErrValidation)
		}
	}

	if hasExcessiveRepetition(trimmed) {
		return fmt.Errorf("%w: input contains excessive character repetition", entities.ErrValidation)
	}

	return nil
}

// ValidateYJCode folds a YJ code to NFKC upper case and checks it is 4 to 12
// ASCII letters or digits. Full-width input such as "１１４９０１９Ｆ１" is accepted.
func (v *InputValidator) ValidateYJCode(input string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(norm.NFKC.String(input)))
	if code == "" {
		return "", fmt.Errorf("%w: yj_code cannot be empty", entities.ErrValidation)
	}

	if len(code) < minYJCodeLength || len(code) > maxYJCodeLength {
		return "", fmt.Errorf("%w: yj_code should have %d to %d characters", entities.ErrValidation, minYJCodeLength, maxYJCodeLength)
	}

	for _, r := range code {
		if (r < '0' || r > '9') && (r < 'A' || r > 'Z') {
			return "", fmt.Errorf("%w: yj_code contains invalid characters. Only letters and digits are allowed", entities.ErrValidation)
		}
	}

	return code, nil
}

// ValidatePointIDs checks a batch of point ids. An empty or oversized batch and
// negative ids are invalid arguments.
func (v *InputValidator) ValidatePointIDs(ids []int64) ([]uint64, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: point ids cannot be empty", entities.ErrInvalidArgument)
	}
	if len(ids) > MaxPointIDs {
		return nil, fmt.Errorf("%w: too many point ids: maximum %d, got %d", entities.ErrInvalidArgument, MaxPointIDs, len(ids))
	}

	out := make([]uint64, len(ids))
	for i, id := range ids {
		if id < 0 {
			return nil, fmt.Errorf("%w: point id %d is negative", entities.ErrInvalidArgument, id)
		}
		out[i] = uint64(id)
	}
	return out, nil
}

// hasExcessiveRepetition reports a rune repeated more than maxRepeatedRune times in a row
func hasExcessiveRepetition(input string) bool {
	var prev rune = -1
	run := 0
	for _, r := range input {
		if r == prev {
			run++
			if run > maxRepeatedRune {
				return true
			}
			continue
		}
		prev, run = r, 1
	}
	return false
}
