package render

import "regexp"

// Sanitizer scrubs rendered HTML before it is handed to the page shell.
type Sanitizer interface {
	Sanitize(html string) string
}

var (
	scriptPattern    = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>|<script\b[^>]*/?>`)
	eventAttrPattern = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	schemePattern    = regexp.MustCompile(`(?i)(href|src)\s*=\s*(['"]?)\s*javascript:[^'">\s]*`)
)

// StrictSanitizer strips script tags, inline event handlers, and javascript:
// URLs while preserving the remaining markup. Stored documents can carry
// user-authored HTML in text blocks, so stripping beats rejecting here.
type StrictSanitizer struct{}

// NewSanitizer returns the default sanitizer used by the renderer.
func NewSanitizer() *StrictSanitizer {
	return &StrictSanitizer{}
}

// Sanitize removes obvious script injection vectors.
func (s *StrictSanitizer) Sanitize(html string) string {
	cleaned := scriptPattern.ReplaceAllString(html, "")
	cleaned = eventAttrPattern.ReplaceAllString(cleaned, "")
	cleaned = schemePattern.ReplaceAllString(cleaned, `$1=$2#`)
	return cleaned
}
