package core

import (
	"regexp"
	"strings"
)

var (
	fenceOpenRe  = regexp.MustCompile("(?i)```[a-z]*\n?")
	fenceCloseRe = regexp.MustCompile("```$")
)

// sanitizeCode strips Markdown code-fence delimiters and surrounding
// whitespace from generator output. Models are told to return bare HTML but
// routinely wrap it anyway. Applying this twice is a no-op.
func sanitizeCode(raw string) string {
	cleaned := fenceOpenRe.ReplaceAllString(raw, "")
	cleaned = fenceCloseRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
