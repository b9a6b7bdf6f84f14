package analyzer

import (
	"regexp"
	"strings"
)

var (
	openingFence = regexp.MustCompile("^```[A-Za-z0-9_+-]*\\s*")
	closingFence = regexp.MustCompile("\\s*```$")
)

// StripCodeFence removes one leading markdown fence (with an optional language tag)
// and one trailing fence from a model reply. Anything else is left as is.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = openingFence.ReplaceAllString(text, "")
	text = closingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
