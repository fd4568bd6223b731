// Package htmlsanitize cleans free-text profile fields before they are
// stored. Peers render these fields in their own clients, so markup is
// removed rather than filtered.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	strict     *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// Text strips every tag from s, decodes entities and trims the result.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(policy().Sanitize(s)))
}

// IsPlainText reports whether s contains no tag-like sequence.
func IsPlainText(s string) bool {
	open := strings.Index(s, "<")
	return open < 0 || !strings.Contains(s[open:], ">")
}
