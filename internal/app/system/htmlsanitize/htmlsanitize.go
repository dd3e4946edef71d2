// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips HTML from free-text input before it is
// persisted. Names, descriptions, and responsibility lists all pass
// through here so stored documents never carry markup.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Clean strips all HTML tags and trims surrounding whitespace.
func Clean(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// CleanAll applies Clean to every element of a slice, dropping entries
// that end up empty.
func CleanAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if c := Clean(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}
