package scraper

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()

	// blockEnd marks the tags after which a paragraph ends.
	blockEnd = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|h[1-6]|blockquote|tr)>`)
	spaces   = regexp.MustCompile(`[ \t\x{00A0}]+`)
)

// PlainText strips every tag from a feed fragment. Block boundaries become
// newlines, entities are decoded and blank lines are dropped.
func PlainText(fragment string) string {
	if fragment == "" {
		return ""
	}
	s := blockEnd.ReplaceAllString(fragment, "\n")
	s = html.UnescapeString(strict.Sanitize(s))

	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(spaces.ReplaceAllString(l, " "))
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
