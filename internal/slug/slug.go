// Package slug derives URL-safe article identifiers from English titles.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// MaxBaseLength bounds the title-derived part of a slug.
const MaxBaseLength = 100

// fallbackBase is used when nothing of the title survives normalization,
// for example a title written only in Tamil script.
const fallbackBase = "article"

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Base normalizes a title: lowercase, drop characters outside [a-z0-9 whitespace -],
// turn whitespace runs into single hyphens and truncate to MaxBaseLength bytes.
// Any Unicode space counts as whitespace, so a no-break space separates words.
// Leading and trailing whitespace is trimmed rather than turned into hyphens.
func Base(title string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\uFEFF' {
			return ' '
		}
		return r
	}, title)
	s = strings.ToLower(strings.TrimSpace(s))
	s = disallowed.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "-")
	if len(s) > MaxBaseLength {
		s = s[:MaxBaseLength]
	}
	return s
}

// Generator appends a millisecond creation timestamp to the normalized title.
// Uniqueness relies on that suffix alone; the store is not consulted.
type Generator struct {
	now func() time.Time
}

// NewGenerator returns a Generator. A nil clock means time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Generate returns "<base>-<unix millis>".
func (g *Generator) Generate(titleEN string) string {
	return Make(titleEN, g.now())
}

// Make is the deterministic core of Generate.
func Make(titleEN string, at time.Time) string {
	base := Base(titleEN)
	if base == "" {
		base = fallbackBase
	}
	return base + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}
