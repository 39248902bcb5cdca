// Package i18n resolves the English/Tamil variants carried by every record.
//
// Every bilingual attribute is stored as a pair of values. The active language
// is never looked up from ambient state: callers hold a Resolver bound to one
// Language and pass it explicitly to whatever renders text.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// Language is a supported display language.
type Language string

const (
	English Language = "en"
	Tamil   Language = "ta"
)

// Default is used whenever no valid preference exists.
const Default = English

// Supported lists the display languages in the order the language switcher shows them.
var Supported = []Language{English, Tamil}

// Valid reports whether l is en or ta.
func (l Language) Valid() bool {
	return l == English || l == Tamil
}

// String implements fmt.Stringer.
func (l Language) String() string { return string(l) }

// Parse converts a raw value into a Language.
func Parse(raw string) (Language, error) {
	l := Language(raw)
	if !l.Valid() {
		return "", fmt.Errorf("unsupported language %q", raw)
	}
	return l, nil
}

// ParseOrDefault returns Default for absent or invalid values.
func ParseOrDefault(raw string) Language {
	if l, err := Parse(raw); err == nil {
		return l
	}
	return Default
}

var matcher = language.NewMatcher([]language.Tag{
	language.English, // 先頭がフォールバック
	language.Tamil,
})

// Negotiate picks a Language from an Accept-Language header value.
// Anything that does not match Tamil resolves to English.
func Negotiate(acceptLanguage string) Language {
	if acceptLanguage == "" {
		return Default
	}
	_, idx := language.MatchStrings(matcher, acceptLanguage)
	if idx == 1 {
		return Tamil
	}
	return English
}
