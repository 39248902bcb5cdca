package i18n

import (
	"reflect"
)

// Text returns ta when lang is Tamil and en otherwise.
// It never fails; empty variants are returned as they are.
func Text(lang Language, en, ta string) string {
	if lang == Tamil {
		return ta
	}
	return en
}

// Bilingual is implemented by records with a primary English/Tamil attribute,
// for example a party name.
type Bilingual interface {
	English() string
	Tamil() string
}

// Pair is a literal bilingual string.
type Pair struct {
	EN string
	TA string
}

// English implements Bilingual.
func (p Pair) English() string { return p.EN }

// Tamil implements Bilingual.
func (p Pair) Tamil() string { return p.TA }

// Resolver resolves bilingual values for one fixed language.
// The zero value resolves to English.
type Resolver struct {
	lang Language
}

// NewResolver binds a Resolver to lang. Invalid languages resolve as English.
func NewResolver(lang Language) Resolver {
	if !lang.Valid() {
		lang = Default
	}
	return Resolver{lang: lang}
}

// Language returns the bound language.
func (r Resolver) Language() Language {
	if r.lang == "" {
		return Default
	}
	return r.lang
}

// Text resolves a literal pair.
func (r Resolver) Text(en, ta string) string {
	return Text(r.Language(), en, ta)
}

// Pick resolves a Bilingual record. A nil record resolves to "".
func (r Resolver) Pick(b Bilingual) string {
	if b == nil || isNilPointer(b) {
		return ""
	}
	return r.Text(b.English(), b.Tamil())
}

// Field resolves the attribute named base on any struct following the
// <base>EN / <base>TA naming convention, for example Field(article, "Title")
// reads TitleEN or TitleTA. String and *string fields are supported; missing
// fields and nil pointers resolve to "".
func (r Resolver) Field(record any, base string) string {
	v := reflect.ValueOf(record)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return ""
	}

	suffix := "EN"
	if r.Language() == Tamil {
		suffix = "TA"
	}
	return stringValue(v.FieldByName(base + suffix))
}

func stringValue(f reflect.Value) string {
	if !f.IsValid() {
		return ""
	}
	if f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return ""
		}
		f = f.Elem()
	}
	if f.Kind() != reflect.String {
		return ""
	}
	return f.String()
}

func isNilPointer(b Bilingual) bool {
	v := reflect.ValueOf(b)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
