// Package casing derives every casing of a declaration name, with
// identifiers escaped for the target generator language.
package casing

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/apigraph/internal/ir"
)

// Language is a generator target. The empty language escapes nothing.
type Language string

const (
	LanguageNone       Language = ""
	LanguageGo         Language = "go"
	LanguageJava       Language = "java"
	LanguagePython     Language = "python"
	LanguageTypeScript Language = "typescript"
)

// Languages lists every supported language.
var Languages = []Language{LanguageGo, LanguageJava, LanguagePython, LanguageTypeScript}

// Generator produces ir.Name values. It is safe for concurrent use.
type Generator struct {
	language Language
	reserved map[string]struct{}
}

// New returns a generator for lang.
func New(lang Language) *Generator {
	return &Generator{language: lang, reserved: reservedWords[lang]}
}

// Language returns the generator's target language.
func (g *Generator) Language() Language {
	return g.language
}

// GenerateName returns every casing of name.
func (g *Generator) GenerateName(name string) ir.Name {
	// cases.Caser is stateful; one per call.
	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)

	words := Words(name)
	var camel, pascal strings.Builder
	snake := make([]string, len(words))
	for i, w := range words {
		l := lower.String(w)
		t := title.String(w)
		if i == 0 {
			camel.WriteString(l)
		} else {
			camel.WriteString(t)
		}
		pascal.WriteString(t)
		snake[i] = l
	}
	snakeCase := strings.Join(snake, "_")

	return ir.Name{
		OriginalName:       name,
		CamelCase:          g.pair(camel.String()),
		PascalCase:         g.pair(pascal.String()),
		SnakeCase:          g.pair(snakeCase),
		ScreamingSnakeCase: g.pair(strings.ToUpper(snakeCase)),
	}
}

// GenerateNameAndWireValue pairs a wire value with the casings of name.
func (g *Generator) GenerateNameAndWireValue(name, wireValue string) ir.NameAndWireValue {
	return ir.NameAndWireValue{WireValue: wireValue, Name: g.GenerateName(name)}
}

func (g *Generator) pair(unsafe string) ir.SafeAndUnsafeString {
	return ir.SafeAndUnsafeString{UnsafeName: unsafe, SafeName: g.safe(unsafe)}
}

func (g *Generator) safe(name string) string {
	if name == "" {
		return name
	}
	for _, r := range name {
		if unicode.IsDigit(r) {
			name = "_" + name
		}
		break
	}
	if _, ok := g.reserved[name]; ok {
		return name + "_"
	}
	return name
}

// Words splits name into words at separators, lower-to-upper transitions,
// the end of an acronym ("HTTPServer" -> HTTP, Server) and before an
// upper-case letter that follows a digit. Digits stay with the word before
// them.
func Words(name string) []string {
	runes := []rune(name)
	var words []string
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsLower(prev) && unicode.IsUpper(r):
			flush(i)
			start = i
		case unicode.IsUpper(prev) && unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			flush(i)
			start = i
		case unicode.IsDigit(prev) && unicode.IsUpper(r):
			flush(i)
			start = i
		}
	}
	flush(len(runes))
	return words
}
