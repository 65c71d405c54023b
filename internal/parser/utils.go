package parser

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeHeader lower-cases, trims, collapses whitespace and strips diacritics
// so that "  Matrícula\n" and "matricula" compare equal.
func NormalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = whitespaceRe.ReplaceAllString(name, " ")
	return foldAccents(name)
}

// foldAccents removes combining marks after canonical decomposition.
// The transformer is stateful, so one is built per call.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ContainsAny reports whether text contains any of the keywords.
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// CollapseSpaces trims and squeezes runs of whitespace to a single space.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
