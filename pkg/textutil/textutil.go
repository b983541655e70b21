// Package textutil holds text normalization helpers for scraped content.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics, so "Március" and "marcius" compare equal.
// Hungarian double acute letters (ő, ű) fold to o and u.
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(result)
}

// CollapseSpace trims s and replaces every run of whitespace (including NBSP) with one space
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
