// Package textutil compares scraped product names against catalog keywords.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold strips diacritics, lowercases and removes all whitespace, so
// "Cebión Vitamina C" and "CEBION vitaminac" fold to the same string.
func Fold(text string) string {
	if text == "" {
		return ""
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}
	stripped = strings.ToLower(stripped)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, stripped)
}

// Matches reports whether the folded keyword is contained in the folded
// product name. Empty inputs never match.
func Matches(productName, keyword string) bool {
	if productName == "" || keyword == "" {
		return false
	}
	k := Fold(keyword)
	if k == "" {
		return false
	}
	return strings.Contains(Fold(productName), k)
}

// FirstToken returns the first whitespace-delimited token of text.
func FirstToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
