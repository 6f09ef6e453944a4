// Package textnorm folds user-typed labels so that spreadsheet headers,
// reference names and brand names compare equal regardless of case,
// accents and punctuation.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Ligatures are not decomposed by NFD, so they are expanded first.
var ligatures = strings.NewReplacer(
	"œ", "oe", "Œ", "OE",
	"æ", "ae", "Æ", "AE",
	"ß", "ss",
)

// StripDiacritics removes combining marks after canonical decomposition:
// "Région" becomes "Region".
func StripDiacritics(s string) string {
	s = ligatures.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lower-cases s, strips diacritics, turns every run of characters that
// are not letters or digits into a single space and trims the result.
// "  RÉGION ", "Région" and "region" all fold to "region".
func Fold(s string) string {
	s = strings.ToLower(StripDiacritics(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Slugify derives the URL identifier used by the public site: lower case
// ASCII letters and digits separated by single hyphens, with no leading or
// trailing hyphen. "Saint James" becomes "saint-james" and
// "Côtes-d'Armor" becomes "cotes-d-armor".
func Slugify(s string) string {
	s = strings.ToLower(StripDiacritics(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
