package sampledata

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify lowercases s, strips diacritics and replaces every character
// outside [a-z0-9] with replace.
func Slugify(s, replace string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder

	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteString(replace)
		}
	}

	return b.String()
}
