package match

import (
	"strings"
	"unicode"
)

// fieldPrefixes are storage prefixes content schemas commonly put in front of
// field machine names ("field_body", "fld-tags").
var fieldPrefixes = []string{"field", "fld"}

// NormalizeIdent lowercases the tokens of an identifier and joins them, so
// "fieldTags", "field_tags" and "Field-Tags" compare equal.
func NormalizeIdent(s string) string {
	return strings.Join(TokenizeIdent(s), "")
}

// NormalizeIdentWithPrefixStrip normalizes and drops a leading storage prefix
// token, so "field_title" and "title" normalize to the same value.
func NormalizeIdentWithPrefixStrip(s string) string {
	tokens := TokenizeIdent(s)
	if len(tokens) > 1 {
		for _, prefix := range fieldPrefixes {
			if tokens[0] == prefix {
				tokens = tokens[1:]
				break
			}
		}
	}

	return strings.Join(tokens, "")
}

// TokenizeIdent splits an identifier into normalized lowercase tokens.
func TokenizeIdent(s string) []string {
	tokens := tokenizeCamelCase(s)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return tokens
}

// tokenizeCamelCase splits on separators and case changes:
// "field_tags" is [field tags], "HTMLBody" is [HTML Body].
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

// isSeparator reports whether r separates machine name tokens.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// shouldStartNewToken reports whether runes[i] begins a token.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prevRune := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prevRune)

	// "bodyHTML": split before 'H'
	if isUpper && !isPrevUpper && !isSeparator(prevRune) {
		return true
	}

	// "HTMLBody": split before 'B'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

	return isUpper && isPrevUpper && hasNextLower
}
