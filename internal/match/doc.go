// Package match suggests declared field names for misspelled ones. Names
// are tokenized and case-folded, storage prefixes such as "field_" are
// ignored, and candidates are ranked by normalized Levenshtein similarity.
package match
