package match

import (
	"cmp"
	"slices"
)

const (
	// DefaultMinScore is the lowest similarity a declared name needs to be
	// suggested.
	DefaultMinScore = 0.6
	// DefaultMaxSuggestions caps the suggestions reported per unknown name.
	DefaultMaxSuggestions = 3
)

// Candidate is a declared name scored against an unknown one.
type Candidate struct {
	Name       string
	Normalized string
	Score      float64
}

// CandidateList is ordered by descending score, ties broken by name.
type CandidateList []Candidate

// RankNames scores every declared name against target. A name scores the
// better of its plain and its prefix-stripped similarity, so "field_tags"
// is a perfect match for "tags".
func RankNames(target string, names []string) CandidateList {
	candidates := make(CandidateList, 0, len(names))

	for _, name := range names {
		candidates = append(candidates, Candidate{
			Name:       name,
			Normalized: NormalizeIdent(name),
			Score: max(
				NormalizedLevenshteinScore(target, name),
				NormalizedLevenshteinScoreWithPrefixStrip(target, name),
			),
		})
	}

	slices.SortFunc(candidates, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}

		return cmp.Compare(a.Name, b.Name)
	})

	return candidates
}

// Suggest returns up to limit declared names close to target. A negative
// limit returns every name above DefaultMinScore.
func Suggest(target string, names []string, limit int) []string {
	var out []string

	for _, c := range RankNames(target, names).AboveThreshold(DefaultMinScore).Top(limit) {
		out = append(out, c.Name)
	}

	return out
}

// Top returns the first n candidates, or all of them when n is negative.
func (c CandidateList) Top(n int) CandidateList {
	if n < 0 || n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the highest scoring candidate, or nil.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// AboveThreshold returns the candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}
