package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankNames(t *testing.T) {
	names := []string{"body", "title", "field_tags", "created"}

	ranked := RankNames("tags", names)
	require.Len(t, ranked, len(names))

	best := ranked.Best()
	require.NotNil(t, best)
	assert.Equal(t, "field_tags", best.Name)
	assert.InDelta(t, 1.0, best.Score, 1e-9)
	assert.Equal(t, "fieldtags", best.Normalized)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRankNames_Determinism(t *testing.T) {
	names := []string{"ab", "ba", "aa"}

	first := RankNames("xx", names)
	for range 10 {
		assert.Equal(t, first, RankNames("xx", names))
	}

	// Equal scores fall back to name order.
	assert.Equal(t, "aa", first[0].Name)
}

func TestSuggest(t *testing.T) {
	names := []string{"title", "body", "tags", "image", "summary"}

	tests := []struct {
		name     string
		target   string
		limit    int
		expected []string
	}{
		{"typo", "titl", 3, []string{"title"}},
		{"prefixed", "field_body", 3, []string{"body"}},
		{"plural", "tag", 3, []string{"tags"}},
		{"nothing close", "zzzzzz", 3, nil},
		{"unlimited", "images", -1, []string{"image"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Suggest(tt.target, names, tt.limit))
		})
	}
}

func TestCandidateList_Top(t *testing.T) {
	list := CandidateList{{Name: "a", Score: 0.9}, {Name: "b", Score: 0.8}, {Name: "c", Score: 0.7}}

	assert.Len(t, list.Top(2), 2)
	assert.Len(t, list.Top(10), 3)
	assert.Len(t, list.Top(-1), 3)
	assert.Empty(t, list.Top(0))
}

func TestCandidateList_AboveThreshold(t *testing.T) {
	list := CandidateList{{Name: "a", Score: 0.9}, {Name: "b", Score: 0.6}, {Name: "c", Score: 0.2}}

	above := list.AboveThreshold(DefaultMinScore)
	require.Len(t, above, 2)
	assert.Equal(t, "b", above[1].Name)
	assert.Nil(t, CandidateList{}.Best())
}
