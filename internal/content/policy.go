package content

import (
	"fmt"
	"strings"
)

// MatchPolicy decides which object an existence check reuses when several
// objects match.
type MatchPolicy int

const (
	// MatchFirst reuses the oldest match and records an ambiguous_match warning.
	MatchFirst MatchPolicy = iota
	// MatchLatest reuses the most recently created match.
	MatchLatest
	// MatchUnique fails with AmbiguousMatchError.
	MatchUnique
)

var matchPolicyNames = map[MatchPolicy]string{
	MatchFirst:  "first",
	MatchLatest: "latest",
	MatchUnique: "unique",
}

func (p MatchPolicy) String() string {
	if name, ok := matchPolicyNames[p]; ok {
		return name
	}

	return fmt.Sprintf("MatchPolicy(%d)", int(p))
}

// ParseMatchPolicy parses "first", "latest" or "unique". Empty means first.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return MatchFirst, nil
	}

	for p, name := range matchPolicyNames {
		if name == s {
			return p, nil
		}
	}

	return MatchFirst, fmt.Errorf("unknown match policy %q (want first, latest or unique)", s)
}
