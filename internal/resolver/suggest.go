package resolver

import (
	"sort"
	"strings"
)

// MaxSuggestions bounds the "did you mean" list.
const MaxSuggestions = 3

// Suggest ranks candidates by edit distance to input, ignoring case. Ties go
// to candidates that start with input, then alphabetical order. Candidates
// further than max(2, len(input)/2) edits away are dropped unless input is
// a prefix of them.
func Suggest(input string, candidates []string) []string {
	type scoredCandidate struct {
		name   string
		dist   int
		prefix bool
	}

	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return nil
	}
	limit := max(2, len(in)/2)

	seen := make(map[string]bool, len(candidates))
	var scored []scoredCandidate
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if c == "" || seen[lc] {
			continue
		}
		seen[lc] = true

		d := levenshteinDistance(in, lc)
		prefix := strings.HasPrefix(lc, in)
		if d > limit && !prefix {
			continue
		}
		scored = append(scored, scoredCandidate{name: c, dist: d, prefix: prefix})
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		if a.prefix != b.prefix {
			return a.prefix
		}
		return strings.ToLower(a.name) < strings.ToLower(b.name)
	})

	out := make([]string, 0, min(len(scored), MaxSuggestions))
	for _, s := range scored {
		if len(out) == MaxSuggestions {
			break
		}
		out = append(out, s.name)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// levenshteinDistance counts single-byte insertions, deletions and
// substitutions between s1 and s2.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
