// Package fuzzy ranks registered option names against a mistyped one.
// Used by carp's ErrorHandler for "did you mean" suggestions.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"
)

// Matcher finds option names within an edit-distance budget
type Matcher struct {
	maxDistance int
	minLength   int
}

// NewMatcher creates a new matcher with the given max edit distance
func NewMatcher(maxDistance int) *Matcher {
	return &Matcher{
		maxDistance: maxDistance,
		minLength:   2, // single-letter names have no useful neighbours
	}
}

// Match is a candidate name with its distance and score
type Match struct {
	Value    string
	Distance int
	Score    float64 // 0.0 to 1.0, higher is better
}

// FindBest returns the best candidate or "" when none is close enough
func (m *Matcher) FindBest(input string, candidates []string) string {
	matches := m.FindMatches(input, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Value
}

// FindMatches returns every candidate within the distance budget, best first
func (m *Matcher) FindMatches(input string, candidates []string) []Match {
	if len(input) < m.minLength {
		return nil
	}

	var matches []Match
	input = strings.ToLower(input)

	for _, candidate := range candidates {
		lower := strings.ToLower(candidate)
		if lower == input || len(lower) < m.minLength {
			continue
		}
		if abs(len(lower)-len(input)) > m.maxDistance {
			continue
		}

		distance := m.distance(input, lower)
		if distance > m.maxDistance {
			continue
		}
		matches = append(matches, Match{
			Value:    candidate,
			Distance: distance,
			Score:    m.score(input, lower, distance),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			if matches[i].Distance == matches[j].Distance {
				return matches[i].Value < matches[j].Value
			}
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// distance is the Levenshtein distance with unit costs
func (m *Matcher) distance(a, b string) int {
	return smetrics.WagnerFischer(a, b, 1, 1, 1)
}

// score weighs edit distance, shared prefix, length similarity and shared
// characters into a value in [0, 1]
func (m *Matcher) score(input, candidate string, distance int) float64 {
	maxLen := max(len(input), len(candidate))
	if maxLen == 0 {
		return 1.0
	}

	editScore := 1.0 - float64(distance)/float64(maxLen)

	prefixBonus := 0.0
	if p := commonPrefixLength(input, candidate); p > 0 {
		prefixBonus = float64(p) / float64(min(len(input), len(candidate))) * 0.3
	}

	lengthBonus := (1.0 - float64(abs(len(input)-len(candidate)))/float64(maxLen)) * 0.2
	charBonus := float64(countCommonChars(input, candidate)) / float64(maxLen) * 0.1

	return min(editScore+prefixBonus+lengthBonus+charBonus, 1.0)
}

func commonPrefixLength(a, b string) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func countCommonChars(a, b string) int {
	counts := make(map[rune]int, len(a))
	for _, r := range a {
		counts[r]++
	}

	common := 0
	for _, r := range b {
		if counts[r] > 0 {
			common++
			counts[r]--
		}
	}
	return common
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// FindBestOption finds the closest registered option name
func FindBestOption(input string, names []string, maxDistance int) string {
	return NewMatcher(maxDistance).FindBest(input, names)
}

// FindSuggestions returns up to maxSuggestions close option names
func FindSuggestions(input string, names []string, maxDistance, maxSuggestions int) []string {
	matches := NewMatcher(maxDistance).FindMatches(input, names)

	suggestions := make([]string, 0, min(len(matches), maxSuggestions))
	for _, match := range matches {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, match.Value)
	}
	return suggestions
}
