package domain

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier word is better)
	ScorePositionBonus = 10.0

	// Fuzzy matching only kicks in for terms this long and this similar
	fuzzyMinLength     = 4
	fuzzyMinSimilarity = 0.75
)

// fields are searched with decreasing weight, name first and URL last.
var fields = []struct {
	weight float64
	text   func(Item) string
}{
	{1.0, func(it Item) string { return it.Name }},
	{0.75, func(it Item) string { return it.Description }},
	{0.5, func(it Item) string { return it.ListName }},
	{0.25, func(it Item) string { return it.Source }},
}

// Match is an item with its search score.
type Match struct {
	Item  Item
	Score float64
}

// ScoreItem sums, over the terms, the best weighted field score. Every term
// has to match somewhere, otherwise the item scores 0.
func ScoreItem(terms []string, it Item) float64 {
	if len(terms) == 0 {
		return 0
	}

	var total float64
	for _, term := range terms {
		best := 0.0
		for _, f := range fields {
			best = max(best, f.weight*scoreText(term, f.text(it)))
		}
		if best == 0 {
			return 0
		}
		total += best
	}
	return total
}

// Search returns the items matching query, ordered by order.
func Search(items []Item, query string, order SortOrder) []Match {
	terms := Terms(query)
	if len(terms) == 0 {
		return nil
	}

	var matches []Match
	for _, it := range items {
		if s := ScoreItem(terms, it); s > 0 {
			matches = append(matches, Match{Item: it, Score: s})
		}
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		byScore := cmp.Compare(b.Score, a.Score)
		byTime := b.Item.Time.Compare(a.Item.Time)
		if order == SortRelevance {
			return cmp.Or(byScore, byTime, cmp.Compare(a.Item.Name, b.Item.Name))
		}
		return cmp.Or(byTime, byScore, cmp.Compare(a.Item.Name, b.Item.Name))
	})
	return matches
}

// scoreText scores a term against the best word of text.
func scoreText(term, text string) float64 {
	best := 0.0
	for i, w := range words(text) {
		best = max(best, scoreFragment(term, w, i))
	}
	return best
}

// scoreFragment scores a single query term against a single word
func scoreFragment(term, word string, position int) float64 {
	if term == "" || word == "" {
		return 0.0
	}

	// Exact match
	if term == word {
		return ScoreExactMatch + calculatePositionBonus(position)
	}

	// Prefix match
	if strings.HasPrefix(word, term) {
		return ScorePrefixMatch + calculatePositionBonus(position)
	}

	// Substring match
	if index := strings.Index(word, term); index >= 0 {
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(word)))
		return ScoreSubstringMatch + substringBonus
	}

	// Fuzzy match (typos)
	if utf8.RuneCountInString(term) >= fuzzyMinLength {
		if similarity := calculateSimilarity(term, word); similarity >= fuzzyMinSimilarity {
			return ScoreFuzzyMatch * similarity
		}
	}

	return 0.0
}

// calculatePositionBonus gives bonus for earlier positions
func calculatePositionBonus(position int) float64 {
	return ScorePositionBonus * math.Exp(-float64(position)*0.3)
}

// calculateSimilarity is 1 - levenshtein(s1, s2) / max(len(s1), len(s2)),
// counted in runes.
func calculateSimilarity(s1, s2 string) float64 {
	a, b := []rune(s1), []rune(s2)
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(longest)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
