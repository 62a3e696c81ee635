package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// SortOrder is how search results are ordered.
type SortOrder string

const (
	SortDate      SortOrder = "date"      // newest first, score breaks ties
	SortRelevance SortOrder = "relevance" // best score first, newest breaks ties
)

// ParseSortOrder accepts "date", "relevance" or "" (date).
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortDate:
		return SortDate, nil
	case SortRelevance:
		return SortRelevance, nil
	}
	return "", fmt.Errorf("sort must be relevance or date, got %q", s)
}

// Terms splits a query into lowercase search terms.
//
//	"Web  Server" -> ["web", "server"]
//	"go-kit"      -> ["go", "kit"]
func Terms(query string) []string {
	return words(query)
}

// words splits s on anything that is not a letter or digit and lowercases
// the pieces.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
