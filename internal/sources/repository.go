// Package sources decides which awesome-list repositories a run crawls.
package sources

import "github.com/allocsoc/awesome-crawler/internal/snapshot"

// Repository is one awesome-list to crawl. Name doubles as the list name in
// the published snapshot.
type Repository struct {
	Name        string
	Source      string
	Description string
}

// FromSnapshot lists the repositories behind every list of s, in order.
func FromSnapshot(s snapshot.Snapshot) []Repository {
	out := make([]Repository, 0, len(s.Lists))
	for _, l := range s.Lists {
		out = append(out, Repository{Name: l.Name, Source: l.Source, Description: l.Description})
	}
	return out
}

// Append adds extra to base, skipping names already present. The first
// occurrence of a name wins.
func Append(base []Repository, extra ...Repository) []Repository {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]Repository, 0, len(base)+len(extra))
	for _, group := range [][]Repository{base, extra} {
		for _, r := range group {
			if seen[r.Name] {
				continue
			}
			seen[r.Name] = true
			out = append(out, r)
		}
	}
	return out
}
