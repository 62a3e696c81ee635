// Package firstseen collapses history observations into one entry per name,
// stamped with the earliest time the name was seen.
package firstseen

import (
	"cmp"
	"slices"

	"github.com/allocsoc/awesome-crawler/internal/history"
	"github.com/allocsoc/awesome-crawler/internal/snapshot"
)

// Reduce groups observations by entry name. Each group yields one entry whose
// metadata comes from the most recent observation and whose FirstSeen is the
// oldest observation time. The result is sorted by name.
//
// Observations with equal name and time are ordered by source, then
// description, so the outcome never depends on input order.
func Reduce(obs []history.Observation) []snapshot.Entry {
	if len(obs) == 0 {
		return nil
	}

	sorted := slices.Clone(obs)
	slices.SortFunc(sorted, compare)

	var out []snapshot.Entry
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end].Entry.Name == sorted[start].Entry.Name {
			end++
		}

		earliest := sorted[start]
		latest := sorted[end-1]
		out = append(out, snapshot.Entry{
			Name:        latest.Entry.Name,
			Source:      latest.Entry.Source,
			Description: latest.Entry.Description,
			FirstSeen:   snapshot.At(earliest.Time),
		})
		start = end
	}
	return out
}

func compare(a, b history.Observation) int {
	return cmp.Or(
		cmp.Compare(a.Entry.Name, b.Entry.Name),
		a.Time.Compare(b.Time),
		cmp.Compare(a.Entry.Source, b.Entry.Source),
		cmp.Compare(a.Entry.Description, b.Entry.Description),
	)
}
