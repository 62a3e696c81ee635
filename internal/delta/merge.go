// Package delta merges a freshly crawled snapshot into the published one.
//
// The merge is append-only: lists are never dropped, existing entries are
// never removed, reordered or restamped, and an entry name appears at most
// once per list.
package delta

import (
	"fmt"

	"github.com/allocsoc/awesome-crawler/internal/snapshot"
)

// Stats counts what a merge did.
type Stats struct {
	ListsCarried int // old lists with no counterpart in the new snapshot
	ListsMerged  int // old lists matched by name in the new snapshot
	ListsAdded   int // lists only present in the new snapshot
	EntriesAdded int // entries appended to merged lists plus entries of added lists
}

// Merge returns old with latest folded in. Neither input is modified.
//
// Old lists keep their order and come first. A matched list gets the new
// list's unseen entries appended in the new list's order. Lists only present
// in latest follow, in latest's order.
func Merge(old, latest snapshot.Snapshot) (snapshot.Snapshot, Stats) {
	var stats Stats

	incoming := make(map[string]snapshot.List, len(latest.Lists))
	for _, l := range latest.Lists {
		if _, dup := incoming[l.Name]; !dup {
			incoming[l.Name] = l
		}
	}

	out := snapshot.Snapshot{Lists: make([]snapshot.List, 0, len(old.Lists)+len(latest.Lists))}
	placed := make(map[string]bool, len(old.Lists)+len(latest.Lists))

	for _, ol := range old.Lists {
		merged := ol.Clone()
		placed[ol.Name] = true

		nl, ok := incoming[ol.Name]
		if !ok {
			stats.ListsCarried++
			out.Lists = append(out.Lists, merged)
			continue
		}

		stats.ListsMerged++
		seen := make(map[string]bool, len(merged.Entries)+len(nl.Entries))
		for _, e := range merged.Entries {
			seen[e.Name] = true
		}
		for _, e := range nl.Entries {
			if seen[e.Name] {
				continue
			}
			seen[e.Name] = true
			merged.Entries = append(merged.Entries, e)
			stats.EntriesAdded++
		}
		out.Lists = append(out.Lists, merged)
	}

	for _, nl := range latest.Lists {
		if placed[nl.Name] {
			continue
		}
		placed[nl.Name] = true

		added := dedupe(nl)
		stats.ListsAdded++
		stats.EntriesAdded += len(added.Entries)
		out.Lists = append(out.Lists, added)
	}

	return out, stats
}

// MergeSerialized decodes both documents and merges them. A document that
// does not decode is an error; it is never treated as empty.
func MergeSerialized(oldData, newData []byte) (snapshot.Snapshot, Stats, error) {
	old, err := snapshot.Deserialize(oldData)
	if err != nil {
		return snapshot.Snapshot{}, Stats{}, fmt.Errorf("old snapshot: %w", err)
	}
	latest, err := snapshot.Deserialize(newData)
	if err != nil {
		return snapshot.Snapshot{}, Stats{}, fmt.Errorf("new snapshot: %w", err)
	}
	merged, stats := Merge(old, latest)
	return merged, stats, nil
}

// dedupe copies l keeping the first entry of every name.
func dedupe(l snapshot.List) snapshot.List {
	out := l
	out.Entries = make([]snapshot.Entry, 0, len(l.Entries))
	seen := make(map[string]bool, len(l.Entries))
	for _, e := range l.Entries {
		if seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		out.Entries = append(out.Entries, e)
	}
	return out
}
