// Package snapshot holds the published state: named awesome-lists, each with
// its curated entries, plus the JSON form used for durable storage.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is one curated item. Its identity is Name within the owning list.
type Entry struct {
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	FirstSeen   Timestamp `json:"time"`
}

// List is one awesome-list. Its identity is Name across the snapshot.
type List struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Source      string  `json:"source"`
	Entries     []Entry `json:"items"`
}

// Snapshot is the unit of publication.
//
// A Snapshot is treated as immutable once built: operations that derive a new
// state (merge, clone) allocate fresh slices instead of writing through.
type Snapshot struct {
	Lists []List `json:"lists"`
}

// Find returns the list with the given name.
func (s Snapshot) Find(name string) (List, bool) {
	for _, l := range s.Lists {
		if l.Name == name {
			return l, true
		}
	}
	return List{}, false
}

// EntryCount returns the number of entries across all lists.
func (s Snapshot) EntryCount() int {
	n := 0
	for _, l := range s.Lists {
		n += len(l.Entries)
	}
	return n
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Lists: make([]List, len(s.Lists))}
	for i, l := range s.Lists {
		out.Lists[i] = l.Clone()
	}
	return out
}

// Clone returns a copy of l whose entry slice is not shared.
func (l List) Clone() List {
	entries := make([]Entry, len(l.Entries))
	copy(entries, l.Entries)
	l.Entries = entries
	return l
}

// Has reports whether the list already holds an entry with this name.
func (l List) Has(name string) bool {
	for _, e := range l.Entries {
		if e.Name == name {
			return true
		}
	}
	return false
}

// LastUpdate returns the most recent FirstSeen among the list's entries, or
// the zero Timestamp for an empty list.
func (l List) LastUpdate() Timestamp {
	var latest Timestamp
	for _, e := range l.Entries {
		if latest.Before(e.FirstSeen) {
			latest = e.FirstSeen
		}
	}
	return latest
}

// Serialize encodes s in the published JSON shape.
func Serialize(s Snapshot) ([]byte, error) {
	// Readers expect arrays, never null.
	out := Snapshot{Lists: make([]List, len(s.Lists))}
	for i, l := range s.Lists {
		if l.Entries == nil {
			l.Entries = []Entry{}
		}
		out.Lists[i] = l
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	return data, nil
}

// Deserialize decodes the published JSON shape. Unknown fields are ignored.
func Deserialize(data []byte) (Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Snapshot{}, fmt.Errorf("failed to deserialize snapshot: empty document")
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to deserialize snapshot: %w", err)
	}
	return s, nil
}

// Equal reports structural equality: same lists in the same order, same
// entries in the same order, same field values. Nil and empty collections are
// considered equal.
func Equal(a, b Snapshot) bool {
	if len(a.Lists) != len(b.Lists) {
		return false
	}
	for i := range a.Lists {
		if !ListEqual(a.Lists[i], b.Lists[i]) {
			return false
		}
	}
	return true
}

// ListEqual compares two lists field by field.
func ListEqual(a, b List) bool {
	if a.Name != b.Name || a.Source != b.Source || a.Description != b.Description {
		return false
	}
	if len(a.Entries) != len(b.Entries) {
		return false
	}
	for i := range a.Entries {
		if !a.Entries[i].Equal(b.Entries[i]) {
			return false
		}
	}
	return true
}

// Equal compares two entries field by field.
func (e Entry) Equal(other Entry) bool {
	return e.Name == other.Name &&
		e.Source == other.Source &&
		e.Description == other.Description &&
		e.FirstSeen.Equal(other.FirstSeen)
}
