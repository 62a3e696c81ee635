package delta

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/allocsoc/awesome-crawler/internal/snapshot"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func items(n int) []snapshot.Entry {
	out := make([]snapshot.Entry, n)
	for i := range out {
		out[i] = snapshot.Entry{
			Name:      fmt.Sprintf("ITEM%d", i),
			Source:    fmt.Sprintf("http://item%d.com", i),
			FirstSeen: snapshot.At(base.Add(time.Duration(i) * time.Hour)),
		}
	}
	return out
}

func single(name string, entries []snapshot.Entry) snapshot.Snapshot {
	return snapshot.Snapshot{Lists: []snapshot.List{{Name: name, Entries: entries}}}
}

func names(l snapshot.List) []string {
	out := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		out[i] = e.Name
	}
	return out
}

func TestMergeScenarios(t *testing.T) {
	tests := []struct {
		name      string
		old       snapshot.Snapshot
		latest    snapshot.Snapshot
		wantLists []string
		wantItems map[string]int
		wantStats Stats
	}{
		{
			name:      "new item appended to existing list",
			old:       single("LIST1", items(3)),
			latest:    single("LIST1", items(4)),
			wantLists: []string{"LIST1"},
			wantItems: map[string]int{"LIST1": 4},
			wantStats: Stats{ListsMerged: 1, EntriesAdded: 1},
		},
		{
			name:      "empty old takes new wholesale",
			old:       snapshot.Snapshot{},
			latest:    single("LIST1", items(3)),
			wantLists: []string{"LIST1"},
			wantItems: map[string]int{"LIST1": 3},
			wantStats: Stats{ListsAdded: 1, EntriesAdded: 3},
		},
		{
			name:      "disjoint lists are both kept",
			old:       single("LIST1", items(3)),
			latest:    single("LIST2", items(1)),
			wantLists: []string{"LIST1", "LIST2"},
			wantItems: map[string]int{"LIST1": 3, "LIST2": 1},
			wantStats: Stats{ListsCarried: 1, ListsAdded: 1, EntriesAdded: 1},
		},
		{
			name:      "empty new keeps old",
			old:       single("LIST1", items(3)),
			latest:    snapshot.Snapshot{},
			wantLists: []string{"LIST1"},
			wantItems: map[string]int{"LIST1": 3},
			wantStats: Stats{ListsCarried: 1},
		},
		{
			name:      "both empty",
			wantLists: nil,
			wantItems: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stats := Merge(tt.old, tt.latest)

			if len(got.Lists) != len(tt.wantLists) {
				t.Fatalf("got %d lists, want %d", len(got.Lists), len(tt.wantLists))
			}
			for i, want := range tt.wantLists {
				if got.Lists[i].Name != want {
					t.Errorf("list %d = %q, want %q", i, got.Lists[i].Name, want)
				}
				if n := len(got.Lists[i].Entries); n != tt.wantItems[want] {
					t.Errorf("list %q has %d entries, want %d", want, n, tt.wantItems[want])
				}
			}
			if stats != tt.wantStats {
				t.Errorf("stats = %+v, want %+v", stats, tt.wantStats)
			}
		})
	}
}

func TestMergeScenarioA(t *testing.T) {
	old := single("LIST1", items(3))
	got, _ := Merge(old, single("LIST1", items(4)))

	l := got.Lists[0]
	for i := 0; i < 3; i++ {
		if !l.Entries[i].Equal(old.Lists[0].Entries[i]) {
			t.Errorf("entry %d changed: %+v", i, l.Entries[i])
		}
	}
	if l.Entries[3].Name != "ITEM3" {
		t.Errorf("appended entry = %q, want ITEM3", l.Entries[3].Name)
	}
}

func TestMergeScenarioBEqualsNew(t *testing.T) {
	latest := single("LIST1", items(3))
	got, _ := Merge(snapshot.Snapshot{}, latest)
	if !snapshot.Equal(got, latest) {
		t.Errorf("Merge(empty, new) = %+v, want new", got)
	}
}

func TestMergeIdempotent(t *testing.T) {
	s := snapshot.Snapshot{Lists: []snapshot.List{
		{Name: "LIST1", Source: "https://github.com/a/one", Entries: items(3)},
		{Name: "LIST2", Source: "https://github.com/a/two", Entries: items(2)},
	}}

	once, _ := Merge(s, s)
	if !snapshot.Equal(once, s) {
		t.Fatalf("Merge(S, S) != S")
	}

	twice, stats := Merge(once, s)
	if !snapshot.Equal(twice, once) {
		t.Errorf("second application changed the result")
	}
	if stats.EntriesAdded != 0 || stats.ListsAdded != 0 {
		t.Errorf("second application reported additions: %+v", stats)
	}
}

func TestMergeNeverRestampsExistingEntries(t *testing.T) {
	old := single("LIST1", items(2))

	restamped := items(2)
	for i := range restamped {
		restamped[i].FirstSeen = snapshot.At(base.Add(-365 * 24 * time.Hour))
		restamped[i].Description = "rewritten"
	}

	got, stats := Merge(old, single("LIST1", restamped))
	if !snapshot.Equal(got, old) {
		t.Errorf("existing entries were modified: %+v", got)
	}
	if stats.EntriesAdded != 0 {
		t.Errorf("EntriesAdded = %d, want 0", stats.EntriesAdded)
	}
}

func TestMergeAppendOnly(t *testing.T) {
	old := single("LIST1", items(5))

	// New extraction lost ITEM1 and ITEM3 and reordered the rest.
	latest := single("LIST1", []snapshot.Entry{
		{Name: "NEW1"}, {Name: "ITEM4"}, {Name: "ITEM0"}, {Name: "NEW2"}, {Name: "ITEM2"},
	})

	got, _ := Merge(old, latest)

	want := "ITEM0,ITEM1,ITEM2,ITEM3,ITEM4,NEW1,NEW2"
	if g := strings.Join(names(got.Lists[0]), ","); g != want {
		t.Errorf("entries = %s, want %s", g, want)
	}
}

func TestMergeNoDuplicates(t *testing.T) {
	old := single("LIST1", items(2))
	latest := snapshot.Snapshot{Lists: []snapshot.List{
		{Name: "LIST1", Entries: []snapshot.Entry{{Name: "X"}, {Name: "X"}, {Name: "ITEM0"}}},
		{Name: "LIST2", Entries: []snapshot.Entry{{Name: "Y", Source: "first"}, {Name: "Y", Source: "second"}}},
		{Name: "LIST2", Entries: []snapshot.Entry{{Name: "Z"}}},
	}}

	got, stats := Merge(old, latest)

	if len(got.Lists) != 2 {
		t.Fatalf("got %d lists, want 2", len(got.Lists))
	}
	for _, l := range got.Lists {
		seen := map[string]bool{}
		for _, e := range l.Entries {
			if seen[e.Name] {
				t.Errorf("list %q holds %q twice", l.Name, e.Name)
			}
			seen[e.Name] = true
		}
	}
	if src := got.Lists[1].Entries[0].Source; src != "first" {
		t.Errorf("duplicate kept %q, want the first occurrence", src)
	}
	if stats.EntriesAdded != 2 {
		t.Errorf("EntriesAdded = %d, want 2", stats.EntriesAdded)
	}
}

func TestMergeListPreservationAndOrder(t *testing.T) {
	old := snapshot.Snapshot{Lists: []snapshot.List{
		{Name: "C"}, {Name: "A"}, {Name: "B"},
	}}
	latest := snapshot.Snapshot{Lists: []snapshot.List{
		{Name: "Z"}, {Name: "A", Entries: items(1)}, {Name: "Y"},
	}}

	got, _ := Merge(old, latest)

	var order []string
	for _, l := range got.Lists {
		order = append(order, l.Name)
	}
	if g := strings.Join(order, ","); g != "C,A,B,Z,Y" {
		t.Errorf("list order = %s, want C,A,B,Z,Y", g)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	backing := items(3)
	backing[2].Name = "SPARE"
	old := single("LIST1", backing[:2:3])
	oldCopy := old.Clone()

	latest := single("LIST1", items(4))
	latestCopy := latest.Clone()

	got, _ := Merge(old, latest)
	got.Lists[0].Entries[0].Name = "mutated"

	if !snapshot.Equal(old, oldCopy) {
		t.Error("old snapshot was modified")
	}
	if !snapshot.Equal(latest, latestCopy) {
		t.Error("new snapshot was modified")
	}
	if backing[2].Name != "SPARE" {
		t.Errorf("spare capacity of old was overwritten with %q", backing[2].Name)
	}
}

func TestMergeSerialized(t *testing.T) {
	oldData, err := snapshot.Serialize(single("LIST1", items(3)))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	newData, err := snapshot.Serialize(single("LIST1", items(4)))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	got, stats, err := MergeSerialized(oldData, newData)
	if err != nil {
		t.Fatalf("MergeSerialized: %v", err)
	}
	if got.EntryCount() != 4 || stats.EntriesAdded != 1 {
		t.Errorf("got %d entries, %d added; want 4 and 1", got.EntryCount(), stats.EntriesAdded)
	}
}

func TestMergeSerializedRejectsBadInput(t *testing.T) {
	good := []byte(`{"lists":[]}`)
	tests := []struct {
		name     string
		old, new []byte
	}{
		{"old empty document", nil, good},
		{"old malformed", []byte(`{"lists":`), good},
		{"new malformed", good, []byte(`not json`)},
		{"bad timestamp", []byte(`{"lists":[{"name":"L","items":[{"name":"a","time":"yesterday"}]}]}`), good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := MergeSerialized(tt.old, tt.new); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
