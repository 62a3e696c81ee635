package sources

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/allocsoc/awesome-crawler/internal/extract"
	"github.com/allocsoc/awesome-crawler/internal/history"
	"github.com/allocsoc/awesome-crawler/internal/logger"
	"github.com/allocsoc/awesome-crawler/internal/snapshot"
)

func names(repos []Repository) []string {
	out := make([]string, len(repos))
	for i, r := range repos {
		out[i] = r.Name
	}
	return out
}

func equalNames(t *testing.T, got []Repository, want ...string) {
	t.Helper()
	g := names(got)
	if len(g) != len(want) {
		t.Fatalf("names = %v, want %v", g, want)
	}
	for i := range g {
		if g[i] != want[i] {
			t.Fatalf("names = %v, want %v", g, want)
		}
	}
}

func TestAppendDeduplicates(t *testing.T) {
	base := []Repository{{Name: "a", Source: "first"}, {Name: "b"}}
	got := Append(base, Repository{Name: "a", Source: "second"}, Repository{Name: "c"}, Repository{Name: "c"})

	equalNames(t, got, "a", "b", "c")
	if got[0].Source != "first" {
		t.Errorf("a.Source = %q, want the first occurrence", got[0].Source)
	}
}

func TestFromSnapshot(t *testing.T) {
	s := snapshot.Snapshot{Lists: []snapshot.List{
		{Name: "awesome-go", Source: "https://github.com/avelino/awesome-go", Description: "Go"},
		{Name: "awesome-rust", Source: "https://github.com/rust-unofficial/awesome-rust"},
	}}
	got := FromSnapshot(s)
	equalNames(t, got, "awesome-go", "awesome-rust")
	if got[0].Description != "Go" || got[0].Source != "https://github.com/avelino/awesome-go" {
		t.Errorf("got[0] = %+v", got[0])
	}
}

func TestSeedLoaderLoad(t *testing.T) {
	t.Setenv("SEED_HOST", "github.com")
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `---
- group: Languages
  repositories:
    - url: https://github.com/avelino/awesome-go
      name: awesome-go
      description: Go frameworks
    - url: https://${SEED_HOST}/rust-unofficial/awesome-rust/
- group: Broken
  repositories:
    - url: not a url
    - url: ftp://example.com/awesome-ftp
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	got, err := NewSeedLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	equalNames(t, got, "awesome-go", "awesome-rust")
	if got[1].Source != "https://github.com/rust-unofficial/awesome-rust/" {
		t.Errorf("expanded source = %q", got[1].Source)
	}
}

func TestSeedLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content *string
	}{
		{"missing file", nil},
		{"invalid yaml", ptr("- group: [unclosed")},
		{"no usable repositories", ptr("- group: x\n  repositories:\n    - url: nope\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if tt.content != nil {
				if err := os.WriteFile(path, []byte(*tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := NewSeedLoader(path).Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func ptr(s string) *string { return &s }

type fakeWalker struct {
	obs   []history.Observation
	err   error
	url   string
	limit int
}

func (f *fakeWalker) Walk(_ context.Context, url string, limit int) iter.Seq2[history.Observation, error] {
	f.url, f.limit = url, limit
	return func(yield func(history.Observation, error) bool) {
		for _, o := range f.obs {
			if !yield(o, nil) {
				return
			}
		}
		if f.err != nil {
			yield(history.Observation{}, f.err)
		}
	}
}

func indexObs(names ...string) []history.Observation {
	out := make([]history.Observation, len(names))
	for i, n := range names {
		out[i] = history.Observation{
			Entry: extract.Candidate{Name: n, Source: "https://github.com/x/" + n + "#readme"},
			Time:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	return out
}

func TestDiscover(t *testing.T) {
	w := &fakeWalker{obs: indexObs("zsh", "go", "rust", "go")}
	got, err := NewDiscoverer(w, "", 2).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if w.url != DefaultIndexURL || w.limit != 1 {
		t.Errorf("walked %q with limit %d, want %q with limit 1", w.url, w.limit, DefaultIndexURL)
	}
	equalNames(t, got, "go", "rust")
}

func TestDiscoverUncapped(t *testing.T) {
	w := &fakeWalker{obs: indexObs("a", "b", "c")}
	got, err := NewDiscoverer(w, "https://example.com/index", 0).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	equalNames(t, got, "a", "b", "c")
}

func TestDiscoverError(t *testing.T) {
	boom := errors.New("clone failed")
	w := &fakeWalker{obs: indexObs("a"), err: boom}
	if _, err := NewDiscoverer(w, "", 0).Discover(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Discover() error = %v, want %v", err, boom)
	}
}

type fakeDiscoverer struct {
	repos []Repository
	err   error
	calls int
}

func (f *fakeDiscoverer) Discover(context.Context) ([]Repository, error) {
	f.calls++
	return f.repos, f.err
}

type fakeLoader struct {
	snap snapshot.Snapshot
	err  error
}

func (f fakeLoader) Load(context.Context) (snapshot.Snapshot, error) { return f.snap, f.err }

func TestSelect(t *testing.T) {
	monday := time.Date(2025, 6, 16, 8, 0, 0, 0, time.UTC)
	tuesday := monday.Add(24 * time.Hour)
	published := snapshot.Snapshot{Lists: []snapshot.List{{Name: "published"}}}
	discovered := []Repository{{Name: "discovered"}}

	tests := []struct {
		name      string
		now       time.Time
		force     bool
		loader    fakeLoader
		discErr   error
		wantMode  Mode
		wantNames []string
		wantErr   bool
	}{
		{"discovery day", monday, false, fakeLoader{snap: published}, nil, ModeDiscovery, []string{"discovered"}, false},
		{"forced", tuesday, true, fakeLoader{snap: published}, nil, ModeDiscovery, []string{"discovered"}, false},
		{"reuse", tuesday, false, fakeLoader{snap: published}, nil, ModeReuse, []string{"published"}, false},
		{"reuse fails", tuesday, false, fakeLoader{err: errors.New("s3 down")}, nil, ModeFallback, []string{"discovered"}, false},
		{"reuse empty", tuesday, false, fakeLoader{}, nil, ModeFallback, []string{"discovered"}, false},
		{"discovery fails", monday, false, fakeLoader{}, errors.New("clone"), ModeDiscovery, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDiscoverer{repos: discovered, err: tt.discErr}
			s := NewSelector(d, tt.loader, nil, time.Monday, logger.NewNop())
			s.now = func() time.Time { return tt.now }

			got, mode, err := s.Select(context.Background(), tt.force)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Select() error = %v, wantErr %v", err, tt.wantErr)
			}
			if mode != tt.wantMode {
				t.Errorf("mode = %q, want %q", mode, tt.wantMode)
			}
			if !tt.wantErr {
				equalNames(t, got, tt.wantNames...)
			}
		})
	}
}

func TestSelectAppendsSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := "- group: extra\n  repositories:\n    - url: https://github.com/x/published\n    - url: https://github.com/x/seeded\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := fakeLoader{snap: snapshot.Snapshot{Lists: []snapshot.List{{Name: "published", Source: "orig"}}}}
	s := NewSelector(&fakeDiscoverer{}, loader, NewSeedLoader(path), time.Monday, logger.NewNop())
	s.now = func() time.Time { return time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC) }

	got, _, err := s.Select(context.Background(), false)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	equalNames(t, got, "published", "seeded")
	if got[0].Source != "orig" {
		t.Errorf("seed overrode a selected repository: %+v", got[0])
	}
}
