package pipeline

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/allocsoc/awesome-crawler/internal/crawl"
	"github.com/allocsoc/awesome-crawler/internal/extract"
	"github.com/allocsoc/awesome-crawler/internal/history"
	"github.com/allocsoc/awesome-crawler/internal/logger"
	"github.com/allocsoc/awesome-crawler/internal/publish"
	"github.com/allocsoc/awesome-crawler/internal/sampling"
	"github.com/allocsoc/awesome-crawler/internal/snapshot"
	"github.com/allocsoc/awesome-crawler/internal/sources"
	"github.com/allocsoc/awesome-crawler/internal/store"
)

type fixedSelector struct {
	repos []sources.Repository
	err   error
}

func (s fixedSelector) Select(context.Context, bool) ([]sources.Repository, sources.Mode, error) {
	return s.repos, sources.ModeReuse, s.err
}

type fakeWalker map[string][]history.Observation

func (f fakeWalker) Walk(_ context.Context, url string, _ int) iter.Seq2[history.Observation, error] {
	return func(yield func(history.Observation, error) bool) {
		obs, ok := f[url]
		if !ok {
			yield(history.Observation{}, errors.New("repository not found"))
			return
		}
		for _, o := range obs {
			if !yield(o, nil) {
				return
			}
		}
	}
}

type failingBaseline struct{ err error }

func (b failingBaseline) Load(context.Context) (snapshot.Snapshot, error) {
	return snapshot.Snapshot{}, b.err
}

type recordingPublisher struct {
	published []snapshot.Snapshot
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, s snapshot.Snapshot) error {
	p.published = append(p.published, s)
	return p.err
}

var day0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func seen(name string, day int) history.Observation {
	return history.Observation{
		Entry: extract.Candidate{Name: name, Source: "https://" + name + ".dev", Description: name + " tool"},
		Time:  day0.AddDate(0, 0, day),
	}
}

func repos() []sources.Repository {
	return []sources.Repository{
		{Name: "awesome-go", Source: "https://github.com/avelino/awesome-go"},
		{Name: "awesome-gone", Source: "https://github.com/x/awesome-gone"},
		{Name: "awesome-rust", Source: "https://github.com/rust-unofficial/awesome-rust"},
	}
}

func walker() fakeWalker {
	return fakeWalker{
		"https://github.com/avelino/awesome-go":          {seen("chi", 3), seen("zap", 2), seen("chi", 1)},
		"https://github.com/rust-unofficial/awesome-rust": {seen("tokio", 5)},
	}
}

func newRunner(t *testing.T, snaps *store.SnapshotStore) *Runner {
	t.Helper()
	log := logger.NewNop()
	return NewRunner(
		fixedSelector{repos: repos()},
		nil,
		crawl.NewPool(walker(), 2, 10, log),
		snaps,
		publish.NewPublisher(snaps, nil, log),
		log,
	)
}

func TestRunFirstPublication(t *testing.T) {
	ctx := context.Background()
	snaps := store.NewSnapshotStore(store.NewInMemoryObjectStore(), "data.json")

	report, err := newRunner(t, snaps).Run(ctx, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, err := uuid.Parse(report.RunID); err != nil {
		t.Errorf("RunID %q is not a uuid: %v", report.RunID, err)
	}
	if report.Repositories != 3 || report.Succeeded != 2 || report.Failed != 1 {
		t.Errorf("report = %+v, want 3 repositories, 2 ok, 1 failed", report)
	}
	if report.Entries != 3 || report.Stats.ListsAdded != 2 {
		t.Errorf("report = %+v, want 3 entries in 2 new lists", report)
	}

	published, err := snaps.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(published.Lists) != 2 || published.Lists[0].Name != "awesome-go" {
		t.Fatalf("published = %+v", published)
	}
	chi := published.Lists[0].Entries[0]
	if chi.Name != "chi" || !chi.FirstSeen.Time().Equal(day0.AddDate(0, 0, 1)) {
		t.Errorf("chi = %+v, want first seen on day 1", chi)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	snaps := store.NewSnapshotStore(store.NewInMemoryObjectStore(), "data.json")
	runner := newRunner(t, snaps)

	if _, err := runner.Run(ctx, Options{}); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	first, _ := snaps.Load(ctx)

	report, err := runner.Run(ctx, Options{})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	second, _ := snaps.Load(ctx)

	if !snapshot.Equal(first, second) {
		t.Error("second run changed the published snapshot")
	}
	if report.Stats.EntriesAdded != 0 || report.Stats.ListsMerged != 2 {
		t.Errorf("second run stats = %+v", report.Stats)
	}
}

func TestRunKeepsListsMissingFromCrawl(t *testing.T) {
	ctx := context.Background()
	snaps := store.NewSnapshotStore(store.NewInMemoryObjectStore(), "data.json")
	old := snapshot.Snapshot{Lists: []snapshot.List{{
		Name:    "awesome-gone",
		Entries: []snapshot.Entry{{Name: "relic", FirstSeen: snapshot.Date(day0.AddDate(-3, 0, 0))}},
	}}}
	if err := snaps.Save(ctx, old); err != nil {
		t.Fatal(err)
	}

	report, err := newRunner(t, snaps).Run(ctx, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Stats.ListsCarried != 1 {
		t.Errorf("ListsCarried = %d, want 1", report.Stats.ListsCarried)
	}

	published, _ := snaps.Load(ctx)
	if published.Lists[0].Name != "awesome-gone" || !published.Lists[0].Entries[0].FirstSeen.IsDate() {
		t.Errorf("carried list changed: %+v", published.Lists[0])
	}
}

func TestRunAbortsOnUnreadableBaseline(t *testing.T) {
	log := logger.NewNop()
	pub := &recordingPublisher{}
	r := NewRunner(
		fixedSelector{repos: repos()},
		nil,
		crawl.NewPool(walker(), 2, 10, log),
		failingBaseline{err: errors.New("access denied")},
		pub,
		log,
	)

	if _, err := r.Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected an error")
	}
	if len(pub.published) != 0 {
		t.Error("published despite an unreadable baseline")
	}
}

func TestRunSeedsEmptyBaselineWhenMissing(t *testing.T) {
	log := logger.NewNop()
	pub := &recordingPublisher{}
	r := NewRunner(
		fixedSelector{repos: repos()},
		nil,
		crawl.NewPool(walker(), 2, 10, log),
		failingBaseline{err: store.ErrNotFound},
		pub,
		log,
	)

	if _, err := r.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(pub.published) != 1 || len(pub.published[0].Lists) != 2 {
		t.Errorf("published = %+v", pub.published)
	}
}

func TestRunPropagatesErrors(t *testing.T) {
	log := logger.NewNop()
	snaps := store.NewSnapshotStore(store.NewInMemoryObjectStore(), "")

	selectErr := errors.New("discovery failed")
	r := NewRunner(fixedSelector{err: selectErr}, nil, crawl.NewPool(walker(), 1, 1, log), snaps, &recordingPublisher{}, log)
	if _, err := r.Run(context.Background(), Options{}); !errors.Is(err, selectErr) {
		t.Errorf("Run() error = %v, want %v", err, selectErr)
	}

	publishErr := errors.New("bucket gone")
	r = NewRunner(fixedSelector{repos: repos()}, nil, crawl.NewPool(walker(), 1, 1, log), snaps, &recordingPublisher{err: publishErr}, log)
	if _, err := r.Run(context.Background(), Options{}); !errors.Is(err, publishErr) {
		t.Errorf("Run() error = %v, want %v", err, publishErr)
	}
}

func TestRunSampling(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()
	snaps := store.NewSnapshotStore(store.NewInMemoryObjectStore(), "")

	// awesome-go is stale, awesome-rust is unknown and always crawled.
	old := snapshot.Snapshot{Lists: []snapshot.List{{
		Name:    "awesome-go",
		Entries: []snapshot.Entry{{Name: "chi", FirstSeen: snapshot.At(day0.AddDate(-5, 0, 0))}},
	}}}
	if err := snaps.Save(ctx, old); err != nil {
		t.Fatal(err)
	}

	sampler := &sampling.Sampler{Rand: func() float64 { return 0.99 }, Now: func() time.Time { return day0 }}
	r := NewRunner(
		fixedSelector{repos: repos()},
		sampler,
		crawl.NewPool(walker(), 2, 10, log),
		snaps,
		publish.NewPublisher(snaps, nil, log),
		log,
	)

	report, err := r.Run(ctx, Options{Sampling: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Repositories != 2 {
		t.Errorf("crawled %d repositories, want 2 (stale one sampled out)", report.Repositories)
	}
}
