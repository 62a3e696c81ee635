package sampling

import (
	"testing"
	"time"

	"github.com/allocsoc/awesome-crawler/internal/logger"
	"github.com/allocsoc/awesome-crawler/internal/snapshot"
	"github.com/allocsoc/awesome-crawler/internal/sources"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func ago(days int) snapshot.Timestamp {
	return snapshot.At(now.Add(-time.Duration(days) * day))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		last snapshot.Timestamp
		want Bucket
	}{
		{"yesterday", ago(1), LastMonth},
		{"exactly 30 days", ago(30), LastMonth},
		{"31 days", ago(31), LastYear},
		{"exactly a year", ago(365), LastYear},
		{"18 months", ago(540), LastTwoYears},
		{"exactly two years", ago(730), LastTwoYears},
		{"three years", ago(1100), Older},
		{"zero", snapshot.Timestamp{}, Older},
		{"bare date", snapshot.Date(now.Add(-10 * day)), LastMonth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.last, now); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBucketProbability(t *testing.T) {
	want := map[Bucket]float64{
		LastMonth:    0.9,
		LastYear:     0.5,
		LastTwoYears: 0.2,
		Older:        0.05,
		NoData:       1,
	}
	for b, p := range want {
		if got := b.Probability(); got != p {
			t.Errorf("%v.Probability() = %v, want %v", b, got, p)
		}
	}
}

func previous() snapshot.Snapshot {
	return snapshot.Snapshot{Lists: []snapshot.List{
		{Name: "fresh", Entries: []snapshot.Entry{{Name: "a", FirstSeen: ago(400)}, {Name: "b", FirstSeen: ago(3)}}},
		{Name: "year", Entries: []snapshot.Entry{{Name: "a", FirstSeen: ago(200)}}},
		{Name: "stale", Entries: []snapshot.Entry{{Name: "a", FirstSeen: ago(2000)}}},
		{Name: "empty"},
	}}
}

func repos(names ...string) []sources.Repository {
	out := make([]sources.Repository, len(names))
	for i, n := range names {
		out[i] = sources.Repository{Name: n, Source: "https://github.com/x/" + n}
	}
	return out
}

func fixed(r float64) *Sampler {
	return &Sampler{Rand: func() float64 { return r }, Now: func() time.Time { return now }}
}

func TestStats(t *testing.T) {
	st := fixed(0).Stats(repos("fresh", "year", "stale", "empty", "unknown"), previous())

	want := Stats{LastMonth: 1, LastYear: 1, Older: 2, NoData: 1}
	if st != want {
		t.Errorf("Stats() = %+v, want %+v", st, want)
	}
	if st.Total() != 5 {
		t.Errorf("Total() = %d, want 5", st.Total())
	}
}

func TestFilter(t *testing.T) {
	all := repos("fresh", "year", "stale", "unknown")

	tests := []struct {
		name string
		draw float64
		want []string
	}{
		{"low draw keeps everything", 0.01, []string{"fresh", "year", "stale", "unknown"}},
		{"mid draw keeps active and new", 0.6, []string{"fresh", "unknown"}},
		{"high draw keeps only new", 0.95, []string{"unknown"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fixed(tt.draw).Filter(all, previous(), logger.NewNop())
			if len(got) != len(tt.want) {
				t.Fatalf("Filter() kept %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i].Name != tt.want[i] {
					t.Errorf("kept[%d] = %q, want %q", i, got[i].Name, tt.want[i])
				}
			}
		})
	}
}

func TestFilterWithoutPreviousKeepsAll(t *testing.T) {
	all := repos("a", "b", "c")
	got := fixed(0.99).Filter(all, snapshot.Snapshot{}, logger.NewNop())
	if len(got) != 3 {
		t.Errorf("Filter() kept %d, want 3", len(got))
	}
}
