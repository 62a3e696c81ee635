package sources

import (
	"context"
	"fmt"
	"iter"

	"github.com/allocsoc/awesome-crawler/internal/firstseen"
	"github.com/allocsoc/awesome-crawler/internal/history"
)

// DefaultIndexURL is the awesome list of awesome lists.
const DefaultIndexURL = "https://github.com/sindresorhus/awesome"

// HistoryWalker is what discovery needs from history.Walker.
type HistoryWalker interface {
	Walk(ctx context.Context, url string, limit int) iter.Seq2[history.Observation, error]
}

// Discoverer reads the current index README and turns its entries into
// repositories.
type Discoverer struct {
	walker   HistoryWalker
	indexURL string
	max      int
}

// NewDiscoverer returns a discoverer capped at limit repositories (0 = no cap).
func NewDiscoverer(walker HistoryWalker, indexURL string, limit int) *Discoverer {
	if indexURL == "" {
		indexURL = DefaultIndexURL
	}
	return &Discoverer{walker: walker, indexURL: indexURL, max: limit}
}

// Discover looks at the head commit only.
func (d *Discoverer) Discover(ctx context.Context) ([]Repository, error) {
	var obs []history.Observation
	for o, err := range d.walker.Walk(ctx, d.indexURL, 1) {
		if err != nil {
			return nil, fmt.Errorf("discovery from %s: %w", d.indexURL, err)
		}
		obs = append(obs, o)
	}

	entries := firstseen.Reduce(obs)
	repos := make([]Repository, 0, len(entries))
	for _, e := range entries {
		repos = append(repos, Repository{Name: e.Name, Source: e.Source, Description: e.Description})
		if d.max > 0 && len(repos) == d.max {
			break
		}
	}
	return repos, nil
}
