// Package crawl runs the per-repository clone, walk and reduce cycle on a
// bounded set of workers.
package crawl

import (
	"context"
	"fmt"
	"iter"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/allocsoc/awesome-crawler/internal/firstseen"
	"github.com/allocsoc/awesome-crawler/internal/history"
	"github.com/allocsoc/awesome-crawler/internal/logger"
	"github.com/allocsoc/awesome-crawler/internal/snapshot"
	"github.com/allocsoc/awesome-crawler/internal/sources"
)

// DefaultWorkers is the pool size when none is configured.
const DefaultWorkers = 8

// Walker is what a task needs from history.Walker.
type Walker interface {
	Walk(ctx context.Context, url string, limit int) iter.Seq2[history.Observation, error]
}

// Result is the outcome of one repository task. Err is set when the task
// failed; Entries is then empty.
type Result struct {
	Repo    sources.Repository
	Entries []snapshot.Entry
	Err     error
}

// Pool crawls repositories concurrently.
type Pool struct {
	walker  Walker
	workers int
	limit   int // commits per repository, <= 0 for full history
	log     logger.Logger
}

func NewPool(walker Walker, workers, limit int, log logger.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pool{walker: walker, workers: workers, limit: limit, log: log}
}

// Run crawls every repository and returns one result per repository, in
// input order. It only returns once every task has finished. A failing
// repository never stops the others.
func (p *Pool) Run(ctx context.Context, repos []sources.Repository) []Result {
	results := make([]Result, len(repos))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, repo := range repos {
		g.Go(func() error {
			results[i] = p.crawl(ctx, repo)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (p *Pool) crawl(ctx context.Context, repo sources.Repository) (res Result) {
	log := p.log.With(logger.String("repo", repo.Name))
	start := time.Now()
	res.Repo = repo

	defer func() {
		if r := recover(); r != nil {
			log.Error("repository task panicked",
				logger.String("panic", fmt.Sprint(r)),
				logger.String("stack", string(debug.Stack())))
			res = Result{Repo: repo, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	var obs []history.Observation
	for o, err := range p.walker.Walk(ctx, repo.Source, p.limit) {
		if err != nil {
			log.Error("failed to process repository",
				logger.String("source", repo.Source),
				logger.Error(err))
			return Result{Repo: repo, Err: err}
		}
		obs = append(obs, o)
	}

	res.Entries = firstseen.Reduce(obs)
	log.Info("processed repository",
		logger.Int("observations", len(obs)),
		logger.Int("entries", len(res.Entries)),
		logger.Duration("took", time.Since(start)))
	return res
}

// Succeeded counts results without an error.
func Succeeded(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Assemble builds a snapshot from successful, non-empty results: one list per
// repository, lists sorted by name, entries in reducer order (by name).
// Results sharing a repository name are folded into the first one.
func Assemble(results []Result) snapshot.Snapshot {
	var out snapshot.Snapshot
	index := make(map[string]int)
	for _, r := range results {
		if r.Err != nil || len(r.Entries) == 0 {
			continue
		}
		if i, ok := index[r.Repo.Name]; ok {
			for _, e := range r.Entries {
				if !out.Lists[i].Has(e.Name) {
					out.Lists[i].Entries = append(out.Lists[i].Entries, e)
				}
			}
			continue
		}
		index[r.Repo.Name] = len(out.Lists)
		out.Lists = append(out.Lists, snapshot.List{
			Name:        r.Repo.Name,
			Source:      r.Repo.Source,
			Description: r.Repo.Description,
			Entries:     append([]snapshot.Entry(nil), r.Entries...),
		})
	}

	slices.SortStableFunc(out.Lists, func(a, b snapshot.List) int {
		return strings.Compare(a.Name, b.Name)
	})
	for i := range out.Lists {
		slices.SortStableFunc(out.Lists[i].Entries, func(a, b snapshot.Entry) int {
			return strings.Compare(a.Name, b.Name)
		})
	}
	return out
}
