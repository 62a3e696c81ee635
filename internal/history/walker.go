// Package history replays the commit history of an awesome-list repository
// and reports every entry its README contained at each commit.
package history

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/allocsoc/awesome-crawler/internal/extract"
	"github.com/allocsoc/awesome-crawler/internal/logger"
)

// ScratchPrefix starts the name of every scratch clone directory.
const ScratchPrefix = "awesome-clone-"

// errNoReadme marks commits whose tree has no README; they are skipped.
var errNoReadme = errors.New("no readme in tree")

// Observation is one candidate seen in the README at one commit.
type Observation struct {
	Entry extract.Candidate
	Time  time.Time
}

// Walker clones repositories into scratch directories and walks them.
type Walker struct {
	log logger.Logger

	// TempDir is where scratch clones are created. Empty means os.TempDir().
	TempDir string
}

func NewWalker(log logger.Logger) *Walker {
	return &Walker{log: log}
}

// Walk clones url and yields the observations of up to limit commits, most
// recent first. limit <= 0 walks the whole history.
//
// The scratch directory lives exactly as long as the sequence: it is removed
// when iteration ends, is stopped by the consumer, or fails. A failure is
// yielded once as the error half of the pair and ends the sequence.
func (w *Walker) Walk(ctx context.Context, url string, limit int) iter.Seq2[Observation, error] {
	return func(yield func(Observation, error) bool) {
		dir, err := os.MkdirTemp(w.TempDir, ScratchPrefix+"*")
		if err != nil {
			yield(Observation{}, fmt.Errorf("failed to create scratch dir: %w", err))
			return
		}
		defer func() {
			if err := os.RemoveAll(dir); err != nil {
				w.log.Warn("failed to remove scratch dir",
					logger.String("dir", dir),
					logger.Error(err))
			}
		}()

		cloneURL := StripFragment(url)
		w.log.Debug("cloning repository",
			logger.String("url", cloneURL),
			logger.Int("limit", limit))

		repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
			URL:          cloneURL,
			NoCheckout:   true,
			SingleBranch: true,
			Tags:         git.NoTags,
		})
		if err != nil {
			yield(Observation{}, fmt.Errorf("failed to clone %s: %w", cloneURL, err))
			return
		}

		for obs, err := range observations(ctx, repo, limit, w.log) {
			if !yield(obs, err) {
				return
			}
		}
	}
}

// observations walks an already opened repository.
func observations(ctx context.Context, repo *git.Repository, limit int, log logger.Logger) iter.Seq2[Observation, error] {
	return func(yield func(Observation, error) bool) {
		head, err := repo.Head()
		if err != nil {
			yield(Observation{}, fmt.Errorf("failed to resolve HEAD: %w", err))
			return
		}

		commits, err := repo.Log(&git.LogOptions{
			From:  head.Hash(),
			Order: git.LogOrderCommitterTime,
		})
		if err != nil {
			yield(Observation{}, fmt.Errorf("failed to read log: %w", err))
			return
		}
		defer commits.Close()

		visited := 0
		stopped := false
		err = commits.ForEach(func(c *object.Commit) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if limit > 0 && visited >= limit {
				return storer.ErrStop
			}
			visited++

			candidates, err := readmeCandidates(c, log)
			if errors.Is(err, errNoReadme) {
				log.Debug("commit without readme, skipping",
					logger.String("commit", c.Hash.String()))
				return nil
			}
			if err != nil {
				return fmt.Errorf("commit %s: %w", c.Hash, err)
			}

			when := c.Committer.When.UTC()
			for _, cand := range candidates {
				if !yield(Observation{Entry: cand, Time: when}, nil) {
					stopped = true
					return storer.ErrStop
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield(Observation{}, err)
		}
	}
}

func readmeCandidates(c *object.Commit, log logger.Logger) ([]extract.Candidate, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree: %w", err)
	}

	f, err := findReadme(tree)
	if err != nil {
		return nil, err
	}

	contents, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return extract.Extract([]byte(contents), log), nil
}

// findReadme returns the shallowest file whose path mentions "readme".
// Between files at the same depth the first in tree order wins.
func findReadme(tree *object.Tree) (*object.File, error) {
	var (
		best      *object.File
		bestDepth int
	)
	err := tree.Files().ForEach(func(f *object.File) error {
		if !strings.Contains(strings.ToLower(f.Name), "readme") {
			return nil
		}
		depth := strings.Count(f.Name, "/")
		if best == nil || depth < bestDepth {
			best, bestDepth = f, depth
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	if best == nil {
		return nil, errNoReadme
	}
	return best, nil
}

// StripFragment drops a trailing "#..." from a repository URL, as found in
// links like https://github.com/owner/repo#readme.
func StripFragment(url string) string {
	if i := strings.IndexByte(url, '#'); i >= 0 {
		return url[:i]
	}
	return url
}
