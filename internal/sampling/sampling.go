// Package sampling thins the crawl set: repositories whose published list
// changed recently are crawled more often than dormant ones.
package sampling

import (
	"math/rand/v2"
	"time"

	"github.com/allocsoc/awesome-crawler/internal/logger"
	"github.com/allocsoc/awesome-crawler/internal/snapshot"
	"github.com/allocsoc/awesome-crawler/internal/sources"
)

const day = 24 * time.Hour

// Bucket classifies a repository by the age of its most recent entry.
type Bucket int

const (
	LastMonth Bucket = iota
	LastYear
	LastTwoYears
	Older
	NoData
)

func (b Bucket) String() string {
	switch b {
	case LastMonth:
		return "last_month"
	case LastYear:
		return "last_year"
	case LastTwoYears:
		return "last_2_years"
	case Older:
		return "older"
	default:
		return "no_data"
	}
}

// Probability is the chance a repository in this bucket is crawled.
func (b Bucket) Probability() float64 {
	switch b {
	case LastMonth:
		return 0.9
	case LastYear:
		return 0.5
	case LastTwoYears:
		return 0.2
	case Older:
		return 0.05
	default:
		return 1
	}
}

// Classify buckets a last-update time. A zero time counts as Older.
func Classify(last snapshot.Timestamp, now time.Time) Bucket {
	if last.IsZero() {
		return Older
	}
	age := now.Sub(last.Time())
	switch {
	case age <= 30*day:
		return LastMonth
	case age <= 365*day:
		return LastYear
	case age <= 730*day:
		return LastTwoYears
	default:
		return Older
	}
}

// Stats counts repositories per bucket.
type Stats struct {
	LastMonth    int
	LastYear     int
	LastTwoYears int
	Older        int
	NoData       int
}

func (s *Stats) add(b Bucket) {
	switch b {
	case LastMonth:
		s.LastMonth++
	case LastYear:
		s.LastYear++
	case LastTwoYears:
		s.LastTwoYears++
	case Older:
		s.Older++
	default:
		s.NoData++
	}
}

func (s Stats) Total() int {
	return s.LastMonth + s.LastYear + s.LastTwoYears + s.Older + s.NoData
}

// Sampler draws from Rand against the bucket probability. Both fields are
// swappable for tests.
type Sampler struct {
	Rand func() float64
	Now  func() time.Time
}

func New() *Sampler {
	return &Sampler{Rand: rand.Float64, Now: time.Now}
}

func (s *Sampler) bucket(repo sources.Repository, previous snapshot.Snapshot, now time.Time) Bucket {
	l, ok := previous.Find(repo.Name)
	if !ok {
		return NoData
	}
	return Classify(l.LastUpdate(), now)
}

// Stats classifies repos against the previously published snapshot.
func (s *Sampler) Stats(repos []sources.Repository, previous snapshot.Snapshot) Stats {
	now := s.Now()
	var st Stats
	for _, r := range repos {
		st.add(s.bucket(r, previous, now))
	}
	return st
}

// Filter keeps each repository with its bucket's probability. Repositories
// the previous snapshot does not know are always kept. Order is preserved.
func (s *Sampler) Filter(repos []sources.Repository, previous snapshot.Snapshot, log logger.Logger) []sources.Repository {
	now := s.Now()
	kept := make([]sources.Repository, 0, len(repos))
	for _, r := range repos {
		b := s.bucket(r, previous, now)
		p := b.Probability()
		if b == NoData || s.Rand() < p {
			kept = append(kept, r)
			log.Debug("repository sampled in",
				logger.String("repo", r.Name),
				logger.String("bucket", b.String()),
				logger.Float64("probability", p))
			continue
		}
		log.Debug("repository sampled out",
			logger.String("repo", r.Name),
			logger.String("bucket", b.String()),
			logger.Float64("probability", p))
	}
	log.Info("probabilistic sampling done",
		logger.Int("selected", len(kept)),
		logger.Int("total", len(repos)))
	return kept
}

// LogStats writes the bucket distribution at info level.
func LogStats(st Stats, log logger.Logger) {
	log.Info("repository activity distribution",
		logger.Int("total", st.Total()),
		logger.Int(LastMonth.String(), st.LastMonth),
		logger.Int(LastYear.String(), st.LastYear),
		logger.Int(LastTwoYears.String(), st.LastTwoYears),
		logger.Int(Older.String(), st.Older),
		logger.Int(NoData.String(), st.NoData))
}
