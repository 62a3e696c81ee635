package deps

import (
	"context"
	"time"

	"github.com/allocsoc/awesome-crawler/internal/httpserver/mw"
	"github.com/allocsoc/awesome-crawler/internal/index"
	"github.com/allocsoc/awesome-crawler/internal/logger"
)

// Reloader reloads the published snapshot into the index.
// *scheduler.SnapshotReloader implements it.
type Reloader interface {
	Reload(ctx context.Context) (index.Stats, error)
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time   // for testing, defaults to time.Now
	AllowedHosts []string           // Host headers allowed on /reload, empty = any
	AllowedCIDRS []string           // IPs allowed to access reload/readyz endpoints
	TrustProxy   bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins  []string           // allowed origins, "*" for any
	RateLimit    mw.RateLimitConfig // applied to search and lucky, zero Burst = disabled
	MemoryIndex  *index.MemoryIndex // snapshot served to readers
	Reloader     Reloader           // manual reload
	DataSource   string             // where the snapshot comes from, ex: "s3://bucket/data.json"
	Pick         func(n int) int    // random pick for /lucky, defaults to rand.IntN
}
