package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Storage backends for the published snapshot.
const (
	BackendS3    = "s3"
	BackendRedis = "redis"
	BackendFile  = "file"
)

type Config struct {
	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Snapshot storage
	Backend     string // "s3" | "redis" | "file"
	S3Bucket    string // ex: "awesome-crawler.allocsoc.net"
	S3Key       string // object key of the published snapshot (default: data.json)
	S3Region    string // optional, falls back to the SDK default chain
	S3Endpoint  string // optional, for S3-compatible stores (minio, localstack)
	S3PathStyle bool   // true => path-style addressing
	DataDir     string // directory used by the file backend

	// Redis (backend=redis)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
	RedisTTL            time.Duration // 0 = snapshot never expires

	// Crawler
	Workers       int           // concurrent repository crawls (default: 8)
	CommitLimit   int           // commits walked per repository, 0 = whole history (default: 10)
	DiscoveryURL  string        // index repository used for discovery
	DiscoveryMax  int           // repositories kept from discovery, 0 = no cap (default: 20)
	DiscoveryDay  time.Weekday  // weekday on which discovery runs (default: Monday)
	SeedFile      string        // optional YAML file with extra repositories
	Sampling      bool          // activity-based sampling of repositories
	CloneDir      string        // parent of the scratch clones, empty = os.TempDir
	SweepInterval time.Duration // how often "crawler schedule" removes abandoned clones
	CloneMaxAge   time.Duration // age after which a scratch clone counts as abandoned
	Output        string        // dry-run output file (default: ./output.json)
	ReloadURL     string        // optional reader endpoint notified after publishing
	NotifyTimeout time.Duration // timeout of the reload notification
	Schedule      string        // cron expression used by "crawler schedule"

	// Reader API
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout
	ReloadInterval  time.Duration // interval to reload the published snapshot (default: 1h)
	AllowedCIDRS    []string      // optional, restrict /reload and /readyz to specific IPs
	AllowedHosts    []string      // optional, Host headers accepted on /reload ("*.example.com" allowed)
	TrustProxy      bool          // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins     []string      // allowed origins, "*" for any
	RateLimitBurst  int           // search/lucky requests a client may burst, 0 = no limit
	RateLimitPerMin int           // search/lucky tokens refilled per client per minute
}

func Load() *Config {
	cfg := &Config{
		// Logging
		LogLevel:  getenv("AWESOME_LOG_LEVEL", "info"),
		PrettyLog: mustBool("AWESOME_PRETTY_LOG", false),

		// Storage
		Backend:     strings.ToLower(getenv("AWESOME_STORAGE", BackendS3)),
		S3Bucket:    getenv("AWESOME_S3_BUCKET", "awesome-crawler.allocsoc.net"),
		S3Key:       getenv("AWESOME_S3_KEY", "data.json"),
		S3Region:    getenv("AWESOME_S3_REGION", ""),
		S3Endpoint:  getenv("AWESOME_S3_ENDPOINT", ""),
		S3PathStyle: mustBool("AWESOME_S3_PATH_STYLE", false),
		DataDir:     getenv("AWESOME_DATA_DIR", "./data"),

		// Redis settings
		RedisAddr:           getenv("AWESOME_REDIS_ADDR", ""),
		RedisUser:           getenv("AWESOME_REDIS_USERNAME", ""),
		RedisPassword:       getenv("AWESOME_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("AWESOME_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
		RedisTTL:            mustDuration("AWESOME_REDIS_TTL", 0),

		// Crawler
		Workers:       getenvInt("AWESOME_WORKERS", 8),
		CommitLimit:   getenvInt("AWESOME_COMMIT_LIMIT", 10),
		DiscoveryURL:  getenv("AWESOME_DISCOVERY_URL", "https://github.com/sindresorhus/awesome"),
		DiscoveryMax:  getenvInt("AWESOME_DISCOVERY_MAX", 20),
		DiscoveryDay:  mustWeekday("AWESOME_DISCOVERY_DAY", time.Monday),
		SeedFile:      getenv("AWESOME_SEED_FILE", ""),
		Sampling:      mustBool("AWESOME_SAMPLING", true),
		CloneDir:      getenv("AWESOME_CLONE_DIR", ""),
		SweepInterval: mustDuration("AWESOME_SWEEP_INTERVAL", 6*time.Hour),
		CloneMaxAge:   mustDuration("AWESOME_CLONE_MAX_AGE", 24*time.Hour),
		Output:        getenv("AWESOME_OUTPUT", "./output.json"),
		ReloadURL:     getenv("AWESOME_RELOAD_URL", ""),
		NotifyTimeout: mustDuration("AWESOME_NOTIFY_TIMEOUT", 10*time.Second),
		Schedule:      getenv("AWESOME_SCHEDULE", "0 6 * * *"),

		// Reader API
		ListenPort:      getenv("AWESOME_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("AWESOME_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("AWESOME_REQUEST_TIMEOUT", 10*time.Second),
		ReloadInterval:  mustDuration("AWESOME_RELOAD_INTERVAL", time.Hour),
		AllowedCIDRS:    parseAllowedIPs(getenv("AWESOME_ALLOWED_CIDRS", "")),
		AllowedHosts:    splitAndTrim(getenv("AWESOME_ALLOWED_HOSTS", "")),
		TrustProxy:      mustBool("AWESOME_TRUST_PROXY", false),
		CORSOrigins:     splitAndTrim(getenv("AWESOME_CORS_ORIGINS", "*")),
		RateLimitBurst:  getenvInt("AWESOME_RATE_LIMIT_BURST", 30),
		RateLimitPerMin: getenvInt("AWESOME_RATE_LIMIT_PER_MIN", 60),
	}

	switch cfg.Backend {
	case BackendS3:
		if cfg.S3Bucket == "" {
			panic("❌ FATAL: AWESOME_S3_BUCKET is required when AWESOME_STORAGE=s3")
		}
	case BackendRedis:
		cfg.RedisAddr = requireEnv("AWESOME_REDIS_ADDR")
	case BackendFile:
	default:
		panic(fmt.Sprintf("❌ FATAL: AWESOME_STORAGE must be one of s3, redis, file (got %q)", cfg.Backend))
	}

	if cfg.Workers < 1 {
		panic(fmt.Sprintf("❌ FATAL: AWESOME_WORKERS must be >= 1 (got %d)", cfg.Workers))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

var weekdays = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
	time.Thursday, time.Friday, time.Saturday,
}

// mustWeekday accepts an English weekday name, full or three-letter.
// Unlike the other helpers it panics on a bad value.
func mustWeekday(key string, def time.Weekday) time.Weekday {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	i := slices.IndexFunc(weekdays, func(d time.Weekday) bool {
		name := strings.ToLower(d.String())
		return v == name || v == name[:3]
	})
	if i < 0 {
		panic(fmt.Sprintf("❌ FATAL: Invalid weekday for %s: %s", key, v))
	}
	return weekdays[i]
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
