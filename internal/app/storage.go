package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/allocsoc/awesome-crawler/internal/config"
	"github.com/allocsoc/awesome-crawler/internal/logger"
	"github.com/allocsoc/awesome-crawler/internal/redis"
	"github.com/allocsoc/awesome-crawler/internal/store"
	redisstore "github.com/allocsoc/awesome-crawler/internal/store/redis"
)

// storage is the configured object store plus whatever must be released
// when the process stops.
type storage struct {
	objects store.ObjectStore
	source  string // where the snapshot lives, ex: "s3://bucket/data.json"
	close   func() error
}

func (s *storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// openStorage builds the backend named by cfg.Backend. Redis is connected
// eagerly so a broken setup fails at startup.
func openStorage(ctx context.Context, cfg *config.Config, log logger.Logger) (*storage, error) {
	switch cfg.Backend {
	case config.BackendS3:
		client, err := store.NewS3Client(ctx, store.S3Options{
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			UsePathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		log.Info("using s3 storage",
			logger.String("bucket", cfg.S3Bucket),
			logger.String("key", cfg.S3Key))
		return &storage{
			objects: store.NewS3ObjectStore(client, cfg.S3Bucket),
			source:  "s3://" + cfg.S3Bucket + "/" + cfg.S3Key,
		}, nil

	case config.BackendRedis:
		client, err := redis.Connect(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, err
		}
		log.Info("using redis storage", logger.Duration("ttl", cfg.RedisTTL))
		return &storage{
			objects: redisstore.NewStore(client, cfg.RedisTTL),
			source:  "redis://" + cfg.RedisAddr + "/" + cfg.S3Key,
			close:   client.Close,
		}, nil

	case config.BackendFile:
		log.Info("using file storage", logger.String("dir", cfg.DataDir))
		return &storage{
			objects: store.NewFileObjectStore(cfg.DataDir),
			source:  "file://" + filepath.Join(cfg.DataDir, cfg.S3Key),
		}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
