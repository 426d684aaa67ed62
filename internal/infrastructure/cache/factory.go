package cache

import (
	"github.com/alfred/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewStore returns a Redis store when Redis is configured and reachable,
// otherwise an in-memory store. Falling back is logged because counters
// and cached lookups are then per process.
func NewStore(cfg config.RedisConfig, log *zap.Logger) Store {
	if !cfg.Enabled() {
		log.Info("Redis not configured, using in-memory cache")
		return NewInMemoryStore()
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory cache",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryStore()
	}

	log.Info("using Redis cache", zap.String("addr", cfg.Addr()))
	return NewRedisStore(client, "")
}
