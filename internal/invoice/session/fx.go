package session

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/facturador/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const sweepInterval = time.Minute

var Module = fx.Module("invoice.session",
	fx.Provide(NewRedisClient),
	fx.Provide(NewStore),
)

// NewRedisClient connects to redis when a component needs it, nil otherwise.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	if !cfg.RedisRequired() {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

// NewStore builds the store selected by SESSION_STORE.
func NewStore(lc fx.Lifecycle, cfg config.Config, client *redis.Client, log *zap.Logger) Store {
	log = log.Named("invoice.session")

	if cfg.SessionStore == config.SessionStoreRedis && client != nil {
		log.Info("using redis session store", zap.String("addr", cfg.Redis.Addr))
		return NewRedisStore(client, cfg.SessionTTL)
	}

	store := NewMemoryStore(cfg.SessionTTL)
	stop := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ticker := time.NewTicker(sweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						if removed := store.Sweep(); removed > 0 {
							log.Debug("expired sessions removed", zap.Int("count", removed))
						}
					case <-stop:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(stop)
			return nil
		},
	})
	log.Info("using in-memory session store", zap.Duration("ttl", cfg.SessionTTL))
	return store
}
