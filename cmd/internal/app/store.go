package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"keeper/cmd/internal/auth/session"
)

// backend owns the resources behind the session store.
type backend interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error
}

// newStore builds the session store selected by cfg.Store.
//
// Ownership model:
// - the backend owns the pool/client lifecycle
// - the session stores never close what they were given
func newStore(ctx context.Context, cfg Config, log Logger) (session.Store, backend, error) {
	switch cfg.Store {
	case StoreFile, "":
		path := cfg.SessionFile
		if path == "" {
			path = session.DefaultSessionPath()
		}
		fs := session.NewFileStore(path)
		log.Debug("store.file", "path", fs.Path())
		return fs, fileBackend{}, nil

	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("%w: KEEPER_STORE=postgres requires KEEPER_DATABASE_URL", session.ErrConfig)
		}
		pool, err := NewDBPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Debug("store.postgres", "profile", cfg.Profile)
		return session.NewPostgresStore(pool, cfg.Profile), pgBackend{pool: pool}, nil

	case StoreRedis:
		client, err := NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Debug("store.redis", "addr", cfg.RedisAddr, "profile", cfg.Profile)
		return session.NewRedisStore(client, cfg.Profile), redisBackend{client: client}, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown store %q", session.ErrConfig, cfg.Store)
	}
}

type fileBackend struct{}

func (fileBackend) Name() string                 { return StoreFile }
func (fileBackend) Ping(_ context.Context) error { return nil }
func (fileBackend) Close() error                 { return nil }

type pgBackend struct{ pool *pgxpool.Pool }

func (pgBackend) Name() string { return StorePostgres }

func (b pgBackend) Ping(ctx context.Context) error { return PingDB(ctx, b.pool, 2*time.Second) }

func (b pgBackend) Close() error {
	b.pool.Close()
	return nil
}

type redisBackend struct{ client *redis.Client }

func (redisBackend) Name() string { return StoreRedis }

func (b redisBackend) Ping(ctx context.Context) error {
	return PingRedis(ctx, b.client, 2*time.Second)
}

func (b redisBackend) Close() error { return b.client.Close() }
