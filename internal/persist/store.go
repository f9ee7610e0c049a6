// Package persist holds the durable key-value adapters the session layer
// writes its identity through.
package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/hortifood/internal/config"
)

var ErrClosed = errors.New("persist: store is closed")

// Store is a durable key-value store.
// Load returns (nil, nil) when the key is absent.
// Clear does not fail for an absent key.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
	Close() error
}

// Open builds the store selected by SESSION_BACKEND.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.SessionBackend {
	case config.BackendSQLite:
		db, err := OpenSQLite(ctx, cfg.SessionDBPath)
		if err != nil {
			return nil, err
		}
		return gormStoreOrClose(db)
	case config.BackendPostgres:
		db, err := OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return gormStoreOrClose(db)
	case config.BackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
