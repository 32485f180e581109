package session

import (
	"context"
	"fmt"

	"github.com/mohammad-safakhou/graphjudge/config"
	"github.com/mohammad-safakhou/graphjudge/internal/comparison"
)

// Store holds comparison records per session for the lifetime of the
// session. Records expire with the session TTL; nothing outlives it.
type Store interface {
	Append(ctx context.Context, sessionID string, record comparison.Record) error
	Records(ctx context.Context, sessionID string) ([]comparison.Record, error)
	Clear(ctx context.Context, sessionID string) error
}

// NewStore creates the configured session backend.
func NewStore(ctx context.Context, cfg config.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case "inmemory":
		return NewMemoryStore(cfg.TTL), nil
	case "redis":
		client, err := Conn(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return NewRedisStore(client, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session backend: %s", cfg.Backend)
	}
}
