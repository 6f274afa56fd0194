// Package store holds the key-value backends and the feedback and profile
// stores built on them.
//
// Interfaces live in core (core.Store, core.KeyValueStore); this package
// only implements them:
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	fb := store.NewFeedbackStore(kv, "citykit")
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rushteam/citykit/core"
)

// hashMover is implemented by backends that can set a field in one hash and
// delete it from another atomically.
type hashMover interface {
	HMove(ctx context.Context, setKey, delKey, field string, value []byte) error
}

// Config selects and configures a backend.
type Config struct {
	Kind      string // memory / redis
	RedisAddr string
	RedisDB   int
}

// New opens the backend named by cfg.Kind.
func New(ctx context.Context, cfg Config) (core.KeyValueStore, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unsupported store kind: %s", cfg.Kind)
	}
}
