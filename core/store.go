package core

import "context"

// Store is the domain interface of a key-value backend.
//
// Defined in core and implemented in package store, so the domain layer never
// depends on a concrete backend:
//   - store.MemoryStore implements it (tests, single-process deployments)
//   - store.RedisStore implements it (production)
type Store interface {
	// Name returns the backend name, used in logs.
	Name() string

	// Get reads a single key. A missing key returns ErrStoreNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes a single key; ttl is in seconds, 0 or absent means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete removes a single key.
	Delete(ctx context.Context, key string) error

	// Close releases connections.
	Close() error
}

// KeyValueStore extends Store with hash operations. The feedback store keeps
// one hash per user and namespace so that merge writes of different cities
// never overwrite each other and a read returns whole entries only.
type KeyValueStore interface {
	Store

	// HGet reads a single hash field.
	HGet(ctx context.Context, key, field string) ([]byte, error)

	// HSet writes a single hash field, creating the hash if needed.
	HSet(ctx context.Context, key, field string, value []byte) error

	// HDel removes hash fields; missing fields are ignored.
	HDel(ctx context.Context, key string, fields ...string) error

	// HGetAll reads the whole hash. A missing hash is an empty map, not an error.
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)
}

var (
	// ErrStoreNotFound means the key does not exist.
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

	// ErrStoreNotSupported means the backend cannot perform the operation.
	ErrStoreNotSupported = NewDomainError(ModuleStore, ErrorCodeNotSupported, "store: operation not supported")
)

// NewStoreUnavailableError wraps a backend failure.
func NewStoreUnavailableError(op string, cause error) *DomainError {
	return WrapDomainError(ModuleStore, ErrorCodeUnavailable, "store: "+op+" failed", cause)
}

// IsStoreNotFound reports whether err is a missing key.
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Module == ModuleStore && domainErr.Code == ErrorCodeNotFound
}

// IsStoreUnavailable reports whether err is a backend failure.
func IsStoreUnavailable(err error) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Module == ModuleStore && domainErr.Code == ErrorCodeUnavailable
}
