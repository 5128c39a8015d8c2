package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/clubsearch/internal/domain/search/result"
)

// Searcher runs a single vector query against a collection.
type Searcher interface {
	Query(ctx context.Context, q *VectorQuery) ([]result.Match, error)
}

// Conn is a search connection owned by exactly one caller.
// Close must be called once, on every exit path.
type Conn interface {
	Searcher
	Close() error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides the key-value operations used by the embedding cache.
type KVStore interface {
	Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}
