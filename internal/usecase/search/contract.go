package search

import (
	"context"

	"github.com/kailas-cloud/clubsearch/internal/db"
	"github.com/kailas-cloud/clubsearch/internal/domain"
)

// Dialer opens a fresh search connection. Each Search call dials exactly once.
type Dialer func(ctx context.Context) (db.Conn, error)

// Embedder vectorizes query text on the client side.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
