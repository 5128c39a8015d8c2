// Package embcache memoizes query embeddings in a key-value store.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/clubsearch/internal/db"
	"github.com/kailas-cloud/clubsearch/internal/domain"
)

const keyPrefix = "clubsearch:qvec:"

// store is the slice of db.KVStore the cache needs.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Options configures a CachedEmbedder.
type Options struct {
	// Model and Dimensions scope the key space. Vectors from another model or
	// another output size are never served.
	Model      string
	Dimensions int
	TTL        time.Duration
	// CacheTotal counts lookups by "result" label (hit, miss). Optional.
	CacheTotal *prometheus.CounterVec
	Logger     *zap.Logger
}

// CachedEmbedder serves repeated queries from the store. Store failures
// degrade to a miss; they never fail the search.
type CachedEmbedder struct {
	inner domain.Embedder
	store store
	opts  Options
	space string
}

// New wraps inner with a cache backed by s.
func New(inner domain.Embedder, s store, opts Options) *CachedEmbedder {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &CachedEmbedder{
		inner: inner,
		store: s,
		opts:  opts,
		space: opts.Model + "\x00" + strconv.Itoa(opts.Dimensions),
	}
}

// Embed returns the stored vector for text, or embeds and stores it.
// A hit reports zero tokens.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.key(text)

	if vec, ok := c.lookup(ctx, key); ok {
		c.count("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.count("miss")

	res, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed query: %w", err)
	}

	if err := c.store.SetWithTTL(ctx, key, encode(res.Embedding), c.opts.TTL); err != nil {
		c.opts.Logger.Warn("Failed to store query embedding", zap.String("key", key), zap.Error(err))
	}
	return res, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(c.space + "\x00" + text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return nil, false
	case err != nil:
		c.opts.Logger.Warn("Failed to read query embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	vec, err := decode(data)
	if err != nil {
		c.opts.Logger.Warn("Discarding unreadable query embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if c.opts.Dimensions > 0 && len(vec) != c.opts.Dimensions {
		c.opts.Logger.Warn("Discarding query embedding with wrong dimensions",
			zap.String("key", key),
			zap.Int("got", len(vec)),
			zap.Int("want", c.opts.Dimensions),
		)
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) count(result string) {
	if c.opts.CacheTotal != nil {
		c.opts.CacheTotal.WithLabelValues(result).Inc()
	}
}

// encode packs a vector as little-endian float32s.
func encode(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decode(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("embedding entry of %d bytes", len(data))
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return v, nil
}
