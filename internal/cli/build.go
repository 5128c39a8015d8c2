package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/clubsearch/internal/config"
	"github.com/kailas-cloud/clubsearch/internal/db"
	"github.com/kailas-cloud/clubsearch/internal/db/qdrant"
	dbRedis "github.com/kailas-cloud/clubsearch/internal/db/redis"
	"github.com/kailas-cloud/clubsearch/internal/domain"
	"github.com/kailas-cloud/clubsearch/internal/metrics"
	"github.com/kailas-cloud/clubsearch/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/clubsearch/internal/transport/openai"
	healthuc "github.com/kailas-cloud/clubsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/clubsearch/internal/usecase/search"
)

const cacheReadyTimeout = 2 * time.Second

// components is the composition root shared by search and serve.
type components struct {
	search *searchuc.Service
	health *healthuc.Service
	close  func()
}

func build(cfg *config.Config, logger *zap.Logger) (*components, error) {
	dial := qdrantDialer(cfg)

	search := searchuc.New(dial, searchuc.Target{
		Collection: cfg.Collection,
		Model:      cfg.Embedding.Model,
		VectorName: cfg.VectorName(),
	}).WithTimeout(cfg.Timeout()).WithLogger(logger)

	health := healthuc.New(healthuc.PingerFunc(func(ctx context.Context) error {
		conn, err := dial(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = conn.Close() }()
		if p, ok := conn.(db.Pinger); ok {
			return p.Ping(ctx)
		}
		return nil
	}))

	c := &components{search: search, health: health, close: func() {}}

	switch cfg.Embedding.Provider {
	case config.ProviderQdrant:
		logger.Debug("Query embedding delegated to Qdrant",
			zap.String("model", cfg.Embedding.Model),
			zap.String("using", cfg.VectorName()),
		)
	case config.ProviderOpenAI:
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})
		health.WithCheck("embedding", healthuc.PingerFunc(base.HealthCheck))

		var embedder domain.Embedder = base
		if store := openCache(cfg, logger); store != nil {
			embedder = embcache.New(base, store, embcache.Options{
				Model:      cfg.Embedding.Model,
				Dimensions: cfg.Embedding.Dimensions,
				TTL:        cfg.CacheTTL(),
				CacheTotal: metrics.EmbeddingCacheTotal,
				Logger:     logger,
			})
			health.WithCheck("cache", store)
			c.close = store.Close
		}

		// Instruction prefix is outermost so the cache key includes it
		if cfg.Embedding.QueryInstruction != "" {
			embedder = domain.NewInstructionEmbedder(embedder, cfg.Embedding.QueryInstruction)
		}
		search.WithEmbedder(embedder)

		logger.Debug("Query embedding through OpenAI-compatible provider",
			zap.String("model", cfg.Embedding.Model),
			zap.Bool("cache", len(cfg.Cache.Addrs) > 0),
		)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}

	return c, nil
}

// qdrantDialer opens a new gRPC connection for every call.
func qdrantDialer(cfg *config.Config) searchuc.Dialer {
	qcfg := qdrant.Config{
		URL:      cfg.Qdrant.URL,
		APIKey:   cfg.Qdrant.APIKey,
		GRPCPort: cfg.Qdrant.GRPCPort,
	}
	return func(ctx context.Context) (db.Conn, error) {
		store, err := qdrant.Dial(ctx, qcfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// openCache connects the embedding cache. An unreachable cache is logged and
// skipped: it never blocks a search.
func openCache(cfg *config.Config, logger *zap.Logger) db.KVStore {
	if len(cfg.Cache.Addrs) == 0 {
		return nil
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Cache.Addrs,
		Password: cfg.Cache.Password,
	})
	if err != nil {
		logger.Warn("Embedding cache disabled", zap.Strings("addrs", cfg.Cache.Addrs), zap.Error(err))
		return nil
	}

	if err := store.WaitForReady(context.Background(), cacheReadyTimeout); err != nil {
		logger.Warn("Embedding cache not ready, disabled", zap.Strings("addrs", cfg.Cache.Addrs), zap.Error(err))
		store.Close()
		return nil
	}
	return store
}
