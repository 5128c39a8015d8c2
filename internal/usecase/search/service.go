package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/clubsearch/internal/db"
	"github.com/kailas-cloud/clubsearch/internal/domain"
	"github.com/kailas-cloud/clubsearch/internal/domain/club"
	"github.com/kailas-cloud/clubsearch/internal/domain/search/request"
	"github.com/kailas-cloud/clubsearch/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/clubsearch/internal/logger"
	"github.com/kailas-cloud/clubsearch/internal/metrics"
)

// Target names the collection and vector a query is scoped to.
type Target struct {
	Collection string
	Model      string
	VectorName string
}

// Service executes one semantic query per call against the configured collection.
type Service struct {
	dial    Dialer
	target  Target
	embed   Embedder
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a search service. Without an embedder the query text is sent
// as a document and embedded by the server.
func New(dial Dialer, target Target) *Service {
	return &Service{dial: dial, target: target, logger: zap.NewNop()}
}

// WithEmbedder switches to client-side query embedding.
func (s *Service) WithEmbedder(e Embedder) *Service {
	s.embed = e
	return s
}

// WithTimeout bounds every Search call, connection included. Zero means no deadline.
func (s *Service) WithTimeout(d time.Duration) *Service {
	s.timeout = d
	return s
}

// WithLogger sets the fallback logger used when the context carries none.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	s.logger = l
	return s
}

// Target returns the collection and vector queries are scoped to.
func (s *Service) Target() Target { return s.target }

// Search opens a connection, runs the query and closes the connection before
// returning, whatever the outcome. Results keep the server's ranking.
// Remote errors are returned wrapped, never retried.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]club.Club, error) {
	log := logpkg.FromContext(ctx, s.logger)
	start := time.Now()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	q := db.VectorQuery{
		Collection: s.target.Collection,
		Using:      s.target.VectorName,
		Text:       req.Query(),
		Model:      s.target.Model,
		Limit:      req.Limit(),
	}
	if th, ok := req.ScoreThreshold(); ok {
		q.ScoreThreshold = &th
	}

	if s.embed != nil {
		emb, err := s.embed.Embed(ctx, req.Query())
		if err != nil {
			metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("embed query: %w", err)
		}
		domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)
		q.Vector = emb.Embedding
	}

	matches, err := s.query(ctx, &q, log)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.SearchRequestsTotal.WithLabelValues("success").Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.SearchResults.Observe(float64(len(matches)))

	log.Debug("Search completed",
		zap.String("collection", q.Collection),
		zap.String("using", q.Using),
		zap.Bool("server_inference", q.Inference()),
		zap.Int("limit", q.Limit),
		zap.Int("results", len(matches)),
		zap.Duration("latency", time.Since(start)),
	)

	return club.Format(matches), nil
}

// query owns the connection lifecycle: one dial, one deferred close.
func (s *Service) query(ctx context.Context, q *db.VectorQuery, log *zap.Logger) ([]result.Match, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to vector database: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Warn("Failed to close vector database connection", zap.Error(cerr))
		}
	}()

	matches, err := conn.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query collection %q: %w", q.Collection, err)
	}
	return matches, nil
}
