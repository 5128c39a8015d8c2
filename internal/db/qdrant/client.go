// Package qdrant talks to a Qdrant collection over gRPC.
package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kailas-cloud/clubsearch/internal/db"
	"github.com/kailas-cloud/clubsearch/internal/domain/search/result"
)

// Compile-time check: Store implements db.Conn.
var _ db.Conn = (*Store)(nil)

// DefaultGRPCPort is Qdrant's gRPC listener; the REST port in the URL is ignored.
const DefaultGRPCPort = 6334

// Payload keys written by the indexer.
const (
	PayloadMetadata = "metadata"
	PayloadDocument = "document"
)

// Config holds connection parameters for a Qdrant endpoint.
type Config struct {
	URL      string
	APIKey   string
	GRPCPort int
}

// pointsClient is the subset of *qdrant.Client used by the store (ISP).
type pointsClient interface {
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
	Close() error
}

// Store is a single Qdrant connection. It is not reused across queries.
type Store struct {
	client pointsClient
}

// Dial creates a gRPC connection to the endpoint described by cfg.
// Values are not validated here: a bad URL surfaces as a connection error.
// The connection is established lazily, so the first call made with ctx's
// deadline bounds the handshake.
func Dial(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, &db.Error{Op: db.OpConnect, Err: err}
	}
	host, port, useTLS := endpoint(cfg.URL, cfg.GRPCPort)

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		APIKey:   cfg.APIKey,
		UseTLS:   useTLS,
		PoolSize: 1,
		// The version probe blocks on its own background context.
		SkipCompatibilityCheck: true,
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpConnect, Err: err}
	}
	return &Store{client: client}, nil
}

// NewStoreForTest wraps a fake points client (test-only).
func NewStoreForTest(c pointsClient) *Store {
	return &Store{client: c}
}

// Query runs a nearest-neighbour query and decodes the scored points in server order.
func (s *Store) Query(ctx context.Context, q *db.VectorQuery) ([]result.Match, error) {
	points, err := s.client.Query(ctx, buildQuery(q))
	if err != nil {
		return nil, queryError(err)
	}

	matches := make([]result.Match, 0, len(points))
	for _, p := range points {
		matches = append(matches, decodePoint(p))
	}
	return matches, nil
}

// Ping checks that the server answers its health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases the underlying gRPC connection.
func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		return &db.Error{Op: db.OpClose, Err: err}
	}
	return nil
}

// queryError tags a missing collection with db.ErrCollectionNotFound and
// maps deadline/cancel statuses onto their context errors.
// The gRPC status stays reachable through the chain.
func queryError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		err = fmt.Errorf("%w: %w", db.ErrCollectionNotFound, err)
	case codes.DeadlineExceeded:
		err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	case codes.Canceled:
		err = fmt.Errorf("%w: %w", context.Canceled, err)
	}
	return &db.Error{Op: db.OpQuery, Err: err}
}

func buildQuery(q *db.VectorQuery) *qdrant.QueryPoints {
	var query *qdrant.Query
	if q.Inference() {
		query = qdrant.NewQueryNearest(qdrant.NewVectorInputDocument(&qdrant.Document{
			Text:  q.Text,
			Model: q.Model,
		}))
	} else {
		query = qdrant.NewQuery(q.Vector...)
	}

	qp := &qdrant.QueryPoints{
		CollectionName: q.Collection,
		Query:          query,
		Limit:          qdrant.PtrOf(uint64(q.Limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if q.Using != "" {
		qp.Using = qdrant.PtrOf(q.Using)
	}
	if q.ScoreThreshold != nil {
		qp.ScoreThreshold = qdrant.PtrOf(float32(*q.ScoreThreshold))
	}
	return qp
}

// endpoint splits a Qdrant URL into gRPC host, port and TLS flag.
// "https://x.cloud.qdrant.io:6333" -> ("x.cloud.qdrant.io", 6334, true).
func endpoint(raw string, grpcPort int) (string, int, bool) {
	if grpcPort <= 0 {
		grpcPort = DefaultGRPCPort
	}
	if raw == "" {
		return "", grpcPort, false
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw, grpcPort, false
	}
	return u.Hostname(), grpcPort, u.Scheme == "https"
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

func decodePoint(p *qdrant.ScoredPoint) result.Match {
	payload := p.GetPayload()

	var metadata map[string]any
	if v, ok := payload[PayloadMetadata]; ok {
		if m, ok := decodeValue(v).(map[string]any); ok {
			metadata = m
		}
	}

	var document string
	if v, ok := payload[PayloadDocument]; ok {
		document = v.GetStringValue()
	}

	return result.New(pointID(p.GetId()), float64(p.GetScore()), metadata, document)
}

// decodeValue converts a protobuf payload value into plain Go values.
func decodeValue(v *qdrant.Value) any {
	switch k := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return k.StringValue
	case *qdrant.Value_IntegerValue:
		return k.IntegerValue
	case *qdrant.Value_DoubleValue:
		return k.DoubleValue
	case *qdrant.Value_BoolValue:
		return k.BoolValue
	case *qdrant.Value_StructValue:
		fields := k.StructValue.GetFields()
		m := make(map[string]any, len(fields))
		for name, fv := range fields {
			m[name] = decodeValue(fv)
		}
		return m
	case *qdrant.Value_ListValue:
		values := k.ListValue.GetValues()
		list := make([]any, len(values))
		for i, lv := range values {
			list[i] = decodeValue(lv)
		}
		return list
	case *qdrant.Value_NullValue:
		return nil
	default:
		return nil
	}
}

// String describes the endpoint for logs, without the API key.
func (c Config) String() string {
	host, port, tls := endpoint(c.URL, c.GRPCPort)
	return fmt.Sprintf("%s:%d (tls=%t)", host, port, tls)
}
