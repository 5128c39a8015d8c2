package request

import (
	"fmt"

	"github.com/kailas-cloud/clubsearch/internal/domain"
)

// DefaultLimit is the number of matches requested when the caller gives none.
const DefaultLimit = 5

// Request is a validated search query. Immutable once built.
type Request struct {
	query          string
	limit          int
	scoreThreshold *float64
}

// New validates search parameters.
// scoreThreshold is optional and passed to Qdrant as-is: no range is enforced.
func New(query string, limit int, scoreThreshold *float64) (Request, error) {
	if query == "" {
		return Request{}, fmt.Errorf("query is required: %w", domain.ErrInvalidQuery)
	}
	if limit < 1 {
		return Request{}, fmt.Errorf("limit must be a positive integer, got %d: %w", limit, domain.ErrInvalidQuery)
	}

	r := Request{query: query, limit: limit}
	if scoreThreshold != nil {
		v := *scoreThreshold
		r.scoreThreshold = &v
	}
	return r, nil
}

// Query returns the search text.
func (r *Request) Query() string { return r.query }

// Limit returns the maximum number of matches to request.
func (r *Request) Limit() int { return r.limit }

// ScoreThreshold returns the minimum score and whether one was set.
func (r *Request) ScoreThreshold() (float64, bool) {
	if r.scoreThreshold == nil {
		return 0, false
	}
	return *r.scoreThreshold, true
}
