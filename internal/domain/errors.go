package domain

import "errors"

var (
	// ErrUsage signals a command line invocation without the required query.
	ErrUsage = errors.New("usage")
	// ErrInvalidQuery signals search parameters rejected before any network call.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrEmbeddingProviderError signals a client-side embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
