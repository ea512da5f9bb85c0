package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration indicates settings that cannot be used,
	// such as a chunk overlap that is not smaller than the chunk size.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnsupportedFormat indicates an upload whose format has no extractor.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrNoExtractableText indicates an upload produced no page text.
	// Scanned documents need OCR before they can be ingested.
	ErrNoExtractableText = errors.New("no extractable text found")

	// Retrieval Errors.

	// ErrDimensionMismatch indicates two embeddings of different widths were compared
	// or a chunk batch does not match the width already held by a session.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyStore indicates a session holds no chunks when at least one result was required.
	ErrEmptyStore = errors.New("session store is empty")

	// AI Provider Errors.

	// ErrEmbeddingUnavailable indicates the embedding provider could not be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM provider could not be reached or is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
