package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type no normaliser handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrTemplateMismatch indicates a tabular file matched a registered
	// template but lacks the columns the template needs.
	ErrTemplateMismatch = errors.New("tabular template mismatch")

	// ErrMissingReference indicates a required reference file is absent
	// from the corpus. Ingestion cannot proceed without it.
	ErrMissingReference = errors.New("missing required reference file")

	// ErrNoChunks indicates ingestion produced nothing to index.
	ErrNoChunks = errors.New("no chunks produced")

	// ErrEmbeddingUnavailable indicates the embedding model is not loaded.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates the vector index is not loaded.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch indicates a vector has the wrong length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrCorruptIndex indicates a persisted index bundle is inconsistent.
	ErrCorruptIndex = errors.New("corrupt index bundle")

	// ErrGeneratorUnavailable indicates the generation model is not configured.
	ErrGeneratorUnavailable = errors.New("generator unavailable")

	// ErrAlreadyRunning indicates another query service already holds
	// the listening address.
	ErrAlreadyRunning = errors.New("query service already running")

	// ErrEmptyQuery indicates a request carried no question.
	ErrEmptyQuery = errors.New("empty query")
)
