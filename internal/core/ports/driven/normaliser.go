package driven

import (
	"context"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

// Normaliser transforms one raw source file into Documents.
// Each normaliser handles specific file extensions.
type Normaliser interface {
	// SupportedExtensions returns the lower-cased extensions, with dot,
	// this normaliser handles.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Structured formats should return 50-100.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise produces one Document per logical record in the file.
	Normalise(ctx context.Context, raw *domain.RawFile) ([]domain.Document, error)
}

// NormaliserRegistry selects the appropriate normaliser for a raw file.
type NormaliserRegistry interface {
	// Normalise transforms a raw file using the best matching normaliser.
	Normalise(ctx context.Context, raw *domain.RawFile) ([]domain.Document, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedExtensions returns all extensions that can be normalised.
	SupportedExtensions() []string
}
