package driven

import (
	"context"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

// Connector reads raw source files from the corpus.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Validate checks the corpus location exists and is readable.
	Validate(ctx context.Context) error

	// FullSync emits every supported file in a deterministic order.
	// The error channel carries per-file read failures; both channels
	// are closed when the walk finishes.
	FullSync(ctx context.Context) (<-chan domain.RawFile, <-chan error)
}
