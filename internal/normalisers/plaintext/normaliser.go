// Package plaintext normalises free text files into a single Document.
package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
	"github.com/ncdb-labs/ncdb-chat/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise returns the whole file as one Document. Files that are not
// valid UTF-8 are decoded as Windows-1252.
// Chunking is handled by the PostProcessor pipeline.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content, err := decode(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", raw.SourceID, err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	return []domain.Document{{
		ID:       normalisers.DocumentID(raw.SourceID, 0),
		SourceID: raw.SourceID,
		Sequence: 0,
		Content:  content,
		Metadata: map[string]any{"source": raw.Name()},
	}}, nil
}

func decode(b []byte) (string, error) {
	b = trimBOM(b)
	if utf8.Valid(b) {
		return string(b), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
