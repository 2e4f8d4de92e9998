// Package pdf normalises PDF files into one Document per page.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
	"github.com/ncdb-labs/ncdb-chat/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// PageExtractor returns the plain text of every page, in page order.
// Pages without text are returned as empty strings.
type PageExtractor interface {
	Pages(content []byte) ([]string, error)
}

// Normaliser handles PDF documents.
type Normaliser struct {
	extractor PageExtractor
}

// New creates a PDF normaliser backed by the pure Go reader.
func New() *Normaliser {
	return &Normaliser{extractor: ReaderExtractor{}}
}

// NewWithExtractor creates a normaliser with a custom page extractor.
func NewWithExtractor(extractor PageExtractor) *Normaliser {
	return &Normaliser{extractor: extractor}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise emits one Document per page with extractable text. Sequence
// is the page index from 0.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawFile) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	pages, err := n.extractor.Pages(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", raw.SourceID, err)
	}

	var docs []domain.Document
	for i, text := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, domain.Document{
			ID:       normalisers.DocumentID(raw.SourceID, i),
			SourceID: raw.SourceID,
			Sequence: i,
			Content:  text,
			Metadata: map[string]any{"source": raw.Name(), "page": i},
		})
	}
	return docs, nil
}

// ReaderExtractor extracts page text with github.com/ledongthuc/pdf.
type ReaderExtractor struct{}

// Pages implements PageExtractor. The reader panics on some malformed
// files; that is reported as an error.
func (ReaderExtractor) Pages(content []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	if len(content) == 0 {
		return nil, fmt.Errorf("empty file: %w", domain.ErrInvalidInput)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	total := reader.NumPage()
	pages = make([]string, total)
	for i := 1; i <= total; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages[i-1] = text
	}
	return pages, nil
}
