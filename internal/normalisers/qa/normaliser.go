// Package qa normalises JSON arrays of question and answer pairs.
package qa

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
	"github.com/ncdb-labs/ncdb-chat/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// record is one entry of a QA file. Missing fields render as empty.
type record struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Normaliser handles JSON QA files.
type Normaliser struct{}

// New creates a new QA normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".json"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 80
}

// Normalise emits one Document per record, numbered from 0.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	var records []record
	if err := json.Unmarshal(raw.Content, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", raw.SourceID, err)
	}

	docs := make([]domain.Document, 0, len(records))
	for i, rec := range records {
		docs = append(docs, domain.Document{
			ID:       normalisers.DocumentID(raw.SourceID, i),
			SourceID: raw.SourceID,
			Sequence: i,
			Content:  fmt.Sprintf("question: %s; answer: %s", rec.Question, rec.Answer),
			Metadata: map[string]any{"source": raw.Name(), "num": i},
		})
	}
	return docs, nil
}
