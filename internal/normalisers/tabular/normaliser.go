// Package tabular normalises CSV files into one Document per row.
//
// Files whose base name has a registered Template are rendered with it;
// every other file uses the generic "column: value" renderer.
package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
	"github.com/ncdb-labs/ncdb-chat/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Template renders the rows of one known file.
type Template struct {
	// Columns must all be present in the header.
	Columns []string
	// Render builds the Document content for one row.
	Render func(row map[string]string) string
}

// DefaultTemplates returns the templates for the curated reference tables.
func DefaultTemplates() map[string]Template {
	return map[string]Template{
		"car_model.csv": {
			Columns: []string{"cadillac_car_model", "introduction"},
			Render: func(row map[string]string) string {
				return fmt.Sprintf("Answer that respond %s: %s", row["cadillac_car_model"], row["introduction"])
			},
		},
		"important-cadillac-categories.csv": {
			Columns: []string{"Introduction/examples", "Link"},
			Render: func(row map[string]string) string {
				return fmt.Sprintf("%s at link: %s", row["Introduction/examples"], row["Link"])
			},
		},
	}
}

// Normaliser handles CSV files.
type Normaliser struct {
	templates map[string]Template
}

// New creates a tabular normaliser with DefaultTemplates.
func New() *Normaliser {
	return &Normaliser{templates: DefaultTemplates()}
}

// WithTemplate registers a template for files with the given base name.
func (n *Normaliser) WithTemplate(name string, tmpl Template) *Normaliser {
	n.templates[name] = tmpl
	return n
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".csv"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 80
}

// Normalise emits one Document per data row, numbered from 1.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawFile) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	r := csv.NewReader(bytes.NewReader(raw.Content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", raw.SourceID, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	render := genericRenderer(header)
	if tmpl, ok := n.templates[raw.Name()]; ok {
		if missing := missingColumns(header, tmpl.Columns); len(missing) > 0 {
			return nil, fmt.Errorf("%s lacks columns %s: %w",
				raw.SourceID, strings.Join(missing, ", "), domain.ErrTemplateMismatch)
		}
		render = tmpl.Render
	}

	var docs []domain.Document
	for rowNumber := 1; ; rowNumber++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d of %s: %w", rowNumber, raw.SourceID, err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}

		docs = append(docs, domain.Document{
			ID:       normalisers.DocumentID(raw.SourceID, rowNumber),
			SourceID: raw.SourceID,
			Sequence: rowNumber,
			Content:  render(row),
			Metadata: map[string]any{"source": raw.Name(), "num": rowNumber},
		})
	}
	return docs, nil
}

// genericRenderer writes one "column: value" line per header column.
func genericRenderer(header []string) func(map[string]string) string {
	return func(row map[string]string) string {
		lines := make([]string, len(header))
		for i, col := range header {
			lines[i] = strings.TrimSpace(col) + ": " + strings.TrimSpace(row[col])
		}
		return strings.Join(lines, "\n")
	}
}

func missingColumns(header, required []string) []string {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}
