package flat

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// FormatVersion is the bundle layout version written by Save.
const FormatVersion = 1

const (
	manifestFile = "manifest.toml"
	databaseFile = "index.db"
)

// Manifest describes a persisted bundle.
type Manifest struct {
	FormatVersion int       `toml:"format_version"`
	BuildID       string    `toml:"build_id"`
	Model         string    `toml:"model"`
	Dimensions    int       `toml:"dimensions"`
	Chunks        int       `toml:"chunks"`
	CreatedAt     time.Time `toml:"created_at"`
}

const schema = `
CREATE TABLE chunks (
    position       INTEGER PRIMARY KEY,
    id             TEXT NOT NULL,
    source_id      TEXT NOT NULL,
    sequence       INTEGER NOT NULL,
    chunk_position INTEGER NOT NULL,
    char_offset    INTEGER NOT NULL,
    content        TEXT NOT NULL,
    vector         BLOB NOT NULL
);
`

// Save persists the index as a bundle directory at path, replacing any
// existing bundle only once the new one is complete.
func (idx *Index) Save(path string) error {
	if idx.buildID == "" {
		idx.buildID = uuid.NewString()
	}
	if idx.createdAt.IsZero() {
		idx.createdAt = time.Now().UTC().Truncate(time.Second)
	}

	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0700); err != nil {
		return fmt.Errorf("flat: create parent directory: %w", err)
	}

	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("flat: create temp bundle: %w", err)
	}
	if err := idx.writeBundle(tmp); err != nil {
		os.RemoveAll(tmp)
		return err
	}

	if err := swapDir(tmp, path); err != nil {
		os.RemoveAll(tmp)
		return err
	}
	return nil
}

// Load reads a complete bundle. A missing bundle wraps
// domain.ErrIndexUnavailable; an inconsistent one wraps
// domain.ErrCorruptIndex.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(path, manifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("flat: no bundle at %s: %w", path, domain.ErrIndexUnavailable)
		}
		return nil, fmt.Errorf("flat: read manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("flat: parse manifest: %v: %w", err, domain.ErrCorruptIndex)
	}
	if m.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("flat: format version %d, want %d: %w", m.FormatVersion, FormatVersion, domain.ErrCorruptIndex)
	}
	if m.Dimensions <= 0 {
		return nil, fmt.Errorf("flat: manifest dimensions %d: %w", m.Dimensions, domain.ErrCorruptIndex)
	}

	dbPath := filepath.Join(path, databaseFile)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("flat: %s: %v: %w", databaseFile, err, domain.ErrCorruptIndex)
	}

	idx := &Index{
		dimensions: m.Dimensions,
		model:      m.Model,
		buildID:    m.BuildID,
		createdAt:  m.CreatedAt,
	}
	if err := idx.readRows(dbPath); err != nil {
		return nil, err
	}
	if idx.Len() != m.Chunks {
		return nil, fmt.Errorf("flat: manifest lists %d chunks, found %d: %w", m.Chunks, idx.Len(), domain.ErrCorruptIndex)
	}
	return idx, nil
}

// ReadManifest returns the manifest of the bundle at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(path, manifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Manifest returns the manifest describing this index.
func (idx *Index) Manifest() Manifest {
	return Manifest{
		FormatVersion: FormatVersion,
		BuildID:       idx.buildID,
		Model:         idx.model,
		Dimensions:    idx.dimensions,
		Chunks:        len(idx.chunks),
		CreatedAt:     idx.createdAt,
	}
}

func (idx *Index) writeBundle(dir string) error {
	db, err := sql.Open("sqlite", filepath.Join(dir, databaseFile))
	if err != nil {
		return fmt.Errorf("flat: open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("flat: create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("flat: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.Prepare(`
		INSERT INTO chunks (position, id, source_id, sequence, chunk_position, char_offset, content, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("flat: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range idx.chunks {
		if _, err := stmt.Exec(i, c.ID, c.SourceID, c.Sequence, c.Position, c.Offset, c.Content,
			float32SliceToBytes(idx.vectors[i])); err != nil {
			return fmt.Errorf("flat: insert chunk %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("flat: commit: %w", err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("flat: close database: %w", err)
	}

	data, err := toml.Marshal(idx.Manifest())
	if err != nil {
		return fmt.Errorf("flat: encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), data, 0600); err != nil {
		return fmt.Errorf("flat: write manifest: %w", err)
	}
	return nil
}

func (idx *Index) readRows(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("flat: open database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT id, source_id, sequence, chunk_position, char_offset, content, vector
		FROM chunks ORDER BY position
	`)
	if err != nil {
		return fmt.Errorf("flat: query chunks: %v: %w", err, domain.ErrCorruptIndex)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.SourceID, &c.Sequence, &c.Position, &c.Offset, &c.Content, &blob); err != nil {
			return fmt.Errorf("flat: scan chunk: %v: %w", err, domain.ErrCorruptIndex)
		}
		if len(blob) != idx.dimensions*4 {
			return fmt.Errorf("flat: chunk %s has %d vector bytes, want %d: %w",
				c.ID, len(blob), idx.dimensions*4, domain.ErrCorruptIndex)
		}
		idx.chunks = append(idx.chunks, c)
		idx.vectors = append(idx.vectors, bytesToFloat32Slice(blob))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("flat: read chunks: %v: %w", err, domain.ErrCorruptIndex)
	}
	return nil
}

// swapDir moves src to dst, replacing dst if present. The previous
// bundle is restored if the final rename fails.
func swapDir(src, dst string) error {
	var backup string
	if _, err := os.Stat(dst); err == nil {
		backup = fmt.Sprintf("%s.old-%d", dst, time.Now().UnixNano())
		if err := os.Rename(dst, backup); err != nil {
			return fmt.Errorf("flat: move old bundle aside: %w", err)
		}
	}

	if err := os.Rename(src, dst); err != nil {
		if backup != "" {
			os.Rename(backup, dst) //nolint:errcheck // best effort restore
		}
		return fmt.Errorf("flat: install bundle: %w", err)
	}

	if backup != "" {
		os.RemoveAll(backup)
	}
	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// Builder implements driven.IndexBuilder with the flat index.
type Builder struct{}

// Ensure Builder implements the interface.
var _ driven.IndexBuilder = Builder{}

// BuildIndex embeds the chunks and saves the bundle at path.
func (Builder) BuildIndex(ctx context.Context, path string, chunks []domain.Chunk, embedder driven.EmbeddingService) error {
	idx, err := Build(ctx, chunks, embedder)
	if err != nil {
		return err
	}
	return idx.Save(path)
}
