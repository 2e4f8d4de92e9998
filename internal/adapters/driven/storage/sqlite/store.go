package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// DefaultPath is the database file used when none is given.
const DefaultPath = "data/questions.db"

// Store is a SQLite-based store for questions waiting for a human answer.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at dbPath.
// If dbPath is empty, defaults to data/questions.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = DefaultPath
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// QuestionStore returns a QuestionStore interface backed by this store.
func (s *Store) QuestionStore() driven.QuestionStore {
	return &questionStore{store: s}
}

// migrate applies every migration newer than the recorded version.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	steps, err := migrations.Up()
	if err != nil {
		return err
	}
	for _, m := range steps {
		if m.Version <= current {
			continue
		}
		if _, err := s.db.Exec(m.SQL); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
	}
	return nil
}

// ==================== Question Store ====================

// questionStore implements driven.QuestionStore.
type questionStore struct {
	store *Store
}

var _ driven.QuestionStore = (*questionStore)(nil)

// Record stores the question unless its hash is already pending and
// returns the number pending afterwards.
func (q *questionStore) Record(ctx context.Context, question domain.PendingQuestion) (int, error) {
	createdAt := question.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := q.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pending_questions (hash, content, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, question.Hash, question.Content, createdAt.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("inserting question: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM pending_questions").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting questions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing question: %w", err)
	}
	return count, nil
}

// Get retrieves a pending question by hash.
func (q *questionStore) Get(ctx context.Context, hash string) (*domain.PendingQuestion, error) {
	row := q.store.db.QueryRowContext(ctx, `
		SELECT hash, content, created_at FROM pending_questions WHERE hash = ?
	`, hash)

	question, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying question: %w", err)
	}
	return question, nil
}

// List returns pending questions, oldest first.
func (q *questionStore) List(ctx context.Context) ([]domain.PendingQuestion, error) {
	rows, err := q.store.db.QueryContext(ctx, `
		SELECT hash, content, created_at FROM pending_questions
		ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.PendingQuestion
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		questions = append(questions, *question)
	}
	return questions, rows.Err()
}

// Delete removes a pending question.
func (q *questionStore) Delete(ctx context.Context, hash string) error {
	result, err := q.store.db.ExecContext(ctx, "DELETE FROM pending_questions WHERE hash = ?", hash)
	if err != nil {
		return fmt.Errorf("deleting question: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the number of pending questions.
func (q *questionStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := q.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pending_questions").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting questions: %w", err)
	}
	return count, nil
}

// ==================== Helper Functions ====================

type scanner interface {
	Scan(dest ...any) error
}

// scanQuestion scans a single question row.
func scanQuestion(row scanner) (*domain.PendingQuestion, error) {
	var question domain.PendingQuestion
	var createdAt int64
	if err := row.Scan(&question.Hash, &question.Content, &createdAt); err != nil {
		return nil, err
	}
	question.CreatedAt = time.Unix(0, createdAt)
	return &question, nil
}
