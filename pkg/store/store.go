// Package store persists embeddings and comparison history in SQLite.
//
// The store is a side-car for the comparer: computed embeddings are cached
// by content hash so repeated comparisons of the same text skip the
// embedding step, and every scored comparison can be logged for later
// inspection. Built on modernc.org/sqlite, so no CGO is required.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hazalci/textcompare/internal/encoding"
)

// Common errors
var (
	// ErrNotFound is returned when a cached vector is not present
	ErrNotFound = errors.New("vector not found")

	// ErrStoreClosed is returned when using a closed store
	ErrStoreClosed = errors.New("store is closed")
)

// StoreError wraps errors with operation context
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("store: %v", e.Err)
	}
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return errors.Is(e.Err, target) }

func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// Comparison is one logged comparison.
type Comparison struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	Model     string    `json:"model,omitempty"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats provides statistics about the store.
type Stats struct {
	Vectors     int64 `json:"vectors"`
	Comparisons int64 `json:"comparisons"`
	Size        int64 `json:"size"`
}

// Store is a SQLite-backed embedding cache and comparison log.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// Open opens or creates a store at the given path. Call Init before use.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapError("open", err)
	}
	// modernc.org/sqlite serializes writes per connection; a single
	// connection avoids SQLITE_BUSY on concurrent writers.
	db.SetMaxOpenConns(1)
	return &Store{db: db, path: path}, nil
}

// Init creates the schema if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return wrapError("init", ErrStoreClosed)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS vectors (
		content_hash TEXT PRIMARY KEY,
		model        TEXT NOT NULL DEFAULT '',
		vector       BLOB NOT NULL,
		dims         INTEGER NOT NULL,
		created_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS comparisons (
		id         TEXT PRIMARY KEY,
		source     TEXT NOT NULL,
		target     TEXT NOT NULL,
		model      TEXT NOT NULL DEFAULT '',
		score      REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_comparisons_created ON comparisons(created_at);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return wrapError("init", err)
	}
	return nil
}

// contentHash derives the cache key for a (model, text) pair.
func contentHash(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// GetVector returns the cached embedding for a text under a model.
// Returns ErrNotFound when the text has not been embedded yet.
func (s *Store) GetVector(ctx context.Context, model, text string) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, wrapError("get_vector", ErrStoreClosed)
	}

	var blob []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT vector FROM vectors WHERE content_hash = ?",
		contentHash(model, text),
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, wrapError("get_vector", ErrNotFound)
	}
	if err != nil {
		return nil, wrapError("get_vector", err)
	}

	vec, err := encoding.DecodeVector(blob)
	if err != nil {
		return nil, wrapError("get_vector", err)
	}
	return vec, nil
}

// PutVector caches an embedding for a text under a model.
func (s *Store) PutVector(ctx context.Context, model, text string, vector []float32) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return wrapError("put_vector", ErrStoreClosed)
	}
	if err := encoding.ValidateVector(vector); err != nil {
		return wrapError("put_vector", err)
	}

	blob, err := encoding.EncodeVector(vector)
	if err != nil {
		return wrapError("put_vector", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vectors (content_hash, model, vector, dims)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			model = excluded.model,
			vector = excluded.vector,
			dims = excluded.dims
	`, contentHash(model, text), model, blob, len(vector))
	return wrapError("put_vector", err)
}

// LogComparison appends a comparison to the history. A missing ID is
// filled with a fresh UUID and a zero CreatedAt with the current time.
func (s *Store) LogComparison(ctx context.Context, c *Comparison) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return wrapError("log_comparison", ErrStoreClosed)
	}

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comparisons (id, source, target, model, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.Source, c.Target, c.Model, c.Score, c.CreatedAt)
	return wrapError("log_comparison", err)
}

// Recent returns the most recent comparisons, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Comparison, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, wrapError("recent", ErrStoreClosed)
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, target, model, score, created_at
		FROM comparisons
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, wrapError("recent", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Comparison
	for rows.Next() {
		var c Comparison
		if err := rows.Scan(&c.ID, &c.Source, &c.Target, &c.Model, &c.Score, &c.CreatedAt); err != nil {
			return nil, wrapError("recent", err)
		}
		out = append(out, &c)
	}
	return out, wrapError("recent", rows.Err())
}

// Stats returns counts and the database file size.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Stats{}, wrapError("stats", ErrStoreClosed)
	}

	var st Stats
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors").Scan(&st.Vectors); err != nil {
		return Stats{}, wrapError("stats", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comparisons").Scan(&st.Comparisons); err != nil {
		return Stats{}, wrapError("stats", err)
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err == nil {
			st.Size = pageCount * pageSize
		}
	}
	return st, nil
}

// Clear removes all cached vectors and logged comparisons.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return wrapError("clear", ErrStoreClosed)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM vectors"); err != nil {
		return wrapError("clear", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM comparisons"); err != nil {
		return wrapError("clear", err)
	}
	return nil
}

// Close closes the store. Further calls return ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return wrapError("close", s.db.Close())
}
