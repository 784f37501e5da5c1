// Package memory persists accepted (request, command) pairs in SQLite and
// ranks them by embedding similarity for few-shot prompting.
package memory

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/ports"
)

const schemaVersion = 1

var sqliteHeader = []byte("SQLite format 3\x00")

// Option customizes a store.
type Option func(*SQLiteStore)

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// SQLiteStore implements ports.MemoryStore on a single SQLite file. Rows are
// only ever inserted or deleted, never rewritten.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	embedder ports.Embedder
	now      func() time.Time
	mu       sync.Mutex
}

// Open creates (or opens) the database at path. An existing file that
// cannot be read as a memory store yields domain.ErrStoreCorrupt.
func Open(ctx context.Context, path string, embedder ports.Embedder, opts ...Option) (*SQLiteStore, error) {
	if embedder == nil {
		return nil, errors.New("memory store requires an embedder")
	}
	existing, err := checkExisting(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create memory dir: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, path: path, embedder: embedder, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.init(ctx, existing); err != nil {
		_ = db.Close()
		if existing {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrStoreCorrupt, path, err)
		}
		return nil, err
	}
	return store, nil
}

func dsn(path string) string {
	return "file:" + filepath.ToSlash(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// checkExisting reports whether path holds data and rejects files that are
// not SQLite databases at all.
func checkExisting(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", domain.ErrStoreCorrupt, err)
	}
	defer f.Close()
	header := make([]byte, len(sqliteHeader))
	n, err := io.ReadFull(f, header)
	if n == 0 && (errors.Is(err, io.EOF) || err == nil) {
		return false, nil
	}
	if err != nil || !bytes.Equal(header, sqliteHeader) {
		return true, fmt.Errorf("%w: %s is not a SQLite database", domain.ErrStoreCorrupt, path)
	}
	return true, nil
}

func (s *SQLiteStore) init(ctx context.Context, existing bool) error {
	if err := s.db.PingContext(ctx); err != nil {
		return err
	}
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	switch {
	case version > schemaVersion:
		return fmt.Errorf("memory store schema version %d is newer than supported %d", version, schemaVersion)
	case version == 0:
		if err := s.migrate(ctx); err != nil {
			return err
		}
	}
	if existing {
		var result string
		if err := s.db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&result); err != nil {
			return err
		}
		if result != "ok" {
			return fmt.Errorf("quick_check: %s", result)
		}
	}
	return nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memory_records (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			query TEXT NOT NULL,
			response TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			embedding BLOB NOT NULL,
			embedder TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_memory_records_created_at ON memory_records(created_at, seq)`,
		fmt.Sprintf("PRAGMA user_version = %d", schemaVersion),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Add implements ports.MemoryStore.
func (s *SQLiteStore) Add(ctx context.Context, query, response string) (domain.MemoryRecord, bool, error) {
	if strings.TrimSpace(response) == "" {
		return domain.MemoryRecord{}, false, nil
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return domain.MemoryRecord{}, false, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}
	if len(vec) == 0 {
		return domain.MemoryRecord{}, false, fmt.Errorf("%w: %s returned an empty vector", domain.ErrEmbeddingFailed, s.embedder.Name())
	}

	record := domain.MemoryRecord{
		ID:        uuid.NewString(),
		Query:     query,
		Response:  response,
		CreatedAt: s.now(),
		Embedding: vec,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.MemoryRecord{}, false, err
	}
	defer tx.Rollback() //nolint:errcheck
	_, err = tx.ExecContext(ctx, `INSERT INTO memory_records (id, query, response, created_at, embedding, embedder)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Query,
		record.Response,
		record.CreatedAt.UnixNano(),
		encodeVector(vec),
		s.embedder.Name(),
	)
	if err != nil {
		return domain.MemoryRecord{}, false, fmt.Errorf("insert memory record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.MemoryRecord{}, false, fmt.Errorf("commit memory record: %w", err)
	}
	return record, true, nil
}

type scoredRecord struct {
	match domain.MemoryMatch
	seq   int64
}

// Query implements ports.MemoryStore. Ties in distance go to the newer
// record, then to the later insertion.
func (s *SQLiteStore) Query(ctx context.Context, text string, n int) ([]domain.MemoryMatch, error) {
	if n <= 0 {
		return []domain.MemoryMatch{}, nil
	}
	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []domain.MemoryMatch{}, nil
	}

	target, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT seq, id, query, response, created_at, embedding
		FROM memory_records WHERE embedder = ?`, s.embedder.Name())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scored []scoredRecord
	for rows.Next() {
		var (
			seq       int64
			rec       domain.MemoryRecord
			createdAt int64
			blob      []byte
		)
		if err := rows.Scan(&seq, &rec.ID, &rec.Query, &rec.Response, &createdAt, &blob); err != nil {
			return nil, err
		}
		vec, ok := decodeVector(blob)
		if !ok || len(vec) != len(target) {
			continue
		}
		dist, err := cosineDistance(target, vec)
		if err != nil {
			continue
		}
		rec.CreatedAt = time.Unix(0, createdAt)
		rec.Embedding = vec
		scored = append(scored, scoredRecord{match: domain.MemoryMatch{Record: rec, Distance: dist}, seq: seq})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.match.Distance != b.match.Distance {
			return a.match.Distance < b.match.Distance
		}
		if !a.match.Record.CreatedAt.Equal(b.match.Record.CreatedAt) {
			return a.match.Record.CreatedAt.After(b.match.Record.CreatedAt)
		}
		return a.seq > b.seq
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	matches := make([]domain.MemoryMatch, 0, len(scored))
	for _, sr := range scored {
		matches = append(matches, sr.match)
	}
	return matches, nil
}

// Count implements ports.MemoryStore.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM memory_records").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// List returns every record oldest first, without embeddings.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.MemoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, query, response, created_at
		FROM memory_records ORDER BY created_at ASC, seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.MemoryRecord
	for rows.Next() {
		var rec domain.MemoryRecord
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Response, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(0, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Evict deletes the oldest records (created_at, then insertion order) until
// at most maxSize remain, and returns how many were removed.
func (s *SQLiteStore) Evict(ctx context.Context, maxSize int) (int, error) {
	if maxSize < 0 {
		maxSize = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	excess := count - maxSize
	if excess <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM memory_records WHERE seq IN (
		SELECT seq FROM memory_records ORDER BY created_at ASC, seq ASC LIMIT ?)`, excess)
	if err != nil {
		return 0, fmt.Errorf("evict memory records: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

// Clear deletes all records.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM memory_records")
	return err
}

// Path implements ports.MemoryStore.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close checkpoints the write-ahead log and closes the handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	err := s.db.Close()
	s.db = nil
	return err
}

var _ ports.MemoryStore = (*SQLiteStore)(nil)
