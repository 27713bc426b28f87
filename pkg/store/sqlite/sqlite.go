// Package sqlite is a store.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/store"
)

// Store keeps one row per document with the record as a JSON blob.
type Store struct {
	db  *sql.DB
	now store.Clock
}

// Open opens or creates the database at path and migrates its schema.
// Use ":memory:" for a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "open database %s", path)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "migrate database %s", path)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		version INTEGER NOT NULL,
		shapes INTEGER NOT NULL DEFAULT 0,
		connections INTEGER NOT NULL DEFAULT 0,
		data JSON NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SetClock replaces the time source.
func (s *Store) SetClock(c store.Clock) { s.now = c }

func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	return get(ctx, s.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func get(ctx context.Context, q querier, id string) (*store.Record, error) {
	var data []byte
	err := q.QueryRowContext(ctx, `SELECT data FROM documents WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "query document %s", id)
	}
	return store.Unmarshal(data)
}

func (s *Store) Put(ctx context.Context, rec *store.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "begin transaction")
	}
	defer tx.Rollback()

	var stored *store.Record
	if rec != nil && rec.ID != "" {
		old, err := get(ctx, tx, rec.ID)
		switch {
		case err == nil:
			stored = old
		case !errors.Is(err, errors.ErrCodeNotFound):
			return err
		}
	}
	next, err := store.Prepare(rec, stored, s.now())
	if err != nil {
		return err
	}
	data, err := store.Marshal(next)
	if err != nil {
		return err
	}

	sum := next.Summarize()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, name, version, shapes, connections, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			shapes = excluded.shapes,
			connections = excluded.connections,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, next.ID, next.Name, next.Version, sum.Shapes, sum.Connections, data,
		formatTime(next.CreatedAt), formatTime(next.UpdatedAt))
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "write document %s", next.ID)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "commit document %s", next.ID)
	}
	*rec = *next
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "delete document %s", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.NotFound(id)
	}
	return nil
}

// List reads the indexed columns only; documents are not decoded.
func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, version, shapes, connections, updated_at
		FROM documents
	`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "list documents")
	}
	defer rows.Close()

	out := []store.Summary{}
	for rows.Next() {
		var (
			sum     store.Summary
			updated string
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Version, &sum.Shapes, &sum.Connections, &updated); err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "scan document")
		}
		if sum.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "document %s: bad timestamp", sum.ID)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "list documents")
	}
	store.SortSummaries(out)
	return out, nil
}

func (s *Store) Close() error { return s.db.Close() }

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

var _ store.Store = (*Store)(nil)
