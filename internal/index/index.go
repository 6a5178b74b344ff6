package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the database file kept next to the config.
const FileName = "index.db"

// Index is the SQLite projection.
type Index struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps writes and the reads that follow them on the same handle.
	db.SetMaxOpenConns(1)
	ix := &Index{db: db}
	if err := ix.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return ix, nil
}

// Close closes the database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) ensureSchema(ctx context.Context) error {
	ddl := []string{`
CREATE TABLE IF NOT EXISTS entries (
  doc TEXT NOT NULL,
  line INTEGER NOT NULL,
  category TEXT NOT NULL,
  title TEXT NOT NULL,
  state TEXT NOT NULL,
  date TEXT NOT NULL,
  seconds INTEGER NOT NULL,
  completed INTEGER NOT NULL,
  skipped INTEGER NOT NULL,
  PRIMARY KEY (doc, line)
);`, `
CREATE TABLE IF NOT EXISTS items (
  doc TEXT NOT NULL,
  line INTEGER NOT NULL,
  position INTEGER NOT NULL,
  name TEXT NOT NULL,
  state TEXT NOT NULL,
  seconds INTEGER NOT NULL,
  PRIMARY KEY (doc, line, position)
);`,
		`CREATE INDEX IF NOT EXISTS entries_date ON entries (category, date);`,
	}
	for _, stmt := range ddl {
		if _, err := ix.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Replace swaps the whole projection for entries in one transaction.
func (ix *Index) Replace(ctx context.Context, entries []Entry) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM items`, `DELETE FROM entries`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset index: %w", err)
		}
	}
	for _, e := range entries {
		if err := upsert(ctx, tx, e); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Upsert writes or refreshes a single entry and its items.
func (ix *Index) Upsert(ctx context.Context, e Entry) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := upsert(ctx, tx, e); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func upsert(ctx context.Context, tx *sql.Tx, e Entry) error {
	const entryStmt = `
INSERT INTO entries (doc, line, category, title, state, date, seconds, completed, skipped)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(doc, line) DO UPDATE SET
  category=excluded.category,
  title=excluded.title,
  state=excluded.state,
  date=excluded.date,
  seconds=excluded.seconds,
  completed=excluded.completed,
  skipped=excluded.skipped;
`
	_, err := tx.ExecContext(ctx, entryStmt,
		e.Doc, e.Line, e.Category, e.Title, e.State, e.Date, e.Seconds, e.Completed, e.Skipped)
	if err != nil {
		return fmt.Errorf("upsert entry %s:%d: %w", e.Doc, e.Line, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE doc = ? AND line = ?`, e.Doc, e.Line); err != nil {
		return fmt.Errorf("clear items %s:%d: %w", e.Doc, e.Line, err)
	}
	for _, item := range e.Items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO items (doc, line, position, name, state, seconds) VALUES (?, ?, ?, ?, ?, ?)`,
			e.Doc, e.Line, item.Position, item.Name, item.State, item.Seconds)
		if err != nil {
			return fmt.Errorf("insert item %s:%d/%d: %w", e.Doc, e.Line, item.Position, err)
		}
	}
	return nil
}
