package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fieldseal/fieldseal/docstore/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteBackend stores documents as JSON in a single SQLite table. Blind-index
// lookups use json_extract over the stored document, so no per-collection
// schema is needed.
type SQLiteBackend struct {
	db *sql.DB
}

var _ Backend = (*SQLiteBackend)(nil)

// NewSQLiteBackend opens (creating if needed) the database at path and applies
// pending schema migrations. path can be ":memory:" for tests.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("docstore: opening sqlite database: %w", err)
	}

	// An in-memory database exists per connection; the pool must not open a
	// second one.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("docstore: %s: %w", pragma, err)
		}
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteBackend{db: db}, nil
}

// Put implements Backend.
func (b *SQLiteBackend) Put(ctx context.Context, collection, id string, doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES (?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET doc = excluded.doc`,
		collection, id, string(raw))
	return err
}

// Get implements Backend.
func (b *SQLiteBackend) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	var raw string
	err := b.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return nil, err
	}
	return decodeDoc(raw)
}

// FindByHash implements Backend using a json_extract comparison on the stored
// document. Hash fields are engine-generated names, safe to splice into a path.
func (b *SQLiteBackend) FindByHash(ctx context.Context, collection, hashField, digest string) ([]map[string]any, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT doc FROM documents
		 WHERE collection = ? AND json_extract(doc, ?) = ?
		 ORDER BY id`,
		collection, "$."+hashField, digest)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocs(rows)
}

// List implements Backend.
func (b *SQLiteBackend) List(ctx context.Context, collection string) ([]map[string]any, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT doc FROM documents WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocs(rows)
}

// Delete implements Backend.
func (b *SQLiteBackend) Delete(ctx context.Context, collection, id string) error {
	_, err := b.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	return err
}

// ReplaceAll implements Backend in a single transaction.
func (b *SQLiteBackend) ReplaceAll(ctx context.Context, collection string, docs []map[string]any) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ?`, collection); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, doc := range docs {
		id, _ := doc["id"].(string)
		if id == "" {
			return fmt.Errorf("docstore: replace-all document without id in %q", collection)
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, collection, id, string(raw)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Close implements Backend.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func decodeDoc(raw string) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("docstore: corrupt document: %w", err)
	}
	return doc, nil
}

func collectDocs(rows *sql.Rows) ([]map[string]any, error) {
	var docs []map[string]any
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		doc, err := decodeDoc(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
