// Package sqlite provides the SQLite-backed command store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/redock-cli/redock/internal/store"
)

// Store persists command records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS categories (
    name    TEXT    PRIMARY KEY,
    last_id INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS commands (
    category   TEXT    NOT NULL REFERENCES categories(name),
    id         INTEGER NOT NULL,
    payload    TEXT    NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (category, id)
);
`

// Open opens the database at path, applies the schema, and seeds the
// category table.
func Open(path string, categories []string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	for _, c := range categories {
		if _, err := sqlDB.Exec(`INSERT OR IGNORE INTO categories (name, last_id) VALUES (?, 0)`, c); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("seed category %s: %w", c, err)
		}
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Insert allocates the next id for the record's category and writes the
// record inside one transaction. The id comes from a per-category
// high-water mark in the categories table, so ids stay strictly increasing
// even after the newest record is deleted, and concurrent inserts serialize
// on the counter update.
func (s *Store) Insert(ctx context.Context, rec store.Record) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	data, err := store.EncodePayload(rec)
	if err != nil {
		return 0, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE categories SET last_id = last_id + 1 WHERE name = ?`,
		rec.Category,
	)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("allocate id: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		_ = tx.Rollback()
		if err != nil {
			return 0, fmt.Errorf("allocate id: %w", err)
		}
		return 0, fmt.Errorf("category %s is not seeded", rec.Category)
	}

	var id int64
	row := tx.QueryRowContext(ctx,
		`SELECT last_id FROM categories WHERE name = ?`,
		rec.Category,
	)
	if err := row.Scan(&id); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("allocate id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO commands (category, id, payload, created_at) VALUES (?, ?, ?, ?)`,
		rec.Category, id, string(data), time.Now().UTC().UnixMilli(),
	); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert command: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return id, nil
}

// Get returns one record by (category, id).
func (s *Store) Get(ctx context.Context, category string, id int64) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return store.Record{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT payload, created_at FROM commands WHERE category = ? AND id = ?`,
		category, id,
	)

	rec := store.Record{Category: category, ID: id}
	var data string
	var createdAt int64
	if err := row.Scan(&data, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Record{}, fmt.Errorf("category %s, id %d: %w", category, id, store.ErrNotFound)
		}
		return store.Record{}, fmt.Errorf("get command: %w", err)
	}
	if err := store.DecodePayload([]byte(data), &rec); err != nil {
		return store.Record{}, err
	}
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	return rec, nil
}

// List returns all records of a category in ascending id order.
func (s *Store) List(ctx context.Context, category string) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, payload, created_at FROM commands WHERE category = ? ORDER BY id ASC`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		rec := store.Record{Category: category}
		var data string
		var createdAt int64
		if err := rows.Scan(&rec.ID, &data, &createdAt); err != nil {
			return nil, fmt.Errorf("list commands: %w", err)
		}
		if err := store.DecodePayload([]byte(data), &rec); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	return out, nil
}

// Delete removes one record. The category's high-water mark is left alone,
// so the freed id is never handed out again.
func (s *Store) Delete(ctx context.Context, category string, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM commands WHERE category = ? AND id = ?`,
		category, id,
	)
	if err != nil {
		return fmt.Errorf("delete command: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete command: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %s, id %d: %w", category, id, store.ErrNotFound)
	}
	return nil
}

var _ store.Store = (*Store)(nil)
