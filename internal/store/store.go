// Package store keeps small local console state in SQLite: per-view
// preferences, a key/value meta table and the export history. Remote data is
// never cached here. Callers treat every failure as best effort.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const fileName = "console.sqlite"

type DB struct {
	sql  *sql.DB
	path string
	now  func() time.Time
}

// Open creates dir when missing and opens (and migrates) the console database in it.
func Open(ctx context.Context, dir string) (*DB, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("store: missing dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	path := filepath.Join(dir, fileName)
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the TUI and a CLI invocation share the file.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	d := &DB{sql: db, path: path, now: time.Now}
	if err := d.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return d, nil
}

func (d *DB) Path() string { return d.path }

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS view_prefs (
			view TEXT PRIMARY KEY,
			per_page INTEGER NOT NULL,
			status TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS exports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			resource TEXT NOT NULL,
			path TEXT NOT NULL,
			rows INTEGER NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := d.sql.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	_, err := d.sql.ExecContext(ctx, `INSERT OR IGNORE INTO meta(k, v) VALUES('schema_version', '1')`)
	return err
}

// Meta returns the value stored under k; ok is false when the key is unset.
func (d *DB) Meta(ctx context.Context, k string) (string, bool, error) {
	var v string
	err := d.sql.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, k).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (d *DB) SetMeta(ctx context.Context, k, v string) error {
	k = strings.TrimSpace(k)
	if k == "" {
		return errors.New("store: empty meta key")
	}
	_, err := d.sql.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, k, v)
	return err
}
