package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

type ExportEntry struct {
	ID        int64     `json:"id"`
	Resource  string    `json:"resource"`
	Path      string    `json:"path"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordExport appends a written export file to the history.
func (d *DB) RecordExport(ctx context.Context, resource, path string, rows int) error {
	if strings.TrimSpace(resource) == "" || strings.TrimSpace(path) == "" {
		return errors.New("store: export needs resource and path")
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO exports(resource, path, rows, created_at_unixms) VALUES(?, ?, ?, ?)`,
		resource, path, rows, d.now().UnixMilli(),
	)
	return err
}

// Exports lists the history newest first. limit <= 0 means all.
func (d *DB) Exports(ctx context.Context, limit int) ([]ExportEntry, error) {
	q := `SELECT id, resource, path, rows, created_at_unixms FROM exports ORDER BY created_at_unixms DESC, id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportEntry
	for rows.Next() {
		var (
			e  ExportEntry
			ms int64
		)
		if err := rows.Scan(&e.ID, &e.Resource, &e.Path, &e.Rows, &ms); err != nil {
			return nil, err
		}
		e.CreatedAt = time.UnixMilli(ms).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
