package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// ViewPrefs are the per-view settings restored on the next launch.
type ViewPrefs struct {
	View      string
	PerPage   int
	Status    string
	UpdatedAt time.Time
}

const MetaLastView = "last_view"

func (d *DB) ViewPrefs(ctx context.Context, view string) (ViewPrefs, bool, error) {
	var (
		p  ViewPrefs
		ms int64
	)
	err := d.sql.QueryRowContext(ctx,
		`SELECT view, per_page, status, updated_at_unixms FROM view_prefs WHERE view = ?`, view,
	).Scan(&p.View, &p.PerPage, &p.Status, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return ViewPrefs{}, false, nil
	}
	if err != nil {
		return ViewPrefs{}, false, err
	}
	p.UpdatedAt = time.UnixMilli(ms).UTC()
	return p, true, nil
}

func (d *DB) SaveViewPrefs(ctx context.Context, p ViewPrefs) error {
	p.View = strings.TrimSpace(p.View)
	if p.View == "" {
		return errors.New("store: empty view name")
	}
	if p.PerPage <= 0 {
		return errors.New("store: per_page must be positive")
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO view_prefs(view, per_page, status, updated_at_unixms) VALUES(?, ?, ?, ?)
		ON CONFLICT(view) DO UPDATE SET per_page = excluded.per_page, status = excluded.status, updated_at_unixms = excluded.updated_at_unixms`,
		p.View, p.PerPage, p.Status, d.now().UnixMilli(),
	)
	return err
}

func (d *DB) LastView(ctx context.Context) string {
	v, _, err := d.Meta(ctx, MetaLastView)
	if err != nil {
		return ""
	}
	return v
}

func (d *DB) SetLastView(ctx context.Context, view string) error {
	return d.SetMeta(ctx, MetaLastView, view)
}
