package store

import (
	"context"
	"database/sql"
	"time"

	"beacon-dashboard/internal/domain"
)

const (
	DefaultKeep      = 500
	DefaultListLimit = 50
	MaxListLimit     = 500
)

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS fetch_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  at TEXT NOT NULL,
  outcome TEXT NOT NULL,
  status INTEGER NOT NULL DEFAULT 0,
  item_count INTEGER NOT NULL DEFAULT 0,
  error TEXT NOT NULL DEFAULT '',
  duration_ms INTEGER NOT NULL DEFAULT 0
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_fetch_log_at
ON fetch_log(at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

// FetchLog records upstream attempts and keeps the newest Keep rows.
type FetchLog struct {
	db   *sql.DB
	keep int
}

func NewFetchLog(db *sql.DB, keep int) *FetchLog {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &FetchLog{db: db, keep: keep}
}

func (l *FetchLog) Record(ctx context.Context, a domain.FetchAttempt) error {
	if a.At.IsZero() {
		a.At = time.Now()
	}
	if _, err := l.db.ExecContext(ctx, `
INSERT INTO fetch_log(at, outcome, status, item_count, error, duration_ms)
VALUES(?,?,?,?,?,?);`,
		a.At.UTC().Format(time.RFC3339Nano), a.Outcome, a.Status, a.ItemCount, a.Error, a.Duration); err != nil {
		return err
	}

	_, err := l.db.ExecContext(ctx, `
DELETE FROM fetch_log
WHERE id NOT IN (SELECT id FROM fetch_log ORDER BY id DESC LIMIT ?);`, l.keep)
	return err
}

// Recent returns attempts newest first.
func (l *FetchLog) Recent(ctx context.Context, limit int) ([]domain.FetchAttempt, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := l.db.QueryContext(ctx, `
SELECT id, at, outcome, status, item_count, error, duration_ms
FROM fetch_log
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.FetchAttempt{}
	for rows.Next() {
		var a domain.FetchAttempt
		var at string
		if err := rows.Scan(&a.ID, &at, &a.Outcome, &a.Status, &a.ItemCount, &a.Error, &a.Duration); err != nil {
			return nil, err
		}
		a.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (l *FetchLog) Count(ctx context.Context) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fetch_log;`).Scan(&n)
	return n, err
}
