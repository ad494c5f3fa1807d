package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

const MemoryDSN = ":memory:"

type DB struct {
	Pool *sql.DB
	lock *flock.Flock
}

// Open opens the fetch log database. A file path is guarded by an exclusive
// lock on "<path>.lock" so two processes never share one log.
func Open(path string) (*DB, error) {
	var lk *flock.Flock
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		lk = flock.New(path + ".lock")
		ok, err := lk.TryLock()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", lk.Path(), err)
		}
		if !ok {
			return nil, fmt.Errorf("fetch log %s is in use by another process", path)
		}
	}

	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		unlock(lk)
		return nil, err
	}

	// one connection: sqlite wants a single writer, and :memory: lives
	// only as long as its connection
	pool.SetMaxOpenConns(1)
	pool.SetMaxIdleConns(1)
	if lk != nil {
		pool.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		unlock(lk)
		return nil, err
	}

	return &DB{Pool: pool, lock: lk}, nil
}

func (d *DB) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	err := d.Pool.Close()
	unlock(d.lock)
	return err
}

func unlock(lk *flock.Flock) {
	if lk != nil {
		_ = lk.Unlock()
	}
}
