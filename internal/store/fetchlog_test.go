package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"beacon-dashboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Migrate(db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, 1, v)
}

func TestFetchLogRecordAndRecent(t *testing.T) {
	db := openMemory(t)
	l := NewFetchLog(db.Pool, 10)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, l.Record(ctx, domain.FetchAttempt{At: at, Outcome: domain.OutcomeOK, Status: 200, ItemCount: 4, Duration: 120}))
	require.NoError(t, l.Record(ctx, domain.FetchAttempt{At: at.Add(time.Minute), Outcome: domain.OutcomeUpstreamStatus, Status: 503, Error: "Monday.com returned 503"}))

	got, err := l.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.OutcomeUpstreamStatus, got[0].Outcome)
	assert.Equal(t, 503, got[0].Status)
	assert.Equal(t, "Monday.com returned 503", got[0].Error)
	assert.True(t, got[0].At.Equal(at.Add(time.Minute)))

	assert.Equal(t, domain.OutcomeOK, got[1].Outcome)
	assert.Equal(t, 4, got[1].ItemCount)
	assert.Equal(t, int64(120), got[1].Duration)
}

func TestFetchLogPrunes(t *testing.T) {
	db := openMemory(t)
	l := NewFetchLog(db.Pool, 3)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, l.Record(ctx, domain.FetchAttempt{Outcome: domain.OutcomeOK, ItemCount: i}))
	}

	n, err := l.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 6, got[0].ItemCount)
	assert.Equal(t, 4, got[2].ItemCount)
}

func TestRecentEmpty(t *testing.T) {
	db := openMemory(t)
	got, err := NewFetchLog(db.Pool, 0).Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestOpenFileIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "fetch.db")

	first, err := Open(path)
	require.NoError(t, err)

	_, err = Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in use by another process")

	require.NoError(t, first.Close())

	again, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}
