package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := New(filepath.Join(t.TempDir(), "history.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.RecordDelivery(ctx, "r1", "Metformin", "08:00", "log", "sent", ""))
	require.NoError(t, db.RecordDelivery(ctx, "r1", "Metformin", "20:00", "telegram", "failed", "blocked"))

	entries, err := db.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Most recent first.
	assert.Equal(t, "20:00", entries[0].Slot)
	assert.Equal(t, "failed", entries[0].Status)
	assert.Equal(t, "blocked", entries[0].Error)
	assert.Equal(t, "sent", entries[1].Status)
	assert.Empty(t, entries[1].Error)
}

func TestCountByStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.RecordDelivery(ctx, "r1", "Metformin", "08:00", "log", "sent", ""))
	require.NoError(t, db.RecordDelivery(ctx, "r2", "Aspirin", "09:00", "log", "sent", ""))
	require.NoError(t, db.RecordDelivery(ctx, "r2", "Aspirin", "09:00", "telegram", "failed", "x"))

	counts, err := db.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["sent"])
	assert.Equal(t, int64(1), counts["failed"])
}

func TestPrune(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.RecordDelivery(ctx, "r1", "Metformin", "08:00", "log", "sent", ""))
	require.NoError(t, db.RecordDelivery(ctx, "r1", "Metformin", "20:00", "log", "sent", ""))

	// Fresh entries survive a generous retention window.
	deleted, err := db.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	// Age one entry past the window, in the journal's own UTC clock. The
	// cutoff comparison is textual, so it must line up with this rendering
	// regardless of the host timezone.
	_, err = db.ExecContext(ctx,
		`UPDATE deliveries SET created_at = datetime('now', '-48 hours') WHERE slot = ?`, "08:00")
	require.NoError(t, err)

	deleted, err = db.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	entries, err := db.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "20:00", entries[0].Slot)
}
