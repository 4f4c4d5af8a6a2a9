// Package history journals notification deliveries in a local SQLite file.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Entry is one recorded delivery attempt.
type Entry struct {
	ID         int64
	ReminderID string
	Medicine   string
	Slot       string
	Channel    string
	Status     string // "sent" or "failed"
	Error      string
	CreatedAt  time.Time
}

// DB wraps sql.DB for the delivery journal.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

// New opens the journal at path and runs migrations.
func New(path string, logger *zerolog.Logger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS deliveries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reminder_id TEXT NOT NULL,
			medicine TEXT NOT NULL,
			slot TEXT NOT NULL,
			channel TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_reminder ON deliveries(reminder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_created ON deliveries(created_at)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// RecordDelivery journals one delivery attempt. It satisfies the dispatcher's
// DeliveryRecorder interface.
func (d *DB) RecordDelivery(ctx context.Context, reminderID, medicine, slot, channel, status, errMsg string) error {
	_, err := d.ExecContext(ctx,
		`INSERT INTO deliveries (reminder_id, medicine, slot, channel, status, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		reminderID, medicine, slot, channel, status, errMsg)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries, most recent first.
func (d *DB) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.QueryContext(ctx,
		`SELECT id, reminder_id, medicine, slot, channel, status, COALESCE(error, ''), created_at
		 FROM deliveries ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ReminderID, &e.Medicine, &e.Slot,
			&e.Channel, &e.Status, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByStatus returns delivery counts grouped by status.
func (d *DB) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := d.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM deliveries GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count deliveries: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// Prune deletes entries older than the retention window and returns how many
// were removed. created_at holds CURRENT_TIMESTAMP text (UTC), so the cutoff
// is rendered the same way to keep the comparison textual.
func (d *DB) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format("2006-01-02 15:04:05")
	res, err := d.ExecContext(ctx,
		`DELETE FROM deliveries WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune deliveries: %w", err)
	}
	deleted, _ := res.RowsAffected()
	if deleted > 0 {
		d.logger.Info().Int64("deleted", deleted).Msg("pruned old delivery history")
	}
	return deleted, nil
}
