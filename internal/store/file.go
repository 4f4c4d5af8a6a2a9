package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"dosewatch/internal/metrics"
	"dosewatch/internal/models"
)

// FileStore keeps the collection in a single JSON file.
type FileStore struct {
	path   string
	logger *zerolog.Logger
	mu     sync.Mutex
}

// NewFileStore creates a file-backed store at path, creating parent
// directories as needed.
func NewFileStore(path string, logger *zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{path: path, logger: logger}, nil
}

// Path returns the store file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the collection from disk. A missing file or corrupted content
// yields an empty collection, never an error.
func (s *FileStore) Load(_ context.Context) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Reminder{}, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var reminders []models.Reminder
	if err := json.Unmarshal(data, &reminders); err != nil {
		metrics.IncStoreLoadFailure()
		s.logger.Warn().Err(err).Str("path", s.path).
			Msg("store content unparsable, starting with empty collection")
		return []models.Reminder{}, nil
	}
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	return reminders, nil
}

// Save atomically replaces the store file with the serialized collection.
func (s *FileStore) Save(_ context.Context, reminders []models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(reminders, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal reminders: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}

	metrics.IncStoreSave()
	return nil
}
