package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// BackupConfig controls timestamped copies of the store file.
type BackupConfig struct {
	Enabled       bool
	Path          string
	RetentionDays int
}

// BackupService copies the store file into a backup directory and prunes old
// copies. The daily maintenance cron drives it.
type BackupService struct {
	srcPath string
	config  BackupConfig
	logger  *zerolog.Logger
}

// NewBackupService creates a backup service for the store file at srcPath.
func NewBackupService(srcPath string, cfg BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{srcPath: srcPath, config: cfg, logger: logger}
}

// PerformBackup writes a timestamped copy of the store file.
func (s *BackupService) PerformBackup() error {
	if _, err := os.Stat(s.srcPath); os.IsNotExist(err) {
		s.logger.Debug().Msg("store file does not exist yet, skipping backup")
		return nil
	}

	if err := os.MkdirAll(s.config.Path, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(s.config.Path, fmt.Sprintf("reminders_%s.json", timestamp))

	source, err := os.Open(s.srcPath)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return err
	}

	s.logger.Info().Str("path", backupPath).Msg("store backup completed")
	return nil
}

// CleanupOldBackups removes backup files older than the retention window.
func (s *BackupService) CleanupOldBackups() {
	if s.config.RetentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(s.config.Path)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read backup directory for cleanup")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)

	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), "reminders_") {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.config.Path, file.Name())
			if err := os.Remove(path); err != nil {
				s.logger.Error().Err(err).Str("path", path).Msg("failed to remove old backup")
				continue
			}
			s.logger.Info().Str("path", path).Msg("removed old backup")
		}
	}
}
