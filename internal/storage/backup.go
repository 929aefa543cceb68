package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupConfig holds configuration for backup operations.
type BackupConfig struct {
	// BackupDir is the directory where backups will be stored.
	BackupDir string

	// BackupName is the backup file name without extension.
	// If empty, a timestamp-based name is generated.
	BackupName string

	// VerifyBackup runs an integrity check on the new file.
	VerifyBackup bool
}

// DefaultBackupConfig returns a BackupConfig writing to dir.
func DefaultBackupConfig(dir string) *BackupConfig {
	return &BackupConfig{
		BackupDir:    dir,
		VerifyBackup: true,
	}
}

// BackupInfo describes a backup file.
type BackupInfo struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Backup copies the live database to a new file with VACUUM INTO, which
// does not need an exclusive lock. It returns the backup path.
func (db *DB) Backup(ctx context.Context, config *BackupConfig) (string, error) {
	if config == nil || config.BackupDir == "" {
		return "", fmt.Errorf("backup directory is required")
	}

	if err := os.MkdirAll(config.BackupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := config.BackupName
	if name == "" {
		name = "backup_" + time.Now().Format("20060102_150405")
	}
	backupPath := filepath.Join(config.BackupDir, name+".db")

	if _, err := os.Stat(backupPath); err == nil {
		return "", fmt.Errorf("backup file already exists: %s", backupPath)
	}

	if _, err := db.conn.ExecContext(ctx, `VACUUM INTO ?`, backupPath); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if config.VerifyBackup {
		if err := VerifyBackup(ctx, backupPath); err != nil {
			_ = os.Remove(backupPath)
			return "", fmt.Errorf("backup verification failed: %w", err)
		}
	}

	return backupPath, nil
}

// VerifyBackup checks that path is an intact SQLite database.
func VerifyBackup(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("backup file not readable: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open backup as database: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var result string
	if err := conn.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&result); err != nil {
		return fmt.Errorf("failed to check backup: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// ListBackups returns the backups in dir, newest first.
func ListBackups(dir string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}
