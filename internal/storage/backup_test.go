package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := Open(DefaultConfig(filepath.Join(dir, "decks.db")))
	require.NoError(t, err)
	defer db.Close()

	svc := NewService(db)
	_, err = svc.ImportUniverse(ctx, testEntries, false)
	require.NoError(t, err)

	backupDir := filepath.Join(dir, "backups")
	cfg := DefaultBackupConfig(backupDir)
	cfg.BackupName = "first"

	path, err := db.Backup(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(backupDir, "first.db"), path)

	// same name twice is refused
	_, err = db.Backup(ctx, cfg)
	assert.Error(t, err)

	restored, err := Open(&Config{Path: path, BusyTimeout: DefaultConfig("").BusyTimeout, MaxOpenConns: 1})
	require.NoError(t, err)
	defer restored.Close()
	n, err := NewService(restored).Cards().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(testEntries), n)

	backups, err := ListBackups(backupDir)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, path, backups[0].Path)
}

func TestBackup_RequiresDir(t *testing.T) {
	db := OpenTestService(t).DB()
	_, err := db.Backup(context.Background(), &BackupConfig{})
	assert.Error(t, err)
}

func TestListBackups_MissingDir(t *testing.T) {
	backups, err := ListBackups(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, backups)
}
