package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ramonehamilton/mtg-decksampler/internal/config"
	"github.com/ramonehamilton/mtg-decksampler/internal/storage"
)

func printMigrationUsage() {
	fmt.Println("Usage:")
	fmt.Println("  decksampler migrate <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up                Apply all pending migrations")
	fmt.Println("  down              Roll back the last migration")
	fmt.Println("  status            Show current migration version")
	fmt.Println("  goto <version>    Migrate to a specific version")
	fmt.Println("  force <version>   Force set migration version (use with caution)")
}

func runMigrate(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		printMigrationUsage()
		return errors.New("missing migrate command")
	}

	dbPath, err := cfg.StoragePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	mgr, err := storage.NewMigrationManager(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	switch args[0] {
	case "up":
		fmt.Println("Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			return err
		}
	case "down":
		fmt.Println("Rolling back last migration...")
		if err := mgr.Down(); err != nil {
			return err
		}
	case "status", "version":
	case "goto":
		if len(args) < 2 {
			return errors.New("goto requires a version number")
		}
		version, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version number: %w", err)
		}
		fmt.Printf("Migrating to version %d...\n", version)
		if err := mgr.Goto(uint(version)); err != nil {
			return err
		}
	case "force":
		if len(args) < 2 {
			return errors.New("force requires a version number")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version number: %w", err)
		}
		fmt.Println("WARNING: This does not run migrations, only sets the version.")
		if err := mgr.Force(version); err != nil {
			return err
		}
	default:
		printMigrationUsage()
		return fmt.Errorf("unknown migrate command: %s", args[0])
	}

	status, err := mgr.Status()
	if err != nil {
		return err
	}
	switch {
	case status.Dirty:
		fmt.Printf("Current version: %d (dirty - use 'migrate force <version>' to recover)\n", status.Version)
	case status.Pending():
		fmt.Printf("Current version: %d (latest %d, run 'migrate up')\n", status.Version, status.Latest)
	default:
		fmt.Printf("Current version: %d (up to date)\n", status.Version)
	}
	return nil
}

func runBackup(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		args = []string{"create"}
	}

	backupDir, err := cfg.BackupDir()
	if err != nil {
		return err
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("backup create", flag.ExitOnError)
		name := fs.String("name", "", "Backup name (default: timestamp)")
		dir := fs.String("dir", backupDir, "Backup directory")
		verify := fs.Bool("verify", true, "Run an integrity check on the backup")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore(store)

		backupConfig := storage.DefaultBackupConfig(*dir)
		backupConfig.BackupName = *name
		backupConfig.VerifyBackup = *verify
		path, err := store.DB().Backup(context.Background(), backupConfig)
		if err != nil {
			return err
		}
		fmt.Printf("Backup written to %s\n", path)

	case "list", "ls":
		fs := flag.NewFlagSet("backup list", flag.ExitOnError)
		dir := fs.String("dir", backupDir, "Backup directory")
		format := fs.String("format", "table", "Output format: table or json")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		backups, err := storage.ListBackups(*dir)
		if err != nil {
			return err
		}
		if *format == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(backups)
		}
		if len(backups) == 0 {
			fmt.Printf("No backups in %s\n", *dir)
			return nil
		}
		for _, b := range backups {
			fmt.Printf("%-20s %10d  %s\n", b.ModTime.Format("2006-01-02 15:04:05"), b.Size, b.Path)
		}

	case "verify":
		if len(args) < 2 {
			return errors.New("verify requires a backup path")
		}
		if err := storage.VerifyBackup(context.Background(), args[1]); err != nil {
			return err
		}
		fmt.Printf("%s: ok\n", args[1])

	default:
		return fmt.Errorf("unknown backup command: %s (create, list, verify)", args[0])
	}
	return nil
}
