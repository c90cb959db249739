package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/yoyofushi/feedbot/src/config"
	"github.com/yoyofushi/feedbot/src/storage"
)

// MigrateCmd manages database migrations
type MigrateCmd struct {
	Up     MigrateUpCmd     `cmd:"" help:"Run pending migrations"`
	Status MigrateStatusCmd `cmd:"" help:"Show applied migrations"`
}

// MigrateUpCmd runs pending migrations
type MigrateUpCmd struct {
	DBPath string `help:"Database path (defaults to config)"`
}

// Run executes the migrate up command
func (c *MigrateUpCmd) Run(ctx *kong.Context, cli *CLI) error {
	dbPath, err := resolveDBPath(cli, c.DBPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	versions, err := db.MigrationVersions()
	if err != nil {
		return err
	}

	fmt.Printf("Database opened: %s (%d migrations applied)\n", dbPath, len(versions))
	return nil
}

// MigrateStatusCmd shows applied migration versions
type MigrateStatusCmd struct {
	DBPath string `help:"Database path (defaults to config)"`
}

// Run executes the migrate status command
func (c *MigrateStatusCmd) Run(ctx *kong.Context, cli *CLI) error {
	dbPath, err := resolveDBPath(cli, c.DBPath)
	if err != nil {
		return err
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	versions, err := db.MigrationVersions()
	if err != nil {
		return err
	}

	fmt.Printf("database: %s\n", dbPath)
	for _, v := range versions {
		fmt.Printf("  applied: %03d\n", v)
	}
	return nil
}

// resolveDBPath picks the database path from the flag or the config.
func resolveDBPath(cli *CLI, flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		return "", err
	}
	if cfg.Database.Path != "" {
		return cfg.Database.Path, nil
	}
	return config.DefaultDatabasePath(), nil
}
