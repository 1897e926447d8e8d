package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

const migrationTable = "schema_migrations"

// applyMigrations executes the embedded migrations at most once per file.
func applyMigrations(ctx context.Context, db *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}

	sort.Strings(files)

	createSQL := `CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		if err := applyMigration(ctx, db, migrationFS, file); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, migrationFS fs.FS, file string) error {
	applied, err := isApplied(ctx, db, file)
	if err != nil {
		return fmt.Errorf("check migration %s: %w", file, err)
	}

	if applied {
		return nil
	}

	content, err := fs.ReadFile(migrationFS, path.Clean(file))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", file, err)
	}

	upSQL := extractUpMigration(string(content))
	if strings.TrimSpace(upSQL) == "" {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration transaction %s: %w", file, err)
	}

	if _, err := tx.ExecContext(ctx, upSQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("exec migration %s: %w", file, err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO "+migrationTable+" (name, applied_at) VALUES (?, ?)",
		file, time.Now().UTC().UnixMilli(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", file, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", file, err)
	}

	return nil
}

// extractUpMigration returns the SQL in the -- +migrate Up section.
func extractUpMigration(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"

	upIdx := strings.Index(content, up)
	if upIdx == -1 {
		return content
	}

	downIdx := strings.Index(content, down)
	if downIdx == -1 {
		return content[upIdx+len(up):]
	}

	return content[upIdx+len(up) : downIdx]
}

func isApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var found int

	err := db.QueryRowContext(ctx, "SELECT 1 FROM "+migrationTable+" WHERE name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
