package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

type migrationFile struct {
	name string
	data []byte
}

// RunMigrations applies pending migrations from migrationsDir, falling back to
// the embedded files. Applied names are recorded in schema_migrations so each
// file runs once. It returns the names applied by this call.
func RunMigrations(db *sql.DB, migrationsDir string) ([]string, error) {
	files, err := loadMigrations(migrationsDir)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	applied, err := appliedMigrations(db)
	if err != nil {
		return nil, err
	}
	var ran []string
	for _, mf := range files {
		if _, done := applied[mf.name]; done || len(mf.data) == 0 {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return ran, fmt.Errorf("begin migration %s: %w", mf.name, err)
		}
		if _, err := tx.Exec(string(mf.data)); err != nil {
			_ = tx.Rollback()
			return ran, fmt.Errorf("exec migration %s: %w", mf.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`,
			mf.name, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return ran, fmt.Errorf("record migration %s: %w", mf.name, err)
		}
		if err := tx.Commit(); err != nil {
			return ran, fmt.Errorf("commit migration %s: %w", mf.name, err)
		}
		ran = append(ran, mf.name)
	}
	return ran, nil
}

func appliedMigrations(db *sql.DB) (map[string]struct{}, error) {
	rows, err := db.Query(`SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()
	out := map[string]struct{}{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = struct{}{}
	}
	return out, rows.Err()
}

func loadMigrations(dir string) ([]migrationFile, error) {
	var files []migrationFile
	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
					continue
				}
				content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
				if err != nil {
					return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
				}
				files = append(files, migrationFile{name: entry.Name(), data: content})
			}
			sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
			return files, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read migrations: %w", err)
		}
	}

	entries, err := embeddedMigrations.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		// embed.FS paths always use forward slashes
		content, err := embeddedMigrations.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded migration %s: %w", entry.Name(), err)
		}
		files = append(files, migrationFile{name: entry.Name(), data: content})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}
