package database

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"text/template"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DefaultDimensions is the vector size of the default embedding model.
const DefaultDimensions = 1536

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Migration is one embedded schema change.
type Migration struct {
	Version string
	SQL     string
}

// MigrationParams are substituted into migration templates.
type MigrationParams struct {
	Dimensions int
}

// Migrations returns the embedded migrations in version order, rendered with params.
func Migrations(params MigrationParams) ([]Migration, error) {
	if params.Dimensions <= 0 {
		params.Dimensions = DefaultDimensions
	}

	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		raw, readErr := migrationFS.ReadFile(name)
		if readErr != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, readErr)
		}

		tmpl, parseErr := template.New(name).Parse(string(raw))
		if parseErr != nil {
			return nil, fmt.Errorf("parse migration %s: %w", name, parseErr)
		}

		var buf bytes.Buffer
		if execErr := tmpl.Execute(&buf, params); execErr != nil {
			return nil, fmt.Errorf("render migration %s: %w", name, execErr)
		}

		version := strings.TrimSuffix(strings.TrimPrefix(name, "migrations/"), ".sql")
		migrations = append(migrations, Migration{Version: version, SQL: buf.String()})
	}

	return migrations, nil
}

// Migrate applies every migration not yet recorded in schema_migrations. Each
// migration runs in its own transaction. It returns the versions applied.
func Migrate(ctx context.Context, db *sqlx.DB, params MigrationParams, log logger.Logger) ([]string, error) {
	migrations, err := Migrations(params)
	if err != nil {
		return nil, err
	}

	if _, execErr := db.ExecContext(ctx, createMigrationsTable); execErr != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", execErr)
	}

	var appliedVersions []string
	if selectErr := db.SelectContext(ctx, &appliedVersions, `SELECT version FROM schema_migrations`); selectErr != nil {
		return nil, fmt.Errorf("list applied migrations: %w", selectErr)
	}
	applied := make(map[string]bool, len(appliedVersions))
	for _, v := range appliedVersions {
		applied[v] = true
	}

	var ran []string
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		if applyErr := applyMigration(ctx, db, m); applyErr != nil {
			return ran, applyErr
		}

		log.Info("Applied migration", logger.String("version", m.Version))
		ran = append(ran, m.Version)
	}

	return ran, nil
}

func applyMigration(ctx context.Context, db *sqlx.DB, m Migration) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, execErr := tx.ExecContext(ctx, m.SQL); execErr != nil {
		return fmt.Errorf("apply migration %s: %w", m.Version, execErr)
	}
	if _, execErr := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); execErr != nil {
		return fmt.Errorf("record migration %s: %w", m.Version, execErr)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("commit migration %s: %w", m.Version, commitErr)
	}
	return nil
}
