package history

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/pressly/goose/v3"
)

//go:embed sql/migrations/*.sql
var embedMigrations embed.FS

const migrationsDir = "sql/migrations"

func (s *Store) gooseDialect() string {
	if s.driver == DriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// Migrate runs the embedded goose migrations. GOOSE_UP_TO and GOOSE_DOWN_TO
// pin a target version.
func (s *Store) Migrate(ctx context.Context) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(s.gooseDialect()); err != nil {
		return err
	}

	currentVersion, err := goose.GetDBVersionContext(ctx, s.db)
	if err != nil {
		return err
	}

	migrations, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		slog.Info("history: Embedded migration", "source", m.Source, "version", m.Version, "current", m.Version == currentVersion)
	}

	if down, ok := os.LookupEnv("GOOSE_DOWN_TO"); ok {
		target, err := strconv.ParseInt(down, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse GOOSE_DOWN_TO version: %w", err)
		}
		return goose.DownToContext(ctx, s.db, migrationsDir, target)
	}

	target := int64(goose.MaxVersion)
	if up, ok := os.LookupEnv("GOOSE_UP_TO"); ok {
		if target, err = strconv.ParseInt(up, 10, 64); err != nil {
			return fmt.Errorf("failed to parse GOOSE_UP_TO version: %w", err)
		}
	}
	return goose.UpToContext(ctx, s.db, migrationsDir, target)
}

// Version returns the applied schema version.
func (s *Store) Version(ctx context.Context) (int64, error) {
	if err := goose.SetDialect(s.gooseDialect()); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, s.db)
}
