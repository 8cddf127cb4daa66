package postgresengine

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// ErrMigrationFailed is returned when the schema migrations cannot be applied.
var ErrMigrationFailed = errors.New("postgres schema migration failed")

// Migrate applies the embedded schema migrations and returns the number of applied migrations.
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	migrations, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return 0, errors.Join(ErrMigrationFailed, err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations)
	if err != nil {
		return 0, errors.Join(ErrMigrationFailed, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, errors.Join(ErrMigrationFailed, err)
	}

	return len(results), nil
}
