// Package migrations embeds the schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var Migrations embed.FS

// Up applies pending migrations. Table names in the SQL are expanded from
// TABLE_PREFIX, so the same files serve dev_, test_ and prod_ schemas.
func Up(ctx context.Context, pool *pgxpool.Pool, tablePrefix string) error {
	db, err := open(pool, tablePrefix)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Status logs applied and pending migrations.
func Status(ctx context.Context, pool *pgxpool.Pool, tablePrefix string) error {
	db, err := open(pool, tablePrefix)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.StatusContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	return nil
}

func open(pool *pgxpool.Pool, tablePrefix string) (*sql.DB, error) {
	if err := os.Setenv("TABLE_PREFIX", tablePrefix); err != nil {
		return nil, fmt.Errorf("set table prefix: %w", err)
	}

	goose.SetBaseFS(Migrations)
	goose.SetTableName(tablePrefix + "goose_db_version")
	if err := goose.SetDialect("pgx"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	return stdlib.OpenDBFromPool(pool), nil
}
