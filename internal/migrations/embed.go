// AngelaMos | 2026
// embed.go

// Package migrations holds the embedded schema, applied with goose on
// startup.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var Files embed.FS

func Up(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(Files)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
