// internal/db/schema.go
package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// InitSchema applies the embedded schema. Every statement is idempotent.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	// Without arguments pgx uses the simple protocol, which accepts multiple statements.
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
