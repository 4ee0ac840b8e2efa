package postgres

import (
	"context"
	_ "embed"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the embedded schema inside a single transaction.
// Every statement is idempotent, so running it against an up-to-date database is a no-op.
func (db *DB) Migrate(ctx context.Context) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return errFailedStartTx(err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		return errFailedApplySchema(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return errFailedCommitTx(err)
	}

	return nil
}
