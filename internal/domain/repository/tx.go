package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TxRunner runs fn inside a single database transaction.
// The transaction is committed when fn returns nil and rolled back otherwise.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type pgTxRunner struct {
	db *sql.DB
}

func NewPgTxRunner(db *sql.DB) TxRunner {
	return &pgTxRunner{db: db}
}

func (r *pgTxRunner) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// querier is the subset of *sql.DB and *sql.Tx the repositories need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func conn(db *sql.DB, tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return db
}
