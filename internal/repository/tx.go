package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxFunc runs fn inside a single database transaction. The transaction is
// rolled back on any error and on panic-unwind, so partial application of a
// counter adjustment without its paired fact mutation cannot persist.
type TxFunc func(ctx context.Context, fn func(tx *sqlx.Tx) error) error

// NewTxFunc returns the standard TxFunc over the given database handle.
// Services hold a TxFunc rather than *sqlx.DB so unit tests can substitute
// a runner that hands fn a nil transaction.
func NewTxFunc(db *sqlx.DB) TxFunc {
	return func(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	}
}
