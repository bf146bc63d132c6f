package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/wordcards/internal/platform/logger"
)

// TxFn is the body of a transaction. Returning an error rolls it back.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction runs fn in a transaction on db and commits when fn
// returns nil. The transaction is rolled back when fn fails or panics; a
// panic is re-raised after the rollback.
//
// Returns:
//   - nil after a successful commit
//   - the error from fn after a successful rollback
//   - an error wrapping ErrTransactionFailed when begin or commit fails
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) (err error) {
	log := logger.FromContextOrDefault(ctx, slog.Default()).With("component", "collection_tx")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("transaction begin failed", "error", err)
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	// Once Commit has been attempted the transaction is finished either way.
	commitAttempted := false
	defer func() {
		p := recover()
		if commitAttempted || (p == nil && err == nil) {
			return
		}

		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("transaction rollback failed", "error", rbErr, "cause", err, "panic", p)
			if p == nil {
				err = fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
			}
		} else {
			log.Debug("transaction rolled back", "cause", err, "panic", p)
		}

		if p != nil {
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}

	commitAttempted = true
	if cErr := tx.Commit(); cErr != nil {
		log.Error("transaction commit failed", "error", cErr)
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, cErr)
	}
	return nil
}
