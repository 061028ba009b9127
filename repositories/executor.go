package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ErrTransactionRequired возвращается методами *ForUpdate, вызванными без транзакции.
var ErrTransactionRequired = errors.New("database transaction is required for this operation")

// Transactor runs fn inside a single database transaction. A non-nil error from fn
// rolls the transaction back, otherwise it is committed.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(tx SQLExecutor) error) error
}

type postgresTransactor struct {
	db *sql.DB
}

func NewPostgresTransactor(db *sql.DB) Transactor {
	return &postgresTransactor{db: db}
}

func (t *postgresTransactor) WithinTransaction(ctx context.Context, fn func(tx SQLExecutor) error) (err error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	err = fn(tx)
	return err
}

// lockingExecutor отклоняет блокирующие чтения вне транзакции.
func lockingExecutor(exec SQLExecutor) (SQLExecutor, error) {
	if exec == nil {
		return nil, ErrTransactionRequired
	}
	if _, ok := exec.(*sql.DB); ok {
		return nil, ErrTransactionRequired
	}
	return exec, nil
}
