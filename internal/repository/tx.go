package repository

import (
	"context"
	"database/sql"
)

type txKey struct{}

// queryer is satisfied by both *sql.DB and *sql.Tx so repository methods
// run unchanged inside or outside a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// WithTx runs fn inside a single transaction.  Nested calls join the
// enclosing transaction; any error from fn rolls the whole unit back.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// q returns the active transaction when one is in flight, otherwise the
// plain connection pool.
func (s *Store) q(ctx context.Context) queryer {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

// inTx reports whether the context carries an open transaction; reads
// append FOR UPDATE only in that case.
func inTx(ctx context.Context) bool {
	return txFromContext(ctx) != nil
}
