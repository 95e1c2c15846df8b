package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// txState is the transaction bound to a context plus the callbacks queued to
// run once it commits.
type txState struct {
	tx          *sqlx.Tx
	afterCommit []func()
}

// TxManager runs a function inside one transaction. Repositories pick the
// transaction up from the context through Conn.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Transactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise. Nested calls
// join the outer transaction.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	state := &txState{tx: tx}
	if err = fn(context.WithValue(ctx, txKey{}, state)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	for _, cb := range state.afterCommit {
		cb()
	}
	return nil
}

// AfterCommit runs fn once the transaction bound to ctx commits, and drops it
// on rollback. Without a transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		state.afterCommit = append(state.afterCommit, fn)
		return
	}
	fn()
}

// Conn returns the transaction bound to ctx, or db when there is none.
func Conn(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		return state.tx
	}
	return db
}

// InTx reports whether ctx carries a transaction.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*txState)
	return ok
}
