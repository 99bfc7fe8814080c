package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/coopledger/internal/usecase"
)

type pgxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager.
//
// A close reads the trial balance and then every loan and saving account; at
// REPEATABLE READ those reads share one snapshot, and a concurrent write that
// invalidates it surfaces as a serialization failure the Retrier handles.
type TxManager struct {
	pool     pgxBeginner
	isoLevel pgx.TxIsoLevel
}

// TxOption configures a TxManager.
type TxOption func(*TxManager)

// WithIsolation sets the isolation level of every transaction.
func WithIsolation(level pgx.TxIsoLevel) TxOption {
	return func(m *TxManager) { m.isoLevel = level }
}

// NewTxManager creates a new TxManager. Transactions default to REPEATABLE READ.
func NewTxManager(pool *pgxpool.Pool, opts ...TxOption) *TxManager {
	return newTxManager(pool, opts...)
}

func newTxManager(pool pgxBeginner, opts ...TxOption) *TxManager {
	m := &TxManager{pool: pool, isoLevel: pgx.RepeatableRead}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Begin starts a transaction. When ctx has a deadline the remaining time is
// also set as the statement_timeout, so Postgres stops a long snapshot query
// on its own instead of waiting for the client to cancel it.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: m.isoLevel})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		ms := time.Until(deadline).Milliseconds()
		if ms < 1 {
			ms = 1
		}
		// SET does not take bind parameters.
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", ms)); err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("set statement timeout: %w", err)
		}
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction. After Commit it returns
// pgx.ErrTxClosed, which deferred rollbacks ignore.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
