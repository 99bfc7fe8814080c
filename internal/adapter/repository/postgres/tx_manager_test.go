package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManagerBeginUsesRepeatableRead(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mockPool.ExpectCommit()

	tx, err := newTxManager(mockPool).Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit(context.Background()))

	assertExpectations(t, mockPool)
}

func TestTxManagerWithIsolation(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mockPool.ExpectRollback()

	tx, err := newTxManager(mockPool, WithIsolation(pgx.Serializable)).Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(context.Background()))

	assertExpectations(t, mockPool)
}

func TestTxManagerSetsStatementTimeoutFromDeadline(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mockPool.ExpectExec("SET LOCAL statement_timeout = \\d+").
		WillReturnResult(pgxmock.NewResult("SET", 0))
	mockPool.ExpectCommit()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tx, err := newTxManager(mockPool).Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assertExpectations(t, mockPool)
}

func TestTxManagerStatementTimeoutFailureRollsBack(t *testing.T) {
	mockPool := newMockPool(t)
	setErr := errors.New("set failed")
	mockPool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mockPool.ExpectExec("SET LOCAL statement_timeout").WillReturnError(setErr)
	mockPool.ExpectRollback()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	_, err := newTxManager(mockPool).Begin(ctx)
	assert.ErrorIs(t, err, setErr)

	assertExpectations(t, mockPool)
}

func TestTxManagerBeginError(t *testing.T) {
	mockPool := newMockPool(t)
	mockErr := errors.New("begin failed")
	mockPool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead}).WillReturnError(mockErr)

	tx, err := newTxManager(mockPool).Begin(context.Background())
	assert.ErrorIs(t, err, mockErr)
	assert.Nil(t, tx)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}
