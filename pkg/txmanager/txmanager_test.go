package txmanager

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BeautyBooking/pkg/dbmetrics"
)

func newManager(t *testing.T, opts ...Option) (*TransactionManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewTransactionManager(dbmetrics.Wrap(db, nil), opts...), mock
}

func TestTransactionManager_Do(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		m, mock := newManager(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		var sawTx bool
		err := m.Do(context.Background(), func(ctx context.Context) error {
			sawTx = dbmetrics.IsInTransaction(ctx)
			return nil
		})

		require.NoError(t, err)
		assert.True(t, sawTx)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		m, mock := newManager(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := m.Do(context.Background(), func(ctx context.Context) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		m, mock := newManager(t)
		mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

		err := m.Do(context.Background(), func(ctx context.Context) error { return nil })

		assert.ErrorIs(t, err, ErrBeginTx)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call reuses outer transaction", func(t *testing.T) {
		m, mock := newManager(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := m.Do(context.Background(), func(ctx context.Context) error {
			return m.DoSerializable(ctx, func(ctx context.Context) error { return nil })
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionManager_DoSerializable(t *testing.T) {
	t.Run("retries serialization failure", func(t *testing.T) {
		var retries int
		m, mock := newManager(t, WithOnRetry(func(attempt int, err error) { retries++ }))
		mock.ExpectBegin()
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectCommit()

		calls := 0
		err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
			calls++
			if calls == 1 {
				return &pq.Error{Code: "40001"}
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, 1, retries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("retries failure on commit", func(t *testing.T) {
		m, mock := newManager(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(&pq.Error{Code: "40001"})
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := m.DoSerializable(context.Background(), func(ctx context.Context) error { return nil })

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		m, mock := newManager(t, WithMaxRetries(1))
		for i := 0; i < 2; i++ {
			mock.ExpectBegin()
			mock.ExpectRollback()
		}

		err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
			return &pq.Error{Code: "40P01"}
		})

		assert.ErrorIs(t, err, ErrRetriesExhausted)
		assert.True(t, IsRetryable(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		m, mock := newManager(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		calls := 0
		err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
			calls++
			return &pq.Error{Code: "23P01"}
		})

		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
