package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notespace/pkg/db/postgres"
)

var (
	errStep   = errors.New("step failed")
	errBegin  = errors.New("begin failed")
	errCommit = errors.New("commit failed")
)

func TestTransactor_WithTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits when fn succeeds", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM notes").WithArgs("user-1").WillReturnResult(pgxmock.NewResult("DELETE", 2))
		mock.ExpectExec("DELETE FROM users").WithArgs("user-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		transactor := postgres.NewTransactor(mock)
		err = transactor.WithTransaction(ctx, func(txCtx context.Context) error {
			conn := postgres.Conn(txCtx, mock)
			if _, err := conn.Exec(txCtx, "DELETE FROM notes WHERE user_id = $1", "user-1"); err != nil {
				return err
			}
			_, err := conn.Exec(txCtx, "DELETE FROM users WHERE id = $1", "user-1")
			return err
		})

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		transactor := postgres.NewTransactor(mock)
		err = transactor.WithTransaction(ctx, func(context.Context) error {
			return errStep
		})

		require.ErrorIs(t, err, errStep)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin().WillReturnError(errBegin)

		called := false
		transactor := postgres.NewTransactor(mock)
		err = transactor.WithTransaction(ctx, func(context.Context) error {
			called = true
			return nil
		})

		require.ErrorIs(t, err, errBegin)
		assert.False(t, called)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errCommit)

		transactor := postgres.NewTransactor(mock)
		err = transactor.WithTransaction(ctx, func(context.Context) error { return nil })

		require.ErrorIs(t, err, errCommit)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call reuses outer transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		transactor := postgres.NewTransactor(mock)
		err = transactor.WithTransaction(ctx, func(txCtx context.Context) error {
			return transactor.WithTransaction(txCtx, func(context.Context) error { return nil })
		})

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConnWithoutTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	assert.Equal(t, postgres.Querier(mock), postgres.Conn(context.Background(), mock))
}

func TestMigrationsSource(t *testing.T) {
	src, err := postgres.MigrationsSource("/opt/migrations")
	require.NoError(t, err)
	assert.Equal(t, "file:///opt/migrations", src)

	src, err = postgres.MigrationsSource("migrations")
	require.NoError(t, err)
	assert.Contains(t, src, "file://")
	assert.Contains(t, src, "migrations")
}
