package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"notespace/pkg/logger"
)

// Querier - общий набор методов пула и транзакции pgx.
type Querier interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

// PgxPoolInterface описывает пул соединений, используемый репозиториями.
// Ему удовлетворяют *pgxpool.Pool и pgxmock.PgxPoolIface.
type PgxPoolInterface interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

type txKey struct{}

// Conn возвращает транзакцию из контекста, если она открыта, иначе fallback.
func Conn(ctx context.Context, fallback Querier) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return fallback
}

// Transactor выполняет функции внутри транзакции.
type Transactor struct {
	pool PgxPoolInterface
}

// NewTransactor создает новый Transactor.
func NewTransactor(pool PgxPoolInterface) *Transactor {
	return &Transactor{pool: pool}
}

// WithTransaction выполняет fn в транзакции, сохраненной в контексте.
// Ошибка или паника fn откатывают транзакцию. Вложенный вызов переиспользует внешнюю транзакцию.
func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	log := logger.Log(ctx).With(zap.String("method", "Transactor.WithTransaction"))

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		log.Error(ctx, "failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Error(ctx, "failed to rollback transaction", zap.Error(rbErr))
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error(ctx, "failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
