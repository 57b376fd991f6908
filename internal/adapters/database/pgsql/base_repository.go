package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velopay/payment_platform_app/internal/apperrors"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// persistenceError classifies an infrastructure failure of the payment
// store as retryable. The sentinel rides inside the AppError so callers
// can still match it with errors.Is.
func persistenceError(message string, err error) error {
	return apperrors.NewAppError(503, message, fmt.Errorf("%w: %v", apperrors.ErrPersistenceUnavailable, err))
}

// policyStoreError is the policy store counterpart of persistenceError.
func policyStoreError(message string, err error) error {
	return apperrors.NewAppError(503, message, fmt.Errorf("%w: %v", apperrors.ErrPolicyStoreUnavailable, err))
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, persistenceError("failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return persistenceError("failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) && !errors.Is(err, pgx.ErrTxClosed) {
		return persistenceError("failed to rollback transaction", err)
	}
	return nil
}
