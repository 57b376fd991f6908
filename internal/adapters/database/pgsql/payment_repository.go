package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velopay/payment_platform_app/internal/apperrors"
	"github.com/velopay/payment_platform_app/internal/core/domain"
	portsrepo "github.com/velopay/payment_platform_app/internal/core/ports/repositories"
	"github.com/velopay/payment_platform_app/internal/models"
	"github.com/velopay/payment_platform_app/internal/utils/mapping"
	"github.com/velopay/payment_platform_app/internal/utils/pagination"
)

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for payment data.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryWithTx {
	return &PgxPaymentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPaymentRepository implements portsrepo.PaymentRepositoryWithTx
var _ portsrepo.PaymentRepositoryWithTx = (*PgxPaymentRepository)(nil)

const paymentColumns = `
	payment_id, tenant_id, business_unit, amount, currency_code,
	source_account, destination_account, reference, payment_type, priority,
	status, idempotency_key, clearing_system_code, clearing_reference,
	clearing_confirmation, failure_reason,
	initiated_at, validated_at, submitted_at, cleared_at, completed_at, failed_at,
	version, created_at, created_by, last_updated_at, last_updated_by`

// isUniqueViolation checks if an error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// SavePayment persists a newly initiated payment and its initial status
// history within a DB transaction. A duplicate (tenant_id, idempotency_key)
// pair maps to apperrors.ErrDuplicate.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment *domain.Payment) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	modelPayment := mapping.ToModelPayment(payment)
	paymentQuery := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27);
	`
	_, err = tx.Exec(ctx, paymentQuery,
		modelPayment.PaymentID,
		modelPayment.TenantID,
		modelPayment.BusinessUnit,
		modelPayment.Amount,
		modelPayment.CurrencyCode,
		modelPayment.SourceAccount,
		modelPayment.DestinationAccount,
		modelPayment.Reference,
		modelPayment.PaymentType,
		modelPayment.Priority,
		modelPayment.Status,
		modelPayment.IdempotencyKey,
		modelPayment.ClearingSystemCode,
		modelPayment.ClearingReference,
		modelPayment.ClearingConfirmation,
		modelPayment.FailureReason,
		modelPayment.InitiatedAt,
		modelPayment.ValidatedAt,
		modelPayment.SubmittedAt,
		modelPayment.ClearedAt,
		modelPayment.CompletedAt,
		modelPayment.FailedAt,
		modelPayment.Version,
		modelPayment.CreatedAt,
		modelPayment.CreatedBy,
		modelPayment.LastUpdatedAt,
		modelPayment.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return persistenceError("failed to insert payment "+modelPayment.PaymentID, err)
	}

	if err := r.insertStatusChanges(ctx, tx, payment.PaymentID, payment.StatusHistory); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdatePayment persists one lifecycle transition: the payment row is
// updated with an optimistic check against expectedVersion, and the status
// changes appended since the load are inserted, in one transaction.
func (r *PgxPaymentRepository) UpdatePayment(ctx context.Context, payment *domain.Payment, expectedVersion int64) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelPayment := mapping.ToModelPayment(payment)
	updateQuery := `
		UPDATE payments SET
			status = $1,
			clearing_system_code = $2,
			clearing_reference = $3,
			clearing_confirmation = $4,
			failure_reason = $5,
			validated_at = $6,
			submitted_at = $7,
			cleared_at = $8,
			completed_at = $9,
			failed_at = $10,
			version = $11,
			last_updated_at = $12,
			last_updated_by = $13
		WHERE payment_id = $14 AND tenant_id = $15 AND version = $16;
	`
	tag, err := tx.Exec(ctx, updateQuery,
		modelPayment.Status,
		modelPayment.ClearingSystemCode,
		modelPayment.ClearingReference,
		modelPayment.ClearingConfirmation,
		modelPayment.FailureReason,
		modelPayment.ValidatedAt,
		modelPayment.SubmittedAt,
		modelPayment.ClearedAt,
		modelPayment.CompletedAt,
		modelPayment.FailedAt,
		modelPayment.Version,
		modelPayment.LastUpdatedAt,
		modelPayment.LastUpdatedBy,
		modelPayment.PaymentID,
		modelPayment.TenantID,
		expectedVersion,
	)
	if err != nil {
		return persistenceError("failed to update payment "+modelPayment.PaymentID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or someone else won the version race.
		return apperrors.ErrConflict
	}

	// One history row is appended per version bump, so the rows past the
	// expected version are the ones this transition produced.
	if int64(len(payment.StatusHistory)) > expectedVersion {
		newChanges := payment.StatusHistory[expectedVersion:]
		if err := r.insertStatusChanges(ctx, tx, payment.PaymentID, newChanges); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// insertStatusChanges batches history inserts inside the caller's transaction.
func (r *PgxPaymentRepository) insertStatusChanges(ctx context.Context, tx pgx.Tx, paymentID string, changes []domain.StatusChange) error {
	if len(changes) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	historyQuery := `
		INSERT INTO payment_status_history (change_id, payment_id, from_status, to_status, reason, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, change := range changes {
		modelChange := mapping.ToModelStatusChange(paymentID, uuid.NewString(), change)
		batch.Queue(historyQuery,
			modelChange.ChangeID,
			modelChange.PaymentID,
			modelChange.FromStatus,
			modelChange.ToStatus,
			modelChange.Reason,
			modelChange.ChangedBy,
			modelChange.ChangedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return persistenceError("failed to insert status history for payment "+paymentID, err)
	}
	return nil
}

// FindPaymentByID retrieves a payment with its full status history.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, tenantID, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE tenant_id = $1 AND payment_id = $2;`

	modelPayment, err := r.scanPayment(r.Pool.QueryRow(ctx, query, tenantID, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, persistenceError("failed to find payment by ID "+paymentID, err)
	}

	domainPayment := mapping.ToDomainPayment(modelPayment)
	history, err := r.findStatusHistory(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	domainPayment.StatusHistory = history
	return &domainPayment, nil
}

// FindPaymentByIdempotencyKey retrieves the payment previously created with
// the given key, with its full status history.
func (r *PgxPaymentRepository) FindPaymentByIdempotencyKey(ctx context.Context, tenantID, idempotencyKey string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE tenant_id = $1 AND idempotency_key = $2;`

	modelPayment, err := r.scanPayment(r.Pool.QueryRow(ctx, query, tenantID, idempotencyKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, persistenceError("failed to find payment by idempotency key", err)
	}

	domainPayment := mapping.ToDomainPayment(modelPayment)
	history, err := r.findStatusHistory(ctx, domainPayment.PaymentID)
	if err != nil {
		return nil, err
	}
	domainPayment.StatusHistory = history
	return &domainPayment, nil
}

// ListPayments retrieves a paginated list of a tenant's payments using
// token-based pagination on (initiated_at, payment_id) descending.
func (r *PgxPaymentRepository) ListPayments(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.Payment, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + paymentColumns + ` FROM payments WHERE tenant_id = $1`
	orderByClause := `ORDER BY initiated_at DESC, payment_id DESC`

	args := []interface{}{tenantID}
	query := baseQuery

	if nextToken != nil && *nextToken != "" {
		lastInitiatedAt, lastPaymentID, decodeErr := pagination.DecodeCursor(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		// Tuple comparison keeps the cursor stable across equal timestamps.
		query += ` AND (initiated_at, payment_id) < ($2, $3)`
		args = append(args, lastInitiatedAt, lastPaymentID)
	}

	query += ` ` + orderByClause + ` LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, persistenceError("failed to query payments for tenant "+tenantID, err)
	}
	defer rows.Close()

	payments := make([]models.Payment, 0, fetchLimit)
	for rows.Next() {
		modelPayment, err := r.scanPayment(rows)
		if err != nil {
			return nil, nil, persistenceError("failed to scan payment row for tenant "+tenantID, err)
		}
		payments = append(payments, modelPayment)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, persistenceError("error iterating payment rows for tenant "+tenantID, err)
	}

	var nextTokenVal *string
	if len(payments) > limit {
		last := payments[limit-1]
		token := pagination.EncodeCursor(last.InitiatedAt, last.PaymentID)
		nextTokenVal = &token
		payments = payments[:limit]
	}

	results := make([]domain.Payment, len(payments))
	for i, m := range payments {
		results[i] = mapping.ToDomainPayment(m)
	}
	return results, nextTokenVal, nil
}

// findStatusHistory retrieves a payment's status changes in chronological order.
func (r *PgxPaymentRepository) findStatusHistory(ctx context.Context, paymentID string) ([]domain.StatusChange, error) {
	query := `
		SELECT change_id, payment_id, from_status, to_status, reason, changed_by, changed_at
		FROM payment_status_history
		WHERE payment_id = $1
		ORDER BY changed_at, change_id;
	`
	rows, err := r.Pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, persistenceError("failed to query status history for payment "+paymentID, err)
	}
	defer rows.Close()

	history := []domain.StatusChange{}
	for rows.Next() {
		var m models.StatusChange
		if err := rows.Scan(
			&m.ChangeID,
			&m.PaymentID,
			&m.FromStatus,
			&m.ToStatus,
			&m.Reason,
			&m.ChangedBy,
			&m.ChangedAt,
		); err != nil {
			return nil, persistenceError("failed to scan status history row for payment "+paymentID, err)
		}
		history = append(history, mapping.ToDomainStatusChange(m))
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("error iterating status history rows for payment "+paymentID, err)
	}
	return history, nil
}

// scanPayment scans one payments row into the persistence model.
func (r *PgxPaymentRepository) scanPayment(row pgx.Row) (models.Payment, error) {
	var m models.Payment
	err := row.Scan(
		&m.PaymentID,
		&m.TenantID,
		&m.BusinessUnit,
		&m.Amount,
		&m.CurrencyCode,
		&m.SourceAccount,
		&m.DestinationAccount,
		&m.Reference,
		&m.PaymentType,
		&m.Priority,
		&m.Status,
		&m.IdempotencyKey,
		&m.ClearingSystemCode,
		&m.ClearingReference,
		&m.ClearingConfirmation,
		&m.FailureReason,
		&m.InitiatedAt,
		&m.ValidatedAt,
		&m.SubmittedAt,
		&m.ClearedAt,
		&m.CompletedAt,
		&m.FailedAt,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}
