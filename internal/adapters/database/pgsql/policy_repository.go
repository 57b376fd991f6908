package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velopay/payment_platform_app/internal/apperrors"
	"github.com/velopay/payment_platform_app/internal/core/domain"
	portsrepo "github.com/velopay/payment_platform_app/internal/core/ports/repositories"
	"github.com/velopay/payment_platform_app/internal/models"
	"github.com/velopay/payment_platform_app/internal/utils/mapping"
)

type PgxPolicyRepository struct {
	BaseRepository
}

// newPgxPolicyRepository creates a new repository for policy records.
func newPgxPolicyRepository(pool *pgxpool.Pool) portsrepo.PolicyRepositoryFacade {
	return &PgxPolicyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPolicyRepository implements portsrepo.PolicyRepositoryFacade
var _ portsrepo.PolicyRepositoryFacade = (*PgxPolicyRepository)(nil)

const policyColumns = `
	policy_id, family, tenant_id, payment_type, local_instrument_code,
	clearing_system_code, decision, priority, is_active,
	effective_from, effective_until, reason, version,
	created_at, created_by, last_updated_at, last_updated_by`

// SavePolicy inserts a new policy record.
func (r *PgxPolicyRepository) SavePolicy(ctx context.Context, record domain.PolicyRecord) error {
	modelRecord := mapping.ToModelPolicyRecord(record)
	query := `
		INSERT INTO policy_records (` + policyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelRecord.PolicyID,
		modelRecord.Family,
		modelRecord.TenantID,
		modelRecord.PaymentType,
		modelRecord.LocalInstrumentCode,
		modelRecord.ClearingSystemCode,
		modelRecord.Decision,
		modelRecord.Priority,
		modelRecord.IsActive,
		modelRecord.EffectiveFrom,
		modelRecord.EffectiveUntil,
		modelRecord.Reason,
		modelRecord.Version,
		modelRecord.CreatedAt,
		modelRecord.CreatedBy,
		modelRecord.LastUpdatedAt,
		modelRecord.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return policyStoreError("failed to insert policy record "+modelRecord.PolicyID, err)
	}
	return nil
}

// UpdatePolicy updates a policy record guarded by an optimistic check
// against expectedVersion.
func (r *PgxPolicyRepository) UpdatePolicy(ctx context.Context, record domain.PolicyRecord, expectedVersion int64) error {
	modelRecord := mapping.ToModelPolicyRecord(record)
	query := `
		UPDATE policy_records SET
			decision = $1,
			priority = $2,
			is_active = $3,
			effective_from = $4,
			effective_until = $5,
			reason = $6,
			version = $7,
			last_updated_at = $8,
			last_updated_by = $9
		WHERE policy_id = $10 AND version = $11;
	`
	tag, err := r.Pool.Exec(ctx, query,
		modelRecord.Decision,
		modelRecord.Priority,
		modelRecord.IsActive,
		modelRecord.EffectiveFrom,
		modelRecord.EffectiveUntil,
		modelRecord.Reason,
		modelRecord.Version,
		modelRecord.LastUpdatedAt,
		modelRecord.LastUpdatedBy,
		modelRecord.PolicyID,
		expectedVersion,
	)
	if err != nil {
		return policyStoreError("failed to update policy record "+modelRecord.PolicyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// DeletePolicy removes a policy record.
func (r *PgxPolicyRepository) DeletePolicy(ctx context.Context, policyID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM policy_records WHERE policy_id = $1;`, policyID)
	if err != nil {
		return policyStoreError("failed to delete policy record "+policyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindPolicyByID retrieves a single policy record.
func (r *PgxPolicyRepository) FindPolicyByID(ctx context.Context, policyID string) (*domain.PolicyRecord, error) {
	query := `SELECT ` + policyColumns + ` FROM policy_records WHERE policy_id = $1;`

	modelRecord, err := r.scanPolicy(r.Pool.QueryRow(ctx, query, policyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, policyStoreError("failed to find policy record by ID "+policyID, err)
	}

	domainRecord := mapping.ToDomainPolicyRecord(modelRecord)
	return &domainRecord, nil
}

// FindCandidates retrieves every record of the family scoped to the tenant.
// Active flag and effectiveness filtering is the resolution engine's job.
func (r *PgxPolicyRepository) FindCandidates(ctx context.Context, family domain.PolicyFamily, tenantID string) ([]domain.PolicyRecord, error) {
	query := `
		SELECT ` + policyColumns + `
		FROM policy_records
		WHERE family = $1 AND tenant_id = $2;
	`
	return r.queryPolicies(ctx, query, string(family), tenantID)
}

// ListPolicies retrieves all records of a family for a tenant, newest first.
func (r *PgxPolicyRepository) ListPolicies(ctx context.Context, family domain.PolicyFamily, tenantID string) ([]domain.PolicyRecord, error) {
	query := `
		SELECT ` + policyColumns + `
		FROM policy_records
		WHERE family = $1 AND tenant_id = $2
		ORDER BY created_at DESC, policy_id;
	`
	return r.queryPolicies(ctx, query, string(family), tenantID)
}

func (r *PgxPolicyRepository) queryPolicies(ctx context.Context, query string, args ...interface{}) ([]domain.PolicyRecord, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, policyStoreError("failed to query policy records", err)
	}
	defer rows.Close()

	records := []models.PolicyRecord{}
	for rows.Next() {
		modelRecord, err := r.scanPolicy(rows)
		if err != nil {
			return nil, policyStoreError("failed to scan policy record row", err)
		}
		records = append(records, modelRecord)
	}
	if err := rows.Err(); err != nil {
		return nil, policyStoreError("error iterating policy record rows", err)
	}

	return mapping.ToDomainPolicyRecords(records), nil
}

// scanPolicy scans one policy_records row into the persistence model.
func (r *PgxPolicyRepository) scanPolicy(row pgx.Row) (models.PolicyRecord, error) {
	var m models.PolicyRecord
	err := row.Scan(
		&m.PolicyID,
		&m.Family,
		&m.TenantID,
		&m.PaymentType,
		&m.LocalInstrumentCode,
		&m.ClearingSystemCode,
		&m.Decision,
		&m.Priority,
		&m.IsActive,
		&m.EffectiveFrom,
		&m.EffectiveUntil,
		&m.Reason,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}
