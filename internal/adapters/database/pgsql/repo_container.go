package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/velopay/payment_platform_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	paymentRepo := newPgxPaymentRepository(dbPool)
	policyRepo := newPgxPolicyRepository(dbPool)

	return portsrepo.RepositoryProvider{
		PaymentRepo: paymentRepo,
		PolicyRepo:  policyRepo,
	}
}
