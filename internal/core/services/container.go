package services

import (
	"github.com/velopay/payment_platform_app/internal/core/policy"
	portsrepo "github.com/velopay/payment_platform_app/internal/core/ports/repositories"
	portssvc "github.com/velopay/payment_platform_app/internal/core/ports/services"
)

// NewContainer creates the service container with properly initialized
// dependencies. The policy service comes first since the payment service
// resolves policies through it.
func NewContainer(
	repos *portsrepo.RepositoryProvider,
	cache *policy.ResolutionCache,
	publisher portssvc.EventPublisher,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Policy = NewPolicyService(repos.PolicyRepo, cache)
	container.Payment = NewPaymentService(repos.PaymentRepo, container.Policy, publisher)

	return container
}

// Compile-time interface checks.
var (
	_ portssvc.PaymentSvcFacade = (*paymentService)(nil)
	_ portssvc.PolicySvcFacade  = (*policyService)(nil)
)
