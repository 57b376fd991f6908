package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/velopay/payment_platform_app/internal/apperrors"
	"github.com/velopay/payment_platform_app/internal/core/domain"
	"github.com/velopay/payment_platform_app/internal/core/policy"
	portssvc "github.com/velopay/payment_platform_app/internal/core/ports/services"
	"github.com/velopay/payment_platform_app/internal/core/services"
	"github.com/velopay/payment_platform_app/internal/dto"
)

// MockPolicyRepository is a mock type for the PolicyRepositoryFacade interface
type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) FindPolicyByID(ctx context.Context, policyID string) (*domain.PolicyRecord, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PolicyRecord), args.Error(1)
}

func (m *MockPolicyRepository) FindCandidates(ctx context.Context, family domain.PolicyFamily, tenantID string) ([]domain.PolicyRecord, error) {
	args := m.Called(ctx, family, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PolicyRecord), args.Error(1)
}

func (m *MockPolicyRepository) ListPolicies(ctx context.Context, family domain.PolicyFamily, tenantID string) ([]domain.PolicyRecord, error) {
	args := m.Called(ctx, family, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PolicyRecord), args.Error(1)
}

func (m *MockPolicyRepository) SavePolicy(ctx context.Context, record domain.PolicyRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPolicyRepository) UpdatePolicy(ctx context.Context, record domain.PolicyRecord, expectedVersion int64) error {
	args := m.Called(ctx, record, expectedVersion)
	return args.Error(0)
}

func (m *MockPolicyRepository) DeletePolicy(ctx context.Context, policyID string) error {
	args := m.Called(ctx, policyID)
	return args.Error(0)
}

// --- Test Suite Setup ---

type PolicyServiceTestSuite struct {
	suite.Suite
	mockRepo *MockPolicyRepository
	cache    *policy.ResolutionCache
	service  portssvc.PolicySvcFacade
	ctx      context.Context
}

func (suite *PolicyServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockPolicyRepository)
	suite.cache = policy.NewResolutionCache(time.Minute)
	suite.service = services.NewPolicyService(suite.mockRepo, suite.cache)
	suite.ctx = context.Background()
}

func (suite *PolicyServiceTestSuite) routePolicy(id, decision string) domain.PolicyRecord {
	now := time.Now().UTC()
	return domain.PolicyRecord{
		PolicyID: id,
		Family:   domain.PolicyFamilyClearingRoute,
		Scope:    domain.PolicyScope{TenantID: "tenant-1"},
		Decision: decision,
		Priority: 100,
		IsActive: true,
		Version:  1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "ops-1",
			LastUpdatedAt: now,
			LastUpdatedBy: "ops-1",
		},
	}
}

func (suite *PolicyServiceTestSuite) fraudPolicy(decision string) domain.PolicyRecord {
	record := suite.routePolicy("fraud-1", decision)
	record.Family = domain.PolicyFamilyFraudToggle
	return record
}

// --- Resolution ---

func (suite *PolicyServiceTestSuite) TestResolvePolicy_CachesResult() {
	rc := domain.ResolutionContext{TenantID: "tenant-1"}
	suite.mockRepo.On("FindCandidates", suite.ctx, domain.PolicyFamilyClearingRoute, "tenant-1").
		Return([]domain.PolicyRecord{suite.routePolicy("p1", "ZA_RTC")}, nil).Once()

	first, err := suite.service.ResolvePolicy(suite.ctx, domain.PolicyFamilyClearingRoute, rc)
	suite.Require().NoError(err)
	suite.Require().NotNil(first)
	suite.Equal("p1", first.PolicyID)

	second, err := suite.service.ResolvePolicy(suite.ctx, domain.PolicyFamilyClearingRoute, rc)
	suite.Require().NoError(err)
	suite.Require().NotNil(second)
	suite.Equal("p1", second.PolicyID)

	suite.mockRepo.AssertNumberOfCalls(suite.T(), "FindCandidates", 1)
}

func (suite *PolicyServiceTestSuite) TestResolvePolicy_CachesNegativeResult() {
	rc := domain.ResolutionContext{TenantID: "tenant-1"}
	suite.mockRepo.On("FindCandidates", suite.ctx, domain.PolicyFamilyClearingRoute, "tenant-1").
		Return([]domain.PolicyRecord{}, nil).Once()

	for i := 0; i < 2; i++ {
		record, err := suite.service.ResolvePolicy(suite.ctx, domain.PolicyFamilyClearingRoute, rc)
		suite.Require().NoError(err)
		suite.Nil(record)
	}

	suite.mockRepo.AssertNumberOfCalls(suite.T(), "FindCandidates", 1)
}

func (suite *PolicyServiceTestSuite) TestResolvePolicy_UnknownFamily() {
	_, err := suite.service.ResolvePolicy(suite.ctx, "NOT_A_FAMILY", domain.ResolutionContext{TenantID: "tenant-1"})
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindCandidates", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PolicyServiceTestSuite) TestResolvePolicy_StoreError() {
	suite.mockRepo.On("FindCandidates", suite.ctx, domain.PolicyFamilyClearingRoute, "tenant-1").
		Return(nil, errors.New("connection refused")).Once()

	_, err := suite.service.ResolvePolicy(suite.ctx, domain.PolicyFamilyClearingRoute,
		domain.ResolutionContext{TenantID: "tenant-1"})
	suite.ErrorIs(err, apperrors.ErrPolicyStoreUnavailable)
}

func (suite *PolicyServiceTestSuite) TestIsFraudCheckEnabled() {
	rc := domain.ResolutionContext{TenantID: "tenant-1"}

	suite.Run("disabled by record", func() {
		suite.SetupTest()
		suite.mockRepo.On("FindCandidates", suite.ctx, domain.PolicyFamilyFraudToggle, "tenant-1").
			Return([]domain.PolicyRecord{suite.fraudPolicy(domain.PolicyDecisionDisabled)}, nil).Once()
		suite.False(suite.service.IsFraudCheckEnabled(suite.ctx, rc))
	})

	suite.Run("enabled by record", func() {
		suite.SetupTest()
		suite.mockRepo.On("FindCandidates", suite.ctx, domain.PolicyFamilyFraudToggle, "tenant-1").
			Return([]domain.PolicyRecord{suite.fraudPolicy(domain.PolicyDecisionEnabled)}, nil).Once()
		suite.True(suite.service.IsFraudCheckEnabled(suite.ctx, rc))
	})

	suite.Run("fails open without a record", func() {
		suite.SetupTest()
		suite.mockRepo.On("FindCandidates", suite.ctx, domain.PolicyFamilyFraudToggle, "tenant-1").
			Return([]domain.PolicyRecord{}, nil).Once()
		suite.True(suite.service.IsFraudCheckEnabled(suite.ctx, rc))
	})

	suite.Run("fails open on store error", func() {
		suite.SetupTest()
		suite.mockRepo.On("FindCandidates", suite.ctx, domain.PolicyFamilyFraudToggle, "tenant-1").
			Return(nil, errors.New("connection refused")).Once()
		suite.True(suite.service.IsFraudCheckEnabled(suite.ctx, rc))
	})
}

func (suite *PolicyServiceTestSuite) TestResolveClearingRoute() {
	rc := domain.ResolutionContext{TenantID: "tenant-1", PaymentType: "RTP"}

	suite.mockRepo.On("FindCandidates", suite.ctx, domain.PolicyFamilyClearingRoute, "tenant-1").
		Return([]domain.PolicyRecord{suite.routePolicy("p1", "ZA_RTC")}, nil).Once()

	route, err := suite.service.ResolveClearingRoute(suite.ctx, rc)
	suite.Require().NoError(err)
	suite.Equal("ZA_RTC", route)
}

func (suite *PolicyServiceTestSuite) TestResolveClearingRoute_NoRecord() {
	suite.mockRepo.On("FindCandidates", suite.ctx, domain.PolicyFamilyClearingRoute, "tenant-1").
		Return([]domain.PolicyRecord{}, nil).Once()

	_, err := suite.service.ResolveClearingRoute(suite.ctx, domain.ResolutionContext{TenantID: "tenant-1"})
	suite.ErrorIs(err, apperrors.ErrUnresolvedPolicy)
}

func (suite *PolicyServiceTestSuite) TestResolveGatewayAuth_NoRecord() {
	suite.mockRepo.On("FindCandidates", suite.ctx, domain.PolicyFamilyGatewayAuth, "tenant-1").
		Return([]domain.PolicyRecord{}, nil).Once()

	_, err := suite.service.ResolveGatewayAuth(suite.ctx, domain.ResolutionContext{TenantID: "tenant-1"})
	suite.ErrorIs(err, apperrors.ErrUnresolvedPolicy)
}

// --- Administration ---

func (suite *PolicyServiceTestSuite) TestCreatePolicy_Success() {
	req := dto.CreatePolicyRequest{
		Family:      domain.PolicyFamilyClearingRoute,
		PaymentType: "RTP",
		Decision:    "ZA_RTC",
		Priority:    50,
	}

	suite.mockRepo.On("SavePolicy", suite.ctx, mock.MatchedBy(func(r domain.PolicyRecord) bool {
		return r.Family == domain.PolicyFamilyClearingRoute &&
			r.Scope.TenantID == "tenant-1" &&
			r.Scope.PaymentType == "RTP" &&
			r.Decision == "ZA_RTC" &&
			r.IsActive &&
			r.Version == 1 &&
			r.CreatedBy == "ops-1"
	})).Return(nil).Once()

	record, err := suite.service.CreatePolicy(suite.ctx, "tenant-1", req, "ops-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(record)
	suite.NotEmpty(record.PolicyID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PolicyServiceTestSuite) TestCreatePolicy_InvalidatesFamilyCache() {
	rc := domain.ResolutionContext{TenantID: "tenant-1"}

	suite.mockRepo.On("FindCandidates", suite.ctx, domain.PolicyFamilyClearingRoute, "tenant-1").
		Return([]domain.PolicyRecord{suite.routePolicy("old", "ZA_EFT")}, nil).Once()
	route, err := suite.service.ResolveClearingRoute(suite.ctx, rc)
	suite.Require().NoError(err)
	suite.Equal("ZA_EFT", route)

	suite.mockRepo.On("SavePolicy", suite.ctx, mock.Anything).Return(nil).Once()
	_, err = suite.service.CreatePolicy(suite.ctx, "tenant-1", dto.CreatePolicyRequest{
		Family:   domain.PolicyFamilyClearingRoute,
		Decision: "ZA_RTC",
		Priority: 1,
	}, "ops-1")
	suite.Require().NoError(err)

	// The write evicted the family, so the next resolve hits the store.
	suite.mockRepo.On("FindCandidates", suite.ctx, domain.PolicyFamilyClearingRoute, "tenant-1").
		Return([]domain.PolicyRecord{suite.routePolicy("new", "ZA_RTC")}, nil).Once()
	route, err = suite.service.ResolveClearingRoute(suite.ctx, rc)
	suite.Require().NoError(err)
	suite.Equal("ZA_RTC", route)

	suite.mockRepo.AssertNumberOfCalls(suite.T(), "FindCandidates", 2)
}

func (suite *PolicyServiceTestSuite) TestCreatePolicy_InvalidFraudToggleDecision() {
	req := dto.CreatePolicyRequest{
		Family:   domain.PolicyFamilyFraudToggle,
		Decision: "SOMETIMES",
	}

	record, err := suite.service.CreatePolicy(suite.ctx, "tenant-1", req, "ops-1")

	suite.Nil(record)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SavePolicy", mock.Anything, mock.Anything)
}

func (suite *PolicyServiceTestSuite) TestUpdatePolicy_Success() {
	existing := suite.routePolicy("p1", "ZA_EFT")
	newDecision := "ZA_RTC"

	suite.mockRepo.On("FindPolicyByID", suite.ctx, "p1").Return(&existing, nil).Once()
	suite.mockRepo.On("UpdatePolicy", suite.ctx, mock.MatchedBy(func(r domain.PolicyRecord) bool {
		return r.PolicyID == "p1" && r.Decision == "ZA_RTC" && r.Version == 2 && r.LastUpdatedBy == "ops-2"
	}), int64(1)).Return(nil).Once()

	record, err := suite.service.UpdatePolicy(suite.ctx, "tenant-1", "p1", dto.UpdatePolicyRequest{
		Decision: &newDecision,
		Version:  1,
	}, "ops-2")

	suite.Require().NoError(err)
	suite.Equal("ZA_RTC", record.Decision)
	suite.Equal(int64(2), record.Version)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PolicyServiceTestSuite) TestUpdatePolicy_VersionMismatch() {
	existing := suite.routePolicy("p1", "ZA_EFT")
	existing.Version = 4

	suite.mockRepo.On("FindPolicyByID", suite.ctx, "p1").Return(&existing, nil).Once()

	record, err := suite.service.UpdatePolicy(suite.ctx, "tenant-1", "p1", dto.UpdatePolicyRequest{Version: 3}, "ops-2")

	suite.Nil(record)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdatePolicy", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PolicyServiceTestSuite) TestDeletePolicy_InvalidatesFamilyCache() {
	existing := suite.fraudPolicy(domain.PolicyDecisionDisabled)
	rc := domain.ResolutionContext{TenantID: "tenant-1"}

	suite.mockRepo.On("FindCandidates", suite.ctx, domain.PolicyFamilyFraudToggle, "tenant-1").
		Return([]domain.PolicyRecord{existing}, nil).Once()
	suite.False(suite.service.IsFraudCheckEnabled(suite.ctx, rc))

	suite.mockRepo.On("FindPolicyByID", suite.ctx, "fraud-1").Return(&existing, nil).Once()
	suite.mockRepo.On("DeletePolicy", suite.ctx, "fraud-1").Return(nil).Once()
	suite.Require().NoError(suite.service.DeletePolicy(suite.ctx, "tenant-1", "fraud-1", "ops-1"))

	suite.mockRepo.On("FindCandidates", suite.ctx, domain.PolicyFamilyFraudToggle, "tenant-1").
		Return([]domain.PolicyRecord{}, nil).Once()
	suite.True(suite.service.IsFraudCheckEnabled(suite.ctx, rc), "deleting the toggle reverts to fail-open")

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PolicyServiceTestSuite) TestDeletePolicy_NotFound() {
	suite.mockRepo.On("FindPolicyByID", suite.ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.DeletePolicy(suite.ctx, "tenant-1", "missing", "ops-1")

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeletePolicy", mock.Anything, mock.Anything)
}

func (suite *PolicyServiceTestSuite) TestGetPolicyByID_OtherTenantIsNotFound() {
	existing := suite.routePolicy("p1", "ZA_RTC")
	existing.Scope.TenantID = "tenant-2"

	suite.mockRepo.On("FindPolicyByID", suite.ctx, "p1").Return(&existing, nil).Once()

	record, err := suite.service.GetPolicyByID(suite.ctx, "tenant-1", "p1")

	suite.Nil(record)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *PolicyServiceTestSuite) TestUpdatePolicy_OtherTenantIsNotFound() {
	existing := suite.routePolicy("p1", "ZA_RTC")
	existing.Scope.TenantID = "tenant-2"
	newDecision := "ZA_EFT"

	suite.mockRepo.On("FindPolicyByID", suite.ctx, "p1").Return(&existing, nil).Once()

	record, err := suite.service.UpdatePolicy(suite.ctx, "tenant-1", "p1", dto.UpdatePolicyRequest{
		Decision: &newDecision,
		Version:  1,
	}, "ops-2")

	suite.Nil(record)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdatePolicy", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PolicyServiceTestSuite) TestDeletePolicy_OtherTenantIsNotFound() {
	existing := suite.routePolicy("p1", "ZA_RTC")
	existing.Scope.TenantID = "tenant-2"

	suite.mockRepo.On("FindPolicyByID", suite.ctx, "p1").Return(&existing, nil).Once()

	err := suite.service.DeletePolicy(suite.ctx, "tenant-1", "p1", "ops-1")

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeletePolicy", mock.Anything, mock.Anything)
}

func (suite *PolicyServiceTestSuite) TestListPolicies_UnknownFamily() {
	_, err := suite.service.ListPolicies(suite.ctx, "NOT_A_FAMILY", "tenant-1")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestPolicyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PolicyServiceTestSuite))
}
