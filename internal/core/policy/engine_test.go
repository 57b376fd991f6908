package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velopay/payment_platform_app/internal/core/domain"
	"github.com/velopay/payment_platform_app/internal/core/policy"
)

var resolveNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func routeRecord(id string, scope domain.PolicyScope, priority int, modify ...func(*domain.PolicyRecord)) domain.PolicyRecord {
	r := domain.PolicyRecord{
		PolicyID: id,
		Family:   domain.PolicyFamilyClearingRoute,
		Scope:    scope,
		Decision: "ZA_RTC",
		Priority: priority,
		IsActive: true,
		Version:  1,
		AuditFields: domain.AuditFields{
			CreatedAt:     resolveNow.Add(-24 * time.Hour),
			CreatedBy:     "ops-1",
			LastUpdatedAt: resolveNow.Add(-24 * time.Hour),
			LastUpdatedBy: "ops-1",
		},
	}
	for _, m := range modify {
		m(&r)
	}
	return r
}

func TestResolve_NoCandidates(t *testing.T) {
	rc := domain.ResolutionContext{TenantID: "tenant-1"}
	assert.Nil(t, policy.Resolve(resolveNow, rc, nil))
	assert.Nil(t, policy.Resolve(resolveNow, rc, []domain.PolicyRecord{}))
}

func TestResolve_ScopeMatching(t *testing.T) {
	rc := domain.ResolutionContext{
		TenantID:    "tenant-1",
		PaymentType: "RTP",
	}

	tests := []struct {
		name    string
		scope   domain.PolicyScope
		matches bool
	}{
		{"tenant only", domain.PolicyScope{TenantID: "tenant-1"}, true},
		{"tenant and payment type", domain.PolicyScope{TenantID: "tenant-1", PaymentType: "RTP"}, true},
		{"wrong tenant", domain.PolicyScope{TenantID: "tenant-2"}, false},
		{"wrong payment type", domain.PolicyScope{TenantID: "tenant-1", PaymentType: "EFT"}, false},
		{"scope field absent from context", domain.PolicyScope{TenantID: "tenant-1", ClearingSystemCode: "ZA_RTC"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Resolve(resolveNow, rc, []domain.PolicyRecord{routeRecord("p1", tt.scope, 100)})
			if tt.matches {
				require.NotNil(t, got)
				assert.Equal(t, "p1", got.PolicyID)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestResolve_SpecificityBeatsPriority(t *testing.T) {
	rc := domain.ResolutionContext{TenantID: "tenant-1", PaymentType: "RTP"}
	candidates := []domain.PolicyRecord{
		routeRecord("broad-favoured", domain.PolicyScope{TenantID: "tenant-1"}, 1),
		routeRecord("narrow", domain.PolicyScope{TenantID: "tenant-1", PaymentType: "RTP"}, 500),
	}

	got := policy.Resolve(resolveNow, rc, candidates)
	require.NotNil(t, got)
	assert.Equal(t, "narrow", got.PolicyID)
}

func TestResolve_TieBreaks(t *testing.T) {
	rc := domain.ResolutionContext{TenantID: "tenant-1"}
	scope := domain.PolicyScope{TenantID: "tenant-1"}

	t.Run("lower priority number wins", func(t *testing.T) {
		got := policy.Resolve(resolveNow, rc, []domain.PolicyRecord{
			routeRecord("p-high", scope, 200),
			routeRecord("p-low", scope, 10),
		})
		require.NotNil(t, got)
		assert.Equal(t, "p-low", got.PolicyID)
	})

	t.Run("more recent update wins on priority tie", func(t *testing.T) {
		older := routeRecord("older", scope, 100)
		newer := routeRecord("newer", scope, 100, func(r *domain.PolicyRecord) {
			r.LastUpdatedAt = resolveNow.Add(-time.Hour)
		})
		got := policy.Resolve(resolveNow, rc, []domain.PolicyRecord{older, newer})
		require.NotNil(t, got)
		assert.Equal(t, "newer", got.PolicyID)
	})

	t.Run("policy ID breaks full ties", func(t *testing.T) {
		got := policy.Resolve(resolveNow, rc, []domain.PolicyRecord{
			routeRecord("p-bbb", scope, 100),
			routeRecord("p-aaa", scope, 100),
		})
		require.NotNil(t, got)
		assert.Equal(t, "p-aaa", got.PolicyID)
	})
}

func TestResolve_OrderIndependent(t *testing.T) {
	rc := domain.ResolutionContext{TenantID: "tenant-1", PaymentType: "RTP", ClearingSystemCode: "ZA_RTC"}
	records := []domain.PolicyRecord{
		routeRecord("a", domain.PolicyScope{TenantID: "tenant-1"}, 50),
		routeRecord("b", domain.PolicyScope{TenantID: "tenant-1", PaymentType: "RTP"}, 100),
		routeRecord("c", domain.PolicyScope{TenantID: "tenant-1", PaymentType: "RTP"}, 100),
		routeRecord("d", domain.PolicyScope{TenantID: "tenant-1", ClearingSystemCode: "ZA_RTC"}, 5),
	}

	permutations := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
		{1, 3, 0, 2},
	}

	for _, perm := range permutations {
		shuffled := make([]domain.PolicyRecord, 0, len(records))
		for _, i := range perm {
			shuffled = append(shuffled, records[i])
		}
		got := policy.Resolve(resolveNow, rc, shuffled)
		require.NotNil(t, got)
		assert.Equal(t, "b", got.PolicyID)
	}
}

func TestResolve_ExcludesInactiveAndOutOfWindow(t *testing.T) {
	rc := domain.ResolutionContext{TenantID: "tenant-1"}
	scope := domain.PolicyScope{TenantID: "tenant-1"}
	future := resolveNow.Add(time.Hour)
	past := resolveNow.Add(-time.Hour)

	tests := []struct {
		name   string
		modify func(*domain.PolicyRecord)
	}{
		{"inactive", func(r *domain.PolicyRecord) { r.IsActive = false }},
		{"not yet effective", func(r *domain.PolicyRecord) { r.EffectiveFrom = &future }},
		{"expired", func(r *domain.PolicyRecord) { r.EffectiveUntil = &past }},
		{"expiry boundary is exclusive", func(r *domain.PolicyRecord) { r.EffectiveUntil = &resolveNow }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			excluded := routeRecord("excluded", scope, 1, tt.modify)
			fallback := routeRecord("fallback", scope, 900)

			got := policy.Resolve(resolveNow, rc, []domain.PolicyRecord{excluded, fallback})
			require.NotNil(t, got)
			assert.Equal(t, "fallback", got.PolicyID)

			assert.Nil(t, policy.Resolve(resolveNow, rc, []domain.PolicyRecord{excluded}))
		})
	}
}

func TestResolve_EffectiveFromBoundaryIsInclusive(t *testing.T) {
	rc := domain.ResolutionContext{TenantID: "tenant-1"}
	record := routeRecord("boundary", domain.PolicyScope{TenantID: "tenant-1"}, 1, func(r *domain.PolicyRecord) {
		r.EffectiveFrom = &resolveNow
	})

	got := policy.Resolve(resolveNow, rc, []domain.PolicyRecord{record})
	require.NotNil(t, got)
	assert.Equal(t, "boundary", got.PolicyID)
}

func TestResolve_ReturnsCopy(t *testing.T) {
	rc := domain.ResolutionContext{TenantID: "tenant-1"}
	candidates := []domain.PolicyRecord{routeRecord("p1", domain.PolicyScope{TenantID: "tenant-1"}, 1)}

	got := policy.Resolve(resolveNow, rc, candidates)
	require.NotNil(t, got)
	got.Decision = "mutated"
	assert.Equal(t, "ZA_RTC", candidates[0].Decision)
}
