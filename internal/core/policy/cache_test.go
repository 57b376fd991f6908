package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velopay/payment_platform_app/internal/core/domain"
)

func cachedRecord(id string) *domain.PolicyRecord {
	return &domain.PolicyRecord{
		PolicyID: id,
		Family:   domain.PolicyFamilyClearingRoute,
		Scope:    domain.PolicyScope{TenantID: "tenant-1"},
		Decision: "ZA_RTC",
		IsActive: true,
	}
}

func TestResolutionCache_PutAndGet(t *testing.T) {
	cache := NewResolutionCache(time.Minute)
	rc := domain.ResolutionContext{TenantID: "tenant-1", PaymentType: "RTP"}

	_, ok := cache.Get(domain.PolicyFamilyClearingRoute, rc)
	assert.False(t, ok)

	cache.Put(domain.PolicyFamilyClearingRoute, rc, cachedRecord("p1"))

	got, ok := cache.Get(domain.PolicyFamilyClearingRoute, rc)
	require.True(t, ok)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.PolicyID)

	// Same context under another family is a distinct entry.
	_, ok = cache.Get(domain.PolicyFamilyFraudToggle, rc)
	assert.False(t, ok)

	// A differing context field misses.
	_, ok = cache.Get(domain.PolicyFamilyClearingRoute, domain.ResolutionContext{TenantID: "tenant-1", PaymentType: "EFT"})
	assert.False(t, ok)
}

func TestResolutionCache_NegativeCaching(t *testing.T) {
	cache := NewResolutionCache(time.Minute)
	rc := domain.ResolutionContext{TenantID: "tenant-1"}

	cache.Put(domain.PolicyFamilyClearingRoute, rc, nil)

	got, ok := cache.Get(domain.PolicyFamilyClearingRoute, rc)
	assert.True(t, ok)
	assert.Nil(t, got)
}

func TestResolutionCache_TTLExpiry(t *testing.T) {
	current := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cache := NewResolutionCache(30 * time.Second)
	cache.now = func() time.Time { return current }

	rc := domain.ResolutionContext{TenantID: "tenant-1"}
	cache.Put(domain.PolicyFamilyClearingRoute, rc, cachedRecord("p1"))

	current = current.Add(30 * time.Second)
	_, ok := cache.Get(domain.PolicyFamilyClearingRoute, rc)
	assert.True(t, ok, "entry at exactly the TTL boundary is still live")

	current = current.Add(time.Nanosecond)
	_, ok = cache.Get(domain.PolicyFamilyClearingRoute, rc)
	assert.False(t, ok, "entry past the TTL must expire")
}

func TestResolutionCache_InvalidateFamily(t *testing.T) {
	cache := NewResolutionCache(time.Minute)
	rc := domain.ResolutionContext{TenantID: "tenant-1"}

	cache.Put(domain.PolicyFamilyClearingRoute, rc, cachedRecord("route"))
	cache.Put(domain.PolicyFamilyFraudToggle, rc, cachedRecord("toggle"))

	cache.InvalidateFamily(domain.PolicyFamilyClearingRoute)

	_, ok := cache.Get(domain.PolicyFamilyClearingRoute, rc)
	assert.False(t, ok)

	// Other families are untouched.
	got, ok := cache.Get(domain.PolicyFamilyFraudToggle, rc)
	require.True(t, ok)
	assert.Equal(t, "toggle", got.PolicyID)
}

func TestResolutionCache_Purge(t *testing.T) {
	cache := NewResolutionCache(time.Minute)
	rc := domain.ResolutionContext{TenantID: "tenant-1"}

	cache.Put(domain.PolicyFamilyClearingRoute, rc, cachedRecord("route"))
	cache.Put(domain.PolicyFamilyFraudToggle, rc, nil)

	cache.Purge()

	_, ok := cache.Get(domain.PolicyFamilyClearingRoute, rc)
	assert.False(t, ok)
	_, ok = cache.Get(domain.PolicyFamilyFraudToggle, rc)
	assert.False(t, ok)
}
