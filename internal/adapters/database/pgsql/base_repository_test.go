package pgsql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velopay/payment_platform_app/internal/apperrors"
)

func TestPersistenceErrorCarriesRetryableSentinel(t *testing.T) {
	cause := errors.New("connection refused")
	err := persistenceError("failed to insert payment pay-1", cause)

	assert.ErrorIs(t, err, apperrors.ErrPersistenceUnavailable)
	assert.NotErrorIs(t, err, apperrors.ErrPolicyStoreUnavailable)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 503, appErr.Code)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPolicyStoreErrorCarriesRetryableSentinel(t *testing.T) {
	err := policyStoreError("failed to query policy records", errors.New("pool closed"))

	assert.ErrorIs(t, err, apperrors.ErrPolicyStoreUnavailable)
	assert.NotErrorIs(t, err, apperrors.ErrPersistenceUnavailable)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 503, appErr.Code)
}
