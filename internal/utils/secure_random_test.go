package utils

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureRandomString(t *testing.T) {
	s, err := GenerateSecureRandomString(8)
	require.NoError(t, err)
	assert.Len(t, s, 16)

	_, err = hex.DecodeString(s)
	assert.NoError(t, err, "output should be valid hex")

	other, err := GenerateSecureRandomString(8)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}

func TestGenerateSecureRandomString_RejectsNonPositiveLength(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := GenerateSecureRandomString(n)
		assert.Error(t, err)
	}
}
