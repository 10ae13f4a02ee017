package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("gov@example.com", "gov", "test-secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, role, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "gov@example.com", email)
	assert.Equal(t, "gov", role)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("gov@example.com", "gov", "secret-a")
	require.NoError(t, err)

	_, _, err = ParseJWT(token, "secret-b")
	assert.Error(t, err)
}

func TestJWTGarbageToken(t *testing.T) {
	_, _, err := ParseJWT("not-a-token", "secret")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	req, _ := http.NewRequest("GET", "/", nil)
	assert.Empty(t, ExtractToken(req))

	req.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", ExtractToken(req))

	req.Header.Set("Authorization", "bearer abc123")
	assert.Equal(t, "abc123", ExtractToken(req))

	req.Header.Set("Authorization", "Basic abc123")
	assert.Empty(t, ExtractToken(req))
}
