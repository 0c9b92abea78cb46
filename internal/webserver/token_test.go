package webserver

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	signed, err := IssueToken(secret, "admin", "super")
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "admin", claims["usr"])
	assert.Equal(t, "super", claims["lvl"])
	assert.NotNil(t, claims["exp"])
}

func TestIssueTokenRejectsWrongKey(t *testing.T) {
	signed, err := IssueToken("right-secret", "admin", "super")
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	assert.Error(t, err)
}
