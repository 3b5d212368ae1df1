package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_RoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	InitJWTSecret()

	signed, err := GenerateToken(42, "user")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return JWTSecret, nil
	}, jwt.WithExpirationRequired())
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, float64(42), claims["user_id"])
	require.Equal(t, "user", claims["role"])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	require.Greater(t, exp, float64(time.Now().Unix()))
}

func TestGenerateToken_WrongSecretRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	InitJWTSecret()

	signed, err := GenerateToken(7, "admin")
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("another-secret"), nil
	})
	require.Error(t, err)
}
