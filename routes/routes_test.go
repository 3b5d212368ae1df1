package routes

import (
	"testing"
	"time"

	"autohive/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(utils.JWTSecret)
	require.NoError(t, err)
	return signed
}

func TestAuthenticate_Valid(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	utils.InitJWTSecret()

	signed, err := utils.GenerateToken(42, "user")
	require.NoError(t, err)

	userID, role, err := authenticate("Bearer " + signed)
	require.NoError(t, err)
	require.Equal(t, 42, userID)
	require.Equal(t, "user", role)
}

func TestAuthenticate_HeaderShape(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	utils.InitJWTSecret()

	_, _, err := authenticate("")
	require.ErrorIs(t, err, errNoAuthHeader)

	_, _, err = authenticate("just-a-token")
	require.ErrorIs(t, err, errBadAuthFormat)

	_, _, err = authenticate("Basic dXNlcjpwYXNz")
	require.ErrorIs(t, err, errBadAuthFormat)
}

func TestAuthenticate_Expired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	utils.InitJWTSecret()

	signed := signToken(t, jwt.MapClaims{
		"user_id": 1,
		"role":    "user",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	_, _, err := authenticate("Bearer " + signed)
	require.ErrorIs(t, err, errTokenExpired)
}

func TestAuthenticate_BadClaims(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	utils.InitJWTSecret()

	exp := time.Now().Add(time.Hour).Unix()

	// 缺 user_id
	signed := signToken(t, jwt.MapClaims{"role": "user", "exp": exp})
	_, _, err := authenticate("Bearer " + signed)
	require.ErrorIs(t, err, errBadClaims)

	// 缺 role
	signed = signToken(t, jwt.MapClaims{"user_id": 1, "exp": exp})
	_, _, err = authenticate("Bearer " + signed)
	require.ErrorIs(t, err, errBadClaims)

	// 未知角色
	signed = signToken(t, jwt.MapClaims{"user_id": 1, "role": "superuser", "exp": exp})
	_, _, err = authenticate("Bearer " + signed)
	require.ErrorIs(t, err, errBadClaims)

	// 缺 exp
	signed = signToken(t, jwt.MapClaims{"user_id": 1, "role": "user"})
	_, _, err = authenticate("Bearer " + signed)
	require.Error(t, err)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	utils.InitJWTSecret()

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := other.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	_, _, err = authenticate("Bearer " + signed)
	require.Error(t, err)
}
