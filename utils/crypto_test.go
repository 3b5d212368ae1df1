package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testAESKey = "0123456789abcdef0123456789abcdef"

func initTestCrypto(t *testing.T) {
	t.Helper()

	t.Setenv("AES_KEY", testAESKey)
	require.NoError(t, InitCrypto())
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1234")
	require.NoError(t, err)
	require.NotEqual(t, "secret1234", hash)

	require.True(t, CheckPasswordHash("secret1234", hash))
	require.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestEncryptDecryptPaymentInfo(t *testing.T) {
	initTestCrypto(t)

	cipherText, err := EncryptPaymentInfo("4111-1111-1111-1111")
	require.NoError(t, err)
	require.NotEmpty(t, cipherText)
	require.NotEqual(t, "4111-1111-1111-1111", cipherText)

	plainText, err := DecryptPaymentInfo(cipherText)
	require.NoError(t, err)
	require.Equal(t, "4111-1111-1111-1111", plainText)
}

func TestEncryptPaymentInfo_NonDeterministic(t *testing.T) {
	initTestCrypto(t)

	// 每次加密帶隨機 nonce，密文不應相同
	first, err := EncryptPaymentInfo("same-input")
	require.NoError(t, err)
	second, err := EncryptPaymentInfo("same-input")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestDecryptPaymentInfo_Invalid(t *testing.T) {
	initTestCrypto(t)

	_, err := DecryptPaymentInfo("not-base64!!!")
	require.Error(t, err)

	_, err = DecryptPaymentInfo("c2hvcnQ=")
	require.Error(t, err)
}

func TestCrypto_NotInitialized(t *testing.T) {
	saved := paymentCipher
	paymentCipher = nil
	defer func() { paymentCipher = saved }()

	_, err := EncryptPaymentInfo("anything")
	require.Error(t, err)
	_, err = DecryptPaymentInfo("anything")
	require.Error(t, err)
}

func TestInitCrypto_KeyValidation(t *testing.T) {
	t.Setenv("AES_KEY", testAESKey)
	require.NoError(t, InitCrypto())

	t.Setenv("AES_KEY", "too-short")
	require.Error(t, InitCrypto())

	t.Setenv("AES_KEY", "")
	require.Error(t, InitCrypto())
}
