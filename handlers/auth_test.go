package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidPassword(t *testing.T) {
	require.True(t, validPassword("abcd1234"))
	require.True(t, validPassword("P4ssword-long"))

	// 太短
	require.False(t, validPassword("a1b2c3"))
	// 缺數字
	require.False(t, validPassword("abcdefgh"))
	// 缺字母
	require.False(t, validPassword("12345678"))
}

func TestEmailRegex(t *testing.T) {
	require.True(t, emailRegex.MatchString("user@example.com"))
	require.True(t, emailRegex.MatchString("first.last+tag@sub.example.tw"))

	require.False(t, emailRegex.MatchString("not-an-email"))
	require.False(t, emailRegex.MatchString("user@"))
	require.False(t, emailRegex.MatchString("@example.com"))
}

func TestPhoneRegex(t *testing.T) {
	require.True(t, phoneRegex.MatchString("0912345678"))

	require.False(t, phoneRegex.MatchString("091234567"))   // 9 碼
	require.False(t, phoneRegex.MatchString("09123456789")) // 11 碼
	require.False(t, phoneRegex.MatchString("09-12345678"))
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2025-12-01")
	require.NoError(t, err)
	require.Equal(t, 2025, d.Year())
	require.Equal(t, 12, int(d.Month()))
	require.Equal(t, 1, d.Day())

	_, err = parseDate("2025/12/01")
	require.Error(t, err)
	_, err = parseDate("12-01-2025")
	require.Error(t, err)
	_, err = parseDate("")
	require.Error(t, err)
}
