package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2-but-longer")
	require.NoError(t, err)
	require.NotEqual(t, "hunter2-but-longer", hash)

	require.True(t, VerifyPassword(hash, "hunter2-but-longer"))
	require.False(t, VerifyPassword(hash, "wrong"))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	ciphertext, err := Encrypt([]byte("DE02120300000000202051"), key)
	require.NoError(t, err)
	require.NotContains(t, ciphertext, "2020", "account number is opaque at rest")

	plaintext, err := Decrypt(ciphertext, key)
	require.NoError(t, err)
	require.Equal(t, "DE02120300000000202051", string(plaintext))
}

func TestEncryptProducesFreshNonces(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	first, err := Encrypt([]byte("same input"), key)
	require.NoError(t, err)
	second, err := Encrypt([]byte("same input"), key)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	ciphertext, err := Encrypt([]byte("secret"), []byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	_, err = Decrypt(ciphertext, []byte("fedcba9876543210fedcba9876543210"))
	require.Error(t, err)
}

func TestDecryptRejectsTruncatedPayload(t *testing.T) {
	_, err := Decrypt("dG9vc2hvcnQ=", []byte("0123456789abcdef0123456789abcdef"))
	require.Error(t, err)
}

func TestEncryptRejectsBadKeyLength(t *testing.T) {
	_, err := Encrypt([]byte("secret"), []byte("short"))
	require.ErrorContains(t, err, "16, 24 or 32 bytes")
}

func TestGenerateTokenLengthAndUniqueness(t *testing.T) {
	first, err := GenerateToken(32)
	require.NoError(t, err)
	second, err := GenerateToken(32)
	require.NoError(t, err)

	require.NotEmpty(t, first)
	require.NotEqual(t, first, second)
}
