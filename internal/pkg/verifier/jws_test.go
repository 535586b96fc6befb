package verifier

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexpay/payhook/internal/pkg/webhook"
)

func publicKeyPEM(t *testing.T, pub any) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

func TestAppleVerifier(t *testing.T) {
	t.Parallel()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	v, err := NewAppleVerifier(publicKeyPEM(t, &key.PublicKey))
	require.NoError(t, err)

	claims := jwt.MapClaims{"iss": "apple", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		err := v.Verify(nil, headerMap(map[string]string{"x-apple-signature": token}))
		assert.NoError(t, err)
	})

	t.Run("missing header", func(t *testing.T) {
		err := v.Verify(nil, headerMap(nil))
		assert.ErrorIs(t, err, webhook.ErrInvalidSignature)
	})

	t.Run("token signed by another key", func(t *testing.T) {
		otherKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		forged, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(otherKey)
		require.NoError(t, err)
		assert.ErrorIs(t, v.Verify(nil, headerMap(map[string]string{"x-apple-signature": forged})), webhook.ErrInvalidSignature)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
			"exp": time.Now().Add(-time.Hour).Unix(),
		}).SignedString(key)
		require.NoError(t, err)
		assert.ErrorIs(t, v.Verify(nil, headerMap(map[string]string{"x-apple-signature": expired})), webhook.ErrInvalidSignature)
	})
}

func TestGoogleVerifier(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v, err := NewGoogleVerifier(publicKeyPEM(t, &key.PublicKey))
	require.NoError(t, err)

	claims := jwt.MapClaims{"iss": "accounts.google.com", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)

	t.Run("bearer token", func(t *testing.T) {
		err := v.Verify(nil, headerMap(map[string]string{"Authorization": "Bearer " + token}))
		assert.NoError(t, err)
	})

	t.Run("signature header fallback", func(t *testing.T) {
		err := v.Verify(nil, headerMap(map[string]string{"X-Goog-Signature": token}))
		assert.NoError(t, err)
	})

	t.Run("missing token", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify(nil, headerMap(nil)), webhook.ErrInvalidSignature)
	})

	t.Run("wrong algorithm rejected", func(t *testing.T) {
		// An HS256 token using the public key bytes must never pass RS256
		// verification.
		hsToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		assert.ErrorIs(t, v.Verify(nil, headerMap(map[string]string{"Authorization": "Bearer " + hsToken})), webhook.ErrInvalidSignature)
	})
}

func TestJWSVerifierConstructorsRejectBadKeys(t *testing.T) {
	t.Parallel()

	_, err := NewAppleVerifier(nil)
	assert.Error(t, err)
	_, err = NewAppleVerifier([]byte("not a pem"))
	assert.Error(t, err)
	_, err = NewGoogleVerifier(nil)
	assert.Error(t, err)
	_, err = NewGoogleVerifier([]byte("not a pem"))
	assert.Error(t, err)
}
