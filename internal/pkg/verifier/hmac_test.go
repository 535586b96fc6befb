package verifier

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexpay/payhook/internal/pkg/webhook"
)

func hexDigest(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func base64Digest(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func headerMap(m map[string]string) func(string) string {
	return func(name string) string { return m[name] }
}

func TestHMACVerifierRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewCoinbaseVerifier("")
	assert.Error(t, err)
	_, err = NewCoinSubVerifier("   ")
	assert.Error(t, err)
	_, err = NewWooCommerceVerifier("")
	assert.Error(t, err)
}

func TestCoinbaseVerifier(t *testing.T) {
	t.Parallel()

	const secret = "shhh"
	body := []byte(`{"event":{"type":"charge:confirmed"}}`)
	v, err := NewCoinbaseVerifier(secret)
	require.NoError(t, err)

	t.Run("valid signature", func(t *testing.T) {
		err := v.Verify(body, headerMap(map[string]string{
			"X-CC-Webhook-Signature": hexDigest(secret, body),
		}))
		assert.NoError(t, err)
	})

	t.Run("tampered body", func(t *testing.T) {
		sig := hexDigest(secret, body)
		err := v.Verify([]byte(`{"event":{"type":"charge:failed"}}`), headerMap(map[string]string{
			"X-CC-Webhook-Signature": sig,
		}))
		assert.ErrorIs(t, err, webhook.ErrInvalidSignature)
	})

	t.Run("tampered signature byte", func(t *testing.T) {
		sig := []byte(hexDigest(secret, body))
		if sig[0] == 'a' {
			sig[0] = 'b'
		} else {
			sig[0] = 'a'
		}
		err := v.Verify(body, headerMap(map[string]string{
			"X-CC-Webhook-Signature": string(sig),
		}))
		assert.ErrorIs(t, err, webhook.ErrInvalidSignature)
	})

	t.Run("missing header", func(t *testing.T) {
		err := v.Verify(body, headerMap(nil))
		assert.ErrorIs(t, err, webhook.ErrInvalidSignature)
	})

	t.Run("undecodable signature", func(t *testing.T) {
		err := v.Verify(body, headerMap(map[string]string{
			"X-CC-Webhook-Signature": "not-hex!",
		}))
		assert.ErrorIs(t, err, webhook.ErrInvalidSignature)
	})
}

func TestWooCommerceVerifierUsesBase64(t *testing.T) {
	t.Parallel()

	const secret = "wc-secret"
	body := []byte(`{"id": 1, "total": "5.00", "currency": "USD"}`)
	v, err := NewWooCommerceVerifier(secret)
	require.NoError(t, err)

	assert.NoError(t, v.Verify(body, headerMap(map[string]string{
		"X-WC-Webhook-Signature": base64Digest(secret, body),
	})))

	// A hex digest in the base64 slot must not validate.
	assert.ErrorIs(t, v.Verify(body, headerMap(map[string]string{
		"X-WC-Webhook-Signature": hexDigest(secret, body),
	})), webhook.ErrInvalidSignature)
}

func TestCoinSubVerifier(t *testing.T) {
	t.Parallel()

	const secret = "cs-secret"
	body := []byte(`{"event_type":"subscription_renewed"}`)
	v, err := NewCoinSubVerifier(secret)
	require.NoError(t, err)

	assert.NoError(t, v.Verify(body, headerMap(map[string]string{
		"X-Coinsub-Signature": hexDigest(secret, body),
	})))
	assert.ErrorIs(t, v.Verify(body, headerMap(map[string]string{
		"X-Coinsub-Signature": hexDigest("other-secret", body),
	})), webhook.ErrInvalidSignature)
}
