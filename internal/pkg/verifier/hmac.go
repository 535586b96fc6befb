package verifier

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/nexpay/payhook/internal/pkg/webhook"
)

// SignatureEncoding is the wire encoding a provider uses for its HMAC digest.
type SignatureEncoding int

const (
	EncodingHex SignatureEncoding = iota
	EncodingBase64
)

// HMACVerifier checks an HMAC-SHA256 signature carried in a request header.
// Comparison is constant-time.
type HMACVerifier struct {
	headerName string
	secret     []byte
	encoding   SignatureEncoding
}

// NewHMACVerifier builds a verifier for the given signature header and shared
// secret.
func NewHMACVerifier(headerName, secret string, encoding SignatureEncoding) (*HMACVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("webhook secret for header %s is not configured", headerName)
	}
	return &HMACVerifier{
		headerName: headerName,
		secret:     []byte(secret),
		encoding:   encoding,
	}, nil
}

// NewCoinbaseVerifier verifies Coinbase Commerce deliveries
// (X-CC-Webhook-Signature, hex digest).
func NewCoinbaseVerifier(secret string) (*HMACVerifier, error) {
	return NewHMACVerifier("X-CC-Webhook-Signature", secret, EncodingHex)
}

// NewCoinSubVerifier verifies CoinSub deliveries (X-Coinsub-Signature, hex
// digest).
func NewCoinSubVerifier(secret string) (*HMACVerifier, error) {
	return NewHMACVerifier("X-Coinsub-Signature", secret, EncodingHex)
}

// NewWooCommerceVerifier verifies WooCommerce deliveries
// (X-WC-Webhook-Signature, base64 digest).
func NewWooCommerceVerifier(secret string) (*HMACVerifier, error) {
	return NewHMACVerifier("X-WC-Webhook-Signature", secret, EncodingBase64)
}

func (v *HMACVerifier) Verify(raw []byte, header func(string) string) error {
	sig := strings.TrimSpace(header(v.headerName))
	if sig == "" {
		return fmt.Errorf("%w: missing %s header", webhook.ErrInvalidSignature, v.headerName)
	}

	expected, err := v.decodeSignature(sig)
	if err != nil {
		return fmt.Errorf("%w: undecodable signature", webhook.ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(raw)
	if !hmac.Equal(mac.Sum(nil), expected) {
		return webhook.ErrInvalidSignature
	}
	return nil
}

func (v *HMACVerifier) decodeSignature(sig string) ([]byte, error) {
	switch v.encoding {
	case EncodingBase64:
		return base64.StdEncoding.DecodeString(sig)
	case EncodingHex:
		return hex.DecodeString(strings.ToLower(sig))
	default:
		return nil, errors.New("unknown signature encoding")
	}
}
