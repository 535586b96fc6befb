package verifier

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nexpay/payhook/internal/pkg/webhook"
)

// AppleVerifier validates the JWS Apple attaches to store server
// notifications (x-apple-signature header, ES256 against Apple's public key).
type AppleVerifier struct {
	publicKey *ecdsa.PublicKey
}

// NewAppleVerifier parses the configured Apple public key (PEM).
func NewAppleVerifier(publicKeyPEM []byte) (*AppleVerifier, error) {
	if len(publicKeyPEM) == 0 {
		return nil, fmt.Errorf("apple public key is not configured")
	}
	key, err := jwt.ParseECPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse apple public key: %w", err)
	}
	return &AppleVerifier{publicKey: key}, nil
}

func (v *AppleVerifier) Verify(raw []byte, header func(string) string) error {
	token := strings.TrimSpace(header("x-apple-signature"))
	if token == "" {
		return fmt.Errorf("%w: missing x-apple-signature header", webhook.ErrInvalidSignature)
	}
	return verifyJWS(token, v.publicKey, "ES256")
}

// GoogleVerifier validates the bearer JWT Google's RTDN push carries in the
// Authorization header (RS256 against the configured public key).
type GoogleVerifier struct {
	publicKey *rsa.PublicKey
}

// NewGoogleVerifier parses the configured Google public key (PEM).
func NewGoogleVerifier(publicKeyPEM []byte) (*GoogleVerifier, error) {
	if len(publicKeyPEM) == 0 {
		return nil, fmt.Errorf("google public key is not configured")
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse google public key: %w", err)
	}
	return &GoogleVerifier{publicKey: key}, nil
}

func (v *GoogleVerifier) Verify(raw []byte, header func(string) string) error {
	auth := strings.TrimSpace(header("Authorization"))
	token := ""
	if strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if token == "" {
		token = strings.TrimSpace(header("X-Goog-Signature"))
	}
	if token == "" {
		return fmt.Errorf("%w: missing bearer token", webhook.ErrInvalidSignature)
	}
	return verifyJWS(token, v.publicKey, "RS256")
}

// verifyJWS decodes a compact JWS and checks its signature and standard time
// claims. The payload content itself is not interpreted here.
func verifyJWS(token string, key any, alg string) error {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{alg}))
	if err != nil {
		return fmt.Errorf("%w: %v", webhook.ErrInvalidSignature, err)
	}
	if !parsed.Valid {
		return webhook.ErrInvalidSignature
	}
	return nil
}
