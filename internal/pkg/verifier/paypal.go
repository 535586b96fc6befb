package verifier

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nexpay/payhook/internal/pkg/cache"
	"github.com/nexpay/payhook/internal/pkg/webhook"
)

const (
	payPalCertCachePrefix = "paypal:cert:"
	payPalCertCacheTTL    = 24 * time.Hour
)

// PayPalVerifier validates PayPal webhook deliveries: it fetches the signing
// certificate named in the PAYPAL-CERT-URL header (cached after first
// retrieval), confirms the configured webhook id, and checks the RSA-SHA256
// transmission signature.
type PayPalVerifier struct {
	webhookID  string
	httpClient *http.Client

	mu    sync.Mutex
	certs map[string]*x509.Certificate
}

// NewPayPalVerifier builds a verifier bound to the webhook id PayPal assigned
// at registration time.
func NewPayPalVerifier(webhookID string) (*PayPalVerifier, error) {
	if strings.TrimSpace(webhookID) == "" {
		return nil, fmt.Errorf("paypal webhook id is not configured")
	}
	return &PayPalVerifier{
		webhookID: strings.TrimSpace(webhookID),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		certs: make(map[string]*x509.Certificate),
	}, nil
}

func (v *PayPalVerifier) Verify(raw []byte, header func(string) string) error {
	transmissionID := strings.TrimSpace(header("Paypal-Transmission-Id"))
	timestamp := strings.TrimSpace(header("Paypal-Transmission-Time"))
	signature := strings.TrimSpace(header("Paypal-Transmission-Sig"))
	certURL := strings.TrimSpace(header("Paypal-Cert-Url"))
	authAlgo := strings.TrimSpace(header("Paypal-Auth-Algo"))

	if transmissionID == "" || timestamp == "" || signature == "" || certURL == "" {
		return fmt.Errorf("%w: missing paypal transmission headers", webhook.ErrInvalidSignature)
	}
	if authAlgo != "" && authAlgo != "SHA256withRSA" {
		return fmt.Errorf("%w: unsupported auth algo %s", webhook.ErrInvalidSignature, authAlgo)
	}

	decodedSig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: undecodable signature", webhook.ErrInvalidSignature)
	}

	cert, err := v.certificate(certURL)
	if err != nil {
		return fmt.Errorf("%w: %v", webhook.ErrInvalidSignature, err)
	}
	publicKey, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: signing cert does not carry an RSA key", webhook.ErrInvalidSignature)
	}

	message := fmt.Sprintf("%s|%s|%s|%d", transmissionID, timestamp, v.webhookID, crc32.ChecksumIEEE(raw))
	digest := sha256.Sum256([]byte(message))
	if err := rsa.VerifyPKCS1v15(publicKey, crypto.SHA256, digest[:], decodedSig); err != nil {
		return webhook.ErrInvalidSignature
	}
	return nil
}

// certificate returns the signing certificate for certURL, consulting the
// in-process map, then the shared cache, then PayPal itself.
func (v *PayPalVerifier) certificate(certURL string) (*x509.Certificate, error) {
	if err := validateCertURL(certURL); err != nil {
		return nil, err
	}

	v.mu.Lock()
	cert, ok := v.certs[certURL]
	v.mu.Unlock()
	if ok {
		return cert, nil
	}

	pemData, err := v.fetchCertPEM(certURL)
	if err != nil {
		return nil, err
	}
	cert, err = parseCertPEM(pemData)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.certs[certURL] = cert
	v.mu.Unlock()
	return cert, nil
}

func (v *PayPalVerifier) fetchCertPEM(certURL string) ([]byte, error) {
	if cached, err := cache.Get(payPalCertCachePrefix + certURL); err == nil && cached != "" {
		return []byte(cached), nil
	}

	resp, err := v.httpClient.Get(certURL)
	if err != nil {
		return nil, fmt.Errorf("fetch signing cert: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch signing cert: status=%d", resp.StatusCode)
	}

	_ = cache.Set(payPalCertCachePrefix+certURL, string(body), payPalCertCacheTTL)
	return body, nil
}

// validateCertURL only accepts HTTPS URLs on paypal.com hosts; anything else
// could be attacker-chosen key material.
func validateCertURL(certURL string) error {
	u, err := url.Parse(certURL)
	if err != nil {
		return fmt.Errorf("invalid cert url: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("cert url must use https")
	}
	host := strings.ToLower(u.Hostname())
	if host != "paypal.com" && !strings.HasSuffix(host, ".paypal.com") {
		return fmt.Errorf("cert url host %s is not a paypal host", host)
	}
	return nil
}

func parseCertPEM(pemData []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("signing cert is not valid PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse signing cert: %w", err)
	}
	return cert, nil
}
