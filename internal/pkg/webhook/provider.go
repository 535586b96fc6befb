package webhook

import "strings"

// Provider identifies a supported payment provider.
type Provider string

const (
	ProviderApple       Provider = "apple"
	ProviderGoogle      Provider = "google"
	ProviderPayPal      Provider = "paypal"
	ProviderCoinbase    Provider = "coinbase"
	ProviderCoinSub     Provider = "coinsub"
	ProviderWooCommerce Provider = "woocommerce"
)

// AllProviders lists every provider this service can speak.
var AllProviders = []Provider{
	ProviderApple,
	ProviderGoogle,
	ProviderPayPal,
	ProviderCoinbase,
	ProviderCoinSub,
	ProviderWooCommerce,
}

// ParseProvider maps a route/config value to a Provider.
func ParseProvider(s string) (Provider, bool) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllProviders {
		if p == known {
			return p, true
		}
	}
	return "", false
}
