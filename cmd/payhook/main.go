package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/nexpay/payhook/internal/pkg/cache"
	"github.com/nexpay/payhook/internal/pkg/database"
	"github.com/nexpay/payhook/internal/pkg/env"
	"github.com/nexpay/payhook/internal/pkg/forwarder"
	"github.com/nexpay/payhook/internal/pkg/payment"
	"github.com/nexpay/payhook/internal/pkg/router"
	"github.com/nexpay/payhook/internal/pkg/verifier"
	"github.com/nexpay/payhook/internal/pkg/webhook"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	payment.SetDefaultRegistry(buildRegistry())

	app := fiber.New(fiber.Config{
		AppName:   "payhook",
		BodyLimit: 1 * 1024 * 1024, // webhook payloads are small
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASS", "test"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}

// buildRegistry wires one verifier/parser binding per enabled provider. A
// provider enabled without its secret is a deployment error and aborts
// startup.
func buildRegistry() *payment.ServiceRegistry {
	providers := enabledProviders()

	store := payment.NewStore(database.GetDB())
	classifier := payment.NewClassifier(store)
	dispatcher := payment.NewDispatcher(store, providers)
	registerHandlers(dispatcher)

	registry := payment.NewServiceRegistry(classifier, dispatcher)
	fwd := buildForwarder()

	for _, provider := range providers {
		binding := payment.ProviderBinding{
			Verifier:  buildVerifier(provider),
			Parser:    buildParser(provider),
			Forwarder: fwd,
		}
		if err := registry.Bind(provider, binding); err != nil {
			log.Fatalf("binding provider %s: %v", provider, err)
		}
	}
	return registry
}

func enabledProviders() []webhook.Provider {
	raw := env.GetEnv("WEBHOOK_ENABLED_PROVIDERS", "")
	if raw == "" {
		return webhook.AllProviders
	}
	var providers []webhook.Provider
	for _, part := range strings.Split(raw, ",") {
		provider, ok := webhook.ParseProvider(strings.TrimSpace(part))
		if !ok {
			log.Fatalf("WEBHOOK_ENABLED_PROVIDERS contains unknown provider %q", part)
		}
		providers = append(providers, provider)
	}
	return providers
}

func buildVerifier(provider webhook.Provider) verifier.Verifier {
	mustEnv := func(key string) string {
		v := env.GetEnv(key, "")
		if v == "" {
			log.Fatalf("provider %s is enabled but %s is not set", provider, key)
		}
		return v
	}

	switch provider {
	case webhook.ProviderApple:
		v, err := verifier.NewAppleVerifier([]byte(mustEnv("APPLE_PUBLIC_KEY")))
		if err != nil {
			log.Fatalf("apple verifier: %v", err)
		}
		return v
	case webhook.ProviderGoogle:
		v, err := verifier.NewGoogleVerifier([]byte(mustEnv("GOOGLE_PUBLIC_KEY")))
		if err != nil {
			log.Fatalf("google verifier: %v", err)
		}
		return v
	case webhook.ProviderPayPal:
		v, err := verifier.NewPayPalVerifier(mustEnv("PAYPAL_WEBHOOK_ID"))
		if err != nil {
			log.Fatalf("paypal verifier: %v", err)
		}
		return v
	case webhook.ProviderCoinbase:
		v, err := verifier.NewCoinbaseVerifier(mustEnv("COINBASE_SHARED_SECRET"))
		if err != nil {
			log.Fatalf("coinbase verifier: %v", err)
		}
		return v
	case webhook.ProviderCoinSub:
		v, err := verifier.NewCoinSubVerifier(mustEnv("COINSUB_SHARED_SECRET"))
		if err != nil {
			log.Fatalf("coinsub verifier: %v", err)
		}
		return v
	case webhook.ProviderWooCommerce:
		v, err := verifier.NewWooCommerceVerifier(mustEnv("WOOCOMMERCE_SECRET"))
		if err != nil {
			log.Fatalf("woocommerce verifier: %v", err)
		}
		return v
	default:
		log.Fatalf("no verifier for provider %s", provider)
		return nil
	}
}

func buildParser(provider webhook.Provider) webhook.Parser {
	switch provider {
	case webhook.ProviderApple:
		return webhook.AppleParser{}
	case webhook.ProviderGoogle:
		return webhook.GoogleParser{}
	case webhook.ProviderPayPal:
		return webhook.PayPalParser{}
	case webhook.ProviderCoinbase:
		return webhook.CoinbaseParser{}
	case webhook.ProviderCoinSub:
		return webhook.CoinSubParser{}
	case webhook.ProviderWooCommerce:
		return webhook.WooCommerceParser{}
	default:
		log.Fatalf("no parser for provider %s", provider)
		return nil
	}
}

func buildForwarder() forwarder.Forwarder {
	if url := env.GetEnv("WEBHOOK_FORWARD_URL", ""); url != "" {
		return forwarder.NewRESTForwarder(url)
	}
	if url := env.GetEnv("WEBHOOK_FORWARD_WS_URL", ""); url != "" {
		return forwarder.NewWebsocketForwarder(url)
	}
	return nil
}

// registerHandlers installs a credit handler for every configured catalog
// category. Downstream crediting systems hook in here; the default handler
// acknowledges and logs.
func registerHandlers(dispatcher *payment.Dispatcher) {
	categories := strings.Split(env.GetEnv("STORE_CATEGORIES", "default"), ",")
	for _, raw := range categories {
		category := payment.Category(strings.TrimSpace(raw))
		if category == "" {
			continue
		}
		for _, itemType := range []payment.ItemType{payment.ItemTypeOneTime, payment.ItemTypeSubscription} {
			it := itemType
			handler := payment.HandlerFunc(func(ctx context.Context, ev *webhook.Event) error {
				fiberlog.Infof("credited %s purchase %s for user %s (%.2f %s)", it, ev.TransactionID, ev.UserID, ev.Amount, ev.Currency)
				return nil
			})
			if err := dispatcher.Register(it, category, handler); err != nil {
				log.Fatalf("registering handler for %s/%s: %v", it, category, err)
			}
		}
	}
}
