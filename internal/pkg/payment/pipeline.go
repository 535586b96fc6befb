package payment

import (
	"context"
	"fmt"

	"github.com/nexpay/payhook/internal/pkg/forwarder"
	"github.com/nexpay/payhook/internal/pkg/verifier"
	"github.com/nexpay/payhook/internal/pkg/webhook"
)

// ProviderBinding wires one provider's verifier and parser together with an
// optional forwarder. A nil Forwarder means events are handled locally.
type ProviderBinding struct {
	Verifier  verifier.Verifier
	Parser    webhook.Parser
	Forwarder forwarder.Forwarder
}

// ServiceRegistry is the per-provider processing pipeline: verify the raw
// delivery, normalize it, classify the purchase, then dispatch.
type ServiceRegistry struct {
	bindings   map[webhook.Provider]ProviderBinding
	classifier *Classifier
	dispatcher *Dispatcher
}

var defaultRegistry *ServiceRegistry

// SetDefaultRegistry installs the process-wide registry built at startup.
func SetDefaultRegistry(r *ServiceRegistry) {
	defaultRegistry = r
}

// DefaultRegistry returns the registry installed at startup, or nil before
// setup ran.
func DefaultRegistry() *ServiceRegistry {
	return defaultRegistry
}

// NewServiceRegistry creates an empty registry over the given classifier and
// dispatcher.
func NewServiceRegistry(classifier *Classifier, dispatcher *Dispatcher) *ServiceRegistry {
	return &ServiceRegistry{
		bindings:   make(map[webhook.Provider]ProviderBinding),
		classifier: classifier,
		dispatcher: dispatcher,
	}
}

// Bind installs the binding for provider, replacing any previous one.
func (r *ServiceRegistry) Bind(provider webhook.Provider, binding ProviderBinding) error {
	if binding.Verifier == nil {
		return fmt.Errorf("binding for %s has no verifier", provider)
	}
	if binding.Parser == nil {
		return fmt.Errorf("binding for %s has no parser", provider)
	}
	r.bindings[provider] = binding
	return nil
}

// Binding returns the installed binding for provider.
func (r *ServiceRegistry) Binding(provider webhook.Provider) (ProviderBinding, bool) {
	b, ok := r.bindings[provider]
	return b, ok
}

// Dispatcher exposes the underlying dispatcher for direct crediting paths.
func (r *ServiceRegistry) Dispatcher() *Dispatcher {
	return r.dispatcher
}

// HandleWebhook runs the full pipeline for one delivery. Verification always
// precedes parsing; parsing always precedes classification; an unknown
// classification aborts before any handler or forwarder is touched.
func (r *ServiceRegistry) HandleWebhook(ctx context.Context, provider webhook.Provider, raw []byte, header func(string) string) (*webhook.Event, error) {
	binding, ok := r.bindings[provider]
	if !ok {
		return nil, &ProviderNotEnabledError{Provider: provider}
	}

	if err := binding.Verifier.Verify(raw, header); err != nil {
		return nil, err
	}

	ev, err := binding.Parser.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !ev.Status.Valid() {
		return nil, fmt.Errorf("parser produced invalid status %q", ev.Status)
	}

	itemType, category, err := r.classifier.Classify(ev.ItemID)
	if err != nil {
		return ev, fmt.Errorf("classifying item: %w", err)
	}
	if itemType == ItemTypeUnknown {
		return ev, &ClassificationUnknownError{ItemName: ev.ItemID}
	}

	if err := r.dispatcher.Dispatch(ctx, provider, itemType, category, ev, binding.Forwarder); err != nil {
		return ev, err
	}
	return ev, nil
}
