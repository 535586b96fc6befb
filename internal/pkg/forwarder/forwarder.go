package forwarder

import (
	"context"
	"fmt"

	"github.com/nexpay/payhook/internal/pkg/webhook"
)

// Forwarder relays a normalized payment event to an external consumer instead
// of handling it locally.
type Forwarder interface {
	Forward(ctx context.Context, ev *webhook.Event) error
}

// ForwardError wraps a delivery failure so callers can distinguish forwarding
// problems from local processing ones.
type ForwardError struct {
	Err error
}

func (e *ForwardError) Error() string {
	return fmt.Sprintf("event forwarding failed: %v", e.Err)
}

func (e *ForwardError) Unwrap() error { return e.Err }
