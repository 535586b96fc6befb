package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nexpay/payhook/internal/pkg/webhook"
)

// RESTForwarder posts normalized events as JSON to a fixed endpoint.
type RESTForwarder struct {
	url        string
	httpClient *http.Client
}

// NewRESTForwarder creates a forwarder targeting url.
func NewRESTForwarder(url string) *RESTForwarder {
	return &RESTForwarder{
		url: url,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Forward delivers the event via HTTP POST. Any transport failure or non-2xx
// response is a ForwardError; the payload is considered undelivered.
func (f *RESTForwarder) Forward(ctx context.Context, ev *webhook.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return &ForwardError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return &ForwardError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return &ForwardError{Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ForwardError{Err: fmt.Errorf("endpoint returned status %d", resp.StatusCode)}
	}
	return nil
}
