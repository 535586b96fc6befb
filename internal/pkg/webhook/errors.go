package webhook

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSignature rejects a delivery whose signature does not match or
// whose signature header is absent. The parser is never invoked after it.
var ErrInvalidSignature = errors.New("invalid signature")

// MalformedPayloadError reports a body that is not valid JSON (or not the
// JSON shape the provider documents).
type MalformedPayloadError struct {
	Err error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload: %v", e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// MissingFieldError enumerates provider-required fields absent from a payload.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}
