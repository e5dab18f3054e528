package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error types for consistent error handling across the gateway.
//
// Failures split into two explicit variants: TransportError ("could not reach
// the server, or the server answered non-2xx") and DomainError ("transport
// succeeded, the operation itself failed"). Callers distinguish them with
// errors.As instead of string-matching messages.

// StatusLoginTimeout is the non-standard IIS code some backends use for an
// expired session, handled like 401.
const StatusLoginTimeout = 440

// TransportError is created once per failed HTTP call and never mutated after
// construction. Status is zero when no HTTP response was obtained.
type TransportError struct {
	Message string
	Status  int
	Errors  []string        // flattened validation detail, 400 only
	Payload json.RawMessage // raw error body as received
	Timeout bool
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsTimeout reports whether the call failed because its deadline elapsed.
func (e *TransportError) IsTimeout() bool { return e.Timeout }

// IsUnauthorized reports whether the server signalled session expiry.
func (e *TransportError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == StatusLoginTimeout
}

// IsValidation reports whether the call was rejected with validation detail.
func (e *TransportError) IsValidation() bool {
	return e.Status == http.StatusBadRequest
}

// DomainError means the backend understood the request and rejected it:
// HTTP 200 with success=false or a missing payload. Message is the
// envelope's own message.
type DomainError struct {
	Op      string // operation that failed, e.g. "login"
	Message string
}

func (e *DomainError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// AsTransport unwraps err into a TransportError if it is one.
func AsTransport(err error) (*TransportError, bool) {
	var te *TransportError
	ok := errors.As(err, &te)
	return te, ok
}

// AsDomain unwraps err into a DomainError if it is one.
func AsDomain(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}
