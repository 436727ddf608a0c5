package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// CallError represents a failed backend service call.
type CallError struct {
	Type      CallErrorType
	Service   string
	Operation string
	Status    int  // HTTP status, service errors only
	Timeout   bool // network errors: call exceeded its deadline
	Message   string
	Err       error
}

// CallErrorType categorizes call failures.
type CallErrorType int

const (
	// ErrTypeNetwork indicates no response was received: connection
	// failure, DNS failure, or the per-call deadline expired.
	ErrTypeNetwork CallErrorType = iota
	// ErrTypeService indicates the backend answered with an error status.
	ErrTypeService
	// ErrTypeMalformed indicates a response was received but failed
	// structural validation against the expected contract.
	ErrTypeMalformed
)

func (t CallErrorType) String() string {
	switch t {
	case ErrTypeNetwork:
		return "network"
	case ErrTypeService:
		return "service"
	case ErrTypeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// AsCallError unwraps err to a *CallError if one is in the chain.
func AsCallError(err error) (*CallError, bool) {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsNetworkError reports whether err is a no-response failure.
func IsNetworkError(err error) bool {
	ce, ok := AsCallError(err)
	return ok && ce.Type == ErrTypeNetwork
}

// IsTimeout reports whether err is a network failure caused by the
// per-call deadline expiring.
func IsTimeout(err error) bool {
	ce, ok := AsCallError(err)
	return ok && ce.Type == ErrTypeNetwork && ce.Timeout
}

// IsServiceError reports whether err is a backend-reported error status.
func IsServiceError(err error) bool {
	ce, ok := AsCallError(err)
	return ok && ce.Type == ErrTypeService
}

// IsMalformedResponse reports whether err is a response-shape failure.
func IsMalformedResponse(err error) bool {
	ce, ok := AsCallError(err)
	return ok && ce.Type == ErrTypeMalformed
}

// networkError classifies a transport failure. Deadline expiry is surfaced
// distinctly from connection failure so the user message can say which.
func networkError(service, operation string, err error, budget time.Duration) *CallError {
	timeout := isTimeoutErr(err)
	var msg string
	switch {
	case timeout:
		msg = fmt.Sprintf("%s service timed out after %s", service, budget)
	case errors.Is(err, context.Canceled):
		msg = "request canceled"
	default:
		msg = fmt.Sprintf("no response from %s service", service)
	}
	return &CallError{
		Type:      ErrTypeNetwork,
		Service:   service,
		Operation: operation,
		Timeout:   timeout,
		Message:   msg,
		Err:       err,
	}
}

// isTimeoutErr reports whether err was caused by an expired deadline.
func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// serviceError builds the error for a non-2xx response, carrying the
// backend-supplied message when one can be extracted from the body.
func serviceError(service, operation string, status int, body []byte) *CallError {
	msg := serviceMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("%s service returned HTTP %d", service, status)
	}
	return &CallError{
		Type:      ErrTypeService,
		Service:   service,
		Operation: operation,
		Status:    status,
		Message:   msg,
	}
}

// malformedResponse wraps a structural validation or decode failure.
func malformedResponse(service, operation string, err error) *CallError {
	return &CallError{
		Type:      ErrTypeMalformed,
		Service:   service,
		Operation: operation,
		Message:   fmt.Sprintf("unexpected response from %s service", service),
		Err:       err,
	}
}

// serviceMessage extracts a human-readable error message from a backend
// error body. The services answer with either {"detail": ...} (string or
// structured validation detail) or {"error": "..."}; anything else falls
// back to the truncated raw body.
func serviceMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if len(envelope.Detail) > 0 && string(envelope.Detail) != "null" {
			var s string
			if json.Unmarshal(envelope.Detail, &s) == nil && s != "" {
				return s
			}
			return truncate(string(envelope.Detail), 200)
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return truncate(trimmed, 200)
}

// truncate returns the first n characters of s, appending "..." if truncated.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
