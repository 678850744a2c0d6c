package llm

import (
	"errors"
	"fmt"
)

// ErrUnknownProvider indicates the configured provider name has no
// registered implementation. It is a configuration problem, not a transient
// failure, so the orchestrator does not retry it.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrorKind classifies provider failures for retry and diagnostic handling.
type ErrorKind string

const (
	// KindTimeout covers request deadlines and network timeouts.
	KindTimeout ErrorKind = "timeout"
	// KindAuth covers rejected or missing credentials.
	KindAuth ErrorKind = "auth"
	// KindRateLimit covers provider throttling.
	KindRateLimit ErrorKind = "rate_limit"
	// KindMalformedResponse covers unparseable or empty provider output.
	KindMalformedResponse ErrorKind = "malformed_response"
)

// ProviderError wraps a provider failure with its classification.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	err      error
}

// NewProviderError wraps err with a provider name and kind.
func NewProviderError(provider string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, err: err}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.err)
}

func (e *ProviderError) Unwrap() error {
	return e.err
}

// IsProviderError returns the ProviderError wrapped in err, if any.
func IsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	ok := errors.As(err, &pe)
	return pe, ok
}

// IsTimeout reports whether err is a timeout-kind provider error.
func IsTimeout(err error) bool {
	pe, ok := IsProviderError(err)
	return ok && pe.Kind == KindTimeout
}
