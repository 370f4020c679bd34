package sources

import (
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures.
type ErrorKind string

// Provider failure kinds.
const (
	KindNotConfigured ErrorKind = "not_configured"
	KindTransient     ErrorKind = "transient"
	KindPermanent     ErrorKind = "permanent"
	KindMalformed     ErrorKind = "malformed"
)

// ProviderError is the error every Client returns.
type ProviderError struct {
	Source     string
	Kind       ErrorKind
	StatusCode int
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Source, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the failure is worth another attempt.
func (e *ProviderError) Retryable() bool {
	return e.Kind == KindTransient
}

// KindOf returns the kind of a ProviderError anywhere in err's chain, or "".
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func notConfigured(source, missing string) error {
	return &ProviderError{Source: source, Kind: KindNotConfigured, Message: "not configured: missing " + missing}
}
