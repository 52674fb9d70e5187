package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrAlreadyExists       = errors.New("entity already exists")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrReadDatabaseRow     = errors.New("failed to read database row")
	ErrInvalidExecContext  = errors.New("invalid execution context")
	ErrUnparseableResponse = errors.New("provider response did not contain exactly 3 suggestions")
	ErrAllProvidersFailed  = errors.New("all LLM providers failed")
	ErrNoProviders         = errors.New("no LLM providers configured")
)

// ProviderErrorKind classifies why a single provider call failed.
type ProviderErrorKind string

const (
	ProviderErrTransport ProviderErrorKind = "transport"
	ProviderErrAuth      ProviderErrorKind = "auth"
	ProviderErrStatus    ProviderErrorKind = "status"
	ProviderErrShape     ProviderErrorKind = "shape"
)

// ProviderError is a transport, auth or payload failure of one external service.
type ProviderError struct {
	Provider   string
	Kind       ProviderErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s error (http %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// KindForStatus maps a non-success HTTP status to an error kind.
func KindForStatus(code int) ProviderErrorKind {
	if code == 401 || code == 403 {
		return ProviderErrAuth
	}
	return ProviderErrStatus
}

// PromptBuildError is returned when a prompt cannot be assembled from its inputs.
type PromptBuildError struct {
	Reason string
}

func (e *PromptBuildError) Error() string { return "build prompt: " + e.Reason }

// ProviderFailure is one failed attempt in the fallback chain.
type ProviderFailure struct {
	Provider string
	Err      error
}

// AllProvidersFailedError carries every per-provider failure in attempt order.
type AllProvidersFailedError struct {
	Failures []ProviderFailure
}

func (e *AllProvidersFailedError) Error() string {
	if len(e.Failures) == 0 {
		return ErrAllProvidersFailed.Error()
	}
	last := e.Failures[len(e.Failures)-1]
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, f.Provider)
	}
	return fmt.Sprintf("%s (tried %s). Last error: %v", ErrAllProvidersFailed, strings.Join(names, ", "), last.Err)
}

func (e *AllProvidersFailedError) Is(target error) bool { return target == ErrAllProvidersFailed }

func (e *AllProvidersFailedError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Err)
	}
	return out
}
