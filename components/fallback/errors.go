package fallback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
)

// FailureKind classifies why a provider attempt failed. Every kind
// advances the chain; the kind is recorded so callers and logs can tell
// an outage from a budget problem.
type FailureKind int

const (
	// Transient covers timeouts, 5xx responses and connection resets.
	Transient FailureKind = iota
	// Quota covers HTTP 429 and local limiter denials.
	Quota
	// Permanent covers other 4xx responses and malformed payloads.
	Permanent
)

func (k FailureKind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Quota:
		return "quota"
	case Permanent:
		return "permanent"
	}
	return fmt.Sprintf("failurekind(%d)", int(k))
}

// ErrRateLimited is returned when a local limiter denies a call before
// it reaches the provider.
var ErrRateLimited = errors.New("rate limited")

// StatusError reports a non-2xx provider response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
	}
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// ProviderError records one failed attempt inside a chain.
type ProviderError struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ExhaustedError aggregates the attempts of a chain that ran out of
// providers without a success.
type ExhaustedError struct {
	Op       string
	Attempts []*ProviderError
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("%s: no providers configured", e.Op)
	}
	last := e.Attempts[len(e.Attempts)-1]
	return fmt.Sprintf("%s: all %d providers failed, last: %v", e.Op, len(e.Attempts), last)
}

func (e *ExhaustedError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}

// Classify maps an attempt error to its FailureKind.
func Classify(err error) FailureKind {
	if errors.Is(err, ErrRateLimited) {
		return Quota
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.Code == http.StatusTooManyRequests:
			return Quota
		case se.Code == http.StatusRequestTimeout:
			return Transient
		case se.Code >= 500:
			return Transient
		default:
			return Permanent
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Transient
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return Transient
	}
	return Permanent
}
