// Package fallback runs an ordered list of interchangeable providers
// until one succeeds. It makes a single pass: a provider that fails for
// any reason is skipped for the rest of the call, never retried. Failure
// reasons are classified and recorded so the caller can report which
// data source answered and which were demoted.
package fallback

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultProviderTimeout bounds a single provider attempt when the chain
// is built without an explicit timeout.
const DefaultProviderTimeout = 8 * time.Second

// Provider is one interchangeable backend for an operation.
type Provider[A, R any] interface {
	// Name identifies the provider in attempt records and logs.
	Name() string
	// Call performs the operation. The context carries the per-attempt
	// deadline imposed by the chain.
	Call(ctx context.Context, arg A) (R, error)
}

type providerFunc[A, R any] struct {
	name string
	fn   func(ctx context.Context, arg A) (R, error)
}

func (p providerFunc[A, R]) Name() string { return p.name }

func (p providerFunc[A, R]) Call(ctx context.Context, arg A) (R, error) {
	return p.fn(ctx, arg)
}

// ProviderFunc adapts a function to the Provider interface.
func ProviderFunc[A, R any](name string, fn func(ctx context.Context, arg A) (R, error)) Provider[A, R] {
	return providerFunc[A, R]{name: name, fn: fn}
}

type settings struct {
	timeout time.Duration
	logger  zerolog.Logger
}

// Option configures a Chain.
type Option func(*settings)

// WithTimeout bounds each provider attempt. Zero disables the
// per-attempt deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

// WithLogger sets the logger used for demotion entries.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// Invocation records how a chain call played out: which provider
// answered and which were demoted on the way.
type Invocation struct {
	// Op names the operation, e.g. "weather.current".
	Op string
	// Provider is the name of the provider that succeeded, empty when
	// the chain was exhausted.
	Provider string
	// Attempts holds the failed attempts in chain order.
	Attempts []*ProviderError
}

// Fallback reports whether the answer came from anything but the first
// provider.
func (inv *Invocation) Fallback() bool {
	return inv.Provider != "" && len(inv.Attempts) > 0
}

// Chain tries providers in order until one succeeds.
type Chain[A, R any] struct {
	op        string
	providers []Provider[A, R]
	timeout   time.Duration
	logger    zerolog.Logger
}

// New builds a chain for op. Provider order is the fallback order.
func New[A, R any](op string, providers []Provider[A, R], opts ...Option) *Chain[A, R] {
	s := settings{
		timeout: DefaultProviderTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &Chain[A, R]{
		op:        op,
		providers: providers,
		timeout:   s.timeout,
		logger:    s.logger,
	}
}

// Len returns the number of providers in the chain.
func (c *Chain[A, R]) Len() int { return len(c.providers) }

// Invoke runs the providers in order and returns the first success. On
// exhaustion the error is an *ExhaustedError carrying every attempt. The
// Invocation is non-nil in every case. If ctx is cancelled between
// attempts, Invoke stops and returns ctx.Err() instead of charging the
// remaining providers with failures.
func (c *Chain[A, R]) Invoke(ctx context.Context, arg A) (R, *Invocation, error) {
	var zero R
	inv := &Invocation{Op: c.op}
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return zero, inv, err
		}
		res, err := c.attempt(ctx, p, arg)
		if err == nil {
			inv.Provider = p.Name()
			c.logger.Debug().
				Str("op", c.op).
				Str("provider", p.Name()).
				Int("demoted", len(inv.Attempts)).
				Msg("provider answered")
			return res, inv, nil
		}
		attempt := &ProviderError{Provider: p.Name(), Kind: Classify(err), Err: err}
		inv.Attempts = append(inv.Attempts, attempt)
		c.logger.Warn().
			Str("op", c.op).
			Str("provider", p.Name()).
			Str("kind", attempt.Kind.String()).
			Err(err).
			Msg("provider demoted")
	}
	return zero, inv, &ExhaustedError{Op: c.op, Attempts: inv.Attempts}
}

func (c *Chain[A, R]) attempt(ctx context.Context, p Provider[A, R], arg A) (R, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return p.Call(ctx, arg)
}
