package tools

import "context"

// Option configures the embedded Config of a tool.
type Option func(c *Config)

// WithName overrides the tool's registry name.
func WithName(name string) Option {
	return func(c *Config) {
		c.SetName(name)
	}
}

// WithDescription overrides the tool's description.
func WithDescription(desc string) Option {
	return func(c *Config) {
		c.SetDescription(desc)
	}
}

// WithPriority sets the selection priority; higher runs first.
func WithPriority(p int) Option {
	return func(c *Config) {
		c.SetPriority(p)
	}
}

// WithStartHook fires before Execute with the raw query.
func WithStartHook(fn func(context.Context, string)) Option {
	return func(c *Config) {
		c.SetStartHook(fn)
	}
}

// WithEndHook fires after Execute with the final Result, including
// panic-recovered failures.
func WithEndHook(fn func(context.Context, string, *Result)) Option {
	return func(c *Config) {
		c.SetEndHook(fn)
	}
}

// WithErrorHook fires when Execute panics, with the *ExecutionError.
func WithErrorHook(fn func(context.Context, string, error)) Option {
	return func(c *Config) {
		c.SetErrorHook(fn)
	}
}
