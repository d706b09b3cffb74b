package tools

import "context"

// Config is the embedded base of every tool: identity, description,
// selection priority, and the optional lifecycle hooks fired by Invoke.
type Config struct {
	// name is the unique registry key of the tool
	name string
	// description is the one-line account of what the tool answers
	description string
	// priority orders selected tools, higher first
	priority int

	startHook func(context.Context, string)
	endHook   func(context.Context, string, *Result)
	errorHook func(context.Context, string, error)
}

func (c *Config) SetName(v string) {
	c.name = v
}

func (c Config) Name() string {
	return c.name
}

func (c *Config) SetDescription(v string) {
	c.description = v
}

func (c Config) Description() string {
	return c.description
}

func (c *Config) SetPriority(v int) {
	c.priority = v
}

func (c Config) Priority() int {
	return c.priority
}

func (c *Config) SetStartHook(fn func(context.Context, string)) {
	c.startHook = fn
}

func (c Config) StartHook() func(context.Context, string) {
	return c.startHook
}

func (c *Config) SetEndHook(fn func(context.Context, string, *Result)) {
	c.endHook = fn
}

func (c Config) EndHook() func(context.Context, string, *Result) {
	return c.endHook
}

func (c *Config) SetErrorHook(fn func(context.Context, string, error)) {
	c.errorHook = fn
}

func (c Config) ErrorHook() func(context.Context, string, error) {
	return c.errorHook
}
