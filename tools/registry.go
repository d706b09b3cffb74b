package tools

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/config"
)

// Registry holds the tools available to the orchestrator, keyed by name.
// Registration happens once at startup; afterwards the registry is
// read-only, so Select needs no locking.
type Registry struct {
	ordered []Tool
	byName  map[string]Tool
	logger  zerolog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry builds an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byName: make(map[string]Tool),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds tools in order. A duplicate or empty name aborts startup
// with a *config.ConfigurationError.
func (r *Registry) Register(ts ...Tool) error {
	for _, t := range ts {
		name := t.Name()
		if name == "" {
			return &config.ConfigurationError{Field: "tools", Err: fmt.Errorf("tool registered without a name")}
		}
		if _, dup := r.byName[name]; dup {
			return &config.ConfigurationError{Field: "tools", Err: fmt.Errorf("duplicate tool %q", name)}
		}
		r.byName[name] = t
		r.ordered = append(r.ordered, t)
		r.logger.Debug().Str("tool", name).Int("priority", t.Priority()).Msg("tool registered")
	}
	return nil
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// Names lists tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ordered))
	for _, t := range r.ordered {
		names = append(names, t.Name())
	}
	return names
}

// Select returns every tool whose relevance predicate accepts the query,
// ordered by descending priority with registration order breaking ties.
// Predicates are pure, so identical input yields identical output.
func (r *Registry) Select(query string, snap components.SessionSnapshot) []Tool {
	var selected []Tool
	for _, t := range r.ordered {
		if t.IsRelevant(query, snap) {
			selected = append(selected, t)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Priority() > selected[j].Priority()
	})
	return selected
}
