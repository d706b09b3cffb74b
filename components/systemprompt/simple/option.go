package simple

import "github.com/krishidhan/sahayak/components/systemprompt"

type Option = func(g *Generator)

// WithContextProviders registers context providers with the Generator
func WithContextProviders(providers ...systemprompt.ContextProvider) Option {
	return func(g *Generator) {
		g.AddContextProviders(providers...)
	}
}
