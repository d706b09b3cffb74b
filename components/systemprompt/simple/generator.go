package simple

import (
	"fmt"
	"strings"

	"github.com/krishidhan/sahayak/components/systemprompt"
)

// Generator renders a plain system prompt: the fixed instructions followed
// by one titled section per context provider under a verified-context
// heading. The heading tells the model that everything below it came from
// tool execution and is the only material it may state facts from.
type Generator struct {
	systemprompt.BaseGenerator
	content string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new system prompt Generator
func New(content string, options ...Option) *Generator {
	ret := new(Generator)
	for _, opt := range options {
		opt(ret)
	}
	ret.content = content
	return ret
}

func (g *Generator) Generate() string {
	providers := g.ContextProviders()
	parts := make([]string, 0, len(providers)*3+2)
	parts = append(parts, g.content, "")
	if len(providers) > 0 {
		parts = append(parts, "# VERIFIED CONTEXT")
		for _, provider := range providers {
			info := provider.Info()
			if info == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("## %s", provider.Title()), info, "")
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
