package agents

import (
	"github.com/bububa/instructor-go/pkg/instructor"
)

// Config carries the phrasing model settings shared by the instructor
// providers.
type Config struct {
	// client Client for interacting with the language model
	client instructor.Instructor
	// model llm model
	model string
	// temperature Temperature for response generation, typically ranging from 0 to 1.
	temperature float32
	// maxTokens Maximum number of tokens allowed in the response
	maxTokens int
	// instructions is the fixed system prompt body the grounding payload
	// is appended to
	instructions string
	// name is the phraser name presentation
	name string
}

type Option func(c *Config)

func WithClient(clt instructor.Instructor) Option {
	return func(c *Config) {
		c.client = clt
	}
}

func WithModel(model string) Option {
	return func(c *Config) {
		c.model = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Config) {
		c.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Config) {
		c.maxTokens = maxTokens
	}
}

func WithInstructions(instructions string) Option {
	return func(c *Config) {
		c.instructions = instructions
	}
}

func WithName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}
