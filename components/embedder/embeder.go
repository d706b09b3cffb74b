package embedder

import (
	"context"

	"github.com/krishidhan/sahayak/components"
)

// Embedder turns text into vectors for semantic retrieval. Implementations
// live under providers/ and report token spend through the shared usage
// accumulator when one is passed.
type Embedder interface {
	Provider() Provider
	Model() string
	Embed(context.Context, string, *Embedding, *components.LLMUsage) error
	BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]Embedding, error)
}
