// Package retriever embeds a query and searches one vector collection.
// It is the read side of semantic retrieval; corpus seeding is the write
// side. A Retriever is bound to its collection and carries the tuning
// (top-k, minimum similarity) that keeps weak matches out of grounding.
package retriever

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/components/embedder"
	"github.com/krishidhan/sahayak/components/vectordb"
)

// Retriever searches a single collection by semantic similarity.
type Retriever struct {
	embedder   embedder.Embedder
	engine     vectordb.Engine
	collection string
	topK       int
	minScore   float64
	logger     zerolog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithTopK caps the number of returned records.
func WithTopK(k int) Option {
	return func(r *Retriever) {
		r.topK = k
	}
}

// WithMinScore drops records scoring below the threshold.
func WithMinScore(score float64) Option {
	return func(r *Retriever) {
		r.minScore = score
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Retriever) {
		r.logger = l
	}
}

// New builds a Retriever over emb and engine, bound to collection.
func New(emb embedder.Embedder, engine vectordb.Engine, collection string, opts ...Option) *Retriever {
	r := &Retriever{
		embedder:   emb,
		engine:     engine,
		collection: collection,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Collection returns the bound collection name.
func (r *Retriever) Collection() string { return r.collection }

// Search embeds query and returns the closest records, strongest first.
// Extra search options (metadata filters) apply after the retriever's
// own collection and top-k settings. Records below the minimum score are
// dropped even if the engine kept them.
func (r *Retriever) Search(ctx context.Context, query string, opts ...vectordb.SearchOption) ([]vectordb.Record, *components.LLMUsage, error) {
	embedding := new(embedder.Embedding)
	usage := new(components.LLMUsage)
	if err := r.embedder.Embed(ctx, query, embedding, usage); err != nil {
		r.logger.Warn().Str("collection", r.collection).Err(err).Msg("query embedding failed")
		return nil, usage, err
	}

	searchOpts := []vectordb.SearchOption{
		vectordb.SearchWithCollection(r.collection),
	}
	if r.topK > 0 {
		searchOpts = append(searchOpts, vectordb.SearchWithTopK(r.topK))
	}
	searchOpts = append(searchOpts, opts...)

	records, err := r.engine.Search(ctx, embedding.Embedding, searchOpts...)
	if err != nil {
		r.logger.Warn().Str("collection", r.collection).Err(err).Msg("vector search failed")
		return nil, usage, err
	}
	if r.minScore > 0 {
		kept := records[:0]
		for _, rec := range records {
			if rec.Score >= r.minScore {
				kept = append(kept, rec)
			}
		}
		records = kept
	}
	r.logger.Debug().
		Str("collection", r.collection).
		Int("records", len(records)).
		Msg("retrieval done")
	return records, usage, nil
}
