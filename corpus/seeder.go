package corpus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/components/embedder"
	"github.com/krishidhan/sahayak/components/embedder/splitter"
	"github.com/krishidhan/sahayak/components/vectordb"
)

// Seeder writes corpus documents into the vector engine. Text is split
// into sentence chunks, each chunk is embedded and inserted with the
// document's metadata plus its chunk index. Record identifiers derive
// from chunk text and metadata, so persistent engines overwrite on
// re-seed instead of accumulating duplicates.
type Seeder struct {
	embedder embedder.Embedder
	engine   vectordb.Engine
	chunker  embedder.Chunker
	logger   zerolog.Logger
}

// SeederOption configures a Seeder.
type SeederOption func(*Seeder)

// WithChunker replaces the default sentence splitter.
func WithChunker(c embedder.Chunker) SeederOption {
	return func(s *Seeder) {
		s.chunker = c
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) SeederOption {
	return func(s *Seeder) {
		s.logger = l
	}
}

// NewSeeder builds a Seeder over emb and engine.
func NewSeeder(emb embedder.Embedder, engine vectordb.Engine, opts ...SeederOption) *Seeder {
	s := &Seeder{
		embedder: emb,
		engine:   engine,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.chunker == nil {
		s.chunker = splitter.NewSentences()
	}
	return s
}

// Report sums what one Seed call inserted.
type Report struct {
	Documents int
	Chunks    int
	// PerCollection maps collection name to inserted chunk count.
	PerCollection map[string]int
	Usage         components.LLMUsage
}

// Seed chunks, embeds and inserts every document of every file. It stops
// at the first embedding or insert error; earlier inserts stay in place.
func (s *Seeder) Seed(ctx context.Context, files ...*File) (*Report, error) {
	report := &Report{PerCollection: make(map[string]int)}
	for _, file := range files {
		for _, doc := range file.Documents {
			n, err := s.seedDocument(ctx, file.Collection, doc, &report.Usage)
			if err != nil {
				return report, fmt.Errorf("seed %q: %w", doc.Title, err)
			}
			report.Documents++
			report.Chunks += n
			report.PerCollection[file.Collection] += n
		}
		s.logger.Info().
			Str("collection", file.Collection).
			Str("file", file.Path).
			Int("documents", len(file.Documents)).
			Msg("seeded corpus file")
	}
	return report, nil
}

func (s *Seeder) seedDocument(ctx context.Context, collection string, doc Document, total *components.LLMUsage) (int, error) {
	parts := doc.Chunks(s.chunker)
	if len(parts) == 0 {
		return 0, nil
	}
	usage := new(components.LLMUsage)
	embeddings, err := s.embedder.BatchEmbed(ctx, parts, usage)
	total.Merge(usage)
	if err != nil {
		return 0, err
	}
	meta := doc.Meta()
	records := make([]vectordb.Record, 0, len(embeddings))
	for i, emb := range embeddings {
		emb.Meta = chunkMeta(meta, i)
		records = append(records, vectordb.Record{Embedding: emb})
	}
	if err := s.engine.Insert(ctx, collection, records...); err != nil {
		return 0, err
	}
	return len(records), nil
}

func chunkMeta(meta map[string]string, index int) map[string]string {
	out := make(map[string]string, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	out["chunk"] = strconv.Itoa(index)
	return out
}
