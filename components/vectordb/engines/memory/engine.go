// Package memory is an in-process vectordb.Engine for development and
// tests. Collections live in a sync.Map; search is a full scan scored by
// cosine similarity.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/krishidhan/sahayak/components/vectordb"
)

type Engine struct {
	collections *sync.Map

	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

// Collection is a named set of records.
type Collection struct {
	mu      sync.RWMutex
	records []vectordb.Record
}

func (c *Collection) Add(records ...vectordb.Record) {
	c.mu.Lock()
	c.records = append(c.records, records...)
	c.mu.Unlock()
}

// Records returns a copy of the collection contents.
func (c *Collection) Records() []vectordb.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]vectordb.Record, len(c.records))
	copy(out, c.records)
	return out
}

func New(opts ...vectordb.Option) (*Engine, error) {
	ret := &Engine{
		collections: new(sync.Map),
	}
	vectordb.WithEngine(vectordb.Memory)(&ret.Options)
	for _, opt := range opts {
		opt(&ret.Options)
	}
	return ret, nil
}

// Collection returns the named collection, creating it when absent.
func (e *Engine) Collection(_ context.Context, name string) (*Collection, error) {
	col, _ := e.collections.LoadOrStore(name, new(Collection))
	return col.(*Collection), nil
}

// DropCollection removes a collection and all its records.
func (e *Engine) DropCollection(name string) error {
	e.collections.Delete(name)
	return nil
}

func (e *Engine) Insert(ctx context.Context, collectionName string, records ...vectordb.Record) error {
	col, err := e.Collection(ctx, collectionName)
	if err != nil {
		return err
	}
	docs := make([]vectordb.Record, 0, len(records))
	for _, record := range records {
		if record.ID == "" {
			record.ID = record.Embedding.UUID()
		}
		docs = append(docs, record)
	}
	col.Add(docs...)
	return nil
}

func (e *Engine) Search(ctx context.Context, vector []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	var option vectordb.SearchOptions
	for _, opt := range opts {
		opt(&option)
	}
	col, err := e.Collection(ctx, option.Collection)
	if err != nil {
		return nil, err
	}

	var matches []vectordb.Record
	for _, record := range col.Records() {
		if !matchesFilters(&record, &option) {
			continue
		}
		record.Score = cosineSimilarity(vector, record.Embedding.Embedding)
		if record.Score < e.MinScore {
			continue
		}
		matches = append(matches, record)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	topK := option.TopK
	if topK == 0 {
		topK = e.TopK
	}
	if topK > 0 && topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

// matchesFilters applies the metadata and content constraints of a
// search. Every Meta key must match; Include/Exclude are substring
// constraints on the record content.
func matchesFilters(record *vectordb.Record, opts *vectordb.SearchOptions) bool {
	for k, v := range opts.Meta {
		if record.Embedding.Meta[k] != v {
			return false
		}
	}
	if opts.Include != "" && !strings.Contains(record.Embedding.Object, opts.Include) {
		return false
	}
	if opts.Exclude != "" && strings.Contains(record.Embedding.Object, opts.Exclude) {
		return false
	}
	return true
}

// cosineSimilarity scores two vectors in [-1, 1]; mismatched lengths and
// zero vectors score 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
