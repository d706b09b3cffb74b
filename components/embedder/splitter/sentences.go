// Package splitter chunks documents into retrieval-sized passages along
// sentence boundaries.
package splitter

import (
	"strings"

	"github.com/clipperhouse/uax29/sentences"

	"github.com/krishidhan/sahayak/components/embedder"
)

const (
	// DefaultChunkSize is the token budget per chunk.
	DefaultChunkSize = 200
	// DefaultOverlap is the token budget carried between neighboring
	// chunks so retrieval does not lose context at chunk seams.
	DefaultOverlap = 30
)

// Sentences splits text on UAX#29 sentence boundaries and packs whole
// sentences into chunks of at most chunkSize tokens. The trailing
// sentences worth up to overlap tokens are repeated at the start of the
// next chunk. A sentence larger than the budget still forms a chunk of
// its own; sentences are never cut.
type Sentences struct {
	chunkSize int
	overlap   int
	counter   TokenCounter
}

var _ embedder.Chunker = (*Sentences)(nil)

// Option configures a Sentences splitter.
type Option func(*Sentences)

func WithChunkSize(size int) Option {
	return func(s *Sentences) {
		s.chunkSize = size
	}
}

func WithOverlap(overlap int) Option {
	return func(s *Sentences) {
		s.overlap = overlap
	}
}

func WithTokenCounter(counter TokenCounter) Option {
	return func(s *Sentences) {
		s.counter = counter
	}
}

func NewSentences(opts ...Option) *Sentences {
	s := &Sentences{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
		counter:   WordCounter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TokenCount counts tokens with the splitter's counter.
func (s *Sentences) TokenCount(txt string) int {
	return s.counter.Count(txt)
}

// SplitText chunks txt. Whitespace-only input yields no chunks.
func (s *Sentences) SplitText(txt string) []string {
	var sents []string
	for _, seg := range sentences.SegmentAll([]byte(txt)) {
		if t := strings.TrimSpace(string(seg)); t != "" {
			sents = append(sents, t)
		}
	}
	if len(sents) == 0 {
		return nil
	}

	var chunks []string
	var cur []string
	curTokens := 0
	for _, sent := range sents {
		n := s.counter.Count(sent)
		if curTokens > 0 && curTokens+n > s.chunkSize {
			chunks = append(chunks, strings.Join(cur, " "))
			cur = s.carryOverlap(cur)
			curTokens = 0
			for _, kept := range cur {
				curTokens += s.counter.Count(kept)
			}
		}
		cur = append(cur, sent)
		curTokens += n
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, " "))
	}
	return chunks
}

// carryOverlap returns the trailing sentences of cur worth up to overlap
// tokens, oldest first.
func (s *Sentences) carryOverlap(cur []string) []string {
	if s.overlap <= 0 {
		return nil
	}
	tokens := 0
	keep := 0
	for i := len(cur) - 1; i >= 0 && tokens < s.overlap; i-- {
		tokens += s.counter.Count(cur[i])
		keep++
	}
	return append([]string(nil), cur[len(cur)-keep:]...)
}
