package embedder

import (
	"bytes"
	"errors"
	"sort"

	"github.com/google/uuid"
)

// ErrVectorLengthMismatch is returned when two embeddings of different
// dimensionality are compared.
var ErrVectorLengthMismatch = errors.New("vector length mismatch")

// Embedding is the vector representation of one piece of text. Meta
// carries the document attributes (source, state, ministry, ...) that
// ride along into the vector store for filtered search.
type Embedding struct {
	Object    string            `json:"object"`
	Embedding []float64         `json:"embedding"`
	Index     int               `json:"index"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// UUID derives a stable identifier from the embedded text and its
// metadata, so re-seeding the same corpus overwrites rather than
// duplicates records.
func (e Embedding) UUID() string {
	keys := make([]string, 0, len(e.Meta))
	for k := range e.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sb := new(bytes.Buffer)
	sb.WriteString(e.Object)
	for _, k := range keys {
		sb.WriteString(k + ":" + e.Meta[k])
		sb.WriteByte('\n')
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, sb.Bytes()).String()
}

// DotProduct returns the dot product with other. Vectors of different
// lengths return ErrVectorLengthMismatch.
func (e *Embedding) DotProduct(other *Embedding) (float64, error) {
	if len(e.Embedding) != len(other.Embedding) {
		return 0, ErrVectorLengthMismatch
	}
	var dot float64
	for i := range e.Embedding {
		dot += e.Embedding[i] * other.Embedding[i]
	}
	return dot, nil
}
