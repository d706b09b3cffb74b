// Package corpus loads the seed documents that back semantic retrieval:
// seasonal crop advisories and government scheme descriptions. Documents
// are pre-written YAML shipped with the repo; seeding reads them, chunks
// the text, embeds the chunks and inserts them into the vector engine.
// Every chunk keeps its document attributes so answers can name their
// source and scheme search can filter on state, ministry or category.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/krishidhan/sahayak/components/embedder"
)

// Document is one advisory or scheme entry. Title and Text are required;
// the remaining fields become retrieval metadata when present.
type Document struct {
	Title    string   `yaml:"title"`
	State    string   `yaml:"state,omitempty"`
	Ministry string   `yaml:"ministry,omitempty"`
	Category string   `yaml:"category,omitempty"`
	Source   string   `yaml:"source,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
	Text     string   `yaml:"text"`
}

// Header renders the document attributes as labeled lines. The header
// leads every chunk so that scheme names, states and ministries land in
// the vector space alongside the body text, and so that tools can tell
// header lines from body when quoting a chunk.
func (d Document) Header() string {
	sb := new(strings.Builder)
	sb.WriteString("Title: " + d.Title)
	if d.Category != "" {
		sb.WriteString("\nCategory: " + d.Category)
	}
	if d.State != "" {
		sb.WriteString("\nState: " + d.State)
	}
	if d.Ministry != "" {
		sb.WriteString("\nMinistry: " + d.Ministry)
	}
	return sb.String()
}

// Chunks splits the body text with chunker and prefixes each chunk with
// the header. Chunking the body alone keeps the splitter from gluing
// header lines into the prose; prefixing afterwards gives every chunk
// the document context, not just the first.
func (d Document) Chunks(chunker embedder.Chunker) []string {
	parts := chunker.SplitText(strings.TrimSpace(d.Text))
	header := d.Header()
	chunks := make([]string, 0, len(parts))
	for _, part := range parts {
		chunks = append(chunks, header+"\n\n"+part)
	}
	return chunks
}

// Meta returns the retrieval metadata stored with each chunk. Empty
// attributes are omitted.
func (d Document) Meta() map[string]string {
	meta := map[string]string{"title": d.Title}
	if d.State != "" {
		meta["state"] = d.State
	}
	if d.Ministry != "" {
		meta["ministry"] = d.Ministry
	}
	if d.Category != "" {
		meta["category"] = d.Category
	}
	if d.Source != "" {
		meta["source"] = d.Source
	}
	if len(d.Tags) > 0 {
		meta["tags"] = strings.Join(d.Tags, ", ")
	}
	return meta
}

// File is one corpus file: a collection name and the documents bound for
// it. Advisory and scheme documents live in separate files because they
// seed separate collections.
type File struct {
	Collection string     `yaml:"collection"`
	Documents  []Document `yaml:"documents"`

	// Path is where the file was loaded from, for log lines and errors.
	Path string `yaml:"-"`
}

// Load reads and validates a single corpus file.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}
	file := new(File)
	if err := yaml.Unmarshal(raw, file); err != nil {
		return nil, fmt.Errorf("parse corpus file %s: %w", path, err)
	}
	file.Path = path
	if err := file.validate(); err != nil {
		return nil, fmt.Errorf("corpus file %s: %w", path, err)
	}
	return file, nil
}

// LoadDir loads every .yaml/.yml file directly under dir, sorted by name
// so seeding order is stable.
func LoadDir(dir string) ([]*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("no corpus files in %s", dir)
	}
	files := make([]*File, 0, len(names))
	for _, name := range names {
		file, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func (f *File) validate() error {
	if f.Collection == "" {
		return fmt.Errorf("missing collection name")
	}
	if len(f.Documents) == 0 {
		return fmt.Errorf("no documents")
	}
	for i, doc := range f.Documents {
		if doc.Title == "" {
			return fmt.Errorf("document %d: missing title", i)
		}
		if strings.TrimSpace(doc.Text) == "" {
			return fmt.Errorf("document %q: missing text", doc.Title)
		}
	}
	return nil
}
