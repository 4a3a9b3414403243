package rag

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	chunkSize    = 900
	chunkOverlap = 150
	embedBatch   = 32
)

// DocumentEmbedder is the indexing side of the embedding client.
type DocumentEmbedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Upserter is the write side of the policy index.
type Upserter interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, docs []Document, vectors [][]float32) error
}

// Ingestor loads policy documents from disk, chunks them, embeds the
// chunks, and writes them into the policy index.
type Ingestor struct {
	embedder DocumentEmbedder
	index    Upserter
	logger   *slog.Logger
}

// NewIngestor creates an ingestor.
func NewIngestor(embedder DocumentEmbedder, index Upserter, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// IngestDir indexes every .md and .txt file under root. Returns the
// number of chunks written.
func (in *Ingestor) IngestDir(ctx context.Context, root string) (int, error) {
	docs, err := loadPolicyDocs(root)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	if err := in.index.EnsureCollection(ctx); err != nil {
		return 0, fmt.Errorf("ensure collection: %w", err)
	}

	chunks := make([]Document, 0, len(docs))
	for _, d := range docs {
		for i, piece := range ChunkText(d.Content, chunkSize, chunkOverlap) {
			c := d
			c.ID = ""
			c.Content = piece
			in.logger.Debug("chunked document", "source", d.SourcePath, "chunk", i)
			chunks = append(chunks, c)
		}
	}

	total := 0
	for start := 0; start < len(chunks); start += embedBatch {
		end := start + embedBatch
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}
		vectors, err := in.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return total, fmt.Errorf("embed batch: %w", err)
		}
		if err := in.index.Upsert(ctx, batch, vectors); err != nil {
			return total, fmt.Errorf("upsert batch: %w", err)
		}
		total += len(batch)
	}

	return total, nil
}

// loadPolicyDocs reads every markdown/text file under root, parsing
// optional front matter (title, region, effective_date) delimited by
// --- lines.
func loadPolicyDocs(root string) ([]Document, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".txt":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)

	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}

		meta, body := ParseFrontMatter(string(raw))
		doc := Document{
			Content:       strings.TrimSpace(body),
			Title:         meta["title"],
			Region:        meta["region"],
			EffectiveDate: meta["effective_date"],
			SourcePath:    filepath.ToSlash(p),
		}
		if doc.Title == "" {
			name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
			doc.Title = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(name))
		}
		if doc.Region == "" {
			doc.Region = "GLOBAL"
		}
		if doc.Content != "" {
			docs = append(docs, doc)
		}
	}

	return docs, nil
}

// ParseFrontMatter parses minimal key: value front matter between ---
// lines. Returns the metadata and the remaining body; text without a
// front matter block is returned unchanged.
func ParseFrontMatter(text string) (map[string]string, string) {
	lines := strings.Split(text, "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != "---" {
		return map[string]string{}, text
	}

	meta := make(map[string]string)
	i := 1
	for ; i < len(lines); i++ {
		ln := strings.TrimSpace(lines[i])
		if ln == "---" {
			break
		}
		idx := strings.Index(ln, ":")
		if ln == "" || idx < 0 {
			continue
		}
		k := strings.TrimSpace(ln[:idx])
		v := strings.Trim(strings.TrimSpace(ln[idx+1:]), `"'`)
		meta[k] = v
	}
	if i >= len(lines) {
		return map[string]string{}, text
	}

	return meta, strings.Join(lines[i+1:], "\n")
}

// ChunkText splits text into chunks of at most size characters with the
// given overlap, preferring paragraph then line boundaries.
func ChunkText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunks = append(chunks, strings.TrimSpace(text[start:]))
			break
		}

		// Prefer breaking at a paragraph, then a line, inside the window.
		cut := end
		if idx := strings.LastIndex(text[start:end], "\n\n"); idx > 0 {
			cut = start + idx
		} else if idx := strings.LastIndex(text[start:end], "\n"); idx > 0 {
			cut = start + idx
		}

		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return chunks
}
