// Package rag answers policy questions from an indexed document corpus.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashford-hq/hr-assistant/internal/domain"
)

const systemPrompt = "You are an HR policy assistant.\n" +
	"- Answer ONLY using the provided context.\n" +
	"- If the context is insufficient, say you don't know and ask a clarifying question.\n" +
	"- Keep the answer concise.\n" +
	"- Include citations like [1], [2] that reference the context blocks."

// Document is one retrieved policy chunk with its payload metadata.
type Document struct {
	ID            string
	Score         float32
	Content       string
	Title         string
	SourcePath    string
	EffectiveDate string
	Region        string
}

// Citation points at a source document backing an answer.
type Citation struct {
	Title         string `json:"title"`
	SourcePath    string `json:"source_path"`
	EffectiveDate string `json:"effective_date"`
}

// Answer is a generated answer with its supporting citations.
type Answer struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations"`
}

// Embedder turns text into a query vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Searcher retrieves the closest policy chunks for a vector, optionally
// restricted to a region (plus GLOBAL documents).
type Searcher interface {
	Search(ctx context.Context, vector []float32, region string, limit int, minScore float32) ([]Document, error)
}

// Generator produces the final answer text from a system prompt and a
// user prompt.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Service wires retrieval and generation into the policy-answer
// collaborator consumed by the orchestrator.
type Service struct {
	embedder  Embedder
	searcher  Searcher
	generator Generator
	topK      int
	minScore  float32
	logger    *slog.Logger
}

// NewService creates a policy-answer service.
func NewService(embedder Embedder, searcher Searcher, generator Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		embedder:  embedder,
		searcher:  searcher,
		generator: generator,
		topK:      5,
		minScore:  0.5,
		logger:    logger,
	}
}

// Answer implements the orchestrator's Answerer contract, returning the
// answer text only.
func (s *Service) Answer(ctx context.Context, question string, uc domain.UserContext) (string, error) {
	ans, err := s.AnswerWithCitations(ctx, question, uc)
	if err != nil {
		return "", err
	}
	return ans.Text, nil
}

// AnswerWithCitations retrieves context for the question, generates an
// answer grounded in it, and returns the citations alongside.
func (s *Service) AnswerWithCitations(ctx context.Context, question string, uc domain.UserContext) (*Answer, error) {
	vector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	docs, err := s.searcher.Search(ctx, vector, uc.Region, s.topK, s.minScore)
	if err != nil {
		return nil, fmt.Errorf("search policy index: %w", err)
	}
	s.logger.Debug("retrieved policy context", "question_len", len(question), "docs", len(docs))

	blocks := make([]string, 0, len(docs))
	citations := make([]Citation, 0, len(docs))
	for i, d := range docs {
		title := d.Title
		if title == "" {
			title = "Document"
		}
		eff := d.EffectiveDate
		if eff == "" {
			eff = "unknown"
		}
		blocks = append(blocks, fmt.Sprintf("[%d] %s (effective %s)\n%s", i+1, title, eff, d.Content))
		citations = append(citations, Citation{
			Title:         title,
			SourcePath:    d.SourcePath,
			EffectiveDate: eff,
		})
	}

	contextText := strings.Join(blocks, "\n\n")
	if contextText == "" {
		contextText = "(no context)"
	}
	user := "Question: " + question + "\n\nContext:\n\n" + contextText

	text, err := s.generator.Generate(ctx, systemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &Answer{Text: text, Citations: citations}, nil
}
