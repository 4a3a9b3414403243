package rag

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Embedding task types accepted by the Gemini embed endpoint.
const (
	taskRetrievalQuery    = "RETRIEVAL_QUERY"
	taskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// GeminiClient provides embeddings and answer generation through the
// Gemini API. It implements both Embedder and Generator.
type GeminiClient struct {
	client        *genai.Client
	embedModel    string
	generateModel string
	temperature   float32
}

// GeminiConfig holds Gemini API configuration.
type GeminiConfig struct {
	APIKey        string
	EmbedModel    string
	GenerateModel string
	Temperature   float32
}

// NewGeminiClient creates a Gemini-backed embedder/generator.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = "gemini-embedding-001"
	}
	if cfg.GenerateModel == "" {
		cfg.GenerateModel = "gemini-flash-latest"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{
		client:        client,
		embedModel:    cfg.EmbedModel,
		generateModel: cfg.GenerateModel,
		temperature:   cfg.Temperature,
	}, nil
}

// EmbedQuery embeds a question for retrieval.
func (g *GeminiClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text, taskRetrievalQuery)
}

// EmbedDocument embeds a document chunk for indexing.
func (g *GeminiClient) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text, taskRetrievalDocument)
}

func (g *GeminiClient) embed(ctx context.Context, text, task string) ([]float32, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := g.client.Models.EmbedContent(ctx,
		g.embedModel,
		contents,
		&genai.EmbedContentConfig{
			TaskType: task,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("gemini embed: no embeddings returned")
	}

	return result.Embeddings[0].Values, nil
}

// EmbedDocuments embeds document chunks in one batch call.
func (g *GeminiClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := g.client.Models.EmbedContent(ctx,
		g.embedModel,
		contents,
		&genai.EmbedContentConfig{
			TaskType: taskRetrievalDocument,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini batch embed: got %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

// Generate produces the answer text.
func (g *GeminiClient) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx,
		g.generateModel,
		genai.Text(user),
		&genai.GenerateContentConfig{
			Temperature:       genai.Ptr(g.temperature),
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini generate: empty response")
	}
	return text, nil
}
