package embedding

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEngine calls the OpenAI embeddings endpoint (or a compatible one).
type OpenAIEngine struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAIEngine creates an OpenAI embedding engine.
func NewOpenAIEngine(apiKey, baseURL, model string, dimensions int) (*OpenAIEngine, error) {
	if apiKey == "" {
		return nil, errors.New("openai embeddings require an API key")
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEngine{client: openai.NewClientWithConfig(cfg), model: model, dimensions: dimensions}, nil
}

// Embed implements ports.Embedder.
func (e *OpenAIEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed failed: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("openai returned no embeddings")
	}
	return resp.Data[0].Embedding, nil
}

// Name returns the engine name.
func (e *OpenAIEngine) Name() string {
	if e.dimensions > 0 {
		return fmt.Sprintf("openai:%s-%d", e.model, e.dimensions)
	}
	return "openai:" + e.model
}
