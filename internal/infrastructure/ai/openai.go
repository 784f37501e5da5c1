package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/ports"
)

// chatProvider serves every platform exposing an OpenAI-compatible
// chat completions endpoint.
type chatProvider struct {
	platform domain.Platform
	settings domain.ProviderSettings
	client   *openai.Client
}

func newChatProvider(platform domain.Platform, settings domain.ProviderSettings, apiKey, baseURL string, httpClient *http.Client) ports.Provider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	cfg.HTTPClient = httpClient
	return &chatProvider{
		platform: platform,
		settings: settings,
		client:   openai.NewClientWithConfig(cfg),
	}
}

func (p *chatProvider) Name() string {
	return string(p.platform)
}

func (p *chatProvider) Model() string {
	return p.settings.Model
}

func (p *chatProvider) Generate(ctx context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.User})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.settings.Model,
		Messages:    messages,
		MaxTokens:   valueOrDefaultInt(p.settings.MaxTokens, domain.DefaultMaxTokens),
		Temperature: p.settings.Temperature,
		TopP:        p.settings.TopP,
		Stop:        p.settings.StopSequences,
	})
	if err != nil {
		return ports.ProviderResponse{}, fmt.Errorf("%s: %w", p.platform, err)
	}
	if len(resp.Choices) == 0 {
		return ports.ProviderResponse{}, fmt.Errorf("%s: %w", p.platform, errors.New("empty completion"))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	return ports.ProviderResponse{
		Command: ExtractCommand(content),
		Reply:   content,
	}, nil
}
