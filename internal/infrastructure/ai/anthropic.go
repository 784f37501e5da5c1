package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/ports"
)

const anthropicVersion = "2023-06-01"

type anthropicProvider struct {
	settings   domain.ProviderSettings
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func newAnthropicProvider(settings domain.ProviderSettings, apiKey, endpoint string, client *http.Client) ports.Provider {
	return &anthropicProvider{
		settings:   settings,
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: client,
	}
}

func (p *anthropicProvider) Name() string {
	return string(domain.PlatformClaude)
}

func (p *anthropicProvider) Model() string {
	return p.settings.Model
}

func (p *anthropicProvider) Generate(ctx context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	payload := anthropicRequest{
		Model:         p.settings.Model,
		MaxTokens:     valueOrDefaultInt(p.settings.MaxTokens, domain.DefaultMaxTokens),
		System:        req.System,
		Temperature:   p.settings.Temperature,
		TopP:          p.settings.TopP,
		TopK:          p.settings.TopK,
		StopSequences: p.settings.StopSequences,
		Messages: []anthropicMessage{
			{
				Role: "user",
				Content: []anthropicContent{
					{Type: "text", Text: req.User},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ports.ProviderResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.ProviderResponse{}, err
	}
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return ports.ProviderResponse{}, fmt.Errorf("claude: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ports.ProviderResponse{}, fmt.Errorf("claude: %s", resp.Status)
	}

	var decoded anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.ProviderResponse{}, fmt.Errorf("claude: decode response: %w", err)
	}

	content := strings.TrimSpace(decoded.FirstText())
	return ports.ProviderResponse{
		Command: ExtractCommand(content),
		Reply:   content,
	}, nil
}

type anthropicRequest struct {
	Model         string             `json:"model"`
	MaxTokens     int                `json:"max_tokens"`
	System        string             `json:"system,omitempty"`
	Temperature   float32            `json:"temperature,omitempty"`
	TopP          float32            `json:"top_p,omitempty"`
	TopK          int                `json:"top_k,omitempty"`
	StopSequences []string           `json:"stop_sequences,omitempty"`
	Messages      []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// FirstText returns the first text block of the reply.
func (a anthropicResponse) FirstText() string {
	for _, block := range a.Content {
		if block.Type == "" || block.Type == "text" {
			return block.Text
		}
	}
	return ""
}
