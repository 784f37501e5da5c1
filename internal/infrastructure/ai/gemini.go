package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/ports"
)

type geminiProvider struct {
	settings   domain.ProviderSettings
	apiKey     string
	httpClient *http.Client
}

func newGeminiProvider(settings domain.ProviderSettings, apiKey string, client *http.Client) ports.Provider {
	return &geminiProvider{
		settings:   settings,
		apiKey:     apiKey,
		httpClient: client,
	}
}

func (p *geminiProvider) Name() string {
	return string(domain.PlatformGemini)
}

func (p *geminiProvider) Model() string {
	return p.settings.Model
}

func (p *geminiProvider) Generate(ctx context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     p.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
	})
	if err != nil {
		return ports.ProviderResponse{}, fmt.Errorf("gemini: create client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, p.settings.Model, genai.Text(req.User), p.generationConfig(req.System))
	if err != nil {
		return ports.ProviderResponse{}, fmt.Errorf("gemini: %w", err)
	}

	content := strings.TrimSpace(resp.Text())
	return ports.ProviderResponse{
		Command: ExtractCommand(content),
		Reply:   content,
	}, nil
}

func (p *geminiProvider) generationConfig(system string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(valueOrDefaultInt(p.settings.MaxTokens, domain.DefaultMaxTokens)),
		StopSequences:   p.settings.StopSequences,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if p.settings.Temperature > 0 {
		cfg.Temperature = genai.Ptr(p.settings.Temperature)
	}
	if p.settings.TopP > 0 {
		cfg.TopP = genai.Ptr(p.settings.TopP)
	}
	if p.settings.TopK > 0 {
		cfg.TopK = genai.Ptr(float32(p.settings.TopK))
	}
	return cfg
}
