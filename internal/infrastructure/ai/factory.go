// Package ai adapts language model services to ports.Provider.
//
// A single adapter is selected from general.platform:
//   - openai, mistral, qianwen, qianfan and ollama share the OpenAI-compatible
//     chat completions client (go-openai) with per-platform base URLs
//   - claude talks to the Anthropic messages API over plain HTTP
//   - gemini uses the Google GenAI SDK
//
// When a platform needs an API key and none is configured the factory returns
// the offline heuristic provider so the CLI stays usable.
package ai

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/ports"
)

const (
	mistralBaseURL = "https://api.mistral.ai/v1"
	qianwenBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	qianfanBaseURL = "https://qianfan.baidubce.com/v2"
	ollamaBaseURL  = "http://localhost:11434"
	claudeEndpoint = "https://api.anthropic.com/v1/messages"
)

// Factory creates provider instances for the configured platform.
// It maintains a single HTTP client shared across all providers.
type Factory struct {
	httpClient *http.Client
}

// NewFactory creates a new provider factory with a configured HTTP client.
func NewFactory() *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
	}
}

// ForConfig builds the adapter for cfg.General.Platform.
func (f *Factory) ForConfig(cfg domain.Config) (ports.Provider, error) {
	platform := cfg.ActivePlatform()
	settings := cfg.Provider(platform)
	apiKey := settings.ResolveAPIKey()

	if platform.RequiresAPIKey() && apiKey == "" {
		return newHeuristicProvider(platform, settings.Model), nil
	}

	switch platform {
	case domain.PlatformOpenAI:
		return newChatProvider(platform, settings, apiKey, settings.BaseURL, f.httpClient), nil
	case domain.PlatformMistral:
		return newChatProvider(platform, settings, apiKey, valueOrDefault(settings.BaseURL, mistralBaseURL), f.httpClient), nil
	case domain.PlatformQianwen:
		return newChatProvider(platform, settings, apiKey, valueOrDefault(settings.BaseURL, qianwenBaseURL), f.httpClient), nil
	case domain.PlatformQianfan:
		return newChatProvider(platform, settings, apiKey, valueOrDefault(settings.BaseURL, qianfanBaseURL), f.httpClient), nil
	case domain.PlatformOllama:
		host := strings.TrimSuffix(valueOrDefault(settings.BaseURL, ollamaBaseURL), "/")
		if !strings.HasSuffix(host, "/v1") {
			host += "/v1"
		}
		return newChatProvider(platform, settings, valueOrDefault(apiKey, "ollama"), host, f.httpClient), nil
	case domain.PlatformClaude:
		return newAnthropicProvider(settings, apiKey, valueOrDefault(settings.BaseURL, claudeEndpoint), f.httpClient), nil
	case domain.PlatformGemini:
		return newGeminiProvider(settings, apiKey, f.httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", platform)
	}
}

var _ ports.ProviderFactory = (*Factory)(nil)

func valueOrDefault(value string, def string) string {
	if value == "" {
		return def
	}
	return value
}

func valueOrDefaultInt(value int, def int) int {
	if value == 0 {
		return def
	}
	return value
}
