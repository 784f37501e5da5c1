package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/ports"
)

func configFor(platform domain.Platform, settings domain.ProviderSettings) domain.Config {
	return domain.Config{
		General:   domain.GeneralSettings{Platform: platform},
		Providers: map[domain.Platform]domain.ProviderSettings{platform: settings},
	}
}

func TestFactory_ForConfig(t *testing.T) {
	t.Setenv("TERMIND_TEST_MISSING_KEY", "")

	tests := []struct {
		name     string
		platform domain.Platform
		settings domain.ProviderSettings
		wantName string
		wantType ports.Provider
	}{
		{"openai", domain.PlatformOpenAI, domain.ProviderSettings{APIKey: "k"}, "openai", &chatProvider{}},
		{"mistral", domain.PlatformMistral, domain.ProviderSettings{APIKey: "k"}, "mistral", &chatProvider{}},
		{"qianwen", domain.PlatformQianwen, domain.ProviderSettings{APIKey: "k"}, "qianwen", &chatProvider{}},
		{"qianfan", domain.PlatformQianfan, domain.ProviderSettings{APIKey: "k"}, "qianfan", &chatProvider{}},
		{"ollama needs no key", domain.PlatformOllama, domain.ProviderSettings{}, "ollama", &chatProvider{}},
		{"claude", domain.PlatformClaude, domain.ProviderSettings{APIKey: "k"}, "claude", &anthropicProvider{}},
		{"gemini", domain.PlatformGemini, domain.ProviderSettings{APIKey: "k"}, "gemini", &geminiProvider{}},
		{"missing key falls back", domain.PlatformClaude, domain.ProviderSettings{APIKeyEnv: "TERMIND_TEST_MISSING_KEY"}, "heuristic", &heuristicProvider{}},
	}

	factory := NewFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := factory.ForConfig(configFor(tt.platform, tt.settings))
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, provider)
			assert.Equal(t, tt.wantName, provider.Name())
			assert.Equal(t, tt.platform.DefaultModel(), provider.Model())
		})
	}
}

func TestChatProvider_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "mistral-small-latest", body.Model)
		assert.Equal(t, domain.DefaultMaxTokens, body.MaxTokens)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "be terse", body.Messages[0].Content)
		assert.Equal(t, "user", body.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Commands: ls -la"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	cfg := configFor(domain.PlatformMistral, domain.ProviderSettings{APIKey: "secret", BaseURL: server.URL + "/v1"})
	provider, err := NewFactory().ForConfig(cfg)
	require.NoError(t, err)

	resp, err := provider.Generate(context.Background(), ports.ProviderRequest{System: "be terse", User: "list files"})

	require.NoError(t, err)
	assert.Equal(t, "ls -la", resp.Command)
	assert.Equal(t, "Commands: ls -la", resp.Reply)
}

func TestChatProvider_OllamaBaseURL(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` + "```sh\\nuptime\\n```" + `"}}]}`))
	}))
	defer server.Close()

	provider, err := NewFactory().ForConfig(configFor(domain.PlatformOllama, domain.ProviderSettings{BaseURL: server.URL}))
	require.NoError(t, err)

	resp, err := provider.Generate(context.Background(), ports.ProviderRequest{User: "how long has it been up"})

	require.NoError(t, err)
	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "uptime", resp.Command)
}

func TestChatProvider_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	provider, err := NewFactory().ForConfig(configFor(domain.PlatformOpenAI, domain.ProviderSettings{APIKey: "bad", BaseURL: server.URL}))
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), ports.ProviderRequest{User: "anything"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai")
}

func TestAnthropicProvider_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var body anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-3-5-sonnet-20240620", body.Model)
		assert.Equal(t, "system prompt", body.System)
		assert.Equal(t, 7, body.TopK)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "find big files", body.Messages[0].Content[0].Text)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Commands: du -ah . | sort -rh | head"}]}`))
	}))
	defer server.Close()

	cfg := configFor(domain.PlatformClaude, domain.ProviderSettings{APIKey: "secret", BaseURL: server.URL, TopK: 7})
	provider, err := NewFactory().ForConfig(cfg)
	require.NoError(t, err)

	resp, err := provider.Generate(context.Background(), ports.ProviderRequest{System: "system prompt", User: "find big files"})

	require.NoError(t, err)
	assert.Equal(t, "du -ah . | sort -rh | head", resp.Command)
}

func TestAnthropicProvider_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := newAnthropicProvider(domain.ProviderSettings{Model: "m"}, "k", server.URL, http.DefaultClient)
	_, err := provider.Generate(context.Background(), ports.ProviderRequest{User: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestGeminiProvider_GenerationConfig(t *testing.T) {
	p := &geminiProvider{settings: domain.ProviderSettings{MaxTokens: 256, Temperature: 0.5, TopK: 32, StopSequences: []string{"\n\n"}}}

	cfg := p.generationConfig("sys")

	assert.Equal(t, int32(256), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.5, *cfg.Temperature, 1e-6)
	require.NotNil(t, cfg.TopK)
	assert.InDelta(t, 32, *cfg.TopK, 1e-6)
	assert.Nil(t, cfg.TopP)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, []string{"\n\n"}, cfg.StopSequences)

	assert.Nil(t, p.generationConfig("").SystemInstruction)
}

func TestHeuristicProvider_UsesIntent(t *testing.T) {
	provider := newHeuristicProvider(domain.PlatformOpenAI, "gpt-4o-mini")

	resp, err := provider.Generate(context.Background(), ports.ProviderRequest{
		User:   "metadata mentioning docker",
		Intent: "how much disk space is left",
	})

	require.NoError(t, err)
	assert.Equal(t, "df -h", resp.Command)
	assert.Contains(t, resp.Reply, "OPENAI_API_KEY")

	resp, err = provider.Generate(context.Background(), ports.ProviderRequest{Intent: "compose a haiku"})
	require.NoError(t, err)
	assert.Empty(t, resp.Command)
}
