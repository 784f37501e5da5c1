package domain

import "strings"

// Platform identifies a language model provider.
type Platform string

const (
	PlatformOpenAI  Platform = "openai"
	PlatformClaude  Platform = "claude"
	PlatformGemini  Platform = "gemini"
	PlatformMistral Platform = "mistral"
	PlatformQianfan Platform = "qianfan"
	PlatformQianwen Platform = "qianwen"
	PlatformOllama  Platform = "ollama"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{
	PlatformOpenAI,
	PlatformClaude,
	PlatformGemini,
	PlatformMistral,
	PlatformQianfan,
	PlatformQianwen,
	PlatformOllama,
}

// ParsePlatform normalizes a user supplied platform name.
func ParsePlatform(name string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Platforms {
		if p == known {
			return p, true
		}
	}
	return "", false
}

// DefaultModel returns the model used when the config omits one.
func (p Platform) DefaultModel() string {
	switch p {
	case PlatformOpenAI:
		return "gpt-4o-mini"
	case PlatformClaude:
		return "claude-3-5-sonnet-20240620"
	case PlatformGemini:
		return "gemini-1.5-flash"
	case PlatformMistral:
		return "mistral-small-latest"
	case PlatformQianfan:
		return "ernie-4.0-8k"
	case PlatformQianwen:
		return "qwen-turbo"
	case PlatformOllama:
		return "llama3"
	default:
		return ""
	}
}

// DefaultAPIKeyEnv is the environment variable consulted when no key is configured.
func (p Platform) DefaultAPIKeyEnv() string {
	switch p {
	case PlatformOpenAI:
		return "OPENAI_API_KEY"
	case PlatformClaude:
		return "ANTHROPIC_API_KEY"
	case PlatformGemini:
		return "GEMINI_API_KEY"
	case PlatformMistral:
		return "MISTRAL_API_KEY"
	case PlatformQianfan:
		return "QIANFAN_API_KEY"
	case PlatformQianwen:
		return "DASHSCOPE_API_KEY"
	default:
		return ""
	}
}

// RequiresAPIKey is false only for locally hosted models.
func (p Platform) RequiresAPIKey() bool {
	return p != PlatformOllama
}
