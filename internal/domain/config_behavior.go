package domain

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ActivePlatform returns the configured platform or OpenAI when unset.
func (c *Config) ActivePlatform() Platform {
	if p, ok := ParsePlatform(string(c.General.Platform)); ok {
		return p
	}
	return PlatformOpenAI
}

// Provider returns the settings of platform p with defaults applied.
func (c *Config) Provider(p Platform) ProviderSettings {
	settings := c.Providers[p]
	if settings.Model == "" {
		settings.Model = p.DefaultModel()
	}
	if settings.APIKeyEnv == "" {
		settings.APIKeyEnv = p.DefaultAPIKeyEnv()
	}
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = DefaultMaxTokens
	}
	if settings.Temperature <= 0 {
		settings.Temperature = DefaultTemperature
	}
	return settings
}

// ResolveAPIKey returns the inline key or the value of the key's env variable.
func (s ProviderSettings) ResolveAPIKey() string {
	if key := strings.TrimSpace(s.APIKey); key != "" {
		return key
	}
	if s.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(s.APIKeyEnv))
}

// GetStorageSize returns the memory bound.
func (c *Config) GetStorageSize() int {
	if c.General.StorageSize <= 0 {
		return DefaultStorageSize
	}
	return c.General.StorageSize
}

// GetHistoryLimit returns how many history events are sent to the model.
func (c *Config) GetHistoryLimit() int {
	if c.General.HistoryLimit <= 0 {
		return DefaultHistoryLimit
	}
	return c.General.HistoryLimit
}

// GitEnabled reports whether git metadata may be collected.
func (s MetadataSettings) GitEnabled() bool {
	return toggleEnabled(s.IncludeGit)
}

// DockerEnabled reports whether docker metadata may be collected.
func (s MetadataSettings) DockerEnabled() bool {
	return toggleEnabled(s.IncludeDocker)
}

// GPUEnabled reports whether GPU metadata may be collected.
func (s MetadataSettings) GPUEnabled() bool {
	return toggleEnabled(s.IncludeGPU)
}

// Timeout bounds each metadata subprocess.
func (s MetadataSettings) Timeout() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s.CommandTimeout))
	if err != nil || d <= 0 {
		return DefaultMetadataCommandTimeout
	}
	return d
}

// Mode normalizes a toggle value; empty and unknown values mean auto.
func Mode(value string) string {
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case ToggleAlways, ToggleNever:
		return v
	default:
		return ToggleAuto
	}
}

// EmbeddingProvider returns the normalized embedder name.
func (c *Config) EmbeddingProvider() string {
	return NormalizeEmbeddingProvider(c.Memory.Embedding.Provider)
}

// NormalizeEmbeddingProvider lowercases name; empty means "local".
func NormalizeEmbeddingProvider(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "local"
	}
	return name
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.General.Platform != "" {
		if _, ok := ParsePlatform(string(c.General.Platform)); !ok {
			return fmt.Errorf("unknown platform %q", c.General.Platform)
		}
	}
	if c.General.StorageSize < 0 {
		return fmt.Errorf("storage_size must not be negative, got %d", c.General.StorageSize)
	}
	for name, value := range map[string]string{
		"include_git":    c.Metadata.IncludeGit,
		"include_docker": c.Metadata.IncludeDocker,
		"include_gpu":    c.Metadata.IncludeGPU,
	} {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "", ToggleAuto, ToggleAlways, ToggleNever:
		default:
			return fmt.Errorf("metadata.%s must be auto, always or never, got %q", name, value)
		}
	}
	switch c.EmbeddingProvider() {
	case "local", "ollama", "openai", "gemini":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Memory.Embedding.Provider)
	}
	return nil
}

// toggleEnabled treats "auto" and "always" as enabled; empty means auto.
func toggleEnabled(value string) bool {
	return Mode(value) != ToggleNever
}

// Forced is true for "always": collect even when the tool looks absent.
func Forced(value string) bool {
	return Mode(value) == ToggleAlways
}
