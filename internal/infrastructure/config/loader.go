package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/termind/assets"
	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/pkg/filesystem"
	"github.com/doeshing/termind/internal/ports"
)

// ConfigEnv points at an alternative config file.
const ConfigEnv = "TERMIND_CONFIG"

const (
	formatVersion   = "1"
	configFileName  = "config.yaml"
	memoryFileName  = "memory.db"
	redactedKeyMask = "****"
)

// FileLoader loads YAML configuration from ~/.termind/config.yaml (overridable via TERMIND_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is created with defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
				return domain.Config{}, fmt.Errorf("write default config: %w", err)
			}
			return hydrateDefaults(cfg), nil
		}
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg = hydrateDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := strings.TrimSpace(os.Getenv(ConfigEnv)); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.StateDir(), configFileName)
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

// DefaultConfig is the embedded first-run config. The minimal fallback only
// applies if the embedded file fails to parse.
func DefaultConfig() domain.Config {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{
			ConfigFormatVersion: formatVersion,
			General: domain.GeneralSettings{
				Platform:    domain.PlatformOpenAI,
				ShowCommand: true,
			},
		}
	}
	return cfg
}

// hydrateDefaults fills fields older or hand-written files omit.
func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = formatVersion
	}
	if cfg.General.Platform == "" {
		cfg.General.Platform = domain.PlatformOpenAI
	}
	if cfg.General.StorageSize == 0 {
		cfg.General.StorageSize = domain.DefaultStorageSize
	}
	if cfg.General.HistoryLimit <= 0 {
		cfg.General.HistoryLimit = domain.DefaultHistoryLimit
	}
	if cfg.Memory.Path == "" {
		cfg.Memory.Path = filepath.Join(filesystem.StateDir(), memoryFileName)
	} else {
		cfg.Memory.Path = filesystem.ExpandPath(cfg.Memory.Path)
	}
	if cfg.Memory.Embedding.Provider == "" {
		cfg.Memory.Embedding.Provider = "local"
	}
	if cfg.Metadata.IncludeGit == "" {
		cfg.Metadata.IncludeGit = domain.ToggleAuto
	}
	if cfg.Metadata.IncludeDocker == "" {
		cfg.Metadata.IncludeDocker = domain.ToggleAuto
	}
	if cfg.Metadata.IncludeGPU == "" {
		cfg.Metadata.IncludeGPU = domain.ToggleAuto
	}
	if cfg.Metadata.CommandTimeout == "" {
		cfg.Metadata.CommandTimeout = domain.DefaultMetadataCommandTimeout.String()
	}
	return cfg
}

// Redacted returns a copy of cfg with inline API keys masked.
func Redacted(cfg domain.Config) domain.Config {
	providers := make(map[domain.Platform]domain.ProviderSettings, len(cfg.Providers))
	for platform, settings := range cfg.Providers {
		if settings.APIKey != "" {
			settings.APIKey = maskKey(settings.APIKey)
		}
		providers[platform] = settings
	}
	cfg.Providers = providers
	return cfg
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return redactedKeyMask
	}
	return key[:3] + redactedKeyMask + key[len(key)-4:]
}

// Marshal renders cfg as YAML.
func Marshal(cfg domain.Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
