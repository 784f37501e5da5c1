package domain

// Config mirrors ~/.termind/config.yaml.
type Config struct {
	ConfigFormatVersion string                        `yaml:"config_format_version"`
	General             GeneralSettings               `yaml:"general"`
	Providers           map[Platform]ProviderSettings `yaml:"providers"`
	Memory              MemorySettings                `yaml:"memory"`
	Metadata            MetadataSettings              `yaml:"metadata"`
}

// GeneralSettings captures user level toggles.
type GeneralSettings struct {
	Platform     Platform `yaml:"platform"`
	AutoExecute  bool     `yaml:"auto_execute"`
	ShowCommand  bool     `yaml:"show_command"`
	StorageSize  int      `yaml:"storage_size"`
	HistoryLimit int      `yaml:"history_limit"`
}

// ProviderSettings configures one language model platform.
type ProviderSettings struct {
	Model         string   `yaml:"model"`
	APIKey        string   `yaml:"api_key,omitempty"`
	APIKeyEnv     string   `yaml:"api_key_env,omitempty"`
	BaseURL       string   `yaml:"base_url,omitempty"`
	Temperature   float32  `yaml:"temperature"`
	MaxTokens     int      `yaml:"max_tokens"`
	TopP          float32  `yaml:"top_p,omitempty"`
	TopK          int      `yaml:"top_k,omitempty"`
	StopSequences []string `yaml:"stop_sequences,omitempty"`
}

// MemorySettings configures the command memory store and its embedder.
type MemorySettings struct {
	Path      string            `yaml:"path"`
	Embedding EmbeddingSettings `yaml:"embedding"`
}

// EmbeddingSettings selects the engine that turns queries into vectors.
// Provider is one of "local", "ollama", "openai", "gemini".
type EmbeddingSettings struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model,omitempty"`
	Endpoint   string `yaml:"endpoint,omitempty"`
	APIKeyEnv  string `yaml:"api_key_env,omitempty"`
	Dimensions int    `yaml:"dimensions,omitempty"`
	Cache      bool   `yaml:"cache"`
}

// MetadataSettings toggles optional metadata groups ("auto", "always", "never").
type MetadataSettings struct {
	IncludeGit     string `yaml:"include_git"`
	IncludeDocker  string `yaml:"include_docker"`
	IncludeGPU     string `yaml:"include_gpu"`
	CommandTimeout string `yaml:"command_timeout"`
}
