// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The application core (internal/application) depends only on these
// contracts; adapters in internal/infrastructure implement them and are wired
// together in internal/app.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., MemoryStore, Provider)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"
	"iter"

	"github.com/doeshing/termind/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.termind/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
	Path() string
}

// HistorySource decodes the user's shell history file.
type HistorySource interface {
	// Profile is resolved once per session from SHELL and the platform.
	Profile() domain.ShellProfile
	// Events re-reads the history file and yields most-recent-first.
	// A missing file or unsupported shell returns domain.ErrHistoryUnavailable.
	Events(domain.ShellProfile) (iter.Seq[domain.CommandEvent], error)
}

// MetadataCollector snapshots the user's environment. It never fails as a
// whole; per-group failures are reported in Metadata.Unavailable.
type MetadataCollector interface {
	Collect(context.Context, domain.MetadataSettings) domain.Metadata
}

// Embedder turns text into a fixed-size vector.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// MemoryStore is the bounded, similarity-searchable log of accepted
// (request, command) pairs.
type MemoryStore interface {
	// Add embeds query and appends a record. An empty response is a no-op
	// and returns false.
	Add(ctx context.Context, query, response string) (domain.MemoryRecord, bool, error)
	// Query ranks records by ascending embedding distance to text.
	Query(ctx context.Context, text string, n int) ([]domain.MemoryMatch, error)
	Count(ctx context.Context) (int, error)
	// List returns every record oldest first.
	List(ctx context.Context) ([]domain.MemoryRecord, error)
	// Evict removes the oldest records until at most maxSize remain.
	Evict(ctx context.Context, maxSize int) (int, error)
	Clear(ctx context.Context) error
	// Path is the backing database file.
	Path() string
	Close() error
}

// EmbeddingCache holds computed vectors on disk, keyed by engine and text.
type EmbeddingCache interface {
	Dir() string
	Len() (int, error)
	Clear() error
}

// ProviderFactory builds the single model adapter selected by configuration.
type ProviderFactory interface {
	ForConfig(domain.Config) (Provider, error)
}

// Provider wraps one language model service.
type Provider interface {
	Name() string
	Model() string
	Generate(context.Context, ProviderRequest) (ProviderResponse, error)
}

// ProviderRequest is an assembled prompt. Intent is the user's raw request,
// kept for adapters that cannot read the full prompt.
type ProviderRequest struct {
	System string
	User   string
	Intent string
}

// ProviderResponse holds the raw model reply and the shell command extracted
// from it (empty when none was found).
type ProviderResponse struct {
	Command string
	Reply   string
}

// CommandExecutor runs shell commands in the user's shell.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (domain.ExecutionResult, error)
}

// ActionPrompter asks the user interactive questions.
type ActionPrompter interface {
	// Choose returns the index of the selected option.
	Choose(question string, options []string) (int, error)
	Ask(question string) (string, error)
	Confirm(question string) (bool, error)
	Enabled() bool
}

// Presenter renders the interactive session to the user.
type Presenter interface {
	ShowCommand(command string)
	ShowText(text string)
	ShowWarning(message string)
	// Status shows a busy indicator until the returned stop func is called.
	Status(label string) (stop func())
}

// Clipboard provides cross-platform clipboard integration for copying commands.
type Clipboard interface {
	Copy(text string) error
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
