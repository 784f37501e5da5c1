package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/doeshing/termind/internal/application/doctor"
	"github.com/doeshing/termind/internal/application/query"
	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/infrastructure/ai"
	"github.com/doeshing/termind/internal/infrastructure/cache"
	"github.com/doeshing/termind/internal/infrastructure/config"
	"github.com/doeshing/termind/internal/infrastructure/embedding"
	"github.com/doeshing/termind/internal/infrastructure/executor"
	"github.com/doeshing/termind/internal/infrastructure/memory"
	"github.com/doeshing/termind/internal/infrastructure/metadata"
	"github.com/doeshing/termind/internal/infrastructure/shellhistory"
	"github.com/doeshing/termind/internal/pkg/filesystem"
	"github.com/doeshing/termind/internal/pkg/logger"
	"github.com/doeshing/termind/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         *logger.ZapLogger
	History        ports.HistorySource
	Embedder       ports.Embedder
	EmbeddingCache ports.EmbeddingCache
	// Memory is nil when the store could not be opened; MemoryErr says why.
	Memory    ports.MemoryStore
	MemoryErr error

	QueryService  *query.Service
	DoctorService *doctor.Service

	closeOnce sync.Once
	closeErr  error
}

// BuildContainer constructs the dependency graph. The memory handle is opened
// here and released by Close.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	log, err := logger.New(verbose)
	if err != nil {
		return nil, err
	}

	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		History:        shellhistory.NewFileSource(shellhistory.ResolveProfile(shellhistory.CurrentEnvironment())),
	}

	vectors := cache.NewFileCache(filepath.Join(filesystem.StateDir(), "cache", "embeddings"), domain.DefaultEmbeddingCacheEntries)
	c.EmbeddingCache = vectors
	c.Embedder, err = embedding.NewEngine(cfg.Memory.Embedding, vectors, log)
	if err != nil {
		c.MemoryErr = err
	} else {
		store, err := memory.Open(ctx, cfg.Memory.Path, c.Embedder)
		if err != nil {
			c.MemoryErr = err
		} else {
			c.Memory = store
		}
	}
	if c.MemoryErr != nil {
		log.Warn("memory disabled", map[string]interface{}{
			"path":  cfg.Memory.Path,
			"error": c.MemoryErr.Error(),
		})
	}

	collector := metadata.NewCollector(log)
	factory := ai.NewFactory()

	c.QueryService = &query.Service{
		ConfigProvider:  cfgLoader,
		History:         c.History,
		Metadata:        collector,
		Memory:          c.Memory,
		ProviderFactory: factory,
		Executor:        executor.NewLocalExecutor(),
		Logger:          log,
	}

	c.DoctorService = &doctor.Service{
		ConfigProvider:  cfgLoader,
		ProviderFactory: factory,
		History:         c.History,
		Metadata:        collector,
		Memory:          c.Memory,
		MemoryErr:       c.MemoryErr,
		Embedder:        c.Embedder,
		EmbeddingCache:  c.EmbeddingCache,
	}

	return c, nil
}

// RequireMemory returns the open store or the reason it is unavailable.
func (c *Container) RequireMemory() (ports.MemoryStore, error) {
	if c.Memory != nil {
		return c.Memory, nil
	}
	if c.MemoryErr != nil {
		return nil, c.MemoryErr
	}
	return nil, errors.New("memory store not initialized")
}

// Close releases the memory handle and flushes the logger. It is safe to call
// more than once.
func (c *Container) Close() error {
	c.closeOnce.Do(func() {
		if c.Memory != nil {
			c.closeErr = c.Memory.Close()
		}
		if c.Logger != nil {
			c.Logger.Sync()
		}
	})
	return c.closeErr
}
