package doctor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/ports"
)

const sampleText = "list files in the current directory"

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider  ports.ConfigProvider
	ProviderFactory ports.ProviderFactory
	History         ports.HistorySource
	Metadata        ports.MetadataCollector
	Memory          ports.MemoryStore
	// MemoryErr is the error from opening the store, if any.
	MemoryErr      error
	Embedder       ports.Embedder
	EmbeddingCache ports.EmbeddingCache
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("%s (format %s)", s.ConfigProvider.Path(), cfg.ConfigFormatVersion)))

	checks = append(checks, s.providerCheck(cfg))
	checks = append(checks, s.memoryCheck(ctx, cfg))
	checks = append(checks, s.embedderCheck(ctx))
	if s.EmbeddingCache != nil {
		checks = append(checks, s.cacheCheck())
	}
	checks = append(checks, s.historyCheck())
	checks = append(checks, s.metadataChecks(ctx, cfg)...)

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) providerCheck(cfg domain.Config) domain.HealthCheck {
	platform := cfg.ActivePlatform()
	if s.ProviderFactory == nil {
		return warn("Model provider", "provider factory not initialized")
	}
	provider, err := s.ProviderFactory.ForConfig(cfg)
	if err != nil {
		return fail("Model provider", err.Error())
	}
	if provider.Name() == "heuristic" {
		return warn("Model provider", fmt.Sprintf("%s has no API key; set %s", platform, cfg.Provider(platform).APIKeyEnv))
	}
	return ok("Model provider", fmt.Sprintf("%s (%s)", provider.Name(), provider.Model()))
}

func (s *Service) memoryCheck(ctx context.Context, cfg domain.Config) domain.HealthCheck {
	if s.MemoryErr != nil {
		if errors.Is(s.MemoryErr, domain.ErrStoreCorrupt) {
			return fail("Memory store", fmt.Sprintf("%s is unreadable; remove it to start over: %v", cfg.Memory.Path, s.MemoryErr))
		}
		return fail("Memory store", s.MemoryErr.Error())
	}
	if s.Memory == nil {
		return warn("Memory store", "not initialized")
	}
	count, err := s.Memory.Count(ctx)
	if err != nil {
		return fail("Memory store", err.Error())
	}
	return ok("Memory store", fmt.Sprintf("%d/%d records in %s", count, cfg.GetStorageSize(), s.Memory.Path()))
}

func (s *Service) embedderCheck(ctx context.Context) domain.HealthCheck {
	if s.Embedder == nil {
		return warn("Embedder", "not initialized")
	}
	vec, err := s.Embedder.Embed(ctx, sampleText)
	if err != nil {
		return warn("Embedder", fmt.Sprintf("%s: %v", s.Embedder.Name(), err))
	}
	return ok("Embedder", fmt.Sprintf("%s (%d dimensions)", s.Embedder.Name(), len(vec)))
}

func (s *Service) cacheCheck() domain.HealthCheck {
	n, err := s.EmbeddingCache.Len()
	if err != nil {
		return warn("Embedding cache", err.Error())
	}
	return ok("Embedding cache", fmt.Sprintf("%d vectors in %s", n, s.EmbeddingCache.Dir()))
}

func (s *Service) historyCheck() domain.HealthCheck {
	if s.History == nil {
		return warn("Shell history", "not initialized")
	}
	profile := s.History.Profile()
	events, err := s.History.Events(profile)
	if err != nil {
		return warn("Shell history", err.Error())
	}
	count := 0
	for range events {
		count++
	}
	return ok("Shell history", fmt.Sprintf("%s, %s format, %d commands in %s", profile.Kind, profile.Format, count, profile.HistoryPath))
}

func (s *Service) metadataChecks(ctx context.Context, cfg domain.Config) []domain.HealthCheck {
	if s.Metadata == nil {
		return []domain.HealthCheck{warn("Metadata", "collector not initialized")}
	}
	meta := s.Metadata.Collect(ctx, cfg.Metadata)

	collected := []string{string(domain.MetadataSystem), string(domain.MetadataPath), string(domain.MetadataFiles)}
	if meta.Git.IsRepository() {
		collected = append(collected, string(domain.MetadataGit))
	}
	if meta.Docker != nil {
		collected = append(collected, string(domain.MetadataDocker))
	}
	if meta.GPU != nil && meta.GPU.ModelName != "" {
		collected = append(collected, string(domain.MetadataGPU))
	}
	collected = lo.Reject(collected, func(kind string, _ int) bool {
		return meta.Failed(domain.MetadataKind(kind))
	})

	checks := []domain.HealthCheck{ok("Metadata", "collected: "+strings.Join(collected, ", "))}

	kinds := lo.Keys(meta.Unavailable)
	slices.Sort(kinds)
	for _, kind := range kinds {
		checks = append(checks, warn("Metadata "+string(kind), meta.Unavailable[kind].Error()))
	}
	return checks
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
