package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/ports"
)

// heuristicProvider answers offline when the platform has no credentials.
type heuristicProvider struct {
	platform domain.Platform
	model    string
}

func newHeuristicProvider(platform domain.Platform, model string) ports.Provider {
	return &heuristicProvider{platform: platform, model: model}
}

func (p *heuristicProvider) Name() string {
	return "heuristic"
}

func (p *heuristicProvider) Model() string {
	return p.model
}

func (p *heuristicProvider) Generate(_ context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	command := guessCommand(req.Intent)
	return ports.ProviderResponse{
		Command: command,
		Reply: fmt.Sprintf("Offline suggestion: no API key configured for %s (set %s).",
			p.platform, p.platform.DefaultAPIKeyEnv()),
	}, nil
}

func guessCommand(prompt string) string {
	prompt = strings.ToLower(prompt)
	switch {
	case strings.Contains(prompt, "docker"):
		return "docker ps"
	case strings.Contains(prompt, "git status"):
		return "git status"
	case strings.Contains(prompt, "disk") || strings.Contains(prompt, "space"):
		return "df -h"
	case strings.Contains(prompt, "list") && strings.Contains(prompt, "file"):
		return "ls -la"
	case strings.Contains(prompt, "kubernetes") || strings.Contains(prompt, "pod"):
		return "kubectl get pods"
	case strings.Contains(prompt, "process"):
		return "ps aux"
	default:
		return ""
	}
}
