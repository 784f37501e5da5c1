// Package metadata snapshots the user's environment for prompt assembly.
// Each group is collected independently; one failing group never hides the
// others.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/ports"
)

// commandRunner runs an external program and returns its stdout.
type commandRunner func(ctx context.Context, dir, name string, args ...string) (string, error)

// Collector implements ports.MetadataCollector.
type Collector struct {
	run      commandRunner
	lookPath func(string) (string, error)
	getwd    func() (string, error)
	getenv   func(string) string
	logger   ports.Logger
}

// NewCollector returns a collector that shells out to git, docker, nvidia-smi
// and nvcc.
func NewCollector(logger ports.Logger) *Collector {
	return &Collector{
		run:      execRunner,
		lookPath: exec.LookPath,
		getwd:    os.Getwd,
		getenv:   os.Getenv,
		logger:   logger,
	}
}

// Collect gathers every enabled group.
func (c *Collector) Collect(ctx context.Context, settings domain.MetadataSettings) domain.Metadata {
	meta := domain.Metadata{Unavailable: map[domain.MetadataKind]error{}}
	timeout := settings.Timeout()

	wd, err := c.getwd()
	if err != nil {
		wd = "."
	}

	var groupErr error
	meta.System, groupErr = c.systemInfo()
	c.record(&meta, domain.MetadataSystem, groupErr)

	meta.Path, groupErr = c.pathInfo(wd)
	c.record(&meta, domain.MetadataPath, groupErr)

	meta.Files, groupErr = listFiles(wd)
	c.record(&meta, domain.MetadataFiles, groupErr)

	if settings.GitEnabled() {
		meta.Git, groupErr = c.gitInfo(ctx, wd, timeout)
		c.record(&meta, domain.MetadataGit, groupErr)
	}

	if settings.DockerEnabled() && (domain.Forced(settings.IncludeDocker) || c.installed("docker")) {
		meta.Docker, groupErr = c.dockerInfo(ctx, timeout)
		c.record(&meta, domain.MetadataDocker, groupErr)
	}

	if settings.GPUEnabled() && (domain.Forced(settings.IncludeGPU) || c.installed("nvidia-smi") || c.installed("nvcc")) {
		meta.GPU, groupErr = c.gpuInfo(ctx, timeout)
		c.record(&meta, domain.MetadataGPU, groupErr)
	}

	return meta
}

func (c *Collector) record(meta *domain.Metadata, kind domain.MetadataKind, err error) {
	if err == nil {
		return
	}
	var unavailable *domain.MetadataUnavailableError
	if !errors.As(err, &unavailable) {
		unavailable = domain.MetadataUnavailable(kind, err)
	}
	meta.Unavailable[kind] = unavailable
	if c.logger != nil {
		c.logger.Debug("metadata group unavailable", map[string]interface{}{
			"group": string(kind),
			"error": err.Error(),
		})
	}
}

func (c *Collector) installed(name string) bool {
	_, err := c.lookPath(name)
	return err == nil
}

// runCmd applies the per-call timeout and trims the output.
func (c *Collector) runCmd(ctx context.Context, timeout time.Duration, dir, name string, args ...string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	out, err := c.run(cctx, dir, name, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func execRunner(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if stderr := strings.TrimSpace(string(exitErr.Stderr)); stderr != "" {
				return "", fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, stderr)
			}
		}
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return string(out), nil
}

var _ ports.MetadataCollector = (*Collector)(nil)
