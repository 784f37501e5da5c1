package metadata

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/doeshing/termind/internal/domain"
)

var (
	cudaRelease = regexp.MustCompile(`release ([0-9]+\.[0-9]+)`)

	errMixedGPUs = errors.New("system is configured with different GPU models or driver versions")
)

// gpuInfo reads NVIDIA details. Missing tools leave the fields empty.
func (c *Collector) gpuInfo(ctx context.Context, timeout time.Duration) (*domain.GPUInfo, error) {
	info := &domain.GPUInfo{}

	if c.installed("nvidia-smi") {
		out, err := c.runCmd(ctx, timeout, "", "nvidia-smi", "--query-gpu=gpu_name,driver_version", "--format=csv,noheader")
		if err != nil {
			return nil, domain.MetadataUnavailable(domain.MetadataGPU, err)
		}
		for i, line := range strings.Split(out, "\n") {
			name, driver, ok := strings.Cut(line, ",")
			if !ok {
				continue
			}
			name, driver = strings.TrimSpace(name), strings.TrimSpace(driver)
			if i == 0 {
				info.ModelName, info.DriverVersion = name, driver
				continue
			}
			if name != info.ModelName || driver != info.DriverVersion {
				return nil, domain.MetadataUnavailable(domain.MetadataGPU, errMixedGPUs)
			}
		}
	}

	if c.installed("nvcc") {
		out, err := c.runCmd(ctx, timeout, "", "nvcc", "--version")
		if err != nil {
			return nil, domain.MetadataUnavailable(domain.MetadataGPU, err)
		}
		if m := cudaRelease.FindStringSubmatch(out); m != nil {
			info.CUDAVersion = m[1]
		}
	}

	return info, nil
}
