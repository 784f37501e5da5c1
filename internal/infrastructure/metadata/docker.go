package metadata

import (
	"context"
	"strings"
	"time"

	"github.com/doeshing/termind/internal/domain"
)

const (
	containerFormat = "{{.ID}}\t{{.Image}}\t{{.Command}}\t{{.CreatedAt}}\t{{.Status}}\t{{.Names}}\t{{.Ports}}"
	imageFormat     = "{{.Repository}}\t{{.Tag}}\t{{.ID}}\t{{.CreatedSince}}\t{{.Size}}"
)

func (c *Collector) dockerInfo(ctx context.Context, timeout time.Duration) (*domain.DockerInfo, error) {
	containers, err := c.runCmd(ctx, timeout, "", "docker", "ps", "-a", "--format", containerFormat)
	if err != nil {
		return nil, domain.MetadataUnavailable(domain.MetadataDocker, err)
	}
	images, err := c.runCmd(ctx, timeout, "", "docker", "images", "--format", imageFormat)
	if err != nil {
		return nil, domain.MetadataUnavailable(domain.MetadataDocker, err)
	}

	info := &domain.DockerInfo{}
	for _, cols := range splitColumns(containers, 7) {
		info.Containers = append(info.Containers, domain.DockerContainer{
			ID:      cols[0],
			Image:   cols[1],
			Command: strings.Trim(cols[2], `"`),
			Created: cols[3],
			Status:  cols[4],
			Names:   cols[5],
			Ports:   cols[6],
		})
	}
	for _, cols := range splitColumns(images, 5) {
		info.Images = append(info.Images, domain.DockerImage{
			Repository: cols[0],
			Tag:        cols[1],
			ID:         cols[2],
			Created:    cols[3],
			Size:       cols[4],
		})
	}
	return info, nil
}

// splitColumns splits tab separated rows, padding short rows to width.
func splitColumns(output string, width int) [][]string {
	var rows [][]string
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		for len(cols) < width {
			cols = append(cols, "")
		}
		rows = append(rows, cols[:width])
	}
	return rows
}
