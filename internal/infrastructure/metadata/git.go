package metadata

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/doeshing/termind/internal/domain"
)

const gitDateLayout = "2006-01-02 15:04:05 UTC"

// gitInfo returns empty info (not an error) outside a repository.
func (c *Collector) gitInfo(ctx context.Context, dir string, timeout time.Duration) (*domain.GitInfo, error) {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return &domain.GitInfo{}, nil
	}

	git := func(args ...string) (string, error) {
		out, err := c.runCmd(ctx, timeout, dir, "git", args...)
		if err != nil {
			return "", domain.MetadataUnavailable(domain.MetadataGit, err)
		}
		return out, nil
	}

	info := &domain.GitInfo{}
	var err error
	if info.SHA, err = git("rev-parse", "HEAD"); err != nil {
		return nil, err
	}
	if info.LatestCommitAuthor, err = git("log", "-1", "--pretty=%an"); err != nil {
		return nil, err
	}
	if info.LatestCommitMessage, err = git("log", "-1", "--pretty=%B"); err != nil {
		return nil, err
	}
	stamp, err := git("log", "-1", "--pretty=%ct")
	if err != nil {
		return nil, err
	}
	if epoch, perr := strconv.ParseInt(stamp, 10, 64); perr == nil {
		info.LatestCommitDate = time.Unix(epoch, 0).UTC().Format(gitDateLayout)
	}
	if info.CurrentBranch, err = git("rev-parse", "--abbrev-ref", "HEAD"); err != nil {
		return nil, err
	}
	remotes, err := git("remote", "-v")
	if err != nil {
		return nil, err
	}
	info.Remotes = parseRemotes(remotes)
	return info, nil
}

// parseRemotes folds `git remote -v` output into one entry per remote, in
// first-seen order.
func parseRemotes(output string) []domain.GitRemote {
	var remotes []domain.GitRemote
	index := map[string]int{}
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		name, url, kind := fields[0], fields[1], fields[2]
		i, ok := index[name]
		if !ok {
			i = len(remotes)
			index[name] = i
			remotes = append(remotes, domain.GitRemote{Name: name})
		}
		switch kind {
		case "(fetch)":
			remotes[i].FetchURL = url
		case "(push)":
			remotes[i].PushURL = url
		}
	}
	return remotes
}
