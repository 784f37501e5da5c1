package metadata

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/doeshing/termind/internal/domain"
)

func (c *Collector) systemInfo() (domain.SystemInfo, error) {
	info := domain.SystemInfo{
		Architecture: runtime.GOARCH,
		Cores:        runtime.NumCPU(),
	}
	info.Hostname, _ = os.Hostname()

	uts, err := uname()
	if err != nil {
		info.Platform = platformName(runtime.GOOS)
		return info, domain.MetadataUnavailable(domain.MetadataSystem, err)
	}
	info.Platform = uts.sysname
	info.Release = uts.release
	info.Version = uts.version
	if uts.machine != "" {
		info.Architecture = uts.machine
	}
	return info, nil
}

type unameResult struct {
	sysname string
	release string
	version string
	machine string
}

// platformName mirrors uname's sysname capitalization for GOOS values.
func platformName(goos string) string {
	switch goos {
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	case "":
		return ""
	default:
		return strings.ToUpper(goos[:1]) + goos[1:]
	}
}

func (c *Collector) pathInfo(wd string) (domain.PathInfo, error) {
	info := domain.PathInfo{CurrentDirectory: wd}
	if u, err := user.Current(); err == nil {
		info.User = u.Username
		info.HomeDirectory = u.HomeDir
	} else {
		info.User = c.getenv("USER")
	}
	if info.HomeDirectory == "" {
		info.HomeDirectory, _ = os.UserHomeDir()
	}
	info.ExecutableCommands = executablesOnPath(c.getenv("PATH"))
	return info, nil
}

// executablesOnPath lists the sorted, unique names of executables found in
// the PATH directories. Unreadable directories are skipped.
func executablesOnPath(pathList string) []string {
	var names []string
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if isExecutable(entry.Name(), info) {
				names = append(names, entry.Name())
			}
		}
	}
	names = lo.Uniq(names)
	slices.Sort(names)
	return names
}

func isExecutable(name string, info os.FileInfo) bool {
	if runtime.GOOS == "windows" {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".exe", ".bat", ".cmd", ".com", ".ps1":
			return true
		}
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

func listFiles(dir string) (domain.FileListing, error) {
	var listing domain.FileListing
	entries, err := os.ReadDir(dir)
	if err != nil {
		return listing, domain.MetadataUnavailable(domain.MetadataFiles, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		hidden := strings.HasPrefix(name, ".")
		switch {
		case hidden && entry.IsDir():
			listing.InvisibleDirectories = append(listing.InvisibleDirectories, name)
		case hidden:
			listing.InvisibleFiles = append(listing.InvisibleFiles, name)
		case entry.IsDir():
			listing.Directories = append(listing.Directories, name)
		default:
			listing.Files = append(listing.Files, name)
		}
	}
	return listing, nil
}
