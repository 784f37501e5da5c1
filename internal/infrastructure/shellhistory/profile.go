package shellhistory

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/doeshing/termind/internal/domain"
)

// Environment is the slice of process state needed to locate a history file.
type Environment struct {
	GOOS   string
	Home   string
	Getenv func(string) string
}

// CurrentEnvironment reads the running process environment.
func CurrentEnvironment() Environment {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Environment{GOOS: runtime.GOOS, Home: home, Getenv: os.Getenv}
}

func (e Environment) get(key string) string {
	if e.Getenv == nil {
		return ""
	}
	return strings.TrimSpace(e.Getenv(key))
}

// ResolveProfile picks the shell, history file and grammar for env.
func ResolveProfile(env Environment) domain.ShellProfile {
	if env.GOOS == "windows" {
		return powerShellProfile(env)
	}

	shell := filepath.Base(env.get("SHELL"))
	switch {
	case strings.Contains(shell, "zsh"):
		return domain.ShellProfile{
			Kind:        domain.ShellZsh,
			HistoryPath: histfileOr(env, filepath.Join(env.Home, ".zsh_history")),
			Format:      domain.HistoryTimestamped,
		}
	case strings.Contains(shell, "bash"):
		return domain.ShellProfile{
			Kind:        domain.ShellBash,
			HistoryPath: histfileOr(env, filepath.Join(env.Home, ".bash_history")),
			Format:      domain.HistoryPlain,
		}
	case strings.Contains(shell, "fish"):
		dataHome := env.get("XDG_DATA_HOME")
		if dataHome == "" {
			dataHome = filepath.Join(env.Home, ".local", "share")
		}
		return domain.ShellProfile{
			Kind:        domain.ShellFish,
			HistoryPath: filepath.Join(dataHome, "fish", "fish_history"),
			Format:      domain.HistoryStructured,
		}
	case strings.Contains(shell, "pwsh"):
		return powerShellProfile(env)
	default:
		return domain.ShellProfile{Kind: domain.ShellUnsupported}
	}
}

func powerShellProfile(env Environment) domain.ShellProfile {
	var path string
	if env.GOOS == "windows" {
		appData := env.get("APPDATA")
		if appData == "" {
			appData = filepath.Join(env.Home, "AppData", "Roaming")
		}
		path = filepath.Join(appData, "Microsoft", "Windows", "PowerShell", "PSReadLine", "ConsoleHost_history.txt")
	} else {
		path = filepath.Join(env.Home, ".local", "share", "powershell", "PSReadLine", "ConsoleHost_history.txt")
	}
	return domain.ShellProfile{
		Kind:        domain.ShellPowerShell,
		HistoryPath: path,
		Format:      domain.HistoryPlain,
	}
}

func histfileOr(env Environment, fallback string) string {
	if custom := env.get("HISTFILE"); custom != "" {
		if strings.HasPrefix(custom, "~/") {
			return filepath.Join(env.Home, custom[2:])
		}
		return custom
	}
	return fallback
}
