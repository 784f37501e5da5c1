package domain

import "time"

// ShellKind enumerates shells whose history files can be ingested.
type ShellKind string

const (
	ShellBash        ShellKind = "bash"
	ShellZsh         ShellKind = "zsh"
	ShellFish        ShellKind = "fish"
	ShellPowerShell  ShellKind = "powershell"
	ShellUnsupported ShellKind = "unsupported"
)

// HistoryFormat identifies the on-disk grammar of a history file.
type HistoryFormat string

const (
	// HistoryPlain stores one command per line without timestamps (bash, PowerShell).
	HistoryPlain HistoryFormat = "plain"
	// HistoryTimestamped stores ": <epoch>:<duration>;<command>" lines (zsh extended history).
	HistoryTimestamped HistoryFormat = "timestamped"
	// HistoryStructured stores "- cmd:" / "when:" pairs (fish).
	HistoryStructured HistoryFormat = "structured"
)

// ShellProfile is resolved once per session from the user's environment.
type ShellProfile struct {
	Kind        ShellKind
	HistoryPath string
	Format      HistoryFormat
}

// Supported reports whether the profile points at a readable history grammar.
func (p ShellProfile) Supported() bool {
	return p.Kind != ShellUnsupported && p.Kind != "" && p.HistoryPath != ""
}

// CommandEvent is one decoded shell-command entry. Timestamp is nil when the
// history format does not record execution time.
type CommandEvent struct {
	Command   string
	Timestamp *time.Time
}

// HasTimestamp reports whether the event carries an execution time.
func (e CommandEvent) HasTimestamp() bool {
	return e.Timestamp != nil
}
