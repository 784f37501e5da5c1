package commands

// Error messages
const (
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrConfigLoaderUnavailable  = "config loader unavailable"
	ErrNotInteractive           = "--yes is required when stdin is not a terminal"
)

// Success messages
const (
	MsgNoHistoryRecorded = "No shell history found."
	MsgMemoryEmpty       = "Memory is empty."
	MsgMemoryCleared     = "Memory cleared."
	MsgClearCancelled    = "Clear cancelled."
)

// DefaultHistoryLimit is the number of events `history` shows.
const DefaultHistoryLimit = 20
