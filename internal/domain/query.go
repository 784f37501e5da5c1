package domain

// GenerateRequest captures a natural-language request from the CLI.
type GenerateRequest struct {
	Text      string
	PrintOnly bool
}

// GenerateResponse is the command chosen for a request. Execution is nil
// when the command was not run.
type GenerateResponse struct {
	Request   string
	Command   string
	Attempts  int
	Memory    []MemoryMatch
	Execution *ExecutionResult
	Saved     bool
}

// GuessRequest asks for the next command given the user's intent.
type GuessRequest struct {
	Primary     string
	Description string
}

// GuessResponse is the outcome of an interactive guess session.
type GuessResponse struct {
	Command     string
	Description string
	Execution   *ExecutionResult
	Saved       bool
}

// ExecutionResult wraps details from the command executor.
type ExecutionResult struct {
	Ran         bool
	ExitCode    int
	DurationMS  int64
	Interrupted bool
	Err         error
}

// Succeeded reports whether the run counts as accepted by the user. An
// interrupted run still counts.
func (r ExecutionResult) Succeeded() bool {
	if !r.Ran {
		return false
	}
	if r.Interrupted {
		return true
	}
	return r.Err == nil && r.ExitCode == 0
}

// RememberOutcome reports what happened when persisting an executed command.
type RememberOutcome struct {
	Stored  bool
	Evicted int
	Err     error
}
