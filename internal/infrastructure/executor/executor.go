// Package executor runs accepted commands in the user's shell, attached to
// the terminal.
package executor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/ports"
)

// LocalExecutor runs commands on the host shell.
type LocalExecutor struct {
	goos   string
	getenv func(string) string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	notify     func(chan<- os.Signal)
	stopNotify func(chan<- os.Signal)
}

// NewLocalExecutor builds an executor bound to the process's terminal.
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{
		goos:       runtime.GOOS,
		getenv:     os.Getenv,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		notify:     func(c chan<- os.Signal) { signal.Notify(c, os.Interrupt) },
		stopNotify: func(c chan<- os.Signal) { signal.Stop(c) },
	}
}

// Execute implements ports.CommandExecutor. Ctrl-C reaches the child through
// the terminal; this process survives it and reports the run as interrupted.
func (e *LocalExecutor) Execute(ctx context.Context, command string) (domain.ExecutionResult, error) {
	name, args := e.shellCommand(command)
	c := exec.CommandContext(ctx, name, args...)
	c.Stdin = e.stdin
	c.Stdout = e.stdout
	c.Stderr = e.stderr

	sigs := make(chan os.Signal, 1)
	e.notify(sigs)
	defer e.stopNotify(sigs)

	start := time.Now()
	err := c.Run()
	result := domain.ExecutionResult{
		DurationMS: time.Since(start).Milliseconds(),
	}

	select {
	case <-sigs:
		result.Interrupted = true
	default:
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.Ran = true
	case errors.As(err, &exitErr):
		result.Ran = true
		result.ExitCode = exitErr.ExitCode()
		result.Err = err
	default:
		result.Err = err
		return result, err
	}
	return result, nil
}

// shellCommand picks PowerShell when PSModulePath lists at least three
// module directories, cmd.exe otherwise on Windows, and $SHELL -c elsewhere.
func (e *LocalExecutor) shellCommand(command string) (string, []string) {
	if e.goos == "windows" {
		if len(strings.Split(e.getenv("PSModulePath"), ";")) >= 3 {
			return "powershell.exe", []string{"-Command", command}
		}
		return "cmd.exe", []string{"/c", command}
	}
	shell := e.getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return shell, []string{"-c", command}
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)
