package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/doeshing/termind/internal/ports"
)

var (
	colorCommand = lipgloss.Color("#AF87FF")
	colorWarning = lipgloss.Color("#F4D03F")
	colorMuted   = lipgloss.Color("#6C7A89")
)

// Renderer prints the interactive session. Commands and text go to out;
// warnings and the busy indicator go to errOut.
type Renderer struct {
	out      io.Writer
	errOut   io.Writer
	spinning bool

	command lipgloss.Style
	warning lipgloss.Style
	muted   lipgloss.Style
}

// NewRenderer styles output for the given writers. Colors are dropped when
// the writer is not a terminal.
func NewRenderer(out, errOut io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	outStyles := lipgloss.NewRenderer(out)
	errStyles := lipgloss.NewRenderer(errOut)
	return &Renderer{
		out:      out,
		errOut:   errOut,
		spinning: isTerminal(errOut),
		command:  outStyles.NewStyle().Foreground(colorCommand).Bold(true),
		warning:  errStyles.NewStyle().Foreground(colorWarning),
		muted:    errStyles.NewStyle().Foreground(colorMuted),
	}
}

// ShowCommand prints a generated command.
func (r *Renderer) ShowCommand(command string) {
	fmt.Fprintln(r.out, r.command.Render(command))
}

// ShowText prints free-form model output.
func (r *Renderer) ShowText(text string) {
	fmt.Fprintln(r.out, strings.TrimRight(text, "\n"))
}

// ShowWarning prints a non-fatal problem.
func (r *Renderer) ShowWarning(message string) {
	fmt.Fprintln(r.errOut, r.warning.Render("warning: "+message))
}

// Status animates a spinner next to label on terminals and is silent
// otherwise.
func (r *Renderer) Status(label string) func() {
	if !r.spinning {
		return func() {}
	}
	spinner := NewSpinner(r.errOut, r.muted.Render(label))
	spinner.Start()
	return spinner.Stop
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var _ ports.Presenter = (*Renderer)(nil)
