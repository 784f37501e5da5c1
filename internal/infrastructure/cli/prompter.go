package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/doeshing/termind/internal/ports"
)

// Prompter implements ports.ActionPrompter using stdin/stdout.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter constructs a prompter referencing stdio. It is enabled when in
// is a terminal, or when in is not a file at all (scripted input).
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	interactive := true
	if f, ok := in.(*os.File); ok {
		interactive = isTerminal(f)
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// Enabled reports whether questions can be answered.
func (p *Prompter) Enabled() bool {
	return p.interactive
}

// Choose lists options and reads a number or an option name. An empty answer
// picks the first option.
func (p *Prompter) Choose(question string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("no options to choose from")
	}
	fmt.Fprintf(p.out, "%s:\n", question)
	for i, option := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, option)
	}
	for {
		fmt.Fprint(p.out, "> ")
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		if line == "" {
			return 0, nil
		}
		if idx, ok := matchOption(line, options); ok {
			return idx, nil
		}
		fmt.Fprintf(p.out, "enter 1-%d\n", len(options))
	}
}

// Ask reads a free-form answer.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", question)
	return p.readLine()
}

// Confirm asks a yes/no question; anything but y/yes is no.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	line = strings.ToLower(line)
	return line == "y" || line == "yes", nil
}

// readLine returns the trimmed line. A final line without a newline is
// accepted; EOF before any input is an error.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func matchOption(answer string, options []string) (int, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(options) {
			return n - 1, true
		}
		return 0, false
	}
	for i, option := range options {
		if strings.EqualFold(option, answer) {
			return i, true
		}
	}
	match := -1
	for i, option := range options {
		if strings.HasPrefix(strings.ToLower(option), strings.ToLower(answer)) {
			if match >= 0 {
				return 0, false
			}
			match = i
		}
	}
	return match, match >= 0
}

var _ ports.ActionPrompter = (*Prompter)(nil)
