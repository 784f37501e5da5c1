package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/termind/internal/app"
	"github.com/doeshing/termind/internal/application/historyview"
)

type historyOptions struct {
	limit    int
	contains string
	fuzzy    string
}

// NewHistoryCommand creates the history command
func NewHistoryCommand(container *app.Container) *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the shell history block sent to the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(cmd.OutOrStdout(), container, opts)
		},
	}

	cmd.Flags().IntVar(&opts.limit, "limit", DefaultHistoryLimit, "Max entries to show")
	cmd.Flags().StringVar(&opts.contains, "contains", "", "Only show commands containing this text")
	cmd.Flags().StringVar(&opts.fuzzy, "fuzzy", "", "Only show commands fuzzily matching this pattern")
	return cmd
}

func showHistory(out io.Writer, container *app.Container, opts historyOptions) error {
	if opts.limit <= 0 {
		return errors.New("--limit must be > 0")
	}
	keep := historyview.And(
		historyview.Contains(opts.contains),
		historyview.Fuzzy(opts.fuzzy),
	)
	events := historyview.Select(historyview.Load(container.History, container.Logger), keep, opts.limit)
	if len(events) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}
	fmt.Fprint(out, historyview.Format(events))
	return nil
}
