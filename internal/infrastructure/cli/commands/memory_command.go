package commands

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/termind/internal/app"
	"github.com/doeshing/termind/internal/domain"
)

// NewMemoryCommand creates the memory command. Without a subcommand it lists
// the records, and --clear behaves like 'memory clear'.
func NewMemoryCommand(container *app.Container) *cobra.Command {
	var (
		limit int
		wipe  bool
		yes   bool
	)

	memoryCmd := &cobra.Command{
		Use:     "memory",
		Aliases: []string{"rag"},
		Short:   "Inspect remembered commands",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if wipe {
				return clearMemory(cmd, container, yes)
			}
			return listMemory(cmd, container, limit)
		},
	}

	memoryCmd.Flags().IntVar(&limit, "limit", 0, "Max records to show (0 shows all)")
	memoryCmd.Flags().BoolVar(&wipe, "clear", false, "Delete every remembered command")
	memoryCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation when clearing")

	memoryCmd.AddCommand(
		newMemoryListCommand(container),
		newMemoryClearCommand(container),
	)

	return memoryCmd
}

// newMemoryListCommand creates the 'memory list' subcommand
func newMemoryListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List remembered commands, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listMemory(cmd, container, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Max records to show (0 shows all)")
	return cmd
}

func listMemory(cmd *cobra.Command, container *app.Container, limit int) error {
	store, err := container.RequireMemory()
	if err != nil {
		return err
	}
	records, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	displayMemoryRecords(cmd.OutOrStdout(), records, limit)
	return nil
}

// newMemoryClearCommand creates the 'memory clear' subcommand
func newMemoryClearCommand(container *app.Container) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every remembered command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return clearMemory(cmd, container, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

// clearMemory deletes every record and the cached vectors computed for them.
func clearMemory(cmd *cobra.Command, container *app.Container, yes bool) error {
	store, err := container.RequireMemory()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if !yes {
		count, err := store.Count(cmd.Context())
		if err != nil {
			return err
		}
		if count == 0 {
			fmt.Fprintln(out, MsgMemoryEmpty)
			return nil
		}
		prompter := container.QueryService.Prompter
		if !interactive(prompter) {
			return errors.New(ErrNotInteractive)
		}
		ok, err := prompter.Confirm(fmt.Sprintf("Delete %d remembered commands from %s?", count, store.Path()))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, MsgClearCancelled)
			return nil
		}
	}

	if err := store.Clear(cmd.Context()); err != nil {
		return err
	}
	if container.EmbeddingCache != nil {
		if err := container.EmbeddingCache.Clear(); err != nil {
			return fmt.Errorf("clear embedding cache: %w", err)
		}
	}
	fmt.Fprintln(out, MsgMemoryCleared)
	return nil
}

// displayMemoryRecords prints records newest first with their creation time
// and relative age.
func displayMemoryRecords(out io.Writer, records []domain.MemoryRecord, limit int) {
	if len(records) == 0 {
		fmt.Fprintln(out, MsgMemoryEmpty)
		return
	}
	records = slices.Clone(records)
	slices.Reverse(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	styles := lipgloss.NewRenderer(out)
	date := styles.NewStyle().Foreground(lipgloss.Color("#6C7A89"))
	command := styles.NewStyle().Foreground(lipgloss.Color("#AF87FF"))

	for _, record := range records {
		created := record.CreatedAt.Local().Format(domain.HistoryDateLayout)
		fmt.Fprintf(out, "%s %s\n", date.Render(created), date.Render("("+humanize.Time(record.CreatedAt)+")"))
		fmt.Fprintf(out, "  Query:    %s\n", record.Query)
		fmt.Fprintf(out, "  Response: %s\n", command.Render(record.Response))
	}
}
