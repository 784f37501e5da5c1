package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/termind/internal/app"
	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// Execute builds the container, runs the root command and releases the
// container whether or not the command succeeded.
func Execute(ctx context.Context, opts Options) error {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return err
	}
	defer container.Close()

	return NewRootCmd(container, opts).ExecuteContext(ctx)
}

// NewRootCmd wires the cobra root command. Running it without a subcommand
// generates a command from the arguments.
func NewRootCmd(container *app.Container, opts Options) *cobra.Command {
	var printOnly bool
	verbose := opts.Verbose

	root := &cobra.Command{
		Use:   "termind [request...]",
		Short: "termind - natural language to shell commands",
		Long: "termind turns a request into a shell command using your shell history,\n" +
			"environment metadata and previously accepted commands.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			attachSession(container, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runGenerate(cmd, container, strings.Join(args, " "), printOnly)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return container.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Flags().BoolVarP(&printOnly, "print", "p", false, "Only print the generated command")
	root.PersistentFlags().BoolVar(&verbose, "verbose", opts.Verbose, "Enable debug logging on stderr")

	root.AddCommand(
		commands.NewGuessCommand(container),
		commands.NewDescribeCommand(container),
		commands.NewMemoryCommand(container),
		commands.NewHistoryCommand(container),
		commands.NewConfigCommand(container),
		commands.NewDoctorCommand(container),
		commands.NewVersionCommand(),
	)
	return root
}

// attachSession binds the terminal-facing adapters to the query service.
func attachSession(container *app.Container, in io.Reader, out, errOut io.Writer) {
	container.QueryService.Prompter = NewPrompter(in, out)
	container.QueryService.Presenter = NewRenderer(out, errOut)
	container.QueryService.Clipboard = NewClipboard()
}

func runGenerate(cmd *cobra.Command, container *app.Container, text string, printOnly bool) error {
	resp, err := container.QueryService.Run(cmd.Context(), domain.GenerateRequest{
		Text:      text,
		PrintOnly: printOnly,
	})
	if err != nil {
		return err
	}
	if printOnly {
		fmt.Fprintln(cmd.OutOrStdout(), resp.Command)
	}
	return nil
}
