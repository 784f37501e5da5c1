package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/termind/internal/app"
)

// NewDescribeCommand creates the describe command
func NewDescribeCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <command...>",
		Short: "Explain what a shell command does",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, err := container.QueryService.Describe(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), description)
			return nil
		},
	}
}
