package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/termind/internal/app"
	configinfra "github.com/doeshing/termind/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with all subcommands
func NewConfigCommand(container *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect termind configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, cmd.OutOrStdout(), container)
		},
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration with API keys masked",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfiguration(cmd, cmd.OutOrStdout(), container)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			RunE: func(cmd *cobra.Command, args []string) error {
				if container.ConfigLoader == nil {
					return errors.New(ErrConfigLoaderUnavailable)
				}
				fmt.Fprintln(cmd.OutOrStdout(), container.ConfigLoader.Path())
				return nil
			},
		},
	)

	return configCmd
}

// showConfiguration reloads the file so edits made since startup are shown.
func showConfiguration(cmd *cobra.Command, out io.Writer, container *app.Container) error {
	if container.ConfigLoader == nil {
		return errors.New(ErrConfigLoaderUnavailable)
	}
	cfg, err := container.ConfigLoader.Load(cmd.Context())
	if err != nil {
		return err
	}
	raw, err := configinfra.Marshal(configinfra.Redacted(cfg))
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	_, err = out.Write(raw)
	return err
}
