package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/doeshing/termind/internal/app"
	"github.com/doeshing/termind/internal/domain"
)

var statusColors = map[domain.HealthStatus]lipgloss.Color{
	domain.HealthOK:    lipgloss.Color("#2CD7C7"),
	domain.HealthWarn:  lipgloss.Color("#F4D03F"),
	domain.HealthError: lipgloss.Color("#E74C3C"),
}

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose config, memory, history and metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctorDiagnostics(cmd, cmd.OutOrStdout(), container)
		},
	}
}

// runDoctorDiagnostics runs environment diagnostics
func runDoctorDiagnostics(cmd *cobra.Command, out io.Writer, container *app.Container) error {
	if container.DoctorService == nil {
		return errors.New(ErrDoctorServiceUnavailable)
	}

	report, err := container.DoctorService.Run(cmd.Context())

	// Display report even if there were errors
	displayDoctorReport(out, report)

	if err != nil {
		return fmt.Errorf("diagnostics completed with errors: %w", err)
	}
	if !report.Healthy() {
		return errors.New("one or more checks failed")
	}
	return nil
}

// displayDoctorReport displays the health check report
func displayDoctorReport(out io.Writer, report domain.HealthReport) {
	styles := lipgloss.NewRenderer(out)
	for _, check := range report.Checks {
		status := styles.NewStyle().
			Foreground(statusColors[check.Status]).
			Render(fmt.Sprintf("[%s]", strings.ToUpper(string(check.Status))))
		fmt.Fprintf(out, "%s %s - %s\n", status, check.Name, check.Details)
	}
	if len(report.Checks) > 0 {
		fmt.Fprintln(out, report.Summary())
	}
}
