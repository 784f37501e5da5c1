package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/termind/internal/app"
	"github.com/doeshing/termind/internal/application/query"
	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/ports"
)

// intentAliases maps short --intent values onto the offered intents.
var intentAliases = map[string]int{
	"continue": 0,
	"fix":      1,
	"explore":  2,
}

// NewGuessCommand creates the guess command
func NewGuessCommand(container *app.Container) *cobra.Command {
	var intent string

	cmd := &cobra.Command{
		Use:   "guess [description...]",
		Short: "Suggest the next command from recent shell activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompter := container.QueryService.Prompter

			primary, err := resolveIntent(prompter, intent)
			if err != nil {
				return err
			}

			description := strings.Join(args, " ")
			if description == "" && interactive(prompter) {
				if description, err = prompter.Ask("Describe what you want to do (optional)"); err != nil {
					return err
				}
			}

			_, err = container.QueryService.Guess(cmd.Context(), domain.GuessRequest{
				Primary:     primary,
				Description: strings.TrimSpace(description),
			})
			return err
		},
	}

	cmd.Flags().StringVarP(&intent, "intent", "i", "", `Primary intent: "continue", "fix", "explore" or free text`)
	return cmd
}

// resolveIntent turns the flag into an intent, asking when it is empty and
// falling back to the first intent when nobody can answer.
func resolveIntent(prompter ports.ActionPrompter, flag string) (string, error) {
	flag = strings.TrimSpace(flag)
	if flag != "" {
		if idx, ok := intentAliases[strings.ToLower(flag)]; ok {
			return query.Intents[idx], nil
		}
		return flag, nil
	}
	if !interactive(prompter) {
		return query.Intents[0], nil
	}
	idx, err := prompter.Choose("Choose your primary intent", query.Intents)
	if err != nil {
		return "", err
	}
	return query.Intents[idx], nil
}

func interactive(prompter ports.ActionPrompter) bool {
	return prompter != nil && prompter.Enabled()
}
