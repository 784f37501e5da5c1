package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/termind/internal/application/historyview"
	"github.com/doeshing/termind/internal/application/prompt"
	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/ports"
)

// SelfName is the binary name. Generated commands must not invoke it.
const SelfName = "termind"

const (
	actionExecute = iota
	actionAbort
	actionDescribe
)

const (
	guessCopy = iota
	guessDescribe
	guessExecute
	guessRevise
)

var (
	generateActions = []string{"Execute", "Abort", "Describe"}
	guessActions    = []string{"Copy", "Describe", "Execute", "Revise"}

	// Intents are the primary intents offered by `termind guess`.
	Intents = []string{
		"Continue the current task",
		"Fix the previous command",
		"Explore something new",
	}
)

// Service orchestrates generate, guess and describe end-to-end.
type Service struct {
	ConfigProvider  ports.ConfigProvider
	History         ports.HistorySource
	Metadata        ports.MetadataCollector
	Memory          ports.MemoryStore // nil when the store could not be opened
	ProviderFactory ports.ProviderFactory
	Executor        ports.CommandExecutor
	Prompter        ports.ActionPrompter
	Presenter       ports.Presenter
	Clipboard       ports.Clipboard
	Logger          ports.Logger
}

func (s *Service) validate() error {
	if s.ConfigProvider == nil || s.ProviderFactory == nil || s.Metadata == nil ||
		s.Executor == nil || s.Logger == nil {
		return errors.New("query.Service dependencies not satisfied")
	}
	return nil
}

func (s *Service) setup(ctx context.Context) (domain.Config, ports.Provider, error) {
	if err := s.validate(); err != nil {
		return domain.Config{}, nil, err
	}
	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	provider, err := s.ProviderFactory.ForConfig(cfg)
	if err != nil {
		return domain.Config{}, nil, fmt.Errorf("provider init: %w", err)
	}
	s.Logger.Debug("provider selected", map[string]interface{}{
		"provider": provider.Name(),
		"model":    provider.Model(),
	})
	return cfg, provider, nil
}

// Generate turns req.Text into a shell command without running it.
func (s *Service) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResponse, error) {
	cfg, provider, err := s.setup(ctx)
	if err != nil {
		return domain.GenerateResponse{}, err
	}
	return s.generate(ctx, cfg, provider, req.Text)
}

// Run is the interactive generate session: generate, then execute, abort or
// describe. Executed commands that succeed are persisted to memory. With
// PrintOnly the command is returned without prompting or persisting.
func (s *Service) Run(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResponse, error) {
	cfg, provider, err := s.setup(ctx)
	if err != nil {
		return domain.GenerateResponse{}, err
	}

	stop := s.status("Generating...")
	resp, err := s.generate(ctx, cfg, provider, req.Text)
	stop()
	if err != nil || req.PrintOnly {
		return resp, err
	}

	if cfg.General.ShowCommand || !cfg.General.AutoExecute {
		s.show(resp.Command)
	}

	if cfg.General.AutoExecute {
		resp.Execution, resp.Saved, err = s.execute(ctx, cfg, resp.Request, resp.Command)
		return resp, err
	}

	if !s.interactive() {
		return resp, nil
	}

	choice, err := s.Prompter.Choose("Choose your action", generateActions)
	if err != nil {
		return resp, fmt.Errorf("prompt: %w", err)
	}
	switch choice {
	case actionExecute:
		resp.Execution, resp.Saved, err = s.execute(ctx, cfg, resp.Request, resp.Command)
		return resp, err
	case actionDescribe:
		return resp, s.describe(ctx, provider, resp.Command)
	default:
		return resp, nil
	}
}

func (s *Service) generate(ctx context.Context, cfg domain.Config, provider ports.Provider, text string) (domain.GenerateResponse, error) {
	resp := domain.GenerateResponse{Request: text}
	resp.Memory = s.recall(ctx, text)
	history := s.history(cfg)
	meta := s.Metadata.Collect(ctx, cfg.Metadata)

	notSelf := historyview.ExcludeInvocationsOf(SelfName)
	request := text
	for attempt := 1; attempt <= domain.MaxGenerateAttempts; attempt++ {
		resp.Attempts = attempt

		payload, err := prompt.Commands(prompt.Input{
			Request:  request,
			History:  history,
			Metadata: meta,
			Memory:   resp.Memory,
		})
		if err != nil {
			return resp, err
		}

		out, err := provider.Generate(ctx, ports.ProviderRequest{
			System: payload.System,
			User:   payload.User,
			Intent: text,
		})
		if err != nil {
			return resp, fmt.Errorf("provider generate: %w", err)
		}

		command := strings.TrimSpace(out.Command)
		if command == "" {
			s.Logger.Debug("empty command from provider", map[string]interface{}{"attempt": attempt})
			continue
		}
		if !notSelf(domain.CommandEvent{Command: command}) {
			s.Logger.Debug("provider answered with a self invocation", map[string]interface{}{
				"attempt": attempt,
				"command": command,
			})
			request += ", do not use command " + SelfName + "."
			continue
		}
		resp.Command = command
		return resp, nil
	}
	return resp, domain.ErrNoCommand
}

// Describe asks the model to explain command.
func (s *Service) Describe(ctx context.Context, command string) (string, error) {
	_, provider, err := s.setup(ctx)
	if err != nil {
		return "", err
	}
	return s.explain(ctx, provider, command)
}

func (s *Service) explain(ctx context.Context, provider ports.Provider, command string) (string, error) {
	payload := prompt.Explain(command)
	out, err := provider.Generate(ctx, ports.ProviderRequest{
		System: payload.System,
		User:   payload.User,
		Intent: command,
	})
	if err != nil {
		return "", fmt.Errorf("provider describe: %w", err)
	}
	return strings.TrimSpace(out.Reply), nil
}

func (s *Service) describe(ctx context.Context, provider ports.Provider, command string) error {
	stop := s.status("Generating...")
	description, err := s.explain(ctx, provider, command)
	stop()
	if err != nil {
		return err
	}
	if s.Presenter != nil {
		s.Presenter.ShowText(description)
	}
	return nil
}

// Suggest returns the model's guess for the next command; "" means none.
func (s *Service) Suggest(ctx context.Context, req domain.GuessRequest) (string, error) {
	cfg, provider, err := s.setup(ctx)
	if err != nil {
		return "", err
	}
	return s.suggest(ctx, cfg, provider, req)
}

func (s *Service) suggest(ctx context.Context, cfg domain.Config, provider ports.Provider, req domain.GuessRequest) (string, error) {
	payload, err := prompt.Suggestions(prompt.Input{
		Primary:  req.Primary,
		Request:  req.Description,
		History:  s.history(cfg),
		Metadata: s.Metadata.Collect(ctx, cfg.Metadata),
		Memory:   s.recall(ctx, guessQuery(req)),
	})
	if err != nil {
		return "", err
	}
	out, err := provider.Generate(ctx, ports.ProviderRequest{
		System: payload.System,
		User:   payload.User,
		Intent: guessQuery(req),
	})
	if err != nil {
		return "", fmt.Errorf("provider suggest: %w", err)
	}
	return strings.TrimSpace(out.Command), nil
}

// Guess is the interactive suggestion session: Copy, Describe, Execute, or
// Revise (which appends the revision to the description and asks again).
func (s *Service) Guess(ctx context.Context, req domain.GuessRequest) (domain.GuessResponse, error) {
	cfg, provider, err := s.setup(ctx)
	if err != nil {
		return domain.GuessResponse{}, err
	}

	resp := domain.GuessResponse{Description: req.Description}
	stop := s.status("Guessing...")
	resp.Command, err = s.suggest(ctx, cfg, provider, req)
	stop()
	if err != nil {
		return resp, err
	}
	s.showSuggestion(resp.Command)

	if !s.interactive() {
		return resp, nil
	}

	for {
		choice := guessRevise
		if resp.Command != "" {
			if choice, err = s.Prompter.Choose("Choose your action", guessActions); err != nil {
				return resp, fmt.Errorf("prompt: %w", err)
			}
		}

		switch choice {
		case guessCopy:
			s.copy(resp.Command)
			return resp, nil
		case guessDescribe:
			return resp, s.describe(ctx, provider, resp.Command)
		case guessExecute:
			resp.Execution, resp.Saved, err = s.execute(ctx, cfg, guessQuery(req), resp.Command)
			return resp, err
		case guessRevise:
			revision, err := s.Prompter.Ask("Revise the suggestion")
			if err != nil {
				return resp, fmt.Errorf("prompt: %w", err)
			}
			revision = strings.TrimSpace(revision)
			if revision == "" {
				return resp, nil
			}
			req.Description += " Revised Command: " + revision
			resp.Description = req.Description

			stop := s.status("Guessing...")
			resp.Command, err = s.suggest(ctx, cfg, provider, req)
			stop()
			if err != nil {
				return resp, err
			}
			s.showSuggestion(resp.Command)
		default:
			return resp, nil
		}
	}
}

func guessQuery(req domain.GuessRequest) string {
	if d := strings.TrimSpace(req.Description); d != "" {
		return d
	}
	return strings.TrimSpace(req.Primary)
}

// execute runs command and persists (query, command) when the run counts as
// accepted. A memory failure is shown as a warning; the run result stands.
func (s *Service) execute(ctx context.Context, cfg domain.Config, query, command string) (*domain.ExecutionResult, bool, error) {
	result, err := s.Executor.Execute(ctx, command)
	if err != nil {
		return &result, false, fmt.Errorf("execute: %w", err)
	}
	if !result.Succeeded() {
		s.Logger.Debug("command not saved", map[string]interface{}{
			"exit_code": result.ExitCode,
		})
		return &result, false, nil
	}

	outcome := s.Remember(ctx, cfg, query, command)
	if outcome.Err != nil && s.Presenter != nil {
		s.Presenter.ShowWarning(fmt.Sprintf("command not saved to memory: %v", outcome.Err))
	}
	return &result, outcome.Stored, nil
}

// Remember inserts (query, command) and evicts down to general.storage_size.
func (s *Service) Remember(ctx context.Context, cfg domain.Config, query, command string) domain.RememberOutcome {
	if s.Memory == nil {
		return domain.RememberOutcome{}
	}
	_, stored, err := s.Memory.Add(ctx, query, command)
	if err != nil {
		s.Logger.Warn("memory insert failed", map[string]interface{}{"error": err.Error()})
		return domain.RememberOutcome{Err: err}
	}
	if !stored {
		return domain.RememberOutcome{}
	}

	evicted, err := s.Memory.Evict(ctx, cfg.GetStorageSize())
	if err != nil {
		s.Logger.Warn("memory eviction failed", map[string]interface{}{"error": err.Error()})
		return domain.RememberOutcome{Stored: true, Err: err}
	}
	if evicted > 0 {
		s.Logger.Debug("memory evicted", map[string]interface{}{"count": evicted})
	}
	return domain.RememberOutcome{Stored: true, Evicted: evicted}
}

// recall returns similar past requests; failures only disable memory for
// this prompt.
func (s *Service) recall(ctx context.Context, text string) []domain.MemoryMatch {
	if s.Memory == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	matches, err := s.Memory.Query(ctx, text, domain.DefaultMemoryResults)
	if err != nil {
		s.Logger.Warn("memory query failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return matches
}

func (s *Service) history(cfg domain.Config) string {
	events := historyview.Empty()
	if s.History != nil {
		events = historyview.Load(s.History, s.Logger)
	}
	return historyview.Normalize(events, historyview.ExcludeInvocationsOf(SelfName), cfg.GetHistoryLimit())
}

func (s *Service) interactive() bool {
	return s.Prompter != nil && s.Prompter.Enabled()
}

func (s *Service) status(label string) func() {
	if s.Presenter == nil {
		return func() {}
	}
	return s.Presenter.Status(label)
}

func (s *Service) show(command string) {
	if s.Presenter != nil {
		s.Presenter.ShowCommand(command)
	}
}

func (s *Service) showSuggestion(command string) {
	if s.Presenter == nil {
		return
	}
	if command == "" {
		s.Presenter.ShowWarning("Suggestion not readily available. Please revise for better results.")
		return
	}
	s.Presenter.ShowCommand(command)
}

func (s *Service) copy(command string) {
	if s.Clipboard == nil || !s.Clipboard.Enabled() {
		if s.Presenter != nil {
			s.Presenter.ShowWarning("Clipboard is not available.")
		}
		return
	}
	if err := s.Clipboard.Copy(command); err != nil {
		s.Logger.Warn("clipboard copy failed", map[string]interface{}{"error": err.Error()})
		if s.Presenter != nil {
			s.Presenter.ShowWarning("Failed to copy the command.")
		}
		return
	}
	if s.Presenter != nil {
		s.Presenter.ShowText("Command copied to clipboard.")
	}
}
