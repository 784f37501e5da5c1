package query

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/pkg/logger"
	"github.com/doeshing/termind/internal/ports"
)

func TestService_GenerateRetriesEmptyAndSelfInvocations(t *testing.T) {
	provider := &scriptedProvider{commands: []string{"", "termind list files", "ls -la"}}
	svc := newTestService(domain.Config{}, provider)

	resp, err := svc.Generate(context.Background(), domain.GenerateRequest{Text: "list files"})

	require.NoError(t, err)
	assert.Equal(t, "ls -la", resp.Command)
	assert.Equal(t, 3, resp.Attempts)
	require.Len(t, provider.requests, 3)
	assert.Equal(t, "list files", provider.requests[1].User)
	assert.Equal(t, "list files, do not use command termind.", provider.requests[2].User)
	assert.Equal(t, "list files", provider.requests[2].Intent)
}

func TestService_GenerateGivesUpAfterThreeAttempts(t *testing.T) {
	provider := &scriptedProvider{commands: []string{"", "", "", "ls"}}
	svc := newTestService(domain.Config{}, provider)

	_, err := svc.Generate(context.Background(), domain.GenerateRequest{Text: "???"})

	assert.ErrorIs(t, err, domain.ErrNoCommand)
	assert.Len(t, provider.requests, domain.MaxGenerateAttempts)
}

func TestService_GenerateProviderFailureHalts(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("rate limited")}
	svc := newTestService(domain.Config{}, provider)

	_, err := svc.Generate(context.Background(), domain.GenerateRequest{Text: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestService_GeneratePromptCarriesHistoryAndMemory(t *testing.T) {
	provider := &scriptedProvider{commands: []string{"df -h"}}
	svc := newTestService(domain.Config{}, provider)
	svc.History = stubHistory{events: []domain.CommandEvent{{Command: "termind show disk"}, {Command: "git status"}}}
	mem := &stubMemory{matches: []domain.MemoryMatch{{Record: domain.MemoryRecord{Query: "free space", Response: "df -h"}}}}
	svc.Memory = mem

	resp, err := svc.Generate(context.Background(), domain.GenerateRequest{Text: "disk usage"})

	require.NoError(t, err)
	require.Len(t, resp.Memory, 1)
	assert.Equal(t, []string{"disk usage"}, mem.queried)
	system := provider.requests[0].System
	assert.Contains(t, system, "Command: git status")
	assert.NotContains(t, system, "termind show disk")
	assert.Contains(t, system, "Generated Commands: df -h")
}

func TestService_GenerateSurvivesMemoryFailure(t *testing.T) {
	provider := &scriptedProvider{commands: []string{"ls"}}
	svc := newTestService(domain.Config{}, provider)
	svc.Memory = &stubMemory{queryErr: domain.ErrStoreCorrupt}

	resp, err := svc.Generate(context.Background(), domain.GenerateRequest{Text: "list"})

	require.NoError(t, err)
	assert.Equal(t, "ls", resp.Command)
	assert.Empty(t, resp.Memory)
}

func TestService_RunExecuteSavesOnSuccess(t *testing.T) {
	cfg := domain.Config{General: domain.GeneralSettings{StorageSize: 10}}
	svc := newTestService(cfg, &scriptedProvider{commands: []string{"ls -la"}})
	mem := &stubMemory{}
	svc.Memory = mem
	prompter := &stubPrompter{choices: []int{actionExecute}}
	svc.Prompter = prompter
	presenter := &recordingPresenter{}
	svc.Presenter = presenter

	resp, err := svc.Run(context.Background(), domain.GenerateRequest{Text: "list files"})

	require.NoError(t, err)
	require.NotNil(t, resp.Execution)
	assert.True(t, resp.Saved)
	assert.Equal(t, []string{"ls -la"}, svc.Executor.(*stubExecutor).commands)
	assert.Equal(t, [][2]string{{"list files", "ls -la"}}, mem.added)
	assert.Equal(t, []int{10}, mem.evictedTo)
	assert.Equal(t, []string{"ls -la"}, presenter.commands)
	assert.Equal(t, []string{"Execute", "Abort", "Describe"}, prompter.options)
	assert.Equal(t, 1, presenter.statusStops)
}

func TestService_RunSaveRules(t *testing.T) {
	tests := []struct {
		name      string
		auto      bool
		choice    int
		result    domain.ExecutionResult
		wantSaved bool
		wantRan   bool
	}{
		{"execute success", false, actionExecute, domain.ExecutionResult{Ran: true}, true, true},
		{"execute failure", false, actionExecute, domain.ExecutionResult{Ran: true, ExitCode: 2}, false, true},
		{"execute interrupted", false, actionExecute, domain.ExecutionResult{Ran: true, ExitCode: 130, Interrupted: true}, true, true},
		{"abort", false, actionAbort, domain.ExecutionResult{Ran: true}, false, false},
		{"auto execute", true, -1, domain.ExecutionResult{Ran: true}, true, true},
		{"auto execute failure", true, -1, domain.ExecutionResult{Ran: true, ExitCode: 1}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.Config{General: domain.GeneralSettings{AutoExecute: tt.auto}}
			svc := newTestService(cfg, &scriptedProvider{commands: []string{"make"}})
			svc.Executor = &stubExecutor{result: tt.result}
			mem := &stubMemory{}
			svc.Memory = mem
			prompter := &stubPrompter{choices: []int{tt.choice}}
			svc.Prompter = prompter

			resp, err := svc.Run(context.Background(), domain.GenerateRequest{Text: "build"})

			require.NoError(t, err)
			assert.Equal(t, tt.wantSaved, resp.Saved)
			assert.Equal(t, tt.wantRan, resp.Execution != nil)
			assert.Equal(t, tt.wantSaved, len(mem.added) == 1)
			if tt.auto {
				assert.Zero(t, prompter.calls)
			}
		})
	}
}

func TestService_RunPrintOnlyNeverExecutes(t *testing.T) {
	cfg := domain.Config{General: domain.GeneralSettings{AutoExecute: true}}
	svc := newTestService(cfg, &scriptedProvider{commands: []string{"ls"}})
	mem := &stubMemory{}
	svc.Memory = mem

	resp, err := svc.Run(context.Background(), domain.GenerateRequest{Text: "list", PrintOnly: true})

	require.NoError(t, err)
	assert.Equal(t, "ls", resp.Command)
	assert.Nil(t, resp.Execution)
	assert.Empty(t, svc.Executor.(*stubExecutor).commands)
	assert.Empty(t, mem.added)
}

func TestService_RunDescribe(t *testing.T) {
	provider := &scriptedProvider{commands: []string{"rm -rf build", ""}, replies: []string{"", "Deletes the build directory."}}
	svc := newTestService(domain.Config{}, provider)
	svc.Prompter = &stubPrompter{choices: []int{actionDescribe}}
	presenter := &recordingPresenter{}
	svc.Presenter = presenter

	resp, err := svc.Run(context.Background(), domain.GenerateRequest{Text: "clean"})

	require.NoError(t, err)
	assert.Nil(t, resp.Execution)
	assert.Equal(t, []string{"Deletes the build directory."}, presenter.texts)
	assert.Equal(t, "rm -rf build", provider.requests[1].User)
}

func TestService_RunEmbeddingFailureKeepsResult(t *testing.T) {
	svc := newTestService(domain.Config{}, &scriptedProvider{commands: []string{"ls"}})
	svc.Memory = &stubMemory{addErr: domain.ErrEmbeddingFailed}
	svc.Prompter = &stubPrompter{choices: []int{actionExecute}}
	presenter := &recordingPresenter{}
	svc.Presenter = presenter

	resp, err := svc.Run(context.Background(), domain.GenerateRequest{Text: "list"})

	require.NoError(t, err)
	require.NotNil(t, resp.Execution)
	assert.True(t, resp.Execution.Succeeded())
	assert.False(t, resp.Saved)
	require.Len(t, presenter.warnings, 1)
	assert.Contains(t, presenter.warnings[0], "embedding failed")
}

func TestService_RunNonInteractiveOnlyShows(t *testing.T) {
	svc := newTestService(domain.Config{}, &scriptedProvider{commands: []string{"ls"}})
	svc.Prompter = &stubPrompter{disabled: true}
	presenter := &recordingPresenter{}
	svc.Presenter = presenter

	resp, err := svc.Run(context.Background(), domain.GenerateRequest{Text: "list"})

	require.NoError(t, err)
	assert.Nil(t, resp.Execution)
	assert.Equal(t, []string{"ls"}, presenter.commands)
}

func TestService_GuessCopy(t *testing.T) {
	svc := newTestService(domain.Config{}, &scriptedProvider{commands: []string{"go test ./..."}})
	svc.Prompter = &stubPrompter{choices: []int{guessCopy}}
	clip := &stubClipboard{enabled: true}
	svc.Clipboard = clip
	presenter := &recordingPresenter{}
	svc.Presenter = presenter

	resp, err := svc.Guess(context.Background(), domain.GuessRequest{Primary: Intents[0], Description: "run the tests"})

	require.NoError(t, err)
	assert.Equal(t, "go test ./...", resp.Command)
	assert.Equal(t, []string{"go test ./..."}, clip.copied)
	assert.Equal(t, []string{"Command copied to clipboard."}, presenter.texts)
}

func TestService_GuessReviseThenExecute(t *testing.T) {
	provider := &scriptedProvider{commands: []string{"", "git push", "git push --force-with-lease"}}
	svc := newTestService(domain.Config{}, provider)
	mem := &stubMemory{}
	svc.Memory = mem
	svc.Prompter = &stubPrompter{
		answers: []string{"push it", "use force with lease"},
		choices: []int{guessRevise, guessExecute},
	}
	presenter := &recordingPresenter{}
	svc.Presenter = presenter

	resp, err := svc.Guess(context.Background(), domain.GuessRequest{Primary: Intents[0], Description: "publish"})

	require.NoError(t, err)
	assert.Equal(t, "git push --force-with-lease", resp.Command)
	assert.Equal(t, "publish Revised Command: push it Revised Command: use force with lease", resp.Description)
	assert.True(t, resp.Saved)
	assert.Equal(t, [][2]string{{resp.Description, "git push --force-with-lease"}}, mem.added)
	assert.Len(t, presenter.warnings, 1)
	assert.Equal(t, "publish Revised Command: push it", provider.requests[1].User)
}

func TestService_GuessEmptyRevisionStops(t *testing.T) {
	svc := newTestService(domain.Config{}, &scriptedProvider{commands: []string{""}})
	svc.Prompter = &stubPrompter{answers: []string{"  "}}

	resp, err := svc.Guess(context.Background(), domain.GuessRequest{Primary: Intents[2]})

	require.NoError(t, err)
	assert.Empty(t, resp.Command)
	assert.Nil(t, resp.Execution)
}

func TestService_RememberEvictsToStorageSize(t *testing.T) {
	svc := newTestService(domain.Config{}, &scriptedProvider{})
	mem := &stubMemory{evictCount: 3}
	svc.Memory = mem

	outcome := svc.Remember(context.Background(), domain.Config{}, "q", "cmd")

	assert.True(t, outcome.Stored)
	assert.Equal(t, 3, outcome.Evicted)
	assert.Equal(t, []int{domain.DefaultStorageSize}, mem.evictedTo)

	outcome = svc.Remember(context.Background(), domain.Config{}, "q", "")
	assert.False(t, outcome.Stored)
	assert.Len(t, mem.evictedTo, 1)
}

func TestService_DependenciesRequired(t *testing.T) {
	_, err := (&Service{}).Generate(context.Background(), domain.GenerateRequest{Text: "x"})
	assert.Error(t, err)
}

func newTestService(cfg domain.Config, provider ports.Provider) *Service {
	return &Service{
		ConfigProvider:  stubConfigProvider{cfg: cfg},
		Metadata:        stubMetadata{},
		ProviderFactory: stubProviderFactory{provider: provider},
		Executor:        &stubExecutor{result: domain.ExecutionResult{Ran: true}},
		Logger:          logger.NewNop(),
	}
}

type stubConfigProvider struct {
	cfg domain.Config
	err error
}

func (s stubConfigProvider) Load(context.Context) (domain.Config, error) {
	return s.cfg, s.err
}

func (s stubConfigProvider) Path() string { return "/tmp/config.yaml" }

type stubProviderFactory struct {
	provider ports.Provider
}

func (s stubProviderFactory) ForConfig(domain.Config) (ports.Provider, error) {
	return s.provider, nil
}

// scriptedProvider answers with commands[i] (and replies[i]) on the i-th call.
type scriptedProvider struct {
	commands []string
	replies  []string
	err      error
	requests []ports.ProviderRequest
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "test" }

func (p *scriptedProvider) Generate(_ context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	i := len(p.requests)
	p.requests = append(p.requests, req)
	if p.err != nil {
		return ports.ProviderResponse{}, p.err
	}
	var resp ports.ProviderResponse
	if i < len(p.commands) {
		resp.Command = p.commands[i]
	}
	if i < len(p.replies) {
		resp.Reply = p.replies[i]
	}
	return resp, nil
}

type stubMetadata struct{}

func (stubMetadata) Collect(context.Context, domain.MetadataSettings) domain.Metadata {
	return domain.Metadata{System: domain.SystemInfo{Platform: "Linux"}}
}

type stubHistory struct {
	events []domain.CommandEvent
}

func (s stubHistory) Profile() domain.ShellProfile {
	return domain.ShellProfile{Kind: domain.ShellBash, HistoryPath: "/tmp/h", Format: domain.HistoryPlain}
}

func (s stubHistory) Events(domain.ShellProfile) (iter.Seq[domain.CommandEvent], error) {
	return func(yield func(domain.CommandEvent) bool) {
		for _, e := range s.events {
			if !yield(e) {
				return
			}
		}
	}, nil
}

type stubMemory struct {
	matches    []domain.MemoryMatch
	queryErr   error
	addErr     error
	evictCount int
	queried    []string
	added      [][2]string
	evictedTo  []int
}

func (m *stubMemory) Add(_ context.Context, query, response string) (domain.MemoryRecord, bool, error) {
	if m.addErr != nil {
		return domain.MemoryRecord{}, false, m.addErr
	}
	if response == "" {
		return domain.MemoryRecord{}, false, nil
	}
	m.added = append(m.added, [2]string{query, response})
	return domain.MemoryRecord{Query: query, Response: response}, true, nil
}

func (m *stubMemory) Query(_ context.Context, text string, _ int) ([]domain.MemoryMatch, error) {
	m.queried = append(m.queried, text)
	return m.matches, m.queryErr
}

func (m *stubMemory) Count(context.Context) (int, error) { return len(m.added), nil }

func (m *stubMemory) List(context.Context) ([]domain.MemoryRecord, error) { return nil, nil }

func (m *stubMemory) Evict(_ context.Context, maxSize int) (int, error) {
	m.evictedTo = append(m.evictedTo, maxSize)
	return m.evictCount, nil
}

func (m *stubMemory) Clear(context.Context) error { return nil }

func (m *stubMemory) Path() string { return "memory.db" }

func (m *stubMemory) Close() error { return nil }

type stubExecutor struct {
	result   domain.ExecutionResult
	err      error
	commands []string
}

func (s *stubExecutor) Execute(_ context.Context, command string) (domain.ExecutionResult, error) {
	s.commands = append(s.commands, command)
	return s.result, s.err
}

type stubPrompter struct {
	choices  []int
	answers  []string
	disabled bool
	options  []string
	calls    int
}

func (p *stubPrompter) Choose(_ string, options []string) (int, error) {
	p.calls++
	p.options = options
	if len(p.choices) == 0 {
		return 0, errors.New("no scripted choice")
	}
	choice := p.choices[0]
	p.choices = p.choices[1:]
	return choice, nil
}

func (p *stubPrompter) Ask(string) (string, error) {
	p.calls++
	if len(p.answers) == 0 {
		return "", nil
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func (p *stubPrompter) Confirm(string) (bool, error) { return true, nil }

func (p *stubPrompter) Enabled() bool { return !p.disabled }

type recordingPresenter struct {
	commands    []string
	texts       []string
	warnings    []string
	statusStops int
}

func (p *recordingPresenter) ShowCommand(command string) { p.commands = append(p.commands, command) }
func (p *recordingPresenter) ShowText(text string)       { p.texts = append(p.texts, text) }
func (p *recordingPresenter) ShowWarning(message string) { p.warnings = append(p.warnings, message) }

func (p *recordingPresenter) Status(string) func() {
	return func() { p.statusStops++ }
}

type stubClipboard struct {
	enabled bool
	copied  []string
}

func (c *stubClipboard) Copy(text string) error {
	c.copied = append(c.copied, text)
	return nil
}

func (c *stubClipboard) Enabled() bool { return c.enabled }
