//go:build !windows

package execution

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/pkg/logger"
	"github.com/doeshing/shcmd/internal/shell"
	"github.com/doeshing/shcmd/internal/variables"
)

// syncBuffer is a bytes.Buffer safe for the concurrent writes of realtime output.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type harness struct {
	svc       *Service
	notifier  *fakeNotifier
	confirmer *fakeConfirmer
	presenter *fakePresenter
	store     *memStore
	history   *memHistory
	stdout    *syncBuffer
	stderr    *syncBuffer
	vault     string
}

func newHarness(t *testing.T, cfg domain.Config) *harness {
	t.Helper()
	if cfg.VaultRoot == "" {
		cfg.VaultRoot = t.TempDir()
	}
	if cfg.DefaultShells == nil {
		p := domain.CurrentPlatform()
		cfg.DefaultShells = map[domain.Platform]string{p: "sh"}
	}

	shells, err := shell.NewRegistry(cfg.CustomShells)
	require.NoError(t, err)
	vars, err := variables.NewDefaultRegistry(cfg)
	require.NoError(t, err)

	h := &harness{
		notifier:  &fakeNotifier{},
		confirmer: &fakeConfirmer{},
		presenter: &fakePresenter{},
		store:     &memStore{},
		history:   &memHistory{},
		stdout:    &syncBuffer{},
		stderr:    &syncBuffer{},
		vault:     cfg.VaultRoot,
	}
	h.svc = &Service{
		Config:    cfg,
		Shells:    shells,
		Variables: vars,
		Store:     h.store,
		History:   h.history,
		Confirmer: h.confirmer,
		Presenter: h.presenter,
		Notifier:  h.notifier,
		Logger:    logger.NewNop(),
		Fs:        afero.NewOsFs(),
		Stdout:    h.stdout,
		Stderr:    h.stderr,
		Preparsed: NewPreparsedCache(),
	}
	return h
}

func command(template string) domain.ShellCommand {
	return domain.ShellCommand{
		ID:                       "cmd-1",
		PlatformSpecificCommands: map[string]string{domain.DefaultCommandKey: template},
		OutputHandlers: domain.OutputHandlers{
			Stdout: domain.OutputTerminal,
			Stderr: domain.OutputTerminal,
		},
	}
}

func (h *harness) noteDocument(t *testing.T) *domain.Document {
	t.Helper()
	path := filepath.Join(h.vault, "My Note.md")
	require.NoError(t, os.WriteFile(path, []byte("# note\n"), 0o644))
	return &domain.Document{Path: path}
}

func TestExecuteResolvesAndRuns(t *testing.T) {
	h := newHarness(t, domain.Config{})
	doc := h.noteDocument(t)

	outcome, err := h.svc.Execute(context.Background(), Request{Command: command("echo {{title}}"), Document: doc})
	require.NoError(t, err)

	assert.Equal(t, domain.StateDone, outcome.State)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, "echo 'My Note'", outcome.Command)
	require.NotNil(t, outcome.ExitCode)
	assert.Equal(t, 0, *outcome.ExitCode)
	assert.Equal(t, "My Note\n", h.stdout.String())

	_, errs, executing, _ := h.notifier.snapshot()
	assert.Empty(t, errs)
	assert.Empty(t, executing, "notifications are disabled by default")

	require.Len(t, h.history.records, 1)
	assert.Equal(t, domain.StateDone, h.history.records[0].State)
	assert.Equal(t, "sh", h.history.records[0].Shell)
}

func TestDeclinedConfirmationStopsEverything(t *testing.T) {
	h := newHarness(t, domain.Config{
		CustomVariables: []domain.CustomVariable{{ID: "v1", Name: "answer"}},
	})
	marker := filepath.Join(h.vault, "marker")
	cmd := command("touch " + marker + " {{_answer}}")
	cmd.ConfirmExecution = true
	cmd.Preactions = []domain.PreactionConfig{{
		Type:   domain.PreactionPrompt,
		Prompt: &domain.PromptConfig{Fields: []domain.PromptField{{Label: "Answer", TargetVariableID: "v1"}}},
	}}
	h.confirmer.answer = false

	outcome, err := h.svc.Execute(context.Background(), Request{Command: cmd})
	require.NoError(t, err)

	assert.Equal(t, domain.StateCancelled, outcome.State)
	assert.Empty(t, outcome.Errors)
	assert.Equal(t, 1, h.confirmer.calls)
	assert.Zero(t, h.presenter.calls, "no preaction runs after a declined confirmation")
	assert.NoFileExists(t, marker)

	_, errs, _, _ := h.notifier.snapshot()
	assert.Empty(t, errs, "cancellation is not an error")
}

func TestPromptSuppliesDeferredValue(t *testing.T) {
	h := newHarness(t, domain.Config{
		CustomVariables: []domain.CustomVariable{{ID: "v1", Name: "who"}},
	})
	cmd := command("echo Hello {{_who}}")
	cmd.Alias = "Greet"
	cmd.Preactions = []domain.PreactionConfig{{
		Type: domain.PreactionPrompt,
		Prompt: &domain.PromptConfig{
			Title:  "Greeting",
			Fields: []domain.PromptField{{Label: "Who", TargetVariableID: "v1", Required: true}},
		},
	}}
	h.presenter.values = []string{"Ada Lovelace"}
	h.presenter.ok = true

	outcome, err := h.svc.Execute(context.Background(), Request{Command: cmd})
	require.NoError(t, err)

	assert.True(t, outcome.Succeeded)
	assert.Equal(t, "Greet", outcome.Alias)
	assert.Equal(t, "Hello Ada Lovelace\n", h.stdout.String())

	stored, ok, _ := h.store.Get(context.Background(), "v1")
	assert.True(t, ok)
	assert.Equal(t, "Ada Lovelace", stored)
}

func TestExitCodePolicy(t *testing.T) {
	t.Run("error surfaces stderr", func(t *testing.T) {
		h := newHarness(t, domain.Config{})
		outcome, err := h.svc.Execute(context.Background(), Request{Command: command("echo broken >&2; exit 1")})
		require.NoError(t, err)

		assert.Equal(t, domain.StateDone, outcome.State)
		assert.False(t, outcome.Succeeded)
		assert.Equal(t, 1, *outcome.ExitCode)
		_, errs, _, _ := h.notifier.snapshot()
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "broken")
		assert.Empty(t, h.stderr.String(), "failing stderr is shown as an error, not handed to the handler")
	})

	t.Run("ignored code drops stderr", func(t *testing.T) {
		h := newHarness(t, domain.Config{})
		cmd := command("echo broken >&2; exit 1")
		cmd.IgnoreErrorCodes = []int{1}

		outcome, err := h.svc.Execute(context.Background(), Request{Command: cmd})
		require.NoError(t, err)

		assert.True(t, outcome.Succeeded)
		assert.Empty(t, outcome.Stderr)
		assert.Empty(t, h.stderr.String())
		_, errs, _, _ := h.notifier.snapshot()
		assert.Empty(t, errs)
	})

	t.Run("zero with stderr passes it through", func(t *testing.T) {
		h := newHarness(t, domain.Config{})
		outcome, err := h.svc.Execute(context.Background(), Request{Command: command("echo note >&2")})
		require.NoError(t, err)

		assert.True(t, outcome.Succeeded)
		assert.Equal(t, "note\n", h.stderr.String())
	})
}

func TestPhaseOneFailure(t *testing.T) {
	h := newHarness(t, domain.Config{})
	outcome, err := h.svc.Execute(context.Background(), Request{Command: command("echo {{nonexistent}}")})
	require.NoError(t, err)

	assert.Equal(t, domain.StateFailed, outcome.State)
	require.NotEmpty(t, outcome.Errors)
	assert.Contains(t, outcome.Errors[0], "nonexistent")
	_, errs, _, _ := h.notifier.snapshot()
	assert.Len(t, errs, 1, "only the first error is shown")
}

func TestEmptyCommandMessages(t *testing.T) {
	h := newHarness(t, domain.Config{})

	other := domain.PlatformWindows
	if domain.CurrentPlatform() == domain.PlatformWindows {
		other = domain.PlatformLinux
	}
	onlyOther := domain.ShellCommand{ID: "x", PlatformSpecificCommands: map[string]string{string(other): "dir"}}
	outcome, err := h.svc.Execute(context.Background(), Request{Command: onlyOther})
	require.NoError(t, err)
	require.NotEmpty(t, outcome.Errors)
	assert.Contains(t, outcome.Errors[0], "only defined for "+other.DisplayName())

	outcome, err = h.svc.Execute(context.Background(), Request{Command: domain.ShellCommand{ID: "y"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"The shell command is empty."}, outcome.Errors)
}

func TestWorkingDirectoryValidation(t *testing.T) {
	h := newHarness(t, domain.Config{WorkingDirectory: "missing"})
	outcome, err := h.svc.Execute(context.Background(), Request{Command: command("true")})
	require.NoError(t, err)
	require.NotEmpty(t, outcome.Errors)
	assert.Contains(t, outcome.Errors[0], "does not exist")
	assert.Nil(t, outcome.ExitCode, "nothing was spawned")

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	h = newHarness(t, domain.Config{WorkingDirectory: file})
	outcome, err = h.svc.Execute(context.Background(), Request{Command: command("true")})
	require.NoError(t, err)
	assert.Contains(t, outcome.Errors[0], "not a directory")
}

func TestRelativeWorkingDirectory(t *testing.T) {
	vault := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(vault, "sub"), 0o755))
	h := newHarness(t, domain.Config{VaultRoot: vault, WorkingDirectory: "sub"})

	_, err := h.svc.Execute(context.Background(), Request{Command: command("pwd -P")})
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(filepath.Join(vault, "sub"))
	require.NoError(t, err)
	assert.Equal(t, want+"\n", h.stdout.String())
}

func TestPathAugmentationAndStdin(t *testing.T) {
	p := domain.CurrentPlatform()
	h := newHarness(t, domain.Config{
		PathAugmentations: map[domain.Platform]string{p: "/opt/shcmd-test/bin"},
	})
	doc := h.noteDocument(t)

	cmd := command(`case "$PATH" in *:/opt/shcmd-test/bin) cat ;; *) echo missing ;; esac`)
	cmd.Stdin = "{{title}} via stdin"

	outcome, err := h.svc.Execute(context.Background(), Request{Command: cmd, Document: doc})
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, "My Note via stdin", h.stdout.String())
}

func TestShellAndOutputWrappers(t *testing.T) {
	h := newHarness(t, domain.Config{
		CustomShells: []domain.CustomShell{{
			ID:        "wrapped",
			Binary:    "sh",
			Arguments: "-c",
			Wrapper:   "echo before; {{shell_command}}",
		}},
	})
	cmd := command("echo {{operating_system|raw}}")
	cmd.Shells = map[domain.Platform]string{domain.CurrentPlatform(): "wrapped"}
	cmd.OutputWrappers.Stdout = "[{{output}}]"

	outcome, err := h.svc.Execute(context.Background(), Request{Command: cmd})
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, "[before\n"+domain.CurrentPlatform().DisplayName()+"\n]", h.stdout.String())
}

func TestRealtimeOutput(t *testing.T) {
	h := newHarness(t, domain.Config{})
	cmd := command("echo one; echo two >&2; sleep 0.1; echo three")
	cmd.OutputHandlingMode = domain.OutputModeRealtime

	outcome, err := h.svc.Execute(context.Background(), Request{Command: cmd})
	require.NoError(t, err)

	assert.True(t, outcome.Succeeded)
	assert.Equal(t, "one\nthree\n", h.stdout.String())
	assert.Equal(t, "two\n", h.stderr.String())
	assert.Equal(t, "one\nthree\n", outcome.Stdout)
}

func TestRealtimeSharedHandlerFinalizesOnce(t *testing.T) {
	h := newHarness(t, domain.Config{})
	cmd := command("echo out; echo err >&2")
	cmd.OutputHandlingMode = domain.OutputModeRealtime
	cmd.OutputHandlers = domain.OutputHandlers{Stdout: domain.OutputNotification, Stderr: domain.OutputNotification}

	outcome, err := h.svc.Execute(context.Background(), Request{Command: cmd})
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)

	notices, errs, _, _ := h.notifier.snapshot()
	assert.Equal(t, []string{"out"}, notices)
	assert.Equal(t, []string{"err"}, errs)
}

func TestTerminateFromNotice(t *testing.T) {
	h := newHarness(t, domain.Config{ExecutionNotificationMode: domain.NotificationPermanent})
	cmd := command("sleep 30")
	cmd.Alias = "Sleepy"

	go func() {
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			h.notifier.mu.Lock()
			terminate := h.notifier.terminate
			h.notifier.mu.Unlock()
			if terminate != nil {
				terminate()
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
	}()

	outcome, err := h.svc.Execute(context.Background(), Request{Command: cmd})
	require.NoError(t, err)

	assert.False(t, outcome.Succeeded)
	assert.Nil(t, outcome.ExitCode)
	_, errs, executing, hidden := h.notifier.snapshot()
	assert.Equal(t, []string{"Sleepy"}, executing)
	assert.Equal(t, 1, hidden)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "terminated")
}

func TestContextCancellationTerminates(t *testing.T) {
	h := newHarness(t, domain.Config{})
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	outcome, err := h.svc.Execute(ctx, Request{Command: command("sleep 30")})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Nil(t, outcome.ExitCode)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, domain.StateCancelled, outcome.State)
}

func TestCancelledProcessExitingCleanly(t *testing.T) {
	for _, mode := range []domain.OutputHandlingMode{domain.OutputModeBuffered, domain.OutputModeRealtime} {
		t.Run(string(mode), func(t *testing.T) {
			h := newHarness(t, domain.Config{})
			cmd := command("echo started; trap 'exit 0' TERM; sleep 5 & wait")
			cmd.OutputHandlingMode = mode

			ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
			defer cancel()

			outcome, err := h.svc.Execute(ctx, Request{Command: cmd})
			require.NoError(t, err)
			assert.Equal(t, domain.StateCancelled, outcome.State)
			assert.False(t, outcome.Succeeded)
			require.NotNil(t, outcome.ExitCode)
			assert.Equal(t, 0, *outcome.ExitCode)
			assert.Empty(t, outcome.Errors)
			assert.Contains(t, h.stdout.String(), "started")
		})
	}
}

func TestArgumentListTooLong(t *testing.T) {
	h := newHarness(t, domain.Config{})
	outcome, err := h.svc.Execute(context.Background(), Request{
		Command: command("true " + strings.Repeat("x", 4<<20)),
	})
	require.NoError(t, err, "too long is reported to the user, not returned")
	assert.Equal(t, domain.StateFailed, outcome.State)
	require.NotEmpty(t, outcome.Errors)
	assert.Contains(t, outcome.Errors[0], "too long")
}

func TestUnknownBinaryIsFatal(t *testing.T) {
	h := newHarness(t, domain.Config{
		CustomShells: []domain.CustomShell{{ID: "ghost", Binary: "/nonexistent/shcmd-shell"}},
	})
	cmd := command("true")
	cmd.Shells = map[domain.Platform]string{domain.CurrentPlatform(): "ghost"}

	outcome, err := h.svc.Execute(context.Background(), Request{Command: cmd})
	assert.Error(t, err)
	assert.Equal(t, domain.StateFailed, outcome.State)
}

func TestPreviewIsReusedThenCleared(t *testing.T) {
	h := newHarness(t, domain.Config{})
	doc := h.noteDocument(t)
	req := Request{Command: command("echo {{file_name}}"), Document: doc}

	results, err := h.svc.Preview(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "echo 'My Note.md'", results[domain.FieldCommand].Content())
	assert.Equal(t, 1, h.svc.Preparsed.Len())

	outcome, err := h.svc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)
	assert.Zero(t, h.svc.Preparsed.Len())

	// A failed attempt clears unrelated entries too.
	_, err = h.svc.Preview(context.Background(), req)
	require.NoError(t, err)
	_, err = h.svc.Execute(context.Background(), Request{Command: domain.ShellCommand{ID: "other"}})
	require.NoError(t, err)
	assert.Zero(t, h.svc.Preparsed.Len())
}

func TestNotificationModes(t *testing.T) {
	quickDuration, ifLongDelay = 50*time.Millisecond, 100*time.Millisecond
	t.Cleanup(func() {
		quickDuration, ifLongDelay = domain.QuickNotificationDuration, domain.IfLongNotificationDelay
	})

	t.Run("if-long stays hidden for short commands", func(t *testing.T) {
		n := &fakeNotifier{}
		e := startNotice(n, domain.NotificationIfLong, "x", func() {})
		e.hide()
		time.Sleep(150 * time.Millisecond)
		_, _, executing, _ := n.snapshot()
		assert.Empty(t, executing)
	})

	t.Run("if-long shows after the delay", func(t *testing.T) {
		n := &fakeNotifier{}
		e := startNotice(n, domain.NotificationIfLong, "x", func() {})
		time.Sleep(200 * time.Millisecond)
		e.hide()
		_, _, executing, hidden := n.snapshot()
		assert.Equal(t, []string{"x"}, executing)
		assert.Equal(t, 1, hidden)
	})

	t.Run("quick hides itself", func(t *testing.T) {
		n := &fakeNotifier{}
		e := startNotice(n, domain.NotificationQuick, "x", func() {})
		time.Sleep(150 * time.Millisecond)
		_, _, executing, hidden := n.snapshot()
		assert.Equal(t, []string{"x"}, executing)
		assert.Equal(t, 1, hidden)
		e.hide()
		_, _, _, hidden = n.snapshot()
		assert.Equal(t, 1, hidden, "hiding twice is harmless")
	})

	t.Run("disabled shows nothing", func(t *testing.T) {
		n := &fakeNotifier{}
		startNotice(n, domain.NotificationDisabled, "x", func() {}).hide()
		_, _, executing, _ := n.snapshot()
		assert.Empty(t, executing)
	})
}
