package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/output"
	"github.com/doeshing/shcmd/internal/shell"
)

const chunkSize = 4096

// run spawns the resolved command and hands its output to the configured handlers.
func (s *Service) run(
	ctx context.Context,
	req Request,
	sh shell.Shell,
	result domain.ShellCommandParsingResult,
	hostDir string,
	outcome *domain.ExecutionOutcome,
) (domain.ExecutionOutcome, error) {
	env := s.environ()
	if aug, ok := sh.(shell.PathAugmenter); ok && strings.TrimSpace(result.PathAugmentation) != "" {
		env = aug.AugmentPath(env, result.PathAugmentation)
	}

	handlers := output.NewSet(output.Deps{
		Notifier:             s.Notifier,
		Clipboard:            s.Clipboard,
		Stdout:               s.Stdout,
		Stderr:               s.Stderr,
		Fs:                   s.fs(),
		Document:             req.Document,
		NotificationDuration: s.notificationDuration(),
	})
	stdoutHandler, err := handlers.For(req.Command.OutputHandlers.Stdout)
	if err != nil {
		s.fail(outcome, err.Error())
		return *outcome, nil
	}
	stderrHandler, err := handlers.For(req.Command.OutputHandlers.Stderr)
	if err != nil {
		s.fail(outcome, err.Error())
		return *outcome, nil
	}

	outcome.State = domain.StateSpawning
	s.Logger.Debug("spawning shell command", map[string]interface{}{
		"shell":   sh.ID(),
		"command": result.WrappedCommand,
		"dir":     hostDir,
	})
	proc, err := sh.Spawn(ctx, shell.SpawnRequest{
		Command:  result.WrappedCommand,
		Dir:      hostDir,
		ShellDir: sh.TranslateAbsolutePath(hostDir),
		Env:      env,
		Stdin:    result.Stdin,
	})
	if err != nil {
		var spawnErr *domain.SpawnError
		if errors.As(err, &spawnErr) && spawnErr.ArgumentListTooLong {
			s.fail(outcome, spawnErr.Error())
			return *outcome, nil
		}
		outcome.State = domain.StateFailed
		outcome.Errors = append(outcome.Errors, err.Error())
		s.Logger.Error("spawn failed", err, map[string]interface{}{"shell": sh.ID()})
		return *outcome, fmt.Errorf("spawn %s: %w", sh.Name(), err)
	}

	outcome.State = domain.StateRunning
	title := result.Alias
	if title == "" {
		title = result.UnwrappedCommand
	}
	notice := startNotice(s.Notifier, s.Config.GetNotificationMode(req.Command), title, func() {
		if err := proc.Terminate(); err != nil {
			s.Logger.Warn("terminate failed", map[string]interface{}{"error": err.Error()})
		}
	})
	defer notice.hide()

	if req.Command.GetOutputHandlingMode() == domain.OutputModeRealtime {
		return s.realtime(ctx, req.Command, proc, stdoutHandler, stderrHandler, handlers, outcome)
	}
	return s.buffered(ctx, req.Command, proc, result, stdoutHandler, stderrHandler, handlers, outcome)
}

func (s *Service) buffered(
	ctx context.Context,
	cmd domain.ShellCommand,
	proc *shell.Process,
	result domain.ShellCommandParsingResult,
	stdoutHandler, stderrHandler output.Handler,
	handlers *output.Set,
	outcome *domain.ExecutionOutcome,
) (domain.ExecutionOutcome, error) {
	var (
		wg             sync.WaitGroup
		stdout, stderr strings.Builder
		errOut, errErr error
	)
	wg.Add(2)
	go func() { defer wg.Done(); _, errOut = io.Copy(&stdout, proc.Stdout()) }()
	go func() { defer wg.Done(); _, errErr = io.Copy(&stderr, proc.Stderr()) }()
	wg.Wait()

	code, err := proc.Wait()
	if err = errors.Join(err, errOut, errErr); err != nil {
		outcome.State = domain.StateFailed
		return *outcome, fmt.Errorf("wait for process: %w", err)
	}
	if ctx.Err() != nil {
		return s.cancelled(ctx, proc, code, stdout.String(), stderr.String(), stdoutHandler, handlers, outcome, result.StdoutWrapper)
	}

	verdict := classify(cmd, code, stdout.String(), stderr.String())
	outcome.ExitCode = code
	outcome.Stdout = verdict.stdout
	outcome.Stderr = verdict.stderr
	outcome.State = domain.StateDone
	outcome.Succeeded = verdict.succeeded

	if verdict.stdout != "" {
		s.dispatch(ctx, stdoutHandler, domain.StreamStdout, output.Wrap(result.StdoutWrapper, verdict.stdout), outcome)
	}
	if verdict.succeeded && verdict.stderr != "" {
		s.dispatch(ctx, stderrHandler, domain.StreamStderr, output.Wrap(result.StderrWrapper, verdict.stderr), outcome)
	}
	if err := handlers.Finalize(ctx); err != nil {
		s.handlerError(outcome, err)
	}

	if !verdict.succeeded {
		exitErr := &domain.ExitError{ExitCode: code, Stderr: verdict.stderr}
		s.reportExit(outcome, exitErr)
	}
	return *outcome, nil
}

// chunk is a piece of output read from one stream.
type chunk struct {
	stream domain.OutputStream
	data   string
}

// realtime delivers output as it arrives. Both readers block on an unbuffered channel
// while the dispatcher hands a chunk to its handler, so neither stream advances
// during delivery and chunks reach handlers in the order they were read.
func (s *Service) realtime(
	ctx context.Context,
	cmd domain.ShellCommand,
	proc *shell.Process,
	stdoutHandler, stderrHandler output.Handler,
	handlers *output.Set,
	outcome *domain.ExecutionOutcome,
) (domain.ExecutionOutcome, error) {
	chunks := make(chan chunk)
	readErrs := make(chan error, 2)

	var wg sync.WaitGroup
	read := func(stream domain.OutputStream, r io.Reader) {
		defer wg.Done()
		buf := make([]byte, chunkSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				chunks <- chunk{stream: stream, data: string(buf[:n])}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErrs <- err
				}
				return
			}
		}
	}
	wg.Add(2)
	go read(domain.StreamStdout, proc.Stdout())
	go read(domain.StreamStderr, proc.Stderr())
	go func() {
		wg.Wait()
		close(chunks)
	}()

	var stdout, stderr strings.Builder
	for c := range chunks {
		h := stdoutHandler
		if c.stream == domain.StreamStderr {
			h = stderrHandler
			stderr.WriteString(c.data)
		} else {
			stdout.WriteString(c.data)
		}
		s.dispatch(ctx, h, c.stream, c.data, outcome)
	}
	close(readErrs)

	code, err := proc.Wait()
	for readErr := range readErrs {
		err = errors.Join(err, readErr)
	}
	if err := handlers.Finalize(context.WithoutCancel(ctx)); err != nil {
		s.handlerError(outcome, err)
	}
	if err != nil {
		outcome.State = domain.StateFailed
		return *outcome, fmt.Errorf("wait for process: %w", err)
	}
	if ctx.Err() != nil {
		outcome.ExitCode = code
		outcome.Stdout = stdout.String()
		outcome.Stderr = stderr.String()
		outcome.State = domain.StateCancelled
		return *outcome, nil
	}

	verdict := classify(cmd, code, stdout.String(), stderr.String())
	outcome.ExitCode = code
	outcome.Stdout = stdout.String()
	outcome.Stderr = stderr.String()
	outcome.State = domain.StateDone
	outcome.Succeeded = verdict.succeeded
	if !verdict.succeeded {
		// stderr has already been delivered chunk by chunk.
		s.reportExit(outcome, &domain.ExitError{ExitCode: code})
	}
	return *outcome, nil
}

// cancelled records a process stopped by context cancellation. Output captured up to
// that point still reaches the stdout handler; no exit error is reported.
func (s *Service) cancelled(
	ctx context.Context,
	proc *shell.Process,
	code *int,
	stdout, stderr string,
	stdoutHandler output.Handler,
	handlers *output.Set,
	outcome *domain.ExecutionOutcome,
	stdoutWrapper *string,
) (domain.ExecutionOutcome, error) {
	ctx = context.WithoutCancel(ctx)
	outcome.ExitCode = code
	outcome.Stdout = stdout
	outcome.Stderr = stderr
	outcome.State = domain.StateCancelled
	s.Logger.Debug("process cancelled", map[string]interface{}{"pid": proc.Pid()})

	if stdout != "" {
		s.dispatch(ctx, stdoutHandler, domain.StreamStdout, output.Wrap(stdoutWrapper, stdout), outcome)
	}
	if err := handlers.Finalize(ctx); err != nil {
		s.handlerError(outcome, err)
	}
	return *outcome, nil
}

func (s *Service) dispatch(ctx context.Context, h output.Handler, stream domain.OutputStream, content string, outcome *domain.ExecutionOutcome) {
	if err := h.Handle(ctx, stream, content); err != nil {
		s.handlerError(outcome, fmt.Errorf("%s output: %w", stream, err))
	}
}

func (s *Service) handlerError(outcome *domain.ExecutionOutcome, err error) {
	outcome.Errors = append(outcome.Errors, err.Error())
	s.Notifier.Error(err.Error(), s.errorDuration())
	s.Logger.Warn("output handler failed", map[string]interface{}{"error": err.Error()})
}

// reportExit surfaces a failing exit code with the captured stderr, if any.
func (s *Service) reportExit(outcome *domain.ExecutionOutcome, exitErr *domain.ExitError) {
	message := exitErr.Error()
	if stderr := strings.TrimSpace(exitErr.Stderr); stderr != "" {
		message = fmt.Sprintf("%s: %s", message, stderr)
	}
	outcome.Errors = append(outcome.Errors, message)
	s.Notifier.Error(message, s.errorDuration())
}

// verdict is the classification of a finished process.
type verdict struct {
	succeeded bool
	stdout    string
	stderr    string
}

// classify applies the exit code policy. A missing exit code (killed by a signal) or a
// non-zero one is an error unless that code is ignored, in which case stderr is dropped.
// Exit code 0 with stderr is a success that keeps stderr, unless 0 itself is ignored.
func classify(cmd domain.ShellCommand, code *int, stdout, stderr string) verdict {
	switch {
	case code == nil:
		return verdict{stdout: stdout, stderr: stderr}
	case cmd.IgnoresExitCode(*code):
		return verdict{succeeded: true, stdout: stdout}
	case *code == 0:
		return verdict{succeeded: true, stdout: stdout, stderr: stderr}
	default:
		return verdict{stdout: stdout, stderr: stderr}
	}
}
