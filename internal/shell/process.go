package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/doeshing/shcmd/internal/domain"
)

// terminateGrace is how long Wait gives the pipes to drain after the process was cancelled.
const terminateGrace = 5 * time.Second

var argListTooLong = regexp.MustCompile(`(?i)E2BIG|argument list too long|command line is too long`)

// Process is a running shell command.
// Stdout and Stderr must both be drained before Wait returns.
type Process struct {
	cmd    *exec.Cmd
	stdout *io.PipeReader
	stderr *io.PipeReader
	done   chan struct{}

	mu       sync.Mutex
	exitCode *int
	err      error
}

func start(ctx context.Context, binary string, args []string, req SpawnRequest, verbatim bool) (*Process, error) {
	c := exec.CommandContext(ctx, binary, args...)
	c.Dir = req.Dir
	c.Env = req.Env
	if c.Env == nil {
		c.Env = os.Environ()
	}
	if req.Stdin != nil {
		c.Stdin = strings.NewReader(*req.Stdin)
	}

	setProcessGroup(c)
	if verbatim {
		setVerbatimCommandLine(c, binary, args)
	}
	c.Cancel = func() error {
		return terminateProcessGroup(c.Process.Pid)
	}
	c.WaitDelay = terminateGrace

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	c.Stdout = stdoutW
	c.Stderr = stderrW

	if err := c.Start(); err != nil {
		_ = stdoutW.Close()
		_ = stderrW.Close()
		return nil, &domain.SpawnError{
			Shell:               binary,
			ArgumentListTooLong: isArgumentListTooLong(err),
			Err:                 err,
		}
	}

	p := &Process{
		cmd:    c,
		stdout: stdoutR,
		stderr: stderrR,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(p.done)

		err := c.Wait()
		_ = stdoutW.Close()
		_ = stderrW.Close()

		p.mu.Lock()
		defer p.mu.Unlock()
		p.exitCode, p.err = exitStatus(c, err)
	}()

	return p, nil
}

// Stdout streams the process's standard output until it exits.
func (p *Process) Stdout() io.Reader { return p.stdout }

// Stderr streams the process's standard error until it exits.
func (p *Process) Stderr() io.Reader { return p.stderr }

// Pid returns the OS process id.
func (p *Process) Pid() int { return p.cmd.Process.Pid }

// Done is closed once the process has exited and its output pipes are closed.
func (p *Process) Done() <-chan struct{} { return p.done }

// Wait blocks until the process exits.
// The exit code is nil when the process was killed by a signal. The error is only
// set for failures other than a non-zero exit.
func (p *Process) Wait() (*int, error) {
	<-p.done

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode, p.err
}

// Terminate asks the process and its children to stop. The OS may ignore it.
func (p *Process) Terminate() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	if err := terminateProcessGroup(p.Pid()); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("terminate process %d: %w", p.Pid(), err)
	}
	return nil
}

func exitStatus(c *exec.Cmd, err error) (*int, error) {
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		code := 0
		return &code, nil
	case errors.As(err, &exitErr):
		code := exitErr.ExitCode()
		if code < 0 {
			return nil, nil
		}
		return &code, nil
	case errors.Is(err, exec.ErrWaitDelay):
		// The process exited but a grandchild kept a pipe open.
		if c.ProcessState != nil && c.ProcessState.ExitCode() >= 0 {
			code := c.ProcessState.ExitCode()
			return &code, nil
		}
		return nil, nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// Cancelled, and the process handled the termination signal by exiting.
		if c.ProcessState != nil && c.ProcessState.ExitCode() >= 0 {
			code := c.ProcessState.ExitCode()
			return &code, nil
		}
		return nil, nil
	default:
		if c.ProcessState != nil && !c.ProcessState.Exited() {
			return nil, nil
		}
		return nil, err
	}
}

func isArgumentListTooLong(err error) bool {
	return errors.Is(err, syscall.E2BIG) || argListTooLong.MatchString(err.Error())
}
