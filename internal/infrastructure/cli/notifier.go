package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/doeshing/shcmd/internal/ports"
)

// Notifier prints notices to the terminal. Durations are ignored: printed lines stay in
// the scrollback.
type Notifier struct {
	out io.Writer

	mu      sync.Mutex
	running *runningNotice
}

// NewNotifier writes to out, or stderr when out is nil.
func NewNotifier(out io.Writer) *Notifier {
	if out == nil {
		out = os.Stderr
	}
	return &Notifier{out: out}
}

var (
	noticeColor    = color.New(color.FgCyan)
	errorColor     = color.New(color.FgRed, color.Bold)
	executingColor = color.New(color.FgYellow)
)

// Notify implements ports.Notifier.
func (n *Notifier) Notify(message string, _ time.Duration) {
	n.print(noticeColor, message)
}

// Error implements ports.Notifier.
func (n *Notifier) Error(message string, _ time.Duration) {
	n.print(errorColor, message)
}

// Executing implements ports.Notifier. Only one executing notice is tracked at a time; a
// newer one replaces the older.
func (n *Notifier) Executing(title string, terminate func()) ports.ExecutingNotice {
	notice := &runningNotice{owner: n, terminate: terminate}
	n.mu.Lock()
	n.running = notice
	n.mu.Unlock()

	n.print(executingColor, fmt.Sprintf("Executing: %s (press Ctrl+C to terminate)", title))
	return notice
}

// TerminateRunning calls the terminate control of the visible executing notice.
// It reports false when no notice is visible.
func (n *Notifier) TerminateRunning() bool {
	n.mu.Lock()
	notice := n.running
	n.mu.Unlock()
	if notice == nil || notice.terminate == nil {
		return false
	}
	notice.terminate()
	return true
}

func (n *Notifier) print(c *color.Color, message string) {
	message = strings.TrimRight(message, "\n")
	if message == "" {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	c.Fprintln(n.out, message)
}

type runningNotice struct {
	owner     *Notifier
	terminate func()
}

func (r *runningNotice) Hide() {
	r.owner.mu.Lock()
	defer r.owner.mu.Unlock()
	if r.owner.running == r {
		r.owner.running = nil
	}
}

var _ ports.Notifier = (*Notifier)(nil)
