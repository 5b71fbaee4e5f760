package execution

import (
	"sync"
	"time"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/ports"
)

// Exposed for tests.
var (
	quickDuration = domain.QuickNotificationDuration
	ifLongDelay   = domain.IfLongNotificationDelay
)

// executingNotice shows the "executing" notice according to a NotificationMode.
type executingNotice struct {
	mu     sync.Mutex
	timer  *time.Timer
	shown  ports.ExecutingNotice
	hidden bool
}

func startNotice(n ports.Notifier, mode domain.NotificationMode, title string, terminate func()) *executingNotice {
	e := &executingNotice{}
	show := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if !e.hidden && e.shown == nil {
			e.shown = n.Executing(title, terminate)
		}
	}

	switch mode {
	case domain.NotificationQuick:
		show()
		e.schedule(quickDuration, e.hide)
	case domain.NotificationPermanent:
		show()
	case domain.NotificationIfLong:
		e.schedule(ifLongDelay, show)
	}
	return e
}

func (e *executingNotice) schedule(d time.Duration, f func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timer = time.AfterFunc(d, f)
}

// hide removes the notice and stops any pending timer. Safe to call more than once.
func (e *executingNotice) hide() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hidden = true
	if e.timer != nil {
		e.timer.Stop()
	}
	if e.shown != nil {
		e.shown.Hide()
		e.shown = nil
	}
}
