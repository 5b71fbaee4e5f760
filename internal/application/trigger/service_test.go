package trigger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/shcmd/internal/application/execution"
	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/pkg/logger"
)

type recordingExecutor struct {
	mu       sync.Mutex
	requests []execution.Request
}

func (r *recordingExecutor) Execute(_ context.Context, req execution.Request) (domain.ExecutionOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return domain.ExecutionOutcome{CommandID: req.Command.ID, State: domain.StateDone, Succeeded: true}, nil
}

func (r *recordingExecutor) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, req := range r.requests {
		ids = append(ids, req.Command.ID)
	}
	return ids
}

type chanSubscriber struct {
	ch chan domain.Event
}

func (c chanSubscriber) Subscribe(context.Context) (<-chan domain.Event, error) {
	return c.ch, nil
}

func testConfig() domain.Config {
	return domain.Config{
		VaultRoot: "/vault",
		ShellCommands: []domain.ShellCommand{
			{ID: "any-md", Events: []domain.EventBinding{{Type: domain.EventFileModified, Pattern: "**/*.md"}}},
			{ID: "journal", Events: []domain.EventBinding{{Type: domain.EventFileModified, Pattern: "journal/*.md"}}},
			{ID: "created", Events: []domain.EventBinding{{Type: domain.EventFileCreated}}},
			{ID: "started", Events: []domain.EventBinding{{Type: domain.EventWatchStarted}}},
			{ID: "unbound"},
		},
	}
}

func ids(cmds []domain.ShellCommand) []string {
	var out []string
	for _, c := range cmds {
		out = append(out, c.ID)
	}
	return out
}

func TestMatching(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name  string
		event domain.Event
		want  []string
	}{
		{"nested markdown", domain.Event{Type: domain.EventFileModified, FilePath: "/vault/a/b.md"}, []string{"any-md"}},
		{"journal", domain.Event{Type: domain.EventFileModified, FilePath: "/vault/journal/today.md"}, []string{"any-md", "journal"}},
		{"pattern misses", domain.Event{Type: domain.EventFileModified, FilePath: "/vault/a.txt"}, nil},
		{"no pattern", domain.Event{Type: domain.EventFileCreated, FilePath: "/vault/x.png"}, []string{"created"}},
		{"non-file event", domain.Event{Type: domain.EventWatchStarted}, []string{"started"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Matching(cfg, tt.event)))
		})
	}
}

func TestHandleBuildsRequests(t *testing.T) {
	exec := &recordingExecutor{}
	s := &Service{Config: testConfig(), Executor: exec, Logger: logger.NewNop(), Subscriber: chanSubscriber{}}

	event := domain.Event{Type: domain.EventFileCreated, FilePath: "/vault/new.md", OccurredAt: time.Now()}
	outcomes := s.Handle(context.Background(), event)
	require.Len(t, outcomes, 1)

	req := exec.requests[0]
	require.NotNil(t, req.Document)
	assert.Equal(t, "/vault/new.md", req.Document.Path)
	require.NotNil(t, req.Event)
	assert.Equal(t, domain.EventFileCreated, req.Event.Type)
}

func TestHandleDropsEventsWhileSettling(t *testing.T) {
	exec := &recordingExecutor{}
	s := &Service{Config: testConfig(), Executor: exec, Logger: logger.NewNop(), Settle: time.Hour}

	first := domain.Event{Type: domain.EventFileModified, FilePath: "/vault/a.md", OccurredAt: time.Now()}
	s.Handle(context.Background(), first)
	echo := domain.Event{Type: domain.EventFileModified, FilePath: "/vault/a.md", OccurredAt: time.Now()}
	assert.Empty(t, s.Handle(context.Background(), echo))

	other := domain.Event{Type: domain.EventFileModified, FilePath: "/vault/b.md", OccurredAt: time.Now()}
	assert.Len(t, s.Handle(context.Background(), other), 1)
	assert.Equal(t, []string{"any-md", "any-md"}, exec.ids())
}

func TestRunStopsWhenSubscriptionCloses(t *testing.T) {
	exec := &recordingExecutor{}
	ch := make(chan domain.Event, 1)
	s := &Service{Config: testConfig(), Executor: exec, Logger: logger.NewNop(), Subscriber: chanSubscriber{ch: ch}}

	ch <- domain.Event{Type: domain.EventWatchStarted}
	close(ch)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"started"}, exec.ids())
}

func TestRunRequiresDependencies(t *testing.T) {
	assert.Error(t, (&Service{}).Run(context.Background()))
}

func TestConsumeStopsOnCancel(t *testing.T) {
	exec := &recordingExecutor{}
	s := &Service{Config: testConfig(), Executor: exec, Logger: logger.NewNop(), Subscriber: chanSubscriber{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Consume(ctx, make(chan domain.Event))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, exec.ids())
}
