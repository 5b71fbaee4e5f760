package execution

import (
	"context"
	"sync"
	"time"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/ports"
)

type fakeNotifier struct {
	mu        sync.Mutex
	notices   []string
	errors    []string
	executing []string
	hidden    int
	terminate func()
}

func (f *fakeNotifier) Notify(message string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, message)
}

func (f *fakeNotifier) Error(message string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, message)
}

func (f *fakeNotifier) Executing(title string, terminate func()) ports.ExecutingNotice {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executing = append(f.executing, title)
	f.terminate = terminate
	return hideFunc(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.hidden++
	})
}

func (f *fakeNotifier) snapshot() (notices, errors, executing []string, hidden int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.notices...), append([]string(nil), f.errors...),
		append([]string(nil), f.executing...), f.hidden
}

type hideFunc func()

func (h hideFunc) Hide() { h() }

type fakeConfirmer struct {
	answer bool
	calls  int
}

func (f *fakeConfirmer) Confirm(context.Context, string, string) (bool, error) {
	f.calls++
	return f.answer, nil
}

type fakePresenter struct {
	values []string
	ok     bool
	calls  int
}

func (f *fakePresenter) Present(context.Context, ports.PromptForm) ([]string, bool, error) {
	f.calls++
	return f.values, f.ok, nil
}

type memStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memStore) Get(_ context.Context, id string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[id]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, id, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[id] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, id)
	return nil
}

func (m *memStore) All(context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

type memHistory struct {
	records []domain.HistoryRecord
}

func (m *memHistory) Record(_ context.Context, rec domain.HistoryRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memHistory) Recent(context.Context, int) ([]domain.HistoryRecord, error) {
	return m.records, nil
}

func (m *memHistory) Clear(context.Context) error {
	m.records = nil
	return nil
}
