package preaction

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/parsing"
	"github.com/doeshing/shcmd/internal/ports"
	"github.com/doeshing/shcmd/internal/variables"
)

type mockConfirmer struct{ mock.Mock }

func (m *mockConfirmer) Confirm(ctx context.Context, title, command string) (bool, error) {
	args := m.Called(ctx, title, command)
	return args.Bool(0), args.Error(1)
}

type mockPresenter struct{ mock.Mock }

func (m *mockPresenter) Present(ctx context.Context, form ports.PromptForm) ([]string, bool, error) {
	args := m.Called(ctx, form)
	values, _ := args.Get(0).([]string)
	return values, args.Bool(1), args.Error(2)
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

func (m *memStore) Delete(context.Context, string) error { return nil }

func (m *memStore) All(context.Context) (map[string]string, error) { return m.values, nil }

type step struct {
	name    string
	proceed bool
	err     error
	ran     *[]string
}

func (s step) Name() string { return s.name }

func (s step) Run(context.Context, *parsing.Process, *domain.Event) (bool, error) {
	*s.ran = append(*s.ran, s.name)
	return s.proceed, s.err
}

func TestPipelineShortCircuits(t *testing.T) {
	var ran []string
	pl := Pipeline{
		step{name: "a", proceed: true, ran: &ran},
		step{name: "b", proceed: false, ran: &ran},
		step{name: "c", proceed: true, ran: &ran},
	}

	ok, err := pl.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, ran)
}

func TestPipelineWrapsErrors(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	pl := Pipeline{step{name: "a", err: boom, ran: &ran}, step{name: "b", proceed: true, ran: &ran}}

	ok, err := pl.Run(context.Background(), nil, nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, ran)
}

func TestEmptyPipelineProceeds(t *testing.T) {
	ok, err := Pipeline{}.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBuildOrder(t *testing.T) {
	disabled := false
	cmd := domain.ShellCommand{
		ID:               "c",
		ConfirmExecution: true,
		Preactions: []domain.PreactionConfig{
			{Type: domain.PreactionPrompt, Prompt: &domain.PromptConfig{Title: "first"}},
			{Type: domain.PreactionPrompt, Enabled: &disabled, Prompt: &domain.PromptConfig{Title: "skipped"}},
			{Type: domain.PreactionPrompt, Prompt: &domain.PromptConfig{Title: "second"}},
		},
	}

	pl, err := Build(cmd, Deps{Confirmer: &mockConfirmer{}, Presenter: &mockPresenter{}, Store: &memStore{}})
	require.NoError(t, err)

	var names []string
	for _, p := range pl {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"confirmation", "prompt first", "prompt second"}, names)

	_, err = Build(domain.ShellCommand{Preactions: []domain.PreactionConfig{{Type: "teleport"}}}, Deps{})
	assert.ErrorContains(t, err, "unknown type")

	_, err = Build(domain.ShellCommand{ConfirmExecution: true}, Deps{})
	assert.Error(t, err)
}

func newProcess(t *testing.T, store ports.VariableStore, fields ...parsing.Field) *parsing.Process {
	t.Helper()
	reg, err := variables.NewDefaultRegistry(domain.Config{
		CustomVariables: []domain.CustomVariable{{ID: "v-name", Name: "name"}},
	})
	require.NoError(t, err)
	return parsing.New(reg, &variables.Context{Store: store}, fields...)
}

func TestConfirmationShowsParsedFields(t *testing.T) {
	p := newProcess(t, &memStore{},
		parsing.Field{Name: domain.FieldCommand, Template: "echo {{_name}}", Deferred: true},
		parsing.Field{Name: domain.FieldAlias, Template: "Greet{{newline|raw}}"},
	)
	ok, err := p.Process(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	confirmer := &mockConfirmer{}
	confirmer.On("Confirm", mock.Anything, "Greet\n", "echo {{_name}}").Return(false, nil).Once()

	proceed, err := NewConfirmation(confirmer).Run(context.Background(), p, nil)
	require.NoError(t, err)
	assert.False(t, proceed)
	confirmer.AssertExpectations(t)
}

func TestPromptStoresValuesBeforeProceeding(t *testing.T) {
	if domain.CurrentPlatform() != domain.PlatformLinux {
		t.Skip("the default value below resolves to the host's name")
	}

	store := &memStore{}
	p := newProcess(t, store, parsing.Field{Name: domain.FieldCommand, Template: "echo {{_name}}", Deferred: true})
	ok, err := p.Process(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	presenter := &mockPresenter{}
	presenter.On("Present", mock.Anything, mock.MatchedBy(func(form ports.PromptForm) bool {
		return form.Title == "Who?" && len(form.Fields) == 1 && form.Fields[0].DefaultValue == "Linux"
	})).Return([]string{"Ada Lovelace"}, true, nil).Once()

	prompt := NewPrompt(domain.PromptConfig{
		Title:  "Who?",
		Fields: []domain.PromptField{{Label: "Name", DefaultValue: "{{operating_system}}", TargetVariableID: "v-name", Required: true}},
	}, presenter, store)

	proceed, err := prompt.Run(context.Background(), p, nil)
	require.NoError(t, err)
	require.True(t, proceed)

	v, found, _ := store.Get(context.Background(), "v-name")
	assert.True(t, found)
	assert.Equal(t, "Ada Lovelace", v)

	ok, err = p.ProcessRest(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	res, _ := p.Result(domain.FieldCommand)
	assert.Equal(t, "echo Ada Lovelace", res.Content())
	presenter.AssertExpectations(t)
}

func TestPromptCancelledAndRequired(t *testing.T) {
	store := &memStore{}
	p := newProcess(t, store)
	cfg := domain.PromptConfig{Fields: []domain.PromptField{{Label: "Name", TargetVariableID: "v-name", Required: true}}}

	cancelled := &mockPresenter{}
	cancelled.On("Present", mock.Anything, mock.Anything).Return(nil, false, nil)
	proceed, err := NewPrompt(cfg, cancelled, store).Run(context.Background(), p, nil)
	require.NoError(t, err)
	assert.False(t, proceed)

	blank := &mockPresenter{}
	blank.On("Present", mock.Anything, mock.Anything).Return([]string{"  "}, true, nil)
	proceed, err = NewPrompt(cfg, blank, store).Run(context.Background(), p, nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.False(t, proceed)

	_, found, _ := store.Get(context.Background(), "v-name")
	assert.False(t, found, "nothing is stored when the prompt does not proceed")
}

func TestPromptLabelErrors(t *testing.T) {
	p := newProcess(t, &memStore{})
	presenter := &mockPresenter{}

	proceed, err := NewPrompt(domain.PromptConfig{
		Fields: []domain.PromptField{{Label: "{{nonexistent}}"}},
	}, presenter, &memStore{}).Run(context.Background(), p, nil)

	assert.False(t, proceed)
	assert.ErrorContains(t, err, "nonexistent")
	presenter.AssertNotCalled(t, "Present", mock.Anything, mock.Anything)
}
