package helpers

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/shcmd/internal/domain"
)

func TestNestedMapHelpers(t *testing.T) {
	root := map[string]interface{}{"storage": map[string]interface{}{"driver": "sqlite"}, "flat": 1}

	require.True(t, SetNestedMapValue(root, []string{"storage", "path"}, "/tmp/db"))
	require.True(t, SetNestedMapValue(root, []string{"flat", "nested"}, true))
	assert.False(t, SetNestedMapValue(root, nil, 1))

	want := map[string]interface{}{
		"storage": map[string]interface{}{"driver": "sqlite", "path": "/tmp/db"},
		"flat":    map[string]interface{}{"nested": true},
	}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Errorf("unexpected map (-want +got):\n%s", diff)
	}

	v, ok := TraverseNestedMap(root, []string{"storage", "driver"})
	assert.True(t, ok)
	assert.Equal(t, "sqlite", v)
	_, ok = TraverseNestedMap(root, []string{"storage", "driver", "deeper"})
	assert.False(t, ok)
}

func TestParseYAMLValue(t *testing.T) {
	assert.Equal(t, 20, ParseYAMLValue("20"))
	assert.Equal(t, true, ParseYAMLValue("true"))
	assert.Equal(t, []interface{}{1, 2}, ParseYAMLValue("[1, 2]"))
	assert.Equal(t, "{unclosed", ParseYAMLValue("{unclosed"))
}

func TestConfigMapRoundTrip(t *testing.T) {
	cfg := domain.Config{
		VaultRoot:     "/vault",
		DefaultShells: map[domain.Platform]string{domain.PlatformLinux: "bash"},
		Storage:       domain.StorageSettings{Driver: "file", Path: "/data"},
	}

	m, err := ConfigToMap(cfg)
	require.NoError(t, err)
	require.True(t, SetNestedMapValue(m, []string{"default_shells", "linux"}, "zsh"))

	updated, err := MapToConfig(m)
	require.NoError(t, err)
	assert.Equal(t, "zsh", updated.GetDefaultShellID(domain.PlatformLinux))
	assert.Equal(t, "/vault", updated.VaultRoot)
	assert.Equal(t, "file", updated.Storage.Driver)
}

func TestSplitErrors(t *testing.T) {
	err := errors.Join(errors.New("a"), errors.Join(errors.New("b"), fmt.Errorf("c: %w", errors.New("d"))))
	assert.Equal(t, []string{"a", "b", "c: d"}, SplitErrors(err))
	assert.Nil(t, SplitErrors(nil))
}

func TestNormalizeShellName(t *testing.T) {
	assert.Equal(t, "zsh", NormalizeShellName("/bin/zsh"))
	assert.Equal(t, "pwsh", NormalizeShellName(`C:\Program Files\PowerShell\7\pwsh.exe`))
	assert.True(t, MatchShell(domain.ShellDescriptor{ID: "bash", Binary: "bash"}, "/usr/local/bin/bash"))
	assert.True(t, MatchShell(domain.ShellDescriptor{ID: "wsl", Binary: "wsl.exe"}, "WSL"))
	assert.False(t, MatchShell(domain.ShellDescriptor{ID: "sh", Binary: "sh"}, "bash"))
}

func TestAnalyzeHistory(t *testing.T) {
	zero, three := 0, 3
	records := []domain.HistoryRecord{
		{CommandID: "a", Alias: "Build", State: domain.StateDone, Success: true, ExitCode: &zero, ExecutionTimeMS: 100},
		{CommandID: "a", Alias: "Build", State: domain.StateFailed, ExitCode: &three, ExecutionTimeMS: 300},
		{CommandID: "b", State: domain.StateCancelled},
	}

	stats := AnalyzeHistory(records)
	assert.Equal(t, 3, stats.Attempts)
	assert.Equal(t, 2, stats.Ran)
	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 200*time.Millisecond, stats.AverageRunTime())
	assert.Equal(t, map[domain.ExecutionState]int{
		domain.StateDone: 1, domain.StateFailed: 1, domain.StateCancelled: 1,
	}, stats.ByState)
	assert.Equal(t, []CommandStatistic{{Command: "Build", Count: 2}, {Command: "b", Count: 1}},
		CalculateTopCommands(stats.Frequency, 5))
	assert.InDelta(t, 50.0, CalculateSuccessRate(stats.Succeeded, stats.Ran), 0.001)
}

func TestCalculateTopCommandsLimit(t *testing.T) {
	freq := map[string]int{"a": 1, "b": 3, "c": 3}
	assert.Equal(t, []CommandStatistic{{Command: "b", Count: 3}, {Command: "c", Count: 3}}, CalculateTopCommands(freq, 2))
	assert.Len(t, CalculateTopCommands(freq, 0), 3)
	assert.Zero(t, CalculateSuccessRate(0, 0))
}

func TestRenderParsingResults(t *testing.T) {
	color.NoColor = true
	content := "echo 'My Note'"
	results := map[string]domain.ParsingResult{
		domain.FieldCommand: {Succeeded: true, ParsedContent: &content, CountParsedVariables: 1, OriginalContent: "echo {{title}}"},
		domain.FieldAlias:   {Succeeded: false, ErrorMessages: []string{"{{selection}}: no selection"}, OriginalContent: "Run {{selection}}"},
	}

	var out bytes.Buffer
	RenderParsingResults(&out, results)
	assert.Equal(t,
		"alias\n  Run {{selection}}\n  - {{selection}}: no selection\n"+
			"shell_command (1 variable)\n  echo 'My Note'\n",
		out.String())
}

func TestRenderHistory(t *testing.T) {
	color.NoColor = true
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	code := 0
	records := []domain.HistoryRecord{{
		Timestamp: now.Add(-2 * time.Hour), CommandID: "a", Alias: "Build",
		Command: "make", State: domain.StateDone, Success: true, ExitCode: &code,
	}}

	var out bytes.Buffer
	RenderHistory(&out, records, now)
	assert.Contains(t, out.String(), "2 hours ago")
	assert.Contains(t, out.String(), "Build")
	assert.Contains(t, out.String(), "make")
}

func TestRenderHealthReport(t *testing.T) {
	color.NoColor = true
	report := domain.HealthReport{Checks: []domain.HealthCheck{
		{Name: "Storage", Status: domain.HealthOK, Details: "readable"},
		{Name: "Clipboard", Status: domain.HealthWarn, Details: "missing"},
	}}

	var out bytes.Buffer
	RenderHealthReport(&out, report)
	assert.Equal(t,
		"[OK] Storage - readable\n[WARN] Clipboard - missing\n1 ok, 1 warning(s), 0 error(s)\n",
		out.String())
}
