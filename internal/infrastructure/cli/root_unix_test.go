//go:build !windows

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/shcmd/internal/domain"
)

const testConfig = `
default_shells:
  linux: sh
  darwin: sh
execution_notification_mode: disabled
custom_variables:
  - id: 11111111-1111-1111-1111-111111111111
    name: project
shell_commands:
  - id: greet
    alias: Greet
    platform_specific_commands:
      default: echo hello {{_project}}
    output_handlers:
      stdout: ignore
      stderr: ignore
  - id: fail
    alias: Fail three
    platform_specific_commands:
      default: exit 3
    output_handlers:
      stdout: ignore
      stderr: ignore
  - id: on-demand
    platform_specific_commands:
      default: echo {{event_type}} > event.txt
    output_handlers:
      stdout: ignore
      stderr: ignore
    events:
      - type: manual
storage:
  driver: file
  path: %STORE%
logging:
  level: error
`

type cliFixture struct {
	configPath string
	vault      string
}

func newCLIFixture(t *testing.T) cliFixture {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()
	vault := filepath.Join(dir, "vault")
	require.NoError(t, os.MkdirAll(vault, 0o755))

	configPath := filepath.Join(dir, "config.yaml")
	cfg := strings.ReplaceAll(testConfig, "%STORE%", filepath.Join(dir, "store"))
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o600))
	return cliFixture{configPath: configPath, vault: vault}
}

// run executes one CLI invocation and returns its stdout and exit code.
func (f cliFixture) run(t *testing.T, args ...string) (string, int) {
	t.Helper()
	root, session := NewRootCmd(Options{})
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--config", f.configPath, "--vault", f.vault}, args...))

	err := root.ExecuteContext(context.Background())
	if session.Container != nil {
		require.NoError(t, session.Container.Close())
	}
	return out.String(), exitCode(err, &errOut)
}

func TestListFiltersCommands(t *testing.T) {
	f := newCLIFixture(t)

	out, code := f.run(t, "list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Greet")
	assert.Contains(t, out, "Fail three")

	out, code = f.run(t, "list", "--filter", "grt")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Greet")
	assert.NotContains(t, out, "Fail three")
}

func TestVariableLifecycle(t *testing.T) {
	f := newCLIFixture(t)

	_, code := f.run(t, "vars", "get", "project")
	assert.Equal(t, 1, code)

	_, code = f.run(t, "vars", "set", "_project", "shcmd", "docs")
	require.Equal(t, 0, code)
	out, code := f.run(t, "vars", "get", "project")
	require.Equal(t, 0, code)
	assert.Equal(t, "shcmd docs\n", out)

	out, code = f.run(t, "vars", "add", "ticket", "--default", "none")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "{{_ticket}}")

	out, code = f.run(t, "vars", "get", "ticket")
	require.Equal(t, 0, code)
	assert.Equal(t, "none\n", out)

	_, code = f.run(t, "vars", "add", "ticket")
	assert.Equal(t, 1, code, "duplicate names are rejected")

	_, code = f.run(t, "vars", "remove", "ticket")
	require.Equal(t, 0, code)
	_, code = f.run(t, "vars", "get", "ticket")
	assert.Equal(t, 1, code)
}

func TestRunReportsExitCodeAndRecordsHistory(t *testing.T) {
	f := newCLIFixture(t)

	_, code := f.run(t, "run", "Fail three")
	assert.Equal(t, 3, code)

	_, code = f.run(t, "vars", "set", "project", "x")
	require.Equal(t, 0, code)
	_, code = f.run(t, "run", "greet")
	assert.Equal(t, 0, code)

	out, code := f.run(t, "history", "export")
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var first, second domain.HistoryRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "fail", first.CommandID)
	require.NotNil(t, first.ExitCode)
	assert.Equal(t, 3, *first.ExitCode)
	assert.Equal(t, "greet", second.CommandID)
	assert.Equal(t, "echo hello x", second.Command)
	assert.True(t, second.Success)
}

func TestUnknownCommandIsAnError(t *testing.T) {
	f := newCLIFixture(t)

	_, code := f.run(t, "run", "nope")
	assert.Equal(t, 1, code)
}

func TestManualEventRunsBoundCommands(t *testing.T) {
	f := newCLIFixture(t)

	_, code := f.run(t, "event", "manual")
	require.Equal(t, 0, code)

	data, err := os.ReadFile(filepath.Join(f.vault, "event.txt"))
	require.NoError(t, err)
	assert.Equal(t, "manual\n", string(data))

	_, code = f.run(t, "event", "file-modified")
	assert.Equal(t, 1, code, "file events need --file")
}

func TestConfigGetAndPreview(t *testing.T) {
	f := newCLIFixture(t)

	out, code := f.run(t, "config", "get", "default_shells.linux")
	require.Equal(t, 0, code)
	assert.Equal(t, "sh\n", out)

	out, code = f.run(t, "config", "path")
	require.Equal(t, 0, code)
	assert.Equal(t, f.configPath+"\n", out)

	_, code = f.run(t, "vars", "set", "project", "two words")
	require.Equal(t, 0, code)
	out, code = f.run(t, "preview", "greet")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "echo hello 'two words'")
}
