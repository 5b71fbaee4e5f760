package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/shcmd/internal/domain"
)

func TestLoadWritesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	loader := NewFileLoaderFs(fs, "/home/u/.shcmd/config.yaml")

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)

	exists, err := afero.Exists(fs, "/home/u/.shcmd/config.yaml")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "1", cfg.ConfigFormatVersion)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.NotEmpty(t, cfg.ShellCommands)
	assert.Equal(t, "bash", cfg.GetDefaultShellID(domain.PlatformLinux))
}

func TestSaveRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	loader := NewFileLoaderFs(fs, "/cfg/config.yaml")

	cfg := domain.Config{
		VaultRoot: "/vault",
		ShellCommands: []domain.ShellCommand{{
			ID:                       "a",
			Alias:                    "Echo",
			PlatformSpecificCommands: map[string]string{"default": "echo {{title}}"},
			IgnoreErrorCodes:         []int{1, 2},
		}},
	}
	require.NoError(t, loader.Save(context.Background(), cfg))

	got, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/vault", got.VaultRoot)
	require.Len(t, got.ShellCommands, 1)
	assert.Equal(t, []int{1, 2}, got.ShellCommands[0].IgnoreErrorCodes)
	assert.Equal(t, "echo {{title}}", got.ShellCommands[0].CommandFor(domain.PlatformLinux))
}

func TestPathFromEnvironment(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/elsewhere/config.yaml")
	assert.Equal(t, filepath.Clean("/tmp/elsewhere/config.yaml"), NewFileLoader("").Path())
	assert.Equal(t, "/explicit.yaml", NewFileLoader("/explicit.yaml").Path())
}

func TestParseRejectsBadYAML(t *testing.T) {
	_, err := Parse([]byte("shell_commands: [oops"))
	assert.Error(t, err)
}

func TestBackupAndReset(t *testing.T) {
	fs := afero.NewMemMapFs()
	loader := NewFileLoaderFs(fs, "/cfg/config.yaml")
	require.NoError(t, afero.WriteFile(fs, "/cfg/config.yaml", []byte("vault_root: /mine\n"), 0o600))

	backup, err := loader.Backup()
	require.NoError(t, err)
	assert.Equal(t, "/cfg/config.yaml.bak", filepath.ToSlash(backup))
	data, err := afero.ReadFile(fs, backup)
	require.NoError(t, err)
	assert.Equal(t, "vault_root: /mine\n", string(data))

	cfg, err := loader.Reset()
	require.NoError(t, err)
	assert.Empty(t, cfg.VaultRoot)

	defaults, err := DefaultConfig()
	require.NoError(t, err)
	loaded, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaults, loaded)
}
