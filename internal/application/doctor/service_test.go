package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/shell"
)

type stubConfig struct {
	cfg domain.Config
	err error
}

func (s stubConfig) Load(context.Context) (domain.Config, error) { return s.cfg, s.err }
func (s stubConfig) Save(context.Context, domain.Config) error   { return nil }
func (s stubConfig) Path() string                                { return "/home/u/.shcmd/config.yaml" }

func find(report domain.HealthReport, name string) (domain.HealthCheck, bool) {
	for _, c := range report.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return domain.HealthCheck{}, false
}

func TestRunReportsChecks(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/vault", 0o755))
	shells, err := shell.NewRegistry(nil)
	require.NoError(t, err)

	svc := &Service{
		ConfigProvider: stubConfig{cfg: domain.Config{VaultRoot: "/vault", ConfigFormatVersion: "1"}},
		Shells:         shells,
		Fs:             fs,
		Platform:       domain.PlatformLinux,
	}
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	c, ok := find(report, "Config validation")
	require.True(t, ok)
	assert.Equal(t, domain.HealthOK, c.Status)

	c, ok = find(report, "Vault root")
	require.True(t, ok)
	assert.Equal(t, domain.HealthOK, c.Status)

	c, ok = find(report, "Default shell")
	require.True(t, ok)
	assert.Equal(t, domain.HealthOK, c.Status)

	c, ok = find(report, "Storage")
	require.True(t, ok)
	assert.Equal(t, domain.HealthWarn, c.Status)
}

func TestRunFlagsMissingVault(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfig{cfg: domain.Config{VaultRoot: "/missing", Storage: domain.StorageSettings{Driver: "postgres"}}},
		Fs:             afero.NewMemMapFs(),
	}
	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Healthy())

	c, _ := find(report, "Vault root")
	assert.Equal(t, domain.HealthError, c.Status)
	c, _ = find(report, "Config validation")
	assert.Equal(t, domain.HealthError, c.Status)
	assert.Contains(t, c.Details, "storage.driver")
}

func TestRunFailsOnLoadError(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfig{err: errors.New("broken yaml")}}
	report, err := svc.Run(context.Background())
	assert.Error(t, err)
	require.Len(t, report.Checks, 1)
	assert.Equal(t, domain.HealthError, report.Checks[0].Status)
}
