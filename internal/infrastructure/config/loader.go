package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/shcmd/assets"
	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/pkg/filesystem"
	"github.com/doeshing/shcmd/internal/ports"
)

// EnvConfigPath overrides the config location.
const EnvConfigPath = "SHCMD_CONFIG"

// FileLoader loads YAML configuration from ~/.shcmd/config.yaml (overridable via SHCMD_CONFIG).
type FileLoader struct {
	fs           afero.Fs
	overridePath string
}

// NewFileLoader builds a new loader on the OS filesystem.
func NewFileLoader(path string) *FileLoader {
	return NewFileLoaderFs(afero.NewOsFs(), path)
}

// NewFileLoaderFs builds a loader on fs.
func NewFileLoaderFs(fs afero.Fs, path string) *FileLoader {
	return &FileLoader{fs: fs, overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is created from the embedded defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := l.writeRaw(path, assets.DefaultConfigYAML); err != nil {
			return domain.Config{}, err
		}
		data = assets.DefaultConfigYAML
	}

	cfg, err := Parse(data)
	if err != nil {
		return domain.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save implements ports.ConfigProvider.
func (l *FileLoader) Save(_ context.Context, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return l.writeRaw(l.Path(), raw)
}

// Backup copies the current config file next to it with a ".bak" suffix.
func (l *FileLoader) Backup() (string, error) {
	path := l.Path()
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return "", fmt.Errorf("read config %s: %w", path, err)
	}
	backup := path + ".bak"
	if err := l.writeRaw(backup, data); err != nil {
		return "", err
	}
	return backup, nil
}

// Reset overwrites the config file with the embedded defaults.
func (l *FileLoader) Reset() (domain.Config, error) {
	if err := l.writeRaw(l.Path(), assets.DefaultConfigYAML); err != nil {
		return domain.Config{}, err
	}
	return DefaultConfig()
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() (domain.Config, error) {
	return Parse(assets.DefaultConfigYAML)
}

// Path implements ports.ConfigProvider.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandHome(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filepath.Clean(filesystem.ExpandHome(custom))
	}
	return filepath.Join(filesystem.AppDir(), "config.yaml")
}

func (l *FileLoader) writeRaw(path string, raw []byte) error {
	if err := l.fs.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := afero.WriteFile(l.fs, path, raw, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Parse decodes YAML and fills in defaults.
func Parse(data []byte) (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	cfg.VaultRoot = filesystem.ExpandHome(cfg.VaultRoot)
	cfg.WorkingDirectory = filesystem.ExpandHome(cfg.WorkingDirectory)
	if cfg.ExecutionNotificationMode == "" {
		cfg.ExecutionNotificationMode = domain.NotificationDisabled
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	cfg.Storage.Path = filesystem.ExpandHome(cfg.Storage.Path)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
