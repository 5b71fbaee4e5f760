package doctor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/afero"

	configvalidator "github.com/doeshing/shcmd/internal/application/config"
	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/ports"
	"github.com/doeshing/shcmd/internal/shell"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Shells         *shell.Registry
	Store          ports.VariableStore
	History        ports.HistoryRepository
	Clipboard      ports.Clipboard
	Fs             afero.Fs
	Platform       domain.Platform
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	if s.ConfigProvider == nil {
		return domain.HealthReport{}, errors.New("doctor.Service dependencies not satisfied")
	}
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("%s (format %s)", s.ConfigProvider.Path(), cfg.ConfigFormatVersion)))

	if err := configvalidator.Validate(cfg); err != nil {
		checks = append(checks, fail("Config validation", strings.ReplaceAll(err.Error(), "\n", "; ")))
	} else {
		checks = append(checks, ok("Config validation", fmt.Sprintf("%d commands, %d custom variables", len(cfg.ShellCommands), len(cfg.CustomVariables))))
	}

	checks = append(checks, s.vaultCheck(cfg))
	checks = append(checks, s.shellChecks(cfg)...)
	checks = append(checks, s.storageCheck(ctx))

	if s.Clipboard != nil && s.Clipboard.Enabled() {
		checks = append(checks, ok("Clipboard", "available"))
	} else {
		checks = append(checks, warn("Clipboard", "no clipboard tool found; the clipboard variable and handler are unavailable"))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) fs() afero.Fs {
	if s.Fs == nil {
		return afero.NewOsFs()
	}
	return s.Fs
}

func (s *Service) platform() domain.Platform {
	if s.Platform == "" {
		return domain.CurrentPlatform()
	}
	return s.Platform
}

func (s *Service) vaultCheck(cfg domain.Config) domain.HealthCheck {
	if cfg.VaultRoot == "" {
		return warn("Vault root", "vault_root is not set; the current directory is used")
	}
	dir := shell.HostWorkingDirectory(cfg.WorkingDirectory, cfg.VaultRoot)
	isDir, err := afero.IsDir(s.fs(), dir)
	if err != nil || !isDir {
		return fail("Vault root", fmt.Sprintf("working directory %s is not a directory", dir))
	}
	return ok("Vault root", dir)
}

func (s *Service) shellChecks(cfg domain.Config) []domain.HealthCheck {
	if s.Shells == nil {
		return []domain.HealthCheck{warn("Shells", "shell registry not initialized")}
	}
	var checks []domain.HealthCheck
	p := s.platform()
	def, err := s.Shells.Default(p, &cfg)
	if err != nil {
		checks = append(checks, fail("Default shell", err.Error()))
	} else {
		checks = append(checks, ok("Default shell", def.Name()))
	}

	var available, missing []string
	for _, d := range s.Shells.Describe() {
		if !slices.Contains(d.Platforms, p) {
			continue
		}
		if d.Available {
			available = append(available, d.ID)
		} else {
			missing = append(missing, d.ID)
		}
	}
	checks = append(checks, ok("Shells available", strings.Join(available, ", ")))
	if def != nil {
		for _, id := range missing {
			if strings.EqualFold(id, def.ID()) {
				checks = append(checks, fail("Default shell binary", fmt.Sprintf("%s not found on PATH", def.Binary())))
			}
		}
	}
	return checks
}

func (s *Service) storageCheck(ctx context.Context) domain.HealthCheck {
	if s.Store == nil || s.History == nil {
		return warn("Storage", "storage not initialized")
	}
	if _, err := s.Store.All(ctx); err != nil {
		return fail("Storage", fmt.Sprintf("variable values unreadable: %v", err))
	}
	records, err := s.History.Recent(ctx, 1)
	if err != nil {
		return fail("Storage", fmt.Sprintf("history unreadable: %v", err))
	}
	return ok("Storage", fmt.Sprintf("readable, %d recent record(s)", len(records)))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
