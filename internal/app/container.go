package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"

	configvalidator "github.com/doeshing/shcmd/internal/application/config"
	"github.com/doeshing/shcmd/internal/application/doctor"
	"github.com/doeshing/shcmd/internal/application/execution"
	"github.com/doeshing/shcmd/internal/application/trigger"
	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/infrastructure/config"
	"github.com/doeshing/shcmd/internal/infrastructure/document"
	"github.com/doeshing/shcmd/internal/infrastructure/events"
	"github.com/doeshing/shcmd/internal/infrastructure/storage"
	"github.com/doeshing/shcmd/internal/pkg/logger"
	"github.com/doeshing/shcmd/internal/ports"
	"github.com/doeshing/shcmd/internal/shell"
	"github.com/doeshing/shcmd/internal/variables"
)

// Options configure BuildContainer.
type Options struct {
	ConfigPath string
	// VaultRoot overrides vault_root from the config file.
	VaultRoot string
	Verbose   bool
}

// Container wires up application services with infrastructure adapters.
// The terminal adapters (confirmer, prompt presenter, notifier, clipboard) are left
// for the CLI to attach with AttachUI.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	// ConfigErr holds validation problems of the loaded config; commands still run.
	ConfigErr error

	Logger    *logger.Logger
	Fs        afero.Fs
	Shells    *shell.Registry
	Variables *variables.Registry
	Store     storage.Store
	Bus       *events.Bus
	Documents *document.Collector

	ExecutionService *execution.Service
	TriggerService   *trigger.Service
	DoctorService    *doctor.Service
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if opts.VaultRoot != "" {
		cfg.VaultRoot = opts.VaultRoot
	}
	if cfg.VaultRoot == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.VaultRoot = wd
		}
	}

	level := cfg.Logging.Level
	if opts.Verbose {
		level = "debug"
	}
	log := logger.New(logger.Options{Level: level, Pretty: cfg.Logging.Pretty, Output: os.Stderr})

	configErr := configvalidator.Validate(cfg)
	if configErr != nil {
		log.Warn("configuration has problems", map[string]interface{}{"error": configErr.Error()})
	}

	shells, err := shell.NewRegistry(cfg.CustomShells)
	if err != nil {
		log.Warn("some custom shells were skipped", map[string]interface{}{"error": err.Error()})
	}
	vars, err := variables.NewDefaultRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("build variables: %w", err)
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if store == nil {
		return nil, err
	}
	if err != nil {
		log.Warn("storage fallback", map[string]interface{}{"error": err.Error(), "path": store.Path()})
	}

	fs := afero.NewOsFs()
	bus := events.NewBus(log)

	executionService := &execution.Service{
		Config:    cfg,
		Shells:    shells,
		Variables: vars,
		Store:     store,
		History:   store,
		Logger:    log,
		Fs:        fs,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Preparsed: execution.NewPreparsedCache(),
	}

	return &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		ConfigErr:      configErr,
		Logger:         log,
		Fs:             fs,
		Shells:         shells,
		Variables:      vars,
		Store:          store,
		Bus:            bus,
		Documents:      document.NewCollector(fs, cfg.VaultRoot),

		ExecutionService: executionService,
		TriggerService: &trigger.Service{
			Config:     cfg,
			Subscriber: bus,
			Executor:   executionService,
			Logger:     log,
		},
		DoctorService: &doctor.Service{
			ConfigProvider: cfgLoader,
			Shells:         shells,
			Store:          store,
			History:        store,
			Fs:             fs,
		},
	}, nil
}

// UI are the interactive adapters supplied by the front end.
type UI struct {
	Confirmer ports.Confirmer
	Presenter ports.PromptPresenter
	Notifier  ports.Notifier
	Clipboard ports.Clipboard
}

// AttachUI hands the interactive adapters to the services that need them.
func (c *Container) AttachUI(ui UI) {
	c.ExecutionService.Confirmer = ui.Confirmer
	c.ExecutionService.Presenter = ui.Presenter
	c.ExecutionService.Notifier = ui.Notifier
	c.ExecutionService.Clipboard = ui.Clipboard
	c.DoctorService.Clipboard = ui.Clipboard
}

// Close releases the store and the event bus.
func (c *Container) Close() error {
	busErr := c.Bus.Close()
	if err := c.Store.Close(); err != nil {
		return err
	}
	return busErr
}
