// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/runoshun/cardflow/internal/domain"
	"github.com/runoshun/cardflow/internal/infra/config"
	"github.com/runoshun/cardflow/internal/infra/ghaction"
	"github.com/runoshun/cardflow/internal/infra/git"
	"github.com/runoshun/cardflow/internal/infra/github"
	"github.com/runoshun/cardflow/internal/infra/logging"
	"github.com/runoshun/cardflow/internal/infra/telemetry"
	"github.com/runoshun/cardflow/internal/usecase"
)

// ServiceName identifies cardflow in telemetry.
const ServiceName = "cardflow"

// Config holds the application paths and overrides.
type Config struct {
	WorkDir    string // Directory the CLI was started in
	ConfigPath string // Config file path, relative paths resolve against WorkDir
	LogLevel   string // Overrides [log] level when set
	Version    string
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager
	Events        domain.EventSource
	Outputs       domain.OutputWriter
	Repository    domain.RepositoryLocator
	Tracker       domain.Tracker // Built from config on Open when nil

	// Pointer fields
	Logger *slog.Logger
	Stderr io.Writer // Run log and telemetry output

	// Configuration
	Config Config
}

// New creates a new Container for the given working directory.
// The Actions runtime adapters read their locations from the environment.
func New(dir, version string) *Container {
	c := &Container{
		Events:     ghaction.EventReaderFromEnv(),
		Outputs:    ghaction.OutputWriterFromEnv(),
		Repository: git.NewLocator(dir),
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})),
		Stderr: os.Stderr,
		Config: Config{
			WorkDir:    dir,
			ConfigPath: domain.DefaultConfigPath,
			Version:    version,
		},
	}
	c.UseConfigFile(domain.DefaultConfigPath)
	return c
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, loader domain.ConfigLoader, manager domain.ConfigManager, tracker domain.Tracker, stderr io.Writer) *Container {
	if stderr == nil {
		stderr = io.Discard
	}
	return &Container{
		ConfigLoader:  loader,
		ConfigManager: manager,
		Tracker:       tracker,
		Logger:        slog.New(slog.NewTextHandler(stderr, nil)),
		Stderr:        stderr,
		Config:        cfg,
	}
}

// UseConfigFile points the config loader and manager at path.
func (c *Container) UseConfigFile(path string) {
	c.Config.ConfigPath = path
	resolved := c.configFilePath()
	c.ConfigLoader = config.NewLoader(resolved)
	c.ConfigManager = config.NewManager(resolved)
}

func (c *Container) configFilePath() string {
	return c.resolve(c.Config.ConfigPath)
}

func (c *Container) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Config.WorkDir == "" {
		return path
	}
	return filepath.Join(c.Config.WorkDir, path)
}

// EventSource returns a reader for the given event name and payload path.
// Empty values fall back to the runner environment.
func (c *Container) EventSource(name, path string) domain.EventSource {
	if name == "" && path == "" {
		return c.Events
	}
	if name == "" {
		name = os.Getenv(ghaction.EnvEventName)
	}
	if path == "" {
		path = os.Getenv(ghaction.EnvEventPath)
	}
	return ghaction.NewEventReader(name, c.resolve(path))
}

// LoadConfig loads the effective configuration and applies CLI overrides.
func (c *Container) LoadConfig() (*domain.Config, error) {
	cfg, err := c.ConfigLoader.Load()
	if err != nil {
		return nil, err
	}
	if c.Config.LogLevel != "" {
		cfg.Log.Level = c.Config.LogLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Runtime holds the per-invocation resources built from the loaded config.
// Fields are ordered to minimize memory padding.
type Runtime struct {
	AppConfig *domain.Config
	Tracker   domain.Tracker
	RunLog    *logging.Logger
	Telemetry *telemetry.Providers
}

// Open builds the tracker, run logger and telemetry providers for cfg.
// Callers must Close the runtime.
func (c *Container) Open(ctx context.Context, cfg *domain.Config) (*Runtime, error) {
	runLog := logging.New(c.Stderr, logging.ParseLevel(cfg.Log.Level))
	if cfg.Log.File != "" {
		runLog = runLog.WithFile(c.resolve(cfg.Log.File))
	}

	providers, err := telemetry.Init(ctx, telemetry.Options{
		Writer:         c.Stderr,
		ServiceName:    ServiceName,
		ServiceVersion: c.Config.Version,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		_ = runLog.Close()
		return nil, err
	}

	tracker := c.Tracker
	if tracker == nil {
		client := github.NewClient(cfg.Tracker.Token).
			WithEndpoint(cfg.Tracker.Endpoint).
			WithRetryMaxElapsed(cfg.Tracker.RetryMaxElapsed)
		client.HTTPClient.Timeout = cfg.Tracker.Timeout
		tracker = github.NewTracker(client)
	}

	c.Logger.Debug("runtime opened", "run", runLog.RunID(), "endpoint", cfg.Tracker.Endpoint, "telemetry", cfg.Telemetry.Enabled)
	return &Runtime{
		AppConfig: cfg,
		Tracker:   tracker,
		RunLog:    runLog,
		Telemetry: providers,
	}, nil
}

// Close flushes telemetry and closes the log file.
func (r *Runtime) Close(ctx context.Context) error {
	terr := r.Telemetry.Shutdown(ctx)
	lerr := r.RunLog.Close()
	if terr != nil {
		return fmt.Errorf("shutdown telemetry: %w", terr)
	}
	return lerr
}

// UseCase factory methods

// PlanTransitionUseCase returns a new PlanTransition use case.
func (r *Runtime) PlanTransitionUseCase() *usecase.PlanTransition {
	cfg := r.AppConfig
	return usecase.NewPlanTransition(
		r.Tracker,
		domain.NewTransitionPolicy(cfg.Stages),
		domain.NewIssueCompositor(cfg.Labels.Sentinel),
		cfg.Vocabulary(),
		cfg.Tracker.FollowUpProject,
		r.RunLog,
	).WithTracer(r.Telemetry.Tracer(""))
}

// HandleCardMoveUseCase returns a new HandleCardMove use case.
func (r *Runtime) HandleCardMoveUseCase() *usecase.HandleCardMove {
	return usecase.NewHandleCardMove(r.PlanTransitionUseCase(), r.Tracker, r.RunLog).
		WithTelemetry(r.Telemetry.Tracer(""), r.Telemetry.Meter(""))
}

// ListStagesUseCase returns a new ListStages use case.
func (c *Container) ListStagesUseCase() *usecase.ListStages {
	return usecase.NewListStages()
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}
