package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// Config file location and defaults.
const (
	ConfigFileName          = "cardflow.toml"
	DefaultConfigPath       = ".github/" + ConfigFileName
	DefaultEndpoint         = "https://api.github.com/graphql"
	DefaultTimeout          = 30 * time.Second
	DefaultRetryMaxElapsed  = 30 * time.Second
	DefaultLogLevel         = "info"
	DefaultPlanningTemplate = `## Planning
- [ ] Outline agreed
- [ ] Script drafted
- [ ] Assets and guests listed
`
	DefaultProductionTemplate = `## Production
- [ ] Recorded
- [ ] First cut edited
- [ ] Cut reviewed
`
)

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Stages    StageRules      `toml:"-"` // Per-stage rules from [stages.<key>]
	Warnings  []string        `toml:"-"`
	Tracker   TrackerConfig   `toml:"tracker"`
	Labels    LabelsConfig    `toml:"labels"`
	Log       LogConfig       `toml:"log"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// TrackerConfig holds settings from the [tracker] section.
type TrackerConfig struct {
	Endpoint        string        `toml:"endpoint,omitempty"`          // GraphQL endpoint
	Token           string        `toml:"-"`                           // Never read from file
	FollowUpProject string        `toml:"follow_up_project,omitempty"` // Project node ID derived issues are added to
	Timeout         time.Duration `toml:"timeout,omitempty"`           // Per-request timeout
	RetryMaxElapsed time.Duration `toml:"retry_max_elapsed,omitempty"` // Retry budget, 0 disables retries
}

// LabelsConfig holds settings from the [labels] section.
type LabelsConfig struct {
	Sentinel string `toml:"sentinel,omitempty"` // Label node ID stripped from derived issues
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // debug, info, warn, error
	File  string `toml:"file,omitempty"`  // Optional log file, appended to
}

// TelemetryConfig holds settings from the [telemetry] section.
type TelemetryConfig struct {
	Enabled bool `toml:"enabled,omitempty"` // Export spans and metrics to stdout
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Tracker: TrackerConfig{
			Endpoint:        DefaultEndpoint,
			Timeout:         DefaultTimeout,
			RetryMaxElapsed: DefaultRetryMaxElapsed,
		},
		Stages: StageRules{
			StagePlanning:       {Template: DefaultPlanningTemplate},
			StageProduction:     {Template: DefaultProductionTemplate},
			StagePostProduction: {},
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Validate checks values that would make a run fail later.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Tracker.Endpoint) == "" {
		return fmt.Errorf("%w: tracker.endpoint is empty", ErrInvalidConfig)
	}
	if c.Tracker.Timeout < 0 || c.Tracker.RetryMaxElapsed < 0 {
		return fmt.Errorf("%w: negative duration in [tracker]", ErrInvalidConfig)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	for s := range c.Stages {
		if !s.IsRecognized() {
			return fmt.Errorf("%w: rule for unrecognized stage", ErrInvalidConfig)
		}
	}
	return nil
}

// Vocabulary returns the stage vocabulary including configured column aliases.
func (c *Config) Vocabulary() Vocabulary {
	return NewVocabulary(c.Stages.Aliases())
}

type stageTemplateData struct {
	Key      string
	Label    string
	Template string
	Columns  string
}

type templateData struct {
	Endpoint        string
	Timeout         string
	RetryMaxElapsed string
	LogLevel        string
	Stages          []stageTemplateData
}

// RenderConfigTemplate renders the commented configuration template for cfg.
func RenderConfigTemplate(cfg *Config) string {
	data := templateData{
		Endpoint:        cfg.Tracker.Endpoint,
		Timeout:         cfg.Tracker.Timeout.String(),
		RetryMaxElapsed: cfg.Tracker.RetryMaxElapsed.String(),
		LogLevel:        cfg.Log.Level,
	}
	for _, s := range AllStages() {
		if !s.IsActionable() {
			continue
		}
		rule := cfg.Stages[s]
		quoted := make([]string, 0, len(rule.Columns))
		for _, c := range rule.Columns {
			quoted = append(quoted, fmt.Sprintf("%q", c))
		}
		data.Stages = append(data.Stages, stageTemplateData{
			Key:      s.Key(),
			Label:    rule.Label,
			Template: rule.Template,
			Columns:  strings.Join(quoted, ", "),
		})
	}

	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		// Should never happen with valid data
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}
	return buf.String()
}
