// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/cardflow/internal/domain"
	"github.com/spf13/viper"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Environment variables read on top of the config file.
// For keys with several names the first one set wins; INPUT_* names are
// the inputs of the GitHub Action.
var envBindings = map[string][]string{
	"token":             {"INPUT_PAT_TOKEN", "CARDFLOW_TOKEN", "GITHUB_TOKEN"},
	"follow_up_project": {"INPUT_ADD_TO_PROJECT", "CARDFLOW_FOLLOW_UP_PROJECT"},
	"endpoint":          {"CARDFLOW_ENDPOINT"},
	"log_level":         {"CARDFLOW_LOG_LEVEL"},
	"telemetry":         {"CARDFLOW_TELEMETRY"},
}

// Loader loads configuration from the TOML file and the environment.
type Loader struct {
	path string // Path to the config file, missing file means defaults
}

// NewLoader creates a new Loader for the config file at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load returns the effective configuration: defaults <- file <- environment.
func (l *Loader) Load() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()

	if err := l.applyFile(cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, newEnv()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile returns defaults overlaid with the config file only.
func (l *Loader) LoadFile() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()
	if err := l.applyFile(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) applyFile(cfg *domain.Config) error {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", l.path, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidConfig, l.path, err)
	}
	return applyRaw(cfg, raw)
}

// newEnv returns a viper instance bound to the environment variables of envBindings.
func newEnv() *viper.Viper {
	v := viper.New()
	for key, names := range envBindings {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
	return v
}

// applyEnv overlays the values set in the environment.
func applyEnv(cfg *domain.Config, v *viper.Viper) error {
	if s := v.GetString("token"); s != "" {
		cfg.Tracker.Token = s
	}
	if s := v.GetString("follow_up_project"); s != "" {
		cfg.Tracker.FollowUpProject = s
	}
	if s := v.GetString("endpoint"); s != "" {
		cfg.Tracker.Endpoint = s
	}
	if s := v.GetString("log_level"); s != "" {
		cfg.Log.Level = strings.ToLower(s)
	}
	if v.IsSet("telemetry") {
		b, err := parseBool(v.GetString("telemetry"))
		if err != nil {
			return fmt.Errorf("%w: CARDFLOW_TELEMETRY: %w", domain.ErrInvalidConfig, err)
		}
		cfg.Telemetry.Enabled = b
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "", "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", s)
	}
}

// applyRaw overlays the raw TOML map onto cfg and collects warnings for unknown keys.
// A key present in the file overrides the default even when its value is empty.
func applyRaw(cfg *domain.Config, raw map[string]any) error {
	var warnings []string
	unknown := func(section, key string) {
		warnings = append(warnings, fmt.Sprintf("unknown key in [%s]: %s", section, key))
	}

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
			continue
		}
		switch section {
		case "tracker":
			for k, v := range m {
				switch k {
				case "endpoint":
					if s, ok := v.(string); ok {
						cfg.Tracker.Endpoint = s
					}
				case "follow_up_project":
					if s, ok := v.(string); ok {
						cfg.Tracker.FollowUpProject = s
					}
				case "timeout":
					d, err := parseDuration(v)
					if err != nil {
						return fmt.Errorf("%w: tracker.timeout: %w", domain.ErrInvalidConfig, err)
					}
					cfg.Tracker.Timeout = d
				case "retry_max_elapsed":
					d, err := parseDuration(v)
					if err != nil {
						return fmt.Errorf("%w: tracker.retry_max_elapsed: %w", domain.ErrInvalidConfig, err)
					}
					cfg.Tracker.RetryMaxElapsed = d
				default:
					unknown(section, k)
				}
			}
		case "labels":
			for k, v := range m {
				switch k {
				case "sentinel":
					if s, ok := v.(string); ok {
						cfg.Labels.Sentinel = s
					}
				default:
					unknown(section, k)
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					if s, ok := v.(string); ok {
						cfg.Log.Level = s
					}
				case "file":
					if s, ok := v.(string); ok {
						cfg.Log.File = s
					}
				default:
					unknown(section, k)
				}
			}
		case "telemetry":
			for k, v := range m {
				switch k {
				case "enabled":
					if b, ok := v.(bool); ok {
						cfg.Telemetry.Enabled = b
					}
				default:
					unknown(section, k)
				}
			}
		case "stages":
			warnings = append(warnings, parseStagesSection(cfg, m)...)
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	cfg.Warnings = append(cfg.Warnings, warnings...)
	return nil
}

// parseStagesSection applies [stages.<key>] tables onto the stage rules.
func parseStagesSection(cfg *domain.Config, raw map[string]any) []string {
	var warnings []string
	if cfg.Stages == nil {
		cfg.Stages = make(domain.StageRules)
	}

	for key, value := range raw {
		stage, ok := domain.ParseStageKey(key)
		sub, isTable := value.(map[string]any)
		if !ok || !isTable {
			warnings = append(warnings, fmt.Sprintf("unknown stage in [stages]: %s", key))
			continue
		}

		rule := cfg.Stages[stage]
		for k, v := range sub {
			switch k {
			case "label":
				if s, ok := v.(string); ok {
					rule.Label = s
				}
			case "template":
				if s, ok := v.(string); ok {
					rule.Template = s
				}
			case "columns":
				rule.Columns = toStrings(v)
			default:
				warnings = append(warnings, fmt.Sprintf("unknown key in [stages.%s]: %s", key, k))
			}
		}
		cfg.Stages[stage] = rule
	}
	return warnings
}

// parseDuration accepts a Go duration string or a number of seconds.
func parseDuration(v any) (time.Duration, error) {
	switch d := v.(type) {
	case string:
		return time.ParseDuration(d)
	case int64:
		return time.Duration(d) * time.Second, nil
	case float64:
		return time.Duration(d * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("unsupported duration %v", v)
	}
}

func toStrings(v any) []string {
	switch list := v.(type) {
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{list}
	default:
		return nil
	}
}
