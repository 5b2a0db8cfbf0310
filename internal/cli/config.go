package cli

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/cardflow/internal/app"
	"github.com/runoshun/cardflow/internal/domain"
	"github.com/runoshun/cardflow/internal/usecase"
	"github.com/spf13/cobra"
)

// newConfigCommand creates the config command.
func newConfigCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `Manage the cardflow configuration file.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newConfigShowCommand(c))
	cmd.AddCommand(newConfigTemplateCommand(c))
	cmd.AddCommand(newConfigInitCommand(c))

	return cmd
}

// newConfigShowCommand creates the config show subcommand.
func newConfigShowCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display effective configuration after applying defaults, the config
file and environment variables.

The tracker token is never printed; only whether one is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, c)
			if err != nil {
				return err
			}

			out, err := c.ShowConfigUseCase().Execute(cmd.Context(), usecase.ShowConfigInput{Config: cfg})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			_, _ = fmt.Fprintln(w, "[Loaded from]")
			if out.File.Exists {
				_, _ = fmt.Fprintf(w, "- %s\n", out.File.Path)
			} else {
				_, _ = fmt.Fprintf(w, "- %s (not found)\n", out.File.Path)
			}
			_, _ = fmt.Fprintln(w)

			_, _ = fmt.Fprintln(w, "[Effective Config]")
			return formatEffectiveConfig(w, cfg)
		},
	}
	return cmd
}

// formatEffectiveConfig formats the effective config in TOML format.
func formatEffectiveConfig(w io.Writer, cfg *domain.Config) error {
	token := "(not set)"
	if cfg.Tracker.Token != "" {
		token = "(set)"
	}

	tracker := map[string]any{
		"endpoint":          cfg.Tracker.Endpoint,
		"timeout":           cfg.Tracker.Timeout.String(),
		"retry_max_elapsed": cfg.Tracker.RetryMaxElapsed.String(),
		"token":             token,
	}
	if cfg.Tracker.FollowUpProject != "" {
		tracker["follow_up_project"] = cfg.Tracker.FollowUpProject
	}

	stages := make(map[string]any, len(cfg.Stages))
	for _, s := range domain.AllStages() {
		rule, ok := cfg.Stages[s]
		if !ok {
			continue
		}
		entry := map[string]any{}
		if rule.Label != "" {
			entry["label"] = rule.Label
		}
		if len(rule.Columns) > 0 {
			entry["columns"] = rule.Columns
		}
		if rule.Template != "" {
			entry["template"] = rule.Template
		}
		stages[s.Key()] = entry
	}

	output := map[string]any{
		"tracker":   tracker,
		"labels":    cfg.Labels,
		"log":       cfg.Log,
		"telemetry": map[string]any{"enabled": cfg.Telemetry.Enabled},
		"stages":    stages,
	}

	if err := toml.NewEncoder(w).Encode(output); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// newConfigTemplateCommand creates the config template subcommand.
func newConfigTemplateCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Output configuration template",
		Long: `Output a commented configuration file template to stdout.

The template is rendered from the built-in defaults, so it works even when
the existing config file is broken.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ShowConfigUseCase().Execute(cmd.Context(), usecase.ShowConfigInput{
				Config:   domain.NewDefaultConfig(),
				Template: true,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out.Template)
			return nil
		},
	}
	return cmd
}

// newConfigInitCommand creates the config init subcommand.
func newConfigInitCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file",
		Long: `Create the configuration file with the default template.

Fails if the file already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.InitConfigUseCase().Execute(cmd.Context(), usecase.InitConfigInput{})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config: %s\n", out.Path)
			return nil
		},
	}
	return cmd
}
