// Package cli provides the command-line interface for cardflow.
package cli

import (
	"fmt"

	"github.com/runoshun/cardflow/internal/app"
	"github.com/runoshun/cardflow/internal/domain"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupPipeline = "pipeline"
	groupSetup    = "setup"
)

// NewRootCommand creates the root command for cardflow.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	var configPath string
	var logLevel string

	root := &cobra.Command{
		Use:   "cardflow",
		Short: "Spawn follow-up issues when project cards move",
		Long: `cardflow runs as a GitHub Action on project_card events.

When a card is moved into a stage that needs follow-up work (PLANNING,
PRODUCTION or POST-PRODUCTION), it creates a derived issue titled after the
stage, copies the source labels (minus the sentinel label), adds the stage
label, optionally files the issue in a follow-up project, and links it back
from the source issue.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil {
				return nil
			}
			if configPath != "" {
				c.UseConfigFile(configPath)
			}
			if logLevel != "" {
				c.Config.LogLevel = logLevel
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default "+domain.DefaultConfigPath+")")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	root.AddGroup(
		&cobra.Group{ID: groupPipeline, Title: "Pipeline Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	runCmd := newRunCommand(c)
	runCmd.GroupID = groupPipeline

	planCmd := newPlanCommand(c)
	planCmd.GroupID = groupPipeline

	stagesCmd := newStagesCommand(c)
	stagesCmd.GroupID = groupSetup

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	root.AddCommand(runCmd, planCmd, stagesCmd, configCmd)
	return root
}

// loadConfig loads the effective config and prints its warnings.
func loadConfig(cmd *cobra.Command, c *app.Container) (*domain.Config, error) {
	cfg, err := c.LoadConfig()
	if err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
	return cfg, nil
}
