// Package usecase contains the application use cases.
package usecase

import (
	"context"

	"github.com/runoshun/cardflow/internal/domain"
)

// ShowConfigInput contains the input for the ShowConfig use case.
type ShowConfigInput struct {
	Config   *domain.Config // Effective config, rendered when Template is set
	Template bool           // Render the template for Config instead of reading the file
}

// ShowConfigOutput contains the output of the ShowConfig use case.
type ShowConfigOutput struct {
	File     domain.ConfigInfo // Repository config file info
	Template string            // Rendered template, set only when requested
	Warnings []string          // Warnings collected while loading Config
}

// ShowConfig displays configuration file information.
type ShowConfig struct {
	configManager domain.ConfigManager
}

// NewShowConfig creates a new ShowConfig use case.
func NewShowConfig(configManager domain.ConfigManager) *ShowConfig {
	return &ShowConfig{
		configManager: configManager,
	}
}

// Execute retrieves configuration file information.
func (uc *ShowConfig) Execute(_ context.Context, in ShowConfigInput) (*ShowConfigOutput, error) {
	out := &ShowConfigOutput{File: uc.configManager.ConfigInfo()}
	if in.Config != nil {
		out.Warnings = in.Config.Warnings
	}
	if in.Template {
		if in.Config == nil {
			return nil, domain.ErrInvalidConfig
		}
		out.Template = domain.RenderConfigTemplate(in.Config)
	}
	return out, nil
}
