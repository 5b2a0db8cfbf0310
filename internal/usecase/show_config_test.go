package usecase

import (
	"context"
	"testing"

	"github.com/runoshun/cardflow/internal/domain"
	"github.com/runoshun/cardflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowConfig_Execute(t *testing.T) {
	manager := &testutil.MockConfigManager{
		Info: domain.ConfigInfo{
			Path:    "/repo/.github/cardflow.toml",
			Content: "[labels]\nsentinel = \"LA_x\"\n",
			Exists:  true,
		},
	}
	cfg := domain.NewDefaultConfig()
	cfg.Warnings = []string{"unknown key: foo"}

	uc := NewShowConfig(manager)
	out, err := uc.Execute(context.Background(), ShowConfigInput{Config: cfg})

	require.NoError(t, err)
	assert.True(t, out.File.Exists)
	assert.Contains(t, out.File.Content, "sentinel")
	assert.Equal(t, []string{"unknown key: foo"}, out.Warnings)
	assert.Empty(t, out.Template)
}

func TestShowConfig_Execute_Template(t *testing.T) {
	uc := NewShowConfig(&testutil.MockConfigManager{})

	out, err := uc.Execute(context.Background(), ShowConfigInput{Config: domain.NewDefaultConfig(), Template: true})

	require.NoError(t, err)
	assert.Contains(t, out.Template, "[stages.planning]")
	assert.Contains(t, out.Template, "[stages.post-production]")
	assert.NotContains(t, out.Template, "[stages.to-do]")
}

func TestShowConfig_Execute_TemplateWithoutConfig(t *testing.T) {
	uc := NewShowConfig(&testutil.MockConfigManager{})

	_, err := uc.Execute(context.Background(), ShowConfigInput{Template: true})

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
