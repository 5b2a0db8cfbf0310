package usecase

import (
	"context"
	"testing"

	"github.com/runoshun/cardflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListStages_Execute(t *testing.T) {
	cfg := domain.NewDefaultConfig()
	cfg.Stages[domain.StagePlanning] = domain.StageRule{
		Label:    "LA_planning",
		Template: "plan",
		Columns:  []string{"Pre-Production"},
	}

	out, err := NewListStages().Execute(context.Background(), ListStagesInput{Config: cfg})
	require.NoError(t, err)
	require.Len(t, out.Stages, 5)

	byStage := make(map[domain.Stage]StageSummary)
	for _, s := range out.Stages {
		byStage[s.Stage] = s
	}

	todo := byStage[domain.StageToDo]
	assert.Equal(t, domain.ActionSkip, todo.Action)
	assert.Equal(t, []string{"TO DO"}, todo.Columns)

	planning := byStage[domain.StagePlanning]
	assert.Equal(t, domain.ActionCreateAndLink, planning.Action)
	assert.Equal(t, "planning", planning.Key)
	assert.Equal(t, "LA_planning", planning.Label)
	assert.True(t, planning.HasTemplate)
	assert.Equal(t, []string{"PLANNING", "Pre-Production"}, planning.Columns)

	post := byStage[domain.StagePostProduction]
	assert.Equal(t, domain.ActionCreateAndLink, post.Action)
	assert.False(t, post.HasTemplate)

	assert.Equal(t, domain.ActionSkip, byStage[domain.StagePublished].Action)
	assert.Equal(t, domain.StageToDo, out.Stages[0].Stage)
}

func TestListStages_Execute_NilConfig(t *testing.T) {
	_, err := NewListStages().Execute(context.Background(), ListStagesInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
