package usecase

import (
	"context"

	"github.com/runoshun/cardflow/internal/domain"
)

// ListStagesInput contains the input for the ListStages use case.
type ListStagesInput struct {
	Config *domain.Config
}

// StageSummary describes how one stage is handled.
// Fields are ordered to minimize memory padding.
type StageSummary struct {
	Name        string   // Canonical column name
	Key         string   // Key of the [stages.<key>] section
	Label       string   // Stage label node ID, empty when unset
	Columns     []string // Column names that resolve to the stage, canonical first
	Action      domain.Action
	Stage       domain.Stage
	HasTemplate bool
}

// ListStagesOutput contains the output of the ListStages use case.
type ListStagesOutput struct {
	Stages []StageSummary
}

// ListStages reports the stage vocabulary and the policy decision for each stage.
type ListStages struct{}

// NewListStages creates a new ListStages use case.
func NewListStages() *ListStages {
	return &ListStages{}
}

// Execute lists every recognized stage in workflow order.
func (uc *ListStages) Execute(_ context.Context, in ListStagesInput) (*ListStagesOutput, error) {
	cfg := in.Config
	if cfg == nil {
		return nil, domain.ErrInvalidConfig
	}
	policy := domain.NewTransitionPolicy(cfg.Stages)

	out := &ListStagesOutput{}
	for _, s := range domain.AllStages() {
		t := policy.Decide(s)
		rule, _ := policy.Rule(s)
		columns := append([]string{s.String()}, rule.Columns...)
		out.Stages = append(out.Stages, StageSummary{
			Name:        s.String(),
			Key:         s.Key(),
			Label:       rule.Label,
			Columns:     columns,
			Action:      t.Action,
			Stage:       s,
			HasTemplate: rule.Template != "",
		})
	}
	return out, nil
}
