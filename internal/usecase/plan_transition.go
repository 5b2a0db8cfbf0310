package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/cardflow/internal/domain"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// PlanTransitionInput contains the parameters for planning a transition.
type PlanTransitionInput struct {
	Event domain.CardMoveEvent
}

// PlanTransitionOutput contains the planned mutations of a run.
// Plan is nil when the event needs no action; Reason says why.
type PlanTransitionOutput struct {
	Plan       *TransitionPlan
	Resolution *domain.Resolution // Set once the column was resolved
	Reason     string
}

// TransitionPlan is everything a run needs to apply its mutations.
// Fields are ordered to minimize memory padding.
type TransitionPlan struct {
	Event           domain.CardMoveEvent
	Source          domain.Issue
	NewIssue        domain.NewIssueSpec
	FollowUpProject string // Empty when no follow-up project is configured
	Steps           []Step // Write steps in execution order
	Resolution      domain.Resolution
	Transition      domain.Transition
	Target          domain.CardTarget
}

// PlanTransition reads the issue context of a card move and decides what to write.
// It performs the single read of a run and never writes.
type PlanTransition struct {
	tracker    domain.Tracker
	policy     *domain.TransitionPolicy
	compositor *domain.IssueCompositor
	logger     domain.Logger
	tracer     trace.Tracer
	vocab      domain.Vocabulary
	followUp   string
}

// NewPlanTransition creates a new PlanTransition use case.
func NewPlanTransition(
	tracker domain.Tracker,
	policy *domain.TransitionPolicy,
	compositor *domain.IssueCompositor,
	vocab domain.Vocabulary,
	followUpProject string,
	logger domain.Logger,
) *PlanTransition {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &PlanTransition{
		tracker:    tracker,
		policy:     policy,
		compositor: compositor,
		vocab:      vocab,
		followUp:   followUpProject,
		logger:     logger,
		tracer:     tracenoop.NewTracerProvider().Tracer(""),
	}
}

// WithTracer sets the tracer used for the fetch span.
func (uc *PlanTransition) WithTracer(tracer trace.Tracer) *PlanTransition {
	uc.tracer = tracer
	return uc
}

// Execute plans the transition for the event.
func (uc *PlanTransition) Execute(ctx context.Context, in PlanTransitionInput) (*PlanTransitionOutput, error) {
	ev := in.Event

	if ev.EventName != domain.EventProjectCard {
		return &PlanTransitionOutput{Reason: fmt.Sprintf("event %q is not %s", ev.EventName, domain.EventProjectCard)}, nil
	}
	if ev.Action != domain.ActionMoved {
		return &PlanTransitionOutput{Reason: fmt.Sprintf("card action %q is not %s", ev.Action, domain.ActionMoved)}, nil
	}

	target, err := domain.ParseCardTarget(ev)
	if err != nil {
		return nil, err
	}
	owner := ev.RepositoryOwner()
	if owner == "" || ev.RepositoryName == "" {
		return nil, domain.ErrRepositoryRequired
	}

	var issueCtx *domain.IssueContext
	err = runStep(ctx, uc.tracer, StepFetch, func(ctx context.Context) error {
		var ferr error
		issueCtx, ferr = uc.tracker.FetchIssueContext(ctx, owner, ev.RepositoryName, target.IssueNumber)
		return ferr
	})
	if err != nil {
		return nil, &StepError{Step: StepFetch, Err: err}
	}
	source := issueCtx.Issue

	res, err := domain.ResolveStage(issueCtx.Projects, target.ProjectID, ev.ColumnID, uc.vocab)
	if err != nil {
		return nil, fmt.Errorf("resolve stage of issue #%d: %w", source.Number, err)
	}
	uc.logger.Debug(source.Number, "resolve", fmt.Sprintf("column %q in project %q -> %s", res.Column.Name, res.Project.Name, res.Stage))

	out := &PlanTransitionOutput{Resolution: &res}
	transition := uc.policy.Decide(res.Stage)
	if transition.Action == domain.ActionSkip {
		out.Reason = fmt.Sprintf("stage %q needs no follow-up", res.Name)
		return out, nil
	}

	out.Plan = &TransitionPlan{
		Event:           ev,
		Target:          target,
		Source:          source,
		Resolution:      res,
		Transition:      transition,
		NewIssue:        uc.compositor.Compose(source, transition),
		FollowUpProject: uc.followUp,
		Steps:           uc.writeSteps(),
	}
	return out, nil
}

// writeSteps lists the mutations of a CreateAndLink transition.
func (uc *PlanTransition) writeSteps() []Step {
	steps := []Step{StepCreateIssue}
	if !uc.tracker.Capabilities().LabelsOnCreate {
		steps = append(steps, StepApplyLabels)
	}
	if uc.followUp != "" {
		steps = append(steps, StepAddToProject)
	}
	return append(steps, StepBackLink)
}
