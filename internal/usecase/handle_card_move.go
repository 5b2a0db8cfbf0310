package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/cardflow/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Result is the outcome of a run that did not fail.
type Result string

// Results.
const (
	ResultNoOp      Result = "noop"
	ResultCompleted Result = "completed"
)

// HandleCardMoveInput contains the parameters for handling a card move.
type HandleCardMoveInput struct {
	Event domain.CardMoveEvent
}

// HandleCardMoveOutput contains the result of handling a card move.
// Fields are ordered to minimize memory padding.
type HandleCardMoveOutput struct {
	NewIssue      *domain.Issue // Derived issue, nil on no-op
	Result        Result
	Reason        string // Why the run was a no-op
	ProjectItemID string // Follow-up project item, empty when not filed
	Steps         []Step // Write steps applied, in order
	Stage         domain.Stage
}

// HandleCardMove is the use case run for every card move event.
// It plans the transition and applies the write steps strictly in order;
// each step consumes identifiers returned by the previous ones. A failing step
// aborts the run and nothing already applied is undone.
type HandleCardMove struct {
	planner *PlanTransition
	tracker domain.Tracker
	logger  domain.Logger
	tracer  trace.Tracer
	runs    metric.Int64Counter
}

// NewHandleCardMove creates a new HandleCardMove use case.
func NewHandleCardMove(planner *PlanTransition, tracker domain.Tracker, logger domain.Logger) *HandleCardMove {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &HandleCardMove{
		planner: planner,
		tracker: tracker,
		logger:  logger,
		tracer:  tracenoop.NewTracerProvider().Tracer(""),
		runs:    metricnoop.Int64Counter{},
	}
}

// WithTelemetry sets the tracer and the meter recording run outcomes.
func (uc *HandleCardMove) WithTelemetry(tracer trace.Tracer, meter metric.Meter) *HandleCardMove {
	uc.tracer = tracer
	uc.planner.WithTracer(tracer)
	if counter, err := meter.Int64Counter("cardflow.runs",
		metric.WithDescription("Card move runs by result")); err == nil {
		uc.runs = counter
	}
	return uc
}

// Execute handles the card move event.
func (uc *HandleCardMove) Execute(ctx context.Context, in HandleCardMoveInput) (out *HandleCardMoveOutput, err error) {
	ctx, span := uc.tracer.Start(ctx, "cardflow.run", trace.WithAttributes(
		attribute.String("cardflow.event", in.Event.EventName),
		attribute.String("cardflow.action", in.Event.Action),
		attribute.String("cardflow.repository", in.Event.RepositoryName),
	))
	defer func() {
		result := "failed"
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			result = string(out.Result)
		}
		uc.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
		span.End()
	}()

	planned, err := uc.planner.Execute(ctx, PlanTransitionInput{Event: in.Event})
	if err != nil {
		return nil, err
	}
	if planned.Plan == nil {
		uc.logger.Info(0, "run", "no-op: "+planned.Reason)
		noop := &HandleCardMoveOutput{Result: ResultNoOp, Reason: planned.Reason}
		if planned.Resolution != nil {
			noop.Stage = planned.Resolution.Stage
		}
		return noop, nil
	}

	return uc.apply(ctx, planned.Plan)
}

// apply runs the write steps of the plan.
func (uc *HandleCardMove) apply(ctx context.Context, plan *TransitionPlan) (*HandleCardMoveOutput, error) {
	source := plan.Source
	stage := plan.Transition.Stage
	out := &HandleCardMoveOutput{Result: ResultCompleted, Stage: stage}

	labelsOnCreate := uc.tracker.Capabilities().LabelsOnCreate
	var created *domain.Issue

	for _, step := range plan.Steps {
		var fn func(ctx context.Context) error
		switch step {
		case StepCreateIssue:
			fn = func(ctx context.Context) error {
				in := domain.CreateIssueInput{
					RepositoryID: plan.Event.RepositoryID,
					Title:        plan.NewIssue.Title,
					Body:         plan.NewIssue.Body,
				}
				if labelsOnCreate {
					in.LabelIDs = plan.NewIssue.LabelIDs
				}
				issue, err := uc.tracker.CreateIssue(ctx, in)
				if err != nil {
					return err
				}
				created = issue
				return nil
			}
		case StepApplyLabels:
			fn = func(ctx context.Context) error {
				labels := plan.NewIssue.LabelIDs
				return uc.tracker.UpdateIssue(ctx, domain.UpdateIssueInput{IssueID: created.ID, LabelIDs: &labels})
			}
		case StepAddToProject:
			fn = func(ctx context.Context) error {
				itemID, err := uc.tracker.AddToProject(ctx, plan.FollowUpProject, created.ID)
				if err != nil {
					return err
				}
				out.ProjectItemID = itemID
				return nil
			}
		case StepBackLink:
			fn = func(ctx context.Context) error {
				body := domain.ParentPatch{Stage: stage, Number: created.Number}.ApplyTo(source.Body)
				return uc.tracker.UpdateIssue(ctx, domain.UpdateIssueInput{IssueID: source.ID, Body: &body})
			}
		default:
			return nil, &StepError{Step: step, Completed: out.Steps, Err: errors.New("unknown step")}
		}

		if err := runStep(ctx, uc.tracer, step, fn); err != nil {
			uc.logger.Error(source.Number, string(step), err.Error())
			return nil, &StepError{Step: step, Completed: out.Steps, Err: err}
		}
		out.Steps = append(out.Steps, step)

		if step == StepCreateIssue {
			uc.logger.Info(source.Number, string(step), fmt.Sprintf("created #%d %q", created.Number, plan.NewIssue.Title))
		} else {
			uc.logger.Debug(source.Number, string(step), "done")
		}
	}

	if created == nil {
		return nil, &StepError{Step: StepCreateIssue, Completed: out.Steps, Err: errors.New("plan has no create step")}
	}
	if !labelsOnCreate || len(created.Labels) == 0 {
		created.Labels = labelsFromIDs(plan.NewIssue.LabelIDs)
	}
	created.Title = plan.NewIssue.Title
	created.Body = plan.NewIssue.Body
	out.NewIssue = created

	if plan.FollowUpProject == "" {
		uc.logger.Warn(source.Number, string(StepAddToProject), "skipped: no follow-up project configured")
	}
	return out, nil
}

func labelsFromIDs(ids []string) []domain.Label {
	labels := make([]domain.Label, len(ids))
	for i, id := range ids {
		labels[i] = domain.Label{ID: id}
	}
	return labels
}
