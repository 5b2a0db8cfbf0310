package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Step names one tracker call of a run.
type Step string

// Steps in execution order.
const (
	StepFetch        Step = "fetch"
	StepCreateIssue  Step = "create-issue"
	StepApplyLabels  Step = "apply-labels"
	StepAddToProject Step = "add-to-project"
	StepBackLink     Step = "back-link"
)

// Description returns a short human readable description of the step.
func (s Step) Description() string {
	switch s {
	case StepFetch:
		return "read issue and project columns"
	case StepCreateIssue:
		return "create derived issue"
	case StepApplyLabels:
		return "set labels on derived issue"
	case StepAddToProject:
		return "add derived issue to follow-up project"
	case StepBackLink:
		return "append back-link to source issue"
	default:
		return string(s)
	}
}

// StepError reports the step that aborted a run and the steps already applied.
// Applied steps are not rolled back.
type StepError struct {
	Err       error
	Step      Step
	Completed []Step
}

// Error implements error.
func (e *StepError) Error() string {
	if len(e.Completed) == 0 {
		return fmt.Sprintf("step %s: %v", e.Step, e.Err)
	}
	done := make([]string, len(e.Completed))
	for i, s := range e.Completed {
		done[i] = string(s)
	}
	return fmt.Sprintf("step %s: %v (already applied: %s)", e.Step, e.Err, strings.Join(done, ", "))
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// runStep runs fn inside a span named after the step.
func runStep(ctx context.Context, tracer trace.Tracer, step Step, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "cardflow."+string(step),
		trace.WithAttributes(attribute.String("cardflow.step", string(step))))
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
