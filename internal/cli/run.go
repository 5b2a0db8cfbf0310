package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/runoshun/cardflow/internal/app"
	"github.com/runoshun/cardflow/internal/domain"
	"github.com/runoshun/cardflow/internal/usecase"
	"github.com/spf13/cobra"
)

// Step outputs written for later workflow steps.
const (
	outputIssueNumber = "issue-number"
	outputStage       = "stage"
	outputResult      = "result"
	outputFailedStep  = "failed-step"

	resultFailed = "failed"
)

// shutdownTimeout bounds flushing telemetry after a run.
const shutdownTimeout = 5 * time.Second

// newRunCommand creates the run command.
func newRunCommand(c *app.Container) *cobra.Command {
	var eventName, eventPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Handle the project card event of the workflow run",
		Long: `Handle the project card event that triggered the workflow run.

The event is read from GITHUB_EVENT_NAME and GITHUB_EVENT_PATH unless
--event-name or --event-path is given. Events other than a moved card are
ignored. Results are written to GITHUB_OUTPUT when it is set:
  issue-number  number of the derived issue
  stage         stage the card was moved into
  result        noop, completed or failed
  failed-step   step that aborted a failed run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, c)
			if err != nil {
				return err
			}
			ev, err := c.EventSource(eventName, eventPath).ReadEvent()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rt, err := c.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				if cerr := rt.Close(sctx); cerr != nil {
					c.Logger.Warn("close runtime", "error", cerr)
				}
			}()

			out, err := rt.HandleCardMoveUseCase().Execute(ctx, usecase.HandleCardMoveInput{Event: ev})
			if err != nil {
				writeFailureOutputs(c.Outputs, err)
				printRunFailure(cmd.OutOrStdout(), err)
				return err
			}

			if err := writeRunOutputs(c.Outputs, out); err != nil {
				return err
			}
			printRunSummary(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventName, "event-name", "", "Event name (default $GITHUB_EVENT_NAME)")
	cmd.Flags().StringVar(&eventPath, "event-path", "", "Event payload file (default $GITHUB_EVENT_PATH)")

	return cmd
}

func writeRunOutputs(w domain.OutputWriter, out *usecase.HandleCardMoveOutput) error {
	outputs := [][2]string{{outputResult, string(out.Result)}}
	if out.Stage.IsRecognized() {
		outputs = append(outputs, [2]string{outputStage, out.Stage.String()})
	}
	if out.NewIssue != nil {
		outputs = append(outputs, [2]string{outputIssueNumber, strconv.Itoa(out.NewIssue.Number)})
	}
	for _, o := range outputs {
		if err := w.SetOutput(o[0], o[1]); err != nil {
			return err
		}
	}
	return nil
}

// writeFailureOutputs records the failure; the run error is what gets reported.
func writeFailureOutputs(w domain.OutputWriter, runErr error) {
	_ = w.SetOutput(outputResult, resultFailed)
	var stepErr *usecase.StepError
	if errors.As(runErr, &stepErr) {
		_ = w.SetOutput(outputFailedStep, string(stepErr.Step))
	}
}

func printRunSummary(w io.Writer, out *usecase.HandleCardMoveOutput) {
	if out.Result == usecase.ResultNoOp {
		_, _ = fmt.Fprintf(w, "%s %s\n", mutedStyle.Render(iconSkip), mutedStyle.Render("no-op: "+out.Reason))
		return
	}

	issue := out.NewIssue
	_, _ = fmt.Fprintf(w, "%s %s created #%d %s\n",
		successStyle.Render(iconDone), renderStage(out.Stage), issue.Number, issue.Title)
	for _, step := range out.Steps {
		_, _ = fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render(iconStep), step.Description())
	}
	if out.ProjectItemID != "" {
		_, _ = fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("project item:"), out.ProjectItemID)
	}
}

func printRunFailure(w io.Writer, err error) {
	var stepErr *usecase.StepError
	if !errors.As(err, &stepErr) {
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s failed\n", errorStyle.Render(iconFail), stepErr.Step.Description())
	if len(stepErr.Completed) > 0 {
		done := make([]string, len(stepErr.Completed))
		for i, s := range stepErr.Completed {
			done[i] = string(s)
		}
		_, _ = fmt.Fprintf(w, "  %s %s\n", warnStyle.Render("already applied, not rolled back:"), strings.Join(done, ", "))
	}
}
