package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/runoshun/cardflow/internal/app"
	"github.com/runoshun/cardflow/internal/domain"
	"github.com/runoshun/cardflow/internal/usecase"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats of the plan command.
const (
	formatText = "text"
	formatYAML = "yaml"
)

// planOptions holds the flags of the plan command.
// Fields are ordered to minimize memory padding.
type planOptions struct {
	eventName string
	eventPath string
	repo      string // owner/name, defaults to the origin remote
	output    string
	project   int64
	column    int64
	issue     int
}

// newPlanCommand creates the plan command.
func newPlanCommand(c *app.Container) *cobra.Command {
	var opts planOptions

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a card move would do without writing",
		Long: `Resolve the stage of a card move and print the planned mutations.

The issue context is read from the tracker but nothing is written. The card
move is taken from the workflow event, or built from --issue, --project and
--column for a dry run against any issue.`,
		Example: `  # Plan the event of the current workflow run
  cardflow plan

  # Plan moving issue #42 into column 1234 of project 7
  cardflow plan --issue 42 --project 7 --column 1234 --repo acme/videos -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.output != formatText && opts.output != formatYAML {
				return fmt.Errorf("unknown output format %q (use %s or %s)", opts.output, formatText, formatYAML)
			}

			cfg, err := loadConfig(cmd, c)
			if err != nil {
				return err
			}
			ev, err := planEvent(c, opts)
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
				_ = rt.Close(sctx)
			}()

			out, err := rt.PlanTransitionUseCase().Execute(ctx, usecase.PlanTransitionInput{Event: ev})
			if err != nil {
				return err
			}

			report := newPlanReport(out)
			if opts.output == formatYAML {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(report); err != nil {
					return fmt.Errorf("encode plan: %w", err)
				}
				return enc.Close()
			}
			printPlan(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.eventName, "event-name", "", "Event name (default $GITHUB_EVENT_NAME)")
	cmd.Flags().StringVar(&opts.eventPath, "event-path", "", "Event payload file (default $GITHUB_EVENT_PATH)")
	cmd.Flags().IntVar(&opts.issue, "issue", 0, "Issue number behind the card")
	cmd.Flags().Int64Var(&opts.project, "project", 0, "Project database ID")
	cmd.Flags().Int64Var(&opts.column, "column", 0, "Destination column database ID")
	cmd.Flags().StringVar(&opts.repo, "repo", "", "Repository as owner/name (default: origin remote)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatText, "Output format: text or yaml")
	cmd.MarkFlagsRequiredTogether("issue", "project", "column")
	cmd.MarkFlagsMutuallyExclusive("issue", "event-path")

	return cmd
}

// planEvent returns the card move to plan, either from the workflow event
// or synthesized from the flags.
func planEvent(c *app.Container, opts planOptions) (domain.CardMoveEvent, error) {
	if opts.issue == 0 {
		return c.EventSource(opts.eventName, opts.eventPath).ReadEvent()
	}

	owner, name, err := planRepository(c, opts.repo)
	if err != nil {
		return domain.CardMoveEvent{}, err
	}
	return domain.CardMoveEvent{
		EventName:      domain.EventProjectCard,
		Action:         domain.ActionMoved,
		Owner:          owner,
		RepositoryName: name,
		ContentURL:     fmt.Sprintf("https://api.github.com/repos/%s/%s/issues/%d", owner, name, opts.issue),
		ProjectURL:     fmt.Sprintf("https://api.github.com/projects/%d", opts.project),
		ColumnID:       opts.column,
	}, nil
}

func planRepository(c *app.Container, repo string) (string, string, error) {
	if repo == "" {
		if c.Repository == nil {
			return "", "", domain.ErrRepositoryRequired
		}
		return c.Repository.Repository()
	}
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: %q", domain.ErrRepositoryRequired, repo)
	}
	return owner, name, nil
}

// planReport is the printable form of a planned transition.
type planReport struct {
	NewIssue        *newIssueReport `yaml:"new_issue,omitempty"`
	Source          *issueReport    `yaml:"source,omitempty"`
	Action          string          `yaml:"action"`
	Reason          string          `yaml:"reason,omitempty"`
	Stage           string          `yaml:"stage,omitempty"`
	Column          string          `yaml:"column,omitempty"`
	Project         string          `yaml:"project,omitempty"`
	FollowUpProject string          `yaml:"follow_up_project,omitempty"`
	Steps           []string        `yaml:"steps,omitempty"`
	stage           domain.Stage
}

type issueReport struct {
	Title  string `yaml:"title"`
	Number int    `yaml:"number"`
}

type newIssueReport struct {
	Title  string   `yaml:"title"`
	Body   string   `yaml:"body,omitempty"`
	Labels []string `yaml:"labels,omitempty"`
}

func newPlanReport(out *usecase.PlanTransitionOutput) *planReport {
	r := &planReport{Action: domain.ActionSkip.String(), Reason: out.Reason}
	if res := out.Resolution; res != nil {
		r.stage = res.Stage
		r.Stage = res.Stage.String()
		r.Column = res.Column.Name
		r.Project = res.Project.Name
	}

	plan := out.Plan
	if plan == nil {
		return r
	}
	r.Action = plan.Transition.Action.String()
	r.Source = &issueReport{Number: plan.Source.Number, Title: plan.Source.Title}
	r.NewIssue = &newIssueReport{
		Title:  plan.NewIssue.Title,
		Body:   plan.NewIssue.Body,
		Labels: plan.NewIssue.LabelIDs,
	}
	r.FollowUpProject = plan.FollowUpProject
	for _, s := range plan.Steps {
		r.Steps = append(r.Steps, string(s))
	}
	return r
}

func printPlan(w io.Writer, r *planReport) {
	if r.Stage != "" {
		_, _ = fmt.Fprintf(w, "%s %s (column %q in %q)\n",
			headerStyle.Render("Stage:"), renderStage(r.stage), r.Column, r.Project)
	}
	if r.NewIssue == nil {
		_, _ = fmt.Fprintf(w, "%s %s\n", mutedStyle.Render(iconSkip), mutedStyle.Render("no-op: "+r.Reason))
		return
	}

	_, _ = fmt.Fprintf(w, "%s #%d %s\n", headerStyle.Render("Source:"), r.Source.Number, r.Source.Title)
	_, _ = fmt.Fprintf(w, "%s %s\n", headerStyle.Render("New issue:"), r.NewIssue.Title)
	if len(r.NewIssue.Labels) > 0 {
		_, _ = fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("labels:"), strings.Join(r.NewIssue.Labels, ", "))
	}
	if r.NewIssue.Body != "" {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("  body:"))
		for _, line := range strings.Split(strings.TrimRight(r.NewIssue.Body, "\n"), "\n") {
			_, _ = fmt.Fprintf(w, "    %s\n", line)
		}
	}
	if r.FollowUpProject == "" {
		_, _ = fmt.Fprintf(w, "%s %s\n", warnStyle.Render("Warning:"), "no follow-up project configured")
	}
	_, _ = fmt.Fprintln(w, headerStyle.Render("Steps:"))
	for i, s := range r.Steps {
		_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, usecase.Step(s).Description())
	}
}
