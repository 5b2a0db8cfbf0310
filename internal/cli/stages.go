package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/runoshun/cardflow/internal/app"
	"github.com/runoshun/cardflow/internal/usecase"
	"github.com/spf13/cobra"
)

// newStagesCommand creates the stages command.
func newStagesCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stages",
		Aliases: []string{"ls-stages"},
		Short:   "List workflow stages and their actions",
		Long: `List the workflow stages in board order with the column names that
resolve to each stage and the action taken when a card is moved there.

Column names are matched case-insensitively after trimming whitespace.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, c)
			if err != nil {
				return err
			}

			out, err := c.ListStagesUseCase().Execute(cmd.Context(), usecase.ListStagesInput{Config: cfg})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "STAGE\tACTION\tLABEL\tTEMPLATE\tCOLUMNS")
			for _, s := range out.Stages {
				label := s.Label
				if label == "" {
					label = "-"
				}
				tmpl := "-"
				if s.HasTemplate {
					tmpl = "yes"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					s.Key, s.Action, label, tmpl, strings.Join(s.Columns, ", "))
			}
			return w.Flush()
		},
	}
	return cmd
}
