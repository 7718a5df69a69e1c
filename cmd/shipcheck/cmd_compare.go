package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/apiclient"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/compare"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/findings"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/format"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/history"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
)

func newCompareCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <base-id> [head-id]",
		Short: "Compare two finished reports",
		Long: `Compares two reports check by check. Given a single id, that report is
compared against the newest earlier analysis of the same repository found in
local history.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.session()
			if err != nil {
				return err
			}
			defer s.close()
			ctx := cmd.Context()

			baseID, headID := args[0], ""
			if len(args) == 2 {
				headID = args[1]
			} else {
				headID = baseID
				prev, err := history.Previous(ctx, s.history, headID)
				if err != nil {
					if errors.Is(err, history.ErrEntryNotFound) {
						return fmt.Errorf("no earlier analysis of this repository in local history")
					}
					return err
				}
				baseID = prev.ReportID
			}

			load := func(id string) (*model.Report, error) {
				r, err := s.api.GetReport(ctx, id)
				if err != nil {
					return nil, fmt.Errorf("%s: %s", id, apiclient.Message(err, "Failed to load"))
				}
				return r, nil
			}
			base, err := load(baseID)
			if err != nil {
				return err
			}
			head, err := load(headID)
			if err != nil {
				return err
			}

			c, err := compare.Reports(base, head)
			if err != nil {
				return fmt.Errorf("both reports must be finished: %w", err)
			}
			printComparison(cmd, base, head, c)
			return nil
		},
	}
	return cmd
}

func printComparison(cmd *cobra.Command, base, head *model.Report, c *compare.Comparison) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d → %d (%s)\n", findings.RepoLabel(head), c.BaseScore, c.HeadScore, format.Signed(c.ScoreDelta))
	fmt.Fprintf(out, "%s → %s\n", findings.FormatDate(base.CreatedAt), findings.FormatDate(head.CreatedAt))
	fmt.Fprintf(out, "%d improved · %d regressed · %d unchanged\n\n", c.Improvements(), c.Regressions(), c.Unchanged)

	tb := format.NewTable(format.Terminal)
	tb.Header("Section", "Before", "After", "Change")
	for _, sd := range c.Sections {
		tb.Row(sd.Name, scoreCell(sd.BaseScore), scoreCell(sd.HeadScore), format.Signed(sd.Delta))
	}
	tb.Columns(format.Column{Number: 4, Align: format.AlignRight})
	fmt.Fprintln(out, tb.String())

	if len(c.Changed) > 0 {
		fmt.Fprintln(out, "\nChanged:")
		for _, ch := range c.Changed {
			fmt.Fprintf(out, "  %s / %s: %s → %s\n", ch.Section, ch.Name, ch.From, ch.To)
			for _, line := range compare.Unified(ch.SnippetDiff) {
				fmt.Fprintf(out, "      %s\n", format.OneLine(line))
			}
		}
	}
	for _, a := range c.Added {
		fmt.Fprintf(out, "  + %s / %s (%s)\n", a.Section, a.Name, a.Status)
	}
	for _, r := range c.Removed {
		fmt.Fprintf(out, "  - %s / %s (%s)\n", r.Section, r.Name, r.Status)
	}
}

func scoreCell(p *int) string {
	if p == nil {
		return findings.Placeholder
	}
	return fmt.Sprintf("%d", *p)
}
