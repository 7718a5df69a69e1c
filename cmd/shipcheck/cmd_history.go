package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/findings"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/format"
)

func newHistoryCmd(rt *runtime) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List analyses submitted from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := rt.session()
			if err != nil {
				return err
			}
			defer s.close()

			entries, err := s.history.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No analyses recorded.")
				return nil
			}
			tb := format.NewTable(format.Terminal)
			tb.Header("Submitted", "Repository", "Report", "Status", "Score")
			for _, e := range entries {
				score := findings.Placeholder
				if e.Score != nil {
					score = fmt.Sprintf("%d", *e.Score)
				}
				tb.Row(e.SubmittedAt.Local().Format("Jan 2, 2006, 3:04 PM"), e.Slug(), e.ReportID, e.Status, score)
			}
			fmt.Fprintln(out, tb.String())
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to list; 0 lists all")
	return cmd
}
