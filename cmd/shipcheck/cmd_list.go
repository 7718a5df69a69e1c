package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/apiclient"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/findings"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/format"
)

func newListCmd(rt *runtime) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent reports on the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := rt.session()
			if err != nil {
				return err
			}
			defer s.close()

			items, err := s.api.ListReports(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("%s", apiclient.Message(err, "Request failed"))
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No reports yet.")
				return nil
			}
			tb := format.NewTable(format.Terminal)
			tb.Header("Report", "Repository", "Score", "Created")
			for _, it := range items {
				score := findings.Placeholder
				if it.Score != nil {
					score = fmt.Sprintf("%d", *it.Score)
				}
				tb.Row(it.ID, it.RepoURL, score, findings.FormatDate(it.CreatedAt))
			}
			tb.Columns(format.Column{Number: 3, Align: format.AlignRight})
			fmt.Fprintln(out, tb.String())
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum reports to list (1-100)")
	return cmd
}
