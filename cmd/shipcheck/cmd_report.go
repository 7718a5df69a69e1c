package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/apiclient"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/findings"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/format"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/poller"
)

type reportFlags struct {
	tab      string
	status   string
	query    string
	markdown bool
	wait     bool
}

func newReportCmd(rt *runtime) *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Print a report",
		Long: `Prints the summary, highlights and checks of a report. Without --tab the
checks of every section are listed; --status and --query filter them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.session()
			if err != nil {
				return err
			}
			defer s.close()

			id := args[0]
			var report *model.Report
			if flags.wait {
				u := watch(cmd.Context(), poller.New(s.api, s.cfg.PollerConfig(), s.logger), id)
				report, err = u.Report, u.Err
				if u.Outcome == poller.TimedOut {
					fmt.Fprintln(cmd.ErrOrStderr(), "Still analyzing; the poll deadline passed.")
				}
			} else {
				report, err = s.api.GetReport(cmd.Context(), id)
			}
			if err != nil {
				return fmt.Errorf("%s", apiclient.Message(err, "Failed to load"))
			}
			if report == nil {
				return fmt.Errorf("report %s: no response", id)
			}
			if err := s.history.UpdateResult(cmd.Context(), id, report.Status, scoreOf(report)); err != nil {
				s.logger.Debug("history not updated", logging.Field{Key: "error", Value: err.Error()})
			}
			return printReport(cmd.OutOrStdout(), report, flags, s.cfg.HighlightLimit)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.tab, "tab", "", "Only show one tab (Runability, Engineering, Security, Docs, Code, Interview Pack)")
	f.StringVar(&flags.status, "status", findings.StatusAll, "Status filter: all, fail, warn, pass")
	f.StringVar(&flags.query, "query", "", "Free-text filter on name, recommendation and evidence")
	f.BoolVar(&flags.markdown, "markdown", false, "Render Markdown instead of terminal tables")
	f.BoolVar(&flags.wait, "wait", false, "Poll a pending report until it settles")
	return cmd
}

func printReport(w io.Writer, r *model.Report, flags reportFlags, highlightLimit int) error {
	mode := format.Terminal
	if flags.markdown {
		mode = format.Markdown
	}
	filter := findings.Filter{Status: flags.status, Query: flags.query}

	switch st := r.State().(type) {
	case model.PendingState:
		fmt.Fprintf(w, "%s is still being analyzed (report %s).\n", findings.RepoLabel(r), r.ID)
		return nil
	case model.FailedState:
		msg := st.Message
		if msg == "" {
			msg = "Analysis failed"
		}
		fmt.Fprintf(w, "Analysis failed for %s: %s\n", findings.RepoLabel(r), msg)
		fmt.Fprintf(w, "Run 'shipcheck analyze %s' to retry.\n", r.RepoURL)
		return nil
	case model.UnknownState:
		fmt.Fprintf(w, "Report %s has an unrecognised status %q.\n", r.ID, st.Status)
		return nil
	}

	sum := findings.Summarize(r, highlightLimit)
	heading(w, mode, fmt.Sprintf("%s: %d/100 (%s)", sum.Repo, sum.Score, sum.Band))
	meta := "Last analyzed " + sum.Analyzed
	if sum.Commit != "" {
		meta = "Commit " + sum.Commit + " · " + meta
	}
	fmt.Fprintln(w, meta)
	fmt.Fprintf(w, "%d pass · %d warn · %d fail\n\n", sum.Counts.Pass, sum.Counts.Warn, sum.Counts.Fail)

	list(w, mode, "Highlights", sum.Highlights)
	list(w, mode, "Next actions", sum.NextActions)

	if flags.tab != "" {
		tab := findings.ParseTab(flags.tab, sum.Tabs)
		view := findings.View(r, tab, filter)
		if tab == findings.TabInterviewPack {
			list(w, mode, string(tab), view.Questions)
			return nil
		}
		checksTable(w, mode, string(tab), view.Checks)
		return nil
	}

	for _, sec := range r.Sections() {
		checks := filter.Checks(sec.Checks)
		if len(checks) == 0 && filter.Active() {
			continue
		}
		checksTable(w, mode, fmt.Sprintf("%s (%d)", sec.Name, sec.Score), checks)
	}
	list(w, mode, "Interview pack", filter.Questions(r.InterviewPack()))
	return nil
}

func heading(w io.Writer, mode format.Mode, s string) {
	if mode == format.Markdown {
		fmt.Fprintf(w, "## %s\n\n", s)
		return
	}
	fmt.Fprintln(w, s)
}

func list(w io.Writer, mode format.Mode, title string, items []string) {
	if len(items) == 0 {
		return
	}
	if mode == format.Markdown {
		fmt.Fprintf(w, "### %s\n\n", title)
	} else {
		fmt.Fprintf(w, "%s:\n", title)
	}
	for _, it := range items {
		fmt.Fprintf(w, "- %s\n", it)
	}
	fmt.Fprintln(w)
}

func checksTable(w io.Writer, mode format.Mode, title string, checks []model.Check) {
	tb := format.NewTable(mode)
	tb.Title(title)
	if mode == format.Markdown {
		fmt.Fprintf(w, "### %s\n\n", title)
	}
	tb.Header("Status", "Check", "Evidence", "Recommendation")
	for _, c := range checks {
		tb.Row(strings.ToUpper(string(c.Status)), c.Name, evidence(c.Evidence), format.OneLine(c.Recommendation))
	}
	if tb.Len() == 0 {
		fmt.Fprintln(w, "No checks match the current filters.")
		fmt.Fprintln(w)
		return
	}
	tb.Columns(format.Column{Number: 3, MaxWidth: 40}, format.Column{Number: 4, MaxWidth: 50})
	fmt.Fprintln(w, tb.String())
	fmt.Fprintln(w)
}

func evidence(e model.Evidence) string {
	if e.File == "" {
		return findings.Placeholder
	}
	if lr := e.LineRange(); lr != "" {
		return e.File + ":" + lr
	}
	return e.File
}
