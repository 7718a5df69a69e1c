package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/apiclient"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/format"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/history"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/poller"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/repourl"
)

var errSomeFailed = errors.New("some repositories could not be analyzed")

type analyzeFlags struct {
	wait     bool
	parallel int
}

// analyzeResult is one row of the summary table.
type analyzeResult struct {
	input    string
	repo     string
	reportID string
	status   string
	score    string
	err      string
}

func newAnalyzeCmd(rt *runtime) *cobra.Command {
	var flags analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze <github-url>...",
		Short: "Submit repositories for analysis",
		Long: `Validates each URL locally, submits the valid ones and prints their report
ids. With --wait each report is polled until it settles or the poll deadline
passes, up to --parallel at a time.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.session()
			if err != nil {
				return err
			}
			defer s.close()
			return runAnalyze(cmd, s, args, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.wait, "wait", false, "Poll each report until it settles")
	cmd.Flags().IntVar(&flags.parallel, "parallel", 4, "Reports to poll concurrently with --wait")
	return cmd
}

func runAnalyze(cmd *cobra.Command, s *session, args []string, flags analyzeFlags) error {
	ctx := cmd.Context()
	results := make([]analyzeResult, len(args))

	for i, raw := range args {
		results[i] = analyzeResult{input: raw, repo: raw}
		repo, err := repourl.Parse(raw)
		if err != nil {
			results[i].err = err.Error()
			continue
		}
		results[i].repo = repo.Slug()

		id, err := s.api.Analyze(ctx, repo.Raw)
		if err != nil {
			results[i].err = apiclient.Message(err, "Request failed")
			s.logger.Warn("analyze failed", logging.Field{Key: "repo_url", Value: repo.Raw}, logging.Field{Key: "error", Value: err.Error()})
			continue
		}
		results[i].reportID = id
		results[i].status = string(model.StatusPending)
		if err := s.history.Record(ctx, history.NewEntry(id, repo, time.Now())); err != nil {
			s.logger.Warn("recording history", logging.Field{Key: "report_id", Value: id}, logging.Field{Key: "error", Value: err.Error()})
		}
	}

	if flags.wait {
		waitAll(ctx, s, results, flags.parallel)
	}

	tb := format.NewTable(format.Terminal)
	tb.Header("Repository", "Report", "Status", "Score", "Error")
	failed := false
	for _, r := range results {
		if r.err != "" {
			failed = true
		}
		tb.Row(r.repo, r.reportID, r.status, r.score, r.err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())

	if failed {
		return errSomeFailed
	}
	return nil
}

// waitAll polls every submitted report, at most parallel at once, and fills
// in the settled status.
func waitAll(ctx context.Context, s *session, results []analyzeResult, parallel int) {
	if parallel < 1 {
		parallel = 1
	}
	p := poller.New(s.api, s.cfg.PollerConfig(), s.logger)

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := range results {
		if results[i].reportID == "" {
			continue
		}
		i := i
		g.Go(func() error {
			last := watch(gCtx, p, results[i].reportID)

			mu.Lock()
			defer mu.Unlock()
			applyOutcome(&results[i], last)
			if last.Report != nil && !last.Report.IsPending() {
				score := scoreOf(last.Report)
				if err := s.history.UpdateResult(gCtx, last.Report.ID, last.Report.Status, score); err != nil && !errors.Is(err, history.ErrEntryNotFound) {
					s.logger.Warn("updating history", logging.Field{Key: "error", Value: err.Error()})
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

// watch drains a poll loop and returns its final update.
func watch(ctx context.Context, p *poller.Poller, id string) poller.Update {
	var last poller.Update
	for u := range p.Watch(ctx, id) {
		last = u
	}
	return last
}

func applyOutcome(r *analyzeResult, u poller.Update) {
	switch u.Outcome {
	case poller.Failed:
		r.err = apiclient.Message(u.Err, "Failed to load")
		return
	case poller.TimedOut:
		r.status = "still pending"
		return
	case poller.Canceled:
		r.status = "canceled"
		return
	}
	if u.Report == nil {
		return
	}
	r.status = string(u.Report.Status)
	switch st := u.Report.State().(type) {
	case model.DoneState:
		r.score = fmt.Sprintf("%d", st.Score)
	case model.FailedState:
		r.err = st.Message
	}
}

func scoreOf(r *model.Report) *int {
	if _, ok := r.State().(model.DoneState); ok {
		return model.Ptr(r.Score())
	}
	return nil
}
