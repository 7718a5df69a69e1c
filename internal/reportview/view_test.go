package reportview_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/apiclient"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/notify"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/poller"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/reportview"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/testutil"
)

func fastPoll() poller.Config {
	return poller.Config{Interval: 10 * time.Millisecond, Deadline: 2 * time.Second}
}

// waitFor polls the view until cond holds.
func waitFor(t *testing.T, v *reportview.View, cond func(reportview.Snapshot) bool) reportview.Snapshot {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		s := v.Snapshot()
		if cond(s) {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met, last snapshot %+v", v.Snapshot())
	return reportview.Snapshot{}
}

// ─── Lifecycle ──────────────────────────────────────────────────────────

func TestMount_PendingThenDone(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("r1", testutil.PendingReport("r1"), testutil.PendingReport("r1"), testutil.DoneReport("r1", nil))

	v := reportview.New(api, fastPoll(), nil, &testutil.DummyLogger{})
	defer v.Close()

	v.Mount(context.Background(), "r1")
	s := waitFor(t, v, func(s reportview.Snapshot) bool { return s.Phase == reportview.PhaseDone })
	if s.Polling {
		t.Error("polling should stop once the report settles")
	}
	if s.Report.Score() != 64 {
		t.Errorf("unexpected score %d", s.Report.Score())
	}
	<-v.Done()
	if n := api.Calls("r1"); n != 3 {
		t.Errorf("expected 3 fetches, got %d", n)
	}
}

func TestMount_FailedReport(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("r1", testutil.FailedReport("r1", "clone failed"))

	v := reportview.New(api, fastPoll(), nil, nil)
	defer v.Close()

	v.Mount(context.Background(), "r1")
	s := waitFor(t, v, func(s reportview.Snapshot) bool { return s.Phase == reportview.PhaseFailed })
	if s.Report.Failure() == nil || s.Report.Failure().Error != "clone failed" {
		t.Errorf("expected failure findings to be kept, got %+v", s.Report.Findings)
	}
}

func TestMount_NotFound(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()

	v := reportview.New(api, fastPoll(), nil, nil)
	defer v.Close()

	v.Mount(context.Background(), "missing")
	s := waitFor(t, v, func(s reportview.Snapshot) bool { return s.Phase == reportview.PhaseNotFound })
	if !s.NotFound || s.Error != "Report not found" {
		t.Errorf("unexpected snapshot %+v", s)
	}
}

func TestMount_TransportError_UsesFallback(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("r1", testutil.PendingReport("r1"))
	api.FailGet("r1", errors.New("dial tcp: refused"))

	v := reportview.New(api, fastPoll(), nil, nil)
	defer v.Close()

	v.Mount(context.Background(), "r1")
	s := waitFor(t, v, func(s reportview.Snapshot) bool { return s.Phase == reportview.PhaseError })
	if s.Error != reportview.LoadFailedMessage || s.NotFound {
		t.Errorf("unexpected snapshot %+v", s)
	}
}

func TestMount_PollTimeout_IsNotAnError(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("r1", testutil.PendingReport("r1"))

	cfg := poller.Config{Interval: 10 * time.Millisecond, Deadline: 50 * time.Millisecond}
	v := reportview.New(api, cfg, nil, nil)
	defer v.Close()

	v.Mount(context.Background(), "r1")
	s := waitFor(t, v, func(s reportview.Snapshot) bool { return s.PollTimedOut })
	if s.Phase != reportview.PhasePending || s.Error != "" || s.Polling {
		t.Errorf("timeout should leave a pending, non-polling, error-free view: %+v", s)
	}
}

// ─── Remounting ─────────────────────────────────────────────────────────

func TestMount_NewID_LeavesExactlyOneLoop(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("a", testutil.PendingReport("a"))
	api.SetReports("b", testutil.PendingReport("b"))

	v := reportview.New(api, fastPoll(), nil, nil)
	defer v.Close()

	v.Mount(context.Background(), "a")
	waitFor(t, v, func(s reportview.Snapshot) bool { return s.Phase == reportview.PhasePending })
	firstDone := v.Done()

	v.Mount(context.Background(), "b")
	select {
	case <-firstDone:
	default:
		t.Fatal("Mount returned before the previous loop exited")
	}

	aCalls := api.Calls("a")
	time.Sleep(60 * time.Millisecond)
	if api.Calls("a") != aCalls {
		t.Error("old loop kept fetching after remount")
	}
	if api.Calls("b") < 2 {
		t.Error("new loop is not polling")
	}
	if s := v.Snapshot(); s.ReportID != "b" {
		t.Errorf("snapshot belongs to %q", s.ReportID)
	}
	if api.MaxInFlight() > 1 {
		t.Errorf("saw %d concurrent fetches", api.MaxInFlight())
	}
}

func TestUnmount_CancelsInFlightFetch(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.BlockGet = true

	v := reportview.New(api, fastPoll(), nil, nil)
	v.Mount(context.Background(), "r1")
	done := v.Done()

	unmounted := make(chan struct{})
	go func() {
		v.Unmount()
		close(unmounted)
	}()
	select {
	case <-unmounted:
	case <-time.After(2 * time.Second):
		t.Fatal("Unmount did not abort the blocked fetch")
	}
	<-done
	if s := v.Snapshot(); s.Polling {
		t.Error("unmounted view should not be polling")
	}
}

// ─── Re-analyze ─────────────────────────────────────────────────────────

func TestReanalyze_Success(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("r1", testutil.FailedReport("r1", "clone failed"))
	api.AnalyzeID = "r2"

	v := reportview.New(api, fastPoll(), nil, nil)
	defer v.Close()
	v.Mount(context.Background(), "r1")
	waitFor(t, v, func(s reportview.Snapshot) bool { return s.Phase == reportview.PhaseFailed })

	id, err := v.Reanalyze(context.Background())
	if err != nil {
		t.Fatalf("Reanalyze: %v", err)
	}
	if id != "r2" || v.Snapshot().NextReportID != "r2" {
		t.Errorf("expected next report r2, got %q", id)
	}
	if urls := api.AnalyzedURLs(); len(urls) != 1 || urls[0] != testutil.SampleRepoURL {
		t.Errorf("expected the same repo to be re-submitted, got %v", urls)
	}
}

func TestReanalyze_Failure_KeepsFailedPanel(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("r1", testutil.FailedReport("r1", "clone failed"))
	api.AnalyzeErr = &apiclient.APIError{Op: "analyze", StatusCode: 429, Message: "Too many analyses"}

	v := reportview.New(api, fastPoll(), nil, nil)
	defer v.Close()
	v.Mount(context.Background(), "r1")
	waitFor(t, v, func(s reportview.Snapshot) bool { return s.Phase == reportview.PhaseFailed })

	if _, err := v.Reanalyze(context.Background()); err == nil {
		t.Fatal("expected retry error")
	}
	s := v.Snapshot()
	if s.Phase != reportview.PhaseFailed || s.Report == nil {
		t.Errorf("failed report view should survive a retry failure: %+v", s)
	}
	if s.RetryError != "Too many analyses" || s.Retrying {
		t.Errorf("unexpected retry state %+v", s)
	}
}

func TestReanalyze_TransportFailure_UsesFallback(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("r1", testutil.DoneReport("r1", nil))
	api.AnalyzeErr = errors.New("connection reset")

	v := reportview.New(api, fastPoll(), nil, nil)
	defer v.Close()
	v.Mount(context.Background(), "r1")
	waitFor(t, v, func(s reportview.Snapshot) bool { return s.Phase == reportview.PhaseDone })

	_, _ = v.Reanalyze(context.Background())
	if got := v.Snapshot().RetryError; got != reportview.RetryFailedMessage {
		t.Errorf("expected fallback retry message, got %q", got)
	}
}

func TestReanalyze_Guards(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	v := reportview.New(api, fastPoll(), nil, nil)
	defer v.Close()

	if _, err := v.Reanalyze(context.Background()); !errors.Is(err, reportview.ErrNotMounted) {
		t.Errorf("expected ErrNotMounted, got %v", err)
	}

	v.Mount(context.Background(), "missing")
	waitFor(t, v, func(s reportview.Snapshot) bool { return s.Phase == reportview.PhaseNotFound })
	if _, err := v.Reanalyze(context.Background()); !errors.Is(err, reportview.ErrNothingToRetry) {
		t.Errorf("expected ErrNothingToRetry, got %v", err)
	}
}

func TestReanalyze_InProgress(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("r1", testutil.DoneReport("r1", nil))
	api.AnalyzeID = "r2"
	api.AnalyzeDelay = 100 * time.Millisecond

	v := reportview.New(api, fastPoll(), nil, nil)
	defer v.Close()
	v.Mount(context.Background(), "r1")
	waitFor(t, v, func(s reportview.Snapshot) bool { return s.Phase == reportview.PhaseDone })

	go func() { _, _ = v.Reanalyze(context.Background()) }()
	waitFor(t, v, func(s reportview.Snapshot) bool { return s.Retrying })
	if _, err := v.Reanalyze(context.Background()); !errors.Is(err, reportview.ErrRetryInProgress) {
		t.Errorf("expected ErrRetryInProgress, got %v", err)
	}
}

func TestReanalyze_RemountDropsResult(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("a", testutil.FailedReport("a", "clone failed"))
	api.SetReports("b", testutil.DoneReport("b", nil))
	api.AnalyzeID = "from-a"
	api.AnalyzeDelay = 10 * time.Second

	v := reportview.New(api, fastPoll(), nil, nil)
	defer v.Close()
	v.Mount(context.Background(), "a")
	waitFor(t, v, func(s reportview.Snapshot) bool { return s.Phase == reportview.PhaseFailed })

	errCh := make(chan error, 1)
	go func() {
		_, err := v.Reanalyze(context.Background())
		errCh <- err
	}()
	waitFor(t, v, func(s reportview.Snapshot) bool { return s.Retrying })

	v.Mount(context.Background(), "b")
	select {
	case err := <-errCh:
		if !errors.Is(err, reportview.ErrSuperseded) {
			t.Errorf("expected ErrSuperseded, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("re-mount should cancel the in-flight re-analysis")
	}

	s := waitFor(t, v, func(s reportview.Snapshot) bool { return s.Phase == reportview.PhaseDone })
	if s.ReportID != "b" || s.NextReportID != "" || s.RetryError != "" || s.Retrying {
		t.Errorf("result for a leaked into the view of b: %+v", s)
	}
}

func TestReanalyze_UnmountCancels(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("r1", testutil.FailedReport("r1", "clone failed"))
	api.AnalyzeID = "r2"
	api.AnalyzeDelay = 10 * time.Second

	v := reportview.New(api, fastPoll(), nil, nil)
	defer v.Close()
	v.Mount(context.Background(), "r1")
	waitFor(t, v, func(s reportview.Snapshot) bool { return s.Phase == reportview.PhaseFailed })

	errCh := make(chan error, 1)
	go func() {
		_, err := v.Reanalyze(context.Background())
		errCh <- err
	}()
	waitFor(t, v, func(s reportview.Snapshot) bool { return s.Retrying })

	v.Unmount()
	select {
	case err := <-errCh:
		if !errors.Is(err, reportview.ErrSuperseded) {
			t.Errorf("expected ErrSuperseded, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("unmount should cancel the in-flight re-analysis")
	}
	if s := v.Snapshot(); s.NextReportID != "" || s.Retrying {
		t.Errorf("unexpected retry state after unmount: %+v", s)
	}
}

// ─── Subscriptions and toasts ───────────────────────────────────────────

func TestSubscribe_DeliversCurrentAndChanges(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("r1", testutil.DoneReport("r1", nil))

	v := reportview.New(api, fastPoll(), nil, nil)
	ch, cancel := v.Subscribe()
	defer cancel()

	if s := <-ch; s.Phase != reportview.PhaseIdle {
		t.Fatalf("expected idle snapshot first, got %s", s.Phase)
	}
	v.Mount(context.Background(), "r1")

	timeout := time.After(3 * time.Second)
	for {
		select {
		case s := <-ch:
			if s.Phase == reportview.PhaseDone {
				v.Close()
				return
			}
		case <-timeout:
			t.Fatal("never observed done snapshot")
		}
	}
}

func TestLinkCopied_ShowsToast(t *testing.T) {
	t.Parallel()
	n := notify.New(time.Second)
	defer n.Close()
	v := reportview.New(testutil.NewFakeAPI(), fastPoll(), n, nil)
	defer v.Close()

	v.LinkCopied()
	if msg, ok := n.Current(); !ok || msg != reportview.LinkCopiedMessage {
		t.Errorf("expected %q toast, got %q %v", reportview.LinkCopiedMessage, msg, ok)
	}
}

// ─── Resolve ───

func TestResolve(t *testing.T) {
	t.Parallel()

	done := reportview.Resolve("r1", testutil.DoneReport("r1", testutil.SampleFindings()), nil)
	if done.Phase != reportview.PhaseDone || done.Report == nil || done.Polling {
		t.Fatalf("unexpected done snapshot: %+v", done)
	}

	nf := reportview.Resolve("r2", nil, &apiclient.APIError{StatusCode: 404, Message: apiclient.NotFoundMessage})
	if nf.Phase != reportview.PhaseNotFound || !nf.NotFound || nf.Error != apiclient.NotFoundMessage {
		t.Fatalf("unexpected not-found snapshot: %+v", nf)
	}

	failed := reportview.Resolve("r3", nil, errors.New("dial tcp: refused"))
	if failed.Phase != reportview.PhaseError || failed.Error != reportview.LoadFailedMessage {
		t.Fatalf("unexpected error snapshot: %+v", failed)
	}
}
