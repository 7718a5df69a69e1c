package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/app"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/history"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/repourl"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/testutil"
)

func testRuntime(api *testutil.FakeAPI, store history.Store) *runtime {
	return &runtime{
		logOut: io.Discard,
		open: func(cfg *app.Config, _ io.Writer) (*session, error) {
			cfg.PollInterval = app.Duration(5 * time.Millisecond)
			cfg.PollDeadline = app.Duration(2 * time.Second)
			return &session{
				cfg:     cfg,
				api:     api,
				history: store,
				logger:  logging.NopLogger{},
				close:   func() error { return nil },
			}, nil
		},
	}
}

func execute(t *testing.T, rt *runtime, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(rt)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustContain(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

// ─── config ────────────────────────────────────────────────────────────

func TestSession_FlagsOverrideFileBeforeValidation(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "shipcheck.yaml")
	if err := os.WriteFile(path, []byte("history: postgres\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rt := testRuntime(testutil.NewFakeAPI(), history.NewMemoryStore())

	if _, err := execute(t, rt, "history", "--config", path); err == nil || !strings.Contains(err.Error(), "history must be") {
		t.Fatalf("expected the file value to be rejected, got %v", err)
	}
	out, err := execute(t, rt, "history", "--config", path, "--history", "memory")
	if err != nil {
		t.Fatalf("--history should replace the file value: %v", err)
	}
	mustContain(t, out, "No analyses recorded.")
}

// ─── analyze ───────────────────────────────────────────────────────────

func TestAnalyze_ValidatesBeforeSubmitting(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.AnalyzeID = "r1"
	store := history.NewMemoryStore()

	out, err := execute(t, testRuntime(api, store), "analyze",
		"https://github.com/octo/hello", "https://gitlab.com/octo/hello")
	if !errors.Is(err, errSomeFailed) {
		t.Fatalf("expected errSomeFailed, got %v", err)
	}
	mustContain(t, out, "octo/hello", "r1", "pending", "URL must point to github.com")

	if got := api.AnalyzedURLs(); len(got) != 1 || got[0] != "https://github.com/octo/hello" {
		t.Errorf("only the valid URL should reach the backend, got %v", got)
	}
	e, err := store.Get(context.Background(), "r1")
	if err != nil {
		t.Fatalf("history entry: %v", err)
	}
	if e.Owner != "octo" || e.Name != "hello" || e.Status != model.StatusPending {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestAnalyze_WaitRecordsSettledResult(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.AnalyzeID = "r1"
	api.SetReports("r1", testutil.PendingReport("r1"), testutil.DoneReport("r1", nil))
	store := history.NewMemoryStore()

	out, err := execute(t, testRuntime(api, store), "analyze", "--wait", "https://github.com/octo/hello")
	if err != nil {
		t.Fatalf("analyze --wait: %v\n%s", err, out)
	}
	mustContain(t, out, "done", "64")

	e, err := store.Get(context.Background(), "r1")
	if err != nil {
		t.Fatalf("history entry: %v", err)
	}
	if e.Status != model.StatusDone || e.Score == nil || *e.Score != 64 {
		t.Errorf("history not updated: %+v", e)
	}
}

func TestAnalyze_WaitReportsFailure(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.AnalyzeID = "r1"
	api.SetReports("r1", testutil.FailedReport("r1", "clone failed"))

	out, err := execute(t, testRuntime(api, history.NewMemoryStore()), "analyze", "--wait", "https://github.com/octo/hello")
	if !errors.Is(err, errSomeFailed) {
		t.Fatalf("expected errSomeFailed, got %v", err)
	}
	mustContain(t, out, "failed", "clone failed")
}

func TestAnalyze_BackendError(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.AnalyzeErr = errors.New("dial tcp: connection refused")

	out, err := execute(t, testRuntime(api, history.NewMemoryStore()), "analyze", "https://github.com/octo/hello")
	if !errors.Is(err, errSomeFailed) {
		t.Fatalf("expected errSomeFailed, got %v", err)
	}
	mustContain(t, out, "Request failed")
	if strings.Contains(out, "connection refused") {
		t.Errorf("transport detail should not be shown:\n%s", out)
	}
}

// ─── report ────────────────────────────────────────────────────────────

func TestReport_Done(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("r1", testutil.DoneReport("r1", nil))

	out, err := execute(t, testRuntime(api, history.NewMemoryStore()), "report", "r1")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	mustContain(t, out,
		"octo/hello: 64/100",
		"Commit 0123456",
		"Highlights:",
		"Dockerfile",
		"Test suite",
		"README.md",
		"How would you containerize this service?",
	)
}

func TestReport_StatusFilter(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("r1", testutil.DoneReport("r1", nil))

	out, err := execute(t, testRuntime(api, history.NewMemoryStore()), "report", "r1", "--status", "fail")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	mustContain(t, out, "Committed .env")
	if strings.Contains(out, "LICENSE") || strings.Contains(out, "Documentation") {
		t.Errorf("passing checks should be filtered out:\n%s", out)
	}
}

func TestReport_InterviewTab(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("r1", testutil.DoneReport("r1", nil))

	out, err := execute(t, testRuntime(api, history.NewMemoryStore()), "report", "r1", "--tab", "Interview Pack", "--query", "secrets")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	mustContain(t, out, "Why are secrets stored in .env?")
	if strings.Contains(out, "containerize") {
		t.Errorf("question should be filtered out:\n%s", out)
	}
}

func TestReport_PendingAndFailed(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("p1", testutil.PendingReport("p1"))
	api.SetReports("f1", testutil.FailedReport("f1", "clone failed"))
	rt := testRuntime(api, history.NewMemoryStore())

	out, err := execute(t, rt, "report", "p1")
	if err != nil {
		t.Fatalf("report pending: %v", err)
	}
	mustContain(t, out, "still being analyzed")

	out, err = execute(t, rt, "report", "f1")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	mustContain(t, out, "Analysis failed", "clone failed", "shipcheck analyze")
}

func TestReport_NotFound(t *testing.T) {
	t.Parallel()
	_, err := execute(t, testRuntime(testutil.NewFakeAPI(), history.NewMemoryStore()), "report", "missing")
	if err == nil || err.Error() != "Report not found" {
		t.Fatalf("expected Report not found, got %v", err)
	}
}

func TestReport_Wait(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("r1", testutil.PendingReport("r1"), testutil.PendingReport("r1"), testutil.DoneReport("r1", nil))

	out, err := execute(t, testRuntime(api, history.NewMemoryStore()), "report", "--wait", "r1")
	if err != nil {
		t.Fatalf("report --wait: %v", err)
	}
	mustContain(t, out, "64/100")
	if api.Calls("r1") < 3 {
		t.Errorf("expected polling, got %d calls", api.Calls("r1"))
	}
}

// ─── list / history ────────────────────────────────────────────────────

func TestList(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	rt := testRuntime(api, history.NewMemoryStore())

	out, err := execute(t, rt, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	mustContain(t, out, "No reports yet.")

	api.Items = []model.ReportListItem{
		{ID: "r2", RepoURL: "https://github.com/octo/two", Score: model.Ptr(80), CreatedAt: model.Ptr("2024-05-02T09:00:00")},
		{ID: "r1", RepoURL: "https://github.com/octo/one"},
	}
	out, err = execute(t, rt, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	mustContain(t, out, "r2", "https://github.com/octo/two", "80", "r1")
}

func TestHistory(t *testing.T) {
	t.Parallel()
	store := history.NewMemoryStore()
	rt := testRuntime(testutil.NewFakeAPI(), store)

	out, err := execute(t, rt, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	mustContain(t, out, "No analyses recorded.")

	e := history.NewEntry("r1", repourl.MustParse("https://github.com/octo/hello"), time.Now())
	if err := store.Record(context.Background(), e); err != nil {
		t.Fatal(err)
	}
	out, err = execute(t, rt, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	mustContain(t, out, "octo/hello", "r1", "pending")
}

// ─── compare ───────────────────────────────────────────────────────────

func improvedReport(id string) *model.Report {
	f := testutil.SampleFindings()
	f.OverallScore = 74
	f.Sections[0].Score = 30
	f.Sections[0].Checks[1].Status = model.CheckPass
	return testutil.DoneReport(id, f)
}

func TestCompare_TwoIDs(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("a", testutil.DoneReport("a", nil))
	api.SetReports("b", improvedReport("b"))

	out, err := execute(t, testRuntime(api, history.NewMemoryStore()), "compare", "a", "b")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	mustContain(t, out, "64 → 74 (+10)", "1 improved", "Runability / Dockerfile: fail → pass")
}

func TestCompare_PreviousFromHistory(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("a", testutil.DoneReport("a", nil))
	api.SetReports("b", improvedReport("b"))
	store := history.NewMemoryStore()
	repo := repourl.MustParse(testutil.SampleRepoURL)
	now := time.Now()
	ctx := context.Background()
	if err := store.Record(ctx, history.NewEntry("a", repo, now.Add(-time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := store.Record(ctx, history.NewEntry("b", repo, now)); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, testRuntime(api, store), "compare", "b")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	mustContain(t, out, "64 → 74")

	if _, err := execute(t, testRuntime(api, store), "compare", "a"); err == nil {
		t.Error("expected an error when no earlier analysis exists")
	}
}

func TestCompare_RequiresFinishedReports(t *testing.T) {
	t.Parallel()
	api := testutil.NewFakeAPI()
	api.SetReports("a", testutil.DoneReport("a", nil))
	api.SetReports("p", testutil.PendingReport("p"))

	_, err := execute(t, testRuntime(api, history.NewMemoryStore()), "compare", "a", "p")
	if err == nil || !strings.Contains(err.Error(), "must be finished") {
		t.Fatalf("expected finished-reports error, got %v", err)
	}
}
