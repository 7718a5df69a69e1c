package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/apiclient"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/webclient"
)

func newTestClient(t *testing.T, h http.Handler) *apiclient.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	wc, err := webclient.NewNetHTTPClient(webclient.Config{}, logging.NopLogger{}, ts.Client())
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	t.Cleanup(func() { _ = wc.Close() })

	c, err := apiclient.New(ts.URL+"/", wc, logging.NopLogger{})
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ─── Analyze ────────────────────────────────────────────────────────────

func TestAnalyze_Success(t *testing.T) {
	t.Parallel()
	var got model.AnalyzeRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/analyze" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		writeJSON(w, http.StatusOK, map[string]string{"report_id": "X"})
	}))

	id, err := c.Analyze(context.Background(), "https://github.com/octo/hello")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if id != "X" {
		t.Errorf("expected report id X, got %q", id)
	}
	if got.RepoURL != "https://github.com/octo/hello" {
		t.Errorf("backend saw repo_url %q", got.RepoURL)
	}
}

func TestAnalyze_ErrorMessages(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		status int
		body   any
		want   string
	}{
		{"string detail", http.StatusBadRequest, map[string]any{"detail": "Invalid GitHub URL"}, "Invalid GitHub URL"},
		{"list detail", http.StatusUnprocessableEntity, map[string]any{"detail": []any{map[string]any{"msg": "field required"}}}, "Unprocessable Entity"},
		{"no body", http.StatusInternalServerError, nil, "Internal Server Error"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tc.body == nil {
					w.WriteHeader(tc.status)
					return
				}
				writeJSON(w, tc.status, tc.body)
			}))

			_, err := c.Analyze(context.Background(), "https://github.com/octo/hello")
			var apiErr *apiclient.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.StatusCode != tc.status {
				t.Errorf("status = %d, want %d", apiErr.StatusCode, tc.status)
			}
			if got := apiclient.Message(err, "Request failed"); got != tc.want {
				t.Errorf("message = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAnalyze_MissingReportID(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	}))
	if _, err := c.Analyze(context.Background(), "https://github.com/octo/hello"); err == nil {
		t.Fatal("expected error when report_id is missing")
	}
}

func TestAnalyze_TransportFailure_UsesFallback(t *testing.T) {
	t.Parallel()
	wc, _ := webclient.NewNetHTTPClient(webclient.Config{}, logging.NopLogger{}, nil)
	c, err := apiclient.New("http://127.0.0.1:1", wc, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Analyze(context.Background(), "https://github.com/octo/hello")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if got := apiclient.Message(err, "Request failed"); got != "Request failed" {
		t.Errorf("expected fallback message, got %q", got)
	}
}

// ─── GetReport ──────────────────────────────────────────────────────────

func TestGetReport_DecodesFindings(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reports/abc" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":       "abc",
			"repo_url": "https://github.com/octo/hello",
			"status":   "done",
			"findings_json": map[string]any{
				"overall_score": 82,
				"sections": []any{map[string]any{"name": "Runability", "score": 30, "checks": []any{}}},
			},
		})
	}))

	r, err := c.GetReport(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if r.Score() != 82 {
		t.Errorf("expected score 82, got %d", r.Score())
	}
	if len(r.Sections()) != 1 {
		t.Errorf("expected 1 section, got %d", len(r.Sections()))
	}
}

func TestGetReport_NotFound(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Report does not exist"})
	}))

	_, err := c.GetReport(context.Background(), "missing")
	if !errors.Is(err, apiclient.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := apiclient.Message(err, "Failed to load"); got != "Report not found" {
		t.Errorf("expected fixed not-found message, got %q", got)
	}
}

func TestGetReport_ServerError_NotNotFound(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadGateway, map[string]string{"detail": "database unavailable"})
	}))

	_, err := c.GetReport(context.Background(), "abc")
	if errors.Is(err, apiclient.ErrNotFound) {
		t.Fatal("502 must not match ErrNotFound")
	}
	if got := apiclient.Message(err, "Failed to load"); got != "database unavailable" {
		t.Errorf("unexpected message %q", got)
	}
}

// ─── ListReports / Health ───────────────────────────────────────────────

func TestListReports_PassesLimit(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "3" {
			t.Errorf("expected limit=3, got %q", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "a", "repo_url": "https://github.com/a/b", "score": 70, "created_at": "2024-01-02T03:04:05"},
			{"id": "b", "repo_url": "https://github.com/c/d", "score": nil, "created_at": nil},
		})
	}))

	items, err := c.ListReports(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].Score != nil {
		t.Errorf("expected nil score for pending item")
	}
}

func TestListReports_NullBody_IsEmpty(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "null")
	}))
	items, err := c.ListReports(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", items)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Status != "ok" {
		t.Errorf("expected ok, got %q", h.Status)
	}
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	t.Parallel()
	wc, _ := webclient.NewNetHTTPClient(webclient.Config{}, nil, nil)
	if _, err := apiclient.New("not a url", wc, nil); err == nil {
		t.Fatal("expected error for invalid base url")
	}
	if _, err := apiclient.New("http://x", nil, nil); err == nil {
		t.Fatal("expected error for nil webclient")
	}
}

func TestMessage_Nil(t *testing.T) {
	t.Parallel()
	if apiclient.Message(nil, "x") != "" {
		t.Error("expected empty message for nil error")
	}
}
