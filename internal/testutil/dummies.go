// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/apiclient"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount is safe to call while components are still logging.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// Responses[url] is returned when present, otherwise a 404.
// Set FailURLs[url] = true to force a transport error for a specific URL.
type DummyWebClient struct {
	ResponseDelay time.Duration
	Responses     map[string]CannedResponse
	FailURLs      map[string]bool
	mu            sync.Mutex
	Requests      []*webclient.Request
}

// CannedResponse is a status and body served by DummyWebClient.
type CannedResponse struct {
	Status int
	Body   string
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}

	canned, ok := d.Responses[req.URL]
	if !ok {
		canned = CannedResponse{Status: http.StatusNotFound, Body: `{"detail":"Not Found"}`}
	}
	return &webclient.Response{
		Request:    req,
		Body:       []byte(canned.Body),
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
		StatusCode: canned.Status,
		Status:     http.StatusText(canned.Status),
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// RequestCount returns how many requests were recorded.
func (d *DummyWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// ─── Backend API ───────────────────────────────────────────────────────

// FakeAPI implements the backend surface used by views, the web server and
// the CLI. Each id serves its scripted reports in order, repeating the last
// one. Unknown ids yield the same 404 the real client returns.
type FakeAPI struct {
	mu       sync.Mutex
	reports  map[string][]*model.Report
	getErrs  map[string]error
	calls    map[string]int
	inFlight int
	maxIn    int

	// BlockGet makes GetReport wait for ctx cancellation.
	BlockGet bool

	AnalyzeID    string
	AnalyzeErr   error
	AnalyzeDelay time.Duration
	Analyzed     []string

	Items     []model.ReportListItem
	ListErr   error
	HealthErr error
}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		reports: make(map[string][]*model.Report),
		getErrs: make(map[string]error),
		calls:   make(map[string]int),
	}
}

// SetReports scripts the reports served for id.
func (f *FakeAPI) SetReports(id string, reports ...*model.Report) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports[id] = reports
	f.calls[id] = 0
}

// FailGet makes every GetReport for id return err.
func (f *FakeAPI) FailGet(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErrs[id] = err
}

func (f *FakeAPI) GetReport(ctx context.Context, id string) (*model.Report, error) {
	f.mu.Lock()
	n := f.calls[id]
	f.calls[id] = n + 1
	f.inFlight++
	if f.inFlight > f.maxIn {
		f.maxIn = f.inFlight
	}
	block := f.BlockGet
	err := f.getErrs[id]
	seq := f.reports[id]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if len(seq) == 0 {
		return nil, &apiclient.APIError{Op: "get report", StatusCode: http.StatusNotFound, Message: apiclient.NotFoundMessage}
	}
	if n >= len(seq) {
		n = len(seq) - 1
	}
	return seq[n], nil
}

func (f *FakeAPI) Analyze(ctx context.Context, repoURL string) (string, error) {
	if f.AnalyzeDelay > 0 {
		select {
		case <-time.After(f.AnalyzeDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Analyzed = append(f.Analyzed, repoURL)
	if f.AnalyzeErr != nil {
		return "", f.AnalyzeErr
	}
	if f.AnalyzeID == "" {
		return "", errors.New("fake api: no AnalyzeID configured")
	}
	return f.AnalyzeID, nil
}

func (f *FakeAPI) ListReports(_ context.Context, limit int) ([]model.ReportListItem, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	items := append([]model.ReportListItem{}, f.Items...)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (f *FakeAPI) Health(context.Context) (*apiclient.Health, error) {
	if f.HealthErr != nil {
		return nil, f.HealthErr
	}
	return &apiclient.Health{Status: "ok"}, nil
}

// Calls returns how many times GetReport was called for id.
func (f *FakeAPI) Calls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

// MaxInFlight is the highest number of concurrent GetReport calls seen.
func (f *FakeAPI) MaxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxIn
}

// AnalyzedURLs returns a copy of every submitted repo URL.
func (f *FakeAPI) AnalyzedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Analyzed...)
}

// ─── helpers ───────────────────────────────────────────────────────────

type errString struct{ s string }

func (e *errString) Error() string { return e.s }
