package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/compare"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/findings"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/format"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/history"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/reportview"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var assetsFS embed.FS

// PendingNotice replaces the report once polling gives up on a pending job.
const PendingNotice = "Still analyzing. This is taking longer than usual; refresh the page to check again."

var pageNames = []string{"index", "report", "compare", "notfound"}

type renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"repoLabel":     findings.RepoLabel,
	"pendingNotice": func() string { return PendingNotice },
	"signed":        format.Signed,
	"score":         scoreText,
}

func scoreText(p *int) string {
	if p == nil {
		return findings.Placeholder
	}
	return fmt.Sprintf("%d", *p)
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// page renders a full document into w with status.
func (r *renderer) page(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// fragment renders the report body alone, as pushed over the websocket.
func (r *renderer) fragment(data *reportPage) (string, error) {
	var buf bytes.Buffer
	if err := r.pages["report"].ExecuteTemplate(&buf, "report_body", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// --- view models ---

type indexPage struct {
	Title   string
	RepoURL string
	// FieldError is the inline validation message.
	FieldError string
	// Alert is a request failure message.
	Alert  string
	Recent []history.Entry
}

type tabLink struct {
	Name   findings.Tab
	URL    string
	Active bool
}

type statusOption struct {
	Value    string
	Selected bool
}

type reportPage struct {
	Title    string
	ID       string
	ShareURL string
	Phase    reportview.Phase
	Report   *model.Report

	Summary    *findings.Summary
	Tabs       []tabLink
	Tab        findings.Tab
	TabView    findings.TabView
	Filter     findings.Filter
	Statuses   []statusOption
	FilterPath string

	LoadError      string
	FailureMessage string
	RetryError     string
	PollTimedOut   bool
	Polling        bool
	Retrying       bool

	CompareURL string
	RetryURL   string
	WSURL      string
}

type comparePage struct {
	Title      string
	Base       *model.Report
	Head       *model.Report
	BaseLabel  string
	HeadLabel  string
	Comparison *compare.Comparison
	Message    string
}

// buildReportPage derives everything the report template needs from one
// view snapshot and the request's tab and filter parameters.
func (s *Server) buildReportPage(snap reportview.Snapshot, req *http.Request) *reportPage {
	id := snap.ReportID
	q := req.URL.Query()
	p := &reportPage{
		Title:        "Report",
		ID:           id,
		ShareURL:     absoluteURL(req, "/reports/"+url.PathEscape(id)),
		Phase:        snap.Phase,
		Report:       snap.Report,
		Filter:       findings.Filter{Status: q.Get("status"), Query: q.Get("q")},
		LoadError:    snap.Error,
		RetryError:   snap.RetryError,
		PollTimedOut: snap.PollTimedOut,
		Polling:      snap.Polling,
		Retrying:     snap.Retrying,
		FilterPath:   "/reports/" + url.PathEscape(id),
		RetryURL:     "/reports/" + url.PathEscape(id) + "/retry",
		CompareURL:   "/reports/" + url.PathEscape(id) + "/compare",
		WSURL:        "/ws/reports/" + url.PathEscape(id),
	}
	if p.Filter.Status == "" {
		p.Filter.Status = findings.StatusAll
	}
	for _, st := range findings.StatusFilters {
		p.Statuses = append(p.Statuses, statusOption{Value: st, Selected: st == p.Filter.Status})
	}
	if raw := req.URL.RawQuery; raw != "" {
		p.WSURL += "?" + raw
	}

	switch st := snap.Report.State().(type) {
	case model.DoneState:
		sum := findings.Summarize(snap.Report, s.cfg.HighlightLimit)
		p.Summary = &sum
		p.Title = sum.Repo
		p.Tab = findings.ParseTab(q.Get("tab"), sum.Tabs)
		p.TabView = findings.View(snap.Report, p.Tab, p.Filter)
		for _, t := range sum.Tabs {
			p.Tabs = append(p.Tabs, tabLink{Name: t, URL: tabURL(id, t, p.Filter), Active: t == p.Tab})
		}
	case model.FailedState:
		p.FailureMessage = st.Message
		if p.FailureMessage == "" {
			p.FailureMessage = "Analysis failed"
		}
	}
	return p
}

func tabURL(id string, t findings.Tab, f findings.Filter) string {
	v := url.Values{}
	v.Set("tab", string(t))
	if f.Status != "" && f.Status != findings.StatusAll {
		v.Set("status", f.Status)
	}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	return "/reports/" + url.PathEscape(id) + "?" + v.Encode()
}

// absoluteURL resolves path against the host the request came in on.
func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + r.Host + path
}
