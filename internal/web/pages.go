package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/apiclient"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/compare"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/findings"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/history"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/reportview"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/repourl"
)

// RequestFailedMessage is shown when a submission fails without a backend
// detail.
const RequestFailedMessage = "Request failed"

// --- landing ---

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, http.StatusOK, indexPage{})
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, p indexPage) {
	p.Title = "ShipCheck"
	recent, err := s.history.List(r.Context(), s.cfg.RecentLimit)
	if err != nil {
		s.logger.Warn("listing history", logging.Field{Key: "error", Value: err.Error()})
	}
	p.Recent = recent
	s.render(w, status, "index", p)
}

// handleAnalyze validates the submitted URL locally and only then creates
// the analysis job.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	raw := r.PostFormValue("repo_url")
	repo, err := repourl.Parse(raw)
	if err != nil {
		var verr *repourl.ValidationError
		msg := err.Error()
		if errors.As(err, &verr) {
			msg = verr.Reason
		}
		s.renderIndex(w, r, http.StatusUnprocessableEntity, indexPage{RepoURL: raw, FieldError: msg})
		return
	}

	id, err := s.submit(r.Context(), repo)
	if err != nil {
		s.renderIndex(w, r, http.StatusBadGateway, indexPage{RepoURL: raw, Alert: apiclient.Message(err, RequestFailedMessage)})
		return
	}
	http.Redirect(w, r, "/reports/"+url.PathEscape(id), http.StatusSeeOther)
}

// submit creates a job for repo and records it in history.
func (s *Server) submit(ctx context.Context, repo repourl.Repo) (string, error) {
	id, err := s.backend.Analyze(ctx, strings.TrimSpace(repo.Raw))
	if err != nil {
		s.logger.Warn("analyze failed",
			logging.Field{Key: "repo_url", Value: repo.Raw},
			logging.Field{Key: "error", Value: err.Error()})
		return "", err
	}
	entry := history.NewEntry(id, repo, time.Now())
	if err := s.history.Record(ctx, entry); err != nil {
		s.logger.Warn("recording history", logging.Field{Key: "report_id", Value: id}, logging.Field{Key: "error", Value: err.Error()})
	}
	s.logger.Info("analysis submitted", logging.Field{Key: "repo_url", Value: entry.RepoURL}, logging.Field{Key: "report_id", Value: id})
	return id, nil
}

// --- report ---

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := s.backend.GetReport(r.Context(), id)
	snap := reportview.Resolve(id, report, err)
	if snap.Phase == reportview.PhasePending {
		// the page script takes over polling
		snap.Polling = true
	}
	s.renderReport(w, r, snap)
}

func (s *Server) renderReport(w http.ResponseWriter, r *http.Request, snap reportview.Snapshot) {
	switch snap.Phase {
	case reportview.PhaseNotFound:
		s.renderNotFound(w)
		return
	case reportview.PhaseError:
		s.logger.Warn("report load failed", logging.Field{Key: "report_id", Value: snap.ReportID}, logging.Field{Key: "error", Value: snap.Error})
	}
	s.recordResult(r.Context(), snap.Report)

	status := http.StatusOK
	if snap.Phase == reportview.PhaseError {
		status = http.StatusBadGateway
	}
	if snap.RetryError != "" {
		status = http.StatusBadGateway
	}
	s.render(w, status, "report", s.buildReportPage(snap, r))
}

// handleRetry re-submits the report's repository as a new job. A failure
// keeps the current report on screen with the retry error beside it.
func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := s.backend.GetReport(r.Context(), id)
	snap := reportview.Resolve(id, report, err)
	if err != nil || report.RepoURL == "" {
		s.renderReport(w, r, snap)
		return
	}

	repo, perr := repourl.Parse(report.RepoURL)
	if perr != nil {
		// the backend accepted it once; keep its form
		repo = repourl.Repo{Raw: report.RepoURL}
	}
	next, err := s.submit(r.Context(), repo)
	if err != nil {
		snap.RetryError = apiclient.Message(err, reportview.RetryFailedMessage)
		s.renderReport(w, r, snap)
		return
	}
	http.Redirect(w, r, "/reports/"+url.PathEscape(next), http.StatusSeeOther)
}

// --- compare ---

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	headID := chi.URLParam(r, "id")
	baseID := r.URL.Query().Get("with")
	p := comparePage{Title: "Compare"}

	if baseID == "" {
		prev, err := history.Previous(ctx, s.history, headID)
		if err != nil {
			if !errors.Is(err, history.ErrEntryNotFound) {
				s.logger.Warn("looking up previous analysis", logging.Field{Key: "error", Value: err.Error()})
			}
			p.Message = "No earlier analysis of this repository to compare with."
			s.render(w, http.StatusOK, "compare", p)
			return
		}
		baseID = prev.ReportID
	}

	head, err := s.backend.GetReport(ctx, headID)
	if err != nil {
		s.compareLoadFailed(w, err)
		return
	}
	base, err := s.backend.GetReport(ctx, baseID)
	if err != nil {
		s.compareLoadFailed(w, err)
		return
	}

	p.Base, p.Head = base, head
	p.BaseLabel = findings.FormatDate(base.CreatedAt)
	p.HeadLabel = findings.FormatDate(head.CreatedAt)
	cmp, err := compare.Reports(base, head)
	if err != nil {
		p.Message = "Both analyses must be finished to compare them."
		s.render(w, http.StatusConflict, "compare", p)
		return
	}
	p.Comparison = cmp
	s.render(w, http.StatusOK, "compare", p)
}

func (s *Server) compareLoadFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, apiclient.ErrNotFound) {
		s.renderNotFound(w)
		return
	}
	s.render(w, http.StatusBadGateway, "compare", comparePage{
		Title:   "Compare",
		Message: apiclient.Message(err, reportview.LoadFailedMessage),
	})
}

// --- shared ---

type notFoundPage struct {
	Title   string
	Message string
}

func (s *Server) renderNotFound(w http.ResponseWriter) {
	s.render(w, http.StatusNotFound, "notfound", notFoundPage{Title: "Not found", Message: apiclient.NotFoundMessage})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.render(w, http.StatusNotFound, "notfound", notFoundPage{Title: "Not found", Message: "Page not found"})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	if err := s.pages.page(w, status, name, data); err != nil {
		s.logger.Error("rendering page", logging.Field{Key: "page", Value: name}, logging.Field{Key: "error", Value: err.Error()})
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
