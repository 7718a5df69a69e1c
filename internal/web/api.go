package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/apiclient"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/findings"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/reportview"
)

// handleViewReport godoc
// @Summary Derived report view
// @Description Fetches a report from the backend and returns its phase, summary and one filtered tab.
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Param tab query string false "Tab name" default(Runability)
// @Param status query string false "Status filter" Enums(all, fail, warn, pass)
// @Param q query string false "Free-text filter"
// @Success 200 {object} ViewResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/view/reports/{id} [get]
func (s *Server) handleViewReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := s.backend.GetReport(r.Context(), id)
	snap := reportview.Resolve(id, report, err)
	switch snap.Phase {
	case reportview.PhaseNotFound:
		writeError(w, http.StatusNotFound, snap.Error)
		return
	case reportview.PhaseError:
		writeError(w, http.StatusBadGateway, snap.Error)
		return
	}
	s.recordResult(r.Context(), report)

	resp := ViewResponse{ReportID: id, Phase: string(snap.Phase), Report: report}
	switch st := report.State().(type) {
	case model.DoneState:
		sum := findings.Summarize(report, s.cfg.HighlightLimit)
		q := r.URL.Query()
		f := findings.Filter{Status: q.Get("status"), Query: q.Get("q")}
		tab := findings.View(report, findings.ParseTab(q.Get("tab"), sum.Tabs), f)
		resp.Summary = &sum
		resp.Tab = &tab
	case model.FailedState:
		resp.Failure = st.Message
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealth godoc
// @Summary Health check
// @Description Reports whether the analysis backend is reachable.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h, err := s.backend.Health(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:  "degraded",
			Backend: "unreachable",
			Error:   apiclient.Message(err, err.Error()),
		})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Backend: h.Status})
}
