package web

import (
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/findings"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
)

// ViewResponse is the derived view of one report.
type ViewResponse struct {
	ReportID string            `json:"report_id" example:"6f1c2a9e-7b1d-4c38-9a57-2d4f0e8b1c33"`
	Phase    string            `json:"phase" example:"done"`
	Report   *model.Report     `json:"report,omitempty"`
	Failure  string            `json:"failure,omitempty" example:"Repository not found or inaccessible"`
	Summary  *findings.Summary `json:"summary,omitempty"`
	Tab      *findings.TabView `json:"tab,omitempty"`
}

// HealthResponse reports this server and its backend.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Backend string `json:"backend" example:"ok"`
	Error   string `json:"error,omitempty" example:"dial tcp 127.0.0.1:8000: connect: connection refused"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"Report not found"`
}

// StateMessage is pushed on the report websocket whenever the view changes.
// HTML is the rendered report body.
type StateMessage struct {
	Type         string `json:"type" example:"state"`
	Phase        string `json:"phase" example:"pending"`
	Polling      bool   `json:"polling"`
	PollTimedOut bool   `json:"poll_timed_out"`
	NextReportID string `json:"next_report_id,omitempty"`
	Error        string `json:"error,omitempty"`
	HTML         string `json:"html"`
}

// ToastMessage mirrors the toast container.
type ToastMessage struct {
	Type    string `json:"type" example:"toast"`
	Message string `json:"message" example:"Link copied"`
	Visible bool   `json:"visible"`
}

// ClientMessage is sent by the page: {"type":"reanalyze"} or {"type":"copied"}.
type ClientMessage struct {
	Type string `json:"type"`
}
