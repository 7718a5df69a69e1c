package model

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of a report as reported by the backend.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// CheckStatus is the outcome of a single evaluated check.
type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
)

// Evidence points at the file and snippet that support a check outcome.
type Evidence struct {
	File      string `json:"file"`
	Snippet   string `json:"snippet"`
	StartLine *int   `json:"start_line,omitempty"`
	EndLine   *int   `json:"end_line,omitempty"`
}

// LineRange renders "12" or "12-18", or "" when the evidence has no lines.
func (e Evidence) LineRange() string {
	switch {
	case e.StartLine == nil:
		return ""
	case e.EndLine == nil || *e.EndLine == *e.StartLine:
		return fmt.Sprintf("%d", *e.StartLine)
	default:
		return fmt.Sprintf("%d-%d", *e.StartLine, *e.EndLine)
	}
}

// Check is one evaluated criterion, e.g. "CI config present".
type Check struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Status         CheckStatus `json:"status"`
	Evidence       Evidence    `json:"evidence"`
	Recommendation string      `json:"recommendation"`
	Points         int         `json:"points"`
}

// Section is a named group of related checks.
type Section struct {
	Name   string  `json:"name"`
	Checks []Check `json:"checks"`
	Score  int     `json:"score"`
}

// Report is the result, or pending/failed placeholder, of analyzing one
// GitHub repository. Timestamps are kept as the backend sent them because
// the backend emits ISO-8601 without a zone.
type Report struct {
	ID           string  `json:"id"`
	RepoURL      string  `json:"repo_url"`
	RepoOwner    *string `json:"repo_owner"`
	RepoName     *string `json:"repo_name"`
	CommitSHA    *string `json:"commit_sha,omitempty"`
	Status       Status  `json:"status"`
	OverallScore *int    `json:"overall_score"`
	CreatedAt    *string `json:"created_at"`
	UpdatedAt    *string `json:"updated_at"`

	// RawFindings is findings_json exactly as received.
	RawFindings json.RawMessage `json:"findings_json"`

	// Findings is RawFindings after structural validation; nil when the
	// payload matched neither variant.
	Findings Findings `json:"-"`
}

// UnmarshalJSON decodes a report and classifies findings_json.
func (r *Report) UnmarshalJSON(data []byte) error {
	type alias Report
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Report(a)
	r.Findings = DecodeFindings(r.RawFindings)
	return nil
}

// Success returns the success findings when present.
func (r *Report) Success() *SuccessFindings {
	if r == nil {
		return nil
	}
	s, _ := r.Findings.(*SuccessFindings)
	return s
}

// Failure returns the failure findings when present.
func (r *Report) Failure() *FailureFindings {
	if r == nil {
		return nil
	}
	f, _ := r.Findings.(*FailureFindings)
	return f
}

// Score is the success overall_score, else the report overall_score, else 0.
func (r *Report) Score() int {
	if s := r.Success(); s != nil {
		return s.OverallScore
	}
	if r != nil && r.OverallScore != nil {
		return *r.OverallScore
	}
	return 0
}

// Sections returns the success sections, or nil.
func (r *Report) Sections() []Section {
	if s := r.Success(); s != nil {
		return s.Sections
	}
	return nil
}

// InterviewPack returns the interview questions, or nil.
func (r *Report) InterviewPack() []string {
	if s := r.Success(); s != nil {
		return s.InterviewPack
	}
	return nil
}

// ReportListItem is one row of GET /api/reports.
type ReportListItem struct {
	ID        string  `json:"id"`
	RepoURL   string  `json:"repo_url"`
	Score     *int    `json:"score"`
	CreatedAt *string `json:"created_at"`
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	RepoURL string `json:"repo_url"`
}

// AnalyzeResponse is returned by POST /api/analyze.
type AnalyzeResponse struct {
	ReportID string `json:"report_id"`
}

// Ptr is a small helper for optional fields in fixtures and tests.
func Ptr[T any](v T) *T { return &v }
