package model

// ReportState is the tagged union of report lifecycle states. Views switch
// on the concrete type instead of comparing status strings.
type ReportState interface {
	reportState()
}

// PendingState means the backend is still analyzing.
type PendingState struct{}

// DoneState carries validated success findings. Findings is never nil; a
// done report with an unrecognised payload gets empty findings.
type DoneState struct {
	Findings *SuccessFindings
	Score    int
}

// FailedState carries the backend failure message, possibly empty.
type FailedState struct {
	Message string
}

// UnknownState covers a null or unrecognised status.
type UnknownState struct {
	Status Status
}

func (PendingState) reportState() {}
func (DoneState) reportState()    {}
func (FailedState) reportState()  {}
func (UnknownState) reportState() {}

// State classifies the report.
func (r *Report) State() ReportState {
	if r == nil {
		return UnknownState{}
	}
	switch r.Status {
	case StatusPending:
		return PendingState{}
	case StatusDone:
		f := r.Success()
		if f == nil {
			f = &SuccessFindings{Sections: []Section{}}
		}
		return DoneState{Findings: f, Score: r.Score()}
	case StatusFailed:
		var msg string
		if f := r.Failure(); f != nil {
			msg = f.Error
		}
		return FailedState{Message: msg}
	default:
		return UnknownState{Status: r.Status}
	}
}

// IsPending reports whether the backend is still working on the report.
func (r *Report) IsPending() bool {
	_, ok := r.State().(PendingState)
	return ok
}
