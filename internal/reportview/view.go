// Package reportview is the state container behind one mounted report page.
// A View owns at most one poll loop and publishes Snapshots as the report
// moves through its lifecycle.
package reportview

import (
	"context"
	"errors"
	"sync"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/apiclient"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/notify"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/poller"
)

const (
	LoadFailedMessage  = "Failed to load"
	RetryFailedMessage = "Re-analyze failed"
	LinkCopiedMessage  = "Link copied"
)

var (
	ErrNotMounted      = errors.New("view is not mounted")
	ErrNothingToRetry  = errors.New("no repository to re-analyze")
	ErrRetryInProgress = errors.New("re-analysis already in progress")
	// ErrSuperseded means the view was re-mounted or unmounted while a
	// re-analysis was in flight; its result was dropped.
	ErrSuperseded = errors.New("view changed during re-analysis")
)

// API is the backend surface a view needs.
type API interface {
	GetReport(ctx context.Context, id string) (*model.Report, error)
	Analyze(ctx context.Context, repoURL string) (string, error)
}

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseLoading  Phase = "loading"
	PhasePending  Phase = "pending"
	PhaseDone     Phase = "done"
	PhaseFailed   Phase = "failed"
	PhaseUnknown  Phase = "unknown"
	PhaseError    Phase = "error"
	PhaseNotFound Phase = "not_found"
)

// Snapshot is an immutable copy of the view state.
type Snapshot struct {
	ReportID     string        `json:"report_id"`
	Phase        Phase         `json:"phase"`
	Report       *model.Report `json:"report,omitempty"`
	Error        string        `json:"error,omitempty"`
	NotFound     bool          `json:"not_found"`
	PollTimedOut bool          `json:"poll_timed_out"`
	Polling      bool          `json:"polling"`
	Retrying     bool          `json:"retrying"`
	RetryError   string        `json:"retry_error,omitempty"`
	NextReportID string        `json:"next_report_id,omitempty"`
}

type View struct {
	api      API
	poller   *poller.Poller
	notifier *notify.Notifier
	logger   logging.Logger

	// mountMu serialises Mount and Unmount
	mountMu sync.Mutex

	mu      sync.Mutex
	snap    Snapshot
	gen     uint64
	loopCtx context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	subs    map[int]chan Snapshot
	nextSub int
}

// New builds an unmounted view. notifier may be nil.
func New(api API, cfg poller.Config, notifier *notify.Notifier, logger logging.Logger) *View {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.With(logging.Field{Key: "component", Value: "reportview"})
	return &View{
		api:      api,
		poller:   poller.New(api, cfg, logger),
		notifier: notifier,
		logger:   logger,
		snap:     Snapshot{Phase: PhaseIdle},
		subs:     make(map[int]chan Snapshot),
	}
}

// Mount tears down any running loop, waits for it to exit and starts a new
// one for id. Only one loop is ever active per view.
func (v *View) Mount(ctx context.Context, id string) {
	v.mountMu.Lock()
	defer v.mountMu.Unlock()

	v.stopLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.loopCtx = loopCtx
	v.cancel = cancel
	v.done = done
	v.snap = Snapshot{ReportID: id, Phase: PhaseLoading, Polling: true}
	v.publishLocked()
	v.mu.Unlock()

	v.logger.Debug("mounted", logging.Field{Key: "report_id", Value: id})

	updates := v.poller.Watch(loopCtx, id)
	go func() {
		defer close(done)
		for u := range updates {
			v.apply(gen, u)
		}
	}()
}

// Unmount cancels the loop and waits for it. The last snapshot is kept.
func (v *View) Unmount() {
	v.mountMu.Lock()
	defer v.mountMu.Unlock()
	v.stopLocked()
}

// Done returns a channel closed when the current loop exits, or nil when
// nothing was mounted.
func (v *View) Done() <-chan struct{} {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.done
}

// stopLocked requires mountMu.
func (v *View) stopLocked() {
	v.mu.Lock()
	cancel, done := v.cancel, v.done
	v.cancel = nil
	v.loopCtx = nil
	// bump so stragglers from the old loop are discarded
	v.gen++
	v.snap.Polling = false
	v.snap.Retrying = false
	v.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (v *View) apply(gen uint64, u poller.Update) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return
	}

	s := v.snap
	s.Polling = !u.Final
	if u.Report != nil {
		s.Report = u.Report
		s.Phase = phaseOf(u.Report)
	}

	switch u.Outcome {
	case poller.TimedOut:
		s.PollTimedOut = true
	case poller.Failed:
		s.Error = apiclient.Message(u.Err, LoadFailedMessage)
		s.NotFound = errors.Is(u.Err, apiclient.ErrNotFound)
		s.Phase = PhaseError
		if s.NotFound {
			s.Phase = PhaseNotFound
		}
		v.logger.Warn("report load failed",
			logging.Field{Key: "report_id", Value: s.ReportID},
			logging.Field{Key: "error", Value: u.Err})
	case poller.Canceled:
		s.Polling = false
	}

	v.snap = s
	v.publishLocked()
}

// Resolve builds the snapshot a single fetch of id produces, for callers
// that render once instead of mounting a view.
func Resolve(id string, r *model.Report, err error) Snapshot {
	s := Snapshot{ReportID: id, Phase: PhaseLoading}
	if err != nil {
		s.Error = apiclient.Message(err, LoadFailedMessage)
		s.NotFound = errors.Is(err, apiclient.ErrNotFound)
		s.Phase = PhaseError
		if s.NotFound {
			s.Phase = PhaseNotFound
		}
		return s
	}
	s.Report = r
	s.Phase = phaseOf(r)
	return s
}

func phaseOf(r *model.Report) Phase {
	switch r.State().(type) {
	case model.PendingState:
		return PhasePending
	case model.DoneState:
		return PhaseDone
	case model.FailedState:
		return PhaseFailed
	case model.UnknownState:
		return PhaseUnknown
	default:
		return PhaseUnknown
	}
}

// Reanalyze submits the current report's repository as a new job. On
// success the new id is recorded in NextReportID and returned; on failure
// the current report stays in place and RetryError is set. The request is
// bound to the current mount: re-mounting or unmounting cancels it and its
// result is discarded with ErrSuperseded.
func (v *View) Reanalyze(ctx context.Context) (string, error) {
	v.mu.Lock()
	if v.snap.Phase == PhaseIdle {
		v.mu.Unlock()
		return "", ErrNotMounted
	}
	if v.snap.Report == nil || v.snap.Report.RepoURL == "" {
		v.mu.Unlock()
		return "", ErrNothingToRetry
	}
	if v.snap.Retrying {
		v.mu.Unlock()
		return "", ErrRetryInProgress
	}
	repoURL := v.snap.Report.RepoURL
	gen, mountCtx := v.gen, v.loopCtx
	v.snap.Retrying = true
	v.snap.RetryError = ""
	v.publishLocked()
	v.mu.Unlock()

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if mountCtx != nil {
		stop := context.AfterFunc(mountCtx, cancel)
		defer stop()
	}
	id, err := v.api.Analyze(reqCtx, repoURL)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		v.logger.Debug("dropping re-analyze result for a superseded mount",
			logging.Field{Key: "repo_url", Value: repoURL})
		return "", ErrSuperseded
	}
	if err != nil {
		v.snap.Retrying = false
		v.snap.RetryError = apiclient.Message(err, RetryFailedMessage)
		v.publishLocked()
		v.logger.Warn("re-analyze failed",
			logging.Field{Key: "repo_url", Value: repoURL},
			logging.Field{Key: "error", Value: err})
		return "", err
	}
	v.snap.NextReportID = id
	v.publishLocked()
	v.logger.Info("re-analyze submitted",
		logging.Field{Key: "repo_url", Value: repoURL},
		logging.Field{Key: "report_id", Value: id})
	return id, nil
}

// LinkCopied shows the share-link toast.
func (v *View) LinkCopied() {
	if v.notifier != nil {
		v.notifier.Show(LinkCopiedMessage)
	}
}

// Snapshot returns the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap
}

// Subscribe returns a channel holding the latest snapshot (the current one
// is delivered immediately) and a func that ends the subscription.
func (v *View) Subscribe() (<-chan Snapshot, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ch := make(chan Snapshot, 1)
	id := v.nextSub
	v.nextSub++
	v.subs[id] = ch
	ch <- v.snap

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if c, ok := v.subs[id]; ok {
				delete(v.subs, id)
				close(c)
			}
		})
	}
}

func (v *View) publishLocked() {
	for _, ch := range v.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v.snap
	}
}

// Close unmounts and ends every subscription.
func (v *View) Close() {
	v.Unmount()
	v.mu.Lock()
	defer v.mu.Unlock()
	for id, ch := range v.subs {
		delete(v.subs, id)
		close(ch)
	}
}
