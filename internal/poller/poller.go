// Package poller runs the report polling loop: one immediate fetch, then a
// fixed-interval poll while the report is pending, bounded by a deadline.
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
)

const (
	DefaultInterval = 2 * time.Second
	DefaultDeadline = 30 * time.Second
)

// Fetcher loads a report by id. *apiclient.Client satisfies it.
type Fetcher interface {
	GetReport(ctx context.Context, id string) (*model.Report, error)
}

type Config struct {
	Interval time.Duration
	// Deadline is measured from the start of polling, not from the first fetch.
	Deadline time.Duration
}

func DefaultConfig() Config {
	return Config{Interval: DefaultInterval, Deadline: DefaultDeadline}
}

// Outcome says why a loop ended. Polling marks intermediate updates.
type Outcome int

const (
	Polling Outcome = iota
	Settled
	TimedOut
	Failed
	Canceled
)

func (o Outcome) String() string {
	switch o {
	case Polling:
		return "polling"
	case Settled:
		return "settled"
	case TimedOut:
		return "timed_out"
	case Failed:
		return "failed"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Update is one observation of the loop. Report is the latest report seen
// (it survives a failed fetch or a timeout). Err is set only on Failed.
type Update struct {
	Report  *model.Report
	Err     error
	Outcome Outcome
	Final   bool
}

type Poller struct {
	fetcher Fetcher
	cfg     Config
	logger  logging.Logger
}

func New(fetcher Fetcher, cfg Config, logger logging.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = DefaultDeadline
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Poller{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger.With(logging.Field{Key: "component", Value: "poller"}),
	}
}

// Watch starts a loop for id and returns its update channel, closed when the
// loop ends. Cancelling ctx aborts in-flight fetches and stops the loop; no
// update is sent after ctx is done except a best-effort Canceled.
func (p *Poller) Watch(ctx context.Context, id string) <-chan Update {
	ch := make(chan Update, 1)
	go p.run(ctx, id, ch)
	return ch
}

func (p *Poller) run(ctx context.Context, id string, ch chan<- Update) {
	defer close(ch)
	log := p.logger.With(logging.Field{Key: "report_id", Value: id})

	report, err := p.fetcher.GetReport(ctx, id)
	if u, done := p.classify(ctx, report, err, nil); done {
		p.finish(ctx, ch, u, log)
		return
	} else if !send(ctx, ch, u) {
		p.finish(ctx, ch, Update{Outcome: Canceled, Final: true}, log)
		return
	}
	last := report

	log.Debug("report pending, polling",
		logging.Field{Key: "interval", Value: p.cfg.Interval.String()},
		logging.Field{Key: "deadline", Value: p.cfg.Deadline.String()})

	start := time.Now()
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.finish(ctx, ch, Update{Report: last, Outcome: Canceled, Final: true}, log)
			return
		case <-ticker.C:
		}

		if time.Since(start) >= p.cfg.Deadline {
			p.finish(ctx, ch, Update{Report: last, Outcome: TimedOut, Final: true}, log)
			return
		}

		report, err := p.fetcher.GetReport(ctx, id)
		u, done := p.classify(ctx, report, err, last)
		if done {
			p.finish(ctx, ch, u, log)
			return
		}
		last = report
		if !send(ctx, ch, u) {
			p.finish(ctx, ch, Update{Report: last, Outcome: Canceled, Final: true}, log)
			return
		}
	}
}

// classify turns one fetch result into an update; done means the loop ends.
func (p *Poller) classify(ctx context.Context, report *model.Report, err error, last *model.Report) (Update, bool) {
	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return Update{Report: last, Outcome: Canceled, Final: true}, true
	case err != nil:
		return Update{Report: last, Err: err, Outcome: Failed, Final: true}, true
	case !report.IsPending():
		return Update{Report: report, Outcome: Settled, Final: true}, true
	default:
		return Update{Report: report, Outcome: Polling}, false
	}
}

func (p *Poller) finish(ctx context.Context, ch chan<- Update, u Update, log logging.Logger) {
	fields := []logging.Field{{Key: "outcome", Value: u.Outcome.String()}}
	if u.Err != nil {
		fields = append(fields, logging.Field{Key: "error", Value: u.Err.Error()})
	}
	log.Debug("poll loop finished", fields...)

	if u.Outcome == Canceled {
		select {
		case ch <- u:
		default:
		}
		return
	}
	send(ctx, ch, u)
}

func send(ctx context.Context, ch chan<- Update, u Update) bool {
	select {
	case ch <- u:
		return true
	case <-ctx.Done():
		return false
	}
}
