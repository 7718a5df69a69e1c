package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/notify"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/reportview"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

// handleReportWS mounts one report view per connection and streams its
// snapshots and toasts. This goroutine is the only writer on conn.
func (s *Server) handleReportWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	toasts := notify.New(s.cfg.ToastDuration)
	defer toasts.Close()
	view := reportview.New(s.backend, s.cfg.Poll, toasts, s.logger)
	defer view.Close()

	snaps, unsubSnaps := view.Subscribe()
	defer unsubSnaps()
	toastCh, unsubToasts := toasts.Subscribe()
	defer unsubToasts()

	view.Mount(ctx, id)
	s.logger.Info("report feed opened", logging.Field{Key: "report_id", Value: id})

	go s.readClient(ctx, cancel, conn, view)

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	recorded := false
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("report feed closed", logging.Field{Key: "report_id", Value: id})
			return

		case snap, ok := <-snaps:
			if !ok {
				return
			}
			if snap.Phase == reportview.PhaseIdle {
				continue
			}
			if !recorded && !snap.Polling && snap.Report != nil && !snap.Report.IsPending() {
				s.recordResult(ctx, snap.Report)
				recorded = true
			}
			msg, err := s.stateMessage(snap, r)
			if err != nil {
				s.logger.Error("rendering report fragment", logging.Field{Key: "error", Value: err.Error()})
				msg = &StateMessage{Type: "state", Phase: string(snap.Phase), Error: err.Error()}
			}
			if err := write(conn, msg); err != nil {
				return
			}

		case t, ok := <-toastCh:
			if !ok {
				return
			}
			if err := write(conn, ToastMessage{Type: "toast", Message: t.Message, Visible: t.Visible}); err != nil {
				return
			}

		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func write(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(v)
}

// readClient handles client actions until the connection drops, then
// cancels the feed.
func (s *Server) readClient(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, view *reportview.View) {
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read", logging.Field{Key: "error", Value: err.Error()})
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		switch msg.Type {
		case "reanalyze":
			// failures surface in the next snapshot
			_, _ = view.Reanalyze(ctx)
		case "copied":
			view.LinkCopied()
		default:
			s.logger.Debug("ignoring websocket message", logging.Field{Key: "type", Value: msg.Type})
		}
	}
}

func (s *Server) stateMessage(snap reportview.Snapshot, r *http.Request) (*StateMessage, error) {
	html, err := s.pages.fragment(s.buildReportPage(snap, r))
	if err != nil {
		return nil, err
	}
	return &StateMessage{
		Type:         "state",
		Phase:        string(snap.Phase),
		Polling:      snap.Polling,
		PollTimedOut: snap.PollTimedOut,
		NextReportID: snap.NextReportID,
		Error:        snap.Error,
		HTML:         html,
	}, nil
}
