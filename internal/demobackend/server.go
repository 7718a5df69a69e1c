// Package demobackend is an in-memory stand-in for the analysis backend. It
// serves the same HTTP contract with canned, deterministic findings and
// never analyzes anything.
package demobackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/repourl"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	rateWindow       = time.Minute
)

type fixture struct {
	id        string
	repo      repourl.Repo
	createdAt time.Time
	readyAt   time.Time
	fail      bool
}

// Server is the fixture backend.
type Server struct {
	cfg    Config
	logger logging.Logger
	now    func() time.Time

	mu      sync.RWMutex
	reports map[string]*fixture
	hits    map[string][]time.Time
}

func NewServer(cfg Config, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Server{
		cfg:     cfg,
		logger:  logger.With(logging.Field{Key: "component", Value: "demobackend"}),
		now:     time.Now,
		reports: make(map[string]*fixture),
		hits:    make(map[string][]time.Time),
	}
}

// SetClock replaces the time source; used by tests.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", s.analyzeHandler)
	mux.HandleFunc("GET /api/reports", s.listHandler)
	mux.HandleFunc("GET /api/reports/{id}", s.reportHandler)
	mux.HandleFunc("GET /health", s.healthHandler)
	return s.logRequests(mux)
}

// Start serves on cfg.Port until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("fixture backend listening", logging.Field{Key: "addr", Value: srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			logging.Field{Key: "method", Value: r.Method},
			logging.Field{Key: "path", Value: r.URL.Path},
			logging.Field{Key: "duration_ms", Value: time.Since(start).Milliseconds()})
	})
}

// ─── handlers ───────────────────────────────────────────────────────────

func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	var body model.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []validationDetail{{
			Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid",
		}})
		return
	}
	raw := strings.TrimSpace(body.RepoURL)
	if raw == "" {
		writeDetail(w, http.StatusBadRequest, "repo_url is required")
		return
	}
	repo, err := repourl.Parse(raw)
	if err != nil {
		var verr *repourl.ValidationError
		if errors.As(err, &verr) {
			writeDetail(w, http.StatusBadRequest, verr.Reason)
			return
		}
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.allow(clientKey(r)) {
		writeDetail(w, http.StatusTooManyRequests, "Too many analyze requests. Try again in a minute.")
		return
	}

	s.mu.Lock()
	now := s.now()
	f := &fixture{
		id:        uuid.New().String(),
		repo:      repo,
		createdAt: now,
		readyAt:   now.Add(s.cfg.PendingFor),
		fail:      strings.Contains(strings.ToLower(repo.Name), "fail"),
	}
	s.reports[f.id] = f
	s.mu.Unlock()

	s.logger.Info("analysis queued",
		logging.Field{Key: "report_id", Value: f.id},
		logging.Field{Key: "repo", Value: repo.Slug()})
	writeJSON(w, http.StatusOK, model.AnalyzeResponse{ReportID: f.id})
}

func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []validationDetail{{
			Loc: []string{"path", "report_id"}, Msg: "Input should be a valid UUID", Type: "uuid_parsing",
		}})
		return
	}

	s.mu.RLock()
	f, ok := s.reports[id.String()]
	now := s.now()
	s.mu.RUnlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Report not found")
		return
	}
	writeJSON(w, http.StatusOK, f.render(now, raw))
}

func (s *Server) listHandler(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxListLimit {
			writeDetail(w, http.StatusUnprocessableEntity, []validationDetail{{
				Loc: []string{"query", "limit"}, Msg: "Input should be between 1 and 100", Type: "int_range",
			}})
			return
		}
		limit = n
	}

	s.mu.RLock()
	now := s.now()
	all := make([]*fixture, 0, len(s.reports))
	for _, f := range s.reports {
		all = append(all, f)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].createdAt.Equal(all[j].createdAt) {
			return all[i].createdAt.After(all[j].createdAt)
		}
		return all[i].id < all[j].id
	})
	if len(all) > limit {
		all = all[:limit]
	}

	items := make([]model.ReportListItem, 0, len(all))
	for _, f := range all {
		rep := f.render(now, f.id)
		items = append(items, model.ReportListItem{ID: rep.ID, RepoURL: rep.RepoURL, Score: rep.OverallScore, CreatedAt: rep.CreatedAt})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─── rendering ──────────────────────────────────────────────────────────

// isoNoZone matches the backend's naive isoformat() timestamps.
const isoNoZone = "2006-01-02T15:04:05.000000"

func (f *fixture) render(now time.Time, id string) *model.Report {
	created := f.createdAt.UTC().Format(isoNoZone)
	rep := &model.Report{
		ID:        id,
		RepoURL:   f.repo.Raw,
		CreatedAt: &created,
		UpdatedAt: &created,
		Status:    model.StatusPending,
	}
	if now.Before(f.readyAt) {
		return rep
	}

	updated := f.readyAt.UTC().Format(isoNoZone)
	rep.UpdatedAt = &updated
	if f.fail {
		rep.Status = model.StatusFailed
		rep.RawFindings = mustJSON(model.FailureFindings{Error: FailureMessage})
		return rep
	}

	findings := buildFindings(f.repo.Slug())
	rep.Status = model.StatusDone
	rep.RepoOwner = model.Ptr(f.repo.Owner)
	rep.RepoName = model.Ptr(f.repo.Name)
	rep.CommitSHA = model.Ptr(commitSHA(f.repo.Slug()))
	rep.OverallScore = model.Ptr(findings.OverallScore)
	rep.RawFindings = mustJSON(findings)
	return rep
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// ─── rate limiting ──────────────────────────────────────────────────────

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// allow records a hit for key and reports whether it is within the limit.
func (s *Server) allow(key string) bool {
	if s.cfg.RateLimit <= 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	cutoff := now.Add(-rateWindow)
	hits := s.hits[key]
	i := 0
	for i < len(hits) && hits[i].Before(cutoff) {
		i++
	}
	hits = hits[i:]
	if len(hits) >= s.cfg.RateLimit {
		s.hits[key] = hits
		return false
	}
	s.hits[key] = append(hits, now)
	return true
}

// ─── helpers ────────────────────────────────────────────────────────────

type validationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
