// Package web is the server-rendered ShipCheck front end: the landing form,
// the report viewer with its live websocket feed, comparisons and a small
// JSON API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/apiclient"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/history"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
	_ "github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/web/docs"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/webclient"
)

// Backend is the analysis backend as the web server uses it.
// *apiclient.Client satisfies it.
type Backend interface {
	Analyze(ctx context.Context, repoURL string) (string, error)
	GetReport(ctx context.Context, id string) (*model.Report, error)
	Health(ctx context.Context) (*apiclient.Health, error)
}

// Server is the HTTP + WebSocket surface.
type Server struct {
	cfg      Config
	backend  Backend
	history  history.Store
	router   chi.Router
	upgrader websocket.Upgrader
	pages    *renderer
	logger   logging.Logger
}

// NewServer wires routes and parses templates. store may be nil, which
// disables history.
func NewServer(cfg Config, backend Backend, store history.Store, logger logging.Logger) (*Server, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("web")
	}
	if store == nil {
		store = history.NopStore{}
	}
	def := DefaultConfig()
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}
	if cfg.HighlightLimit <= 0 {
		cfg.HighlightLimit = def.HighlightLimit
	}
	if cfg.ToastDuration <= 0 {
		cfg.ToastDuration = def.ToastDuration
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = def.RecentLimit
	}

	pages, err := newRenderer()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		backend: backend,
		history: store,
		router:  chi.NewRouter(),
		pages:   pages,
		logger:  logger.With(logging.Field{Key: "component", Value: "web"}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     sameOrigin,
		},
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(s.corsMiddleware)

	// Pages
	r.Get("/", s.handleIndex)
	r.Post("/analyze", s.handleAnalyze)
	r.Get("/reports/{id}", s.handleReport)
	r.Post("/reports/{id}/retry", s.handleRetry)
	r.Get("/reports/{id}/compare", s.handleCompare)

	// Live report feed
	r.Get("/ws/reports/{id}", s.handleReportWS)

	// JSON API
	r.Options("/api/view/reports/{id}", s.optionsHandler("GET"))
	r.Get("/api/view/reports/{id}", s.handleViewReport)
	r.Get("/healthz", s.handleHealth)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	static, _ := fs.Sub(assetsFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.NotFound(s.handleNotFound)
}

type ctxKey int

const requestIDKey ctxKey = iota

// requestID reuses an incoming X-Request-ID or assigns a new one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(webclient.RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(webclient.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestIDFrom returns the id assigned by the request-id middleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		fields := []logging.Field{
			{Key: "method", Value: r.Method},
			{Key: "path", Value: r.URL.Path},
			{Key: "status", Value: ww.Status()},
			{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
			{Key: "request_id", Value: RequestIDFrom(r.Context())},
		}
		if q := r.URL.RawQuery; q != "" {
			fields = append(fields, logging.Field{Key: "query", Value: q})
		}
		s.logger.Info("http_request", fields...)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// sameOrigin accepts websocket upgrades without an Origin header or from
// the serving host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // websockets stream
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := s.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", logging.Field{Key: "addr", Value: srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close releases the history store.
func (s *Server) Close() error {
	return s.history.Close()
}

// recordResult stores the settled state of a report, ignoring reports that
// were not submitted from here.
func (s *Server) recordResult(ctx context.Context, r *model.Report) {
	if r == nil || r.IsPending() {
		return
	}
	var score *int
	if _, ok := r.State().(model.DoneState); ok {
		score = model.Ptr(r.Score())
	}
	err := s.history.UpdateResult(ctx, r.ID, r.Status, score)
	if err != nil && !errors.Is(err, history.ErrEntryNotFound) {
		s.logger.Warn("updating history", logging.Field{Key: "report_id", Value: r.ID}, logging.Field{Key: "error", Value: err.Error()})
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
