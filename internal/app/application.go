package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/apiclient"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/history"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/web"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/webclient"
)

// Application is the runtime state shared by the CLI commands: config,
// logger, backend client and history store. Pass it into commands rather
// than using package-level variables.
type Application struct {
	Config  *Config
	Logger  logging.Logger
	Client  *apiclient.Client
	History history.Store

	wc webclient.WebClient
}

// Option customises NewApplication.
type Option func(*options)

type options struct {
	logOut    io.Writer
	webClient webclient.WebClient
	history   history.Store
}

// WithLogOutput sends logs to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOut = w }
}

// WithWebClient replaces the net/http client, mostly for tests.
func WithWebClient(wc webclient.WebClient) Option {
	return func(o *options) { o.webClient = wc }
}

// WithHistory injects an already-open history store.
func WithHistory(s history.Store) Option {
	return func(o *options) { o.history = s }
}

// NewApplication wires the components described by cfg.
func NewApplication(cfg *Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	o := options{logOut: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.NewWriterLogger(o.logOut, "shipcheck", cfg.Level())

	wc := o.webClient
	if wc == nil {
		nhc, err := webclient.NewNetHTTPClient(cfg.WebClientConfig(), logger, nil)
		if err != nil {
			return nil, fmt.Errorf("create webclient: %w", err)
		}
		wc = nhc
	}

	client, err := apiclient.New(cfg.APIBase, wc, logger)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("create api client: %w", err)
	}

	store := o.history
	if store == nil {
		store, err = OpenHistory(cfg, logger)
		if err != nil {
			_ = wc.Close()
			return nil, err
		}
	}

	logger.Debug("application wired",
		logging.Field{Key: "api_base", Value: client.BaseURL()},
		logging.Field{Key: "history", Value: cfg.History})

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		History: store,
		wc:      wc,
	}, nil
}

// OpenHistory opens the configured history backend.
func OpenHistory(cfg *Config, logger logging.Logger) (history.Store, error) {
	switch cfg.History {
	case HistoryMemory:
		return history.NewMemoryStore(), nil
	case HistoryNone:
		return history.NopStore{}, nil
	case HistorySQLite, "":
		path, err := ExpandPath(cfg.HistoryPath)
		if err != nil {
			return nil, err
		}
		s, err := history.OpenSQLite(path, logger)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History)
	}
}

// WebServer builds the web front end over the application's components.
func (a *Application) WebServer() (*web.Server, error) {
	return web.NewServer(a.Config.WebConfig(), a.Client, a.History, a.Logger)
}

// Close releases the history store and idle connections.
func (a *Application) Close() error {
	if a == nil {
		return errors.New("application is nil")
	}
	return errors.Join(a.History.Close(), a.wc.Close())
}
