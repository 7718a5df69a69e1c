package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/apiclient"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/app"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/history"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
)

// version is set at build time via -ldflags.
var version = "dev"

// backend is the analysis API as the commands use it.
type backend interface {
	Analyze(ctx context.Context, repoURL string) (string, error)
	GetReport(ctx context.Context, id string) (*model.Report, error)
	ListReports(ctx context.Context, limit int) ([]model.ReportListItem, error)
	Health(ctx context.Context) (*apiclient.Health, error)
}

// session is what one command invocation works with.
type session struct {
	cfg     *app.Config
	api     backend
	history history.Store
	logger  logging.Logger
	close   func() error
}

// runtime carries the global flags and the session factory; tests swap
// open for an in-memory backend.
type runtime struct {
	configPath string
	apiBase    string
	logLevel   string
	history    string

	logOut io.Writer
	open   func(cfg *app.Config, logOut io.Writer) (*session, error)
}

func newRuntime() *runtime {
	return &runtime{logOut: os.Stderr, open: openApplication}
}

func openApplication(cfg *app.Config, logOut io.Writer) (*session, error) {
	a, err := app.NewApplication(cfg, app.WithLogOutput(logOut))
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, api: a.Client, history: a.History, logger: a.Logger, close: a.Close}, nil
}

// session loads config, applies flag overrides and opens the components.
func (rt *runtime) session() (*session, error) {
	cfg, err := app.LoadConfig(rt.configPath)
	if err != nil {
		return nil, err
	}
	if rt.apiBase != "" {
		cfg.APIBase = rt.apiBase
	}
	if rt.logLevel != "" {
		cfg.LogLevel = rt.logLevel
	}
	if rt.history != "" {
		cfg.History = rt.history
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return rt.open(cfg, rt.logOut)
}

func newRootCmd(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "shipcheck",
		Short: "Repository readiness reports for GitHub projects",
		Long: "ShipCheck submits GitHub repositories to the analysis backend and shows\n" +
			"their readiness reports in the browser or the terminal.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}

	f := root.PersistentFlags()
	f.StringVar(&rt.configPath, "config", "", "YAML config file")
	f.StringVar(&rt.apiBase, "api-base", "", "Analysis backend base URL (overrides config and environment)")
	f.StringVar(&rt.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVar(&rt.history, "history", "", "History backend: sqlite, memory or none")

	root.AddCommand(
		newServeCmd(rt),
		newAnalyzeCmd(rt),
		newReportCmd(rt),
		newListCmd(rt),
		newCompareCmd(rt),
		newHistoryCmd(rt),
	)
	return root
}
