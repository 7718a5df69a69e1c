package app_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mitchellh/go-homedir"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/app"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/history"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/poller"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/testutil"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

// ─── Config ────────────────────────────────────────────────────────────

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := app.DefaultConfig()

	if cfg.APIBase != "http://localhost:8000" || cfg.ListenAddr != ":3000" {
		t.Errorf("unexpected addresses %q %q", cfg.APIBase, cfg.ListenAddr)
	}
	want := poller.Config{Interval: 2 * time.Second, Deadline: 30 * time.Second}
	if diff := cmp.Diff(want, cfg.PollerConfig()); diff != "" {
		t.Errorf("poller config mismatch (-want +got):\n%s", diff)
	}
	if cfg.HighlightLimit != 5 || cfg.History != app.HistorySQLite {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "shipcheck.yaml")
	body := `
api_base: http://backend:9000
listen: ":4000"
poll_interval: 500ms
poll_deadline: 5s
highlight_limit: 3
history: memory
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := app.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ListenAddr != ":4000" || cfg.HighlightLimit != 3 || cfg.History != app.HistoryMemory {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.PollerConfig().Interval != 500*time.Millisecond {
		t.Errorf("unexpected interval %v", cfg.PollerConfig().Interval)
	}
	// untouched keys keep their defaults
	if cfg.UserAgent != "shipcheck" || time.Duration(cfg.Timeout) != 30*time.Second {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	if _, err := app.LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	_ = os.WriteFile(bad, []byte("poll_interval: soon\n"), 0o644)
	if _, err := app.LoadConfig(bad); err == nil {
		t.Error("expected error for bad duration")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	_ = os.WriteFile(invalid, []byte("history: postgres\n"), 0o644)
	cfg, err := app.LoadConfig(invalid)
	if err != nil {
		t.Fatalf("loading should leave validation to the caller: %v", err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "history must be") {
		t.Errorf("expected history validation error, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := app.DefaultConfig()
	cfg.ApplyEnv(env(map[string]string{app.EnvPublicAPIBase: "http://public:8000"}))
	if cfg.APIBase != "http://public:8000" {
		t.Errorf("NEXT_PUBLIC_API_BASE should apply, got %q", cfg.APIBase)
	}

	cfg = app.DefaultConfig()
	cfg.ApplyEnv(env(map[string]string{
		app.EnvPublicAPIBase: "http://public:8000",
		app.EnvAPIBase:       "http://private:8000",
		app.EnvListen:        ":9999",
		app.EnvLogLevel:      "debug",
	}))
	if cfg.APIBase != "http://private:8000" {
		t.Errorf("SHIPCHECK_API_BASE should win, got %q", cfg.APIBase)
	}
	if cfg.ListenAddr != ":9999" || cfg.LogLevel != "debug" {
		t.Errorf("unexpected overrides %+v", cfg)
	}

	cfg = app.DefaultConfig()
	cfg.ApplyEnv(env(map[string]string{app.EnvAPIBase: ""}))
	if cfg.APIBase != "http://localhost:8000" {
		t.Errorf("empty values are ignored, got %q", cfg.APIBase)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	cfg := app.DefaultConfig()
	cfg.APIBase = " "
	cfg.PollInterval = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"api_base", "poll_interval"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestExpandPath(t *testing.T) {
	t.Parallel()
	home, err := homedir.Dir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := app.ExpandPath("~/.config/shipcheck/history.db")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, ".config/shipcheck/history.db") {
		t.Errorf("unexpected expansion %q", got)
	}
	if got, _ := app.ExpandPath("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("absolute paths are unchanged, got %q", got)
	}
}

// ─── Application ───────────────────────────────────────────────────────

func TestNewApplication_Memory(t *testing.T) {
	t.Parallel()
	cfg := app.DefaultConfig()
	cfg.History = app.HistoryMemory

	a, err := app.NewApplication(cfg, app.WithLogOutput(&strings.Builder{}), app.WithWebClient(&testutil.DummyWebClient{}))
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	defer a.Close()

	if _, ok := a.History.(*history.MemoryStore); !ok {
		t.Errorf("expected memory store, got %T", a.History)
	}
	if a.Client.BaseURL() != "http://localhost:8000" {
		t.Errorf("unexpected base %q", a.Client.BaseURL())
	}
	if _, err := a.WebServer(); err != nil {
		t.Errorf("WebServer: %v", err)
	}
}

func TestNewApplication_SQLite(t *testing.T) {
	t.Parallel()
	cfg := app.DefaultConfig()
	cfg.HistoryPath = filepath.Join(t.TempDir(), "nested", "history.db")

	a, err := app.NewApplication(cfg, app.WithLogOutput(&strings.Builder{}))
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	if _, ok := a.History.(*history.SQLiteStore); !ok {
		t.Errorf("expected sqlite store, got %T", a.History)
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if _, err := os.Stat(cfg.HistoryPath); err != nil {
		t.Errorf("expected db file: %v", err)
	}
}

func TestNewApplication_BadBase(t *testing.T) {
	t.Parallel()
	cfg := app.DefaultConfig()
	cfg.APIBase = "localhost"
	cfg.History = app.HistoryNone

	_, err := app.NewApplication(cfg, app.WithLogOutput(&strings.Builder{}))
	if err == nil || !strings.Contains(err.Error(), "invalid base url") {
		t.Fatalf("expected base url error, got %v", err)
	}
}
