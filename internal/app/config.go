package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/apiclient"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/findings"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/poller"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/web"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/webclient"
)

// History backends.
const (
	HistorySQLite = "sqlite"
	HistoryMemory = "memory"
	HistoryNone   = "none"
)

// Environment overrides, applied after the config file.
const (
	EnvAPIBase       = "SHIPCHECK_API_BASE"
	EnvPublicAPIBase = "NEXT_PUBLIC_API_BASE"
	EnvListen        = "SHIPCHECK_LISTEN"
	EnvLogLevel      = "SHIPCHECK_LOG_LEVEL"
)

// Duration reads "2s"-style strings from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config is everything the CLI and web server need at runtime.
type Config struct {
	// APIBase is the analysis backend base URL.
	APIBase    string   `yaml:"api_base"`
	ListenAddr string   `yaml:"listen"`
	Timeout    Duration `yaml:"timeout"`
	UserAgent  string   `yaml:"user_agent"`

	PollInterval Duration `yaml:"poll_interval"`
	PollDeadline Duration `yaml:"poll_deadline"`

	HighlightLimit int `yaml:"highlight_limit"`

	History     string `yaml:"history"`
	HistoryPath string `yaml:"history_path"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the local development defaults.
func DefaultConfig() *Config {
	p := poller.DefaultConfig()
	return &Config{
		APIBase:        apiclient.DefaultBaseURL,
		ListenAddr:     web.DefaultConfig().ListenAddr,
		Timeout:        Duration(webclient.DefaultTimeout),
		UserAgent:      "shipcheck",
		PollInterval:   Duration(p.Interval),
		PollDeadline:   Duration(p.Deadline),
		HighlightLimit: findings.DefaultHighlightLimit,
		History:        HistorySQLite,
		HistoryPath:    "~/.config/shipcheck/history.db",
		LogLevel:       "info",
	}
}

// LoadConfig reads path over the defaults, then applies the environment.
// An empty path skips the file. The result is not validated; callers apply
// their own overrides first and then call Validate.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		p, err := ExpandPath(path)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. SHIPCHECK_API_BASE wins
// over NEXT_PUBLIC_API_BASE.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvPublicAPIBase); ok && v != "" {
		c.APIBase = v
	}
	if v, ok := lookup(EnvAPIBase); ok && v != "" {
		c.APIBase = v
	}
	if v, ok := lookup(EnvListen); ok && v != "" {
		c.ListenAddr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
}

var errInvalidConfig = errors.New("invalid config")

// Validate rejects settings the components cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.APIBase) == "" {
		problems = append(problems, "api_base is empty")
	}
	if c.PollInterval <= 0 {
		problems = append(problems, "poll_interval must be positive")
	}
	if c.PollDeadline < c.PollInterval {
		problems = append(problems, "poll_deadline must not be shorter than poll_interval")
	}
	switch c.History {
	case HistorySQLite, HistoryMemory, HistoryNone:
	default:
		problems = append(problems, fmt.Sprintf("history must be %s, %s or %s, got %q", HistorySQLite, HistoryMemory, HistoryNone, c.History))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// PollerConfig is the poll loop section.
func (c *Config) PollerConfig() poller.Config {
	return poller.Config{Interval: time.Duration(c.PollInterval), Deadline: time.Duration(c.PollDeadline)}
}

// WebConfig is the web server section.
func (c *Config) WebConfig() web.Config {
	cfg := web.DefaultConfig()
	cfg.ListenAddr = c.ListenAddr
	cfg.HighlightLimit = c.HighlightLimit
	cfg.Poll = c.PollerConfig()
	return cfg
}

// WebClientConfig is the HTTP client section.
func (c *Config) WebClientConfig() webclient.Config {
	return webclient.Config{Timeout: time.Duration(c.Timeout), UserAgent: c.UserAgent}
}

// Level parses LogLevel.
func (c *Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(p string) (string, error) {
	out, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", p, err)
	}
	return out, nil
}
