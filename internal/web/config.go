package web

import (
	"time"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/findings"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/notify"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/poller"
)

type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":3000".
	ListenAddr string

	// HighlightLimit caps the highlights list on done reports.
	HighlightLimit int

	// Poll configures the live report loop behind each websocket.
	Poll poller.Config

	// ToastDuration is how long a toast stays visible.
	ToastDuration time.Duration

	// RecentLimit is how many history entries the landing page lists.
	RecentLimit int
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:     ":3000",
		HighlightLimit: findings.DefaultHighlightLimit,
		Poll:           poller.DefaultConfig(),
		ToastDuration:  notify.DefaultDuration,
		RecentLimit:    5,
	}
}
