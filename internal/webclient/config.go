package webclient

import "time"

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 8 << 20
	RequestIDHeader     = "X-Request-ID"
)

// Config tunes the net/http backed client.
type Config struct {
	// Timeout bounds a whole request; 0 means DefaultTimeout.
	Timeout time.Duration

	// UserAgent is sent on every request when set.
	UserAgent string

	// MaxBodyBytes caps how much of a response body is read; 0 means
	// DefaultMaxBodyBytes.
	MaxBodyBytes int64
}
