package demobackend

import "time"

// Config holds configuration for the fixture backend.
type Config struct {
	// Port is the port on which the fixture backend listens.
	Port int

	// PendingFor is how long a new report stays pending before it settles.
	PendingFor time.Duration

	// RateLimit caps POST /api/analyze per client per minute; 0 disables.
	RateLimit int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:       8000,
		PendingFor: 4 * time.Second,
		RateLimit:  10,
	}
}
