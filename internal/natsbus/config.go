package natsbus

import "time"

// Subjects the bus publishes and subscribes to. Fixed rather than
// configurable: a single mount daemon never needs more than one goal
// channel and one orientation channel.
const (
	SubjectGoal        = "skywatch.goal"
	SubjectOrientation = "skywatch.orientation"
)

// Config configures the NATS connection underlying a Bus.
type Config struct {
	URL           string
	ClientName    string
	ReconnectWait time.Duration
	MaxReconnects int

	// OrientationRateLimit caps how many orientation messages per second
	// forwardOrientations will publish to SubjectOrientation. A mount
	// tracking at full pulse rate can recompute orientation far faster
	// than any remote subscriber needs updates; this bounds what actually
	// crosses the network.
	OrientationRateLimit float64
}

// DefaultConfig returns sensible defaults for a single mount daemon
// connecting to a local NATS server.
func DefaultConfig() Config {
	return Config{
		URL:                  "nats://localhost:4222",
		ClientName:           "skywatch-mountd",
		ReconnectWait:        2 * time.Second,
		MaxReconnects:        -1,
		OrientationRateLimit: 20,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.URL == "" {
		c.URL = d.URL
	}
	if c.ClientName == "" {
		c.ClientName = d.ClientName
	}
	if c.ReconnectWait <= 0 {
		c.ReconnectWait = d.ReconnectWait
	}
	if c.MaxReconnects == 0 {
		c.MaxReconnects = d.MaxReconnects
	}
	if c.OrientationRateLimit <= 0 {
		c.OrientationRateLimit = d.OrientationRateLimit
	}
	return c
}
