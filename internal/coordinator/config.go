package coordinator

import "time"

// Config bounds the coordinator's track-loop cadence.
type Config struct {
	// PredictDt is the fixed look-ahead used both to sample the target's
	// velocity (finite difference across this window) and, in
	// steady-state tracking, as the duration of each run_constant
	// segment.
	PredictDt time.Duration

	// PublishInterval is how often orientation is republished while
	// steps are changing.
	PublishInterval time.Duration

	// GroupPollInterval bounds how long the coordinator waits between
	// checks of its own cancel flag while an activity group is in
	// flight, so cancellation stays responsive even though waiting for
	// a group has no single wakeup source.
	GroupPollInterval time.Duration

	// InitialRunway is how far into the future the first intercept's
	// frontier starts, giving the very first dual intercept a small
	// runway instead of targeting "now".
	InitialRunway time.Duration
}

// DefaultConfig matches the reference tracker's defaults.
func DefaultConfig() Config {
	return Config{
		PredictDt:         30 * time.Second,
		PublishInterval:   250 * time.Millisecond,
		GroupPollInterval: 500 * time.Millisecond,
		InitialRunway:     100 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PredictDt <= 0 {
		c.PredictDt = d.PredictDt
	}
	if c.PublishInterval <= 0 {
		c.PublishInterval = d.PublishInterval
	}
	if c.GroupPollInterval <= 0 {
		c.GroupPollInterval = d.GroupPollInterval
	}
	if c.InitialRunway <= 0 {
		c.InitialRunway = d.InitialRunway
	}
	return c
}
