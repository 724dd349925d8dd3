package natsbus

import "time"

// GoalMessage is the wire shape of a CoordinatorGoal crossing a process
// boundary: an operator process publishes one of these to SubjectGoal,
// the mount daemon subscribes and applies it to its local coordinator.
type GoalMessage struct {
	Kind   string         `json:"kind"` // "track", "idle", or "stop"
	Target *TargetMessage `json:"target,omitempty"`
}

// TargetMessage describes a fixed-sky target well enough to reconstruct
// a target.FixedSky on the receiving side: a right ascension/declination
// pair valid at a reference time, which the mount's own sidereal-rate
// advance keeps current from there.
type TargetMessage struct {
	Name        string    `json:"name"`
	RARad       float64   `json:"ra_rad"`
	DecRad      float64   `json:"dec_rad"`
	ReferenceAt time.Time `json:"reference_at"`
}

// OrientationMessage is the wire shape of an Orientation publication.
type OrientationMessage struct {
	BearingRad float64   `json:"bearing_rad"`
	DecRad     float64   `json:"dec_rad"`
	At         time.Time `json:"at"`
}
