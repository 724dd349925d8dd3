package eventlog

import (
	"context"
	"fmt"
	"time"
)

// Kind identifies the category of a recorded track event.
type Kind string

const (
	KindGoalReceived     Kind = "goal_received"
	KindInterceptComputed Kind = "intercept_computed"
	KindGroupCompleted    Kind = "group_completed"
	KindGroupAborted      Kind = "group_aborted"
	KindCalibrated        Kind = "calibrated"
	KindFatal             Kind = "fatal"
)

// Event is one row of recorded history.
type Event struct {
	ID         int64
	ActivityID string
	Kind       Kind
	TargetName string
	Detail     string
	OccurredAt time.Time
}

// Recorder appends track-session events. Grounded on the repository
// shape used for the aircraft history table: one focused insert method
// per write path, plus a windowed read for diagnostics.
type Recorder struct {
	db *DB
}

func NewRecorder(db *DB) *Recorder {
	return &Recorder{db: db}
}

// Record appends one event. Failures here are diagnostics-only; callers
// should log and continue rather than let a logging failure abort a
// track session.
func (r *Recorder) Record(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO track_events (activity_id, kind, target_name, detail, occurred_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.ActivityID, string(e.Kind), e.TargetName, e.Detail, e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("eventlog: record %s: %w", e.Kind, err)
	}
	return nil
}

// ForActivity returns the recorded history for a single activity, oldest
// first.
func (r *Recorder) ForActivity(ctx context.Context, activityID string) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, activity_id, kind, target_name, detail, occurred_at
		 FROM track_events
		 WHERE activity_id = $1
		 ORDER BY occurred_at ASC`,
		activityID,
	)
	if err != nil {
		return nil, fmt.Errorf("eventlog: for activity %s: %w", activityID, err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.ID, &e.ActivityID, &kind, &e.TargetName, &e.Detail, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("eventlog: scan: %w", err)
		}
		e.Kind = Kind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Since returns events recorded at or after t, most recent last, capped at
// limit rows.
func (r *Recorder) Since(ctx context.Context, t time.Time, limit int) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, activity_id, kind, target_name, detail, occurred_at
		 FROM track_events
		 WHERE occurred_at >= $1
		 ORDER BY occurred_at ASC
		 LIMIT $2`,
		t, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("eventlog: since %v: %w", t, err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.ID, &e.ActivityID, &kind, &e.TargetName, &e.Detail, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("eventlog: scan: %w", err)
		}
		e.Kind = Kind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}
