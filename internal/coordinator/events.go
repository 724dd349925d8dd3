package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/asgard/skywatch/internal/eventlog"
)

// recordEvent appends to the coordinator's event recorder, if one is
// configured. Failures here are diagnostics-only: they're logged and
// swallowed rather than allowed to disrupt a track session, the same
// propagation policy the axis executor applies to a missed pulse
// deadline.
func (c *Coordinator) recordEvent(activityID string, kind eventlog.Kind, targetName, detail string) {
	if c.Recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := c.Recorder.Record(ctx, eventlog.Event{
		ActivityID: activityID,
		Kind:       kind,
		TargetName: targetName,
		Detail:     detail,
		OccurredAt: time.Now(),
	})
	if err != nil {
		c.logger.WithError(err).Warn("coordinator: failed to record event")
	}
}

func targetNameOf(g Goal) string {
	switch t := g.(type) {
	case TrackGoal:
		return t.Target.String()
	default:
		return ""
	}
}

func goalKindName(g Goal) string {
	switch g.(type) {
	case TrackGoal:
		return "track"
	case IdleGoal:
		return "idle"
	case StopGoal:
		return "stop"
	default:
		return fmt.Sprintf("%T", g)
	}
}
