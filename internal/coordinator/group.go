package coordinator

import (
	"fmt"
	"time"

	"github.com/asgard/skywatch/internal/axis"
	"github.com/asgard/skywatch/internal/eventlog"
)

// waitAll returns a channel closed once every activity in the group has
// reached a terminal status.
func waitAll(group []*axis.Activity) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for _, a := range group {
			a.WaitDone()
		}
		close(done)
	}()
	return done
}

// waitGroup blocks until group finishes, polling act's cancel flag no
// less often than the configured poll interval so a canceled coordinator
// activity can tear the group down promptly instead of waiting for a
// steady-state segment (up to PredictDt) to run out on its own. Returns
// false if the group was canceled out from under it.
func (c *Coordinator) waitGroup(act *axis.Activity, group []*axis.Activity) bool {
	done := waitAll(group)
	for {
		select {
		case <-done:
			c.recordEvent(act.ID, eventlog.KindGroupCompleted, "", fmt.Sprintf("%d activities", len(group)))
			return true
		case <-time.After(c.cfg.GroupPollInterval):
			if act.Canceled() {
				act.SetStatus(axis.Aborting)
				for _, a := range group {
					a.Cancel()
				}
				<-done
				act.SetStatus(axis.Aborted)
				c.recordEvent(act.ID, eventlog.KindGroupAborted, "", fmt.Sprintf("%d activities", len(group)))
				return false
			}
		}
	}
}
