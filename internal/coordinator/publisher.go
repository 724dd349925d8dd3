package coordinator

import (
	"time"

	"github.com/asgard/skywatch/internal/target"
)

// runPublisher republishes orientation whenever either axis's executed
// step position has changed since the last tick, and republishes the
// current target whenever it changes, independent of the goal-reader's
// own cadence.
func (c *Coordinator) runPublisher() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PublishInterval)
	defer ticker.Stop()

	lastBearing, lastDec := c.Bearing.Position(), c.Dec.Position()
	var lastTarget target.Target

	for {
		select {
		case <-c.stopPublish:
			c.orientationSubs.closeAll()
			c.targetSubs.closeAll()
			return
		case <-ticker.C:
			b, d := c.Bearing.Position(), c.Dec.Position()
			if b != lastBearing || d != lastDec {
				lastBearing, lastDec = b, d
				o := c.Cal.Orientation(b, d)
				c.publishOrientation(OrientationPublication{BearingRad: o.BearingRad, DecRad: o.DecRad})
			}

			cur := c.currentTargetSnapshot()
			if !sameTarget(cur, lastTarget) {
				lastTarget = cur
				c.publishTarget(TargetPublication{Target: cur})
			}
		}
	}
}
