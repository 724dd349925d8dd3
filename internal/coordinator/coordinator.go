// Package coordinator drives a two-axis telescope mount: it owns the
// bearing and declination axis controllers plus their shared calibration,
// and turns a stream of Track/Idle/Stop/Calibrate requests into the
// acquisition, dual-intercept, and steady-state-tracking activity groups
// that keep both axes pointed at a moving celestial target.
//
// Grounded on the same goal-channel-plus-worker-goroutines shape as
// internal/axis, one level up: a goal reader owns the lifecycle of a
// single in-flight coordinator Activity, canceling and replacing it as new
// goals arrive, while a separate publisher goroutine reports orientation
// and target changes on its own cadence.
package coordinator

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/asgard/skywatch/internal/axis"
	"github.com/asgard/skywatch/internal/calibration"
	"github.com/asgard/skywatch/internal/eventlog"
	"github.com/asgard/skywatch/internal/target"
	"github.com/asgard/skywatch/internal/telemetry"
)

type goalRequest struct {
	goal     Goal
	activity *axis.Activity
}

// Coordinator owns both stepper axes of a mount plus their calibration,
// and serializes Track/Idle/Stop goals against them.
type Coordinator struct {
	Bearing  *axis.Axis
	Dec      *axis.Axis
	Cal      *calibration.TelescopeCalibration
	Location target.Location

	// Recorder, if set, receives a diagnostic history of goal and
	// calibration events. Optional: a nil Recorder is a silent no-op.
	Recorder *eventlog.Recorder

	// Tracer, if set, wraps intercept and segment planning in spans.
	// Optional: a nil Tracer falls back to the context's existing span
	// (a no-op one, if none was ever installed).
	Tracer *telemetry.Observer

	cfg    Config
	logger *logrus.Logger

	goals           chan goalRequest
	orientationSubs *orientationSubs
	targetSubs      *targetSubs
	fatal           chan error
	stopPublish     chan struct{}

	targetMu      sync.Mutex
	currentTarget target.Target

	runMu   sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// New builds a Coordinator over two already-constructed axes. The axes'
// own Start/Stop are driven by the Coordinator's Start/Stop; callers
// should not start them independently.
func New(bearing, dec *axis.Axis, cal *calibration.TelescopeCalibration, loc target.Location, cfg Config, logger *logrus.Logger) *Coordinator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Coordinator{
		Bearing:  bearing,
		Dec:      dec,
		Cal:      cal,
		Location: loc,
		cfg:      cfg.withDefaults(),
		logger:   logger,

		goals:           make(chan goalRequest, 16),
		orientationSubs: newOrientationSubs(logger),
		targetSubs:      newTargetSubs(logger),
		fatal:           make(chan error, 4),
		stopPublish:     make(chan struct{}),
	}
}

// Start starts both axes and the coordinator's goal-reader and publisher
// goroutines. No-op if already running.
func (c *Coordinator) Start() {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.running {
		return
	}
	c.running = true

	c.Bearing.Start()
	c.Dec.Start()

	c.wg.Add(2)
	go c.runGoals()
	go c.runPublisher()
}

// Stop enqueues a Stop goal and blocks until the coordinator and both axes
// have fully shut down. Safe to call on a coordinator that was never
// started.
func (c *Coordinator) Stop() *axis.Activity {
	c.runMu.Lock()
	if !c.running {
		c.runMu.Unlock()
		return nil
	}
	c.runMu.Unlock()

	act := c.putGoal(StopGoal{})
	act.WaitDone()
	c.wg.Wait()

	c.runMu.Lock()
	c.running = false
	c.runMu.Unlock()
	return act
}

func (c *Coordinator) putGoal(g Goal) *axis.Activity {
	act := axis.NewActivity()
	c.goals <- goalRequest{goal: g, activity: act}
	return act
}

// Track asks the coordinator to acquire and continuously track tg,
// canceling whatever it was previously doing.
func (c *Coordinator) Track(tg target.Target) *axis.Activity {
	return c.putGoal(TrackGoal{Target: tg})
}

// Idle cancels the current goal and leaves both axes at rest.
func (c *Coordinator) Idle() *axis.Activity {
	return c.putGoal(IdleGoal{})
}

// Calibrate resets both axes' offsets so that the current position
// immediately reports (bearingRad, decRad). Applied directly, without
// canceling whatever goal is in flight.
func (c *Coordinator) Calibrate(bearingRad, decRad float64) {
	c.Cal.Calibrate(bearingRad, decRad, c.Bearing.Position(), c.Dec.Position())
	c.recordEvent("", eventlog.KindCalibrated, "", fmt.Sprintf("bearing=%.6f dec=%.6f", bearingRad, decRad))
}

// CalibrateRelSteps nudges both axes' offsets by a signed step delta.
// Applied directly, without canceling whatever goal is in flight.
func (c *Coordinator) CalibrateRelSteps(bearingSteps, decSteps int) {
	c.Cal.CalibrateRelSteps(bearingSteps, decSteps)
	c.recordEvent("", eventlog.KindCalibrated, "", fmt.Sprintf("bearing_steps=%d dec_steps=%d", bearingSteps, decSteps))
}

func (c *Coordinator) setCurrentTarget(tg target.Target) {
	c.targetMu.Lock()
	c.currentTarget = tg
	c.targetMu.Unlock()
}

func (c *Coordinator) currentTargetSnapshot() target.Target {
	c.targetMu.Lock()
	defer c.targetMu.Unlock()
	return c.currentTarget
}

// runGoals is the goal-reader loop: it owns the lifecycle of exactly one
// in-flight Activity at a time, canceling and joining the previous one
// before driving the next.
func (c *Coordinator) runGoals() {
	defer c.wg.Done()

	var currentDone chan struct{}
	var currentActivity *axis.Activity

	for req := range c.goals {
		if currentActivity != nil {
			currentActivity.Cancel()
			<-currentDone
		}

		currentActivity = req.activity
		currentDone = make(chan struct{})
		req.activity.SetStatus(axis.Active)
		c.recordEvent(req.activity.ID, eventlog.KindGoalReceived, targetNameOf(req.goal), goalKindName(req.goal))
		go c.drive(req, currentDone)

		if _, isStop := req.goal.(StopGoal); isStop {
			<-currentDone
			c.Bearing.Stop()
			c.Dec.Stop()
			close(c.stopPublish)
			return
		}
	}
}

// drive runs one goal's body to completion (or cancellation) and closes
// done when it returns.
func (c *Coordinator) drive(req goalRequest, done chan<- struct{}) {
	defer close(done)

	switch g := req.goal.(type) {
	case IdleGoal:
		c.setCurrentTarget(nil)
		req.activity.SetStatus(axis.Complete)
	case StopGoal:
		c.setCurrentTarget(nil)
		req.activity.SetStatus(axis.Complete)
	case TrackGoal:
		c.setCurrentTarget(g.Target)
		c.trackLoop(req.activity, g.Target)
	}
}

func nowNs() int64 { return time.Now().UnixNano() }

func (c *Coordinator) fail(act *axis.Activity, err error) {
	c.logger.WithError(err).Error("coordinator track loop failed")
	act.SetErr(err)
	select {
	case c.fatal <- err:
	default:
	}
}
