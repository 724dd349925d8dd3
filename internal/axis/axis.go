// Package axis drives a single stepper-motor axis: a planner goroutine
// solves motion goals into timed pulses ahead of schedule, and an executor
// goroutine drains those pulses at their deadlines and fires them at a
// pulse.Sink. The two communicate over a small bounded channel so the
// planner can run ahead of real time without ever getting more than a few
// pulses of lead on the hardware.
package axis

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/asgard/skywatch/internal/nsleep"
	"github.com/asgard/skywatch/internal/pulse"
)

// motionQueueDepth bounds how far ahead of the executor the planner is
// allowed to run. Matches the reference stepper's plan-ahead queue size.
const motionQueueDepth = 4

// activityQueueDepth bounds how many goals may be pending on an axis
// before Goto/Intercept/RunConstant/Idle block the caller.
const activityQueueDepth = 16

type pendingActivity struct {
	*Activity
	goal goal
}

// Axis owns the committed and executed state of one stepper-motor axis,
// and the planner/executor goroutines that drive it.
type Axis struct {
	Name   string
	config StepperConfig
	sink   pulse.Sink
	logger *logrus.Logger

	stateMu  sync.Mutex
	position int
	velocity float64

	activities chan *pendingActivity

	runMu   sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// New constructs an Axis at rest at the given position.
func New(name string, config StepperConfig, sink pulse.Sink, position int, logger *logrus.Logger) *Axis {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if config.MaxIntervalNs == 0 {
		config.MaxIntervalNs = DefaultMaxIntervalNs
	}
	return &Axis{
		Name:       name,
		config:     config,
		sink:       sink,
		logger:     logger,
		position:   position,
		activities: make(chan *pendingActivity, activityQueueDepth),
	}
}

// Config returns the axis's motion bounds.
func (a *Axis) Config() StepperConfig { return a.config }

// Position returns the axis's current executed position, in signed steps.
func (a *Axis) Position() int {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.position
}

// Velocity returns the axis's current executed velocity, in steps/s.
func (a *Axis) Velocity() float64 {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.velocity
}

// Start spawns the planner and executor goroutines. It is a no-op if the
// axis is already running.
func (a *Axis) Start() {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	if a.running {
		return
	}
	a.running = true

	motion := make(chan motionItem, motionQueueDepth)

	a.wg.Add(2)
	go a.plan(motion)
	go a.execute(motion)
}

// Stop enqueues a stop goal and blocks until the planner and executor have
// both drained and exited. Safe to call on an axis that was never
// started.
func (a *Axis) Stop() {
	a.runMu.Lock()
	if !a.running {
		a.runMu.Unlock()
		return
	}
	a.runMu.Unlock()

	a.putActivity(stopGoal{}).WaitDone()
	a.wg.Wait()

	a.runMu.Lock()
	a.running = false
	a.runMu.Unlock()
}

func (a *Axis) putActivity(g goal) *Activity {
	pa := &pendingActivity{Activity: newActivity(), goal: g}
	a.activities <- pa
	return pa.Activity
}

// Goto intercepts a stationary target, arriving with finalVelocity.
func (a *Axis) Goto(target int, finalVelocity float64) *Activity {
	return a.putActivity(interceptGoal{target: target, finalVelocity: finalVelocity})
}

// Intercept solves for a trapezoid that meets a target moving at
// targetVelocity, arriving with finalVelocity.
func (a *Axis) Intercept(target int, targetVelocity, finalVelocity float64) *Activity {
	return a.putActivity(interceptGoal{target: target, targetVelocity: targetVelocity, finalVelocity: finalVelocity})
}

// InterceptPrecomputed executes an intercept whose trapezoid was already
// solved by the caller, scheduled to begin at startNs (nanoseconds, same
// clock as time.Now().UnixNano()).
func (a *Axis) InterceptPrecomputed(params InterceptParams, startNs int64) *Activity {
	return a.putActivity(interceptPrecomputedGoal{params: params, startNs: startNs})
}

// RunConstant runs the axis at a fixed velocity until deadlineNs.
func (a *Axis) RunConstant(velocity float64, deadlineNs int64) *Activity {
	return a.putActivity(runConstantGoal{velocity: velocity, deadlineNs: deadlineNs})
}

// Idle submits a no-op goal; its completion marks that every
// previously-submitted goal has finished executing.
func (a *Axis) Idle() *Activity {
	return a.putActivity(idleGoal{})
}

func nowNs() int64 { return time.Now().UnixNano() }

// nopDeadlines returns the liveness-NOP deadlines strictly between fromNs
// and toNs, spaced maxIntervalNs apart.
func nopDeadlines(fromNs, toNs, maxIntervalNs int64) []int64 {
	var out []int64
	for d := fromNs + maxIntervalNs; d < toNs; d += maxIntervalNs {
		out = append(out, d)
	}
	return out
}

// execute is the executor goroutine: it drains the motion channel,
// sleeping to each pulse's deadline before firing it, and reports
// activity handoffs as the planner's progress on that activity catches
// up to actual hardware state.
func (a *Axis) execute(motion chan motionItem) {
	defer a.wg.Done()

	for item := range motion {
		if !item.isPulse {
			pa := item.activity
			switch pa.Status() {
			case Aborting:
				pa.setStatus(Aborted)
			case Active:
				pa.setStatus(Complete)
			default:
				a.logger.WithFields(logrus.Fields{
					"axis":   a.Name,
					"status": pa.Status(),
				}).Error("unexpected activity status reaching executor")
			}

			if _, isStop := pa.goal.(stopGoal); isStop {
				return
			}
			continue
		}

		now := nowNs()
		sleepNs := item.deadlineNs - now
		if sleepNs < a.config.MinSleepNs {
			if item.dir != pulse.Hold {
				a.logger.WithFields(logrus.Fields{
					"axis":       a.Name,
					"behind_sec": float64(a.config.MinSleepNs-sleepNs) / 1e9,
				}).Warn("executor running behind schedule")
			}
			sleepNs = a.config.MinSleepNs
		}
		nsleep.Sleep(sleepNs)

		if item.dir != pulse.Hold {
			if err := a.sink.Step(a.Name, item.dir); err != nil {
				a.logger.WithError(err).WithField("axis", a.Name).Error("pulse sink failed")
			}
		}

		a.stateMu.Lock()
		a.position += int(item.dir)
		a.velocity = item.velocity
		a.stateMu.Unlock()
	}
}
