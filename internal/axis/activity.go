package axis

import (
	"sync"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an Activity.
type Status int

const (
	Pending Status = iota
	Active
	Complete
	Aborting
	Aborted
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Active:
		return "ACTIVE"
	case Complete:
		return "COMPLETE"
	case Aborting:
		return "ABORTING"
	case Aborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// Running reports whether s is a state in which the planner or executor is
// still actively working the activity.
func (s Status) Running() bool {
	return s == Active || s == Aborting
}

// Done reports whether s is a terminal state.
func (s Status) Done() bool {
	return s == Complete || s == Aborted
}

// Activity tracks the lifecycle of one goal submitted to an axis: it moves
// from Pending to Active as the planner picks it up, then to Complete (or,
// if canceled mid-flight, Aborting then Aborted) as the executor catches
// up to the planner's final committed pulse.
//
// This intentionally reimplements the condition-variable shape of a
// threading.Condition rather than depending on one; sync.Cond fills the
// equivalent role in Go.
type Activity struct {
	// ID identifies this activity across process boundaries (event log
	// rows, API responses) independent of Go pointer identity.
	ID string

	mu       sync.Mutex
	cond     *sync.Cond
	status   Status
	canceled bool
	err      error
}

func newActivity() *Activity {
	a := &Activity{ID: uuid.New().String()}
	a.cond = sync.NewCond(&a.mu)
	return a
}

// NewActivity constructs a standalone Activity. Exposed so other
// components (the coordinator's own goal lifecycle) can reuse the same
// status/cancel machinery instead of rebuilding it.
func NewActivity() *Activity { return newActivity() }

// Status returns the current lifecycle status.
func (a *Activity) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *Activity) setStatus(s Status) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
	a.cond.Broadcast()
}

// Err returns the reason an activity ended Aborted without ever reaching
// the motion queue, e.g. an unsolvable intercept. Nil for any activity
// that completed normally or was canceled in flight.
func (a *Activity) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// setErr records err and transitions straight to Aborted: used for goals
// rejected before a single pulse was ever committed to the motion queue.
func (a *Activity) setErr(err error) {
	a.mu.Lock()
	a.err = err
	a.status = Aborted
	a.mu.Unlock()
	a.cond.Broadcast()
}

// WaitFor blocks until pred(status) holds, then returns that status.
func (a *Activity) WaitFor(pred func(Status) bool) Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	for !pred(a.status) {
		a.cond.Wait()
	}
	return a.status
}

// WaitDone blocks until the activity reaches a terminal status.
func (a *Activity) WaitDone() Status {
	return a.WaitFor(Status.Done)
}

// Cancel marks the activity for cancellation. The planner observes this on
// its next opportunity and transitions the activity to Aborting.
func (a *Activity) Cancel() {
	a.mu.Lock()
	a.canceled = true
	a.mu.Unlock()
	a.cond.Broadcast()
}

func (a *Activity) canceledLocked() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.canceled
}

// Canceled reports whether Cancel has been called.
func (a *Activity) Canceled() bool { return a.canceledLocked() }

// SetStatus transitions the activity to s and wakes any waiters. Exposed
// for callers (the coordinator) that drive their own Activity's lifecycle
// directly rather than through an axis planner/executor pair.
func (a *Activity) SetStatus(s Status) { a.setStatus(s) }

// SetErr records err and transitions the activity straight to Aborted.
// Exposed for the coordinator's own goal lifecycle, the same way SetErr's
// unexported counterpart records a planner-rejected goal's cause.
func (a *Activity) SetErr(err error) { a.setErr(err) }
