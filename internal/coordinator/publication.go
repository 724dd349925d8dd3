package coordinator

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/asgard/skywatch/internal/target"
)

const subscriberBuffer = 16

// OrientationPublication is emitted whenever either axis's executed
// position has changed since the last publication.
type OrientationPublication struct {
	BearingRad float64
	DecRad     float64
}

// TargetPublication is emitted on every change of the coordinator's
// current target, including the transition to no target (Target == nil)
// when tracking is canceled or the coordinator goes idle.
type TargetPublication struct {
	Target target.Target
}

// orientationSubs fans an orientation publication out to every current
// subscriber. A single shared channel only delivers each value to
// whichever one of its readers Go's scheduler happens to pick; a mount
// daemon running both a WebSocket/metrics surface and a NATS bridge
// needs every publication to reach both. Grounded on the same register/
// unregister/broadcast shape as the HTTP layer's orientationHub.
type orientationSubs struct {
	mu     sync.Mutex
	subs   map[chan OrientationPublication]struct{}
	logger *logrus.Logger
}

func newOrientationSubs(logger *logrus.Logger) *orientationSubs {
	return &orientationSubs{subs: make(map[chan OrientationPublication]struct{}), logger: logger}
}

func (s *orientationSubs) subscribe() chan OrientationPublication {
	ch := make(chan OrientationPublication, subscriberBuffer)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *orientationSubs) unsubscribe(ch chan OrientationPublication) {
	s.mu.Lock()
	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
	s.mu.Unlock()
}

func (s *orientationSubs) broadcast(p OrientationPublication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- p:
		default:
			s.logger.Warn("orientation subscriber buffer full, dropping update")
		}
	}
}

func (s *orientationSubs) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

// targetSubs is orientationSubs's twin for target-change publications.
type targetSubs struct {
	mu     sync.Mutex
	subs   map[chan TargetPublication]struct{}
	logger *logrus.Logger
}

func newTargetSubs(logger *logrus.Logger) *targetSubs {
	return &targetSubs{subs: make(map[chan TargetPublication]struct{}), logger: logger}
}

func (s *targetSubs) subscribe() chan TargetPublication {
	ch := make(chan TargetPublication, subscriberBuffer)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *targetSubs) unsubscribe(ch chan TargetPublication) {
	s.mu.Lock()
	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
	s.mu.Unlock()
}

func (s *targetSubs) broadcast(p TargetPublication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- p:
		default:
			s.logger.Warn("target subscriber buffer full, dropping update")
		}
	}
}

func (s *targetSubs) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

func (c *Coordinator) publishOrientation(p OrientationPublication) {
	c.orientationSubs.broadcast(p)
}

func (c *Coordinator) publishTarget(p TargetPublication) {
	c.targetSubs.broadcast(p)
}

// SubscribeOrientations registers a new, independent orientation
// subscriber and returns the channel it will receive every subsequent
// publication on. Every subscriber sees every publication, unlike a
// single shared channel split unpredictably between readers. The
// returned unsubscribe func must be called when the caller is done
// reading; the channel is closed then, or when the coordinator stops.
func (c *Coordinator) SubscribeOrientations() (ch <-chan OrientationPublication, unsubscribe func()) {
	sub := c.orientationSubs.subscribe()
	return sub, func() { c.orientationSubs.unsubscribe(sub) }
}

// SubscribeTargets is SubscribeOrientations's twin for target-change
// publications.
func (c *Coordinator) SubscribeTargets() (ch <-chan TargetPublication, unsubscribe func()) {
	sub := c.targetSubs.subscribe()
	return sub, func() { c.targetSubs.unsubscribe(sub) }
}

// Fatal returns the channel track-loop failures (e.g. an unsolvable
// intercept the caller never canceled past) are reported on.
func (c *Coordinator) Fatal() <-chan error { return c.fatal }

func sameTarget(a, b target.Target) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.String() == b.String()
}
