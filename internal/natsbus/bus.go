// Package natsbus bridges a coordinator's Track/Idle/Stop goals and
// orientation publications across a process boundary over NATS, so an
// operator process and the mount daemon can run as separate OS
// processes. Purely additive: internal/coordinator has no knowledge of
// this package.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/asgard/skywatch/internal/coordinator"
	"github.com/asgard/skywatch/internal/target"
)

// Bus connects a coordinator to a NATS server: it subscribes for
// incoming goals and forwards outgoing orientation publications.
//
// Grounded on Percila's nats_bridge.go: config-with-defaults connect,
// subscription-list-driven Start, stats-free here since this bus serves
// one coordinator rather than many ASGARD subsystems. The outbound rate
// limiter follows the same Limiter-plus-Wait(ctx) shape the flight
// tracking client uses to throttle outbound API calls.
type Bus struct {
	mu          sync.Mutex
	nc          *nats.Conn
	coord       *coordinator.Coordinator
	logger      *logrus.Logger
	cfg         Config
	subs        []*nats.Subscription
	running     bool
	rateLimiter *rate.Limiter

	orientations      <-chan coordinator.OrientationPublication
	unsubOrientations func()
	stopForward       chan struct{}
	forwardDone       chan struct{}
}

// NewBus connects to NATS and binds the bus to coord. The connection is
// established eagerly so construction failures surface immediately
// rather than on first use.
func NewBus(cfg Config, coord *coordinator.Coordinator, logger *logrus.Logger) (*Bus, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	cfg = cfg.withDefaults()

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ClientName),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
	)
	if err != nil {
		return nil, fmt.Errorf("natsbus: connect to %s: %w", cfg.URL, err)
	}

	return &Bus{
		nc:          nc,
		coord:       coord,
		logger:      logger,
		cfg:         cfg,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.OrientationRateLimit), 1),
	}, nil
}

// Start subscribes to the goal subject and begins forwarding the
// coordinator's orientation publications. No-op if already running.
func (b *Bus) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil
	}

	sub, err := b.nc.Subscribe(SubjectGoal, b.handleGoalMessage)
	if err != nil {
		return fmt.Errorf("natsbus: subscribe %s: %w", SubjectGoal, err)
	}
	b.subs = append(b.subs, sub)

	orientations, unsubscribe := b.coord.SubscribeOrientations()
	b.orientations = orientations
	b.unsubOrientations = unsubscribe

	b.stopForward = make(chan struct{})
	b.forwardDone = make(chan struct{})
	go b.forwardOrientations()

	b.running = true
	return nil
}

// Stop unsubscribes, stops orientation forwarding, and drains the
// connection.
func (b *Bus) Stop() error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	stopForward := b.stopForward
	forwardDone := b.forwardDone
	subs := b.subs
	unsubOrientations := b.unsubOrientations
	b.subs = nil
	b.mu.Unlock()

	close(stopForward)
	<-forwardDone
	unsubOrientations()

	for _, sub := range subs {
		if err := sub.Unsubscribe(); err != nil {
			b.logger.WithError(err).Warn("natsbus: failed to unsubscribe")
		}
	}

	if err := b.nc.Drain(); err != nil {
		return fmt.Errorf("natsbus: drain: %w", err)
	}
	return nil
}

// Close tears down the underlying NATS connection without draining,
// for use after Stop or when the bus never successfully started.
func (b *Bus) Close() {
	b.nc.Close()
}

func (b *Bus) handleGoalMessage(msg *nats.Msg) {
	var gm GoalMessage
	if err := json.Unmarshal(msg.Data, &gm); err != nil {
		b.logger.WithError(err).Warn("natsbus: failed to unmarshal goal message")
		return
	}

	switch gm.Kind {
	case "track":
		if gm.Target == nil {
			b.logger.Warn("natsbus: track goal message missing target")
			return
		}
		tg := target.FixedSky{
			Name:    gm.Target.Name,
			RARad:   gm.Target.RARad,
			DecRad:  gm.Target.DecRad,
			RefTime: gm.Target.ReferenceAt,
		}
		b.coord.Track(tg)
	case "idle":
		b.coord.Idle()
	case "stop":
		b.coord.Stop()
	default:
		b.logger.WithField("kind", gm.Kind).Warn("natsbus: unrecognized goal kind")
	}
}

// forwardOrientations republishes the coordinator's orientation
// publications to SubjectOrientation until Stop is called, subscribing
// independently of any other consumer (e.g. the HTTP/metrics surface) so
// it sees every publication regardless of who else is listening. Outbound
// publishes are capped at cfg.OrientationRateLimit/s so a mount tracking
// at full pulse rate doesn't flood the NATS subject.
func (b *Bus) forwardOrientations() {
	defer close(b.forwardDone)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-b.stopForward:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		select {
		case <-b.stopForward:
			return
		case pub, ok := <-b.orientations:
			if !ok {
				return
			}
			if err := b.rateLimiter.Wait(ctx); err != nil {
				return
			}
			if err := b.PublishOrientation(pub); err != nil {
				b.logger.WithError(err).Warn("natsbus: failed to publish orientation")
			}
		}
	}
}

// PublishOrientation publishes one orientation update directly, for
// callers that want to forward outside the automatic loop Start begins.
func (b *Bus) PublishOrientation(pub coordinator.OrientationPublication) error {
	om := OrientationMessage{BearingRad: pub.BearingRad, DecRad: pub.DecRad, At: time.Now()}
	data, err := json.Marshal(om)
	if err != nil {
		return fmt.Errorf("natsbus: marshal orientation: %w", err)
	}
	if err := b.nc.Publish(SubjectOrientation, data); err != nil {
		return fmt.Errorf("natsbus: publish orientation: %w", err)
	}
	return nil
}

// PublishGoal publishes a goal message, the operator-process side of the
// bridge.
func (b *Bus) PublishGoal(gm GoalMessage) error {
	data, err := json.Marshal(gm)
	if err != nil {
		return fmt.Errorf("natsbus: marshal goal: %w", err)
	}
	if err := b.nc.Publish(SubjectGoal, data); err != nil {
		return fmt.Errorf("natsbus: publish goal: %w", err)
	}
	return nil
}
