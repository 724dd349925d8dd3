package stellarium

import (
	"errors"
	"io"
	"math"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/asgard/skywatch/internal/coordinator"
	"github.com/asgard/skywatch/internal/target"
)

// DefaultReportInterval matches the reference bridge's position-report
// cadence.
const DefaultReportInterval = 500 * time.Millisecond

// Bridge serves the Stellarium telescope control protocol: it reports the
// coordinator's current pointing direction on a fixed cadence and turns
// inbound goto requests into Track goals.
//
// Grounded on the reference bridge's per-connection report/receive
// goroutine split (there: a trio nursery running
// _report_position_loop/_receive_target_loop concurrently).
type Bridge struct {
	Coordinator    *coordinator.Coordinator
	Location       target.Location
	ReportInterval time.Duration
	Logger         *logrus.Logger
}

// NewBridge builds a Bridge with default report cadence.
func NewBridge(coord *coordinator.Coordinator, loc target.Location, logger *logrus.Logger) *Bridge {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Bridge{
		Coordinator:    coord,
		Location:       loc,
		ReportInterval: DefaultReportInterval,
		Logger:         logger,
	}
}

// Serve accepts connections on ln until it returns an error (typically
// because ln was closed), handling each concurrently.
func (b *Bridge) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go b.handleConn(conn)
	}
}

func (b *Bridge) handleConn(conn net.Conn) {
	b.Logger.WithField("remote", conn.RemoteAddr()).Info("stellarium client connected")
	defer conn.Close()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.reportLoop(conn, stop)
		conn.Close()
	}()
	go func() {
		defer wg.Done()
		b.receiveLoop(conn)
		close(stop)
		conn.Close()
	}()
	wg.Wait()

	b.Logger.WithField("remote", conn.RemoteAddr()).Info("stellarium client disconnected")
}

func (b *Bridge) reportLoop(conn net.Conn, stop <-chan struct{}) {
	interval := b.ReportInterval
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		if err := WritePositionMessage(conn, b.currentPositionMessage()); err != nil {
			if !errors.Is(err, io.EOF) {
				b.Logger.WithError(err).Warn("stellarium: failed to write position report")
			}
			return
		}
	}
}

func (b *Bridge) receiveLoop(conn net.Conn) {
	for {
		msg, err := ReadGotoMessage(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				b.Logger.WithError(err).Warn("stellarium: failed to read goto message")
			}
			return
		}

		raRad, decRad := msg.Coordinate()
		b.Coordinator.Track(target.SolarSystemBody{
			Name: "stellarium-goto",
			Body: fixedEquatorial{raRad: raRad, decRad: decRad},
		})
	}
}

// currentPositionMessage converts the coordinator's current orientation
// (hour angle + declination) into the equatorial right ascension the
// Stellarium protocol expects, reversing the same sidereal-time
// conversion SolarSystemBody uses to go the other way.
func (b *Bridge) currentPositionMessage() PositionMessage {
	now := time.Now()
	bearingPos := b.Coordinator.Bearing.Position()
	decPos := b.Coordinator.Dec.Position()
	o := b.Coordinator.Cal.Orientation(bearingPos, decPos)

	gst := target.GreenwichSiderealRad(now)
	raRad := target.WrapAngle(gst + b.Location.LongitudeRad - o.BearingRad)
	raSeconds := raRad / (2 * math.Pi) * 86400

	return PositionMessage{
		TimestampUs: uint64(now.UnixMicro()),
		RARaw:       EncodeRA(raSeconds),
		DecRaw:      EncodeDec(o.DecRad),
	}
}

// fixedEquatorial is a target.EphemerisBody whose position never moves
// in right ascension/declination: the natural representation of a
// one-shot Stellarium goto, which specifies a point, not an orbit.
type fixedEquatorial struct {
	raRad, decRad float64
}

func (f fixedEquatorial) Position(time.Time, target.Location) (float64, float64, error) {
	return f.raRad, f.decRad, nil
}
