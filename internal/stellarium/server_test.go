package stellarium

import (
	"encoding/binary"
	"math"
	"net"
	"testing"
	"time"

	"github.com/asgard/skywatch/internal/axis"
	"github.com/asgard/skywatch/internal/calibration"
	"github.com/asgard/skywatch/internal/coordinator"
	"github.com/asgard/skywatch/internal/pulse"
	"github.com/asgard/skywatch/internal/target"
)

func identityCalibration() *calibration.Calibration {
	return calibration.New(1, 2*math.Pi)
}

func newTestCoordinator(t *testing.T) *coordinator.Coordinator {
	t.Helper()
	cfg := axis.StepperConfig{MinSleepNs: 1_000_000, MaxSpeed: 50, MaxAccel: 50, MaxDecel: 50}
	bearing := axis.New("bearing", cfg, &pulse.LogSink{}, 0, nil)
	dec := axis.New("dec", cfg, &pulse.LogSink{}, 0, nil)
	cal := &calibration.TelescopeCalibration{Bearing: identityCalibration(), Dec: identityCalibration()}
	c := coordinator.New(bearing, dec, cal, target.Location{}, coordinator.Config{}, nil)
	c.Start()
	t.Cleanup(func() { c.Stop() })
	return c
}

// readRawHeader reads just the length/type header off a position report,
// enough to confirm the bridge framed it the way the protocol expects
// without duplicating ReadGotoMessage's inbound-shaped body parsing.
func readRawHeader(t *testing.T, conn net.Conn) (length, msgType int16) {
	t.Helper()
	var header struct {
		Length int16
		Type   int16
	}
	if err := binary.Read(conn, binary.LittleEndian, &header); err != nil {
		t.Fatalf("reading position report header: %v", err)
	}
	rest := make([]byte, header.Length-4)
	if _, err := conn.Read(rest); err != nil && header.Length > 4 {
		t.Fatalf("reading position report body: %v", err)
	}
	return header.Length, header.Type
}

// TestBridgeReportsPositionOnCadence verifies a connected client receives
// position reports at roughly the configured interval.
func TestBridgeReportsPositionOnCadence(t *testing.T) {
	c := newTestCoordinator(t)
	b := NewBridge(c, target.Location{}, nil)
	b.ReportInterval = 20 * time.Millisecond

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	done := make(chan struct{})
	go func() {
		b.handleConn(serverConn)
		close(done)
	}()

	length, msgType := readRawHeader(t, clientConn)
	if length != positionMessageLen {
		t.Fatalf("position message length = %d, want %d", length, positionMessageLen)
	}
	if msgType != gotoMessageType {
		t.Fatalf("position message type = %d, want %d", msgType, gotoMessageType)
	}

	clientConn.Close()
	<-done
}

// TestBridgeTracksOnGotoMessage verifies an inbound goto message results
// in the coordinator picking up a matching Track goal.
func TestBridgeTracksOnGotoMessage(t *testing.T) {
	c := newTestCoordinator(t)
	b := NewBridge(c, target.Location{}, nil)
	b.ReportInterval = time.Hour // keep position reports from racing the assertion below

	targets, unsubscribe := c.SubscribeTargets()
	defer unsubscribe()

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	done := make(chan struct{})
	go func() {
		b.handleConn(serverConn)
		close(done)
	}()

	raRaw := EncodeRA(21600) // 6h
	decRaw := EncodeDec(0.25)
	writeErr := make(chan error, 1)
	go func() { writeErr <- WriteGotoMessage(clientConn, 0, raRaw, decRaw) }()
	if err := <-writeErr; err != nil {
		t.Fatalf("writing goto message: %v", err)
	}

	select {
	case pub := <-targets:
		if pub.Target == nil {
			t.Fatalf("expected a non-nil tracked target after goto message")
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for coordinator to publish a tracked target")
	}

	clientConn.Close()
	<-done
}
