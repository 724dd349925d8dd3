// Package pulse defines the step-pulse sink interface that the axis
// executor drives, and the sinks that turn a logical step into electrical
// signal: a serial-attached stepper driver board and a logging stand-in
// for development without hardware attached.
package pulse

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Direction is the signed direction of a single step pulse.
type Direction int

const (
	Reverse Direction = -1
	Hold    Direction = 0
	Forward Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "FWD"
	case Reverse:
		return "REV"
	default:
		return "NOP"
	}
}

// Sink receives a single step pulse for an axis. Implementations must be
// safe for concurrent use by multiple axis executors; Step itself is
// expected to block for the physical pulse width before returning.
type Sink interface {
	Step(axis string, dir Direction) error
}

// LogSink logs each pulse instead of driving hardware. Grounded on the
// development fallback paths threaded through the teacher's actuator
// controllers.
type LogSink struct {
	Logger *logrus.Logger
}

// NewLogSink returns a LogSink using logger, or logrus's standard logger if
// nil.
func NewLogSink(logger *logrus.Logger) *LogSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogSink{Logger: logger}
}

func (s *LogSink) Step(axis string, dir Direction) error {
	logger := s.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields{
		"axis":      axis,
		"direction": dir.String(),
	}).Trace("step pulse")
	return nil
}

// SerialWriter is the subset of go.bug.st/serial's Port that SerialSink
// needs, narrowed for testability.
type SerialWriter interface {
	Write(p []byte) (int, error)
}

// SerialSink drives an external stepper-driver board over a serial link
// using a small line protocol: one line per pulse, "<axis> <dir>\n".
// Grounded on the teacher's MAVLinkController, which guards a single
// serial-backed protocol struct with a mutex shared across all command
// paths.
type SerialSink struct {
	mu     sync.Mutex
	port   SerialWriter
	logger *logrus.Logger
}

// NewSerialSink wraps an open serial port. The caller owns the port's
// lifecycle (open/close).
func NewSerialSink(port SerialWriter, logger *logrus.Logger) *SerialSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SerialSink{port: port, logger: logger}
}

func (s *SerialSink) Step(axis string, dir Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := fmt.Sprintf("%s %d\n", axis, int(dir))
	if _, err := s.port.Write([]byte(line)); err != nil {
		return fmt.Errorf("pulse: write to serial sink: %w", err)
	}
	return nil
}
