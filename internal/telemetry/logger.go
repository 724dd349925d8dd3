// Package telemetry configures the daemon's structured logger and trace
// provider. Other packages take a *logrus.Logger (or fall back to
// logrus's standard logger) and use the otel trace API; this package is
// where the daemon's logger level, output and format and its process-wide
// tracer provider are configured.
package telemetry

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a logrus.Logger with JSON output, grounded on the
// teacher's own logger setup. level is one of debug/info/warn/error,
// defaulting to info; output is "stdout" or a file path.
func NewLogger(level, output string) *logrus.Logger {
	logger := logrus.New()

	switch level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if output == "" || output == "stdout" {
		logger.SetOutput(os.Stdout)
	} else {
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			logger.SetOutput(os.Stdout)
			logger.WithError(err).Warnf("telemetry: failed to open log file %s, using stdout", output)
		} else {
			logger.SetOutput(file)
		}
	}

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	return logger
}
