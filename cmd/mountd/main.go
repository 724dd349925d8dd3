// Command mountd drives a two-axis telescope mount: it owns the bearing
// and declination stepper axes, runs the acquisition/tracking
// coordinator over them, and exposes that coordinator through a
// Stellarium telescope-control bridge, a narrow HTTP/observability
// surface, and, optionally, a Postgres event log and a NATS goal/
// orientation bridge to other processes.
//
// Grounded on the teacher's daemon entry points (cmd/percila/main.go's
// flag-parse-then-wire-subsystems-then-wait-for-signal shape, cmd/
// silenus/main.go's metrics-http-server-with-graceful-shutdown helper).
package main

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/asgard/skywatch/internal/api"
	"github.com/asgard/skywatch/internal/axis"
	"github.com/asgard/skywatch/internal/calibration"
	"github.com/asgard/skywatch/internal/coordinator"
	"github.com/asgard/skywatch/internal/eventlog"
	"github.com/asgard/skywatch/internal/natsbus"
	"github.com/asgard/skywatch/internal/pulse"
	"github.com/asgard/skywatch/internal/stellarium"
	"github.com/asgard/skywatch/internal/target"
	"github.com/asgard/skywatch/internal/telemetry"
)

func degToRad(d float64) float64 { return d * math.Pi / 180 }

func main() {
	cfg := parseConfig()
	logger := telemetry.NewLogger(cfg.logLevel, cfg.logOutput)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, "skywatch-mountd")
	if err != nil {
		logger.WithError(err).Fatal("mountd: failed to set up tracing")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("mountd: tracer provider shutdown error")
		}
	}()

	sink, closeSink, err := buildPulseSink(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("mountd: failed to open pulse sink")
	}
	defer closeSink()

	stepperCfg := axis.StepperConfig{
		MinSleepNs:    cfg.minSleepNs,
		MaxSpeed:      cfg.maxSpeed,
		MaxAccel:      cfg.maxAccel,
		MaxDecel:      cfg.maxDecel,
		MaxIntervalNs: cfg.maxIntervalNs,
	}
	bearing := axis.New("bearing", stepperCfg, sink, 0, logger)
	dec := axis.New("dec", stepperCfg, sink, 0, logger)
	cal := calibration.NewTelescope(cfg.bearingMotorSteps, cfg.bearingGearRatio, cfg.decMotorSteps, cfg.decGearRatio)

	loc := target.Location{
		LatitudeRad:  degToRad(cfg.latitudeDeg),
		LongitudeRad: degToRad(cfg.longitudeDeg),
		ElevationM:   cfg.elevationM,
	}

	coordCfg := coordinator.Config{PredictDt: cfg.predictDt, InitialRunway: cfg.initialRunway}
	coord := coordinator.New(bearing, dec, cal, loc, coordCfg, logger)
	coord.Tracer = telemetry.NewObserver("skywatch/coordinator")

	if cfg.dbDSN != "" {
		db, err := eventlog.Open(cfg.dbDSN)
		if err != nil {
			logger.WithError(err).Fatal("mountd: failed to open event log database")
		}
		defer db.Close()
		if err := db.InitSchema(ctx); err != nil {
			logger.WithError(err).Fatal("mountd: failed to initialize event log schema")
		}
		coord.Recorder = eventlog.NewRecorder(db)
		logger.Info("mountd: event log enabled")
	}

	coord.Start()
	defer coord.Stop()

	var bus *natsbus.Bus
	if cfg.natsURL != "" {
		natsCfg := natsbus.DefaultConfig()
		natsCfg.URL = cfg.natsURL
		bus, err = natsbus.NewBus(natsCfg, coord, logger)
		if err != nil {
			logger.WithError(err).Fatal("mountd: failed to connect to NATS")
		}
		if err := bus.Start(); err != nil {
			logger.WithError(err).Fatal("mountd: failed to start NATS bridge")
		}
		defer bus.Stop()
		logger.WithField("url", cfg.natsURL).Info("mountd: NATS goal/orientation bridge enabled")
	}

	stellariumListener, err := net.Listen("tcp", cfg.stellariumAddr)
	if err != nil {
		logger.WithError(err).Fatal("mountd: failed to listen for Stellarium connections")
	}
	bridge := stellarium.NewBridge(coord, loc, logger)
	go func() {
		if err := bridge.Serve(stellariumListener); err != nil {
			logger.WithError(err).Warn("mountd: Stellarium bridge stopped")
		}
	}()
	logger.WithField("addr", cfg.stellariumAddr).Info("mountd: Stellarium bridge listening")

	metrics := api.NewMetrics(prometheus.DefaultRegisterer)
	apiServer := api.NewServer(coord, metrics, []byte(cfg.jwtSecret), logger)
	go apiServer.RunTelemetry()
	defer apiServer.Stop()

	httpServer := &http.Server{
		Addr:    cfg.httpAddr,
		Handler: apiServer.Router(cfg.allowedOrigins),
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Warn("mountd: HTTP server stopped")
		}
	}()
	logger.WithField("addr", cfg.httpAddr).Info("mountd: admin/observability HTTP surface listening")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("mountd: shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("mountd: HTTP server shutdown error")
	}
	stellariumListener.Close()
}

// buildPulseSink opens the configured serial port, or falls back to the
// logging stand-in when no port is configured or -mock is set. The
// returned close func is always safe to call.
func buildPulseSink(cfg config, logger *logrus.Logger) (pulse.Sink, func(), error) {
	noop := func() {}

	if cfg.mockHAL || cfg.serialPort == "" {
		logger.Info("mountd: using logging pulse sink (no serial hardware attached)")
		return pulse.NewLogSink(logger), noop, nil
	}

	mode := &serial.Mode{
		BaudRate: cfg.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.serialPort, mode)
	if err != nil {
		return nil, noop, fmt.Errorf("open serial port %s: %w", cfg.serialPort, err)
	}

	logger.WithField("port", cfg.serialPort).Info("mountd: driving stepper hardware over serial")
	return pulse.NewSerialSink(port, logger), func() { port.Close() }, nil
}
