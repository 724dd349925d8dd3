package main

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// config holds every flag/env-configurable knob the daemon needs to wire
// its axes, coordinator, and optional integrations together. Grounded on
// the teacher's flag-plus-getEnvDefault/getEnvBool wiring style (cmd/
// silenus/main.go, cmd/percila/main.go).
type config struct {
	serialPort string
	baudRate   int
	mockHAL    bool

	latitudeDeg  float64
	longitudeDeg float64
	elevationM   float64

	bearingMotorSteps int
	bearingGearRatio  float64
	decMotorSteps     int
	decGearRatio      float64

	maxSpeed       float64
	maxAccel       float64
	maxDecel       float64
	minSleepNs     int64
	maxIntervalNs  int64
	predictDt      time.Duration
	initialRunway  time.Duration

	httpAddr       string
	jwtSecret      string
	allowedOrigins []string
	stellariumAddr string

	natsURL string
	dbDSN   string

	logLevel  string
	logOutput string
}

func parseConfig() config {
	cfg := config{}

	flag.StringVar(&cfg.serialPort, "serial-port", getEnvDefault("MOUNTD_SERIAL_PORT", ""), "serial device the stepper driver board is attached to (empty uses a logging stand-in instead of real hardware)")
	flag.IntVar(&cfg.baudRate, "baud", getEnvInt("MOUNTD_BAUD", 115200), "serial baud rate")
	flag.BoolVar(&cfg.mockHAL, "mock", getEnvBool("MOUNTD_MOCK", false), "force the logging pulse sink even if -serial-port is set")

	flag.Float64Var(&cfg.latitudeDeg, "lat", getEnvFloat("MOUNTD_LAT", 0), "observer latitude, degrees")
	flag.Float64Var(&cfg.longitudeDeg, "lon", getEnvFloat("MOUNTD_LON", 0), "observer longitude, degrees")
	flag.Float64Var(&cfg.elevationM, "elevation", getEnvFloat("MOUNTD_ELEVATION_M", 0), "observer elevation, meters")

	flag.IntVar(&cfg.bearingMotorSteps, "bearing-motor-steps", getEnvInt("MOUNTD_BEARING_MOTOR_STEPS", 200), "bearing stepper motor full steps per revolution")
	flag.Float64Var(&cfg.bearingGearRatio, "bearing-gear-ratio", getEnvFloat("MOUNTD_BEARING_GEAR_RATIO", 360), "bearing axis gear reduction ratio")
	flag.IntVar(&cfg.decMotorSteps, "dec-motor-steps", getEnvInt("MOUNTD_DEC_MOTOR_STEPS", 200), "declination stepper motor full steps per revolution")
	flag.Float64Var(&cfg.decGearRatio, "dec-gear-ratio", getEnvFloat("MOUNTD_DEC_GEAR_RATIO", 360), "declination axis gear reduction ratio")

	flag.Float64Var(&cfg.maxSpeed, "max-speed", getEnvFloat("MOUNTD_MAX_SPEED", 4000), "per-axis maximum speed, steps/s")
	flag.Float64Var(&cfg.maxAccel, "max-accel", getEnvFloat("MOUNTD_MAX_ACCEL", 8000), "per-axis maximum acceleration, steps/s/s")
	flag.Float64Var(&cfg.maxDecel, "max-decel", getEnvFloat("MOUNTD_MAX_DECEL", 8000), "per-axis maximum deceleration, steps/s/s")
	flag.Int64Var(&cfg.minSleepNs, "min-pulse-interval-ns", getEnvInt64("MOUNTD_MIN_PULSE_INTERVAL_NS", 50_000), "minimum wall-clock gap enforced between consecutive pulses")
	flag.Int64Var(&cfg.maxIntervalNs, "max-pulse-interval-ns", getEnvInt64("MOUNTD_MAX_PULSE_INTERVAL_NS", 250_000_000), "maximum gap allowed between pulses before a liveness NOP is due")

	flag.DurationVar(&cfg.predictDt, "predict-dt", getEnvDuration("MOUNTD_PREDICT_DT", 30*time.Second), "look-ahead used to sample a tracked target's position and velocity")
	flag.DurationVar(&cfg.initialRunway, "initial-runway", getEnvDuration("MOUNTD_INITIAL_RUNWAY", 100*time.Millisecond), "how far into the future a newly planned intercept starts")

	flag.StringVar(&cfg.httpAddr, "http-addr", getEnvDefault("MOUNTD_HTTP_ADDR", ":8080"), "address the admin/observability HTTP surface listens on")
	flag.StringVar(&cfg.jwtSecret, "jwt-secret", os.Getenv("MOUNTD_JWT_SECRET"), "HMAC secret guarding POST /calibrate")
	origins := flag.String("allowed-origins", getEnvDefault("MOUNTD_ALLOWED_ORIGINS", "*"), "comma-separated CORS origins allowed to reach the HTTP surface")
	flag.StringVar(&cfg.stellariumAddr, "stellarium-addr", getEnvDefault("MOUNTD_STELLARIUM_ADDR", ":10001"), "address the Stellarium telescope-control bridge listens on")

	flag.StringVar(&cfg.natsURL, "nats-url", os.Getenv("MOUNTD_NATS_URL"), "NATS server URL for the remote goal/orientation bridge (empty disables it)")
	flag.StringVar(&cfg.dbDSN, "db-dsn", os.Getenv("MOUNTD_DB_DSN"), "Postgres DSN for the track event log (empty disables it)")

	flag.StringVar(&cfg.logLevel, "log-level", getEnvDefault("MOUNTD_LOG_LEVEL", "info"), "debug, info, warn, or error")
	flag.StringVar(&cfg.logOutput, "log-output", getEnvDefault("MOUNTD_LOG_OUTPUT", "stdout"), "stdout or a file path")

	flag.Parse()

	cfg.allowedOrigins = splitAndTrim(*origins)
	return cfg
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	return v == "1" || v == "true" || v == "yes"
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
