// Package api is the mount daemon's read-mostly HTTP/observability admin
// surface: liveness, Prometheus metrics, the current orientation as JSON
// or a WebSocket stream, and one JWT-guarded mutating endpoint for
// calibration. It deliberately does not expose goal submission.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/asgard/skywatch/internal/coordinator"
)

// Server wires a coordinator into the HTTP surface described above.
type Server struct {
	coord    *coordinator.Coordinator
	metrics  *Metrics
	hub      *orientationHub
	logger   *logrus.Logger
	jwtKey   []byte
	stopChan chan struct{}

	faultMu sync.Mutex
	fault   error
}

// NewServer builds a Server. jwtKey guards POST /calibrate; pass a
// non-empty secret in any deployment reachable from outside localhost.
func NewServer(coord *coordinator.Coordinator, metrics *Metrics, jwtKey []byte, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		coord:    coord,
		metrics:  metrics,
		hub:      newOrientationHub(logger),
		logger:   logger,
		jwtKey:   jwtKey,
		stopChan: make(chan struct{}),
	}
}

// Router builds the chi router. Grounded on the teacher's NewRouter:
// RequestID/RealIP/Logger/Recoverer middleware stack plus a permissive
// CORS policy for the admin dashboard's own origin.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/orientation", s.handleOrientation)
	r.Get("/ws/orientation", s.hub.serveOrientationWS)

	r.Group(func(r chi.Router) {
		r.Use(requireBearer(s.jwtKey))
		r.Post("/calibrate", s.handleCalibrate)
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if fault := s.fatalFault(); fault != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "fault", "error": fault.Error()})
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) setFatalFault(err error) {
	s.faultMu.Lock()
	s.fault = err
	s.faultMu.Unlock()
}

func (s *Server) fatalFault() error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	return s.fault
}

func (s *Server) handleOrientation(w http.ResponseWriter, r *http.Request) {
	o := s.coord.Cal.Orientation(s.coord.Bearing.Position(), s.coord.Dec.Position())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orientationJSON{BearingRad: o.BearingRad, DecRad: o.DecRad})
}

type calibrateRequest struct {
	BearingRad *float64 `json:"bearing_rad,omitempty"`
	DecRad     *float64 `json:"dec_rad,omitempty"`
	BearingRel *int     `json:"bearing_rel_steps,omitempty"`
	DecRel     *int     `json:"dec_rel_steps,omitempty"`
}

// handleCalibrate applies either an absolute calibration (bearing_rad +
// dec_rad) or a relative step nudge (bearing_rel_steps + dec_rel_steps).
// Mixing the two in one request is rejected rather than silently applying
// only one.
func (s *Server) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	var req calibrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	absolute := req.BearingRad != nil && req.DecRad != nil
	relative := req.BearingRel != nil && req.DecRel != nil
	switch {
	case absolute && !relative:
		s.coord.Calibrate(*req.BearingRad, *req.DecRad)
	case relative && !absolute:
		s.coord.CalibrateRelSteps(*req.BearingRel, *req.DecRel)
	default:
		http.Error(w, "provide exactly one of (bearing_rad, dec_rad) or (bearing_rel_steps, dec_rel_steps)", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RunTelemetry forwards the coordinator's publications into this
// server's metrics and WebSocket hub, and watches for coordinator-level
// faults, until Stop is called. It subscribes independently rather than
// sharing a channel with any other consumer (e.g. a NATS bridge), so it
// always sees every publication regardless of who else is listening.
// Intended to run in its own goroutine for the server's lifetime.
func (s *Server) RunTelemetry() {
	orientations, unsubOrientations := s.coord.SubscribeOrientations()
	defer unsubOrientations()
	targets, unsubTargets := s.coord.SubscribeTargets()
	defer unsubTargets()

	for {
		select {
		case <-s.stopChan:
			return
		case pub, ok := <-orientations:
			if !ok {
				return
			}
			s.hub.broadcast(marshalOrientation(pub.BearingRad, pub.DecRad))
			if s.metrics != nil {
				s.metrics.AxisPosition.WithLabelValues("bearing").Set(float64(s.coord.Bearing.Position()))
				s.metrics.AxisPosition.WithLabelValues("dec").Set(float64(s.coord.Dec.Position()))
				s.metrics.AxisVelocity.WithLabelValues("bearing").Set(s.coord.Bearing.Velocity())
				s.metrics.AxisVelocity.WithLabelValues("dec").Set(s.coord.Dec.Velocity())
			}
		case _, ok := <-targets:
			if !ok {
				return
			}
			if s.metrics != nil {
				s.metrics.TrackGoalChanges.Inc()
			}
		case err, ok := <-s.coord.Fatal():
			if !ok {
				return
			}
			s.logger.WithError(err).Error("api: coordinator reported a fatal fault")
			s.setFatalFault(err)
			if s.metrics != nil {
				s.metrics.CoordinatorFaults.Inc()
			}
		}
	}
}

// Stop ends RunTelemetry.
func (s *Server) Stop() {
	close(s.stopChan)
}
