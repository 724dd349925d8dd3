package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/asgard/skywatch/internal/axis"
	"github.com/asgard/skywatch/internal/calibration"
	"github.com/asgard/skywatch/internal/coordinator"
	"github.com/asgard/skywatch/internal/pulse"
	"github.com/asgard/skywatch/internal/target"
)

func identityCalibration() *calibration.Calibration { return calibration.New(1, 2*math.Pi) }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := axis.StepperConfig{MinSleepNs: 1_000_000, MaxSpeed: 50, MaxAccel: 50, MaxDecel: 50}
	bearing := axis.New("bearing", cfg, &pulse.LogSink{}, 0, nil)
	dec := axis.New("dec", cfg, &pulse.LogSink{}, 0, nil)
	cal := &calibration.TelescopeCalibration{Bearing: identityCalibration(), Dec: identityCalibration()}
	coord := coordinator.New(bearing, dec, cal, target.Location{}, coordinator.Config{}, nil)
	coord.Start()
	t.Cleanup(coord.Stop)

	metrics := NewMetrics(prometheus.NewRegistry())
	srv := NewServer(coord, metrics, []byte("test-secret"), nil)
	t.Cleanup(srv.Stop)
	return srv
}

func TestHandleHealthz(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %q, want it to contain status ok", rec.Body.String())
	}
}

func TestHandleOrientation(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/orientation", nil)
	rec := httptest.NewRecorder()
	srv.Router(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got orientationJSON
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.BearingRad != 0 || got.DecRad != 0 {
		t.Fatalf("got orientation %+v, want zero value for a freshly-started coordinator", got)
	}
}

func TestHandleCalibrateRequiresBearerToken(t *testing.T) {
	srv := newTestServer(t)
	body := strings.NewReader(`{"bearing_rad":0.5,"dec_rad":0.25}`)
	req := httptest.NewRequest(http.MethodPost, "/calibrate", body)
	rec := httptest.NewRecorder()
	srv.Router(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without a bearer token", rec.Code)
	}
}

func TestHandleCalibrateRejectsAmbiguousRequest(t *testing.T) {
	srv := newTestServer(t)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}

	// Neither a fully absolute nor a fully relative payload: bearing_rad is
	// set but dec_rad is missing, while both relative fields are present.
	body := strings.NewReader(`{"bearing_rad":0.5,"bearing_rel_steps":1,"dec_rel_steps":1}`)
	req := httptest.NewRequest(http.MethodPost, "/calibrate", body)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	srv.Router(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for an ambiguous calibration request", rec.Code)
	}
}

func TestHandleCalibrateAppliesAbsolute(t *testing.T) {
	srv := newTestServer(t)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}

	body := strings.NewReader(`{"bearing_rad":0.5,"dec_rad":0.25}`)
	req := httptest.NewRequest(http.MethodPost, "/calibrate", body)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	srv.Router(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	// identityCalibration is 1 rad per step and offsets are whole steps, so
	// 0.5 rad rounds to 1 step and 0.25 rad rounds to 0 steps.
	got := srv.coord.Cal.Orientation(srv.coord.Bearing.Position(), srv.coord.Dec.Position())
	if math.Abs(got.BearingRad-1.0) > 1e-6 || math.Abs(got.DecRad-0.0) > 1e-6 {
		t.Fatalf("orientation after calibrate = %+v, want bearing=1.0 dec=0.0 (nearest step)", got)
	}
}

func TestMetricsEndpointServesRegisteredCollectors(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Router(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "skywatch_coordinator_track_goal_changes_total") {
		t.Fatalf("metrics body missing expected collector name")
	}
}
