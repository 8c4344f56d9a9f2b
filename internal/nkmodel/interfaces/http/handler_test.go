package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	caldomain "github.com/wyfcoding/nkmodel/internal/calibration/domain"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/application"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/infrastructure/persistence/memory"
)

type stubCalibrator struct {
	c   *caldomain.Calibration
	err error
}

func (s stubCalibrator) Calibrate(context.Context) (*caldomain.Calibration, error) { return s.c, s.err }

func newRouter(t *testing.T, cal application.ParameterSource) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app := application.NewSimulationApplicationService(application.Dependencies{
		Repo:   memory.NewSimulationRunRepository(),
		Source: cal,
	}, application.Options{MaxHorizon: 100})
	r := gin.New()
	NewHandler(r, app, cal, 3)
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var workedBody = map[string]any{
	"name": "worked",
	"parameters": map[string]any{
		"sigma": 0.5, "gamma": 0.5, "beta": 0.5, "phi_pi": 1.5, "phi_y": 0.5, "real_interest_rate": 1,
	},
	"initial": map[string]any{"pi0": 2, "output_gap0": 20},
	"shock":   map[string]any{"kind": "NONE"},
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHandler_RunAndGet(t *testing.T) {
	r := newRouter(t, nil)

	w := do(r, http.MethodPost, "/api/v1/nkmodel/simulations", workedBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dto := decode[application.SimulationDTO](t, w)
	// default horizon 3
	assert.Equal(t, 3, dto.Horizon)
	assert.InDeltaSlice(t, []float64{14, 15.5, -0.25}, dto.Result.InterestRate, 1e-12)

	w = do(r, http.MethodGet, "/api/v1/nkmodel/simulations/"+dto.RunID+"?percent=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[application.SimulationDTO](t, w)
	assert.InDeltaSlice(t, []float64{1400, 1550, -25}, got.Result.InterestRate, 1e-9)

	// stored result is not scaled
	w = do(r, http.MethodGet, "/api/v1/nkmodel/simulations/"+dto.RunID, nil)
	got = decode[application.SimulationDTO](t, w)
	assert.InDeltaSlice(t, []float64{14, 15.5, -0.25}, got.Result.InterestRate, 1e-12)
}

func TestHandler_ErrorMapping(t *testing.T) {
	r := newRouter(t, nil)

	degenerate := map[string]any{
		"parameters": map[string]any{"sigma": 0},
		"horizon":    3,
	}
	badShock := map[string]any{
		"parameters": map[string]any{"sigma": 1},
		"shock":      map[string]any{"kind": "SINGLE", "size": 1, "start_period": 9},
		"horizon":    3,
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"degenerate", http.MethodPost, "/api/v1/nkmodel/simulations", degenerate, http.StatusUnprocessableEntity},
		{"invalid shock", http.MethodPost, "/api/v1/nkmodel/simulations", badShock, http.StatusBadRequest},
		{"zero horizon binding", http.MethodPost, "/api/v1/nkmodel/simulations", map[string]any{"horizon": 0}, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/v1/nkmodel/simulations", "not-an-object", http.StatusBadRequest},
		{"not found", http.MethodGet, "/api/v1/nkmodel/simulations/unknown", nil, http.StatusNotFound},
		{"over max horizon", http.MethodPost, "/api/v1/nkmodel/shock-series", map[string]any{"horizon": 101}, http.StatusBadRequest},
		{"calibration unconfigured", http.MethodGet, "/api/v1/nkmodel/calibration", nil, http.StatusServiceUnavailable},
		{"calibrated run unconfigured", http.MethodPost, "/api/v1/nkmodel/simulations/calibrated", map[string]any{"parameters": workedBody["parameters"], "horizon": 2}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestHandler_BatchAndList(t *testing.T) {
	r := newRouter(t, nil)

	second := map[string]any{}
	for k, v := range workedBody {
		second[k] = v
	}
	second["name"] = "longer"
	second["horizon"] = 5

	w := do(r, http.MethodPost, "/api/v1/nkmodel/simulations/batch", map[string]any{
		"scenarios": []any{workedBody, second},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	batch := decode[struct {
		Items []application.SimulationDTO `json:"items"`
	}](t, w)
	require.Len(t, batch.Items, 2)
	assert.Equal(t, "worked", batch.Items[0].Name)
	assert.Equal(t, 5, batch.Items[1].Horizon)

	w = do(r, http.MethodPost, "/api/v1/nkmodel/simulations/batch", map[string]any{"scenarios": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/nkmodel/simulations?page=1&page_size=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[application.SimulationListDTO](t, w)
	assert.Equal(t, int64(2), list.Pagination.Total)
	assert.Len(t, list.Items, 1)
}

func TestHandler_PreviewShock(t *testing.T) {
	r := newRouter(t, nil)
	w := do(r, http.MethodPost, "/api/v1/nkmodel/shock-series", map[string]any{
		"shock":   map[string]any{"location": "IS", "kind": "PERSISTENT", "size": 0.5, "start_period": 1, "duration": 1},
		"horizon": 4,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s := decode[domain.ShockSeries](t, w)
	assert.Equal(t, domain.ShockLocationIS, s.Location)
	assert.Equal(t, []float64{0, 0.5, 0, 0}, s.Values)
}

func TestHandler_Calibration(t *testing.T) {
	asOf := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newRouter(t, stubCalibrator{c: &caldomain.Calibration{Inflation: 3, OutputGap: 1, RealInterestRate: 2, AsOf: asOf}})

	w := do(r, http.MethodGet, "/api/v1/nkmodel/calibration", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cal := decode[application.CalibrationDTO](t, w)
	assert.Equal(t, 3.0, cal.Inflation)
	assert.Equal(t, asOf, cal.AsOf)

	w = do(r, http.MethodPost, "/api/v1/nkmodel/simulations/calibrated", map[string]any{
		"parameters": workedBody["parameters"],
		"horizon":    2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decode[application.CalibratedSimulationDTO](t, w)
	assert.InDelta(t, 0.03, out.Simulation.Initial.Pi0, 1e-12)
}

func TestHandler_CalibrationUpstreamError(t *testing.T) {
	r := newRouter(t, stubCalibrator{err: errors.New("upstream")})
	w := do(r, http.MethodGet, "/api/v1/nkmodel/calibration", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
