package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RegisterAndRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("test")
	require.NoError(t, m.Register(reg))

	m.RecordSimulation("completed", 20, 0.0001)
	m.RecordSimulation("completed", 10, 0.0001)
	m.RecordSimulation("invalid", 0, 0)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	m.RecordCalibrationFetch("GDPC1", nil)
	m.RecordCalibrationFetch("GDPC1", errors.New("boom"))
	m.RecordHTTPRequest("POST", "/api/v1/nkmodel/simulations", 200, 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SimulationsTotal.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SimulationsTotal.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalibrationFetches.WithLabelValues("GDPC1", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/nkmodel/simulations", "200")))
}

func TestMetrics_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, New("dup").Register(reg))
	assert.Error(t, New("dup").Register(reg))
}
