package application

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/nkmodel/internal/calibration/domain"
	"github.com/wyfcoding/nkmodel/pkg/metrics"
)

type fakeSource struct {
	mu     sync.Mutex
	series map[string]*domain.Series
	errs   map[string]error
	calls  []string
}

func (f *fakeSource) FetchSeries(_ context.Context, id string) (*domain.Series, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return f.series[id], nil
}

func quarterly(start time.Time, values ...float64) *domain.Series {
	s := &domain.Series{}
	for i, v := range values {
		s.Dates = append(s.Dates, start.AddDate(0, 3*i, 0))
		s.Values = append(s.Values, v)
	}
	return s
}

func TestCalibrationService_Calibrate(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	gdp := make([]float64, 16)
	for i := range gdp {
		gdp[i] = 100 * math.Exp(0.005*float64(i))
	}
	src := &fakeSource{series: map[string]*domain.Series{
		"GDP":  quarterly(start, gdp...),
		"CPI":  quarterly(start, 2.0, 2.5, 3.1),
		"RATE": quarterly(start, 0.5, 1.2),
	}}

	m := metrics.New("caltest")
	require.NoError(t, m.Register(prometheus.NewRegistry()))
	svc := NewCalibrationService(src, Options{GDPSeries: "GDP", InflationSeries: "CPI", RealRateSeries: "RATE", HPLambda: 1600}, m)

	c, err := svc.Calibrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.1, c.Inflation)
	assert.Equal(t, 1.2, c.RealInterestRate)
	assert.InDelta(t, 0, c.OutputGap, 1e-6)
	// the real-rate series ends earliest
	assert.Equal(t, start.AddDate(0, 3, 0), c.AsOf)
	assert.ElementsMatch(t, []string{"GDP", "CPI", "RATE"}, src.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalibrationFetches.WithLabelValues("GDP", "ok")))
}

func TestCalibrationService_FetchError(t *testing.T) {
	boom := errors.New("upstream down")
	src := &fakeSource{
		series: map[string]*domain.Series{},
		errs:   map[string]error{"CPI": boom},
	}
	svc := NewCalibrationService(src, Options{GDPSeries: "GDP", InflationSeries: "CPI", RealRateSeries: "RATE", HPLambda: 1600}, nil)

	_, err := svc.Calibrate(context.Background())
	assert.Error(t, err)
}

func TestCalibrationService_ShortGDP(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{series: map[string]*domain.Series{
		"GDP":  quarterly(start, 100, 101),
		"CPI":  quarterly(start, 2.0),
		"RATE": quarterly(start, 0.5),
	}}
	svc := NewCalibrationService(src, Options{GDPSeries: "GDP", InflationSeries: "CPI", RealRateSeries: "RATE", HPLambda: 1600}, nil)

	_, err := svc.Calibrate(context.Background())
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}
