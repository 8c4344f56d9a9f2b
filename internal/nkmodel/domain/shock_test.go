package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildShockSeries(t *testing.T) {
	tests := []struct {
		name    string
		spec    ShockSpec
		horizon int
		want    []float64
	}{
		{"none", ShockSpec{Kind: ShockKindNone, Size: 1}, 3, []float64{0, 0, 0}},
		{"empty kind is none", ShockSpec{Size: 1}, 2, []float64{0, 0}},
		{"single", ShockSpec{Kind: ShockKindSingle, Size: 0.01, StartPeriod: 1}, 4, []float64{0, 0.01, 0, 0}},
		{"single last", ShockSpec{Kind: ShockKindSingle, Size: 0.01, StartPeriod: 3}, 4, []float64{0, 0, 0, 0.01}},
		{"persistent", ShockSpec{Kind: ShockKindPersistent, Size: 0.02, StartPeriod: 1, Duration: 2}, 5, []float64{0, 0.02, 0.02, 0, 0}},
		{"persistent clipped", ShockSpec{Kind: ShockKindPersistent, Size: 0.02, StartPeriod: 3, Duration: 10}, 5, []float64{0, 0, 0, 0.02, 0.02}},
		{"persistent huge duration clipped", ShockSpec{Kind: ShockKindPersistent, Size: 0.01, StartPeriod: 1, Duration: math.MaxInt}, 4, []float64{0, 0.01, 0.01, 0.01}},
		{"persistent zero duration", ShockSpec{Kind: ShockKindPersistent, Size: 0.02, StartPeriod: 0, Duration: 0}, 3, []float64{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildShockSeries(tt.spec, tt.horizon)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Values)
			assert.Len(t, got.Values, tt.horizon)
		})
	}
}

func TestBuildShockSeries_Defaults(t *testing.T) {
	got, err := BuildShockSeries(ShockSpec{Kind: ShockKindSingle, Size: 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, ShockLocationPhillips, got.Location)
	assert.Equal(t, ShockSignAdd, got.Sign)
}

func TestBuildShockSeries_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		spec    ShockSpec
		horizon int
	}{
		{"zero horizon", ShockSpec{}, 0},
		{"negative start", ShockSpec{Kind: ShockKindSingle, StartPeriod: -1}, 3},
		{"start at horizon", ShockSpec{Kind: ShockKindSingle, StartPeriod: 3}, 3},
		{"negative duration", ShockSpec{Kind: ShockKindPersistent, StartPeriod: 0, Duration: -1}, 3},
		{"unknown kind", ShockSpec{Kind: "RAMP"}, 3},
		{"unknown location", ShockSpec{Kind: ShockKindNone, Location: "TAYLOR"}, 3},
		{"unknown sign", ShockSpec{Kind: ShockKindNone, Sign: "FLIP"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildShockSeries(tt.spec, tt.horizon)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestSimulationRun_Lifecycle(t *testing.T) {
	run := NewSimulationRun("baseline", "abc", exampleParams(), exampleInit(), ShockSpec{}, 3)
	assert.NotEmpty(t, run.RunID)

	run.Complete(&PathResult{Pi: []float64{1}})
	assert.Equal(t, RunStatusCompleted, run.Status)

	run.Fail(ErrNumericDegeneracy)
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Nil(t, run.Result)
	assert.Equal(t, ErrNumericDegeneracy.Error(), run.Error)
}
