package planner

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func TestSplitHoursMatchesWeightedScenario(t *testing.T) {
	p := DefaultWeightParams()
	weights := []float64{Weight(5, 1, p), Weight(1, 5, p)}

	hours, err := SplitHours(20, weights, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{16.5, 3.5}, hours)
}

func TestSplitHoursSumsWithinOneStep(t *testing.T) {
	cases := []struct {
		name    string
		total   float64
		weights []float64
		step    float64
	}{
		{name: "thirds", total: 10, weights: []float64{1, 1, 1}, step: 0.5},
		{name: "uneven", total: 37, weights: []float64{6.2, 2.2, 10.2, 4.2}, step: 0.5},
		{name: "quarter step", total: 13.75, weights: []float64{3, 1, 2}, step: 0.25},
		{name: "tiny total", total: 0.5, weights: []float64{1, 1, 1, 1}, step: 0.5},
		{name: "whole hours", total: 41, weights: []float64{9, 2.5, 0.2}, step: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hours, err := SplitHours(tc.total, tc.weights, tc.step)
			require.NoError(t, err)
			require.Len(t, hours, len(tc.weights))
			assert.LessOrEqual(t, math.Abs(sum(hours)-tc.total), tc.step+1e-9)
			for _, h := range hours {
				assert.GreaterOrEqual(t, h, 0.0)
				units := h / tc.step
				assert.InDelta(t, math.Round(units), units, 1e-6)
			}
		})
	}
}

func TestSplitHoursEqualWeightsGiveEqualShares(t *testing.T) {
	hours, err := SplitHours(10, []float64{2, 2, 2, 2}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 2.5, 2.5, 2.5}, hours)
}

func TestSplitHoursCorrectionFavoursHeavierSubjects(t *testing.T) {
	hours, err := SplitHours(10, []float64{1, 1, 1}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 10.0, sum(hours))
	// ties keep input order, so the first subject gives back the extra step
	assert.Equal(t, []float64{3, 3.5, 3.5}, hours)
}

func TestSplitHoursZeroWeightsFallBackToUniform(t *testing.T) {
	hours, err := SplitHours(6, []float64{0, 0, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2}, hours)
}

func TestSplitHoursEmptyWeights(t *testing.T) {
	hours, err := SplitHours(10, nil, 0.5)
	require.NoError(t, err)
	assert.Empty(t, hours)
}

func TestSplitHoursRejectsBadInput(t *testing.T) {
	_, err := SplitHours(10, []float64{1}, 0)
	assert.True(t, errors.Is(err, ErrInvalidStep))
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = SplitHours(-1, []float64{1}, 0.5)
	assert.True(t, errors.Is(err, ErrValidation))
}
