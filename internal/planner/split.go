package planner

import (
	"math"
	"sort"
)

// maxCorrectionIterations bounds the remainder correction loop in SplitHours.
const maxCorrectionIterations = 10000

// SplitHours divides total across len(weights) subjects proportionally to weight.
//
// Each share is rounded half-to-even to a multiple of step. The rounding error is then
// worked off one step at a time against subjects in weight-descending order (ties keep
// input order), skipping subjects that would drop below zero. The returned hours sum to
// total within one step and are never negative.
func SplitHours(total float64, weights []float64, step float64) ([]float64, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, ErrInvalidStep
	}
	if total < 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, invalid("totalHours", "must be a non-negative number")
	}
	if len(weights) == 0 {
		return []float64{}, nil
	}

	w := normalizeWeights(weights)
	sum := 0.0
	for _, v := range w {
		sum += v
	}

	units := make([]int64, len(w))
	var allocated int64
	for i, v := range w {
		share := total * v / sum
		units[i] = int64(math.RoundToEven(share / step))
		allocated += units[i]
	}

	diff := int64(math.RoundToEven((total - float64(allocated)*step) / step))
	order := weightOrder(w)
	for i := 0; diff != 0 && i < maxCorrectionIterations; i++ {
		idx := order[i%len(order)]
		if diff > 0 {
			units[idx]++
			diff--
			continue
		}
		if units[idx] > 0 {
			units[idx]--
			diff++
		}
	}

	hours := make([]float64, len(units))
	for i, u := range units {
		hours[i] = RoundHours(float64(u) * step)
	}
	return hours, nil
}

// normalizeWeights drops negative or non-finite weights to zero and substitutes uniform
// weights when nothing positive remains.
func normalizeWeights(weights []float64) []float64 {
	out := make([]float64, len(weights))
	positive := false
	for i, v := range weights {
		if v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v) {
			out[i] = v
			positive = true
		}
	}
	if positive {
		return out
	}
	for i := range out {
		out[i] = 1
	}
	return out
}

func weightOrder(weights []float64) []int {
	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return weights[order[a]] > weights[order[b]]
	})
	return order
}
