package planner

import "math"

const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 3
)

// WeightParams tunes how ratings translate into a subject weight.
type WeightParams struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Floor float64 `json:"floor"`
}

// DefaultWeightParams mirrors the planner defaults used when a request omits coefficients.
func DefaultWeightParams() WeightParams {
	return WeightParams{Alpha: 1, Beta: 1, Floor: 0.2}
}

// Weight scores a subject: harder subjects and lower confidence both raise the weight.
// Ratings must already be within [MinRating, MaxRating].
func Weight(difficulty, confidence int, p WeightParams) float64 {
	raw := p.Alpha*float64(difficulty) + p.Beta*float64(MaxRating+1-confidence)
	return math.Max(raw, 0) + p.Floor
}

// NormalizeRating resolves a missing rating to DefaultRating and clamps the rest.
func NormalizeRating(v *int) int {
	if v == nil {
		return DefaultRating
	}
	return ClampRating(*v)
}

// ClampRating bounds v to [MinRating, MaxRating].
func ClampRating(v int) int {
	if v < MinRating {
		return MinRating
	}
	if v > MaxRating {
		return MaxRating
	}
	return v
}

// ComputeWeights returns one weight per subject, clamping ratings first.
func ComputeWeights(subjects []Subject, p WeightParams) []float64 {
	weights := make([]float64, len(subjects))
	for i, s := range subjects {
		weights[i] = Weight(ClampRating(s.Difficulty), ClampRating(s.Confidence), p)
	}
	return weights
}
