package planner

import "math"

// Allocate fills each day, in order, with blocks drawn from the subject budgets.
//
// A day keeps taking blocks while its remaining capacity is at least blockSize and some
// subject still has budget. The subject is chosen by policy; the block is
// min(blockSize, subject remaining, day remaining) rounded to step without exceeding any
// of the three. Budgets left over once the window is exhausted are reported in
// Result.Remaining.
func Allocate(budgets []SubjectBudget, days []DayCapacity, blockSize, step float64, policy Policy) (Result, error) {
	if blockSize <= 0 || step <= 0 || math.IsNaN(blockSize) || math.IsNaN(step) {
		return Result{}, ErrInvalidStep
	}
	sel, err := newSelector(policy, len(budgets))
	if err != nil {
		return Result{}, err
	}

	remaining := make([]float64, len(budgets))
	requested := 0.0
	for i, b := range budgets {
		remaining[i] = RoundHours(math.Max(b.Hours, 0))
		requested += remaining[i]
	}

	result := Result{
		Assignments: make([]Assignment, 0),
		Days:        make([]DaySummary, 0, len(days)),
		Requested:   RoundHours(requested),
	}

	assignedTotal := 0.0
	for _, day := range days {
		capacity := math.Max(day.Hours, 0)
		left := capacity
		assigned := 0.0
		for left+epsilon >= blockSize && hasBudget(remaining) {
			idx, ok := sel.next(remaining)
			if !ok {
				break
			}
			block, ok := nextBlock(blockSize, remaining[idx], left, step)
			if !ok {
				break
			}
			result.Assignments = append(result.Assignments, Assignment{
				Date:    day.Date,
				Subject: budgets[idx].Name,
				Hours:   block,
			})
			remaining[idx] = RoundHours(remaining[idx] - block)
			left = RoundHours(left - block)
			assigned += block
		}
		result.Days = append(result.Days, DaySummary{
			Date:     day.Date,
			Capacity: RoundHours(capacity),
			Assigned: RoundHours(assigned),
		})
		assignedTotal += assigned
	}

	result.Assigned = RoundHours(assignedTotal)
	result.Remaining = make(map[string]float64, len(budgets))
	for i, b := range budgets {
		result.Remaining[b.Name] = math.Max(remaining[i], 0)
	}
	return result, nil
}

// nextBlock sizes one block. When rounding leaves nothing but the subject's whole
// remainder fits, that remainder becomes the final truncated block.
func nextBlock(blockSize, remaining, capacity, step float64) (float64, bool) {
	raw := math.Min(blockSize, math.Min(remaining, capacity))
	block := math.RoundToEven(raw/step) * step
	if block > raw+epsilon {
		block = math.Floor(raw/step+epsilon) * step
	}
	block = RoundHours(block)
	if block > epsilon {
		return block, true
	}
	if raw > epsilon && math.Abs(raw-remaining) <= epsilon {
		return RoundHours(raw), true
	}
	return 0, false
}

func hasBudget(remaining []float64) bool {
	for _, r := range remaining {
		if r > epsilon {
			return true
		}
	}
	return false
}

// AssignedBySubject sums assignment hours per subject.
func AssignedBySubject(assignments []Assignment) map[string]float64 {
	out := make(map[string]float64)
	for _, a := range assignments {
		out[a.Subject] = RoundHours(out[a.Subject] + a.Hours)
	}
	return out
}
