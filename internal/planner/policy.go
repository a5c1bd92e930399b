package planner

import "strings"

// Policy picks which subject receives the next block of a day.
type Policy string

const (
	// PolicyProportional serves the subject with the largest remaining budget.
	PolicyProportional Policy = "proportional"
	// PolicyRoundRobin cycles through subjects one block at a time.
	PolicyRoundRobin Policy = "round_robin"
)

// ParsePolicy accepts the canonical names plus "round-robin"; empty means proportional.
func ParsePolicy(raw string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(PolicyProportional):
		return PolicyProportional, nil
	case string(PolicyRoundRobin), "round-robin", "roundrobin":
		return PolicyRoundRobin, nil
	default:
		return "", invalid("policy", "unknown selection policy %q", raw)
	}
}

// selector chooses the next subject index among those with remaining budget.
type selector interface {
	next(remaining []float64) (int, bool)
}

func newSelector(p Policy, n int) (selector, error) {
	switch p {
	case PolicyProportional, "":
		return proportionalSelector{}, nil
	case PolicyRoundRobin:
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		return &roundRobinSelector{order: order}, nil
	default:
		return nil, invalid("policy", "unknown selection policy %q", string(p))
	}
}

type proportionalSelector struct{}

func (proportionalSelector) next(remaining []float64) (int, bool) {
	best := -1
	for i, r := range remaining {
		if r <= epsilon {
			continue
		}
		// strict comparison keeps the earliest subject on ties
		if best < 0 || r > remaining[best]+epsilon {
			best = i
		}
	}
	return best, best >= 0
}

type roundRobinSelector struct {
	order []int
}

func (s *roundRobinSelector) next(remaining []float64) (int, bool) {
	for pos, idx := range s.order {
		if remaining[idx] <= epsilon {
			continue
		}
		rotated := make([]int, 0, len(s.order))
		rotated = append(rotated, s.order[:pos]...)
		rotated = append(rotated, s.order[pos+1:]...)
		s.order = append(rotated, idx)
		return idx, true
	}
	return -1, false
}
