package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planInput(t *testing.T) PlanInput {
	return PlanInput{
		Subjects: []SubjectInput{
			{Name: "Math", Difficulty: intPtr(5), Confidence: intPtr(1)},
			{Name: "History", Difficulty: intPtr(1), Confidence: intPtr(5)},
		},
		Weights:      DefaultWeightParams(),
		TotalHours:   20,
		Start:        date(t, "2024-06-03"),
		End:          date(t, "2024-06-16"),
		WeekdayHours: 2,
		WeekendHours: 4,
		BlockHours:   1,
		StepHours:    0.5,
		Policy:       PolicyProportional,
	}
}

func TestGenerateRunsFullPipeline(t *testing.T) {
	plan, err := Generate(planInput(t))
	require.NoError(t, err)

	require.Len(t, plan.Subjects, 2)
	assert.Equal(t, 16.5, plan.Subjects[0].Budget)
	assert.Equal(t, 3.5, plan.Subjects[1].Budget)
	assert.InDelta(t, 10.2, plan.Subjects[0].Weight, 1e-9)
	assert.Len(t, plan.Calendar, 14)
	assert.Equal(t, 13, plan.DaysLeft)
	assert.Equal(t, 20.0, plan.Result.Assigned)
	assert.False(t, plan.Result.Insufficient())

	assigned := AssignedBySubject(plan.Result.Assignments)
	assert.Equal(t, 16.5, assigned["Math"])
	assert.Equal(t, 3.5, assigned["History"])
}

func TestGenerateDefaultsMissingRatings(t *testing.T) {
	in := planInput(t)
	in.Subjects = []SubjectInput{{Name: "Math"}, {Name: "Art", Difficulty: intPtr(3), Confidence: intPtr(3)}}

	plan, err := Generate(in)
	require.NoError(t, err)
	assert.Equal(t, DefaultRating, plan.Subjects[0].Difficulty)
	assert.Equal(t, plan.Subjects[1].Budget, plan.Subjects[0].Budget)
}

func TestGenerateReportsShortfall(t *testing.T) {
	in := planInput(t)
	in.TotalHours = 100

	plan, err := Generate(in)
	require.NoError(t, err)
	assert.True(t, plan.Result.Insufficient())
	assert.Equal(t, 100.0, plan.Result.Requested)
	assert.InDelta(t, 100-plan.Result.Assigned, plan.Result.Shortfall(), 1e-9)
}

func TestGenerateValidation(t *testing.T) {
	cases := map[string]func(*PlanInput){
		"no subjects":       func(in *PlanInput) { in.Subjects = nil },
		"blank name":        func(in *PlanInput) { in.Subjects[0].Name = "  " },
		"duplicate name":    func(in *PlanInput) { in.Subjects[1].Name = "Math" },
		"deadline on start": func(in *PlanInput) { in.End = in.Start },
		"deadline before":   func(in *PlanInput) { in.End = in.Start.AddDate(0, 0, -2) },
		"negative total":    func(in *PlanInput) { in.TotalHours = -1 },
		"negative hours":    func(in *PlanInput) { in.WeekdayHours = -1 },
		"zero step":         func(in *PlanInput) { in.StepHours = 0 },
		"zero block":        func(in *PlanInput) { in.BlockHours = 0 },
		"negative alpha":    func(in *PlanInput) { in.Weights.Alpha = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := planInput(t)
			mutate(&in)
			_, err := Generate(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestBuildScheduleWithExplicitBudgets(t *testing.T) {
	result, err := BuildSchedule(ScheduleInput{
		Subjects:     []SubjectBudget{{Name: "Math", Hours: 5}},
		Start:        date(t, "2024-06-10"),
		End:          date(t, "2024-06-11"),
		WeekdayHours: 2,
		WeekendHours: 4,
		Excluded:     []time.Time{date(t, "2024-06-11")},
		BlockHours:   1,
		StepHours:    0.5,
	})
	require.NoError(t, err)
	assert.Len(t, result.Assignments, 2)
	assert.Equal(t, 3.0, result.Remaining["Math"])
}

func TestBuildScheduleRejectsNegativeBudget(t *testing.T) {
	_, err := BuildSchedule(ScheduleInput{
		Subjects:   []SubjectBudget{{Name: "Math", Hours: -1}},
		Start:      date(t, "2024-06-10"),
		End:        date(t, "2024-06-11"),
		BlockHours: 1,
		StepHours:  0.5,
	})
	assert.True(t, errors.Is(err, ErrValidation))
}
