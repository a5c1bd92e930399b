package planner

import (
	"math"
	"strings"
	"time"
)

// ScheduleInput carries everything BuildSchedule needs once budgets are known.
type ScheduleInput struct {
	Subjects     []SubjectBudget
	Start        time.Time
	End          time.Time
	WeekdayHours float64
	WeekendHours float64
	Excluded     []time.Time
	BlockHours   float64
	StepHours    float64
	Policy       Policy
}

// SubjectInput is a raw subject row; missing ratings default to DefaultRating.
type SubjectInput struct {
	Name       string
	Difficulty *int
	Confidence *int
}

// PlanInput drives the whole pipeline from ratings to assignments.
type PlanInput struct {
	Subjects     []SubjectInput
	Weights      WeightParams
	TotalHours   float64
	Start        time.Time
	End          time.Time
	WeekdayHours float64
	WeekendHours float64
	Excluded     []time.Time
	BlockHours   float64
	StepHours    float64
	Policy       Policy
}

// Plan is the pipeline output: rated subjects with budgets, the calendar and the allocation.
type Plan struct {
	Subjects []Subject     `json:"subjects"`
	Calendar []DayCapacity `json:"calendar"`
	Result   Result        `json:"result"`
	DaysLeft int           `json:"daysLeft"`
}

// BuildSchedule validates the window and places the given budgets on the calendar.
func BuildSchedule(in ScheduleInput) (Result, error) {
	names := make([]string, len(in.Subjects))
	for i, s := range in.Subjects {
		names[i] = s.Name
		if s.Hours < 0 || math.IsNaN(s.Hours) {
			return Result{}, invalid("subjects", "budget for %q must be non-negative", s.Name)
		}
	}
	if err := validateSubjectNames(names); err != nil {
		return Result{}, err
	}
	if err := validateWindow(in.Start, in.End, in.WeekdayHours, in.WeekendHours); err != nil {
		return Result{}, err
	}
	if in.BlockHours <= 0 {
		return Result{}, invalid("blockHours", "must be positive")
	}
	if in.StepHours <= 0 {
		return Result{}, invalid("stepHours", "must be positive")
	}

	days, err := BuildCalendar(in.Start, in.End, in.WeekdayHours, in.WeekendHours, in.Excluded)
	if err != nil {
		return Result{}, err
	}
	return Allocate(in.Subjects, days, in.BlockHours, in.StepHours, in.Policy)
}

// Generate rates subjects, splits TotalHours between them and builds the schedule.
func Generate(in PlanInput) (Plan, error) {
	names := make([]string, len(in.Subjects))
	for i, s := range in.Subjects {
		names[i] = strings.TrimSpace(s.Name)
	}
	if err := validateSubjectNames(names); err != nil {
		return Plan{}, err
	}
	if in.Weights.Alpha < 0 || in.Weights.Beta < 0 || in.Weights.Floor < 0 {
		return Plan{}, invalid("weights", "alpha, beta and floor must be non-negative")
	}
	if in.TotalHours < 0 || math.IsNaN(in.TotalHours) {
		return Plan{}, invalid("totalHours", "must be non-negative")
	}
	if err := validateWindow(in.Start, in.End, in.WeekdayHours, in.WeekendHours); err != nil {
		return Plan{}, err
	}

	subjects := make([]Subject, len(in.Subjects))
	for i, s := range in.Subjects {
		subjects[i] = Subject{
			Name:       names[i],
			Difficulty: NormalizeRating(s.Difficulty),
			Confidence: NormalizeRating(s.Confidence),
		}
	}
	weights := ComputeWeights(subjects, in.Weights)
	hours, err := SplitHours(in.TotalHours, weights, in.StepHours)
	if err != nil {
		return Plan{}, err
	}

	budgets := make([]SubjectBudget, len(subjects))
	for i := range subjects {
		subjects[i].Weight = RoundHours(weights[i])
		subjects[i].Budget = hours[i]
		budgets[i] = SubjectBudget{Name: subjects[i].Name, Hours: hours[i]}
	}

	calendar, err := BuildCalendar(in.Start, in.End, in.WeekdayHours, in.WeekendHours, in.Excluded)
	if err != nil {
		return Plan{}, err
	}
	if in.BlockHours <= 0 {
		return Plan{}, invalid("blockHours", "must be positive")
	}
	result, err := Allocate(budgets, calendar, in.BlockHours, in.StepHours, in.Policy)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Subjects: subjects,
		Calendar: calendar,
		Result:   result,
		DaysLeft: DaysLeft(in.Start, in.End),
	}, nil
}

func validateSubjectNames(names []string) error {
	if len(names) == 0 {
		return invalid("subjects", "at least one subject is required")
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return invalid("subjects", "subject name must not be blank")
		}
		if _, dup := seen[name]; dup {
			return invalid("subjects", "duplicate subject %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func validateWindow(start, end time.Time, weekdayHours, weekendHours float64) error {
	if start.IsZero() || end.IsZero() {
		return invalid("dates", "start and end dates are required")
	}
	if !Day(end).After(Day(start)) {
		return invalid("endDate", "deadline must be after the start date")
	}
	if weekdayHours < 0 || weekendHours < 0 {
		return invalid("capacity", "weekday and weekend hours must be non-negative")
	}
	return nil
}
