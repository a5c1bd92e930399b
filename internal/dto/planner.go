package dto

import "github.com/noah-isme/study-planner-api/internal/planner"

// SubjectRequest is a subject row with optional 1-5 ratings; out of range ratings are clamped.
type SubjectRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Difficulty *int   `json:"difficulty"`
	Confidence *int   `json:"confidence"`
}

// WeightParamsRequest overrides the configured weight coefficients.
type WeightParamsRequest struct {
	Alpha *float64 `json:"alpha" validate:"omitempty,min=0,max=10"`
	Beta  *float64 `json:"beta" validate:"omitempty,min=0,max=10"`
	Floor *float64 `json:"floor" validate:"omitempty,min=0,max=10"`
}

// ComputeWeightsRequest scores subjects.
type ComputeWeightsRequest struct {
	Subjects []SubjectRequest    `json:"subjects" validate:"required,min=1,dive"`
	Params   *WeightParamsRequest `json:"params"`
}

// ComputeWeightsResponse returns normalised subjects with their weights.
type ComputeWeightsResponse struct {
	Subjects []planner.Subject    `json:"subjects"`
	Params   planner.WeightParams `json:"params"`
}

// SplitHoursRequest divides a total across weights.
type SplitHoursRequest struct {
	TotalHours float64   `json:"totalHours" validate:"min=0,max=100000"`
	Weights    []float64 `json:"weights" validate:"required,min=1"`
	StepHours  *float64  `json:"stepHours" validate:"omitempty,min=0.25,max=24"`
}

// SplitHoursResponse lists the hours per weight, in input order.
type SplitHoursResponse struct {
	Hours     []float64 `json:"hours"`
	Total     float64   `json:"total"`
	StepHours float64   `json:"stepHours"`
}

// CalendarRequest is the date window and the per-day capacity constants.
type CalendarRequest struct {
	StartDate     string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate       string   `json:"endDate" validate:"required,datetime=2006-01-02"`
	WeekdayHours  *float64 `json:"weekdayHours" validate:"omitempty,min=0,max=24"`
	WeekendHours  *float64 `json:"weekendHours" validate:"omitempty,min=0,max=24"`
	ExcludedDates []string `json:"excludedDates" validate:"omitempty,dive,datetime=2006-01-02"`
}

// BlockRequest controls block sizing and subject selection.
type BlockRequest struct {
	BlockHours *float64 `json:"blockHours" validate:"omitempty,min=0.25,max=24"`
	StepHours  *float64 `json:"stepHours" validate:"omitempty,min=0.25,max=24"`
	Policy     string   `json:"policy" validate:"omitempty,oneof=proportional round_robin round-robin"`
}

// BudgetRequest is a subject with a precomputed hour budget.
type BudgetRequest struct {
	Name  string  `json:"name" validate:"required,max=120"`
	Hours float64 `json:"hours" validate:"min=0"`
}

// BuildScheduleRequest places explicit budgets onto the calendar.
type BuildScheduleRequest struct {
	Subjects []BudgetRequest `json:"subjects" validate:"required,min=1,dive"`
	CalendarRequest
	BlockRequest
}

// AssignmentView is an assignment with a plain date.
type AssignmentView struct {
	Date    string  `json:"date"`
	Subject string  `json:"subject"`
	Hours   float64 `json:"hours"`
}

// DayView reports a day's capacity usage.
type DayView struct {
	Date     string  `json:"date"`
	Capacity float64 `json:"capacity"`
	Assigned float64 `json:"assigned"`
	Unused   float64 `json:"unused"`
}

// ScheduleResponse is the allocator output shaped for clients.
type ScheduleResponse struct {
	Assignments []AssignmentView   `json:"assignments"`
	Days        []DayView          `json:"days"`
	Remaining   map[string]float64 `json:"remaining"`
	Requested   float64            `json:"requested"`
	Assigned    float64            `json:"assigned"`
	Shortfall   float64            `json:"shortfall"`
	Pivot       planner.PivotTable `json:"pivot"`
}

// Warning flags a non-fatal condition, reported under meta.warnings.
type Warning struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Hours   float64 `json:"hours,omitempty"`
}

// ScheduleResult pairs the schedule with its warnings.
type ScheduleResult struct {
	Schedule ScheduleResponse
	Warnings []Warning
}

// DailyTotalView is the hours assigned on one date.
type DailyTotalView struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}
