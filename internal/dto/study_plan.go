package dto

import (
	"time"

	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/planner"
)

// GenerateStudyPlanRequest runs the whole pipeline and stores the result as a proposal.
type GenerateStudyPlanRequest struct {
	Title      string               `json:"title" validate:"omitempty,max=200"`
	Subjects   []SubjectRequest     `json:"subjects" validate:"required,min=1,dive"`
	Params     *WeightParamsRequest `json:"params"`
	TotalHours *float64             `json:"totalHours" validate:"omitempty,min=0,max=100000"`
	CalendarRequest
	BlockRequest
}

// GenerateStudyPlanResponse is a stored proposal.
type GenerateStudyPlanResponse struct {
	ProposalID string               `json:"proposalId"`
	Title      string               `json:"title"`
	ExpiresAt  time.Time            `json:"expiresAt"`
	StartDate  string               `json:"startDate"`
	EndDate    string               `json:"endDate"`
	DaysLeft   int                  `json:"daysLeft"`
	TotalHours float64              `json:"totalHours"`
	BlockHours float64              `json:"blockHours"`
	StepHours  float64              `json:"stepHours"`
	Policy     string               `json:"policy"`
	Params     planner.WeightParams `json:"params"`
	Subjects   []planner.Subject    `json:"subjects"`
	Schedule   ScheduleResponse     `json:"schedule"`
	Warnings   []Warning            `json:"-"`
}

// SaveStudyPlanRequest persists a proposal as a new plan version.
type SaveStudyPlanRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Title      string `json:"title" validate:"omitempty,max=200"`
	Activate   bool   `json:"activate"`
}

// StudyPlanQuery filters saved plans.
type StudyPlanQuery struct {
	Owner    string `form:"owner"`
	Title    string `form:"title"`
	Status   string `form:"status" validate:"omitempty,oneof=DRAFT ACTIVE ARCHIVED"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// StudyPlanDetail bundles a saved plan with its rows and derived views.
type StudyPlanDetail struct {
	Plan        models.StudyPlan          `json:"plan"`
	Subjects    []models.StudyPlanSubject `json:"subjects"`
	Assignments []AssignmentView          `json:"assignments"`
	Daily       []DailyTotalView          `json:"daily"`
	Pivot       planner.PivotTable        `json:"pivot"`
}

// CreateExportRequest asks for an asynchronous export of a saved plan.
type CreateExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv ics pdf"`
}
