package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// StudyPlanStatus represents lifecycle phases for saved study plans.
type StudyPlanStatus string

const (
	StudyPlanStatusDraft    StudyPlanStatus = "DRAFT"
	StudyPlanStatusActive   StudyPlanStatus = "ACTIVE"
	StudyPlanStatusArchived StudyPlanStatus = "ARCHIVED"
)

// StudyPlan is a versioned, persisted allocation for an owner and title.
type StudyPlan struct {
	ID         string          `db:"id" json:"id"`
	Owner      string          `db:"owner" json:"owner"`
	Title      string          `db:"title" json:"title"`
	Version    int             `db:"version" json:"version"`
	Status     StudyPlanStatus `db:"status" json:"status"`
	StartDate  time.Time       `db:"start_date" json:"start_date"`
	EndDate    time.Time       `db:"end_date" json:"end_date"`
	Policy     string          `db:"policy" json:"policy"`
	TotalHours float64         `db:"total_hours" json:"total_hours"`
	BlockHours float64         `db:"block_hours" json:"block_hours"`
	Meta       types.JSONText  `db:"meta" json:"meta"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// StudyPlanSubject stores the rating, weight and budget of one subject in a plan.
type StudyPlanSubject struct {
	ID         string  `db:"id" json:"id"`
	PlanID     string  `db:"plan_id" json:"plan_id"`
	Name       string  `db:"name" json:"name"`
	Difficulty int     `db:"difficulty" json:"difficulty"`
	Confidence int     `db:"confidence" json:"confidence"`
	Weight     float64 `db:"weight" json:"weight"`
	Budget     float64 `db:"budget" json:"budget"`
	Position   int     `db:"position" json:"position"`
}

// StudyPlanAssignment is one persisted study block.
type StudyPlanAssignment struct {
	ID       string    `db:"id" json:"id"`
	PlanID   string    `db:"plan_id" json:"plan_id"`
	Date     time.Time `db:"study_date" json:"date"`
	Subject  string    `db:"subject" json:"subject"`
	Hours    float64   `db:"hours" json:"hours"`
	Position int       `db:"position" json:"position"`
}

// StudyPlanFilter narrows plan listings.
type StudyPlanFilter struct {
	Owner    string
	Title    string
	Status   StudyPlanStatus
	Page     int
	PageSize int
}
