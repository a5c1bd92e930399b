package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/study-planner-api/internal/models"
)

// StudyPlanItemRepository manages the subject and assignment rows of study plans.
type StudyPlanItemRepository struct {
	db *sqlx.DB
}

// NewStudyPlanItemRepository builds repository.
func NewStudyPlanItemRepository(db *sqlx.DB) *StudyPlanItemRepository {
	return &StudyPlanItemRepository{db: db}
}

func (r *StudyPlanItemRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertSubjects stores subject rows for a plan.
func (r *StudyPlanItemRepository) InsertSubjects(ctx context.Context, exec sqlx.ExtContext, subjects []models.StudyPlanSubject) error {
	if len(subjects) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `
INSERT INTO study_plan_subjects (id, plan_id, name, difficulty, confidence, weight, budget, position)
VALUES (:id, :plan_id, :name, :difficulty, :confidence, :weight, :budget, :position)`

	for i := range subjects {
		subject := &subjects[i]
		if subject.ID == "" {
			subject.ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, subject); err != nil {
			return fmt.Errorf("insert study plan subject: %w", err)
		}
	}
	return nil
}

// InsertAssignments stores assignment rows for a plan.
func (r *StudyPlanItemRepository) InsertAssignments(ctx context.Context, exec sqlx.ExtContext, assignments []models.StudyPlanAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `
INSERT INTO study_plan_assignments (id, plan_id, study_date, subject, hours, position)
VALUES (:id, :plan_id, :study_date, :subject, :hours, :position)`

	for i := range assignments {
		assignment := &assignments[i]
		if assignment.ID == "" {
			assignment.ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, assignment); err != nil {
			return fmt.Errorf("insert study plan assignment: %w", err)
		}
	}
	return nil
}

// ListSubjects returns the subjects of a plan in input order.
func (r *StudyPlanItemRepository) ListSubjects(ctx context.Context, planID string) ([]models.StudyPlanSubject, error) {
	const query = `SELECT id, plan_id, name, difficulty, confidence, weight, budget, position
FROM study_plan_subjects WHERE plan_id = $1 ORDER BY position ASC`
	subjects := make([]models.StudyPlanSubject, 0)
	if err := r.db.SelectContext(ctx, &subjects, query, planID); err != nil {
		return nil, fmt.Errorf("list study plan subjects: %w", err)
	}
	return subjects, nil
}

// ListAssignments returns the assignments of a plan in allocation order.
func (r *StudyPlanItemRepository) ListAssignments(ctx context.Context, planID string) ([]models.StudyPlanAssignment, error) {
	const query = `SELECT id, plan_id, study_date, subject, hours, position
FROM study_plan_assignments WHERE plan_id = $1 ORDER BY position ASC`
	assignments := make([]models.StudyPlanAssignment, 0)
	if err := r.db.SelectContext(ctx, &assignments, query, planID); err != nil {
		return nil, fmt.Errorf("list study plan assignments: %w", err)
	}
	return assignments, nil
}
