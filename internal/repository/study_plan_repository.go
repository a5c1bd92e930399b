package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/study-planner-api/internal/models"
)

const studyPlanColumns = `id, owner, title, version, status, start_date, end_date, policy, total_hours, block_hours, meta, created_at, updated_at`

// StudyPlanRepository persists versioned study plans.
type StudyPlanRepository struct {
	db *sqlx.DB
}

// NewStudyPlanRepository constructs repository.
func NewStudyPlanRepository(db *sqlx.DB) *StudyPlanRepository {
	return &StudyPlanRepository{db: db}
}

func (r *StudyPlanRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a plan assigning the next version for the owner-title pair.
func (r *StudyPlanRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.StudyPlan) error {
	if plan == nil {
		return fmt.Errorf("study plan payload is nil")
	}
	if plan.Owner == "" || plan.Title == "" {
		return fmt.Errorf("owner and title are required")
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.Status == "" {
		plan.Status = models.StudyPlanStatusDraft
	}
	if len(plan.Meta) == 0 {
		plan.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM study_plans WHERE owner = $1 AND title = $2`
	if err := sqlx.GetContext(ctx, target, &plan.Version, nextVersionQuery, plan.Owner, plan.Title); err != nil {
		return fmt.Errorf("compute next study plan version: %w", err)
	}

	const insertQuery = `
INSERT INTO study_plans (id, owner, title, version, status, start_date, end_date, policy, total_hours, block_hours, meta, created_at, updated_at)
VALUES (:id, :owner, :title, :version, :status, :start_date, :end_date, :policy, :total_hours, :block_hours, :meta, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, plan); err != nil {
		return fmt.Errorf("insert study plan: %w", err)
	}
	return nil
}

// List returns plans matching the filter, newest first, with the total match count.
func (r *StudyPlanRepository) List(ctx context.Context, filter models.StudyPlanFilter) ([]models.StudyPlan, int, error) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)
	if filter.Owner != "" {
		args = append(args, filter.Owner)
		conditions = append(conditions, fmt.Sprintf("owner = $%d", len(args)))
	}
	if filter.Title != "" {
		args = append(args, "%"+filter.Title+"%")
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM study_plans"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count study plans: %w", err)
	}

	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf("SELECT %s FROM study_plans%s ORDER BY created_at DESC, version DESC LIMIT $%d OFFSET $%d",
		studyPlanColumns, where, len(args)-1, len(args))

	plans := make([]models.StudyPlan, 0)
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list study plans: %w", err)
	}
	return plans, total, nil
}

// FindByID loads a plan by its identifier.
func (r *StudyPlanRepository) FindByID(ctx context.Context, id string) (*models.StudyPlan, error) {
	query := `SELECT ` + studyPlanColumns + ` FROM study_plans WHERE id = $1`
	var plan models.StudyPlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Delete removes a stored plan; subject and assignment rows cascade.
func (r *StudyPlanRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM study_plans WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete study plan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("study plan rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus sets the status of a plan.
func (r *StudyPlanRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.StudyPlanStatus) error {
	const query = `UPDATE study_plans SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update study plan status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("study plan status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ArchiveActive archives the other active versions of an owner-title pair.
func (r *StudyPlanRepository) ArchiveActive(ctx context.Context, exec sqlx.ExtContext, owner, title, keepID string) error {
	const query = `UPDATE study_plans SET status = $1, updated_at = $2 WHERE owner = $3 AND title = $4 AND status = $5 AND id <> $6`
	if _, err := r.exec(exec).ExecContext(ctx, query, models.StudyPlanStatusArchived, time.Now().UTC(), owner, title, models.StudyPlanStatusActive, keepID); err != nil {
		return fmt.Errorf("archive active study plans: %w", err)
	}
	return nil
}
