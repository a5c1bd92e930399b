package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/planner"
	"github.com/noah-isme/study-planner-api/pkg/config"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

// WarningInsufficientCapacity flags a plan whose calendar could not absorb every budget.
const WarningInsufficientCapacity = "INSUFFICIENT_CAPACITY"

const defaultPlanOwner = "anonymous"

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type studyPlanRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.StudyPlan) error
	List(ctx context.Context, filter models.StudyPlanFilter) ([]models.StudyPlan, int, error)
	FindByID(ctx context.Context, id string) (*models.StudyPlan, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.StudyPlanStatus) error
	ArchiveActive(ctx context.Context, exec sqlx.ExtContext, owner, title, keepID string) error
}

type studyPlanItemRepository interface {
	InsertSubjects(ctx context.Context, exec sqlx.ExtContext, subjects []models.StudyPlanSubject) error
	InsertAssignments(ctx context.Context, exec sqlx.ExtContext, assignments []models.StudyPlanAssignment) error
	ListSubjects(ctx context.Context, planID string) ([]models.StudyPlanSubject, error)
	ListAssignments(ctx context.Context, planID string) ([]models.StudyPlanAssignment, error)
}

// StudyPlanServiceConfig carries planner defaults and proposal retention.
type StudyPlanServiceConfig struct {
	Planner     config.PlannerConfig
	ProposalTTL time.Duration
}

// StudyPlanService exposes the planner pipeline and manages proposals and saved plans.
type StudyPlanService struct {
	plans     studyPlanRepository
	items     studyPlanItemRepository
	tx        txProvider
	store     ProposalStore
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       StudyPlanServiceConfig
	now       func() time.Time
}

// NewStudyPlanService wires the planner service. Repositories and tx may be nil when
// persistence is disabled; the save and listing operations then report unavailability.
func NewStudyPlanService(
	plans studyPlanRepository,
	items studyPlanItemRepository,
	tx txProvider,
	store ProposalStore,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg StudyPlanServiceConfig,
) *StudyPlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.Planner.StepHours <= 0 {
		cfg.Planner.StepHours = planner.DefaultStepHours
	}
	if cfg.Planner.BlockHours <= 0 {
		cfg.Planner.BlockHours = planner.DefaultBlockHours
	}
	if store == nil {
		store = NewMemoryProposalStore(cfg.ProposalTTL)
	}
	return &StudyPlanService{
		plans:     plans,
		items:     items,
		tx:        tx,
		store:     store,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Weights scores subjects from their difficulty and confidence ratings.
func (s *StudyPlanService) Weights(ctx context.Context, req dto.ComputeWeightsRequest) (*dto.ComputeWeightsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weights payload")
	}
	if err := s.checkSubjectCount(len(req.Subjects)); err != nil {
		return nil, err
	}
	params := s.resolveParams(req.Params)
	subjects := make([]planner.Subject, len(req.Subjects))
	for i, subject := range req.Subjects {
		subjects[i] = planner.Subject{
			Name:       strings.TrimSpace(subject.Name),
			Difficulty: planner.NormalizeRating(subject.Difficulty),
			Confidence: planner.NormalizeRating(subject.Confidence),
		}
	}
	weights := planner.ComputeWeights(subjects, params)
	for i := range subjects {
		subjects[i].Weight = weights[i]
	}
	return &dto.ComputeWeightsResponse{Subjects: subjects, Params: params}, nil
}

// Split divides a total across weights in whole steps.
func (s *StudyPlanService) Split(ctx context.Context, req dto.SplitHoursRequest) (*dto.SplitHoursResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid split payload")
	}
	if err := s.checkSubjectCount(len(req.Weights)); err != nil {
		return nil, err
	}
	step := s.cfg.Planner.StepHours
	if req.StepHours != nil {
		step = *req.StepHours
	}
	if err := s.checkBlockSize("stepHours", step); err != nil {
		return nil, err
	}
	hours, err := planner.SplitHours(req.TotalHours, req.Weights, step)
	if err != nil {
		return nil, mapPlannerError(err)
	}
	var total float64
	for _, h := range hours {
		total += h
	}
	return &dto.SplitHoursResponse{Hours: hours, Total: planner.RoundHours(total), StepHours: step}, nil
}

// Schedule places explicit per-subject budgets onto the calendar.
func (s *StudyPlanService) Schedule(ctx context.Context, req dto.BuildScheduleRequest) (*dto.ScheduleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if err := s.checkSubjectCount(len(req.Subjects)); err != nil {
		return nil, err
	}
	window, err := s.resolveWindow(req.CalendarRequest)
	if err != nil {
		return nil, err
	}
	blocks, err := s.resolveBlocks(req.BlockRequest)
	if err != nil {
		return nil, err
	}
	budgets := make([]planner.SubjectBudget, len(req.Subjects))
	for i, subject := range req.Subjects {
		budgets[i] = planner.SubjectBudget{Name: strings.TrimSpace(subject.Name), Hours: subject.Hours}
	}

	result, err := planner.BuildSchedule(planner.ScheduleInput{
		Subjects:     budgets,
		Start:        window.start,
		End:          window.end,
		WeekdayHours: window.weekdayHours,
		WeekendHours: window.weekendHours,
		Excluded:     window.excluded,
		BlockHours:   blocks.block,
		StepHours:    blocks.step,
		Policy:       blocks.policy,
	})
	if err != nil {
		return nil, mapPlannerError(err)
	}
	return &dto.ScheduleResult{Schedule: toScheduleResponse(result), Warnings: scheduleWarnings(result)}, nil
}

// Preview runs the whole pipeline and keeps the result as a proposal for the configured TTL.
func (s *StudyPlanService) Preview(ctx context.Context, req dto.GenerateStudyPlanRequest) (*dto.GenerateStudyPlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid study plan payload")
	}
	if err := s.checkSubjectCount(len(req.Subjects)); err != nil {
		return nil, err
	}
	window, err := s.resolveWindow(req.CalendarRequest)
	if err != nil {
		return nil, err
	}
	blocks, err := s.resolveBlocks(req.BlockRequest)
	if err != nil {
		return nil, err
	}
	params := s.resolveParams(req.Params)
	total := s.cfg.Planner.TotalHours
	if req.TotalHours != nil {
		total = *req.TotalHours
	}

	subjects := make([]planner.SubjectInput, len(req.Subjects))
	for i, subject := range req.Subjects {
		subjects[i] = planner.SubjectInput{Name: subject.Name, Difficulty: subject.Difficulty, Confidence: subject.Confidence}
	}
	plan, err := planner.Generate(planner.PlanInput{
		Subjects:     subjects,
		Weights:      params,
		TotalHours:   total,
		Start:        window.start,
		End:          window.end,
		WeekdayHours: window.weekdayHours,
		WeekendHours: window.weekendHours,
		Excluded:     window.excluded,
		BlockHours:   blocks.block,
		StepHours:    blocks.step,
		Policy:       blocks.policy,
	})
	if err != nil {
		return nil, mapPlannerError(err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = fmt.Sprintf("Study plan until %s", planner.FormatDate(window.end))
	}
	proposal := StudyPlanProposal{
		ID:           uuid.NewString(),
		Title:        title,
		Params:       params,
		TotalHours:   total,
		BlockHours:   blocks.block,
		StepHours:    blocks.step,
		Policy:       blocks.policy,
		WeekdayHours: window.weekdayHours,
		WeekendHours: window.weekendHours,
		Start:        window.start,
		End:          window.end,
		Excluded:     formatDates(window.excluded),
		Plan:         plan,
		RequestedAt:  s.now().UTC(),
	}
	if err := s.store.Save(ctx, proposal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store study plan proposal")
	}
	s.metrics.RecordPlanGenerated(string(blocks.policy), plan.Result.Shortfall())
	if plan.Result.Insufficient() {
		s.logger.Sugar().Infow("study plan exceeds calendar capacity",
			"proposal_id", proposal.ID,
			"requested", plan.Result.Requested,
			"assigned", plan.Result.Assigned,
		)
	}
	return s.proposalResponse(proposal), nil
}

// Proposal returns a stored proposal.
func (s *StudyPlanService) Proposal(ctx context.Context, id string) (*dto.GenerateStudyPlanResponse, error) {
	proposal, err := s.loadProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.proposalResponse(*proposal), nil
}

// Save persists a proposal as the next version of the owner's plan with the same title.
func (s *StudyPlanService) Save(ctx context.Context, req dto.SaveStudyPlanRequest, owner string) (*models.StudyPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save study plan payload")
	}
	if err := s.requirePersistence(); err != nil {
		return nil, err
	}
	proposal, err := s.loadProposal(ctx, req.ProposalID)
	if err != nil {
		return nil, err
	}
	if owner == "" {
		owner = defaultPlanOwner
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = proposal.Title
	}

	metaBytes, marshalErr := json.Marshal(map[string]any{
		"proposalId":    proposal.ID,
		"generatedAt":   proposal.RequestedAt,
		"params":        proposal.Params,
		"stepHours":     proposal.StepHours,
		"weekdayHours":  proposal.WeekdayHours,
		"weekendHours":  proposal.WeekendHours,
		"excludedDates": proposal.Excluded,
		"requested":     proposal.Plan.Result.Requested,
		"assigned":      proposal.Plan.Result.Assigned,
		"shortfall":     proposal.Plan.Result.Shortfall(),
		"remaining":     proposal.Plan.Result.Remaining,
	})
	if marshalErr != nil {
		return nil, appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode study plan metadata")
	}

	started := time.Now()
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	record := &models.StudyPlan{
		Owner:      owner,
		Title:      title,
		Status:     models.StudyPlanStatusDraft,
		StartDate:  proposal.Start,
		EndDate:    proposal.End,
		Policy:     string(proposal.Policy),
		TotalHours: proposal.TotalHours,
		BlockHours: proposal.BlockHours,
		Meta:       types.JSONText(metaBytes),
	}
	if err = s.plans.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create study plan")
		return nil, err
	}

	subjects := make([]models.StudyPlanSubject, len(proposal.Plan.Subjects))
	for i, subject := range proposal.Plan.Subjects {
		subjects[i] = models.StudyPlanSubject{
			PlanID:     record.ID,
			Name:       subject.Name,
			Difficulty: subject.Difficulty,
			Confidence: subject.Confidence,
			Weight:     subject.Weight,
			Budget:     subject.Budget,
			Position:   i,
		}
	}
	if err = s.items.InsertSubjects(ctx, tx, subjects); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist study plan subjects")
		return nil, err
	}

	assignments := make([]models.StudyPlanAssignment, len(proposal.Plan.Result.Assignments))
	for i, assignment := range proposal.Plan.Result.Assignments {
		assignments[i] = models.StudyPlanAssignment{
			PlanID:   record.ID,
			Date:     assignment.Date,
			Subject:  assignment.Subject,
			Hours:    assignment.Hours,
			Position: i,
		}
	}
	if err = s.items.InsertAssignments(ctx, tx, assignments); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist study plan assignments")
		return nil, err
	}

	if req.Activate {
		if err = s.activateInTx(ctx, tx, record); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit study plan transaction")
		return nil, err
	}
	s.metrics.ObserveDBQuery("study_plan_save", time.Since(started))

	if delErr := s.store.Delete(ctx, proposal.ID); delErr != nil {
		s.logger.Warn("failed to drop saved proposal", zap.String("proposal_id", proposal.ID), zap.Error(delErr))
	}
	return record, nil
}

// List returns saved plans with pagination.
func (s *StudyPlanService) List(ctx context.Context, query dto.StudyPlanQuery) ([]models.StudyPlan, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid study plan query")
	}
	if err := s.requirePersistence(); err != nil {
		return nil, nil, err
	}
	page, size := query.Page, query.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	plans, total, err := s.plans.List(ctx, models.StudyPlanFilter{
		Owner:    query.Owner,
		Title:    query.Title,
		Status:   models.StudyPlanStatus(query.Status),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list study plans")
	}
	return plans, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a saved plan with its rows and derived views. A non-empty actor must own the plan.
func (s *StudyPlanService) Get(ctx context.Context, id, actor string) (*dto.StudyPlanDetail, error) {
	if err := s.requirePersistence(); err != nil {
		return nil, err
	}
	plan, err := s.findPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(plan, actor); err != nil {
		return nil, err
	}
	subjects, err := s.items.ListSubjects(ctx, plan.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plan subjects")
	}
	rows, err := s.items.ListAssignments(ctx, plan.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plan assignments")
	}
	assignments := assignmentsFromRows(rows)

	daily := planner.DailyTotals(assignments)
	dailyViews := make([]dto.DailyTotalView, len(daily))
	for i, day := range daily {
		dailyViews[i] = dto.DailyTotalView{Date: planner.FormatDate(day.Date), Hours: day.Hours}
	}
	return &dto.StudyPlanDetail{
		Plan:        *plan,
		Subjects:    subjects,
		Assignments: toAssignmentViews(planner.SortedAssignments(assignments)),
		Daily:       dailyViews,
		Pivot:       planner.Pivot(assignments),
	}, nil
}

// Delete removes a draft plan. Active and archived plans are kept as history.
func (s *StudyPlanService) Delete(ctx context.Context, id, actor string) error {
	if err := s.requirePersistence(); err != nil {
		return err
	}
	plan, err := s.findPlan(ctx, id)
	if err != nil {
		return err
	}
	if err := checkOwner(plan, actor); err != nil {
		return err
	}
	if plan.Status != models.StudyPlanStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft study plans can be deleted")
	}
	if err := s.plans.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "study plan not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete study plan")
	}
	return nil
}

// Activate marks a plan ACTIVE and archives the other active versions of the same title.
func (s *StudyPlanService) Activate(ctx context.Context, id, actor string) (*models.StudyPlan, error) {
	if err := s.requirePersistence(); err != nil {
		return nil, err
	}
	plan, err := s.findPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(plan, actor); err != nil {
		return nil, err
	}
	if plan.Status == models.StudyPlanStatusActive {
		return plan, nil
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = s.activateInTx(ctx, tx, plan); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit activation")
		return nil, err
	}
	return plan, nil
}

// ProposalDocument returns a stored proposal in exportable form.
func (s *StudyPlanService) ProposalDocument(ctx context.Context, id string) (*ScheduleDocument, error) {
	proposal, err := s.loadProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ScheduleDocument{
		Title:       proposal.Title,
		Start:       proposal.Start,
		End:         proposal.End,
		TotalHours:  proposal.TotalHours,
		Subjects:    proposal.Plan.Subjects,
		Assignments: proposal.Plan.Result.Assignments,
	}, nil
}

// PlanDocument returns a saved plan in exportable form. A non-empty actor must own the plan.
func (s *StudyPlanService) PlanDocument(ctx context.Context, planID, actor string) (*ScheduleDocument, error) {
	if err := s.requirePersistence(); err != nil {
		return nil, err
	}
	plan, err := s.findPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(plan, actor); err != nil {
		return nil, err
	}
	subjectRows, err := s.items.ListSubjects(ctx, plan.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plan subjects")
	}
	rows, err := s.items.ListAssignments(ctx, plan.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plan assignments")
	}
	subjects := make([]planner.Subject, len(subjectRows))
	for i, row := range subjectRows {
		subjects[i] = planner.Subject{
			Name:       row.Name,
			Difficulty: row.Difficulty,
			Confidence: row.Confidence,
			Weight:     row.Weight,
			Budget:     row.Budget,
		}
	}
	return &ScheduleDocument{
		Owner:       plan.Owner,
		Title:       fmt.Sprintf("%s (v%d)", plan.Title, plan.Version),
		Start:       plan.StartDate,
		End:         plan.EndDate,
		TotalHours:  plan.TotalHours,
		Subjects:    subjects,
		Assignments: assignmentsFromRows(rows),
	}, nil
}

func (s *StudyPlanService) activateInTx(ctx context.Context, tx *sqlx.Tx, plan *models.StudyPlan) error {
	if err := s.plans.ArchiveActive(ctx, tx, plan.Owner, plan.Title, plan.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive active study plans")
	}
	if err := s.plans.UpdateStatus(ctx, tx, plan.ID, models.StudyPlanStatusActive); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate study plan")
	}
	plan.Status = models.StudyPlanStatusActive
	return nil
}

func (s *StudyPlanService) loadProposal(ctx context.Context, id string) (*StudyPlanProposal, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "proposalId is required")
	}
	proposal, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plan proposal")
	}
	if !ok {
		return nil, appErrors.ErrProposalExpired
	}
	return &proposal, nil
}

func (s *StudyPlanService) findPlan(ctx context.Context, id string) (*models.StudyPlan, error) {
	plan, err := s.plans.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "study plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plan")
	}
	return plan, nil
}

func (s *StudyPlanService) requirePersistence() error {
	if s.plans == nil || s.items == nil || s.tx == nil {
		return appErrors.Clone(appErrors.ErrServiceUnavailable, "study plan persistence is disabled")
	}
	return nil
}

func (s *StudyPlanService) checkSubjectCount(n int) error {
	if limit := s.cfg.Planner.MaxSubjects; limit > 0 && n > limit {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subjects: at most %d subjects are allowed", limit))
	}
	return nil
}

func (s *StudyPlanService) resolveParams(req *dto.WeightParamsRequest) planner.WeightParams {
	params := planner.WeightParams{Alpha: s.cfg.Planner.Alpha, Beta: s.cfg.Planner.Beta, Floor: s.cfg.Planner.Floor}
	if req == nil {
		return params
	}
	if req.Alpha != nil {
		params.Alpha = *req.Alpha
	}
	if req.Beta != nil {
		params.Beta = *req.Beta
	}
	if req.Floor != nil {
		params.Floor = *req.Floor
	}
	return params
}

type calendarWindow struct {
	start        time.Time
	end          time.Time
	weekdayHours float64
	weekendHours float64
	excluded     []time.Time
}

func (s *StudyPlanService) resolveWindow(req dto.CalendarRequest) (calendarWindow, error) {
	start, err := planner.ParseDate(req.StartDate)
	if err != nil {
		return calendarWindow{}, appErrors.Clone(appErrors.ErrValidation, "startDate: expected YYYY-MM-DD")
	}
	end, err := planner.ParseDate(req.EndDate)
	if err != nil {
		return calendarWindow{}, appErrors.Clone(appErrors.ErrValidation, "endDate: expected YYYY-MM-DD")
	}
	if limit := s.cfg.Planner.MaxWindowDays; limit > 0 && planner.WindowDays(start, end) > limit {
		return calendarWindow{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("endDate: window longer than %d days", limit))
	}
	window := calendarWindow{
		start:        start,
		end:          end,
		weekdayHours: s.cfg.Planner.WeekdayHours,
		weekendHours: s.cfg.Planner.WeekendHours,
	}
	if req.WeekdayHours != nil {
		window.weekdayHours = *req.WeekdayHours
	}
	if req.WeekendHours != nil {
		window.weekendHours = *req.WeekendHours
	}
	for _, raw := range req.ExcludedDates {
		day, err := planner.ParseDate(raw)
		if err != nil {
			return calendarWindow{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("excludedDates: %q is not YYYY-MM-DD", raw))
		}
		window.excluded = append(window.excluded, day)
	}
	return window, nil
}

type blockSettings struct {
	block  float64
	step   float64
	policy planner.Policy
}

func (s *StudyPlanService) resolveBlocks(req dto.BlockRequest) (blockSettings, error) {
	settings := blockSettings{block: s.cfg.Planner.BlockHours, step: s.cfg.Planner.StepHours}
	if req.BlockHours != nil {
		settings.block = *req.BlockHours
	}
	if req.StepHours != nil {
		settings.step = *req.StepHours
	}
	if err := s.checkBlockSize("blockHours", settings.block); err != nil {
		return blockSettings{}, err
	}
	if err := s.checkBlockSize("stepHours", settings.step); err != nil {
		return blockSettings{}, err
	}
	raw := req.Policy
	if raw == "" {
		raw = s.cfg.Planner.Policy
	}
	policy, err := planner.ParsePolicy(raw)
	if err != nil {
		return blockSettings{}, mapPlannerError(err)
	}
	settings.policy = policy
	return settings, nil
}

func (s *StudyPlanService) proposalResponse(p StudyPlanProposal) *dto.GenerateStudyPlanResponse {
	return &dto.GenerateStudyPlanResponse{
		ProposalID: p.ID,
		Title:      p.Title,
		ExpiresAt:  p.RequestedAt.Add(s.cfg.ProposalTTL),
		StartDate:  planner.FormatDate(p.Start),
		EndDate:    planner.FormatDate(p.End),
		DaysLeft:   p.Plan.DaysLeft,
		TotalHours: p.TotalHours,
		BlockHours: p.BlockHours,
		StepHours:  p.StepHours,
		Policy:     string(p.Policy),
		Params:     p.Params,
		Subjects:   p.Plan.Subjects,
		Schedule:   toScheduleResponse(p.Plan.Result),
		Warnings:   scheduleWarnings(p.Plan.Result),
	}
}

// checkBlockSize bounds the number of blocks a window can produce.
func (s *StudyPlanService) checkBlockSize(field string, hours float64) error {
	if limit := s.cfg.Planner.MinBlockHours; limit > 0 && hours < limit {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: must be at least %g hours", field, limit))
	}
	return nil
}

func checkOwner(plan *models.StudyPlan, actor string) error {
	if actor != "" && plan.Owner != actor {
		return appErrors.Clone(appErrors.ErrForbidden, "study plan belongs to another user")
	}
	return nil
}

func mapPlannerError(err error) error {
	var fieldErr *planner.ValidationError
	if errors.As(err, &fieldErr) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fieldErr.Error())
	}
	if errors.Is(err, planner.ErrValidation) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, strings.TrimPrefix(err.Error(), planner.ErrValidation.Error()+": "))
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "planner failure")
}

func scheduleWarnings(result planner.Result) []dto.Warning {
	if !result.Insufficient() {
		return nil
	}
	shortfall := result.Shortfall()
	return []dto.Warning{{
		Code:    WarningInsufficientCapacity,
		Message: fmt.Sprintf("%.2f of %.2f hours could not be scheduled before the deadline", shortfall, result.Requested),
		Hours:   shortfall,
	}}
}

func toScheduleResponse(result planner.Result) dto.ScheduleResponse {
	days := make([]dto.DayView, len(result.Days))
	for i, day := range result.Days {
		days[i] = dto.DayView{
			Date:     planner.FormatDate(day.Date),
			Capacity: day.Capacity,
			Assigned: day.Assigned,
			Unused:   day.Unused(),
		}
	}
	remaining := result.Remaining
	if remaining == nil {
		remaining = map[string]float64{}
	}
	return dto.ScheduleResponse{
		Assignments: toAssignmentViews(result.Assignments),
		Days:        days,
		Remaining:   remaining,
		Requested:   result.Requested,
		Assigned:    result.Assigned,
		Shortfall:   result.Shortfall(),
		Pivot:       planner.Pivot(result.Assignments),
	}
}

func toAssignmentViews(assignments []planner.Assignment) []dto.AssignmentView {
	views := make([]dto.AssignmentView, len(assignments))
	for i, a := range assignments {
		views[i] = dto.AssignmentView{Date: planner.FormatDate(a.Date), Subject: a.Subject, Hours: a.Hours}
	}
	return views
}

func assignmentsFromRows(rows []models.StudyPlanAssignment) []planner.Assignment {
	assignments := make([]planner.Assignment, len(rows))
	for i, row := range rows {
		assignments[i] = planner.Assignment{Date: planner.Day(row.Date), Subject: row.Subject, Hours: row.Hours}
	}
	return assignments
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = planner.FormatDate(d)
	}
	return out
}
