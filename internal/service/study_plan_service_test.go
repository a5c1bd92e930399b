package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/pkg/config"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func testPlannerConfig() config.PlannerConfig {
	return config.PlannerConfig{
		Alpha:          1,
		Beta:           1,
		Floor:          0.2,
		StepHours:      0.5,
		BlockHours:     1,
		MinBlockHours:  0.25,
		WeekdayHours:   2,
		WeekendHours:   4,
		TotalHours:     40,
		Policy:         "proportional",
		MaxSubjects:    5,
		MaxWindowDays:  60,
		CalendarAnchor: "18:00",
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected app error, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

type fakeStudyPlanRepo struct {
	plans      map[string]*models.StudyPlan
	archived   []string
	statuses   map[string]models.StudyPlanStatus
	deleted    []string
	createErr  error
	listFilter models.StudyPlanFilter
}

func newFakeStudyPlanRepo() *fakeStudyPlanRepo {
	return &fakeStudyPlanRepo{plans: make(map[string]*models.StudyPlan), statuses: make(map[string]models.StudyPlanStatus)}
}

func (r *fakeStudyPlanRepo) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.StudyPlan) error {
	if r.createErr != nil {
		return r.createErr
	}
	version := 1
	for _, existing := range r.plans {
		if existing.Owner == plan.Owner && existing.Title == plan.Title && existing.Version >= version {
			version = existing.Version + 1
		}
	}
	plan.ID = fmt.Sprintf("plan-%d", len(r.plans)+1)
	plan.Version = version
	cp := *plan
	r.plans[plan.ID] = &cp
	return nil
}

func (r *fakeStudyPlanRepo) List(ctx context.Context, filter models.StudyPlanFilter) ([]models.StudyPlan, int, error) {
	r.listFilter = filter
	out := make([]models.StudyPlan, 0, len(r.plans))
	for _, plan := range r.plans {
		out = append(out, *plan)
	}
	return out, len(out), nil
}

func (r *fakeStudyPlanRepo) FindByID(ctx context.Context, id string) (*models.StudyPlan, error) {
	plan, ok := r.plans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *plan
	return &cp, nil
}

func (r *fakeStudyPlanRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.plans[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.plans, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeStudyPlanRepo) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.StudyPlanStatus) error {
	r.statuses[id] = status
	if plan, ok := r.plans[id]; ok {
		plan.Status = status
	}
	return nil
}

func (r *fakeStudyPlanRepo) ArchiveActive(ctx context.Context, exec sqlx.ExtContext, owner, title, keepID string) error {
	for id, plan := range r.plans {
		if id != keepID && plan.Owner == owner && plan.Title == title && plan.Status == models.StudyPlanStatusActive {
			plan.Status = models.StudyPlanStatusArchived
			r.archived = append(r.archived, id)
		}
	}
	return nil
}

type fakeStudyPlanItemRepo struct {
	subjects    map[string][]models.StudyPlanSubject
	assignments map[string][]models.StudyPlanAssignment
	insertErr   error
}

func newFakeStudyPlanItemRepo() *fakeStudyPlanItemRepo {
	return &fakeStudyPlanItemRepo{
		subjects:    make(map[string][]models.StudyPlanSubject),
		assignments: make(map[string][]models.StudyPlanAssignment),
	}
}

func (r *fakeStudyPlanItemRepo) InsertSubjects(ctx context.Context, exec sqlx.ExtContext, subjects []models.StudyPlanSubject) error {
	for _, s := range subjects {
		r.subjects[s.PlanID] = append(r.subjects[s.PlanID], s)
	}
	return nil
}

func (r *fakeStudyPlanItemRepo) InsertAssignments(ctx context.Context, exec sqlx.ExtContext, assignments []models.StudyPlanAssignment) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	for _, a := range assignments {
		r.assignments[a.PlanID] = append(r.assignments[a.PlanID], a)
	}
	return nil
}

func (r *fakeStudyPlanItemRepo) ListSubjects(ctx context.Context, planID string) ([]models.StudyPlanSubject, error) {
	return r.subjects[planID], nil
}

func (r *fakeStudyPlanItemRepo) ListAssignments(ctx context.Context, planID string) ([]models.StudyPlanAssignment, error) {
	return r.assignments[planID], nil
}

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type studyPlanFixture struct {
	service *StudyPlanService
	plans   *fakeStudyPlanRepo
	items   *fakeStudyPlanItemRepo
	mock    sqlmock.Sqlmock
}

func newStudyPlanFixture(t *testing.T) studyPlanFixture {
	tx, mock := newTxProviderMock(t)
	plans := newFakeStudyPlanRepo()
	items := newFakeStudyPlanItemRepo()
	svc := NewStudyPlanService(plans, items, tx, nil, NewMetricsService(), nil, nil, StudyPlanServiceConfig{
		Planner:     testPlannerConfig(),
		ProposalTTL: time.Minute,
	})
	return studyPlanFixture{service: svc, plans: plans, items: items, mock: mock}
}

func generateRequest() dto.GenerateStudyPlanRequest {
	return dto.GenerateStudyPlanRequest{
		Title: "Finals",
		Subjects: []dto.SubjectRequest{
			{Name: "Math", Difficulty: intPtr(5), Confidence: intPtr(1)},
			{Name: "History", Difficulty: intPtr(1), Confidence: intPtr(5)},
		},
		TotalHours: floatPtr(20),
		CalendarRequest: dto.CalendarRequest{
			StartDate: "2024-06-03",
			EndDate:   "2024-06-16",
		},
	}
}

func TestStudyPlanServiceWeightsUsesConfiguredDefaults(t *testing.T) {
	fx := newStudyPlanFixture(t)

	resp, err := fx.service.Weights(context.Background(), dto.ComputeWeightsRequest{
		Subjects: []dto.SubjectRequest{
			{Name: "Math", Difficulty: intPtr(5), Confidence: intPtr(1)},
			{Name: " Art "},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Subjects, 2)
	assert.InDelta(t, 10.2, resp.Subjects[0].Weight, 1e-9)
	assert.Equal(t, "Art", resp.Subjects[1].Name)
	assert.Equal(t, 3, resp.Subjects[1].Difficulty)
	assert.InDelta(t, 6.2, resp.Subjects[1].Weight, 1e-9)
	assert.Equal(t, 0.2, resp.Params.Floor)
}

func TestStudyPlanServiceWeightsOverridesParams(t *testing.T) {
	fx := newStudyPlanFixture(t)

	resp, err := fx.service.Weights(context.Background(), dto.ComputeWeightsRequest{
		Subjects: []dto.SubjectRequest{{Name: "Math", Difficulty: intPtr(4), Confidence: intPtr(2)}},
		Params:   &dto.WeightParamsRequest{Alpha: floatPtr(2), Beta: floatPtr(0), Floor: floatPtr(1)},
	})
	require.NoError(t, err)
	assert.InDelta(t, 9.0, resp.Subjects[0].Weight, 1e-9)
}

func TestStudyPlanServiceSplit(t *testing.T) {
	fx := newStudyPlanFixture(t)

	resp, err := fx.service.Split(context.Background(), dto.SplitHoursRequest{TotalHours: 20, Weights: []float64{10.2, 2.2}})
	require.NoError(t, err)
	assert.Equal(t, []float64{16.5, 3.5}, resp.Hours)
	assert.Equal(t, 20.0, resp.Total)
	assert.Equal(t, 0.5, resp.StepHours)
}

func TestStudyPlanServiceSplitRejectsTinyStep(t *testing.T) {
	fx := newStudyPlanFixture(t)

	_, err := fx.service.Split(context.Background(), dto.SplitHoursRequest{TotalHours: 20, Weights: []float64{1, 1}, StepHours: floatPtr(0.0005)})
	assertAppErrorCode(t, err, appErrors.ErrValidation.Code)
}

func TestStudyPlanServiceEnforcesConfiguredMinimumBlock(t *testing.T) {
	cfg := testPlannerConfig()
	cfg.MinBlockHours = 0.5
	svc := NewStudyPlanService(nil, nil, nil, nil, nil, nil, nil, StudyPlanServiceConfig{Planner: cfg})

	req := generateRequest()
	req.BlockHours = floatPtr(0.25)
	req.StepHours = floatPtr(0.25)
	_, err := svc.Preview(context.Background(), req)
	assertAppErrorCode(t, err, appErrors.ErrValidation.Code)
	assert.Contains(t, err.Error(), "blockHours: must be at least 0.5 hours")

	_, err = svc.Schedule(context.Background(), dto.BuildScheduleRequest{
		Subjects:        []dto.BudgetRequest{{Name: "A", Hours: 4}},
		CalendarRequest: dto.CalendarRequest{StartDate: "2024-06-03", EndDate: "2024-06-05"},
		BlockRequest:    dto.BlockRequest{StepHours: floatPtr(0.25)},
	})
	assertAppErrorCode(t, err, appErrors.ErrValidation.Code)
}

func TestStudyPlanServiceScheduleReportsShortfall(t *testing.T) {
	fx := newStudyPlanFixture(t)

	result, err := fx.service.Schedule(context.Background(), dto.BuildScheduleRequest{
		Subjects: []dto.BudgetRequest{{Name: "A", Hours: 8}},
		CalendarRequest: dto.CalendarRequest{
			StartDate:    "2024-06-06",
			EndDate:      "2024-06-07",
			WeekdayHours: floatPtr(3),
		},
	})
	require.NoError(t, err)
	assert.Len(t, result.Schedule.Assignments, 6)
	assert.Equal(t, 6.0, result.Schedule.Assigned)
	assert.Equal(t, 2.0, result.Schedule.Shortfall)
	assert.Equal(t, 2.0, result.Schedule.Remaining["A"])
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningInsufficientCapacity, result.Warnings[0].Code)
	assert.Equal(t, 2.0, result.Warnings[0].Hours)
}

func TestStudyPlanServicePreviewStoresProposal(t *testing.T) {
	fx := newStudyPlanFixture(t)

	resp, err := fx.service.Preview(context.Background(), generateRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ProposalID)
	assert.Equal(t, "Finals", resp.Title)
	assert.Equal(t, 13, resp.DaysLeft)
	require.Len(t, resp.Subjects, 2)
	assert.Equal(t, 16.5, resp.Subjects[0].Budget)
	assert.Equal(t, 3.5, resp.Subjects[1].Budget)
	assert.Equal(t, 20.0, resp.Schedule.Assigned)
	assert.Len(t, resp.Schedule.Days, 14)
	assert.Empty(t, resp.Warnings)
	assert.Equal(t, []string{"Math", "History"}, resp.Schedule.Pivot.Subjects)

	stored, err := fx.service.Proposal(context.Background(), resp.ProposalID)
	require.NoError(t, err)
	assert.Equal(t, resp.Schedule.Assigned, stored.Schedule.Assigned)
	assert.Equal(t, uint64(1), fx.service.metrics.Snapshot().PlansGenerated)
}

func TestStudyPlanServicePreviewDefaultsTitle(t *testing.T) {
	fx := newStudyPlanFixture(t)
	req := generateRequest()
	req.Title = ""

	resp, err := fx.service.Preview(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Study plan until 2024-06-16", resp.Title)
}

func TestStudyPlanServicePreviewWarnsOnInsufficientCapacity(t *testing.T) {
	fx := newStudyPlanFixture(t)
	req := generateRequest()
	req.TotalHours = floatPtr(100)

	resp, err := fx.service.Preview(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 36.0, resp.Schedule.Assigned)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, 64.0, resp.Warnings[0].Hours)
	for _, day := range resp.Schedule.Days {
		assert.LessOrEqual(t, day.Assigned, day.Capacity)
	}
}

func TestStudyPlanServicePreviewValidation(t *testing.T) {
	cases := map[string]func(*dto.GenerateStudyPlanRequest){
		"deadline before start": func(r *dto.GenerateStudyPlanRequest) { r.EndDate = "2024-06-01" },
		"deadline equals start": func(r *dto.GenerateStudyPlanRequest) { r.EndDate = r.StartDate },
		"duplicate subject": func(r *dto.GenerateStudyPlanRequest) {
			r.Subjects = append(r.Subjects, dto.SubjectRequest{Name: "Math"})
		},
		"empty subjects":  func(r *dto.GenerateStudyPlanRequest) { r.Subjects = nil },
		"bad date":        func(r *dto.GenerateStudyPlanRequest) { r.StartDate = "03/06/2024" },
		"window too long": func(r *dto.GenerateStudyPlanRequest) { r.EndDate = "2024-12-31" },
		"zero block":      func(r *dto.GenerateStudyPlanRequest) { r.BlockHours = floatPtr(0) },
		"tiny block":      func(r *dto.GenerateStudyPlanRequest) { r.BlockHours = floatPtr(0.0005) },
		"tiny step":       func(r *dto.GenerateStudyPlanRequest) { r.StepHours = floatPtr(0.0005) },
		"unknown policy":  func(r *dto.GenerateStudyPlanRequest) { r.Policy = "random" },
		"too many subjects": func(r *dto.GenerateStudyPlanRequest) {
			for i := 0; i < 5; i++ {
				r.Subjects = append(r.Subjects, dto.SubjectRequest{Name: fmt.Sprintf("S%d", i)})
			}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			fx := newStudyPlanFixture(t)
			req := generateRequest()
			mutate(&req)
			_, err := fx.service.Preview(context.Background(), req)
			assertAppErrorCode(t, err, appErrors.ErrValidation.Code)
		})
	}
}

func TestStudyPlanServiceProposalMissing(t *testing.T) {
	fx := newStudyPlanFixture(t)
	_, err := fx.service.Proposal(context.Background(), "missing")
	assertAppErrorCode(t, err, appErrors.ErrProposalExpired.Code)
}

func TestStudyPlanServiceSaveDraft(t *testing.T) {
	fx := newStudyPlanFixture(t)
	resp, err := fx.service.Preview(context.Background(), generateRequest())
	require.NoError(t, err)

	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	plan, err := fx.service.Save(context.Background(), dto.SaveStudyPlanRequest{ProposalID: resp.ProposalID}, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", plan.Owner)
	assert.Equal(t, "Finals", plan.Title)
	assert.Equal(t, 1, plan.Version)
	assert.Equal(t, models.StudyPlanStatusDraft, plan.Status)
	assert.Contains(t, string(plan.Meta), `"shortfall":0`)
	assert.Len(t, fx.items.subjects[plan.ID], 2)
	assert.Len(t, fx.items.assignments[plan.ID], len(resp.Schedule.Assignments))
	assert.NoError(t, fx.mock.ExpectationsWereMet())

	_, err = fx.service.Proposal(context.Background(), resp.ProposalID)
	assertAppErrorCode(t, err, appErrors.ErrProposalExpired.Code)
}

func TestStudyPlanServiceSaveActivateArchivesPrevious(t *testing.T) {
	fx := newStudyPlanFixture(t)
	fx.plans.plans["plan-old"] = &models.StudyPlan{ID: "plan-old", Owner: "alice", Title: "Finals", Version: 1, Status: models.StudyPlanStatusActive}

	resp, err := fx.service.Preview(context.Background(), generateRequest())
	require.NoError(t, err)

	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	plan, err := fx.service.Save(context.Background(), dto.SaveStudyPlanRequest{ProposalID: resp.ProposalID, Activate: true}, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Version)
	assert.Equal(t, models.StudyPlanStatusActive, plan.Status)
	assert.Equal(t, []string{"plan-old"}, fx.plans.archived)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestStudyPlanServiceSaveRollsBackOnFailure(t *testing.T) {
	fx := newStudyPlanFixture(t)
	fx.items.insertErr = errors.New("insert failed")

	resp, err := fx.service.Preview(context.Background(), generateRequest())
	require.NoError(t, err)

	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	_, err = fx.service.Save(context.Background(), dto.SaveStudyPlanRequest{ProposalID: resp.ProposalID}, "alice")
	assertAppErrorCode(t, err, appErrors.ErrInternal.Code)
	assert.NoError(t, fx.mock.ExpectationsWereMet())

	_, err = fx.service.Proposal(context.Background(), resp.ProposalID)
	assert.NoError(t, err, "proposal must survive a failed save")
}

func TestStudyPlanServiceSaveUnknownProposal(t *testing.T) {
	fx := newStudyPlanFixture(t)
	_, err := fx.service.Save(context.Background(), dto.SaveStudyPlanRequest{ProposalID: "nope"}, "alice")
	assertAppErrorCode(t, err, appErrors.ErrProposalExpired.Code)
}

func TestStudyPlanServiceWithoutPersistence(t *testing.T) {
	svc := NewStudyPlanService(nil, nil, nil, nil, nil, nil, nil, StudyPlanServiceConfig{Planner: testPlannerConfig()})

	resp, err := svc.Preview(context.Background(), generateRequest())
	require.NoError(t, err)

	_, err = svc.Save(context.Background(), dto.SaveStudyPlanRequest{ProposalID: resp.ProposalID}, "")
	assertAppErrorCode(t, err, appErrors.ErrServiceUnavailable.Code)

	_, _, err = svc.List(context.Background(), dto.StudyPlanQuery{})
	assertAppErrorCode(t, err, appErrors.ErrServiceUnavailable.Code)
}

func TestStudyPlanServiceGetBuildsViews(t *testing.T) {
	fx := newStudyPlanFixture(t)
	day1 := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	fx.plans.plans["plan-1"] = &models.StudyPlan{ID: "plan-1", Owner: "alice", Title: "Finals", Status: models.StudyPlanStatusDraft}
	fx.items.assignments["plan-1"] = []models.StudyPlanAssignment{
		{PlanID: "plan-1", Date: day2, Subject: "Math", Hours: 1, Position: 0},
		{PlanID: "plan-1", Date: day1, Subject: "History", Hours: 1, Position: 1},
		{PlanID: "plan-1", Date: day1, Subject: "Math", Hours: 1, Position: 2},
	}

	detail, err := fx.service.Get(context.Background(), "plan-1", "alice")
	require.NoError(t, err)
	require.Len(t, detail.Assignments, 3)
	assert.Equal(t, "2024-06-03", detail.Assignments[0].Date)
	assert.Equal(t, "History", detail.Assignments[0].Subject)
	require.Len(t, detail.Daily, 2)
	assert.Equal(t, 2.0, detail.Daily[0].Hours)
	assert.Equal(t, []string{"2024-06-03", "2024-06-04"}, detail.Pivot.Dates)
	assert.Equal(t, []float64{2, 1}, detail.Pivot.Totals)
}

func TestStudyPlanServiceGetRejectsForeignOwner(t *testing.T) {
	fx := newStudyPlanFixture(t)
	fx.plans.plans["plan-1"] = &models.StudyPlan{ID: "plan-1", Owner: "alice", Status: models.StudyPlanStatusDraft}

	_, err := fx.service.Get(context.Background(), "plan-1", "bob")
	assertAppErrorCode(t, err, appErrors.ErrForbidden.Code)

	_, err = fx.service.PlanDocument(context.Background(), "plan-1", "bob")
	assertAppErrorCode(t, err, appErrors.ErrForbidden.Code)

	_, err = fx.service.Get(context.Background(), "plan-1", "")
	require.NoError(t, err)
}

func TestStudyPlanServiceGetNotFound(t *testing.T) {
	fx := newStudyPlanFixture(t)
	_, err := fx.service.Get(context.Background(), "missing", "")
	assertAppErrorCode(t, err, appErrors.ErrNotFound.Code)
}

func TestStudyPlanServiceDelete(t *testing.T) {
	fx := newStudyPlanFixture(t)
	fx.plans.plans["draft"] = &models.StudyPlan{ID: "draft", Owner: "alice", Status: models.StudyPlanStatusDraft}
	fx.plans.plans["active"] = &models.StudyPlan{ID: "active", Owner: "alice", Status: models.StudyPlanStatusActive}

	err := fx.service.Delete(context.Background(), "active", "alice")
	assertAppErrorCode(t, err, appErrors.ErrConflict.Code)

	err = fx.service.Delete(context.Background(), "draft", "bob")
	assertAppErrorCode(t, err, appErrors.ErrForbidden.Code)

	require.NoError(t, fx.service.Delete(context.Background(), "draft", "alice"))
	assert.Equal(t, []string{"draft"}, fx.plans.deleted)
}

func TestStudyPlanServiceActivate(t *testing.T) {
	fx := newStudyPlanFixture(t)
	fx.plans.plans["v1"] = &models.StudyPlan{ID: "v1", Owner: "alice", Title: "Finals", Version: 1, Status: models.StudyPlanStatusActive}
	fx.plans.plans["v2"] = &models.StudyPlan{ID: "v2", Owner: "alice", Title: "Finals", Version: 2, Status: models.StudyPlanStatusDraft}

	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	plan, err := fx.service.Activate(context.Background(), "v2", "")
	require.NoError(t, err)
	assert.Equal(t, models.StudyPlanStatusActive, plan.Status)
	assert.Equal(t, models.StudyPlanStatusArchived, fx.plans.plans["v1"].Status)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestStudyPlanServiceListDefaultsPaging(t *testing.T) {
	fx := newStudyPlanFixture(t)
	fx.plans.plans["plan-1"] = &models.StudyPlan{ID: "plan-1", Owner: "alice"}

	plans, pagination, err := fx.service.List(context.Background(), dto.StudyPlanQuery{Owner: "alice", Status: "DRAFT"})
	require.NoError(t, err)
	assert.Len(t, plans, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, models.StudyPlanStatusDraft, fx.plans.listFilter.Status)
}

func TestStudyPlanServicePlanDocument(t *testing.T) {
	fx := newStudyPlanFixture(t)
	resp, err := fx.service.Preview(context.Background(), generateRequest())
	require.NoError(t, err)

	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	plan, err := fx.service.Save(context.Background(), dto.SaveStudyPlanRequest{ProposalID: resp.ProposalID}, "alice")
	require.NoError(t, err)

	doc, err := fx.service.PlanDocument(context.Background(), plan.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Finals (v1)", doc.Title)
	assert.Equal(t, "alice", doc.Owner)
	assert.Len(t, doc.Subjects, 2)
	assert.Len(t, doc.Assignments, len(resp.Schedule.Assignments))
}
