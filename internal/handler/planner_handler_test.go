package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/middleware"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

type plannerEngineMock struct {
	schedule    *dto.ScheduleResult
	err         error
	splitCalled dto.SplitHoursRequest
}

func (m *plannerEngineMock) Weights(ctx context.Context, req dto.ComputeWeightsRequest) (*dto.ComputeWeightsResponse, error) {
	return &dto.ComputeWeightsResponse{}, m.err
}

func (m *plannerEngineMock) Split(ctx context.Context, req dto.SplitHoursRequest) (*dto.SplitHoursResponse, error) {
	m.splitCalled = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.SplitHoursResponse{Hours: []float64{16.5, 3.5}, Total: 20, StepHours: 0.5}, nil
}

func (m *plannerEngineMock) Schedule(ctx context.Context, req dto.BuildScheduleRequest) (*dto.ScheduleResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.schedule, nil
}

type envelopeBody struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func performJSON(t *testing.T, handler gin.HandlerFunc, method, path, body string) (*httptest.ResponseRecorder, envelopeBody) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	router.Handle(method, path, handler)

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelopeBody
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestPlannerHandlerSplit(t *testing.T) {
	mock := &plannerEngineMock{}
	h := &PlannerHandler{service: mock}

	w, env := performJSON(t, h.Split, http.MethodPost, "/planner/split", `{"totalHours":20,"weights":[10.2,2.2]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []float64{10.2, 2.2}, mock.splitCalled.Weights)
	var payload dto.SplitHoursResponse
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, []float64{16.5, 3.5}, payload.Hours)
	assert.Nil(t, env.Meta)
}

func TestPlannerHandlerMalformedBody(t *testing.T) {
	h := &PlannerHandler{service: &plannerEngineMock{}}

	w, env := performJSON(t, h.Weights, http.MethodPost, "/planner/weights", `{"subjects":`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, env.Error.Code)
}

func TestPlannerHandlerScheduleWarnings(t *testing.T) {
	mock := &plannerEngineMock{schedule: &dto.ScheduleResult{
		Schedule: dto.ScheduleResponse{Requested: 8, Assigned: 6, Shortfall: 2},
		Warnings: []dto.Warning{{Code: "INSUFFICIENT_CAPACITY", Message: "not enough capacity", Hours: 2}},
	}}
	h := &PlannerHandler{service: mock}

	w, env := performJSON(t, h.Schedule, http.MethodPost, "/planner/schedule", `{"subjects":[{"name":"A","hours":8}],"startDate":"2024-06-06","endDate":"2024-06-07"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	warnings, ok := env.Meta["warnings"].([]interface{})
	require.True(t, ok)
	require.Len(t, warnings, 1)
	assert.Equal(t, "INSUFFICIENT_CAPACITY", warnings[0].(map[string]interface{})["code"])
}

func TestPlannerHandlerServiceError(t *testing.T) {
	h := &PlannerHandler{service: &plannerEngineMock{err: appErrors.Clone(appErrors.ErrValidation, "stepHours: must be positive")}}

	w, env := performJSON(t, h.Split, http.MethodPost, "/planner/split", `{"totalHours":20,"weights":[1]}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "stepHours: must be positive", env.Error.Message)
}
