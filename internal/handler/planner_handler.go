package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/middleware"
	"github.com/noah-isme/study-planner-api/internal/service"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

type plannerEngine interface {
	Weights(ctx context.Context, req dto.ComputeWeightsRequest) (*dto.ComputeWeightsResponse, error)
	Split(ctx context.Context, req dto.SplitHoursRequest) (*dto.SplitHoursResponse, error)
	Schedule(ctx context.Context, req dto.BuildScheduleRequest) (*dto.ScheduleResult, error)
}

// PlannerHandler exposes the stateless allocation endpoints.
type PlannerHandler struct {
	service plannerEngine
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(svc *service.StudyPlanService) *PlannerHandler {
	return &PlannerHandler{service: svc}
}

// Weights godoc
// @Summary Compute subject weights
// @Description Missing ratings default to 3 and out of range ratings are clamped to 1-5.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.ComputeWeightsRequest true "Subjects and optional coefficients"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/weights [post]
func (h *PlannerHandler) Weights(c *gin.Context) {
	var req dto.ComputeWeightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid weights payload"))
		return
	}
	result, err := h.service.Weights(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Split godoc
// @Summary Split total hours across weights
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.SplitHoursRequest true "Total, weights and step"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/split [post]
func (h *PlannerHandler) Split(c *gin.Context) {
	var req dto.SplitHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid split payload"))
		return
	}
	result, err := h.service.Split(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Schedule godoc
// @Summary Place hour budgets onto a date window
// @Description A capacity shortfall is reported under meta.warnings, not as an error.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.BuildScheduleRequest true "Budgets, window and block settings"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/schedule [post]
func (h *PlannerHandler) Schedule(c *gin.Context) {
	var req dto.BuildScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	result, err := h.service.Schedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(result.Warnings) > 0 {
		middleware.SetWarnings(c, result.Warnings)
	}
	respondWithMeta(c, http.StatusOK, result.Schedule, nil)
}
