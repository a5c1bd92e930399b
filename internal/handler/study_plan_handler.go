package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/middleware"
	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/service"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

type studyPlanner interface {
	Preview(ctx context.Context, req dto.GenerateStudyPlanRequest) (*dto.GenerateStudyPlanResponse, error)
	Proposal(ctx context.Context, id string) (*dto.GenerateStudyPlanResponse, error)
	Save(ctx context.Context, req dto.SaveStudyPlanRequest, owner string) (*models.StudyPlan, error)
	List(ctx context.Context, query dto.StudyPlanQuery) ([]models.StudyPlan, *models.Pagination, error)
	Get(ctx context.Context, id, actor string) (*dto.StudyPlanDetail, error)
	Activate(ctx context.Context, id, actor string) (*models.StudyPlan, error)
	Delete(ctx context.Context, id, actor string) error
}

type studyPlanPreviewResponse struct {
	Mode     string                         `json:"mode"`
	Proposal *dto.GenerateStudyPlanResponse `json:"proposal"`
}

// StudyPlanHandler exposes the generate, preview and saved plan endpoints.
type StudyPlanHandler struct {
	service studyPlanner
}

// NewStudyPlanHandler constructs the handler.
func NewStudyPlanHandler(svc *service.StudyPlanService) *StudyPlanHandler {
	return &StudyPlanHandler{service: svc}
}

// Generate godoc
// @Summary Generate a study plan proposal
// @Description Runs weights, split and allocation in one call and keeps the result as a proposal for a limited time.
// @Tags StudyPlans
// @Accept json
// @Produce json
// @Param payload body dto.GenerateStudyPlanRequest true "Generate payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /study-plans/generate [post]
func (h *StudyPlanHandler) Generate(c *gin.Context) {
	var req dto.GenerateStudyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondProposal(c, result)
}

// Proposal godoc
// @Summary Fetch a stored proposal
// @Tags StudyPlans
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /study-plans/proposals/{id} [get]
func (h *StudyPlanHandler) Proposal(c *gin.Context) {
	result, err := h.service.Proposal(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondProposal(c, result)
}

// Save godoc
// @Summary Save a proposal as a new plan version
// @Tags StudyPlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SaveStudyPlanRequest true "Save payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /study-plans [post]
func (h *StudyPlanHandler) Save(c *gin.Context) {
	var req dto.SaveStudyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	plan, err := h.service.Save(c.Request.Context(), req, ownerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// List godoc
// @Summary List saved study plans
// @Tags StudyPlans
// @Produce json
// @Security BearerAuth
// @Param owner query string false "Owner"
// @Param title query string false "Title contains"
// @Param status query string false "DRAFT, ACTIVE or ARCHIVED"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /study-plans [get]
func (h *StudyPlanHandler) List(c *gin.Context) {
	var query dto.StudyPlanQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	if claims := claimsFromContext(c); claims != nil && claims.Role != models.RoleAdmin {
		query.Owner = claims.UserID
	}
	plans, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, pagination)
}

// Get godoc
// @Summary Get a saved plan with subjects, assignments and pivot
// @Tags StudyPlans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /study-plans/{id} [get]
func (h *StudyPlanHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Activate godoc
// @Summary Mark a plan version active
// @Description Other active versions with the same owner and title are archived.
// @Tags StudyPlans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Router /study-plans/{id}/activate [post]
func (h *StudyPlanHandler) Activate(c *gin.Context) {
	plan, err := h.service.Activate(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Delete godoc
// @Summary Delete a draft plan
// @Tags StudyPlans
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /study-plans/{id} [delete]
func (h *StudyPlanHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *StudyPlanHandler) respondProposal(c *gin.Context, result *dto.GenerateStudyPlanResponse) {
	if len(result.Warnings) > 0 {
		middleware.SetWarnings(c, result.Warnings)
	}
	respondWithMeta(c, http.StatusOK, studyPlanPreviewResponse{Mode: "preview", Proposal: result}, nil)
}
