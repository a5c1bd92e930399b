package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/service"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

type proposalDocuments interface {
	ProposalDocument(ctx context.Context, id string) (*service.ScheduleDocument, error)
}

type scheduleRenderer interface {
	Render(ctx context.Context, doc *service.ScheduleDocument, format models.ExportFormat) (*service.RenderedExport, error)
}

type exportJobs interface {
	Enqueue(ctx context.Context, planID string, format models.ExportFormat, actor string) (*models.ExportJob, error)
	Get(ctx context.Context, id, actor string) (*models.ExportJob, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler serves schedule exports, both direct and through the job queue.
type ExportHandler struct {
	proposals proposalDocuments
	renderer  scheduleRenderer
	jobs      exportJobs
}

// NewExportHandler constructs the handler. jobs may be nil when persistence is disabled.
func NewExportHandler(proposals *service.StudyPlanService, renderer *service.ExportService, jobs *service.ExportJobService) *ExportHandler {
	h := &ExportHandler{proposals: proposals, renderer: renderer}
	if jobs != nil {
		h.jobs = jobs
	}
	return h
}

// ProposalExport godoc
// @Summary Download a proposal as CSV, ICS or PDF
// @Tags Exports
// @Produce octet-stream
// @Param id path string true "Proposal ID"
// @Param format query string false "csv, ics or pdf" default(csv)
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /study-plans/proposals/{id}/export [get]
func (h *ExportHandler) ProposalExport(c *gin.Context) {
	format := models.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(models.ExportFormatCSV))))
	if !format.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format: must be one of csv, ics, pdf"))
		return
	}
	doc, err := h.proposals.ProposalDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	rendered, err := h.renderer.Render(c.Request.Context(), doc, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", attachment(rendered.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, rendered.ContentType, rendered.Data)
}

// CreateJob godoc
// @Summary Queue an export of a saved plan
// @Tags Exports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param payload body dto.CreateExportRequest true "Export format"
// @Success 202 {object} response.Envelope
// @Router /study-plans/{id}/exports [post]
func (h *ExportHandler) CreateJob(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceUnavailable, "export jobs are disabled"))
		return
	}
	var req dto.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	job, err := h.jobs.Enqueue(c.Request.Context(), c.Param("id"), models.ExportFormat(strings.ToLower(req.Format)), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// JobStatus godoc
// @Summary Get export job status
// @Tags Exports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/jobs/{id} [get]
func (h *ExportHandler) JobStatus(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceUnavailable, "export jobs are disabled"))
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export through its signed link
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceUnavailable, "export jobs are disabled"))
		return
	}
	download, err := h.jobs.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	c.Header("Content-Disposition", attachment(download.Filename))
	c.DataFromReader(http.StatusOK, info.Size(), download.ContentType, download.File, nil)
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
