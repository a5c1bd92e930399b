package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/jobs"
	"github.com/noah-isme/study-planner-api/pkg/storage"
)

type planDocumentLoader interface {
	PlanDocument(ctx context.Context, planID, actor string) (*ScheduleDocument, error)
}

type exportJobDispatcher interface {
	Enqueue(job jobs.Job[string]) error
}

type scheduleExporter interface {
	Generate(ctx context.Context, jobID string, doc *ScheduleDocument, format models.ExportFormat) (*ExportResult, error)
	Verify(token string, allowExpired bool) (storage.Grant, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
	Cleanup(ttl time.Duration) ([]string, error)
	ContentType(format models.ExportFormat) string
}

// ExportJobConfig governs job retention and cleanup.
type ExportJobConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ExportJobService tracks asynchronous exports of saved plans.
type ExportJobService struct {
	plans    planDocumentLoader
	exporter scheduleExporter
	queue    exportJobDispatcher
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ExportJobConfig
	now      func() time.Time

	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewExportJobService constructs the job service. Attach a queue before enqueueing.
func NewExportJobService(plans planDocumentLoader, exporter scheduleExporter, metrics *MetricsService, logger *zap.Logger, cfg ExportJobConfig) *ExportJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportJobService{
		plans:    plans,
		exporter: exporter,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		jobs:     make(map[string]*models.ExportJob),
	}
}

// AttachQueue sets the dispatcher that runs Handle for enqueued jobs.
func (s *ExportJobService) AttachQueue(queue exportJobDispatcher) {
	s.queue = queue
}

// Enqueue registers an export job for a saved plan and hands it to the queue.
// A non-empty actor must own the plan.
func (s *ExportJobService) Enqueue(ctx context.Context, planID string, format models.ExportFormat, actor string) (*models.ExportJob, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format: must be one of csv, ics, pdf")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "export queue is not running")
	}
	doc, err := s.plans.PlanDocument(ctx, planID, actor)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	job := &models.ExportJob{
		ID:        uuid.NewString(),
		PlanID:    planID,
		Owner:     doc.Owner,
		Format:    format,
		Status:    models.ExportJobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job[string]{ID: job.ID, Payload: planID}); err != nil {
		s.update(job.ID, func(j *models.ExportJob) {
			j.Status = models.ExportJobStatusFailed
			j.Error = "failed to enqueue job"
		})
		s.metrics.RecordExportJob(string(models.ExportJobStatusFailed))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return s.snapshot(job.ID), nil
}

// Get returns the current state of a job. A non-empty actor must own the exported plan.
func (s *ExportJobService) Get(ctx context.Context, id, actor string) (*models.ExportJob, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if actor != "" && job.Owner != actor {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export job belongs to another user")
	}
	return job, nil
}

// Handle processes a queued job. Returned errors make the queue retry.
func (s *ExportJobService) Handle(ctx context.Context, job jobs.Job[string]) error {
	record := s.snapshot(job.ID)
	if record == nil {
		s.logger.Sugar().Warnw("export job vanished before processing", "job_id", job.ID)
		return nil
	}
	s.update(job.ID, func(j *models.ExportJob) {
		j.Status = models.ExportJobStatusRunning
		j.Attempts = job.Attempt + 1
	})

	doc, err := s.plans.PlanDocument(ctx, job.Payload, "")
	if err == nil {
		var result *ExportResult
		result, err = s.exporter.Generate(ctx, job.ID, doc, record.Format)
		if err == nil {
			expiresAt := result.ExpiresAt
			s.update(job.ID, func(j *models.ExportJob) {
				j.Status = models.ExportJobStatusCompleted
				j.FilePath = result.RelativePath
				j.URL = result.URL
				j.Error = ""
				j.ExpiresAt = &expiresAt
			})
			s.metrics.RecordExportJob(string(models.ExportJobStatusCompleted))
			return nil
		}
	}

	msg := err.Error()
	s.update(job.ID, func(j *models.ExportJob) {
		j.Status = models.ExportJobStatusQueued
		j.Error = msg
	})
	return err
}

// MarkFailed is the queue failure callback for jobs that ran out of retries.
func (s *ExportJobService) MarkFailed(job jobs.Job[string], err error) {
	msg := "export failed"
	if err != nil {
		msg = err.Error()
	}
	s.update(job.ID, func(j *models.ExportJob) {
		j.Status = models.ExportJobStatusFailed
		j.Attempts = job.Attempt
		j.Error = msg
	})
	s.metrics.RecordExportJob(string(models.ExportJobStatusFailed))
}

// ResolveDownload validates token and opens the stored export file.
func (s *ExportJobService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	grant, err := s.exporter.Verify(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	job := s.snapshot(grant.JobID)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if job.Status != models.ExportJobStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	if job.FilePath != grant.Path {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.exporter.Open(grant.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:        file,
		Filename:    filepath.Base(grant.Path),
		ContentType: s.exporter.ContentType(job.Format),
		ExpiresAt:   grant.ExpiresAt,
	}, nil
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ExportJobService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired()
			}
		}
	}()
}

func (s *ExportJobService) cleanupExpired() {
	cutoff := s.now().Add(-s.cfg.ResultTTL)

	s.mu.Lock()
	expired := make([]models.ExportJob, 0)
	for id, job := range s.jobs {
		finished := job.Status == models.ExportJobStatusCompleted || job.Status == models.ExportJobStatusFailed
		if finished && job.UpdatedAt.Before(cutoff) {
			expired = append(expired, *job)
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()

	for _, job := range expired {
		if job.FilePath == "" {
			continue
		}
		if err := s.exporter.Delete(job.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "error", err)
		}
	}
	if _, err := s.exporter.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func (s *ExportJobService) update(id string, fn func(*models.ExportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	fn(job)
	job.UpdatedAt = s.now().UTC()
}

func (s *ExportJobService) snapshot(id string) *models.ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	cp := *job
	return &cp
}
