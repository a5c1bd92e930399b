package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/planner"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/export"
	"github.com/noah-isme/study-planner-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	ContentType() string
	Render(data export.Dataset) ([]byte, error)
}

type icsRenderer interface {
	ContentType() string
	Render(events []export.CalendarEvent) ([]byte, error)
}

type pdfRenderer interface {
	ContentType() string
	Render(doc export.Document) ([]byte, error)
}

// ScheduleDocument is the exportable view of a proposal or a saved plan.
type ScheduleDocument struct {
	Owner       string
	Title       string
	Start       time.Time
	End         time.Time
	TotalHours  float64
	Subjects    []planner.Subject
	Assignments []planner.Assignment
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	// Anchor is the HH:MM time of day at which calendar events start.
	Anchor string
}

// RenderedExport is an export held in memory for a direct download.
type RenderedExport struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders schedules as CSV, ICS or PDF and persists rendered files.
type ExportService struct {
	storage      fileStorage
	signer       *storage.SignedURLSigner
	csv          csvRenderer
	ics          icsRenderer
	pdf          pdfRenderer
	metrics      *MetricsService
	logger       *zap.Logger
	cfg          ExportConfig
	anchorHour   int
	anchorMinute int
}

// ExportRenderers overrides the default renderers, mainly for tests.
type ExportRenderers struct {
	CSV csvRenderer
	ICS icsRenderer
	PDF pdfRenderer
}

// NewExportService constructs an ExportService. Storage and signer may be nil when only
// direct downloads are served.
func NewExportService(files fileStorage, signer *storage.SignedURLSigner, metrics *MetricsService, cfg ExportConfig, logger *zap.Logger, renderers ExportRenderers) (*ExportService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	hour, minute := planner.DefaultAnchorHour, planner.DefaultAnchorMinute
	if cfg.Anchor != "" {
		var err error
		hour, minute, err = planner.ParseAnchor(cfg.Anchor)
		if err != nil {
			return nil, fmt.Errorf("calendar anchor: %w", err)
		}
	}
	if renderers.CSV == nil {
		renderers.CSV = export.NewCSVExporter(export.WithBOM())
	}
	if renderers.ICS == nil {
		renderers.ICS = export.NewICSExporter("")
	}
	if renderers.PDF == nil {
		renderers.PDF = export.NewPDFExporter()
	}
	return &ExportService{
		storage:      files,
		signer:       signer,
		csv:          renderers.CSV,
		ics:          renderers.ICS,
		pdf:          renderers.PDF,
		metrics:      metrics,
		logger:       logger,
		cfg:          cfg,
		anchorHour:   hour,
		anchorMinute: minute,
	}, nil
}

// Render encodes a schedule in the requested format.
func (s *ExportService) Render(ctx context.Context, doc *ScheduleDocument, format models.ExportFormat) (*RenderedExport, error) {
	started := time.Now()
	rendered, err := s.render(doc, format)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveExport(string(format), "direct", time.Since(started))
	return rendered, nil
}

// Generate renders a schedule for a job, stores the file and signs a download URL.
func (s *ExportService) Generate(ctx context.Context, jobID string, doc *ScheduleDocument, format models.ExportFormat) (*ExportResult, error) {
	if s.storage == nil || s.signer == nil {
		return nil, fmt.Errorf("export storage is not configured")
	}
	started := time.Now()
	rendered, err := s.render(doc, format)
	if err != nil {
		return nil, err
	}
	relPath, err := s.storage.Save(jobID+"_"+rendered.Filename, rendered.Data)
	if err != nil {
		return nil, err
	}
	token, grant, err := s.signer.Sign(jobID, relPath)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveExport(string(format), "job", time.Since(started))

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/%s", prefix, token),
		Format:       format,
		ExpiresAt:    grant.ExpiresAt,
	}, nil
}

// Verify validates a download token.
func (s *ExportService) Verify(token string, allowExpired bool) (storage.Grant, error) {
	if s.signer == nil {
		return storage.Grant{}, storage.ErrInvalidToken
	}
	return s.signer.Verify(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if s.storage == nil {
		return nil, nil
	}
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// ContentType maps a format to its MIME type.
func (s *ExportService) ContentType(format models.ExportFormat) string {
	switch format {
	case models.ExportFormatCSV:
		return s.csv.ContentType()
	case models.ExportFormatICS:
		return s.ics.ContentType()
	case models.ExportFormatPDF:
		return s.pdf.ContentType()
	default:
		return "application/octet-stream"
	}
}

func (s *ExportService) render(doc *ScheduleDocument, format models.ExportFormat) (*RenderedExport, error) {
	if doc == nil {
		return nil, fmt.Errorf("schedule document is nil")
	}
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("format: unsupported export format %q", format))
	}
	var (
		payload []byte
		err     error
	)
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(assignmentDataset(doc.Assignments))
	case models.ExportFormatICS:
		payload, err = s.renderICS(doc)
	case models.ExportFormatPDF:
		payload, err = s.renderPDF(doc)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule export")
	}
	return &RenderedExport{
		Filename:    exportFilename(doc, format),
		ContentType: s.ContentType(format),
		Data:        payload,
	}, nil
}

func (s *ExportService) renderICS(doc *ScheduleDocument) ([]byte, error) {
	placed, err := planner.BuildEvents(doc.Assignments, s.anchorHour, s.anchorMinute)
	if err != nil {
		return nil, err
	}
	events := make([]export.CalendarEvent, len(placed))
	for i, ev := range placed {
		events[i] = export.CalendarEvent{
			UID:         ev.Start.Format("20060102T150405") + "@studyplanner",
			Summary:     "Study - " + ev.Subject,
			Description: fmt.Sprintf("%s hours of %s", formatHours(ev.Hours), ev.Subject),
			Start:       ev.Start,
			End:         ev.End,
		}
	}
	return s.ics.Render(events)
}

func (s *ExportService) renderPDF(doc *ScheduleDocument) ([]byte, error) {
	pivot := planner.Pivot(doc.Assignments)
	headers := append([]string{"Date"}, pivot.Subjects...)
	headers = append(headers, "Total")

	rows := make([]map[string]string, 0, len(pivot.Dates)+1)
	for _, date := range pivot.Dates {
		row := map[string]string{"Date": date}
		var dayTotal float64
		for i, subject := range pivot.Subjects {
			hours := pivot.Cells[date][i]
			dayTotal += hours
			if hours > 0 {
				row[subject] = formatHours(hours)
			}
		}
		row["Total"] = formatHours(planner.RoundHours(dayTotal))
		rows = append(rows, row)
	}
	totals := map[string]string{"Date": "Total"}
	var grand float64
	for i, subject := range pivot.Subjects {
		totals[subject] = formatHours(pivot.Totals[i])
		grand += pivot.Totals[i]
	}
	totals["Total"] = formatHours(planner.RoundHours(grand))
	rows = append(rows, totals)

	summary := []string{
		fmt.Sprintf("Window: %s to %s", planner.FormatDate(doc.Start), planner.FormatDate(doc.End)),
		fmt.Sprintf("Planned: %s of %s hours", formatHours(planner.RoundHours(grand)), formatHours(doc.TotalHours)),
	}
	for _, subject := range doc.Subjects {
		summary = append(summary, fmt.Sprintf("%s: difficulty %d, confidence %d, budget %s h",
			subject.Name, subject.Difficulty, subject.Confidence, formatHours(subject.Budget)))
	}

	return s.pdf.Render(export.Document{
		Title:     doc.Title,
		Summary:   summary,
		Data:      export.Dataset{Headers: headers, Rows: rows},
		Landscape: len(pivot.Subjects) > 4,
	})
}

func assignmentDataset(assignments []planner.Assignment) export.Dataset {
	sorted := planner.SortedAssignments(assignments)
	rows := make([]map[string]string, len(sorted))
	for i, a := range sorted {
		rows[i] = map[string]string{
			"date":    planner.FormatDate(a.Date),
			"subject": a.Subject,
			"hours":   formatHours(a.Hours),
		}
	}
	return export.Dataset{Headers: []string{"date", "subject", "hours"}, Rows: rows}
}

func exportFilename(doc *ScheduleDocument, format models.ExportFormat) string {
	return fmt.Sprintf("study_plan_%s_%s.%s",
		doc.Start.Format("20060102"), doc.End.Format("20060102"), format)
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
