package models

import "time"

// ExportFormat identifies a schedule export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatICS ExportFormat = "ics"
	ExportFormatPDF ExportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ExportFormat) Valid() bool {
	switch f {
	case ExportFormatCSV, ExportFormatICS, ExportFormatPDF:
		return true
	}
	return false
}

// ExportJobStatus tracks asynchronous export progress.
type ExportJobStatus string

const (
	ExportJobStatusQueued    ExportJobStatus = "QUEUED"
	ExportJobStatusRunning   ExportJobStatus = "RUNNING"
	ExportJobStatusCompleted ExportJobStatus = "COMPLETED"
	ExportJobStatusFailed    ExportJobStatus = "FAILED"
)

// ExportJob describes an export of a saved plan.
type ExportJob struct {
	ID        string          `json:"id"`
	PlanID    string          `json:"plan_id"`
	Owner     string          `json:"owner,omitempty"`
	Format    ExportFormat    `json:"format"`
	Status    ExportJobStatus `json:"status"`
	Attempts  int             `json:"attempts"`
	FilePath  string          `json:"-"`
	URL       string          `json:"url,omitempty"`
	Error     string          `json:"error,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
