package models

import "time"

// ReportType identifies what a report job renders.
type ReportType string

const (
	ReportTypeEvaluationSummary ReportType = "evaluation_summary"
	ReportTypeGroupGrades       ReportType = "group_grades"
)

// Valid reports whether the type is known.
func (t ReportType) Valid() bool {
	return t == ReportTypeEvaluationSummary || t == ReportTypeGroupGrades
}

// ReportFormat selects the rendered output format.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Valid reports whether the format is known.
func (f ReportFormat) Valid() bool {
	return f == ReportFormatCSV || f == ReportFormatPDF
}

// ReportJobStatus tracks a report job through the worker queue.
type ReportJobStatus string

const (
	ReportJobQueued     ReportJobStatus = "queued"
	ReportJobProcessing ReportJobStatus = "processing"
	ReportJobCompleted  ReportJobStatus = "completed"
	ReportJobFailed     ReportJobStatus = "failed"
)

// ReportJob is an asynchronous export request.
type ReportJob struct {
	ID          string          `db:"id" json:"id"`
	Type        ReportType      `db:"type" json:"type"`
	Format      ReportFormat    `db:"format" json:"format"`
	Status      ReportJobStatus `db:"status" json:"status"`
	GroupID     *string         `db:"group_id" json:"group_id,omitempty"`
	FilePath    string          `db:"file_path" json:"-"`
	Error       *string         `db:"error" json:"error,omitempty"`
	RequestedBy string          `db:"requested_by" json:"requested_by"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
	CompletedAt *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}
