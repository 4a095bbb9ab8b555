package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-hub-api/internal/models"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
	"github.com/noah-isme/course-hub-api/pkg/export"
	"github.com/noah-isme/course-hub-api/pkg/jobs"
	"github.com/noah-isme/course-hub-api/pkg/storage"
)

type reportRepo interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	SetProcessing(ctx context.Context, id string) error
	SetCompleted(ctx context.Context, id, filePath string) error
	SetFailed(ctx context.Context, id, reason string) error
}

type evaluationReader interface {
	ListByGroup(ctx context.Context, groupID string) ([]models.FinalEvaluation, error)
}

type gradeReader interface {
	List(ctx context.Context) ([]models.Grade, error)
	GetByStudent(ctx context.Context, studentID string) (*models.Grade, error)
}

type reportMemberReader interface {
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)
}

// CreateReportRequest is the payload for queueing an export.
type CreateReportRequest struct {
	Type    string  `json:"type" validate:"required,oneof=evaluation_summary group_grades"`
	Format  string  `json:"format" validate:"required,oneof=csv pdf"`
	GroupID *string `json:"group_id,omitempty" validate:"omitempty,uuid4"`
}

// ReportStatusResponse carries job state plus a signed download link once
// the file is ready.
type ReportStatusResponse struct {
	Job         *models.ReportJob `json:"job"`
	DownloadURL string            `json:"download_url,omitempty"`
	ExpiresAt   *time.Time        `json:"expires_at,omitempty"`
}

// ReportService runs the asynchronous export pipeline: jobs are queued,
// rendered by background workers and served through signed URLs.
type ReportService struct {
	repo        reportRepo
	evaluations evaluationReader
	grades      gradeReader
	members     reportMemberReader

	queue   *jobs.Queue
	store   *storage.LocalStorage
	signer  *storage.SignedURLSigner
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	baseURL string

	validator *validator.Validate
	logger    *zap.Logger
}

// ReportServiceConfig collects the pipeline collaborators.
type ReportServiceConfig struct {
	Repo        reportRepo
	Evaluations evaluationReader
	Grades      gradeReader
	Members     reportMemberReader
	Store       *storage.LocalStorage
	Signer      *storage.SignedURLSigner
	BaseURL     string
	Workers     int
	Retries     int
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// NewReportService constructs ReportService and its worker queue. Call
// Start before enqueueing and Stop on shutdown.
func NewReportService(cfg ReportServiceConfig) *ReportService {
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &ReportService{
		repo:        cfg.Repo,
		evaluations: cfg.Evaluations,
		grades:      cfg.Grades,
		members:     cfg.Members,
		store:       cfg.Store,
		signer:      cfg.Signer,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		baseURL:     cfg.BaseURL,
		validator:   cfg.Validator,
		logger:      cfg.Logger,
	}
	s.queue = jobs.NewQueue("reports", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     cfg.Logger,
	})
	return s
}

// Start launches the report workers.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the report workers.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Create persists a queued job and hands it to the workers.
func (s *ReportService) Create(ctx context.Context, req CreateReportRequest, requestedBy string) (*models.ReportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report request")
	}
	reportType := models.ReportType(req.Type)
	if reportType == models.ReportTypeEvaluationSummary && req.GroupID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "evaluation summary reports require a group id")
	}

	now := time.Now().UTC()
	job := &models.ReportJob{
		ID:          uuid.NewString(),
		Type:        reportType,
		Format:      models.ReportFormat(req.Format),
		Status:      models.ReportJobQueued,
		GroupID:     req.GroupID,
		RequestedBy: requestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		s.logger.Warn("failed to enqueue report job", zap.String("job_id", job.ID), zap.Error(err))
		if failErr := s.repo.SetFailed(ctx, job.ID, "queue unavailable"); failErr != nil {
			s.logger.Error("failed to mark report job failed", zap.String("job_id", job.ID), zap.Error(failErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "report queue unavailable")
	}
	return job, nil
}

// Status returns job state. Completed jobs get a signed download URL.
func (s *ReportService) Status(ctx context.Context, id string) (*ReportStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch report job")
	}

	resp := &ReportStatusResponse{Job: job}
	if job.Status == models.ReportJobCompleted && job.FilePath != "" {
		token, expiresAt, err := s.signer.Generate(job.ID, job.FilePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
		}
		resp.DownloadURL = fmt.Sprintf("%s/reports/download/%s", s.baseURL, token)
		resp.ExpiresAt = &expiresAt
	}
	return resp, nil
}

// Download validates a signed token and opens the rendered file.
func (s *ReportService) Download(ctx context.Context, token string) (*os.File, *models.ReportJob, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "report file not available")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch report job")
	}
	if job.Status != models.ReportJobCompleted || job.FilePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "report file not available")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report file")
	}
	return file, job, nil
}

// process is the queue handler. Failures bubble up so the queue retries
// before the job is marked failed for good.
func (s *ReportService) process(ctx context.Context, job jobs.Job) error {
	record, err := s.repo.GetByID(ctx, job.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("report job vanished", zap.String("job_id", job.ID))
			return nil
		}
		return fmt.Errorf("load report job %s: %w", job.ID, err)
	}
	if err := s.repo.SetProcessing(ctx, record.ID); err != nil {
		return fmt.Errorf("mark report job processing: %w", err)
	}

	dataset, title, err := s.buildDataset(ctx, record)
	if err != nil {
		s.fail(ctx, record.ID, err)
		return nil
	}

	var content []byte
	switch record.Format {
	case models.ReportFormatPDF:
		content, err = s.pdf.Render(dataset, title)
	default:
		content, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.fail(ctx, record.ID, err)
		return nil
	}

	filename := fmt.Sprintf("%s/%s.%s", record.Type, record.ID, record.Format)
	relPath, err := s.store.Save(filename, content)
	if err != nil {
		return fmt.Errorf("store report file: %w", err)
	}
	if err := s.repo.SetCompleted(ctx, record.ID, relPath); err != nil {
		return fmt.Errorf("mark report job completed: %w", err)
	}
	s.logger.Info("report rendered",
		zap.String("job_id", record.ID),
		zap.String("type", string(record.Type)),
		zap.String("format", string(record.Format)))
	return nil
}

func (s *ReportService) fail(ctx context.Context, jobID string, cause error) {
	s.logger.Error("report job failed", zap.String("job_id", jobID), zap.Error(cause))
	if err := s.repo.SetFailed(ctx, jobID, cause.Error()); err != nil {
		s.logger.Error("failed to mark report job failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (s *ReportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeEvaluationSummary:
		return s.evaluationDataset(ctx, *job.GroupID)
	case models.ReportTypeGroupGrades:
		return s.gradeDataset(ctx, job.GroupID)
	default:
		return export.Dataset{}, "", fmt.Errorf("unknown report type %q", job.Type)
	}
}

func (s *ReportService) evaluationDataset(ctx context.Context, groupID string) (export.Dataset, string, error) {
	evaluations, err := s.evaluations.ListByGroup(ctx, groupID)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("list evaluations: %w", err)
	}

	headers := []string{"student", "week 1", "week 2", "week 3", "week 4", "total"}
	rows := make([]map[string]string, 0, len(evaluations))
	for _, eval := range evaluations {
		weeks := eval.Weeks()
		row := map[string]string{
			"student": eval.UserID,
			"total":   strconv.Itoa(eval.TotalScore),
		}
		for i, week := range weeks {
			row[fmt.Sprintf("week %d", i+1)] = strconv.Itoa(week.Score)
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}, "Evaluation Summary", nil
}

func (s *ReportService) gradeDataset(ctx context.Context, groupID *string) (export.Dataset, string, error) {
	headers := []string{"student", "quiz", "assignment", "extra", "total", "max"}
	rows := make([]map[string]string, 0)

	appendGrade := func(grade *models.Grade) {
		rows = append(rows, map[string]string{
			"student":    grade.StudentID,
			"quiz":       strconv.Itoa(grade.QuizPoints),
			"assignment": strconv.Itoa(grade.AssignmentPoints),
			"extra":      strconv.Itoa(grade.ExtraPoints),
			"total":      strconv.Itoa(grade.TotalPoints),
			"max":        strconv.Itoa(grade.MaxPossiblePoints),
		})
	}

	if groupID != nil {
		members, err := s.members.ListMembers(ctx, *groupID)
		if err != nil {
			return export.Dataset{}, "", fmt.Errorf("list group members: %w", err)
		}
		for _, member := range members {
			grade, err := s.grades.GetByStudent(ctx, member.UserID)
			if err != nil {
				// Members without an aggregated grade yet are left out of
				// the export rather than failing the whole report.
				if errors.Is(err, sql.ErrNoRows) {
					continue
				}
				return export.Dataset{}, "", fmt.Errorf("load grade for %s: %w", member.UserID, err)
			}
			appendGrade(grade)
		}
	} else {
		grades, err := s.grades.List(ctx)
		if err != nil {
			return export.Dataset{}, "", fmt.Errorf("list grades: %w", err)
		}
		for i := range grades {
			appendGrade(&grades[i])
		}
	}
	return export.Dataset{Headers: headers, Rows: rows}, "Course Grades", nil
}
