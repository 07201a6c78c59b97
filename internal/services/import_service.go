package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/SAP-F-2025/question-import-service/internal/events"
	"github.com/SAP-F-2025/question-import-service/internal/models"
	"github.com/SAP-F-2025/question-import-service/internal/repositories"
	"github.com/SAP-F-2025/question-import-service/internal/validator"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

const (
	MessageNoValidQuestions = "No valid questions found"

	templateSheet = "Questions"
)

// ProgressStore keeps live progress snapshots of running imports.
type ProgressStore interface {
	ProgressReporter
	GetProgress(ctx context.Context, jobID string) (*models.ImportProgress, error)
}

// ImportService handles question file imports, header diagnostics and
// template downloads
type ImportService interface {
	// Import operations
	ImportFile(ctx context.Context, reader io.Reader, req ImportRequest) (*ImportResult, error)
	ImportCSV(ctx context.Context, reader io.Reader, req ImportRequest) (*ImportResult, error)
	ImportExcel(ctx context.Context, reader io.Reader, req ImportRequest) (*ImportResult, error)

	// Diagnostics
	InspectFile(ctx context.Context, reader io.Reader, filename string) (*HeaderDiagnostics, error)

	// Export operations
	ExportTemplate(ctx context.Context, format string) ([]byte, error)

	// Job management
	GetImportJob(ctx context.Context, jobID string) (*models.ImportJob, error)
	ListImportJobs(ctx context.Context, userID string, filters repositories.ImportJobFilters) ([]*models.ImportJob, int64, error)
	GetImportProgress(ctx context.Context, jobID string) (*models.ImportProgress, error)
}

type importService struct {
	jobs      repositories.ImportJobRepository
	submitter *BatchSubmitter
	progress  ProgressStore
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportService(
	jobs repositories.ImportJobRepository,
	submitter *BatchSubmitter,
	progress ProgressStore,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) ImportService {
	return &importService{
		jobs:      jobs,
		submitter: submitter,
		progress:  progress,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== IMPORT OPERATIONS =====

type ImportRequest struct {
	UserID   string `json:"user_id"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

type ImportResult struct {
	JobID        string                         `json:"job_id"`
	FileName     string                         `json:"file_name"`
	TotalRows    int                            `json:"total_rows"`
	ParsedCount  int                            `json:"parsed_count"`
	SkippedCount int                            `json:"skipped_count"`
	SuccessCount int                            `json:"success_count"`
	FailureCount int                            `json:"failure_count"`
	Skipped      []models.ImportValidationError `json:"skipped"`
	Failures     []models.SubmissionFailure     `json:"failures"`
	Status       models.ImportJobStatus         `json:"status"`
	Message      string                         `json:"message"`
}

// Summary is the one-line report shown to the user at the end of a run.
func (r *ImportResult) Summary() string {
	switch r.Status {
	case models.ImportNoValidQuestions:
		return fmt.Sprintf("%s (%d rows read, %d skipped)", MessageNoValidQuestions, r.TotalRows, r.SkippedCount)
	case models.ImportFailed:
		return fmt.Sprintf("All %d question submissions failed (%d rows skipped)", r.FailureCount, r.SkippedCount)
	case models.ImportCancelled:
		return fmt.Sprintf("Import cancelled after %d of %d questions: %d succeeded, %d failed",
			r.SuccessCount+r.FailureCount, r.ParsedCount, r.SuccessCount, r.FailureCount)
	}
	return fmt.Sprintf("Imported %d of %d questions: %d succeeded, %d failed, %d rows skipped",
		r.SuccessCount, r.ParsedCount, r.SuccessCount, r.FailureCount, r.SkippedCount)
}

func (s *importService) ImportFile(ctx context.Context, reader io.Reader, req ImportRequest) (*ImportResult, error) {
	s.logger.Info("Starting file import", "filename", req.FileName, "user_id", req.UserID)

	ext := strings.ToLower(filepath.Ext(req.FileName))

	switch ext {
	case ".csv":
		return s.ImportCSV(ctx, reader, req)
	case ".xlsx":
		return s.ImportExcel(ctx, reader, req)
	default:
		return nil, fmt.Errorf("%w: %q (expected .csv or .xlsx)", ErrUnsupportedFormat, ext)
	}
}

func (s *importService) ImportCSV(ctx context.Context, reader io.Reader, req ImportRequest) (*ImportResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	return s.runImport(ctx, req, "csv", int64(len(data)), func(parser *QuestionParser) (*ParseOutcome, error) {
		return parser.ParseCSV(string(data))
	})
}

func (s *importService) ImportExcel(ctx context.Context, reader io.Reader, req ImportRequest) (*ImportResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	return s.runImport(ctx, req, "xlsx", int64(len(data)), func(parser *QuestionParser) (*ParseOutcome, error) {
		rows, err := readExcelRows(data)
		if err != nil {
			return nil, err
		}
		return parser.ParseRows(rows)
	})
}

func (s *importService) runImport(
	ctx context.Context,
	req ImportRequest,
	fileType string,
	size int64,
	parse func(parser *QuestionParser) (*ParseOutcome, error),
) (*ImportResult, error) {
	if req.FileSize == 0 {
		req.FileSize = size
	}

	now := time.Now().UTC()
	job := &models.ImportJob{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		FileName:  req.FileName,
		FileType:  fileType,
		FileSize:  req.FileSize,
		Status:    models.ImportProcessing,
		StartedAt: &now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}
	s.reportProgress(ctx, job)

	logger := s.logger.With("job_id", job.ID, "filename", req.FileName)
	parser := NewQuestionParser(logger, s.validator)

	result := &ImportResult{
		JobID:    job.ID,
		FileName: req.FileName,
	}

	outcome, err := parse(parser)
	switch {
	case errors.Is(err, ErrNoDataRows):
		// A header-only file is a completed run that found nothing to import.
		logger.Info("File has no data rows")
		result.Status = models.ImportNoValidQuestions
		result.Message = MessageNoValidQuestions
		s.finish(ctx, job, result, nil)
		return result, nil
	case err != nil:
		status := models.ImportFailed
		if IsValidation(err) {
			status = models.ImportValidationFailed
		}
		logger.Warn("Import rejected", "status", status, "error", err)
		s.fail(ctx, job, status, err)
		return nil, err
	}

	result.TotalRows = outcome.TotalRows
	result.ParsedCount = len(outcome.Questions)
	result.SkippedCount = len(outcome.Skipped)
	result.Skipped = outcome.Skipped

	if len(outcome.Questions) == 0 {
		result.Status = models.ImportNoValidQuestions
		result.Message = MessageNoValidQuestions
		s.finish(ctx, job, result, nil)
		return result, nil
	}

	submission, submitErr := s.submitter.Submit(ctx, job.ID, outcome.Questions)
	result.SuccessCount = submission.SuccessCount
	result.FailureCount = submission.FailureCount
	result.Failures = submission.Failures

	switch {
	case submission.Cancelled:
		result.Status = models.ImportCancelled
	case submission.SuccessCount == 0:
		result.Status = models.ImportFailed
	default:
		result.Status = models.ImportCompleted
	}
	result.Message = result.Summary()

	s.finish(ctx, job, result, submitErr)

	logger.Info("Import finished",
		"status", result.Status,
		"total_rows", result.TotalRows,
		"parsed", result.ParsedCount,
		"skipped", result.SkippedCount,
		"success_count", result.SuccessCount,
		"failure_count", result.FailureCount)

	if submitErr != nil {
		return result, submitErr
	}
	return result, nil
}

// finish records the final state of a run that produced a result. It uses a
// context detached from cancellation so an abandoned request still leaves an
// accurate job record.
func (s *importService) finish(ctx context.Context, job *models.ImportJob, result *ImportResult, cause error) {
	ctx = context.WithoutCancel(ctx)
	completed := time.Now().UTC()

	job.Status = result.Status
	job.TotalRows = result.TotalRows
	job.ParsedCount = result.ParsedCount
	job.SkippedCount = result.SkippedCount
	job.SuccessCount = result.SuccessCount
	job.FailureCount = result.FailureCount
	job.Errors = toJSON(result.Skipped)
	job.Failures = toJSON(result.Failures)
	job.Summary = result.Summary()
	job.CompletedAt = &completed
	job.Progress = 100
	if result.ParsedCount > 0 {
		job.Progress = (result.SuccessCount + result.FailureCount) * 100 / result.ParsedCount
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		s.logger.Error("Failed to update import job", "job_id", job.ID, "error", err)
	}

	s.reportProgress(ctx, job)

	data := eventData(job)
	event := events.NewImportCompletedEvent(data)
	if result.Status == models.ImportFailed || result.Status == models.ImportCancelled {
		if cause == nil {
			cause = errors.New(job.Summary)
		}
		event = events.NewImportFailedEvent(data, cause)
	}
	s.publish(ctx, event)
}

func (s *importService) fail(ctx context.Context, job *models.ImportJob, status models.ImportJobStatus, cause error) {
	ctx = context.WithoutCancel(ctx)
	completed := time.Now().UTC()

	job.Status = status
	job.Summary = cause.Error()
	job.CompletedAt = &completed

	if err := s.jobs.Update(ctx, job); err != nil {
		s.logger.Error("Failed to update import job", "job_id", job.ID, "error", err)
	}

	s.reportProgress(ctx, job)
	s.publish(ctx, events.NewImportFailedEvent(eventData(job), cause))
}

func (s *importService) reportProgress(ctx context.Context, job *models.ImportJob) {
	if s.progress == nil {
		return
	}
	if err := s.progress.ReportProgress(ctx, jobProgress(job)); err != nil {
		s.logger.Warn("Failed to report import progress", "job_id", job.ID, "error", err)
	}
}

func (s *importService) publish(ctx context.Context, event *events.ImportEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishImportEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish import event", "job_id", event.Data.JobID, "type", event.Type, "error", err)
	}
}

// ===== DIAGNOSTICS =====

// HeaderDiagnostics describes how the header row of a file was understood.
type HeaderDiagnostics struct {
	FileName         string              `json:"file_name"`
	Headers          []string            `json:"headers"`
	Mapping          HeaderMap           `json:"mapping"`
	Missing          []string            `json:"missing"`
	AcceptedVariants map[string][]string `json:"accepted_variants"`
	DataRows         int                 `json:"data_rows"`
	Valid            bool                `json:"valid"`
}

// Report renders the diagnostics as plain text.
func (d *HeaderDiagnostics) Report() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Detected headers: %q\n", d.Headers)
	b.WriteString("Column mapping:\n")
	for _, f := range QuestionFields {
		idx := d.Mapping.Index(f.Field)
		switch {
		case idx >= 0:
			fmt.Fprintf(&b, "  %-15s -> column %d (%q)\n", f.Field, idx, d.Headers[idx])
		case f.Required:
			fmt.Fprintf(&b, "  %-15s -> MISSING\n", f.Field)
		default:
			fmt.Fprintf(&b, "  %-15s -> not present, default used\n", f.Field)
		}
	}
	fmt.Fprintf(&b, "Data rows: %d\n", d.DataRows)

	if !d.Valid {
		fmt.Fprintf(&b, "Missing required columns: %s\n", strings.Join(d.Missing, ", "))
	}
	b.WriteString("Accepted column names:\n")
	for _, field := range requiredFieldNames(QuestionFields) {
		fmt.Fprintf(&b, "  %s: %s\n", field, strings.Join(d.AcceptedVariants[field], ", "))
	}

	return b.String()
}

// InspectFile reads only the header of a file and reports the column
// mapping. It never creates a job or submits anything.
func (s *importService) InspectFile(ctx context.Context, reader io.Reader, filename string) (*HeaderDiagnostics, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	var rows [][]string
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		rows, err = readExcelRows(data)
		if err != nil {
			return nil, err
		}
	case ".csv", "":
		rows = csvRows(string(data))
	default:
		return nil, fmt.Errorf("%w: %q (expected .csv or .xlsx)", ErrUnsupportedFormat, ext)
	}

	if len(rows) == 0 || isBlankRow(rows[0]) {
		return nil, ErrEmptyFile
	}

	headers := trimCells(rows[0])
	mapping := ResolveHeaders(headers, QuestionFields)
	missing := mapping.Missing(QuestionFields)

	diagnostics := &HeaderDiagnostics{
		FileName:         filename,
		Headers:          headers,
		Mapping:          mapping,
		Missing:          missing,
		AcceptedVariants: acceptedVariants(QuestionFields, requiredFieldNames(QuestionFields)),
		DataRows:         countDataRows(rows),
		Valid:            len(missing) == 0,
	}

	s.logger.Debug("Inspected file headers",
		"filename", filename,
		"headers", len(headers),
		"missing", missing)

	return diagnostics, nil
}

// ===== EXPORT OPERATIONS =====

var templateHeaders = []string{
	"Question", "Option A", "Option B", "Option C", "Option D", "Correct Answer",
	"Subject", "Course", "Difficulty", "Marks", "Explanation",
}

var templateSample = []string{
	"What is the capital of France?", "Berlin", "Madrid", "Paris", "Rome", "C",
	"Geography", "General Course", "Easy", "1", "Paris has been the capital of France since 987.",
}

// ExportTemplate returns an example import file in csv or xlsx format.
func (s *importService) ExportTemplate(ctx context.Context, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "", "csv":
		return templateCSV()
	case "xlsx":
		return templateExcel()
	default:
		return nil, fmt.Errorf("%w: %q (expected csv or xlsx)", ErrUnsupportedFormat, format)
	}
}

func templateCSV() ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(templateHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.Write(templateSample); err != nil {
		return nil, fmt.Errorf("failed to write CSV row: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func templateExcel() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(templateSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for rowIndex, row := range [][]string{templateHeaders, templateSample} {
		for colIndex, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(templateSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return buf.Bytes(), nil
}

// ===== JOB MANAGEMENT =====

func (s *importService) GetImportJob(ctx context.Context, jobID string) (*models.ImportJob, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrImportJobNotFound
		}
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}
	return job, nil
}

func (s *importService) ListImportJobs(ctx context.Context, userID string, filters repositories.ImportJobFilters) ([]*models.ImportJob, int64, error) {
	jobs, total, err := s.jobs.ListByUser(ctx, userID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list import jobs: %w", err)
	}
	return jobs, total, nil
}

// GetImportProgress prefers the live snapshot and falls back to the stored
// job once the snapshot has expired.
func (s *importService) GetImportProgress(ctx context.Context, jobID string) (*models.ImportProgress, error) {
	if s.progress != nil {
		progress, err := s.progress.GetProgress(ctx, jobID)
		if err == nil {
			return progress, nil
		}
		s.logger.Debug("No live progress, falling back to job record", "job_id", jobID, "error", err)
	}

	job, err := s.GetImportJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return jobProgress(job), nil
}

// ===== HELPERS =====

// readExcelRows returns the cells of the first sheet. excelize omits
// trailing empty cells, so data rows are padded to the header width.
func readExcelRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid xlsx workbook: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	width := len(rows[0])
	for i := 1; i < len(rows); i++ {
		if isBlankRow(rows[i]) {
			continue
		}
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}

	for len(rows) > 1 && isBlankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}

	return rows, nil
}

// countDataRows counts the non-blank rows below the header.
func countDataRows(rows [][]string) int {
	count := 0
	for _, row := range rows[1:] {
		if !isBlankRow(row) {
			count++
		}
	}
	return count
}

func jobProgress(job *models.ImportJob) *models.ImportProgress {
	updated := job.UpdatedAt
	if job.CompletedAt != nil {
		updated = *job.CompletedAt
	}
	return &models.ImportProgress{
		JobID:        job.ID,
		Status:       job.Status,
		Total:        job.ParsedCount,
		Processed:    job.SuccessCount + job.FailureCount,
		SuccessCount: job.SuccessCount,
		FailureCount: job.FailureCount,
		UpdatedAt:    updated,
	}
}

func eventData(job *models.ImportJob) events.ImportEventData {
	return events.ImportEventData{
		JobID:        job.ID,
		UserID:       job.UserID,
		FileName:     job.FileName,
		Status:       job.Status,
		TotalRows:    job.TotalRows,
		ParsedCount:  job.ParsedCount,
		SkippedCount: job.SkippedCount,
		SuccessCount: job.SuccessCount,
		FailureCount: job.FailureCount,
	}
}

func toJSON(value interface{}) datatypes.JSON {
	data, err := json.Marshal(value)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(data)
}
