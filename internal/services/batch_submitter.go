package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/question-import-service/internal/models"
)

// Default batch policy values
const (
	DefaultBatchSize       = 10
	DefaultInterBatchDelay = 500 * time.Millisecond
	DefaultRequestTimeout  = 30 * time.Second
)

// QuestionCreator creates a single question on the question API.
// A nil error means the API accepted the question.
type QuestionCreator interface {
	CreateQuestion(ctx context.Context, question *models.ParsedQuestion) error
}

// ProgressReporter receives progress snapshots while an import runs.
type ProgressReporter interface {
	ReportProgress(ctx context.Context, progress *models.ImportProgress) error
}

// BatchPolicy controls how parsed questions are paced towards the question API.
type BatchPolicy struct {
	BatchSize       int           `json:"batch_size"`
	InterBatchDelay time.Duration `json:"inter_batch_delay"`
	RequestTimeout  time.Duration `json:"request_timeout"`
}

func DefaultBatchPolicy() BatchPolicy {
	return BatchPolicy{
		BatchSize:       DefaultBatchSize,
		InterBatchDelay: DefaultInterBatchDelay,
		RequestTimeout:  DefaultRequestTimeout,
	}
}

func (p BatchPolicy) withDefaults() BatchPolicy {
	if p.BatchSize <= 0 {
		p.BatchSize = DefaultBatchSize
	}
	if p.InterBatchDelay < 0 {
		p.InterBatchDelay = 0
	}
	if p.RequestTimeout <= 0 {
		p.RequestTimeout = DefaultRequestTimeout
	}
	return p
}

// SubmissionResult aggregates the outcome of submitting one set of questions.
type SubmissionResult struct {
	Total        int                        `json:"total"`
	SuccessCount int                        `json:"success_count"`
	FailureCount int                        `json:"failure_count"`
	BatchSizes   []int                      `json:"batch_sizes"`
	Failures     []models.SubmissionFailure `json:"failures,omitempty"`
	Cancelled    bool                       `json:"cancelled"`
}

// Attempted is the number of questions that were sent to the API.
func (r *SubmissionResult) Attempted() int {
	return r.SuccessCount + r.FailureCount
}

// BatchSubmitter sends questions to the question API one at a time, in
// fixed-size batches with a pause between batches.
type BatchSubmitter struct {
	creator  QuestionCreator
	progress ProgressReporter
	policy   BatchPolicy
	logger   *slog.Logger

	wait func(ctx context.Context, d time.Duration) error
}

func NewBatchSubmitter(creator QuestionCreator, progress ProgressReporter, policy BatchPolicy, logger *slog.Logger) *BatchSubmitter {
	return &BatchSubmitter{
		creator:  creator,
		progress: progress,
		policy:   policy.withDefaults(),
		logger:   logger,
		wait:     sleepContext,
	}
}

// Policy returns the effective batch policy.
func (s *BatchSubmitter) Policy() BatchPolicy {
	return s.policy
}

// Submit creates every question in order. Individual failures are counted
// and never stop the run. The only error returned is the context error when
// the caller goes away; the partial result is still returned with it.
func (s *BatchSubmitter) Submit(ctx context.Context, jobID string, questions []*models.ParsedQuestion) (*SubmissionResult, error) {
	result := &SubmissionResult{Total: len(questions)}
	if len(questions) == 0 {
		return result, nil
	}

	batchSize := s.policy.BatchSize
	batchesTotal := (len(questions) + batchSize - 1) / batchSize

	s.logger.Info("Submitting questions",
		"job_id", jobID,
		"total", len(questions),
		"batch_size", batchSize,
		"batches", batchesTotal)

	for batch := 0; batch < batchesTotal; batch++ {
		if batch > 0 {
			if err := s.wait(ctx, s.policy.InterBatchDelay); err != nil {
				return s.abandon(jobID, result, err)
			}
		}

		start := batch * batchSize
		end := start + batchSize
		if end > len(questions) {
			end = len(questions)
		}

		for _, question := range questions[start:end] {
			if err := ctx.Err(); err != nil {
				return s.abandon(jobID, result, err)
			}
			s.submitOne(ctx, jobID, question, result)
		}

		result.BatchSizes = append(result.BatchSizes, end-start)
		s.report(ctx, jobID, result, batch+1, batchesTotal, models.ImportProcessing)

		s.logger.Debug("Batch submitted",
			"job_id", jobID,
			"batch", batch+1,
			"of", batchesTotal,
			"success_count", result.SuccessCount,
			"failure_count", result.FailureCount)
	}

	return result, nil
}

func (s *BatchSubmitter) submitOne(ctx context.Context, jobID string, question *models.ParsedQuestion, result *SubmissionResult) {
	reqCtx, cancel := context.WithTimeout(ctx, s.policy.RequestTimeout)
	defer cancel()

	err := s.creator.CreateQuestion(reqCtx, question)
	if err == nil {
		result.SuccessCount++
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("Question creation timed out",
			"job_id", jobID, "row", question.Row, "question", question.Preview(), "timeout", s.policy.RequestTimeout)
	} else {
		s.logger.Error("Failed to create question",
			"job_id", jobID, "row", question.Row, "question", question.Preview(), "error", err)
	}

	result.FailureCount++
	result.Failures = append(result.Failures, models.SubmissionFailure{
		Row:      question.Row,
		Question: question.Preview(),
		Error:    err.Error(),
	})
}

func (s *BatchSubmitter) abandon(jobID string, result *SubmissionResult, err error) (*SubmissionResult, error) {
	result.Cancelled = true
	s.logger.Warn("Import abandoned",
		"job_id", jobID,
		"attempted", result.Attempted(),
		"total", result.Total,
		"error", err)
	return result, err
}

func (s *BatchSubmitter) report(ctx context.Context, jobID string, result *SubmissionResult, batchesDone, batchesTotal int, status models.ImportJobStatus) {
	if s.progress == nil {
		return
	}

	progress := &models.ImportProgress{
		JobID:        jobID,
		Status:       status,
		Total:        result.Total,
		Processed:    result.Attempted(),
		SuccessCount: result.SuccessCount,
		FailureCount: result.FailureCount,
		BatchesDone:  batchesDone,
		BatchesTotal: batchesTotal,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.progress.ReportProgress(ctx, progress); err != nil {
		s.logger.Warn("Failed to report import progress", "job_id", jobID, "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
