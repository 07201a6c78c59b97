package models

import (
	"time"

	"gorm.io/datatypes"
)

type ImportJobStatus string

const (
	ImportPending          ImportJobStatus = "pending"
	ImportProcessing       ImportJobStatus = "processing"
	ImportCompleted        ImportJobStatus = "completed"
	ImportFailed           ImportJobStatus = "failed"
	ImportValidationFailed ImportJobStatus = "validation_failed"
	ImportNoValidQuestions ImportJobStatus = "no_valid_questions"
	ImportCancelled        ImportJobStatus = "cancelled"
)

// ImportJob is the audit record of one import run.
type ImportJob struct {
	ID     string `json:"id" gorm:"primaryKey;size:36"` // UUID
	UserID string `json:"user_id" gorm:"not null;index;size:255"`

	// File info
	FileName string `json:"file_name" gorm:"not null;size:255"`
	FileType string `json:"file_type" gorm:"not null;size:20"` // csv, xlsx
	FileSize int64  `json:"file_size" gorm:"not null"`

	// Job status
	Status   ImportJobStatus `json:"status" gorm:"size:32;index"`
	Progress int             `json:"progress"` // 0-100

	// Processing info
	TotalRows    int `json:"total_rows"`
	ParsedCount  int `json:"parsed_count"`
	SkippedCount int `json:"skipped_count"`
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`

	// Results
	Errors   datatypes.JSON `json:"errors" gorm:"type:jsonb"`   // []ImportValidationError
	Failures datatypes.JSON `json:"failures" gorm:"type:jsonb"` // []SubmissionFailure
	Summary  string         `json:"summary" gorm:"type:text"`

	// Timestamps
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Row skip codes
const (
	SkipEmptyLine      = "empty_line"
	SkipTooFewColumns  = "too_few_columns"
	SkipMissingField   = "missing_required_field"
	SkipInvalidAnswer  = "invalid_correct_answer"
	SkipFailedValidity = "failed_validation"
)

// ImportValidationError explains why a data row was skipped.
type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}

// SubmissionFailure records one question the question API did not accept.
type SubmissionFailure struct {
	Row      int    `json:"row"`
	Question string `json:"question"`
	Error    string `json:"error"`
}
