package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/question-import-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// File level errors, all fatal for an import
	ErrEmptyFile         = errors.New("file is empty: a header row is required")
	ErrNoDataRows        = errors.New("file must have a header row and at least one data row")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrUnreadableFile    = errors.New("file could not be read")
	ErrNoSheets          = errors.New("workbook has no sheets")

	// Import job errors
	ErrImportJobNotFound = errors.New("import job not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors
type HeaderError = apperrors.HeaderError

// SubmissionError is returned by a QuestionCreator when the question API
// rejected a question or could not be reached.
type SubmissionError struct {
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message"`
}

func (se *SubmissionError) Error() string {
	if se.StatusCode > 0 {
		return fmt.Sprintf("question api rejected question (status %d): %s", se.StatusCode, se.Message)
	}
	return fmt.Sprintf("question api rejected question: %s", se.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrImportJobNotFound)
}

// IsValidation checks if error represents a problem with the uploaded file
// that the user can fix.
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrNoDataRows) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrUnreadableFile) ||
		errors.Is(err, ErrNoSheets) {
		return true
	}
	var ve apperrors.ValidationErrors
	var single *apperrors.ValidationError
	var he *apperrors.HeaderError
	return errors.As(err, &ve) || errors.As(err, &single) || errors.As(err, &he)
}

// AsHeaderError extracts a header rejection from err.
func AsHeaderError(err error) (*HeaderError, bool) {
	var he *apperrors.HeaderError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}
