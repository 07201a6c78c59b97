package events

import (
	"time"

	"github.com/SAP-F-2025/question-import-service/internal/models"
	"github.com/google/uuid"
)

// EventType represents the kind of import event
type EventType string

const (
	EventImportCompleted EventType = "import.completed"
	EventImportFailed    EventType = "import.failed"
)

const (
	eventSource  = "question-import-service"
	eventVersion = "1.0"
)

// ImportEvent is the envelope published for every finished import run
type ImportEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      ImportEventData        `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type ImportEventData struct {
	JobID        string                 `json:"job_id"`
	UserID       string                 `json:"user_id"`
	FileName     string                 `json:"file_name"`
	Status       models.ImportJobStatus `json:"status"`
	TotalRows    int                    `json:"total_rows"`
	ParsedCount  int                    `json:"parsed_count"`
	SkippedCount int                    `json:"skipped_count"`
	SuccessCount int                    `json:"success_count"`
	FailureCount int                    `json:"failure_count"`
	Error        string                 `json:"error,omitempty"`
}

// Event factory functions

func NewImportCompletedEvent(data ImportEventData) *ImportEvent {
	return newImportEvent(EventImportCompleted, data)
}

func NewImportFailedEvent(data ImportEventData, cause error) *ImportEvent {
	if cause != nil {
		data.Error = cause.Error()
	}
	return newImportEvent(EventImportFailed, data)
}

func newImportEvent(eventType EventType, data ImportEventData) *ImportEvent {
	return &ImportEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}
