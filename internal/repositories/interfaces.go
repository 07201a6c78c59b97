package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/question-import-service/internal/models"
)

var ErrNotFound = errors.New("record not found")

// ===== SHARED FILTER STRUCTS =====

type ImportJobFilters struct {
	Status *models.ImportJobStatus `json:"status"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

// ImportJobRepository persists the audit record of every import run
type ImportJobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	Update(ctx context.Context, job *models.ImportJob) error
	GetByID(ctx context.Context, id string) (*models.ImportJob, error)
	ListByUser(ctx context.Context, userID string, filters ImportJobFilters) ([]*models.ImportJob, int64, error)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

const defaultListLimit = 20

func (f ImportJobFilters) limit() int {
	if f.Limit <= 0 || f.Limit > 100 {
		return defaultListLimit
	}
	return f.Limit
}
