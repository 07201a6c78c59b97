package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/question-import-service/internal/models"
	"github.com/SAP-F-2025/question-import-service/internal/repositories"
	"gorm.io/gorm"
)

type ImportJobPostgreSQL struct {
	db *gorm.DB
}

func NewImportJobPostgreSQL(db *gorm.DB) repositories.ImportJobRepository {
	return &ImportJobPostgreSQL{db: db}
}

func (r *ImportJobPostgreSQL) Create(ctx context.Context, job *models.ImportJob) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create import job: %w", err)
	}
	return nil
}

func (r *ImportJobPostgreSQL) Update(ctx context.Context, job *models.ImportJob) error {
	result := r.db.WithContext(ctx).
		Model(job).
		Select("*").
		Omit("id", "created_at").
		Updates(job)
	if result.Error != nil {
		return fmt.Errorf("failed to update import job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *ImportJobPostgreSQL) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	var job models.ImportJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}
	return &job, nil
}

func (r *ImportJobPostgreSQL) ListByUser(ctx context.Context, userID string, filters repositories.ImportJobFilters) ([]*models.ImportJob, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.ImportJob{}).Where("user_id = ?", userID)
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count import jobs: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var jobs []*models.ImportJob
	if err := base().Order("created_at DESC").Limit(limit).Offset(filters.Offset).Find(&jobs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list import jobs: %w", err)
	}

	return jobs, total, nil
}
