package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SAP-F-2025/question-import-service/internal/models"
)

// MemoryImportJobRepository keeps jobs in process memory. It backs the CLI,
// where no database is configured.
type MemoryImportJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]models.ImportJob
}

func NewMemoryImportJobRepository() *MemoryImportJobRepository {
	return &MemoryImportJobRepository{jobs: make(map[string]models.ImportJob)}
}

func (r *MemoryImportJobRepository) Create(ctx context.Context, job *models.ImportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	r.jobs[job.ID] = *job
	return nil
}

func (r *MemoryImportJobRepository) Update(ctx context.Context, job *models.ImportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.jobs[job.ID]
	if !ok {
		return ErrNotFound
	}
	job.CreatedAt = existing.CreatedAt
	job.UpdatedAt = time.Now().UTC()
	r.jobs[job.ID] = *job
	return nil
}

func (r *MemoryImportJobRepository) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &job, nil
}

func (r *MemoryImportJobRepository) ListByUser(ctx context.Context, userID string, filters ImportJobFilters) ([]*models.ImportJob, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*models.ImportJob
	for _, job := range r.jobs {
		if job.UserID != userID {
			continue
		}
		if filters.Status != nil && job.Status != *filters.Status {
			continue
		}
		jobCopy := job
		matched = append(matched, &jobCopy)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filters.Offset >= len(matched) {
		return []*models.ImportJob{}, total, nil
	}
	end := filters.Offset + filters.limit()
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filters.Offset:end], total, nil
}
