package cache

import (
	"context"
	"time"

	"github.com/SAP-F-2025/question-import-service/internal/models"
)

const (
	progressKeyPrefix = "import:progress:"
	ProgressTTL       = 24 * time.Hour
)

// ProgressTracker stores the live progress of import jobs.
type ProgressTracker struct {
	cache CacheService
	ttl   time.Duration
}

func NewProgressTracker(cache CacheService) *ProgressTracker {
	return &ProgressTracker{cache: cache, ttl: ProgressTTL}
}

func progressKey(jobID string) string {
	return progressKeyPrefix + jobID
}

func (t *ProgressTracker) ReportProgress(ctx context.Context, progress *models.ImportProgress) error {
	return t.cache.Set(ctx, progressKey(progress.JobID), progress, t.ttl)
}

// GetProgress returns ErrCacheMiss for unknown or expired jobs.
func (t *ProgressTracker) GetProgress(ctx context.Context, jobID string) (*models.ImportProgress, error) {
	var progress models.ImportProgress
	if err := t.cache.Get(ctx, progressKey(jobID), &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}
