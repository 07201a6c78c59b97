package models

import "time"

// ImportProgress is the live view of a running import, kept in the cache.
type ImportProgress struct {
	JobID        string          `json:"job_id"`
	Status       ImportJobStatus `json:"status"`
	Total        int             `json:"total"`
	Processed    int             `json:"processed"`
	SuccessCount int             `json:"success_count"`
	FailureCount int             `json:"failure_count"`
	BatchesDone  int             `json:"batches_done"`
	BatchesTotal int             `json:"batches_total"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Percent returns processed/total as 0-100. A run that has not counted its
// questions yet is at 0.
func (p *ImportProgress) Percent() int {
	if p.Total == 0 {
		if p.Status == ImportPending || p.Status == ImportProcessing {
			return 0
		}
		return 100
	}
	return p.Processed * 100 / p.Total
}

type TemplateRequest struct {
	Format string `form:"format" json:"format" validate:"omitempty,oneof=csv xlsx"`
}
