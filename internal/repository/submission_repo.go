package repository

import (
	"context"

	"github.com/rs-quantt/checklist-api/internal/domain"
	"gorm.io/gorm"
)

// SubmissionRepository handles the pipeline audit records.
type SubmissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new SubmissionRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *SubmissionRepository: repository instance bound to db.
func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a new submission record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sub: submission record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *SubmissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// UpdateStatus advances a submission's pipeline status.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: submission ID.
//   - status: new status.
//   - errorLog: failure detail; empty for successful transitions.
// Returns:
//   - error: non-nil if the update fails.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus, errorLog string) error {
	updates := map[string]interface{}{"status": status}
	if errorLog != "" {
		updates["error_log"] = errorLog
	}
	return r.db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// GetByID retrieves a submission by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: submission ID.
// Returns:
//   - *domain.Submission: submission record if found.
//   - error: non-nil if lookup fails.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	var sub domain.Submission
	if err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// List retrieves submissions ordered by recency with pagination.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Submission: matching records.
//   - error: non-nil if the query fails.
func (r *SubmissionRepository) List(ctx context.Context, limit, offset int) ([]domain.Submission, error) {
	var subs []domain.Submission
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// Count counts all submission records.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: total number of records.
//   - error: non-nil if the query fails.
func (r *SubmissionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Submission{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts submissions by pipeline status.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - status: submission status to count.
// Returns:
//   - int64: number of matching records.
//   - error: non-nil if the query fails.
func (r *SubmissionRepository) CountByStatus(ctx context.Context, status domain.SubmissionStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Submission{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
