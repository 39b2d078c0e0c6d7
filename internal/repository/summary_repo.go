package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs-quantt/checklist-api/internal/domain"
	"gorm.io/gorm"
)

// ErrVersionConflict is returned when a summary upsert loses an optimistic
// concurrency race: the row's version changed between read and write.
var ErrVersionConflict = errors.New("summary version conflict")

// SummaryRepository handles checklist and category summary persistence.
//
// Both summary kinds carry a version column. A write is only applied when
// the caller's expected version still matches the stored row, which turns a
// concurrent lost-update into a detectable ErrVersionConflict the caller can
// retry with fresh reads.
type SummaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository creates a new SummaryRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *SummaryRepository: repository instance bound to db.
func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// GetChecklistSummary retrieves a checklist summary by its deterministic ID.
// Returns (nil, nil) when no row exists yet.
func (r *SummaryRepository) GetChecklistSummary(ctx context.Context, id string) (*domain.ChecklistSummary, error) {
	var s domain.ChecklistSummary
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// UpsertChecklistSummary writes a checklist summary guarded by the expected
// version. Pass expectedVersion 0 for a row that did not exist at read time.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - s: summary to persist; Version is set to expectedVersion+1 on success.
//   - expectedVersion: version observed when the summary was read.
// Returns:
//   - error: ErrVersionConflict if the row changed underneath, otherwise the
//     underlying database error.
func (r *SummaryRepository) UpsertChecklistSummary(ctx context.Context, s *domain.ChecklistSummary, expectedVersion int) error {
	s.Version = expectedVersion + 1
	if expectedVersion == 0 {
		err := r.db.WithContext(ctx).Create(s).Error
		if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrVersionConflict
		}
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&domain.ChecklistSummary{}).
		Where("id = ? AND version = ?", s.ID, expectedVersion).
		Updates(map[string]interface{}{
			"total_items":    s.TotalItems,
			"passed_items":   s.PassedItems,
			"commit_message": s.CommitMessage,
			"version":        s.Version,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// ListChecklistSummaries retrieves the summaries for a user and task code,
// optionally restricted to a checklist-id set.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: user ID.
//   - taskCode: task code.
//   - checklistIDs: restricts results when non-empty.
// Returns:
//   - []domain.ChecklistSummary: matching summaries.
//   - error: non-nil if the query fails.
func (r *SummaryRepository) ListChecklistSummaries(ctx context.Context, userID, taskCode string, checklistIDs []string) ([]domain.ChecklistSummary, error) {
	query := r.db.WithContext(ctx).Where("user_id = ? AND task_code = ?", userID, taskCode)
	if len(checklistIDs) > 0 {
		query = query.Where("checklist_id IN ?", checklistIDs)
	}
	var sums []domain.ChecklistSummary
	if err := query.Order("checklist_id ASC").Find(&sums).Error; err != nil {
		return nil, fmt.Errorf("failed to list checklist summaries: %w", err)
	}
	return sums, nil
}

// GetCategorySummary retrieves a category summary by its deterministic ID.
// Returns (nil, nil) when no row exists yet.
func (r *SummaryRepository) GetCategorySummary(ctx context.Context, id string) (*domain.CategorySummary, error) {
	var s domain.CategorySummary
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// UpsertCategorySummary writes a category summary guarded by the expected
// version, mirroring UpsertChecklistSummary.
func (r *SummaryRepository) UpsertCategorySummary(ctx context.Context, s *domain.CategorySummary, expectedVersion int) error {
	s.Version = expectedVersion + 1
	if expectedVersion == 0 {
		err := r.db.WithContext(ctx).Create(s).Error
		if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrVersionConflict
		}
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&domain.CategorySummary{}).
		Where("id = ? AND version = ?", s.ID, expectedVersion).
		Updates(map[string]interface{}{
			"total_items":    s.TotalItems,
			"passed_items":   s.PassedItems,
			"commit_message": s.CommitMessage,
			"items":          s.Items,
			"version":        s.Version,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// ListCategorySummaries retrieves the category summaries for a user and task code.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: user ID.
//   - taskCode: task code.
// Returns:
//   - []domain.CategorySummary: matching summaries.
//   - error: non-nil if the query fails.
func (r *SummaryRepository) ListCategorySummaries(ctx context.Context, userID, taskCode string) ([]domain.CategorySummary, error) {
	var sums []domain.CategorySummary
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_code = ?", userID, taskCode).
		Order("category_id ASC").
		Find(&sums).Error; err != nil {
		return nil, err
	}
	return sums, nil
}

// ListAllCategorySummaries retrieves category summaries across all users,
// optionally filtered by task code. Used by the admin overview and export.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - taskCode: restricts results when non-empty.
// Returns:
//   - []domain.CategorySummary: matching summaries.
//   - error: non-nil if the query fails.
func (r *SummaryRepository) ListAllCategorySummaries(ctx context.Context, taskCode string) ([]domain.CategorySummary, error) {
	query := r.db.WithContext(ctx).Model(&domain.CategorySummary{})
	if taskCode != "" {
		query = query.Where("task_code = ?", taskCode)
	}
	var sums []domain.CategorySummary
	if err := query.Order("user_id ASC, category_id ASC").Find(&sums).Error; err != nil {
		return nil, err
	}
	return sums, nil
}
