package repository

import (
	"context"
	"fmt"

	"github.com/rs-quantt/checklist-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemRecordRepository handles item record persistence. Records are keyed
// deterministically by (user_id, item_id, task_code), so every write is an
// idempotent upsert.
type ItemRecordRepository struct {
	db *gorm.DB
}

// NewItemRecordRepository creates a new ItemRecordRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ItemRecordRepository: repository instance bound to db.
func NewItemRecordRepository(db *gorm.DB) *ItemRecordRepository {
	return &ItemRecordRepository{db: db}
}

// UpsertBatch writes all records of one submission inside a single
// transaction. Either every record commits or none does, so a failed
// submission never leaves a partially written item set behind.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - records: item records to create or update.
// Returns:
//   - error: non-nil if any upsert fails; the transaction is rolled back.
func (r *ItemRecordRepository) UpsertBatch(ctx context.Context, records []domain.ItemRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range records {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&records[i]).Error; err != nil {
				return fmt.Errorf("failed to upsert item record %s: %w", records[i].ID, err)
			}
		}
		return nil
	})
}

// GetByID retrieves an item record by its deterministic ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: record ID.
// Returns:
//   - *domain.ItemRecord: record if found.
//   - error: non-nil if lookup fails.
func (r *ItemRecordRepository) GetByID(ctx context.Context, id string) (*domain.ItemRecord, error) {
	var rec domain.ItemRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListForItems retrieves the records a user submitted under a task code for
// the given item-id set.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: submitting user's ID.
//   - taskCode: task code scoping the run.
//   - itemIDs: authoritative item ids of the checklist template.
// Returns:
//   - []domain.ItemRecord: matching records.
//   - error: non-nil if the query fails.
func (r *ItemRecordRepository) ListForItems(ctx context.Context, userID, taskCode string, itemIDs []string) ([]domain.ItemRecord, error) {
	if len(itemIDs) == 0 {
		return []domain.ItemRecord{}, nil
	}
	var recs []domain.ItemRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_code = ? AND item_id IN ?", userID, taskCode, itemIDs).
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list item records: %w", err)
	}
	return recs, nil
}

// ListByUserTask retrieves every record a user submitted under a task code.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: submitting user's ID.
//   - taskCode: task code scoping the run.
// Returns:
//   - []domain.ItemRecord: matching records.
//   - error: non-nil if the query fails.
func (r *ItemRecordRepository) ListByUserTask(ctx context.Context, userID, taskCode string) ([]domain.ItemRecord, error) {
	var recs []domain.ItemRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_code = ?", userID, taskCode).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// CountForItems counts total and passed records for a (user, task, item-set)
// tuple in one query pass.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: submitting user's ID.
//   - taskCode: task code scoping the run.
//   - itemIDs: authoritative item ids of the checklist template.
// Returns:
//   - int: number of records that exist.
//   - int: subset with status done.
//   - error: non-nil if the query fails.
func (r *ItemRecordRepository) CountForItems(ctx context.Context, userID, taskCode string, itemIDs []string) (int, int, error) {
	recs, err := r.ListForItems(ctx, userID, taskCode, itemIDs)
	if err != nil {
		return 0, 0, err
	}
	total := len(recs)
	passed := 0
	for i := range recs {
		if recs[i].Status == domain.ItemStatusDone {
			passed++
		}
	}
	return total, passed, nil
}
