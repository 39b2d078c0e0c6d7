package repository

import (
	"context"
	"fmt"

	"github.com/rs-quantt/checklist-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TemplateRepository handles checklist template and item definition reads.
// Templates are authored externally; the only write path is the seed tool.
type TemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new TemplateRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *TemplateRepository: repository instance bound to db.
func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// GetByID retrieves a checklist template with its items.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: template ID.
// Returns:
//   - *domain.ChecklistTemplate: template record if found.
//   - error: non-nil if lookup fails.
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*domain.ChecklistTemplate, error) {
	var tpl domain.ChecklistTemplate
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&tpl, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

// List retrieves all checklist templates without their items.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.ChecklistTemplate: template records.
//   - error: non-nil if the query fails.
func (r *TemplateRepository) List(ctx context.Context) ([]domain.ChecklistTemplate, error) {
	var tpls []domain.ChecklistTemplate
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&tpls).Error; err != nil {
		return nil, err
	}
	return tpls, nil
}

// GetItemIDs retrieves the authoritative item-id list for a template.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - checklistID: template ID.
// Returns:
//   - []string: item IDs belonging to the template.
//   - error: non-nil if the query fails.
func (r *TemplateRepository) GetItemIDs(ctx context.Context, checklistID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&domain.ChecklistItem{}).
		Where("checklist_id = ?", checklistID).
		Order("sort_order ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get item ids for checklist %s: %w", checklistID, err)
	}
	return ids, nil
}

// CountItems counts the item definitions belonging to a template.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - checklistID: template ID.
// Returns:
//   - int64: number of item definitions.
//   - error: non-nil if the query fails.
func (r *TemplateRepository) CountItems(ctx context.Context, checklistID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.ChecklistItem{}).
		Where("checklist_id = ?", checklistID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if a checklist template exists.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: template ID.
// Returns:
//   - bool: true if a record exists.
//   - error: non-nil if the lookup fails.
func (r *TemplateRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.ChecklistTemplate{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Upsert creates or updates a template and its items. Used by the seed tool.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tpl: template record including item definitions.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *TemplateRepository) Upsert(ctx context.Context, tpl *domain.ChecklistTemplate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := tpl.Items
		tpl.Items = nil
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(tpl).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ChecklistID = tpl.ID
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&items[i]).Error; err != nil {
				return err
			}
		}
		tpl.Items = items
		return nil
	})
}
