package repository

import (
	"context"

	"github.com/rs-quantt/checklist-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepository handles category reads and seed-time writes.
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *CategoryRepository: repository instance bound to db.
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetByID retrieves a category by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: category ID.
// Returns:
//   - *domain.Category: category record if found.
//   - error: non-nil if lookup fails.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var cat domain.Category
	if err := r.db.WithContext(ctx).First(&cat, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// List retrieves all categories.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Category: category records.
//   - error: non-nil if the query fails.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// GetChecklistIDs retrieves the member checklist-template ids of a category.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - categoryID: category ID.
// Returns:
//   - []string: member checklist template IDs.
//   - error: non-nil if lookup fails.
func (r *CategoryRepository) GetChecklistIDs(ctx context.Context, categoryID string) ([]string, error) {
	cat, err := r.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return cat.ChecklistIDs, nil
}

// Exists checks if a category exists.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: category ID.
// Returns:
//   - bool: true if a record exists.
//   - error: non-nil if the lookup fails.
func (r *CategoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Upsert creates or updates a category. Used by the seed tool.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - cat: category record to create or update.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *CategoryRepository) Upsert(ctx context.Context, cat *domain.Category) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(cat).Error
}
