package domain

import "time"

// Category groups zero or more checklist templates for review dashboards.
// Like templates, categories are read-only inputs owned by content authoring.
type Category struct {
	ID           string      `gorm:"type:text;primaryKey" json:"id"`
	Title        string      `gorm:"type:text;not null" json:"title"`
	Description  string      `gorm:"type:text" json:"description,omitempty"`
	ChecklistIDs StringArray `gorm:"type:text" json:"checklist_ids"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName returns the database table name for Category.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Category) TableName() string {
	return "categories"
}
