package domain

import "time"

// ChecklistSummary is the rollup of ItemRecords into per-checklist totals
// for one (user, checklist, task code) tuple. TotalItems counts the records
// submitted so far under the task code, not the template's full item count.
//
// Version is an optimistic concurrency token: every write increments it, and
// the aggregator refuses to overwrite a row whose version changed since it
// was read.
type ChecklistSummary struct {
	ID            string    `gorm:"type:text;primaryKey" json:"id"`
	UserID        string    `gorm:"type:text;not null;index:idx_checklist_summaries_user" json:"user_id"`
	ChecklistID   string    `gorm:"type:text;not null" json:"checklist_id"`
	TaskCode      string    `gorm:"type:text;not null;index:idx_checklist_summaries_task" json:"task_code"`
	CommitMessage string    `gorm:"type:text" json:"commit_message,omitempty"`
	TotalItems    int       `gorm:"default:0" json:"total_items"`
	PassedItems   int       `gorm:"default:0" json:"passed_items"`
	Version       int       `gorm:"default:0" json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for ChecklistSummary.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (ChecklistSummary) TableName() string {
	return "checklist_summaries"
}

// CategorySummary is the rollup of ChecklistSummaries into per-category
// totals for one (user, category, task code) tuple. Items holds the ids of
// the checklist summaries that were folded into the totals; it exists for UI
// fan-out, not for aggregation correctness.
type CategorySummary struct {
	ID            string      `gorm:"type:text;primaryKey" json:"id"`
	UserID        string      `gorm:"type:text;not null;index:idx_category_summaries_user" json:"user_id"`
	CategoryID    string      `gorm:"type:text;not null" json:"category_id"`
	TaskCode      string      `gorm:"type:text;not null;index:idx_category_summaries_task" json:"task_code"`
	CommitMessage string      `gorm:"type:text" json:"commit_message,omitempty"`
	TotalItems    int         `gorm:"default:0" json:"total_items"`
	PassedItems   int         `gorm:"default:0" json:"passed_items"`
	Items         StringArray `gorm:"type:text" json:"items"`
	Version       int         `gorm:"default:0" json:"version"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName returns the database table name for CategorySummary.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (CategorySummary) TableName() string {
	return "category_summaries"
}
