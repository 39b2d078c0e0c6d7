package domain

import "time"

// ItemStatus represents the submitted state of a single checklist item.
// Values include ItemStatusDone, ItemStatusIncomplete, ItemStatusNA, and
// ItemStatusEmpty.
type ItemStatus string

const (
	ItemStatusDone       ItemStatus = "done"
	ItemStatusIncomplete ItemStatus = "incomplete"
	ItemStatusNA         ItemStatus = "na"
	ItemStatusEmpty      ItemStatus = "empty"
)

// Valid reports whether s is one of the known item statuses.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusDone, ItemStatusIncomplete, ItemStatusNA, ItemStatusEmpty:
		return true
	}
	return false
}

// RequiresNote reports whether a non-empty note must accompany this status.
func (s ItemStatus) RequiresNote() bool {
	return s == ItemStatusIncomplete || s == ItemStatusNA
}

// ItemRecord is the finest-grained persisted fact: one user's status and
// note for one checklist item under one task code. The primary key is
// derived from (user_id, item_id, task_code), so a resubmission overwrites
// the existing row instead of inserting a duplicate.
type ItemRecord struct {
	ID          string     `gorm:"type:text;primaryKey" json:"id"`
	UserID      string     `gorm:"type:text;not null;index:idx_item_records_key,unique" json:"user_id"`
	ItemID      string     `gorm:"type:text;not null;index:idx_item_records_key,unique" json:"item_id"`
	TaskCode    string     `gorm:"type:text;not null;index:idx_item_records_key,unique" json:"task_code"`
	ChecklistID string     `gorm:"type:text;not null;index:idx_item_records_checklist" json:"checklist_id"`
	Status      ItemStatus `gorm:"type:text;not null;default:empty" json:"status"`
	Note        string     `gorm:"type:text" json:"note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name for ItemRecord.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (ItemRecord) TableName() string {
	return "item_records"
}
