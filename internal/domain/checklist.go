package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Priority represents the importance of a checklist item.
// Values include PriorityHigh, PriorityMedium, and PriorityLow.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the slice.
//   - error: non-nil if marshaling fails.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// ChecklistTemplate represents an authored checklist definition.
// Templates are read-only inputs for the submission pipeline; they are
// written only by the seed tool.
type ChecklistTemplate struct {
	ID          string          `gorm:"type:text;primaryKey" json:"id"`
	Title       string          `gorm:"type:text;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Items       []ChecklistItem `gorm:"foreignKey:ChecklistID" json:"items,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName returns the database table name for ChecklistTemplate.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (ChecklistTemplate) TableName() string {
	return "checklist_templates"
}

// ChecklistItem represents one item definition inside a checklist template.
type ChecklistItem struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	ChecklistID string    `gorm:"type:text;not null;index:idx_checklist_items_checklist" json:"checklist_id"`
	Label       string    `gorm:"type:text;not null" json:"label"`
	Priority    Priority  `gorm:"type:text;default:medium" json:"priority"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for ChecklistItem.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (ChecklistItem) TableName() string {
	return "checklist_items"
}
