package domain

import "time"

// SubmissionStatus tracks how far a submission progressed through the
// write pipeline. Each stage advances the status after it commits, so a
// failed submission records exactly which stage it died in.
type SubmissionStatus string

const (
	SubmissionStatusPending             SubmissionStatus = "pending"
	SubmissionStatusItemsWritten        SubmissionStatus = "items_written"
	SubmissionStatusChecklistAggregated SubmissionStatus = "checklist_aggregated"
	SubmissionStatusCompleted           SubmissionStatus = "completed"
	SubmissionStatusFailed              SubmissionStatus = "failed"
)

// Submission is the audit record for one run of the submission pipeline.
type Submission struct {
	ID          string           `gorm:"type:text;primaryKey" json:"id"`
	UserID      string           `gorm:"type:text;not null;index" json:"user_id"`
	ChecklistID string           `gorm:"type:text;not null" json:"checklist_id"`
	CategoryID  string           `gorm:"type:text;not null" json:"category_id"`
	TaskCode    string           `gorm:"type:text;not null;index" json:"task_code"`
	Status      SubmissionStatus `gorm:"type:text;default:pending" json:"status"`
	ItemCount   int              `gorm:"default:0" json:"item_count"`
	ErrorLog    string           `gorm:"type:text" json:"error_log,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// TableName returns the database table name for Submission.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Submission) TableName() string {
	return "submissions"
}
