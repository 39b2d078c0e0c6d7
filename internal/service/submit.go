package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs-quantt/checklist-api/internal/domain"
	"github.com/rs-quantt/checklist-api/internal/logger"
	"github.com/rs-quantt/checklist-api/internal/notify"
	"github.com/rs-quantt/checklist-api/internal/repository"
)

// SubmitService runs the checklist submission pipeline: item writes, then
// the checklist-level rollup, then the category-level rollup. The stages
// run strictly in that order because each one reads the previous stage's
// committed writes.
type SubmitService struct {
	templates   *repository.TemplateRepository
	categories  *repository.CategoryRepository
	records     *repository.ItemRecordRepository
	summaries   *repository.SummaryRepository
	submissions *repository.SubmissionRepository
	notifier    *notify.WebhookNotifier
	logger      *logger.Logger
	maxRetries  int
}

// SubmitConfig holds configuration for the submit service.
type SubmitConfig struct {
	// MaxRetries bounds recompute retries after an optimistic version
	// conflict before the submission fails with ErrAggregateConflict.
	MaxRetries int
}

// NewSubmitService creates a new submit service.
func NewSubmitService(
	templates *repository.TemplateRepository,
	categories *repository.CategoryRepository,
	records *repository.ItemRecordRepository,
	summaries *repository.SummaryRepository,
	submissions *repository.SubmissionRepository,
	notifier *notify.WebhookNotifier,
	log *logger.Logger,
	cfg *SubmitConfig,
) *SubmitService {
	maxRetries := 3
	if cfg != nil && cfg.MaxRetries > 0 {
		maxRetries = cfg.MaxRetries
	}
	return &SubmitService{
		templates:   templates,
		categories:  categories,
		records:     records,
		summaries:   summaries,
		submissions: submissions,
		notifier:    notifier,
		logger:      log,
		maxRetries:  maxRetries,
	}
}

// SubmitItem is one item's submitted state.
type SubmitItem struct {
	ItemID string            `json:"item_id" binding:"required"`
	Status domain.ItemStatus `json:"status" binding:"required"`
	Note   string            `json:"note"`
}

// SubmitRequest is the full submission payload.
type SubmitRequest struct {
	UserID        string       `json:"user_id" binding:"required"`
	ChecklistID   string       `json:"checklist_id" binding:"required"`
	CategoryID    string       `json:"category_id" binding:"required"`
	TaskCode      string       `json:"task_code" binding:"required"`
	CommitMessage string       `json:"commit_message"`
	Items         []SubmitItem `json:"items" binding:"required,min=1"`
}

// SubmitResult reports the outcome of a completed submission.
type SubmitResult struct {
	SubmissionID      string `json:"submission_id"`
	SummaryID         string `json:"summary_id"`
	CategorySummaryID string `json:"category_summary_id"`
	TotalItems        int    `json:"total_items"`
	PassedItems       int    `json:"passed_items"`
}

// Submit validates the request, then runs the three pipeline stages. A
// Submission audit row tracks how far the run progressed; any stage failure
// marks it failed with the stage's error. Resubmitting the same task code is
// safe: every write is keyed deterministically.
func (s *SubmitService) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	// Resolve external inputs before any write so an unknown checklist or
	// category aborts with nothing persisted.
	itemIDs, err := s.resolveChecklist(ctx, req.ChecklistID)
	if err != nil {
		return nil, err
	}
	if err := s.checkItemsBelong(req.Items, itemIDs); err != nil {
		return nil, err
	}
	if ok, err := s.categories.Exists(ctx, req.CategoryID); err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	} else if !ok {
		return nil, &NotFoundError{Kind: "category", ID: req.CategoryID}
	}

	sub := &domain.Submission{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		ChecklistID: req.ChecklistID,
		CategoryID:  req.CategoryID,
		TaskCode:    req.TaskCode,
		Status:      domain.SubmissionStatusPending,
		ItemCount:   len(req.Items),
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create submission record: %w", err)
	}

	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldSubmissionID: sub.ID,
		logger.FieldUserID:       req.UserID,
		logger.FieldTaskCode:     req.TaskCode,
	})
	start := time.Now()

	// Stage 1: item writer
	if err := s.writeItems(ctx, req); err != nil {
		s.fail(ctx, sub.ID, err)
		return nil, err
	}
	s.advance(ctx, sub.ID, domain.SubmissionStatusItemsWritten)

	// Stage 2: checklist aggregator
	checklistSummary, err := s.RecomputeChecklistSummary(ctx, req.UserID, req.ChecklistID, req.TaskCode, req.CommitMessage)
	if err != nil {
		s.fail(ctx, sub.ID, err)
		return nil, err
	}
	s.advance(ctx, sub.ID, domain.SubmissionStatusChecklistAggregated)

	// Stage 3: category aggregator
	categorySummary, err := s.RecomputeCategorySummary(ctx, req.UserID, req.CategoryID, req.TaskCode, req.CommitMessage)
	if err != nil {
		s.fail(ctx, sub.ID, err)
		return nil, err
	}
	s.advance(ctx, sub.ID, domain.SubmissionStatusCompleted)

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldCount:      len(req.Items),
	}).Info(ctx, "Submission completed: checklist=%s category=%s", req.ChecklistID, req.CategoryID)

	s.notifyCompletion(ctx, sub, checklistSummary, categorySummary)

	return &SubmitResult{
		SubmissionID:      sub.ID,
		SummaryID:         checklistSummary.ID,
		CategorySummaryID: categorySummary.ID,
		TotalItems:        checklistSummary.TotalItems,
		PassedItems:       checklistSummary.PassedItems,
	}, nil
}

// validate re-checks the submission server-side even though the UI already
// validates: status must be a known value and incomplete/na items need a
// non-empty note.
func (s *SubmitService) validate(req *SubmitRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return &ValidationError{Field: "user_id", Message: "must not be empty"}
	}
	if strings.TrimSpace(req.ChecklistID) == "" {
		return &ValidationError{Field: "checklist_id", Message: "must not be empty"}
	}
	if strings.TrimSpace(req.CategoryID) == "" {
		return &ValidationError{Field: "category_id", Message: "must not be empty"}
	}
	if strings.TrimSpace(req.TaskCode) == "" {
		return &ValidationError{Field: "task_code", Message: "must not be empty"}
	}
	if len(req.Items) == 0 {
		return &ValidationError{Field: "items", Message: "must contain at least one item"}
	}

	seen := make(map[string]struct{}, len(req.Items))
	for i, item := range req.Items {
		if strings.TrimSpace(item.ItemID) == "" {
			return &ValidationError{Field: fmt.Sprintf("items[%d].item_id", i), Message: "must not be empty"}
		}
		if !item.Status.Valid() {
			return &ValidationError{
				Field:   fmt.Sprintf("items[%d].status", i),
				Message: fmt.Sprintf("unknown status %q", item.Status),
			}
		}
		if item.Status.RequiresNote() && strings.TrimSpace(item.Note) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("items[%d].note", i),
				Message: fmt.Sprintf("note is required for status %q", item.Status),
			}
		}
		if _, dup := seen[item.ItemID]; dup {
			return &ValidationError{
				Field:   fmt.Sprintf("items[%d].item_id", i),
				Message: fmt.Sprintf("duplicate item %q in submission", item.ItemID),
			}
		}
		seen[item.ItemID] = struct{}{}
	}
	return nil
}

// resolveChecklist loads the template's item ids or reports NotFoundError.
func (s *SubmitService) resolveChecklist(ctx context.Context, checklistID string) ([]string, error) {
	ok, err := s.templates.Exists(ctx, checklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve checklist: %w", err)
	}
	if !ok {
		return nil, &NotFoundError{Kind: "checklist", ID: checklistID}
	}
	return s.templates.GetItemIDs(ctx, checklistID)
}

// checkItemsBelong rejects submitted items that are not part of the template.
func (s *SubmitService) checkItemsBelong(items []SubmitItem, itemIDs []string) error {
	known := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		known[id] = struct{}{}
	}
	for i, item := range items {
		if _, ok := known[item.ItemID]; !ok {
			return &ValidationError{
				Field:   fmt.Sprintf("items[%d].item_id", i),
				Message: fmt.Sprintf("item %q does not belong to the checklist", item.ItemID),
			}
		}
	}
	return nil
}

// writeItems upserts every item record of the submission in one transaction.
func (s *SubmitService) writeItems(ctx context.Context, req *SubmitRequest) error {
	records := make([]domain.ItemRecord, 0, len(req.Items))
	for _, item := range req.Items {
		records = append(records, domain.ItemRecord{
			ID:          itemRecordID(req.UserID, item.ItemID, req.TaskCode),
			UserID:      req.UserID,
			ItemID:      item.ItemID,
			TaskCode:    req.TaskCode,
			ChecklistID: req.ChecklistID,
			Status:      item.Status,
			Note:        strings.TrimSpace(item.Note),
		})
	}
	if err := s.records.UpsertBatch(ctx, records); err != nil {
		return fmt.Errorf("item write failed: %w", err)
	}
	logger.CtxDebug(ctx, "Item records written: count=%d", len(records))
	return nil
}

// RecomputeChecklistSummary recounts the user's item records for the
// checklist under the task code and upserts the checklist summary.
// TotalItems counts the records that exist, not the template's item count:
// a checklist with 10 items and 6 submitted reports total=6.
//
// Exported for the admin recovery sweep, which re-runs aggregators for
// submissions that failed between stages.
func (s *SubmitService) RecomputeChecklistSummary(ctx context.Context, userID, checklistID, taskCode, commitMessage string) (*domain.ChecklistSummary, error) {
	id := checklistSummaryID(userID, checklistID, taskCode)

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		itemIDs, err := s.templates.GetItemIDs(ctx, checklistID)
		if err != nil {
			return nil, fmt.Errorf("checklist aggregation failed: %w", err)
		}

		total, passed, err := s.records.CountForItems(ctx, userID, taskCode, itemIDs)
		if err != nil {
			return nil, fmt.Errorf("checklist aggregation failed: %w", err)
		}

		expected := 0
		if existing, err := s.summaries.GetChecklistSummary(ctx, id); err != nil {
			return nil, fmt.Errorf("checklist aggregation failed: %w", err)
		} else if existing != nil {
			expected = existing.Version
		}

		summary := &domain.ChecklistSummary{
			ID:            id,
			UserID:        userID,
			ChecklistID:   checklistID,
			TaskCode:      taskCode,
			CommitMessage: commitMessage,
			TotalItems:    total,
			PassedItems:   passed,
		}
		err = s.summaries.UpsertChecklistSummary(ctx, summary, expected)
		if err == nil {
			return summary, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, fmt.Errorf("checklist aggregation failed: %w", err)
		}
		logger.CtxWarn(ctx, "Checklist summary version conflict, retrying: attempt=%d", attempt+1)
	}
	return nil, ErrAggregateConflict
}

// RecomputeCategorySummary sums the user's checklist summaries belonging to
// the category under the task code and upserts the category summary. A
// category with no member summaries yet still gets a row with zero totals so
// dashboard queries always find it once the category was touched.
//
// Exported for the admin recovery sweep.
func (s *SubmitService) RecomputeCategorySummary(ctx context.Context, userID, categoryID, taskCode, commitMessage string) (*domain.CategorySummary, error) {
	id := categorySummaryID(userID, categoryID, taskCode)

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		checklistIDs, err := s.categories.GetChecklistIDs(ctx, categoryID)
		if err != nil {
			return nil, fmt.Errorf("category aggregation failed: %w", err)
		}

		members, err := s.summaries.ListChecklistSummaries(ctx, userID, taskCode, checklistIDs)
		if err != nil {
			return nil, fmt.Errorf("category aggregation failed: %w", err)
		}

		total, passed := 0, 0
		memberIDs := make(domain.StringArray, 0, len(members))
		for i := range members {
			total += members[i].TotalItems
			passed += members[i].PassedItems
			memberIDs = append(memberIDs, members[i].ID)
		}

		expected := 0
		if existing, err := s.summaries.GetCategorySummary(ctx, id); err != nil {
			return nil, fmt.Errorf("category aggregation failed: %w", err)
		} else if existing != nil {
			expected = existing.Version
		}

		summary := &domain.CategorySummary{
			ID:            id,
			UserID:        userID,
			CategoryID:    categoryID,
			TaskCode:      taskCode,
			CommitMessage: commitMessage,
			TotalItems:    total,
			PassedItems:   passed,
			Items:         memberIDs,
		}
		err = s.summaries.UpsertCategorySummary(ctx, summary, expected)
		if err == nil {
			return summary, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, fmt.Errorf("category aggregation failed: %w", err)
		}
		logger.CtxWarn(ctx, "Category summary version conflict, retrying: attempt=%d", attempt+1)
	}
	return nil, ErrAggregateConflict
}

// advance moves the submission audit record to the next pipeline status.
func (s *SubmitService) advance(ctx context.Context, id string, status domain.SubmissionStatus) {
	if err := s.submissions.UpdateStatus(ctx, id, status, ""); err != nil {
		logger.CtxWarn(ctx, "Failed to update submission status to %s: %v", status, err)
	}
}

// fail marks the submission audit record failed with the stage error.
func (s *SubmitService) fail(ctx context.Context, id string, stageErr error) {
	if err := s.submissions.UpdateStatus(ctx, id, domain.SubmissionStatusFailed, stageErr.Error()); err != nil {
		logger.CtxWarn(ctx, "Failed to mark submission failed: %v", err)
	}
}

// notifyCompletion delivers the completion webhook, best-effort.
func (s *SubmitService) notifyCompletion(ctx context.Context, sub *domain.Submission, cs *domain.ChecklistSummary, cat *domain.CategorySummary) {
	if s.notifier == nil || !s.notifier.IsEnabled() {
		return
	}
	err := s.notifier.SubmissionCompleted(ctx, &notify.CompletionEvent{
		SubmissionID:      sub.ID,
		UserID:            sub.UserID,
		ChecklistID:       sub.ChecklistID,
		CategoryID:        sub.CategoryID,
		TaskCode:          sub.TaskCode,
		TotalItems:        cs.TotalItems,
		PassedItems:       cs.PassedItems,
		SummaryID:         cs.ID,
		CategorySummaryID: cat.ID,
		CompletedAt:       time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.CtxWarn(ctx, "Completion webhook failed: %v", err)
	}
}
