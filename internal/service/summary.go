package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs-quantt/checklist-api/internal/domain"
	"github.com/rs-quantt/checklist-api/internal/repository"
	"gorm.io/gorm"
)

// SummaryService serves the read side: per-user summaries for the checklist
// UI and aggregated completion views for administrators.
type SummaryService struct {
	templates   *repository.TemplateRepository
	categories  *repository.CategoryRepository
	summaries   *repository.SummaryRepository
	submissions *repository.SubmissionRepository
}

// NewSummaryService creates a new summary service.
func NewSummaryService(
	templates *repository.TemplateRepository,
	categories *repository.CategoryRepository,
	summaries *repository.SummaryRepository,
	submissions *repository.SubmissionRepository,
) *SummaryService {
	return &SummaryService{
		templates:   templates,
		categories:  categories,
		summaries:   summaries,
		submissions: submissions,
	}
}

// ChecklistSummaryView is a checklist summary enriched with the template's
// full item count. The stored TotalItems counts submitted records only, so
// the UI needs TemplateItems to render "6 of 10 submitted".
type ChecklistSummaryView struct {
	domain.ChecklistSummary
	TemplateItems int `json:"template_items"`
}

// GetChecklistSummary retrieves one checklist summary by id.
func (s *SummaryService) GetChecklistSummary(ctx context.Context, id string) (*ChecklistSummaryView, error) {
	summary, err := s.summaries.GetChecklistSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, &NotFoundError{Kind: "checklist summary", ID: id}
	}
	return s.enrich(ctx, summary)
}

// ListChecklistSummaries retrieves a user's checklist summaries for a task code.
func (s *SummaryService) ListChecklistSummaries(ctx context.Context, userID, taskCode string) ([]ChecklistSummaryView, error) {
	summaries, err := s.summaries.ListChecklistSummaries(ctx, userID, taskCode, nil)
	if err != nil {
		return nil, err
	}
	views := make([]ChecklistSummaryView, 0, len(summaries))
	for i := range summaries {
		view, err := s.enrich(ctx, &summaries[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// enrich attaches the template item count to a summary.
func (s *SummaryService) enrich(ctx context.Context, summary *domain.ChecklistSummary) (*ChecklistSummaryView, error) {
	count, err := s.templates.CountItems(ctx, summary.ChecklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to count template items: %w", err)
	}
	return &ChecklistSummaryView{
		ChecklistSummary: *summary,
		TemplateItems:    int(count),
	}, nil
}

// GetCategorySummary retrieves one category summary by id.
func (s *SummaryService) GetCategorySummary(ctx context.Context, id string) (*domain.CategorySummary, error) {
	summary, err := s.summaries.GetCategorySummary(ctx, id)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, &NotFoundError{Kind: "category summary", ID: id}
	}
	return summary, nil
}

// ListCategorySummaries retrieves a user's category summaries for a task code.
func (s *SummaryService) ListCategorySummaries(ctx context.Context, userID, taskCode string) ([]domain.CategorySummary, error) {
	return s.summaries.ListCategorySummaries(ctx, userID, taskCode)
}

// CategoryCompletion aggregates one category's completion across users.
type CategoryCompletion struct {
	CategoryID  string `json:"category_id"`
	Title       string `json:"title"`
	Users       int    `json:"users"`
	TotalItems  int    `json:"total_items"`
	PassedItems int    `json:"passed_items"`
}

// Overview is the admin completion report across users and categories.
type Overview struct {
	Completed  int64                `json:"completed_submissions"`
	Failed     int64                `json:"failed_submissions"`
	Categories []CategoryCompletion `json:"categories"`
}

// GetOverview builds the admin completion report. Totals come from the
// materialized category summaries, so the report stays a cheap scan.
func (s *SummaryService) GetOverview(ctx context.Context, taskCode string) (*Overview, error) {
	summaries, err := s.summaries.ListAllCategorySummaries(ctx, taskCode)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*CategoryCompletion)
	order := []string{}
	for i := range summaries {
		cc, ok := byCategory[summaries[i].CategoryID]
		if !ok {
			cc = &CategoryCompletion{CategoryID: summaries[i].CategoryID}
			byCategory[summaries[i].CategoryID] = cc
			order = append(order, summaries[i].CategoryID)
		}
		cc.Users++
		cc.TotalItems += summaries[i].TotalItems
		cc.PassedItems += summaries[i].PassedItems
	}

	completions := make([]CategoryCompletion, 0, len(order))
	for _, id := range order {
		cc := byCategory[id]
		cat, err := s.categories.GetByID(ctx, id)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		} else {
			cc.Title = cat.Title
		}
		completions = append(completions, *cc)
	}

	completed, err := s.submissions.CountByStatus(ctx, domain.SubmissionStatusCompleted)
	if err != nil {
		return nil, err
	}
	failed, err := s.submissions.CountByStatus(ctx, domain.SubmissionStatusFailed)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Completed:  completed,
		Failed:     failed,
		Categories: completions,
	}, nil
}

// ListSubmissions retrieves one page of the audit trail plus the total
// record count, so clients can paginate past the returned page.
func (s *SummaryService) ListSubmissions(ctx context.Context, limit, offset int) ([]domain.Submission, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	subs, err := s.submissions.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.submissions.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}
