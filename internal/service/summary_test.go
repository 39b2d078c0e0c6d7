package service

import (
	"context"
	"testing"

	"github.com/rs-quantt/checklist-api/internal/domain"
	"github.com/rs-quantt/checklist-api/internal/repository"
	"gorm.io/gorm"
)

func newSummaryService(db *gorm.DB) *SummaryService {
	return NewSummaryService(
		repository.NewTemplateRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewSummaryRepository(db),
		repository.NewSubmissionRepository(db),
	)
}

func TestListChecklistSummaries_TemplateItems(t *testing.T) {
	db := newTestDB(t)
	submit := newTestService(t, db)
	svc := newSummaryService(db)
	ctx := context.Background()

	// Submit only one of cl-a's two items
	if _, err := submit.Submit(ctx, &SubmitRequest{
		UserID: "u1", ChecklistID: "cl-a", CategoryID: "cat-k", TaskCode: "T1",
		Items: []SubmitItem{{ItemID: "i1", Status: domain.ItemStatusDone}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	views, err := svc.ListChecklistSummaries(ctx, "u1", "T1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 summary view, got %d", len(views))
	}

	v := views[0]
	if v.TotalItems != 1 {
		t.Errorf("expected total=1 (submitted records only), got %d", v.TotalItems)
	}
	if v.TemplateItems != 2 {
		t.Errorf("expected template_items=2 from the template definition, got %d", v.TemplateItems)
	}
}

func TestGetChecklistSummary_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newSummaryService(db)

	_, err := svc.GetChecklistSummary(context.Background(), "no-such-id")
	if !IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}

	_, err = svc.GetCategorySummary(context.Background(), "no-such-id")
	if !IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestGetOverview(t *testing.T) {
	db := newTestDB(t)
	submit := newTestService(t, db)
	svc := newSummaryService(db)
	ctx := context.Background()

	// Two users submit into the same category
	for _, user := range []string{"u1", "u2"} {
		if _, err := submit.Submit(ctx, &SubmitRequest{
			UserID: user, ChecklistID: "cl-a", CategoryID: "cat-k", TaskCode: "T1",
			Items: []SubmitItem{
				{ItemID: "i1", Status: domain.ItemStatusDone},
				{ItemID: "i2", Status: domain.ItemStatusIncomplete, Note: "pending"},
			},
		}); err != nil {
			t.Fatalf("unexpected error for %s: %v", user, err)
		}
	}

	overview, err := svc.GetOverview(ctx, "T1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if overview.Completed != 2 {
		t.Errorf("expected 2 completed submissions, got %d", overview.Completed)
	}
	if overview.Failed != 0 {
		t.Errorf("expected 0 failed submissions, got %d", overview.Failed)
	}
	if len(overview.Categories) != 1 {
		t.Fatalf("expected 1 category row, got %d", len(overview.Categories))
	}

	cc := overview.Categories[0]
	if cc.CategoryID != "cat-k" {
		t.Errorf("unexpected category id %s", cc.CategoryID)
	}
	if cc.Title != "Category K" {
		t.Errorf("expected title from the category record, got %q", cc.Title)
	}
	if cc.Users != 2 {
		t.Errorf("expected 2 users, got %d", cc.Users)
	}
	if cc.TotalItems != 4 || cc.PassedItems != 2 {
		t.Errorf("expected totals 2/4 across users, got %d/%d", cc.PassedItems, cc.TotalItems)
	}
}

func TestGetOverview_TaskCodeFilter(t *testing.T) {
	db := newTestDB(t)
	submit := newTestService(t, db)
	svc := newSummaryService(db)
	ctx := context.Background()

	for _, task := range []string{"T1", "T2"} {
		if _, err := submit.Submit(ctx, &SubmitRequest{
			UserID: "u1", ChecklistID: "cl-a", CategoryID: "cat-k", TaskCode: task,
			Items: []SubmitItem{{ItemID: "i1", Status: domain.ItemStatusDone}},
		}); err != nil {
			t.Fatalf("unexpected error for %s: %v", task, err)
		}
	}

	overview, err := svc.GetOverview(ctx, "T2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(overview.Categories) != 1 {
		t.Fatalf("expected 1 category row, got %d", len(overview.Categories))
	}
	if overview.Categories[0].Users != 1 {
		t.Errorf("expected the filter to keep one summary, got %d users", overview.Categories[0].Users)
	}
}

func TestListSubmissions_ClampsPagination(t *testing.T) {
	db := newTestDB(t)
	submit := newTestService(t, db)
	svc := newSummaryService(db)
	ctx := context.Background()

	for _, task := range []string{"T1", "T2"} {
		if _, err := submit.Submit(ctx, &SubmitRequest{
			UserID: "u1", ChecklistID: "cl-a", CategoryID: "cat-k", TaskCode: task,
			Items: []SubmitItem{{ItemID: "i1", Status: domain.ItemStatusDone}},
		}); err != nil {
			t.Fatalf("unexpected error for %s: %v", task, err)
		}
	}

	tests := []struct {
		name   string
		limit  int
		offset int
		want   int
	}{
		{name: "defaults", limit: 0, offset: 0, want: 2},
		{name: "oversized limit", limit: 10000, offset: 0, want: 2},
		{name: "negative offset", limit: 10, offset: -5, want: 2},
		{name: "limited page", limit: 1, offset: 0, want: 1},
		{name: "offset past end", limit: 10, offset: 50, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs, total, err := svc.ListSubmissions(ctx, tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(subs) != tt.want {
				t.Errorf("expected %d submissions on the page, got %d", tt.want, len(subs))
			}
			// The total counts all records regardless of the page window
			if total != 2 {
				t.Errorf("expected total 2, got %d", total)
			}
		})
	}
}
