package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs-quantt/checklist-api/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestUpsertChecklistSummary_VersionGuard(t *testing.T) {
	db := newTestDB(t)
	repo := NewSummaryRepository(db)
	ctx := context.Background()

	summary := &domain.ChecklistSummary{
		ID:          "s1",
		UserID:      "u1",
		ChecklistID: "cl-a",
		TaskCode:    "T1",
		TotalItems:  2,
		PassedItems: 1,
	}

	// First write: row absent, expected version 0 creates it at version 1
	if err := repo.UpsertChecklistSummary(ctx, summary, 0); err != nil {
		t.Fatalf("unexpected error on create: %v", err)
	}
	if summary.Version != 1 {
		t.Errorf("expected version 1 after create, got %d", summary.Version)
	}

	// Matching expected version applies the update and advances the version
	summary.PassedItems = 2
	if err := repo.UpsertChecklistSummary(ctx, summary, 1); err != nil {
		t.Fatalf("unexpected error on guarded update: %v", err)
	}
	if summary.Version != 2 {
		t.Errorf("expected version 2 after update, got %d", summary.Version)
	}

	stored, err := repo.GetChecklistSummary(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.PassedItems != 2 || stored.Version != 2 {
		t.Errorf("expected stored passed=2 version=2, got passed=%d version=%d", stored.PassedItems, stored.Version)
	}

	// Stale expected version loses the race
	err = repo.UpsertChecklistSummary(ctx, summary, 1)
	if !errors.Is(err, ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict for stale version, got %v", err)
	}

	// Create against an existing row is also reported as a conflict, not a
	// bare duplicate-key error
	dup := &domain.ChecklistSummary{ID: "s1", UserID: "u1", ChecklistID: "cl-a", TaskCode: "T1"}
	err = repo.UpsertChecklistSummary(ctx, dup, 0)
	if !errors.Is(err, ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict for duplicate create, got %v", err)
	}
}

func TestUpsertCategorySummary_VersionGuard(t *testing.T) {
	db := newTestDB(t)
	repo := NewSummaryRepository(db)
	ctx := context.Background()

	summary := &domain.CategorySummary{
		ID:          "c1",
		UserID:      "u1",
		CategoryID:  "cat-k",
		TaskCode:    "T1",
		TotalItems:  3,
		PassedItems: 2,
		Items:       domain.StringArray{"s1", "s2"},
	}
	if err := repo.UpsertCategorySummary(ctx, summary, 0); err != nil {
		t.Fatalf("unexpected error on create: %v", err)
	}

	summary.Items = domain.StringArray{"s1", "s2", "s3"}
	summary.TotalItems = 5
	if err := repo.UpsertCategorySummary(ctx, summary, 1); err != nil {
		t.Fatalf("unexpected error on guarded update: %v", err)
	}

	stored, err := repo.GetCategorySummary(ctx, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.TotalItems != 5 || len(stored.Items) != 3 {
		t.Errorf("expected stored total=5 with 3 member ids, got total=%d members=%d", stored.TotalItems, len(stored.Items))
	}

	err = repo.UpsertCategorySummary(ctx, summary, 1)
	if !errors.Is(err, ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict for stale version, got %v", err)
	}
}

func TestGetSummaries_AbsentRowsReturnNil(t *testing.T) {
	db := newTestDB(t)
	repo := NewSummaryRepository(db)
	ctx := context.Background()

	cs, err := repo.GetChecklistSummary(ctx, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != nil {
		t.Errorf("expected nil for absent checklist summary, got %+v", cs)
	}

	cat, err := repo.GetCategorySummary(ctx, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat != nil {
		t.Errorf("expected nil for absent category summary, got %+v", cat)
	}
}

func TestListChecklistSummaries_Filter(t *testing.T) {
	db := newTestDB(t)
	repo := NewSummaryRepository(db)
	ctx := context.Background()

	seed := []domain.ChecklistSummary{
		{ID: "s1", UserID: "u1", ChecklistID: "cl-a", TaskCode: "T1"},
		{ID: "s2", UserID: "u1", ChecklistID: "cl-b", TaskCode: "T1"},
		{ID: "s3", UserID: "u1", ChecklistID: "cl-a", TaskCode: "T2"},
		{ID: "s4", UserID: "u2", ChecklistID: "cl-a", TaskCode: "T1"},
	}
	for i := range seed {
		if err := repo.UpsertChecklistSummary(ctx, &seed[i], 0); err != nil {
			t.Fatalf("failed to seed summary %s: %v", seed[i].ID, err)
		}
	}

	all, err := repo.ListChecklistSummaries(ctx, "u1", "T1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 summaries for u1/T1, got %d", len(all))
	}

	filtered, err := repo.ListChecklistSummaries(ctx, "u1", "T1", []string{"cl-b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "s2" {
		t.Errorf("expected only s2 with the checklist filter, got %+v", filtered)
	}
}
