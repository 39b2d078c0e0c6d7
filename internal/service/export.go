package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/rs-quantt/checklist-api/internal/logger"
	"github.com/rs-quantt/checklist-api/internal/repository"
	"github.com/rs-quantt/checklist-api/internal/storage"
)

// ExportService writes admin CSV exports of category summaries to object
// storage.
type ExportService struct {
	summaries *repository.SummaryRepository
	storage   storage.ObjectStorage
}

// NewExportService creates a new export service.
func NewExportService(summaries *repository.SummaryRepository, objectStorage storage.ObjectStorage) *ExportService {
	return &ExportService{
		summaries: summaries,
		storage:   objectStorage,
	}
}

// ExportResult reports where an export landed.
type ExportResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Rows int    `json:"rows"`
}

// ExportCategorySummaries renders all category summaries (optionally scoped
// to one task code) as CSV and uploads the file. The object key embeds a
// UTC timestamp so consecutive exports never overwrite each other.
func (s *ExportService) ExportCategorySummaries(ctx context.Context, taskCode string) (*ExportResult, error) {
	summaries, err := s.summaries.ListAllCategorySummaries(ctx, taskCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load category summaries: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"user_id", "category_id", "task_code", "total_items", "passed_items", "commit_message", "updated_at"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range summaries {
		row := []string{
			summaries[i].UserID,
			summaries[i].CategoryID,
			summaries[i].TaskCode,
			strconv.Itoa(summaries[i].TotalItems),
			strconv.Itoa(summaries[i].PassedItems),
			summaries[i].CommitMessage,
			summaries[i].UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to render CSV: %w", err)
	}

	key := fmt.Sprintf("exports/category-summaries-%s.csv", time.Now().UTC().Format("20060102T150405Z"))
	if err := s.storage.Upload(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/csv"); err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	logger.With(logger.Fields{
		logger.FieldCount: len(summaries),
		logger.FieldSize:  buf.Len(),
	}).Info(ctx, "Export uploaded: key=%s", key)

	return &ExportResult{
		Key:  key,
		URL:  s.storage.GetURL(key),
		Rows: len(summaries),
	}, nil
}
