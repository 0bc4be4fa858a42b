package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"lingolearn/internal/catalog"
	"lingolearn/internal/progress"

	"github.com/xuri/excelize/v2"
)

var ErrInvalidInput = errors.New("invalid input")

// ProgressSource is the slice of the progress service the report needs.
type ProgressSource interface {
	GetUserProgress(ctx context.Context, userID, contentID string) ([]progress.UserProgress, error)
	GetOverallProgress(ctx context.Context, userID string) (*progress.OverallProgress, error)
}

// ContentSource resolves content titles for the export.
type ContentSource interface {
	GetContent(ctx context.Context, id string) (*catalog.Content, error)
}

type Service struct {
	progress ProgressSource
	catalog  ContentSource
}

func NewService(progress ProgressSource, catalog ContentSource) *Service {
	return &Service{progress: progress, catalog: catalog}
}

// ExportUserProgressExcel renders one row per content the user has touched,
// plus an overall block at the bottom.
func (s *Service) ExportUserProgressExcel(ctx context.Context, userID string) ([]byte, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}

	rows, err := s.progress.GetUserProgress(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	overall, err := s.progress.GetOverallProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	headers := []string{"content_id", "content_title", "completed_activities", "total_activities", "progress_percentage", "is_completed", "completed_at"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, it := range rows {
		row := i + 2
		title := ""
		if content, err := s.catalog.GetContent(ctx, it.ContentID); err == nil {
			title = content.Title
		}
		completedAt := ""
		if it.CompletedAt != nil {
			completedAt = it.CompletedAt.Format("2006-01-02 15:04:05")
		}
		values := []any{
			it.ContentID,
			title,
			len(it.CompletedActivityIDs),
			it.TotalActivities,
			it.ProgressPercentage,
			it.IsCompleted,
			completedAt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	summaryRow := len(rows) + 3
	summary := [][]any{
		{"total_contents", overall.TotalContents},
		{"completed_contents", overall.CompletedContents},
		{"total_activities", overall.TotalActivities},
		{"completed_activities", overall.CompletedActivities},
		{"overall_percentage", overall.OverallPercentage},
	}
	for i, pair := range summary {
		for col, v := range pair {
			cell, _ := excelize.CoordinatesToCellName(col+1, summaryRow+i)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "A", "G", 22)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}
