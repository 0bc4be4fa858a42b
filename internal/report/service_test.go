package report

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"lingolearn/internal/catalog"
	"lingolearn/internal/progress"

	"github.com/xuri/excelize/v2"
)

func intPtr(v int) *int { return &v }

func TestExportUserProgressExcel(t *testing.T) {
	ctx := context.Background()

	catalogSvc := catalog.NewService(catalog.NewMemoryStore(), nil)
	content, err := catalogSvc.CreateContent(ctx, "", "Greetings")
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	if _, err := catalogSvc.CreateActivity(ctx, catalog.CreateActivityInput{
		ContentID: content.ID, Title: "Flashcards", EstimatedTime: intPtr(10),
	}); err != nil {
		t.Fatalf("create activity: %v", err)
	}

	progressStore := progress.NewMemoryStore()
	progressSvc := progress.NewService(progressStore, counterFor(catalogSvc))
	if _, err := progressSvc.RecordCompletion(ctx, progress.CompletionInput{
		UserID: "u1", ContentID: content.ID, ActivityID: "a1", Score: 4, MaxScore: 5,
	}); err != nil {
		t.Fatalf("record completion: %v", err)
	}

	svc := NewService(progressSvc, catalogSvc)
	data, err := svc.ExportUserProgressExcel(ctx, "u1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) < 2 {
		t.Fatalf("expected header and data rows, got %d", len(rows))
	}
	if rows[0][0] != "content_id" || rows[0][1] != "content_title" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
	if rows[1][0] != content.ID || rows[1][1] != "Greetings" {
		t.Fatalf("unexpected data row: %v", rows[1])
	}
}

func TestExportUserProgressExcelBlankUser(t *testing.T) {
	svc := NewService(nil, nil)
	if _, err := svc.ExportUserProgressExcel(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

// counterFor adapts the catalog service to the activity counter the progress
// service expects.
type serviceCounter struct {
	svc *catalog.Service
}

func counterFor(svc *catalog.Service) serviceCounter {
	return serviceCounter{svc: svc}
}

func (c serviceCounter) CountActivitiesByContent(ctx context.Context, contentID string) (int, error) {
	activities, err := c.svc.ListActivities(ctx, contentID)
	if err != nil {
		return 0, err
	}
	return len(activities), nil
}
