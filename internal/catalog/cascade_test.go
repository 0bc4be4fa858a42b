package catalog

import (
	"context"
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

// buildChain seeds language -> level -> skill -> content and returns the IDs.
func buildChain(t *testing.T, svc *Service) (languageID, levelID, skillID, contentID string) {
	t.Helper()
	ctx := context.Background()

	lang, err := svc.CreateLanguage(ctx, "Spanish", "es")
	if err != nil {
		t.Fatalf("create language: %v", err)
	}
	level, err := svc.CreateLevel(ctx, lang.ID, "A1", 1)
	if err != nil {
		t.Fatalf("create level: %v", err)
	}
	skill, err := svc.CreateSkill(ctx, level.ID, "Vocabulary")
	if err != nil {
		t.Fatalf("create skill: %v", err)
	}
	content, err := svc.CreateContent(ctx, skill.ID, "Greetings")
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	return lang.ID, level.ID, skill.ID, content.ID
}

func TestCascadeSumsMissingEstimateAsZero(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)
	langID, levelID, skillID, contentID := buildChain(t, svc)

	for _, est := range []*int{intPtr(10), nil, intPtr(20)} {
		if _, err := svc.CreateActivity(ctx, CreateActivityInput{
			ContentID:     contentID,
			Title:         "Exercise",
			EstimatedTime: est,
		}); err != nil {
			t.Fatalf("create activity: %v", err)
		}
	}

	content, err := svc.GetContent(ctx, contentID)
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if content.CalculatedTotalTime != 30 {
		t.Fatalf("content total: want 30, got %d", content.CalculatedTotalTime)
	}

	// The same 30 must have propagated all the way up.
	for _, check := range []struct {
		name string
		get  func() (int, error)
	}{
		{"skill", func() (int, error) {
			s, err := svc.GetSkill(ctx, skillID)
			if err != nil {
				return 0, err
			}
			return s.CalculatedTotalTime, nil
		}},
		{"level", func() (int, error) {
			l, err := svc.GetLevel(ctx, levelID)
			if err != nil {
				return 0, err
			}
			return l.CalculatedTotalTime, nil
		}},
		{"language", func() (int, error) {
			l, err := svc.GetLanguage(ctx, langID)
			if err != nil {
				return 0, err
			}
			return l.CalculatedTotalTime, nil
		}},
	} {
		total, err := check.get()
		if err != nil {
			t.Fatalf("get %s: %v", check.name, err)
		}
		if total != 30 {
			t.Errorf("%s total: want 30, got %d", check.name, total)
		}
	}
}

func TestCascadeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)
	langID, _, _, contentID := buildChain(t, svc)

	a, err := svc.CreateActivity(ctx, CreateActivityInput{
		ContentID:     contentID,
		Title:         "Listening drill",
		EstimatedTime: intPtr(15),
	})
	if err != nil {
		t.Fatalf("create activity: %v", err)
	}

	// Re-running the cascade must not change any total: each step re-sums
	// current children instead of applying a delta.
	for i := 0; i < 3; i++ {
		if err := svc.RecalculateFromActivity(ctx, a.ID); err != nil {
			t.Fatalf("recalculate run %d: %v", i+1, err)
		}
	}
	lang, err := svc.GetLanguage(ctx, langID)
	if err != nil {
		t.Fatalf("get language: %v", err)
	}
	if lang.CalculatedTotalTime != 15 {
		t.Fatalf("language total after repeated runs: want 15, got %d", lang.CalculatedTotalTime)
	}
}

func TestCascadeStopsAtMissingParentLink(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store, nil)

	// A content with no skill: the cascade must update the content total and
	// stop there without error.
	orphan, err := svc.CreateContent(ctx, "", "Detached content")
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	if _, err := svc.CreateActivity(ctx, CreateActivityInput{
		ContentID:     orphan.ID,
		Title:         "Solo exercise",
		EstimatedTime: intPtr(25),
	}); err != nil {
		t.Fatalf("create activity: %v", err)
	}
	if err := svc.RecalculateFromContent(ctx, orphan.ID); err != nil {
		t.Fatalf("recalculate detached content: %v", err)
	}
	got, err := svc.GetContent(ctx, orphan.ID)
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if got.CalculatedTotalTime != 25 {
		t.Fatalf("detached content total: want 25, got %d", got.CalculatedTotalTime)
	}
}

func TestUpdateActivityRecalculatesOldAndNewChain(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)
	_, _, skillID, contentID := buildChain(t, svc)

	other, err := svc.CreateContent(ctx, skillID, "Numbers")
	if err != nil {
		t.Fatalf("create second content: %v", err)
	}

	a, err := svc.CreateActivity(ctx, CreateActivityInput{
		ContentID:     contentID,
		Title:         "Flashcards",
		EstimatedTime: intPtr(40),
	})
	if err != nil {
		t.Fatalf("create activity: %v", err)
	}

	if _, err := svc.UpdateActivity(ctx, a.ID, UpdateActivityInput{
		ContentID:     other.ID,
		Title:         "Flashcards",
		EstimatedTime: intPtr(40),
	}); err != nil {
		t.Fatalf("move activity: %v", err)
	}

	origin, err := svc.GetContent(ctx, contentID)
	if err != nil {
		t.Fatalf("get origin content: %v", err)
	}
	if origin.CalculatedTotalTime != 0 {
		t.Errorf("origin content total after move: want 0, got %d", origin.CalculatedTotalTime)
	}
	dest, err := svc.GetContent(ctx, other.ID)
	if err != nil {
		t.Fatalf("get destination content: %v", err)
	}
	if dest.CalculatedTotalTime != 40 {
		t.Errorf("destination content total after move: want 40, got %d", dest.CalculatedTotalTime)
	}
	// The shared skill still sees the same grand total.
	sk, err := svc.GetSkill(ctx, skillID)
	if err != nil {
		t.Fatalf("get skill: %v", err)
	}
	if sk.CalculatedTotalTime != 40 {
		t.Errorf("skill total after move: want 40, got %d", sk.CalculatedTotalTime)
	}
}

func TestDeleteActivityShrinksTotals(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)
	langID, _, _, contentID := buildChain(t, svc)

	keep, err := svc.CreateActivity(ctx, CreateActivityInput{
		ContentID: contentID, Title: "Keep", EstimatedTime: intPtr(10),
	})
	if err != nil {
		t.Fatalf("create activity: %v", err)
	}
	_ = keep
	drop, err := svc.CreateActivity(ctx, CreateActivityInput{
		ContentID: contentID, Title: "Drop", EstimatedTime: intPtr(35),
	})
	if err != nil {
		t.Fatalf("create activity: %v", err)
	}

	if err := svc.DeleteActivity(ctx, drop.ID); err != nil {
		t.Fatalf("delete activity: %v", err)
	}
	lang, err := svc.GetLanguage(ctx, langID)
	if err != nil {
		t.Fatalf("get language: %v", err)
	}
	if lang.CalculatedTotalTime != 10 {
		t.Fatalf("language total after delete: want 10, got %d", lang.CalculatedTotalTime)
	}
}

func TestRecalculateAllVisitsBottomUp(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store, nil)
	langID, levelID, skillID, contentID := buildChain(t, svc)

	// Bypass the service so no cascade has run yet.
	if _, err := store.CreateActivity(ctx, Activity{
		ContentID: contentID, Title: "Raw", EstimatedTime: intPtr(50),
	}); err != nil {
		t.Fatalf("create activity: %v", err)
	}

	if err := svc.RecalculateAll(ctx); err != nil {
		t.Fatalf("recalculate all: %v", err)
	}
	for _, tc := range []struct {
		name string
		id   string
		get  func(string) (int, error)
	}{
		{"content", contentID, func(id string) (int, error) {
			n, err := store.GetContent(ctx, id)
			if err != nil {
				return 0, err
			}
			return n.CalculatedTotalTime, nil
		}},
		{"skill", skillID, func(id string) (int, error) {
			n, err := store.GetSkill(ctx, id)
			if err != nil {
				return 0, err
			}
			return n.CalculatedTotalTime, nil
		}},
		{"level", levelID, func(id string) (int, error) {
			n, err := store.GetLevel(ctx, id)
			if err != nil {
				return 0, err
			}
			return n.CalculatedTotalTime, nil
		}},
		{"language", langID, func(id string) (int, error) {
			n, err := store.GetLanguage(ctx, id)
			if err != nil {
				return 0, err
			}
			return n.CalculatedTotalTime, nil
		}},
	} {
		got, err := tc.get(tc.id)
		if err != nil {
			t.Fatalf("get %s: %v", tc.name, err)
		}
		if got != 50 {
			t.Errorf("%s total: want 50, got %d", tc.name, got)
		}
	}
}

func TestCreateActivityValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)

	if _, err := svc.CreateActivity(ctx, CreateActivityInput{Title: "   "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank title: want ErrInvalidInput, got %v", err)
	}
	if _, err := svc.CreateActivity(ctx, CreateActivityInput{Title: "X", EstimatedTime: intPtr(-5)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative time: want ErrInvalidInput, got %v", err)
	}
	if _, err := svc.CreateActivity(ctx, CreateActivityInput{Title: "X", ContentID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown content: want ErrNotFound, got %v", err)
	}
}
