package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const seedYAML = `
languages:
  - id: es
    name: Spanish
    code: es
    levels:
      - id: es-a1
        name: A1
        order_index: 1
        skills:
          - id: es-a1-vocab
            name: Vocabulary
            contents:
              - id: es-a1-vocab-greetings
                title: Greetings
                activities:
                  - title: Flashcards
                    activity_type: practice
                    estimated_time: 10
                  - title: Listening
                    activity_type: audio
                    estimated_time: 15
              - id: es-a1-vocab-numbers
                title: Numbers
                activities:
                  - title: Counting drill
                    estimated_time: 5
`

func TestSeedFromFile(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(seedYAML), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	if err := svc.SeedFromFile(ctx, path); err != nil {
		t.Fatalf("seed: %v", err)
	}

	greetings, err := svc.GetContent(ctx, "es-a1-vocab-greetings")
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if greetings.CalculatedTotalTime != 25 {
		t.Errorf("greetings total: want 25, got %d", greetings.CalculatedTotalTime)
	}
	skill, err := svc.GetSkill(ctx, "es-a1-vocab")
	if err != nil {
		t.Fatalf("get skill: %v", err)
	}
	if skill.CalculatedTotalTime != 30 {
		t.Errorf("skill total: want 30, got %d", skill.CalculatedTotalTime)
	}
	lang, err := svc.GetLanguage(ctx, "es")
	if err != nil {
		t.Fatalf("get language: %v", err)
	}
	if lang.CalculatedTotalTime != 30 {
		t.Errorf("language total: want 30, got %d", lang.CalculatedTotalTime)
	}

	levels, err := svc.ListLevels(ctx, "es")
	if err != nil {
		t.Fatalf("list levels: %v", err)
	}
	if len(levels) != 1 || levels[0].ID != "es-a1" {
		t.Fatalf("unexpected levels: %+v", levels)
	}
}

func TestSeedFromFileBadInput(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)

	if err := svc.SeedFromFile(ctx, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("languages: {not a list}"), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	if err := svc.SeedFromFile(ctx, path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
