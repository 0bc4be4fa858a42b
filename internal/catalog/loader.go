package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed file shape: a languages tree mirroring the catalog hierarchy. IDs are
// optional; omitted ones are generated at insert time.
type seedFile struct {
	Languages []seedLanguage `yaml:"languages"`
}

type seedLanguage struct {
	ID     string      `yaml:"id"`
	Name   string      `yaml:"name"`
	Code   string      `yaml:"code"`
	Levels []seedLevel `yaml:"levels"`
}

type seedLevel struct {
	ID         string      `yaml:"id"`
	Name       string      `yaml:"name"`
	OrderIndex int         `yaml:"order_index"`
	Skills     []seedSkill `yaml:"skills"`
}

type seedSkill struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Contents []seedContent `yaml:"contents"`
}

type seedContent struct {
	ID         string         `yaml:"id"`
	Title      string         `yaml:"title"`
	Activities []seedActivity `yaml:"activities"`
}

type seedActivity struct {
	ID            string `yaml:"id"`
	Title         string `yaml:"title"`
	ActivityType  string `yaml:"activity_type"`
	EstimatedTime *int   `yaml:"estimated_time"`
}

// SeedFromFile loads a catalog tree from YAML, inserts every node top-down,
// then runs a full recalculation so all derived totals are correct from the
// start.
func (s *Service) SeedFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for _, sl := range seed.Languages {
		lang, err := s.store.CreateLanguage(ctx, Language{ID: sl.ID, Name: sl.Name, Code: sl.Code})
		if err != nil {
			return fmt.Errorf("seed language %q: %w", sl.Name, err)
		}
		for _, lv := range sl.Levels {
			level, err := s.store.CreateLevel(ctx, Level{
				ID:         lv.ID,
				LanguageID: lang.ID,
				Name:       lv.Name,
				OrderIndex: lv.OrderIndex,
			})
			if err != nil {
				return fmt.Errorf("seed level %q: %w", lv.Name, err)
			}
			for _, sk := range lv.Skills {
				skill, err := s.store.CreateSkill(ctx, Skill{ID: sk.ID, LevelID: level.ID, Name: sk.Name})
				if err != nil {
					return fmt.Errorf("seed skill %q: %w", sk.Name, err)
				}
				for _, ct := range sk.Contents {
					content, err := s.store.CreateContent(ctx, Content{ID: ct.ID, SkillID: skill.ID, Title: ct.Title})
					if err != nil {
						return fmt.Errorf("seed content %q: %w", ct.Title, err)
					}
					for _, act := range ct.Activities {
						if _, err := s.store.CreateActivity(ctx, Activity{
							ID:            act.ID,
							ContentID:     content.ID,
							Title:         act.Title,
							ActivityType:  act.ActivityType,
							EstimatedTime: act.EstimatedTime,
						}); err != nil {
							return fmt.Errorf("seed activity %q: %w", act.Title, err)
						}
					}
				}
			}
		}
	}

	return s.RecalculateAll(ctx)
}
