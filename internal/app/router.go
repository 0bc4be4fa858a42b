package app

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"lingolearn/internal/app/observability"
	"lingolearn/internal/catalog"
	"lingolearn/internal/form"
	"lingolearn/internal/progress"
	"lingolearn/internal/report"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// progressNotifier adapts the progress service to the completion hook the
// form pipeline fires after a response is saved.
type progressNotifier struct {
	svc *progress.Service
}

func (n progressNotifier) RecordCompletion(ctx context.Context, c form.Completion) error {
	_, err := n.svc.RecordCompletion(ctx, progress.CompletionInput{
		UserID:         c.UserID,
		ContentID:      c.ContentID,
		ActivityID:     c.ActivityID,
		FormResponseID: c.FormResponseID,
		Score:          float64(c.CorrectAnswers),
		MaxScore:       float64(c.ScorableQuestions),
	})
	return err
}

func NewRouter(cfg Config, db *sql.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	collector := observability.NewCollector(db)
	r.Use(collector.Middleware)

	var totals *catalog.TotalsCache
	if cfg.CacheURL != "" {
		cache, err := catalog.Connect(context.Background(), cfg.CacheURL)
		if err != nil {
			log.Printf("totals cache unavailable, continuing without it: %v", err)
		} else {
			totals = cache
		}
	}

	var (
		formStore     form.Store
		catalogStore  catalog.Store
		progressStore progress.Store
	)
	if db != nil {
		formStore = form.NewPostgresStore(db)
		catalogStore = catalog.NewPostgresStore(db)
		progressStore = progress.NewPostgresStore(db)
	} else {
		formStore = form.NewMemoryStore()
		catalogStore = catalog.NewMemoryStore()
		progressStore = progress.NewMemoryStore()
	}

	catalogSvc := catalog.NewService(catalogStore, totals)
	progressSvc := progress.NewService(progressStore, catalogStore)
	formSvc := form.NewService(formStore, progressNotifier{svc: progressSvc})
	reportSvc := report.NewService(progressSvc, catalogSvc)

	if cfg.CatalogSeedPath != "" {
		if err := catalogSvc.SeedFromFile(context.Background(), cfg.CatalogSeedPath); err != nil {
			log.Printf("catalog seed failed: %v", err)
		}
	}

	formHandler := form.NewHandler(formSvc)
	catalogHandler := catalog.NewHandler(catalogSvc)
	progressHandler := progress.NewHandler(progressSvc)
	reportHandler := report.NewHandler(reportSvc)

	limiter := NewIPRateLimiter(cfg.RateLimitPerMin, time.Minute)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", collector.MetricsHandler)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(RateLimitMiddleware(limiter))

		api.Route("/forms", func(forms chi.Router) {
			forms.Post("/", formHandler.CreateForm)
			forms.Get("/{formID}", formHandler.GetForm)
			forms.Post("/{formID}/publish", formHandler.PublishForm)

			forms.Post("/{formID}/questions", formHandler.CreateQuestion)
			forms.Get("/{formID}/questions", formHandler.ListQuestions)
			forms.Put("/{formID}/questions/{questionID}", formHandler.UpdateQuestion)
			forms.Delete("/{formID}/questions/{questionID}", formHandler.DeleteQuestion)

			forms.Post("/{formID}/responses", formHandler.SubmitResponse)
			forms.Get("/{formID}/responses", formHandler.ListResponses)
		})

		api.Route("/languages", func(langs chi.Router) {
			langs.Post("/", catalogHandler.CreateLanguage)
			langs.Get("/", catalogHandler.ListLanguages)
			langs.Get("/{languageID}", catalogHandler.GetLanguage)
			langs.Get("/{languageID}/levels", catalogHandler.ListLevels)
		})
		api.Post("/levels", catalogHandler.CreateLevel)
		api.Get("/levels/{levelID}/skills", catalogHandler.ListSkills)
		api.Post("/skills", catalogHandler.CreateSkill)
		api.Get("/skills/{skillID}/contents", catalogHandler.ListContents)
		api.Post("/contents", catalogHandler.CreateContent)
		api.Get("/contents/{contentID}", catalogHandler.GetContent)
		api.Get("/contents/{contentID}/activities", catalogHandler.ListActivities)

		api.Route("/activities", func(acts chi.Router) {
			acts.Post("/", catalogHandler.CreateActivity)
			acts.Get("/{activityID}", catalogHandler.GetActivity)
			acts.Put("/{activityID}", catalogHandler.UpdateActivity)
			acts.Delete("/{activityID}", catalogHandler.DeleteActivity)
		})
		api.Post("/catalog/recalculate", catalogHandler.RecalculateAll)

		api.Route("/users/{userID}", func(users chi.Router) {
			users.Get("/progress", progressHandler.GetUserProgress)
			users.Get("/progress/overall", progressHandler.GetOverallProgress)
			users.Get("/activities/{activityID}/attempts", progressHandler.ListAttempts)
		})

		api.Get("/reports/users/{userID}/progress.xlsx", reportHandler.UserProgressExcel)
	})

	return r
}
