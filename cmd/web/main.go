package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"lingolearn/internal/app"
	"lingolearn/internal/db"
)

func main() {
	cfg := app.LoadConfig()

	var dbConn *sql.DB
	if !cfg.UseMemoryStore() {
		var err error
		dbConn, err = db.OpenPostgresWithConfig(context.Background(), cfg.DBDSN, db.PostgresConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifeMins) * time.Minute,
		})
		if err != nil {
			log.Printf("database error: %v", err)
			os.Exit(1)
		}
		defer dbConn.Close()
	}

	r := app.NewRouter(cfg, dbConn)

	log.Printf("lingolearn web listening on %s (store=%s)", cfg.HTTPAddr, cfg.StoreBackend)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}
