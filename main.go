package main

import (
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"godisso/adapters/postgres"
	"godisso/app"
	"godisso/internal"
	"godisso/internal/config"
	"godisso/ports"
	"godisso/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewDefaultLogger()

	var repo ports.AssessmentRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := postgres.EnsureSchema(db); err != nil {
			log.Fatalf("Failed to prepare database schema: %v", err)
		}
		repo = postgres.NewAssessmentRepository(db)
		logger.Info("persistence enabled")
	} else {
		logger.Warn("DATABASE_URL not set, running without persistence")
	}

	svc := app.NewAssessmentService(repo, logger, app.Options{
		Alpha:         cfg.Assessment.Alpha,
		Tolerance:     cfg.Assessment.Tolerance,
		MaxIterations: cfg.Assessment.MaxIterations,
	})
	server := ui.NewServer(ui.Config{
		Port:    cfg.Server.Port,
		GinMode: cfg.Server.GinMode,
	}, svc, repo, logger)

	logger.Info("listening on :%s", cfg.Server.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
