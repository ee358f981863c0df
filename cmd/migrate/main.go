package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gtuventures/ventures-backend/internal/config"
	"github.com/gtuventures/ventures-backend/internal/database"
	"github.com/gtuventures/ventures-backend/internal/migration"
	"github.com/gtuventures/ventures-backend/internal/repository"
	"github.com/gtuventures/ventures-backend/internal/service"
	pkges "github.com/gtuventures/ventures-backend/pkg/elasticsearch"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}

	configPath := flag.String("config", fmt.Sprintf("configs/config.%s.yaml", env), "config file path")
	dryRun := flag.Bool("dry-run", false, "list the tables that would be migrated without touching the database")
	reindex := flag.Bool("reindex", false, "rebuild the Elasticsearch index after migrating")
	flag.Parse()

	if files := config.LoadDotEnv(env); len(files) == 0 {
		log.Println("No .env file found, using environment variables")
	}

	if *dryRun {
		for _, table := range migration.Tables() {
			log.Printf("[dry-run] Would migrate: %s", table)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	ctx := context.Background()
	start := time.Now()
	if err := migration.Run(ctx, db); err != nil {
		log.Fatalf("[migrate] FAILED: %v", err)
	}
	log.Printf("[migrate] %d tables ready in %v", len(migration.Tables()), time.Since(start))

	if !*reindex {
		return
	}
	if !cfg.Elasticsearch.Enabled {
		log.Fatal("[reindex] elasticsearch is not enabled in config")
	}
	client, err := pkges.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
	if err != nil {
		log.Fatalf("[reindex] Failed to connect to Elasticsearch: %v", err)
	}
	search := service.NewSearchService(client, cfg.Elasticsearch.IndexPrefix,
		repository.NewContentRepository(db), repository.NewTenderRepository(db))
	n, err := search.Reindex(ctx)
	if err != nil {
		log.Fatalf("[reindex] FAILED: %v", err)
	}
	log.Printf("[reindex] Indexed %d documents", n)
}
