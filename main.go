package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"apteka/m/internal/api"
	"apteka/m/internal/config"
	"apteka/m/internal/database"
	"apteka/m/internal/migrations"
	"apteka/m/internal/security"
	"apteka/m/internal/seed"
	"apteka/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	if cfg.CatalogCSV != "" {
		seed.LoadCatalog(db, cfg.CatalogCSV)
	}

	st := store.New(db, security.NewHasher())
	handler := api.New(st, cfg.Secret)

	log.Printf("pharmacy server starting on :%s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
