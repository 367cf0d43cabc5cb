package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"

	"community-backend/internal/auth"
	"community-backend/internal/config"
	"community-backend/internal/database"
	"community-backend/internal/db"
	"community-backend/internal/handlers"
	"community-backend/internal/health"
	h "community-backend/internal/http"
	"community-backend/internal/middleware"
	"community-backend/internal/repositories"
	"community-backend/internal/services"
	"community-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	skipMigrations := flag.Bool("skip-migrations", false, "Skip database migrations on startup")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	if !*skipMigrations {
		migrator := database.NewMigrator(pool, migrations.FS)
		if err := migrator.Run(context.Background()); err != nil {
			log.Fatalf("Migrations failed: %v", err)
		}
	}

	jwtManager := auth.NewJWTManager(cfg)

	accountRepo := repositories.NewAccountRepository(pool)
	treeRepo := repositories.NewFamilyTreeRepository(pool)

	uploader, err := services.NewS3Uploader(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize photo storage: %v", err)
	}

	treeService := services.NewFamilyTreeService(treeRepo, accountRepo, uploader)

	authHandler := handlers.NewAuthHandler(accountRepo, jwtManager)
	treeHandler := handlers.NewFamilyTreeHandler(treeService)
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool))

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, accountRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	router := h.NewRouter(authHandler, treeHandler, healthHandler, authMiddleware)
	handler := corsMiddleware(router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s (env: %s)", addr, cfg.Server.Env)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
