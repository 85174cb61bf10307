package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ibertrade/fmbridge/internal/config"
	"github.com/ibertrade/fmbridge/internal/database"
	"github.com/ibertrade/fmbridge/internal/forcemanager"
	"github.com/ibertrade/fmbridge/internal/handlers"
	"github.com/ibertrade/fmbridge/internal/models"
	"github.com/ibertrade/fmbridge/internal/store"
	"github.com/ibertrade/fmbridge/internal/sync"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema (Critical for Zero-Config)
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.ConfigParam{},
		&models.User{},
		&models.Country{},
		&models.CountryState{},
		&models.Currency{},
		&models.Partner{},
		&models.CrmStage{},
		&models.Lead{},
		&models.ProductCategory{},
		&models.Product{},
		&models.SaleOrder{},
		&models.SaleOrderLine{},
		&models.Warehouse{},
		&models.StockPicking{},
		&models.StockMove{},
		&models.Invoice{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Record store with write-through invalidation hooks
	store.RegisterHooks(db.DB)
	recordStore := store.New(db.DB)
	seedParams(recordStore, cfg.ForceManager)

	// 5. ForceManager client + sync service
	client := forcemanager.NewClient(cfg.ForceManager, recordStore)
	svc := sync.NewService(client, recordStore, cfg.ForceManager)
	svc.Start()

	// 6. HTTP surface
	router := handlers.NewRouter(cfg, svc)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	svc.Stop()

	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

// seedParams writes the API connection defaults into the parameter
// store on first start; values already present win so they can be
// changed at runtime without a restart.
func seedParams(s *store.Store, fm config.ForceManagerConfig) {
	defaults := map[string]string{
		forcemanager.ParamBaseURL:     fm.BaseURL,
		forcemanager.ParamLoginURL:    fm.LoginURL,
		forcemanager.ParamAPIUser:     fm.APIUser,
		forcemanager.ParamAPIPassword: fm.APIPassword,
	}
	for key, value := range defaults {
		if value == "" {
			continue
		}
		if _, ok := s.GetParam(key); ok {
			continue
		}
		if err := s.SetParam(key, value); err != nil {
			log.Printf("⚠️ seed param %s: %v", key, err)
		}
	}
}
