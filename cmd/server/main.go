package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexmarch/internal/config"
	"github.com/freeeve/hexmarch/internal/handler"
	"github.com/freeeve/hexmarch/internal/logger"
	"github.com/freeeve/hexmarch/internal/middleware"
	"github.com/freeeve/hexmarch/internal/sheet"
	sheetcsv "github.com/freeeve/hexmarch/internal/sheet/csv"
	"github.com/freeeve/hexmarch/internal/sheet/postgres"
	sheetredis "github.com/freeeve/hexmarch/internal/sheet/redis"
	"github.com/freeeve/hexmarch/internal/service"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("backend", cfg.SheetBackend).Msg("Config loaded")

	// Durable sheet store
	var durable sheet.Store
	switch cfg.SheetBackend {
	case "postgres":
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		durable = postgres.NewStore(db)
	default:
		store, err := sheetcsv.New(cfg.SheetDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.SheetDir).Msg("Sheet directory unusable")
		}
		durable = store
	}

	// Optional Redis mirror for fast reads
	var mirror sheet.Store
	if cfg.RedisURL != "" {
		redisClient, err := sheetredis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer redisClient.Close()
		mirror = redisClient
	}
	store := sheet.NewMirrored(durable, mirror)

	// WebSocket hub
	wsHub := handler.NewHub()
	notifier := handler.NewHubNotifier(wsHub, cfg.ChannelID)

	// Services
	speed := service.NewSpeedResolver(store)
	collisions := service.NewCollisionDetector(notifier, cfg.GamemasterID)
	movementEngine := service.NewMovementEngine(store, notifier, collisions)
	statusEngine := service.NewStatusEngine(store, notifier, cfg.RaidMinutes)
	movementSvc := service.NewMovementService(store, speed, notifier)
	armySvc := service.NewArmyService(store)
	adminSvc := service.NewAdminService(store, mirror)

	// Handlers
	movementHandler := handler.NewMovementHandler(movementSvc)
	armyHandler := handler.NewArmyHandler(armySvc)
	adminHandler := handler.NewAdminHandler(adminSvc)
	wsHandler := handler.NewWSHandler(wsHub)

	// Router
	mux := http.NewServeMux()
	identityMw := middleware.Identity(cfg.GamemasterID)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Protected API routes
	api := http.NewServeMux()
	api.HandleFunc("POST /movements", movementHandler.CreateMovement)
	api.HandleFunc("GET /movements", movementHandler.ListMovements)
	api.HandleFunc("GET /movements/{id}", movementHandler.GetMovement)
	api.HandleFunc("POST /movements/{id}/retreat", movementHandler.Retreat)
	api.HandleFunc("DELETE /movements/{id}", movementHandler.Cancel)
	api.HandleFunc("POST /armies", armyHandler.CreateArmy)
	api.HandleFunc("GET /armies", armyHandler.ListArmies)
	api.HandleFunc("GET /armies/{id}", armyHandler.GetArmy)
	api.HandleFunc("PATCH /armies/{id}/status", armyHandler.SetStatus)
	api.HandleFunc("DELETE /armies/{id}", armyHandler.DeleteArmy)
	api.HandleFunc("POST /admin/pause", adminHandler.Pause)
	api.HandleFunc("POST /admin/unpause", adminHandler.Unpause)
	api.HandleFunc("GET /admin/status", adminHandler.GetStatus)
	api.HandleFunc("POST /admin/backup", adminHandler.Backup)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", identityMw(api)))

	// WebSocket (identity via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Restore status timers from the checkpoint sheet after restart.
	if err := statusEngine.LoadCheckpoint(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to load status timer checkpoint (non-fatal)")
	}

	// Start the simulation clock
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ticker := service.NewTicker(cfg.TickInterval, movementEngine, statusEngine)
	go ticker.Start(ctx)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
