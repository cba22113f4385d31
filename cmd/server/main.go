package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/quizdeck/internal/api"
	"github.com/vytor/quizdeck/internal/config"
	"github.com/vytor/quizdeck/internal/db"
	"github.com/vytor/quizdeck/internal/deck"
	"github.com/vytor/quizdeck/internal/game"
	"github.com/vytor/quizdeck/internal/logger"
	"github.com/vytor/quizdeck/internal/repository/sqlite"
	"github.com/vytor/quizdeck/internal/services"
	"github.com/vytor/quizdeck/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("QuizDeck Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("deck_dir=%s", cfg.DeckDir)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("import_worker_count=%d", cfg.ImportWorkerCount)
	log.Debug("import_queue_size=%d", cfg.ImportQueueSize)
	log.Debug("delays_ms correct=%d wrong=%d level_advance=%d", cfg.CorrectDelayMS, cfg.WrongDelayMS, cfg.LevelAdvanceDelayMS)
	log.Debug("max_sessions=%d", cfg.MaxSessions)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	deckService := services.NewDeckService(sqlite.NewDeckRepository(database.DB))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	importDecks(ctx, log, cfg, deckService)

	gameService := services.NewGameService(deckService, services.GameSettings{
		MaxSessions: cfg.MaxSessions,
		Delays: game.Delays{
			Correct:      cfg.CorrectDelay(),
			Incorrect:    cfg.WrongDelay(),
			LevelAdvance: cfg.LevelAdvanceDelay(),
		},
	})

	srv := api.NewServer(database, deckService, gameService)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}
	log.Info("closing %d live sessions", gameService.Count())

	log.Info("===========================================")
	log.Info("QuizDeck Server Stopped")
	log.Info("===========================================")
}

// importDecks loads every deck under cfg.DeckDir into the catalog before
// the server starts taking requests, then drops catalog entries whose file
// is gone.
func importDecks(ctx context.Context, log *logger.Logger, cfg config.Config, decks services.DeckService) {
	sources, err := deck.SourcesFromDir(cfg.DeckDir)
	if err != nil {
		log.Warn("no decks imported: %v", err)
		return
	}

	pool := worker.NewPool(cfg.ImportWorkerCount, cfg.ImportQueueSize)
	pool.Start(ctx)
	for _, src := range sources {
		pool.Submit(&worker.ImportDeckJob{Importer: decks, Source: src})
	}
	pool.Drain()
	log.Info("deck import finished: %d imported, %d failed", pool.Completed(), pool.Failed())

	refs := make([]string, 0, len(sources))
	for _, src := range sources {
		refs = append(refs, src.Ref())
	}
	if _, err := decks.Prune(ctx, refs); err != nil {
		log.Warn("failed to prune deck catalog: %v", err)
	}
}
