package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lawnchairsociety/roadgen/internal/audio"
	"github.com/lawnchairsociety/roadgen/internal/catalog"
	"github.com/lawnchairsociety/roadgen/internal/config"
	"github.com/lawnchairsociety/roadgen/internal/logger"
	"github.com/lawnchairsociety/roadgen/internal/road"
	"github.com/lawnchairsociety/roadgen/internal/store"
	"github.com/lawnchairsociety/roadgen/internal/stream"
)

func main() {
	catalogFile := flag.String("catalog", "data/catalog.yaml", "Path to tile catalog YAML file")
	configFile := flag.String("config", "data/config.yaml", "Path to server config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	noStore := flag.Bool("nostore", false, "Run without track storage")
	flag.Parse()

	// Initialize logger first (before any logging)
	logConfig, _ := logger.LoadConfig(*loggingConfig)
	logger.Initialize(logConfig)

	logger.Info("Starting road generation server")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load server config, using defaults", "path", *configFile, "error", err)
		cfg = config.DefaultConfig()
	}
	if *addr != "" {
		cfg.Stream.Address = *addr
	}

	cat, err := catalog.Load(*catalogFile)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	logger.Info("Catalog loaded", "name", cat.Name, "categories", len(cat.Categories))

	gen, err := road.NewGenerator(cat, road.OptionsFromConfig(cfg.Generator))
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}

	segmenter := audio.Segmenter{
		GroupMinSeconds: cfg.Generator.GroupMinSeconds,
		MinChangeRate:   cfg.Generator.MinChangeRate,
	}
	srv := stream.NewServer(cfg.Stream, gen, segmenter)

	if !*noStore {
		db, err := store.Open(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		srv.SetStore(db)
		logger.Info("Track database initialized", "driver", cfg.Database.Driver)
	}

	if len(cfg.Stream.AllowedOrigins) == 0 {
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	} else if len(cfg.Stream.AllowedOrigins) == 1 && cfg.Stream.AllowedOrigins[0] == "*" {
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("WebSocket CORS policy", "allowed_origins", cfg.Stream.AllowedOrigins)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Fatalf("WebSocket server error: %v", err)
		}
	}()

	logger.Info("Press Ctrl+C to shutdown")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown did not complete cleanly", "error", err)
	}
	logger.Info("Server stopped")
}
