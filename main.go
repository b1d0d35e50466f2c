package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"irt-diagnostic-engine/internal/bank"
	"irt-diagnostic-engine/internal/cache"
	"irt-diagnostic-engine/internal/config"
	"irt-diagnostic-engine/internal/database"
	"irt-diagnostic-engine/internal/engine"
	"irt-diagnostic-engine/internal/ingest"
	"irt-diagnostic-engine/internal/irt"
	"irt-diagnostic-engine/internal/logger"
	"irt-diagnostic-engine/internal/metrics"
)

// defaultDiscrimination is applied to every bank item: the source data
// carries no per-item discrimination field, so every item defaults to
// a=1.0 (exam blueprints and inline items may still override it).
const defaultDiscrimination = 1.0

func main() {
	cfg := config.Load()

	log := logger.New(&cfg.Logging)
	log.Info("starting diagnostic engine")

	metricsInstance := metrics.New()

	db, err := database.New(&cfg.Database, metricsInstance, log)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient, err := cache.New(&cfg.Redis, metricsInstance, log)
	if err != nil {
		log.Fatalf("failed to initialize redis: %v", err)
	}
	defer redisClient.Close()

	store := ingest.NewStore(db)

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer loadCancel()

	logEntries, err := store.AllResponseLog(loadCtx)
	if err != nil {
		log.Fatalf("failed to load response log: %v", err)
	}
	topicRows, err := store.TopicCatalog(loadCtx)
	if err != nil {
		log.Fatalf("failed to load topic catalog: %v", err)
	}

	engineCfg := irt.Config{
		Guessing:             cfg.Engine.Guessing,
		MaxNewtonIter:        cfg.Engine.MaxNewtonIter,
		NewtonTol:            cfg.Engine.NewtonTol,
		SigmaMin:             cfg.Engine.SigmaMin,
		SigmaMax:             cfg.Engine.SigmaMax,
		PriorK:               cfg.Engine.PriorK,
		TimeScale:            cfg.Engine.TimeScale,
		AccuracyWeight:       cfg.Engine.AccuracyWeight,
		TimeWeight:           cfg.Engine.TimeWeight,
		DifficultyBias:       cfg.Engine.DifficultyBias,
		CalibrationMinTimeS:  cfg.Engine.CalibrationMinTimeS,
		CalibrationMaxTimeS:  cfg.Engine.CalibrationMaxTimeS,
		DefaultResponseTimeS: cfg.Engine.DefaultResponseTimeS,
	}

	bankCtx := bank.New(logEntries, topicRows, defaultDiscrimination, engineCfg, metricsInstance)
	log.Infof("bank context built: %d items, %d users with response history", len(bankCtx.Items), len(bankCtx.ResponsesByUser))

	eng := engine.New(bankCtx, engineCfg, log, metricsInstance, redisClient)

	analysis := eng.ListItems(0).Analysis
	log.Infof("engine ready: %d items across %d main topics", analysis.TotalItems, analysis.TotalMainTopics)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		log.Infof("starting metrics server on port %s", cfg.Server.HTTPPort)
		if err := http.ListenAndServe(":"+cfg.Server.HTTPPort, mux); err != nil {
			log.Errorf("metrics server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	_, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Close(); err != nil {
		log.Errorf("error closing database: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Errorf("error closing redis: %v", err)
	}

	log.Info("shutdown complete")
}
