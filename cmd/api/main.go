// Command api serves the Oráculo HTTP API.
//
// @title Oráculo Stats API
// @version 1.0
// @description Dota 2 esports statistics, match predictions and value bet detection.
// @BasePath /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	"github.com/oraculo/stats-api/docs"
	"github.com/oraculo/stats-api/internal/config"
	"github.com/oraculo/stats-api/internal/handlers"
	"github.com/oraculo/stats-api/internal/knowledge"
	"github.com/oraculo/stats-api/internal/logic"
	"github.com/oraculo/stats-api/internal/notify"
	"github.com/oraculo/stats-api/internal/ocr"
	"github.com/oraculo/stats-api/internal/predict"
	"github.com/oraculo/stats-api/internal/sources"
	"github.com/oraculo/stats-api/internal/storage/cache"
	"github.com/oraculo/stats-api/internal/storage/facts"
	"github.com/oraculo/stats-api/internal/storage/history"
	"github.com/oraculo/stats-api/internal/worker"
)

func main() {
	// A missing .env is fine in containers
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("Invalid configuration", zap.Error(err))
	}

	logger, err := config.NewLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalw("Failed to create Postgres pool", "error", err)
	}
	defer pg.Close()

	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		log.Fatalw("Invalid ClickHouse URL", "error", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		log.Fatalw("Failed to open ClickHouse", "error", err)
	}
	defer ch.Close()

	rdb, err := cache.Open(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalw("Failed to connect to Redis", "error", err)
	}
	defer rdb.Close()
	responseCache := cache.New(rdb, "")

	historyStore := history.NewStore(pg)
	factsStore := facts.NewStore(ch, logger)

	// Knowledge and model
	kb, err := knowledge.Load(cfg.Analysis.KnowledgePath)
	if err != nil {
		log.Fatalw("Failed to load knowledge base", "error", err, "path", cfg.Analysis.KnowledgePath)
	}
	model, err := predict.LoadModel(cfg.Analysis.ModelPath)
	if err != nil {
		log.Warnw("No trained model, using draft heuristic", "error", err, "path", cfg.Analysis.ModelPath)
		model = nil
	}

	srcs := sources.New(cfg.Sources, responseCache, logger)

	heroWinRates := map[int]float64{}
	statsCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	if stats, err := srcs.OpenDota.HeroStats(statsCtx); err != nil {
		log.Warnw("Hero win rates unavailable, drafts use knowledge only", "error", err)
	} else {
		heroWinRates = predict.HeroWinRatesFrom(stats)
	}
	cancel()

	predictor := predict.NewPredictor(kb, heroWinRates, predict.EloFromKnowledge(kb, 32), model)

	// Services
	heroStats := logic.NewHeroStatsService(ch, kb.HeroNames())
	teamStats := logic.NewTeamStatsService(ch, kb.HeroNames())

	killsMean := 0.0
	sideCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if sides, err := teamStats.GetSideComparison(sideCtx, 90); err == nil && sides.Matches > 0 {
		killsMean = sides.Radiant.AvgKills + sides.Dire.AvgKills
	}
	cancel()

	var notifier logic.Notifier
	tg, err := notify.NewTelegram(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, logger)
	if err != nil {
		log.Warnw("Telegram alerts disabled", "error", err)
	} else if tg != nil {
		notifier = tg
	}

	var recognizer logic.OCR
	if t := ocr.New(cfg.TesseractPath); t.Available() {
		recognizer = t
	} else {
		log.Warnw("tesseract not found, /process/image disabled", "path", cfg.TesseractPath)
	}

	processing := logic.NewProcessingService(logic.ProcessingConfig{
		Predictor:      predictor,
		OCR:            recognizer,
		History:        historyStore,
		Notifier:       notifier,
		MinEdgePercent: cfg.Analysis.MinEdgePercent,
		KellyFraction:  cfg.Analysis.KellyFraction,
		KillsMean:      killsMean,
		Logger:         logger,
	})

	// Ingest pool
	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		Source:        srcs.MatchChain(),
		Sink:          factsStore,
		Logger:        logger,
	})
	pool.Start(ctx)

	go pruneHistory(ctx, historyStore, cfg.HistoryRetention, log)

	h := handlers.New(handlers.Config{
		WorkerPool:     pool,
		Postgres:       pg,
		ClickHouse:     ch,
		Redis:          responseCache,
		Logger:         logger,
		HeroStats:      heroStats,
		TeamStats:      teamStats,
		Query:          logic.NewQueryService(ch),
		Prediction:     logic.NewPredictionService(predictor),
		Processing:     processing,
		History:        historyStore,
		Facts:          factsStore,
		MigrateHistory: func() error { return history.Migrate(cfg.PostgresURL) },
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(handlers.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	})

	r.Group(func(r chi.Router) {
		r.Use(handlers.RateLimit(float64(cfg.RateLimitPerSecond), cfg.RateLimitBurst, logger))
		r.Mount("/api/v1", h.Routes())
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		log.Infow("API listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Graceful shutdown failed", "error", err)
	}
	pool.Stop()
	log.Infow("Stopped", "processed", pool.Processed(), "failed", pool.Failed())
}

func pruneHistory(ctx context.Context, store *history.Store, retention time.Duration, log *zap.SugaredLogger) {
	if retention <= 0 {
		return
	}
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()
	for {
		n, err := store.Prune(ctx, retention)
		if err != nil {
			log.Warnw("History prune failed", "error", err)
		} else if n > 0 {
			log.Infow("Pruned old analyses", "deleted", n, "retention", retention)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
