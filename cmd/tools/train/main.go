// Command train fits the draft model on historical matches, evaluates it on
// a held-out split and saves it where the API loads it from.
//
//	train -out data/model.json data/matches/
//	train -db data/oraculo.db -ratings data/elo.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/oraculo/stats-api/internal/config"
	"github.com/oraculo/stats-api/internal/dataset"
	"github.com/oraculo/stats-api/internal/export"
	"github.com/oraculo/stats-api/internal/knowledge"
	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/predict"
	"github.com/oraculo/stats-api/internal/sources"
	"github.com/oraculo/stats-api/internal/storage/sqldb"
)

func main() {
	_ = godotenv.Load()
	analysisCfg := config.LoadAnalysis()

	out := flag.String("out", analysisCfg.ModelPath, "model output path")
	kbPath := flag.String("knowledge", analysisCfg.KnowledgePath, "knowledge base YAML")
	dbDriver := flag.String("driver", sqldb.DriverSQLite, "driver for -db")
	dbDSN := flag.String("db", "", "read matches from this database instead of files")
	testRatio := flag.Float64("test", 0.2, "held-out share in (0,1)")
	seed := flag.Int64("seed", 42, "split seed")
	epochs := flag.Int("epochs", 500, "gradient descent epochs")
	lr := flag.Float64("lr", 0.1, "learning rate")
	l2 := flag.Float64("l2", 0.001, "L2 penalty; negative disables")
	eloK := flag.Float64("k", 32, "Elo K factor")
	heroStats := flag.Bool("hero-stats", true, "fetch pro hero win rates from OpenDota")
	ratingsOut := flag.String("ratings", "", "also write the final Elo table as CSV")
	flag.Parse()

	logger, err := config.NewLogger(os.Getenv("ENV"))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()
	ctx := context.Background()

	var matches []models.Match
	switch {
	case *dbDSN != "":
		db, err := sqldb.Open(*dbDriver, *dbDSN)
		if err != nil {
			log.Fatalw("Failed to open database", "error", err)
		}
		defer db.Close()
		if matches, err = sqldb.NewBuilder(db, logger).LoadMatches(ctx, 0); err != nil {
			log.Fatalw("Failed to load matches", "error", err)
		}
	case flag.NArg() > 0:
		if matches, err = dataset.LoadMatches(flag.Args()...); err != nil {
			log.Warnw("Some match files could not be read", "error", err)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: train [flags] <match files or directories>... | train -db <dsn> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	kb, err := knowledge.Load(*kbPath)
	if err != nil {
		log.Fatalw("Failed to load knowledge base", "path", *kbPath, "error", err)
	}

	winRates := map[int]float64{}
	if *heroStats {
		srcs := sources.New(config.LoadSources(), nil, logger)
		statsCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		stats, err := srcs.OpenDota.HeroStats(statsCtx)
		cancel()
		if err != nil {
			log.Warnw("Hero win rates unavailable, training without them", "error", err)
		} else {
			winRates = predict.HeroWinRatesFrom(stats)
		}
	}

	fb := &predict.FeatureBuilder{KB: kb, HeroWinRates: winRates, Elo: predict.EloFromKnowledge(kb, *eloK)}
	samples := predict.BuildSamples(matches, fb)
	train, test, err := predict.TrainTestSplit(samples, *testRatio, *seed)
	if err != nil {
		log.Fatalw("Split failed", "samples", len(samples), "error", err)
	}

	model, err := predict.Train(train, predict.TrainOptions{LearningRate: *lr, Epochs: *epochs, L2: *l2})
	if err != nil {
		log.Fatalw("Training failed", "error", err)
	}
	model.Duration = predict.FitDuration(train)
	if len(test) > 0 {
		metrics, err := predict.Evaluate(model, test)
		if err != nil {
			log.Fatalw("Evaluation failed", "error", err)
		}
		model.Test = &metrics
		log.Infow("Held-out metrics", "n", metrics.N, "accuracy", metrics.Accuracy, "log_loss", metrics.LogLoss, "brier", metrics.Brier)
	}

	if err := model.Save(*out); err != nil {
		log.Fatalw("Failed to save model", "path", *out, "error", err)
	}
	log.Infow("Model saved", "path", *out, "train", len(train), "test", len(test), "duration_fitted", model.Duration.Fitted)

	if *ratingsOut != "" {
		if err := export.WriteCSV(*ratingsOut, fb.Elo.Ratings()); err != nil {
			log.Fatalw("Failed to write ratings", "error", err)
		}
	}
}
