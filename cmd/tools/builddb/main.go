// Command builddb loads saved match dumps into a local SQLite (or MySQL)
// database for ad-hoc SQL.
//
//	builddb -dsn data/oraculo.db -heroes data/heroes.json data/matches/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/oraculo/stats-api/internal/config"
	"github.com/oraculo/stats-api/internal/dataset"
	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/sources"
	"github.com/oraculo/stats-api/internal/storage/sqldb"
)

func main() {
	_ = godotenv.Load()

	driver := flag.String("driver", sqldb.DriverSQLite, "sqlite3 or mysql")
	dsn := flag.String("dsn", filepath.Join("data", "oraculo.db"), "database DSN or SQLite file")
	heroesPath := flag.String("heroes", "", "hero list JSON in the OpenDota /heroes format")
	fetchHeroes := flag.Bool("fetch-heroes", false, "download the hero list from OpenDota")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: builddb [flags] <match files or directories>...")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger, err := config.NewLogger(os.Getenv("ENV"))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	if flag.NArg() == 0 && *heroesPath == "" && !*fetchHeroes {
		flag.Usage()
		os.Exit(2)
	}

	if *driver == sqldb.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(*dsn), 0o755); err != nil {
			log.Fatalw("Failed to create database directory", "error", err)
		}
	}
	db, err := sqldb.Open(*driver, *dsn)
	if err != nil {
		log.Fatalw("Failed to open database", "driver", *driver, "error", err)
	}
	defer db.Close()
	if err := sqldb.Migrate(db, *driver); err != nil {
		log.Fatalw("Migration failed", "error", err)
	}

	ctx := context.Background()
	b := sqldb.NewBuilder(db, logger)

	heroes, err := loadHeroes(ctx, *heroesPath, *fetchHeroes, logger)
	if err != nil {
		log.Fatalw("Failed to load heroes", "error", err)
	}
	if len(heroes) > 0 {
		if err := b.ImportHeroes(ctx, heroes); err != nil {
			log.Fatalw("Hero import failed", "error", err)
		}
	}

	if flag.NArg() > 0 {
		matches, err := dataset.LoadMatches(flag.Args()...)
		if err != nil {
			log.Warnw("Some match files could not be read", "error", err)
		}
		start := time.Now()
		if err := b.ImportMatches(ctx, matches); err != nil {
			log.Fatalw("Match import failed", "error", err)
		}
		log.Infow("Imported matches", "count", len(matches), "took", time.Since(start))
	}

	counts, err := b.Counts(ctx)
	if err != nil {
		log.Fatalw("Failed to count rows", "error", err)
	}
	for table, n := range counts {
		fmt.Printf("%-16s %d\n", table, n)
	}
}

func loadHeroes(ctx context.Context, path string, fetch bool, logger *zap.Logger) ([]models.Hero, error) {
	if path != "" {
		return dataset.LoadHeroes(path)
	}
	if !fetch {
		return nil, nil
	}
	srcs := sources.New(config.LoadSources(), nil, logger)
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	return srcs.OpenDota.Heroes(ctx)
}
