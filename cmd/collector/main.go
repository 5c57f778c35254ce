// Command collector backfills professional matches into a store and keeps
// JSON snapshots of live feeds up to date.
//
//	collector backfill -limit 500 -sink clickhouse
//	collector backfill -sink sqlite -dsn data/oraculo.db -league 16935
//	collector poll -out data/live
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/oraculo/stats-api/internal/collector"
	"github.com/oraculo/stats-api/internal/config"
	"github.com/oraculo/stats-api/internal/sources"
	"github.com/oraculo/stats-api/internal/sources/httpclient"
	"github.com/oraculo/stats-api/internal/storage/cache"
	"github.com/oraculo/stats-api/internal/storage/facts"
	"github.com/oraculo/stats-api/internal/storage/sqldb"
	"github.com/oraculo/stats-api/internal/worker"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: collector <backfill|poll> [flags]")
	os.Exit(2)
}

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		usage()
	}

	logger, err := config.NewLogger(os.Getenv("ENV"))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srcCfg := config.LoadSources()
	var responseCache httpclient.Cache
	if url := os.Getenv("REDIS_URL"); url != "" {
		rdb, err := cache.Open(ctx, url)
		if err != nil {
			logger.Sugar().Warnw("Redis unavailable, running without response cache", "error", err)
		} else {
			defer rdb.Close()
			responseCache = cache.New(rdb, "")
		}
	}
	srcs := sources.New(srcCfg, responseCache, logger)

	switch os.Args[1] {
	case "backfill":
		err = runBackfill(ctx, os.Args[2:], srcs, logger)
	case "poll":
		err = runPoll(ctx, os.Args[2:], srcs, logger)
	default:
		usage()
	}
	if err != nil {
		logger.Sugar().Fatalw("collector failed", "command", os.Args[1], "error", err)
	}
}

func runBackfill(ctx context.Context, args []string, srcs *sources.Set, logger *zap.Logger) error {
	fs := flag.NewFlagSet("backfill", flag.ExitOnError)
	limit := fs.Int("limit", 500, "maximum matches to enqueue")
	league := fs.Int64("league", 0, "only matches of this league ID")
	since := fs.Duration("since", 0, "stop at matches older than this (e.g. 720h)")
	sinkName := fs.String("sink", "clickhouse", "clickhouse, sqlite3 or mysql")
	dsn := fs.String("dsn", "", "sink DSN (defaults to CLICKHOUSE_URL or data/oraculo.db)")
	workers := fs.Int("workers", 2, "concurrent fetchers")
	fs.Parse(args)

	sink, closeSink, err := openSink(ctx, *sinkName, *dsn, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   *workers,
		QueueSize:     *limit + 1,
		BatchSize:     50,
		FlushInterval: 10 * time.Second,
		Source:        srcs.MatchChain(),
		Sink:          sink,
		Logger:        logger,
	})
	pool.Start(ctx)

	opts := collector.BackfillOptions{Limit: *limit, LeagueID: *league, Logger: logger}
	if *since > 0 {
		opts.Since = time.Now().Add(-*since)
	}
	n, err := collector.Backfill(ctx, srcs.OpenDota, pool, opts)
	// drain what was enqueued even when paging stopped early
	pool.Stop()
	logger.Sugar().Infow("Backfill finished", "enqueued", n, "stored", pool.Processed(), "failed", pool.Failed())
	return err
}

func openSink(ctx context.Context, name, dsn string, logger *zap.Logger) (worker.Sink, func(), error) {
	switch name {
	case "clickhouse":
		if dsn == "" {
			dsn = os.Getenv("CLICKHOUSE_URL")
		}
		opts, err := clickhouse.ParseDSN(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse dsn: %w", err)
		}
		conn, err := clickhouse.Open(opts)
		if err != nil {
			return nil, nil, err
		}
		store := facts.NewStore(conn, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return store, func() { conn.Close() }, nil
	case sqldb.DriverSQLite, sqldb.DriverMySQL:
		if dsn == "" && name == sqldb.DriverSQLite {
			dsn = filepath.Join("data", "oraculo.db")
			if err := os.MkdirAll("data", 0o755); err != nil {
				return nil, nil, err
			}
		}
		db, err := sqldb.Open(name, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := sqldb.Migrate(db, name); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqldb.NewBuilder(db, logger), func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown sink %q", name)
}

func runPoll(ctx context.Context, args []string, srcs *sources.Set, logger *zap.Logger) error {
	fs := flag.NewFlagSet("poll", flag.ExitOnError)
	out := fs.String("out", filepath.Join("data", "live"), "snapshot directory")
	liveEvery := fs.Duration("live", 30*time.Second, "interval for live feeds")
	slowEvery := fs.Duration("slow", 5*time.Minute, "interval for fixtures and recent matches")
	once := fs.Bool("once", false, "poll every target once and exit")
	fs.Parse(args)

	targets := []collector.Target{
		{
			Name:     "opendota_pro_matches",
			Interval: *slowEvery,
			Path:     filepath.Join(*out, "opendota_pro_matches.json"),
			Fetch: func(ctx context.Context) (any, error) {
				return srcs.OpenDota.ProMatches(ctx, 0)
			},
		},
		{
			Name:     "steam_live_league_games",
			Interval: *liveEvery,
			Path:     filepath.Join(*out, "steam_live_league_games.json"),
			Fetch: func(ctx context.Context) (any, error) {
				return srcs.Steam.LiveLeagueGames(ctx)
			},
		},
	}
	if srcs.PandaScore != nil {
		targets = append(targets,
			collector.Target{
				Name:     "pandascore_running",
				Interval: *liveEvery,
				Path:     filepath.Join(*out, "pandascore_running.json"),
				Fetch: func(ctx context.Context) (any, error) {
					return srcs.PandaScore.RunningMatches(ctx)
				},
			},
			collector.Target{
				Name:     "pandascore_upcoming",
				Interval: *slowEvery,
				Path:     filepath.Join(*out, "pandascore_upcoming.json"),
				Fetch: func(ctx context.Context) (any, error) {
					return srcs.PandaScore.UpcomingMatches(ctx, 50)
				},
			},
		)
	}

	poller, err := collector.NewPoller(targets, logger)
	if err != nil {
		return err
	}
	if *once {
		return poller.RunOnce(ctx)
	}
	logger.Sugar().Infow("Polling", "targets", len(targets), "out", *out)
	return poller.Run(ctx)
}
