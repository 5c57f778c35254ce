// Command migrate-json upgrades exported analysis records to the current
// layout and can load the result into the history database.
//
//	migrate-json -in old/historico.json -out data/history.v3.json
//	migrate-json -in old/historico.json -import
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/oraculo/stats-api/internal/config"
	"github.com/oraculo/stats-api/internal/migrate"
	"github.com/oraculo/stats-api/internal/storage/history"
)

func main() {
	_ = godotenv.Load()

	in := flag.String("in", "", "JSON array of records to upgrade")
	out := flag.String("out", "", "output file (defaults to <in>.v3.json)")
	doImport := flag.Bool("import", false, "save upgraded records into the history database (POSTGRES_URL)")
	flag.Parse()

	logger, err := config.NewLogger(os.Getenv("ENV"))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *out == "" {
		*out = strings.TrimSuffix(*in, ".json") + ".v3.json"
	}

	res, err := migrate.MigrateFile(*in, *out)
	log.Infow("Migration finished", "in", *in, "out", *out,
		"total", res.Total, "migrated", res.Migrated, "current", res.AlreadyCurrent, "failed", res.Failed)
	if err != nil {
		log.Warnw("Some records were copied unchanged", "error", err)
	}
	if res.Total == 0 || !*doImport {
		return
	}

	saved, err := importHistory(context.Background(), *out, logger)
	if err != nil {
		log.Fatalw("Import failed", "saved", saved, "error", err)
	}
	log.Infow("Imported into history", "saved", saved)
}

func importHistory(ctx context.Context, path string, logger *zap.Logger) (int, error) {
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		return 0, errMissingPostgres
	}
	if err := history.Migrate(url); err != nil {
		return 0, err
	}
	pg, err := pgxpool.New(ctx, url)
	if err != nil {
		return 0, err
	}
	defer pg.Close()
	store := history.NewStore(pg)

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, err
	}

	saved := 0
	for i, raw := range records {
		if v, err := migrate.DetectVersion(raw); err != nil || v != migrate.CurrentVersion {
			logger.Sugar().Warnw("Skipping record that is not current", "index", i, "version", v, "error", err)
			continue
		}
		var rec migrate.V3
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Sugar().Warnw("Skipping unreadable record", "index", i, "error", err)
			continue
		}
		if err := store.Save(ctx, &rec.Analysis); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

var errMissingPostgres = errors.New("POSTGRES_URL is not set")
