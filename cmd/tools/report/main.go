// Command report builds the statistics report from match dumps or a database
// built with builddb, and writes it as Markdown, CSV, JSON, XML or XLSX.
//
//	report -out reports/wallachia.xlsx data/matches/
//	report -db data/oraculo.db -team-a "Team Spirit" -team-b "Tundra Esports" -out h2h.md
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/oraculo/stats-api/internal/analysis"
	"github.com/oraculo/stats-api/internal/config"
	"github.com/oraculo/stats-api/internal/dataset"
	"github.com/oraculo/stats-api/internal/export"
	"github.com/oraculo/stats-api/internal/knowledge"
	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/storage/sqldb"
)

func main() {
	_ = godotenv.Load()

	out := flag.String("out", "report.md", "output file; the extension picks the format")
	format := flag.String("format", "", "md, csv, json, xml or xlsx (overrides the extension)")
	title := flag.String("title", "", "report title")
	dbDriver := flag.String("driver", sqldb.DriverSQLite, "driver for -db")
	dbDSN := flag.String("db", "", "read matches from this database instead of files")
	limit := flag.Int("limit", 0, "most recent matches to read from -db; 0 reads all")
	heroesPath := flag.String("heroes", "", "hero list JSON for hero names")
	kbPath := flag.String("knowledge", config.LoadAnalysis().KnowledgePath, "knowledge base used for hero names when -heroes is empty")
	minGames := flag.Int("min-games", 5, "minimum games for win-rate rows")
	topN := flag.Int("top", 25, "rows per ranking table; 0 keeps all")
	teamA := flag.String("team-a", "", "head-to-head team A")
	teamB := flag.String("team-b", "", "head-to-head team B")
	flag.Parse()

	logger, err := config.NewLogger(os.Getenv("ENV"))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	var matches []models.Match
	switch {
	case *dbDSN != "":
		db, err := sqldb.Open(*dbDriver, *dbDSN)
		if err != nil {
			log.Fatalw("Failed to open database", "error", err)
		}
		defer db.Close()
		matches, err = sqldb.NewBuilder(db, logger).LoadMatches(context.Background(), *limit)
		if err != nil {
			log.Fatalw("Failed to load matches", "error", err)
		}
	case flag.NArg() > 0:
		matches, err = dataset.LoadMatches(flag.Args()...)
		if err != nil {
			log.Warnw("Some match files could not be read", "error", err)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: report [flags] <match files or directories>... | report -db <dsn> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	names := map[int]string{}
	if *heroesPath != "" {
		heroes, err := dataset.LoadHeroes(*heroesPath)
		if err != nil {
			log.Fatalw("Failed to load heroes", "error", err)
		}
		names = dataset.HeroNames(heroes)
	} else if kb, err := knowledge.Load(*kbPath); err == nil {
		names = kb.HeroNames()
	} else {
		log.Warnw("No hero names, heroes are shown by ID", "error", err)
	}

	report := analysis.BuildReport(matches, analysis.ReportOptions{
		Title:     *title,
		HeroNames: names,
		MinGames:  *minGames,
		Top:       *topN,
		TeamA:     *teamA,
		TeamB:     *teamB,
		Now:       time.Now(),
	})

	files, err := export.Write(*out, *format, report)
	if err != nil {
		log.Fatalw("Failed to write report", "error", err)
	}
	log.Infow("Report written", "matches", len(matches), "files", files)
}
