// Command chartgen renders SVG bar charts of hero and team results, either
// from the ClickHouse fact tables or from saved match dumps.
//
//	chartgen -days 30 -out web/static/img
//	chartgen -out charts data/matches/
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"sort"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/joho/godotenv"

	"github.com/oraculo/stats-api/internal/analysis"
	"github.com/oraculo/stats-api/internal/config"
	"github.com/oraculo/stats-api/internal/dataset"
	"github.com/oraculo/stats-api/internal/export"
	"github.com/oraculo/stats-api/internal/knowledge"
	"github.com/oraculo/stats-api/internal/logic"
	"github.com/oraculo/stats-api/internal/models"
)

type chart struct {
	file, title string
	bars        []export.Bar
	opts        export.ChartOptions
}

func winRateBars(rows []models.WinRateRow, n int) []export.Bar {
	if len(rows) > n {
		rows = rows[:n]
	}
	bars := make([]export.Bar, len(rows))
	for i, r := range rows {
		bars[i] = export.Bar{Label: r.Key, Value: r.WinRate * 100}
	}
	return bars
}

func gamesBars(rows []models.WinRateRow, n int) []export.Bar {
	sorted := append([]models.WinRateRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Games > sorted[j].Games })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	bars := make([]export.Bar, len(sorted))
	for i, r := range sorted {
		bars[i] = export.Bar{Label: r.Key, Value: float64(r.Games)}
	}
	return bars
}

func main() {
	_ = godotenv.Load()

	out := flag.String("out", filepath.Join("web", "static", "img"), "output directory")
	days := flag.Int("days", 30, "look-back window for ClickHouse queries")
	minGames := flag.Int("min-games", 10, "minimum games for win-rate bars")
	topN := flag.Int("top", 10, "bars per chart")
	kbPath := flag.String("knowledge", config.LoadAnalysis().KnowledgePath, "knowledge base for hero names")
	flag.Parse()

	logger, err := config.NewLogger(os.Getenv("ENV"))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()
	ctx := context.Background()

	names := map[int]string{}
	if kb, err := knowledge.Load(*kbPath); err == nil {
		names = kb.HeroNames()
	} else {
		log.Warnw("No hero names, heroes are shown by ID", "error", err)
	}

	var heroes, teams []models.WinRateRow
	var sides *models.SideStats
	if flag.NArg() > 0 {
		matches, err := dataset.LoadMatches(flag.Args()...)
		if err != nil {
			log.Warnw("Some match files could not be read", "error", err)
		}
		heroes = analysis.GroupWinRates(analysis.HeroOutcomes(matches, names), *minGames)
		teams = analysis.GroupWinRates(analysis.TeamOutcomes(matches), *minGames)
		s := analysis.SideComparison(matches, names)
		sides = &s
	} else {
		opts, err := clickhouse.ParseDSN(os.Getenv("CLICKHOUSE_URL"))
		if err != nil {
			log.Fatalw("Invalid CLICKHOUSE_URL", "error", err)
		}
		conn, err := clickhouse.Open(opts)
		if err != nil {
			log.Fatalw("Failed to open ClickHouse", "error", err)
		}
		defer conn.Close()
		if err := conn.Ping(ctx); err != nil {
			log.Fatalw("Failed to ping ClickHouse", "error", err)
		}

		if heroes, err = logic.NewHeroStatsService(conn, names).GetHeroWinRates(ctx, *days, *minGames); err != nil {
			log.Fatalw("Hero query failed", "error", err)
		}
		teamSvc := logic.NewTeamStatsService(conn, names)
		if teams, err = teamSvc.GetTeamWinRates(ctx, *days, *minGames); err != nil {
			log.Fatalw("Team query failed", "error", err)
		}
		if sides, err = teamSvc.GetSideComparison(ctx, *days); err != nil {
			log.Fatalw("Side query failed", "error", err)
		}
	}

	pct := export.ChartOptions{ValueFormat: "%.1f"}
	charts := []chart{
		{"hero_popularity.svg", "Most played heroes (games)", gamesBars(heroes, *topN), export.ChartOptions{}},
		{"hero_win_rates.svg", "Hero win rate (%)", winRateBars(heroes, *topN), export.ChartOptions{ValueFormat: "%.1f", Color: "#2ecc71"}},
		{"team_win_rates.svg", "Team win rate (%)", winRateBars(teams, *topN), export.ChartOptions{ValueFormat: "%.1f", Color: "#e74c3c"}},
	}
	if sides != nil && sides.Matches > 0 {
		charts = append(charts, chart{"side_win_rates.svg", "Win rate by side (%)", []export.Bar{
			{Label: "Radiant", Value: sides.Radiant.WinRate * 100},
			{Label: "Dire", Value: sides.Dire.WinRate * 100},
		}, pct})
	}

	for _, c := range charts {
		if len(c.bars) == 0 {
			log.Infow("No data, chart skipped", "chart", c.file)
			continue
		}
		path := filepath.Join(*out, c.file)
		if err := export.WriteSVG(path, export.BarChartSVG(c.title, c.bars, c.opts)); err != nil {
			log.Fatalw("Failed to write chart", "path", path, "error", err)
		}
		log.Infow("Chart generated", "path", path, "bars", len(c.bars))
	}
}
