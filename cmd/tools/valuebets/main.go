// Command valuebets reads pasted bookmaker odds, prices every market with the
// prediction model and prints the selections with a positive edge.
//
//	valuebets slip.txt
//	pbpaste | valuebets -radiant-heroes "Mars,Lion,Tiny,Luna,Lich" -dire-heroes "..." -out bets.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/oraculo/stats-api/internal/betting"
	"github.com/oraculo/stats-api/internal/config"
	"github.com/oraculo/stats-api/internal/export"
	"github.com/oraculo/stats-api/internal/knowledge"
	"github.com/oraculo/stats-api/internal/logic"
	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/notify"
	"github.com/oraculo/stats-api/internal/predict"
)

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	_ = godotenv.Load()
	analysisCfg := config.LoadAnalysis()

	kbPath := flag.String("knowledge", analysisCfg.KnowledgePath, "knowledge base YAML")
	modelPath := flag.String("model", analysisCfg.ModelPath, "trained model; the draft heuristic is used when missing")
	minEdge := flag.Float64("min-edge", analysisCfg.MinEdgePercent, "minimum edge in percent")
	kelly := flag.Float64("kelly", analysisCfg.KellyFraction, "Kelly fraction")
	killsMean := flag.Float64("kills-mean", 0, "average total kills per game; 0 skips kill totals")
	radiantHeroes := flag.String("radiant-heroes", "", "comma separated heroes of the first team")
	direHeroes := flag.String("dire-heroes", "", "comma separated heroes of the second team")
	bookmaker := flag.String("bookmaker", "", "bookmaker label")
	out := flag.String("out", "", "also write the value bets (csv, json, md, xml or xlsx)")
	alert := flag.Bool("alert", false, "send found value bets to Telegram")
	flag.Parse()

	logger, err := config.NewLogger(os.Getenv("ENV"))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	var in io.Reader = os.Stdin
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatalw("Failed to open odds file", "error", err)
		}
		defer f.Close()
		in = f
	}
	text, err := io.ReadAll(in)
	if err != nil {
		log.Fatalw("Failed to read odds", "error", err)
	}

	parsed, err := betting.ParseOddsText(string(text))
	if err != nil {
		log.Fatalw("Could not read any market", "error", err)
	}
	for _, w := range parsed.Warnings {
		log.Warnw("Ignored line", "warning", w)
	}

	kb, err := knowledge.Load(*kbPath)
	if err != nil {
		log.Fatalw("Failed to load knowledge base", "path", *kbPath, "error", err)
	}
	model, err := predict.LoadModel(*modelPath)
	if err != nil {
		log.Warnw("No trained model, using draft heuristic", "error", err)
		model = nil
	}

	cfg := logic.ProcessingConfig{
		Predictor:      predict.NewPredictor(kb, nil, predict.EloFromKnowledge(kb, 32), model),
		MinEdgePercent: *minEdge,
		KellyFraction:  *kelly,
		KillsMean:      *killsMean,
		Logger:         logger,
	}
	if *alert {
		n := config.LoadNotify()
		tg, err := notify.NewTelegram(n.TelegramToken, n.TelegramChatID, logger)
		if err != nil || tg == nil {
			log.Fatalw("Telegram is not configured", "error", err)
		}
		cfg.Notifier = tg
	}

	a, err := logic.NewProcessingService(cfg).ProcessForm(context.Background(), models.ProcessFormRequest{
		RadiantTeam:   parsed.TeamA,
		DireTeam:      parsed.TeamB,
		RadiantHeroes: splitList(*radiantHeroes),
		DireHeroes:    splitList(*direHeroes),
		Markets:       parsed.Markets,
		Bookmaker:     *bookmaker,
	})
	if err != nil {
		log.Fatalw("Analysis failed", "error", err)
	}

	report := valueBetReport(a)
	if err := export.WriteMarkdown(os.Stdout, report); err != nil {
		log.Fatalw("Failed to print", "error", err)
	}
	if *out != "" {
		files, err := export.Write(*out, "", report)
		if err != nil {
			log.Fatalw("Failed to write output", "error", err)
		}
		log.Infow("Written", "files", files)
	}
}

func valueBetReport(a *models.Analysis) export.Report {
	r := export.Report{Title: fmt.Sprintf("%s vs %s", a.RadiantTeam, a.DireTeam), GeneratedAt: a.CreatedAt}
	if p := a.Prediction; p != nil {
		r.AddSection("Prediction", fmt.Sprintf("%s %s, %s %s, about %.0f minutes (%s).",
			a.RadiantTeam, export.Percent(p.RadiantWinProb), a.DireTeam, export.Percent(p.DireWinProb),
			p.ExpectedDurationMin, p.Method), nil)
	}
	t := export.NewTable("Market", "Selection", "Line", "Odds", "Model", "Implied", "Edge %", "Stake")
	for _, vb := range a.ValueBets {
		label := vb.Label
		if label == "" {
			label = string(vb.Market)
		}
		t.AddRow(label, vb.Selection, vb.Line, vb.Odds, export.Percent(vb.EstimatedProb),
			export.Percent(vb.ImpliedProb), vb.EdgePercent, export.Percent(vb.KellyStake))
	}
	text := fmt.Sprintf("%d of %d markets priced with a positive edge.", len(a.ValueBets), len(a.Markets))
	r.AddSection("Value bets", text, t)
	return r
}
