package logic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/oraculo/stats-api/internal/betting"
	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/predict"
)

var (
	ErrNoOCR      = errors.New("image processing is not configured")
	ErrEmptyImage = errors.New("image text is empty")
)

// ProcessingConfig wires the processing pipeline. History and Notifier
// are optional.
type ProcessingConfig struct {
	Predictor      *predict.Predictor
	OCR            OCR
	History        AnalysisStore
	Notifier       Notifier
	MinEdgePercent float64
	KellyFraction  float64
	KillsMean      float64 // average total kills per game, 0 skips kill totals
	Logger         *zap.Logger
}

type processingService struct {
	predictor *predict.Predictor
	ocr       OCR
	history   AnalysisStore
	notifier  Notifier
	minEdge   float64
	kelly     float64
	killsMean float64
	logger    *zap.SugaredLogger
}

func NewProcessingService(cfg ProcessingConfig) ProcessingService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &processingService{
		predictor: cfg.Predictor,
		ocr:       cfg.OCR,
		history:   cfg.History,
		notifier:  cfg.Notifier,
		minEdge:   cfg.MinEdgePercent,
		kelly:     cfg.KellyFraction,
		killsMean: cfg.KillsMean,
		logger:    logger.Sugar(),
	}
}

func (s *processingService) ProcessText(ctx context.Context, req models.ProcessTextRequest) (*models.Analysis, error) {
	return s.processText(ctx, models.SourceText, req.Text, req.Bookmaker)
}

func (s *processingService) ProcessImage(ctx context.Context, image []byte, bookmaker string) (*models.Analysis, error) {
	if s.ocr == nil {
		return nil, ErrNoOCR
	}
	text, err := s.ocr.Recognize(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyImage
	}
	return s.processText(ctx, models.SourceImage, text, bookmaker)
}

func (s *processingService) processText(ctx context.Context, source models.AnalysisSource, text, bookmaker string) (*models.Analysis, error) {
	parsed, err := betting.ParseOddsText(text)
	if err != nil {
		return nil, err
	}
	a := &models.Analysis{
		Source:      source,
		Input:       text,
		RadiantTeam: parsed.TeamA,
		DireTeam:    parsed.TeamB,
		Markets:     withBookmaker(parsed.Markets, bookmaker),
		Warnings:    parsed.Warnings,
	}
	return s.finish(ctx, a)
}

func (s *processingService) ProcessForm(ctx context.Context, req models.ProcessFormRequest) (*models.Analysis, error) {
	markets := withBookmaker(req.Markets, req.Bookmaker)
	for i := range markets {
		for j := range markets[i].Selections {
			sel := &markets[i].Selections[j]
			if sel.Side == "" {
				sel.Side = sideOf(sel.Name, req.RadiantTeam, req.DireTeam)
			}
		}
	}
	a := &models.Analysis{
		Source:        models.SourceForm,
		RadiantTeam:   strings.TrimSpace(req.RadiantTeam),
		DireTeam:      strings.TrimSpace(req.DireTeam),
		RadiantHeroes: req.RadiantHeroes,
		DireHeroes:    req.DireHeroes,
		Markets:       markets,
	}
	return s.finish(ctx, a)
}

func withBookmaker(markets []models.Market, bookmaker string) []models.Market {
	out := make([]models.Market, len(markets))
	copy(out, markets)
	for i := range out {
		sels := make([]models.Selection, len(out[i].Selections))
		copy(sels, out[i].Selections)
		out[i].Selections = sels
		if out[i].Bookmaker == "" {
			out[i].Bookmaker = bookmaker
		}
	}
	return out
}

func sideOf(name, radiant, dire string) models.Side {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return ""
	case strings.EqualFold(name, strings.TrimSpace(radiant)):
		return models.SideRadiant
	case strings.EqualFold(name, strings.TrimSpace(dire)):
		return models.SideDire
	}
	side, _ := models.ParseSide(name)
	return side
}

// inferBestOf guesses the series length from the offered markets.
func inferBestOf(markets []models.Market) int {
	bestOf := 1
	for _, m := range markets {
		switch m.Type {
		case models.MarketMapWinner:
			if m.MapNumber >= 2 && bestOf < 3 {
				bestOf = 3
			}
			if m.MapNumber >= 4 {
				bestOf = 5
			}
		case models.MarketHandicap:
			line := math.Abs(m.Line)
			for _, sel := range m.Selections {
				line = math.Max(line, math.Abs(sel.Line))
			}
			if line >= 2.5 {
				bestOf = 5
			} else if line >= 1.5 && bestOf < 3 {
				bestOf = 3
			}
		}
	}
	return bestOf
}

func (s *processingService) finish(ctx context.Context, a *models.Analysis) (*models.Analysis, error) {
	pred := s.predictor.PredictMatch(models.PredictRequest{
		RadiantTeam:   a.RadiantTeam,
		DireTeam:      a.DireTeam,
		RadiantHeroes: a.RadiantHeroes,
		DireHeroes:    a.DireHeroes,
	})
	a.Prediction = &pred

	est := betting.PredictionEstimator{
		Prediction: &pred,
		BestOf:     inferBestOf(a.Markets),
		KillsMean:  s.killsMean,
	}
	a.ValueBets = betting.FindValueBets(a.Markets, est, s.minEdge, s.kelly)
	if a.ValueBets == nil {
		a.ValueBets = []models.ValueBet{}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	if s.history != nil {
		g.Go(func() error {
			if err := s.history.Save(gctx, a); err != nil {
				return fmt.Errorf("save analysis: %w", err)
			}
			return nil
		})
	}
	if s.notifier != nil && len(a.ValueBets) > 0 {
		g.Go(func() error {
			// alerts are best effort
			if err := s.notifier.NotifyValueBets(gctx, a); err != nil {
				s.logger.Warnw("Value bet notification failed", "id", a.ID, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Infow("Processed analysis",
		"id", a.ID,
		"source", a.Source,
		"markets", len(a.Markets),
		"value_bets", len(a.ValueBets),
		"method", pred.Method,
	)
	return a, nil
}
