package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/predict"
)

type predictionService struct {
	predictor *predict.Predictor
}

func NewPredictionService(p *predict.Predictor) PredictionService {
	return &predictionService{predictor: p}
}

func (s *predictionService) PredictMatch(ctx context.Context, req models.PredictRequest) (*models.MatchPrediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.RadiantTeam) == "" && strings.TrimSpace(req.DireTeam) == "" &&
		len(req.RadiantHeroes) == 0 && len(req.DireHeroes) == 0 {
		return nil, fmt.Errorf("teams or heroes are required")
	}
	pred := s.predictor.PredictMatch(req)
	return &pred, nil
}
