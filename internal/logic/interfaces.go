package logic

import (
	"context"

	"github.com/oraculo/stats-api/internal/models"
)

// HeroStatsService aggregates hero results from the ClickHouse fact tables
type HeroStatsService interface {
	GetHeroWinRates(ctx context.Context, days, minGames int) ([]models.WinRateRow, error)
	GetHeroMatchups(ctx context.Context, heroID, days, minGames int) ([]models.HeroMatchup, error)
}

// TeamStatsService aggregates team and side results
type TeamStatsService interface {
	GetSideComparison(ctx context.Context, days int) (*models.SideStats, error)
	GetTeamWinRates(ctx context.Context, days, minGames int) ([]models.WinRateRow, error)
	GetHeadToHead(ctx context.Context, teamA, teamB string) (*models.HeadToHead, error)
}

// QueryService runs whitelisted dynamic stats queries
type QueryService interface {
	RunStatsQuery(ctx context.Context, req DynamicQueryRequest) ([]QueryResult, error)
}

type PredictionService interface {
	PredictMatch(ctx context.Context, req models.PredictRequest) (*models.MatchPrediction, error)
}

// ProcessingService turns betting input into a stored analysis
type ProcessingService interface {
	ProcessText(ctx context.Context, req models.ProcessTextRequest) (*models.Analysis, error)
	ProcessForm(ctx context.Context, req models.ProcessFormRequest) (*models.Analysis, error)
	ProcessImage(ctx context.Context, image []byte, bookmaker string) (*models.Analysis, error)
}

// OCR extracts text from an image
type OCR interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// AnalysisStore persists processed analyses
type AnalysisStore interface {
	Save(ctx context.Context, a *models.Analysis) error
}

// Notifier announces analyses that contain value bets
type Notifier interface {
	NotifyValueBets(ctx context.Context, a *models.Analysis) error
}
