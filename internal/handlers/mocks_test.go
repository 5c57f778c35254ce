package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/oraculo/stats-api/internal/logic"
	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/storage/history"
)

type MockIngestQueue struct {
	EnqueueFunc func(matchID int64) bool
	Enqueued    []int64
}

func (m *MockIngestQueue) Enqueue(matchID int64) bool {
	if m.EnqueueFunc != nil && !m.EnqueueFunc(matchID) {
		return false
	}
	m.Enqueued = append(m.Enqueued, matchID)
	return true
}
func (m *MockIngestQueue) QueueDepth() int { return len(m.Enqueued) }

type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping(ctx context.Context) error { return m.Err }

type MockHeroStatsService struct {
	GetHeroWinRatesFunc func(ctx context.Context, days, minGames int) ([]models.WinRateRow, error)
	GetHeroMatchupsFunc func(ctx context.Context, heroID, days, minGames int) ([]models.HeroMatchup, error)
}

func (m *MockHeroStatsService) GetHeroWinRates(ctx context.Context, days, minGames int) ([]models.WinRateRow, error) {
	if m.GetHeroWinRatesFunc != nil {
		return m.GetHeroWinRatesFunc(ctx, days, minGames)
	}
	return nil, nil
}

func (m *MockHeroStatsService) GetHeroMatchups(ctx context.Context, heroID, days, minGames int) ([]models.HeroMatchup, error) {
	if m.GetHeroMatchupsFunc != nil {
		return m.GetHeroMatchupsFunc(ctx, heroID, days, minGames)
	}
	return nil, nil
}

type MockTeamStatsService struct {
	GetSideComparisonFunc func(ctx context.Context, days int) (*models.SideStats, error)
	GetTeamWinRatesFunc   func(ctx context.Context, days, minGames int) ([]models.WinRateRow, error)
	GetHeadToHeadFunc     func(ctx context.Context, teamA, teamB string) (*models.HeadToHead, error)
}

func (m *MockTeamStatsService) GetSideComparison(ctx context.Context, days int) (*models.SideStats, error) {
	if m.GetSideComparisonFunc != nil {
		return m.GetSideComparisonFunc(ctx, days)
	}
	return &models.SideStats{}, nil
}

func (m *MockTeamStatsService) GetTeamWinRates(ctx context.Context, days, minGames int) ([]models.WinRateRow, error) {
	if m.GetTeamWinRatesFunc != nil {
		return m.GetTeamWinRatesFunc(ctx, days, minGames)
	}
	return nil, nil
}

func (m *MockTeamStatsService) GetHeadToHead(ctx context.Context, teamA, teamB string) (*models.HeadToHead, error) {
	if m.GetHeadToHeadFunc != nil {
		return m.GetHeadToHeadFunc(ctx, teamA, teamB)
	}
	return &models.HeadToHead{TeamA: teamA, TeamB: teamB}, nil
}

type MockQueryService struct {
	RunStatsQueryFunc func(ctx context.Context, req logic.DynamicQueryRequest) ([]logic.QueryResult, error)
}

func (m *MockQueryService) RunStatsQuery(ctx context.Context, req logic.DynamicQueryRequest) ([]logic.QueryResult, error) {
	if m.RunStatsQueryFunc != nil {
		return m.RunStatsQueryFunc(ctx, req)
	}
	return nil, nil
}

type MockPredictionService struct {
	PredictMatchFunc func(ctx context.Context, req models.PredictRequest) (*models.MatchPrediction, error)
}

func (m *MockPredictionService) PredictMatch(ctx context.Context, req models.PredictRequest) (*models.MatchPrediction, error) {
	if m.PredictMatchFunc != nil {
		return m.PredictMatchFunc(ctx, req)
	}
	return &models.MatchPrediction{RadiantWinProb: 0.5, DireWinProb: 0.5}, nil
}

type MockProcessingService struct {
	ProcessTextFunc  func(ctx context.Context, req models.ProcessTextRequest) (*models.Analysis, error)
	ProcessFormFunc  func(ctx context.Context, req models.ProcessFormRequest) (*models.Analysis, error)
	ProcessImageFunc func(ctx context.Context, image []byte, bookmaker string) (*models.Analysis, error)
}

func (m *MockProcessingService) ProcessText(ctx context.Context, req models.ProcessTextRequest) (*models.Analysis, error) {
	if m.ProcessTextFunc != nil {
		return m.ProcessTextFunc(ctx, req)
	}
	return &models.Analysis{Source: models.SourceText}, nil
}

func (m *MockProcessingService) ProcessForm(ctx context.Context, req models.ProcessFormRequest) (*models.Analysis, error) {
	if m.ProcessFormFunc != nil {
		return m.ProcessFormFunc(ctx, req)
	}
	return &models.Analysis{Source: models.SourceForm}, nil
}

func (m *MockProcessingService) ProcessImage(ctx context.Context, image []byte, bookmaker string) (*models.Analysis, error) {
	if m.ProcessImageFunc != nil {
		return m.ProcessImageFunc(ctx, image, bookmaker)
	}
	return &models.Analysis{Source: models.SourceImage}, nil
}

type MockHistoryStore struct {
	GetFunc    func(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
	ListFunc   func(ctx context.Context, f history.ListFilter) ([]models.Analysis, error)
	DeleteFunc func(ctx context.Context, id uuid.UUID) error
	StatsFunc  func(ctx context.Context) (*models.HistoryStats, error)
}

func (m *MockHistoryStore) Get(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, history.ErrNotFound
}

func (m *MockHistoryStore) List(ctx context.Context, f history.ListFilter) ([]models.Analysis, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return nil, nil
}

func (m *MockHistoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockHistoryStore) Stats(ctx context.Context) (*models.HistoryStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.HistoryStats{BySource: map[string]int64{}}, nil
}

type MockSchemaInstaller struct {
	Err   error
	Calls int
}

func (m *MockSchemaInstaller) EnsureSchema(ctx context.Context) error {
	m.Calls++
	return m.Err
}
