package handlers

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oraculo/stats-api/internal/logic"
	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/storage/history"
)

// MaxBodySize limits the size of JSON request bodies to 1MB
const MaxBodySize = 1048576

// MaxImageSize limits uploaded betting slip screenshots to 5MB
const MaxImageSize = 5 << 20

// IngestQueue defines the interface for the match ingestion worker pool
type IngestQueue interface {
	Enqueue(matchID int64) bool
	QueueDepth() int
}

// Pinger is anything /ready can health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HistoryStore is the read side of the analysis history.
type HistoryStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
	List(ctx context.Context, f history.ListFilter) ([]models.Analysis, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*models.HistoryStats, error)
}

// SchemaInstaller creates the ClickHouse tables.
type SchemaInstaller interface {
	EnsureSchema(ctx context.Context) error
}

type Config struct {
	WorkerPool IngestQueue
	Postgres   Pinger
	ClickHouse Pinger
	Redis      Pinger
	Logger     *zap.Logger
	// Services
	HeroStats  logic.HeroStatsService
	TeamStats  logic.TeamStatsService
	Query      logic.QueryService
	Prediction logic.PredictionService
	Processing logic.ProcessingService
	History    HistoryStore
	// Install
	Facts          SchemaInstaller
	MigrateHistory func() error
}

type Handler struct {
	pool           IngestQueue
	pg             Pinger
	ch             Pinger
	redis          Pinger
	logger         *zap.SugaredLogger
	heroStats      logic.HeroStatsService
	teamStats      logic.TeamStatsService
	query          logic.QueryService
	prediction     logic.PredictionService
	processing     logic.ProcessingService
	history        HistoryStore
	facts          SchemaInstaller
	migrateHistory func() error
}

func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		pool:           cfg.WorkerPool,
		pg:             cfg.Postgres,
		ch:             cfg.ClickHouse,
		redis:          cfg.Redis,
		logger:         logger.Sugar(),
		heroStats:      cfg.HeroStats,
		teamStats:      cfg.TeamStats,
		query:          cfg.Query,
		prediction:     cfg.Prediction,
		processing:     cfg.Processing,
		history:        cfg.History,
		facts:          cfg.Facts,
		migrateHistory: cfg.MigrateHistory,
	}
}
