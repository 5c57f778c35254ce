package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Database URLs
	PostgresURL   string
	ClickHouseURL string
	RedisURL      string

	// Ingest pool
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration

	// Rate limiting
	RateLimitPerSecond int
	RateLimitBurst     int

	Sources  SourcesConfig
	Analysis AnalysisConfig
	Notify   NotifyConfig

	TesseractPath string

	// Analyses older than this are pruned; 0 keeps everything
	HistoryRetention time.Duration
}

// SourcesConfig holds credentials and throttling for the external data APIs.
type SourcesConfig struct {
	OpenDotaKey     string
	PandaScoreToken string
	SteamKey        string
	StratzToken     string

	RatePerSecond float64
	CacheTTL      time.Duration
	Timeout       time.Duration
}

// AnalysisConfig points at the knowledge base and trained model and holds betting thresholds.
type AnalysisConfig struct {
	KnowledgePath  string
	ModelPath      string
	MinEdgePercent float64
	KellyFraction  float64
}

type NotifyConfig struct {
	TelegramToken  string
	TelegramChatID int64
}

// Load loads the API server configuration from environment variables.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		WorkerCount:   getEnvInt("WORKER_COUNT", 4),
		QueueSize:     getEnvInt("QUEUE_SIZE", 1000),
		BatchSize:     getEnvInt("BATCH_SIZE", 100),
		FlushInterval: getEnvDuration("FLUSH_INTERVAL", 5*time.Second),

		RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 20),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 40),

		Sources:  LoadSources(),
		Analysis: LoadAnalysis(),
		Notify:   LoadNotify(),

		TesseractPath:    getEnv("TESSERACT_PATH", "tesseract"),
		HistoryRetention: getEnvDuration("HISTORY_RETENTION", 90*24*time.Hour),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.PostgresURL, err = getEnvRequired("POSTGRES_URL"); err != nil {
		return nil, err
	}
	if cfg.ClickHouseURL, err = getEnvRequired("CLICKHOUSE_URL"); err != nil {
		return nil, err
	}
	if cfg.RedisURL, err = getEnvRequired("REDIS_URL"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadSources reads API credentials. None of them are required: OpenDota and
// Steam work anonymously with lower quotas, the others are skipped when empty.
func LoadSources() SourcesConfig {
	return SourcesConfig{
		OpenDotaKey:     os.Getenv("OPENDOTA_API_KEY"),
		PandaScoreToken: os.Getenv("PANDASCORE_TOKEN"),
		SteamKey:        os.Getenv("STEAM_API_KEY"),
		StratzToken:     os.Getenv("STRATZ_TOKEN"),
		RatePerSecond:   getEnvFloat("SOURCE_RATE_PER_SECOND", 1),
		CacheTTL:        getEnvDuration("SOURCE_CACHE_TTL", 10*time.Minute),
		Timeout:         getEnvDuration("SOURCE_TIMEOUT", 30*time.Second),
	}
}

func LoadNotify() NotifyConfig {
	return NotifyConfig{
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: int64(getEnvInt("TELEGRAM_CHAT_ID", 0)),
	}
}

func LoadAnalysis() AnalysisConfig {
	return AnalysisConfig{
		KnowledgePath:  getEnv("KNOWLEDGE_PATH", "configs/knowledge.yaml"),
		ModelPath:      getEnv("MODEL_PATH", "data/model.json"),
		MinEdgePercent: getEnvFloat("MIN_EDGE_PERCENT", 5),
		KellyFraction:  getEnvFloat("KELLY_FRACTION", 0.25),
	}
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
