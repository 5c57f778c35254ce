// Package history persists processed betting analyses in Postgres.
package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/oraculo/stats-api/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

var ErrNotFound = errors.New("analysis not found")

// MaxListLimit caps a single history page.
const MaxListLimit = 100

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Migrate applies the embedded migrations through database/sql.
func Migrate(url string) error {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

type Store struct {
	pg PgPool
}

func NewStore(pg PgPool) *Store {
	return &Store{pg: pg}
}

// ListFilter selects a page of analyses, newest first.
type ListFilter struct {
	Source string
	Limit  int
	Offset int
}

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 || f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Save inserts the analysis, assigning an ID and timestamp when missing.
// Saving an ID that already exists is a no-op, so imports can be rerun.
func (s *Store) Save(ctx context.Context, a *models.Analysis) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	_, err = s.pg.Exec(ctx, `
		INSERT INTO analyses (id, source, radiant_team, dire_team, value_bets, best_edge, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, string(a.Source), a.RadiantTeam, a.DireTeam, len(a.ValueBets), a.BestEdge(), payload, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	var payload []byte
	err := s.pg.QueryRow(ctx, `SELECT payload FROM analyses WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	var a models.Analysis
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return &a, nil
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Analysis, error) {
	f = f.normalized()
	rows, err := s.pg.Query(ctx, `
		SELECT payload FROM analyses
		WHERE ($1 = '' OR source = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, f.Source, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	out := []models.Analysis{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var a models.Analysis
		if err := json.Unmarshal(payload, &a); err != nil {
			return nil, fmt.Errorf("decode analysis: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pg.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Prune deletes analyses older than the retention window.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	tag, err := s.pg.Exec(ctx, `DELETE FROM analyses WHERE created_at < $1`, time.Now().UTC().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("prune analyses: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Stats(ctx context.Context) (*models.HistoryStats, error) {
	st := &models.HistoryStats{BySource: map[string]int64{}}
	var last *time.Time
	err := s.pg.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE value_bets > 0),
			coalesce(sum(value_bets), 0),
			coalesce(avg(best_edge) FILTER (WHERE value_bets > 0), 0),
			max(created_at)
		FROM analyses
	`).Scan(&st.Total, &st.WithValueBets, &st.ValueBetsFound, &st.AvgBestEdge, &last)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}
	st.LastCreatedAt = last

	rows, err := s.pg.Query(ctx, `SELECT source, count(*) FROM analyses GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("history stats by source: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var src string
		var n int64
		if err := rows.Scan(&src, &n); err != nil {
			return nil, err
		}
		st.BySource[src] = n
	}
	return st, rows.Err()
}
