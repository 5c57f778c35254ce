package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ErrInvalidQuery marks requests rejected by the whitelist
var ErrInvalidQuery = errors.New("invalid stats query")

// DynamicQueryRequest holds parameters for constructing a stats query
type DynamicQueryRequest struct {
	Dimension    string    `json:"dimension"`     // Group by: hero, team, side, league, patch, account
	Metric       string    `json:"metric"`        // Select: games, wins, win_rate, avg_kills...
	FilterHero   int       `json:"filter_hero"`   // WHERE hero_id = ?
	FilterTeam   string    `json:"filter_team"`   // WHERE team_name = ?
	FilterLeague string    `json:"filter_league"` // WHERE league_name = ?
	FilterSide   string    `json:"filter_side"`   // WHERE side = ?
	FilterPatch  int       `json:"filter_patch"`  // WHERE patch = ?
	MinGames     int       `json:"min_games"`     // HAVING games >= ?
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Limit        int       `json:"limit"`
}

// QueryResult is one row of a dynamic stats query
type QueryResult struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Games uint64  `json:"games"`
}

// allowedDimensions maps safe API values to SQL columns
var allowedDimensions = map[string]string{
	"hero":    "toString(hero_id)",
	"team":    "team_name",
	"side":    "side",
	"league":  "league_name",
	"patch":   "toString(patch)",
	"account": "toString(account_id)",
}

// allowedMetrics maps safe API values to aggregate expressions over
// player_matches. Per-player rows are counted once per match side.
var allowedMetrics = map[string]string{
	"games":        "uniqExact(match_id, side)",
	"wins":         "uniqExactIf((match_id, side), win = 1)",
	"win_rate":     "uniqExactIf((match_id, side), win = 1) / greatest(uniqExact(match_id, side), 1)",
	"avg_duration": "avg(duration_sec) / 60",
	"avg_kills":    "avg(kills)",
	"avg_gpm":      "avg(gpm)",
	"avg_xpm":      "avg(xpm)",
}

// BuildStatsQuery constructs a safe ClickHouse SQL query
func BuildStatsQuery(req DynamicQueryRequest) (string, []any, error) {
	// 1. Validate Dimension
	groupByCol, ok := allowedDimensions[req.Dimension]
	if !ok && req.Dimension != "" {
		return "", nil, fmt.Errorf("%w: dimension %q", ErrInvalidQuery, req.Dimension)
	}

	// 2. Select Clause (Metric)
	metric := req.Metric
	if metric == "" {
		metric = "games"
	}
	selectClause, ok := allowedMetrics[metric]
	if !ok {
		return "", nil, fmt.Errorf("%w: metric %q", ErrInvalidQuery, req.Metric)
	}

	// 3. Build Query
	query := fmt.Sprintf("SELECT toFloat64(%s) AS value, uniqExact(match_id, side) AS games", selectClause)
	var args []any

	if groupByCol != "" {
		query += fmt.Sprintf(", %s AS label", groupByCol)
	} else {
		query += ", 'all' AS label"
	}

	query += " FROM oraculo.player_matches FINAL WHERE 1=1"

	// 4. Filters
	if req.FilterHero > 0 {
		query += " AND hero_id = ?"
		args = append(args, req.FilterHero)
	}
	if req.FilterTeam != "" {
		query += " AND team_name = ?"
		args = append(args, req.FilterTeam)
	}
	if req.FilterLeague != "" {
		query += " AND league_name = ?"
		args = append(args, req.FilterLeague)
	}
	if req.FilterSide != "" {
		query += " AND side = ?"
		args = append(args, req.FilterSide)
	}
	if req.FilterPatch > 0 {
		query += " AND patch = ?"
		args = append(args, req.FilterPatch)
	}
	if !req.StartDate.IsZero() {
		query += " AND start_time >= ?"
		args = append(args, req.StartDate)
	}
	if !req.EndDate.IsZero() {
		query += " AND start_time <= ?"
		args = append(args, req.EndDate)
	}

	// 5. Group By
	if groupByCol != "" {
		query += fmt.Sprintf(" GROUP BY %s", groupByCol)
	}
	if req.MinGames > 0 {
		query += " HAVING games >= ?"
		args = append(args, req.MinGames)
	}

	// 6. Order By
	query += " ORDER BY value DESC, label"

	// 7. Limit
	limit := req.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	return query, args, nil
}

type queryService struct {
	ch driver.Conn
}

func NewQueryService(ch driver.Conn) QueryService {
	return &queryService{ch: ch}
}

func (s *queryService) RunStatsQuery(ctx context.Context, req DynamicQueryRequest) ([]QueryResult, error) {
	query, args, err := BuildStatsQuery(req)
	if err != nil {
		return nil, err
	}
	rows, err := s.ch.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("stats query failed: %w", err)
	}
	defer rows.Close()

	out := []QueryResult{}
	for rows.Next() {
		var r QueryResult
		if err := rows.Scan(&r.Value, &r.Games, &r.Label); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
