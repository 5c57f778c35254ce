package logic

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

func TestBuildStatsQuery(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		req       DynamicQueryRequest
		wantParts []string
		wantArgs  []any
		wantErr   bool
	}{
		{
			name: "Hero win rate in a league",
			req: DynamicQueryRequest{
				Dimension:    "hero",
				Metric:       "win_rate",
				FilterLeague: "PGL Wallachia",
				MinGames:     5,
			},
			wantParts: []string{
				"toString(hero_id) AS label",
				"FROM oraculo.player_matches FINAL",
				"AND league_name = ?",
				"GROUP BY toString(hero_id)",
				"HAVING games >= ?",
				"LIMIT 100",
			},
			wantArgs: []any{"PGL Wallachia", 5},
		},
		{
			name:      "Defaults to games without grouping",
			req:       DynamicQueryRequest{Limit: 5000},
			wantParts: []string{"uniqExact(match_id, side)", "'all' AS label", "LIMIT 100"},
		},
		{
			name: "Team GPM with date range",
			req: DynamicQueryRequest{
				Dimension:  "team",
				Metric:     "avg_gpm",
				FilterSide: "dire",
				StartDate:  start,
				Limit:      10,
			},
			wantParts: []string{"avg(gpm)", "team_name AS label", "AND side = ?", "AND start_time >= ?", "LIMIT 10"},
			wantArgs:  []any{"dire", start},
		},
		{
			name:    "Invalid dimension",
			req:     DynamicQueryRequest{Dimension: "weapon"},
			wantErr: true,
		},
		{
			name:    "Invalid metric",
			req:     DynamicQueryRequest{Metric: "kills; DROP TABLE x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, args, err := BuildStatsQuery(tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BuildStatsQuery() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQuery) {
					t.Errorf("expected ErrInvalidQuery, got %v", err)
				}
				return
			}
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("query %q missing %q", got, part)
				}
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("arg %d = %v, want %v", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestRunStatsQuery(t *testing.T) {
	conn := &MockConn{QueryFunc: func(query string, args ...any) (driver.Rows, error) {
		return &MockRows{Data: [][]any{
			{0.61, uint64(44), "Team Spirit"},
			{0.55, uint64(40), "Tundra"},
		}}, nil
	}}
	got, err := NewQueryService(conn).RunStatsQuery(context.Background(), DynamicQueryRequest{Dimension: "team", Metric: "win_rate"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Label != "Team Spirit" || got[0].Games != 44 {
		t.Errorf("unexpected rows: %+v", got)
	}

	_, err = NewQueryService(conn).RunStatsQuery(context.Background(), DynamicQueryRequest{Dimension: "map"})
	if !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
	if len(conn.Queries) != 1 {
		t.Errorf("invalid request reached ClickHouse")
	}
}
