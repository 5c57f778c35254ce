package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/oraculo/stats-api/internal/analysis"
	"github.com/oraculo/stats-api/internal/models"
)

type teamStatsService struct {
	ch    driver.Conn
	names map[int]string
}

func NewTeamStatsService(ch driver.Conn, names map[int]string) TeamStatsService {
	return &teamStatsService{ch: ch, names: names}
}

// GetSideComparison returns aggregated results for Radiant vs Dire
func (s *teamStatsService) GetSideComparison(ctx context.Context, days int) (*models.SideStats, error) {
	if days <= 0 {
		days = defaultDays
	}

	stats := &models.SideStats{}

	// Query 1: match level results for both sides in one pass
	var radiantWins uint64
	var radiantKills, direKills, minutes float64
	err := s.ch.QueryRow(ctx, `
		SELECT
			count() AS matches,
			countIf(radiant_win = 1) AS radiant_wins,
			avg(radiant_score) AS radiant_kills,
			avg(dire_score) AS dire_kills,
			avg(duration_sec) / 60 AS minutes
		FROM oraculo.matches FINAL
		WHERE start_time >= now() - INTERVAL ? DAY
	`, days).Scan(&stats.Matches, &radiantWins, &radiantKills, &direKills, &minutes)
	if err != nil {
		return nil, fmt.Errorf("side metrics query failed: %w", err)
	}
	if stats.Matches == 0 {
		return stats, nil
	}

	// Radiant wins are Dire losses and the other way round
	stats.Radiant.Wins = radiantWins
	stats.Radiant.Losses = stats.Matches - radiantWins
	stats.Dire.Wins = stats.Radiant.Losses
	stats.Dire.Losses = radiantWins
	stats.Radiant.WinRate = ratio(stats.Radiant.Wins, stats.Matches)
	stats.Dire.WinRate = ratio(stats.Dire.Wins, stats.Matches)
	stats.Radiant.AvgKills = radiantKills
	stats.Dire.AvgKills = direKills
	stats.Radiant.AvgDurationMin = minutes
	stats.Dire.AvgDurationMin = minutes

	// Query 2: hero with the most wins per side, using LIMIT 1 BY
	rows, err := s.ch.Query(ctx, `
		SELECT side, hero_id
		FROM oraculo.player_matches FINAL
		WHERE win = 1 AND hero_id > 0
		  AND start_time >= now() - INTERVAL ? DAY
		GROUP BY side, hero_id
		ORDER BY count() DESC, hero_id LIMIT 1 BY side
	`, days)
	if err != nil {
		return nil, fmt.Errorf("top hero query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var side string
		var heroID uint16
		if err := rows.Scan(&side, &heroID); err != nil {
			return nil, fmt.Errorf("failed to scan top hero: %w", err)
		}
		switch models.Side(side) {
		case models.SideRadiant:
			stats.Radiant.TopHero = analysis.HeroName(s.names, int(heroID))
		case models.SideDire:
			stats.Dire.TopHero = analysis.HeroName(s.names, int(heroID))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top hero row iteration failed: %w", err)
	}

	return stats, nil
}

func (s *teamStatsService) GetTeamWinRates(ctx context.Context, days, minGames int) ([]models.WinRateRow, error) {
	days, minGames = normalizeWindow(days, minGames)

	rows, err := s.ch.Query(ctx, `
		SELECT team, count() AS games, sum(won) AS wins
		FROM (
			SELECT radiant_name AS team, radiant_win AS won
			FROM oraculo.matches FINAL
			WHERE start_time >= now() - INTERVAL ? DAY AND radiant_name != ''
			UNION ALL
			SELECT dire_name AS team, toUInt8(1 - radiant_win) AS won
			FROM oraculo.matches FINAL
			WHERE start_time >= now() - INTERVAL ? DAY AND dire_name != ''
		)
		GROUP BY team
		HAVING games >= ?
		ORDER BY wins / games DESC, games DESC, team
	`, days, days, minGames)
	if err != nil {
		return nil, fmt.Errorf("team win rates query failed: %w", err)
	}
	defer rows.Close()

	out := []models.WinRateRow{}
	for rows.Next() {
		var team string
		var games, wins uint64
		if err := rows.Scan(&team, &games, &wins); err != nil {
			return nil, fmt.Errorf("failed to scan team win rate: %w", err)
		}
		out = append(out, models.WinRateRow{
			Key:     team,
			Games:   int(games),
			Wins:    int(wins),
			Losses:  int(games - wins),
			WinRate: ratio(wins, games),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("team win rates row iteration failed: %w", err)
	}
	return out, nil
}

// GetHeadToHead compares two teams over every stored meeting. Names match
// case-insensitively.
func (s *teamStatsService) GetHeadToHead(ctx context.Context, teamA, teamB string) (*models.HeadToHead, error) {
	teamA, teamB = strings.TrimSpace(teamA), strings.TrimSpace(teamB)
	if teamA == "" || teamB == "" {
		return nil, fmt.Errorf("both teams are required")
	}
	a, b := strings.ToLower(teamA), strings.ToLower(teamB)

	h := &models.HeadToHead{TeamA: teamA, TeamB: teamB}
	var matches, winsA uint64
	var minutes, kills float64
	err := s.ch.QueryRow(ctx, `
		SELECT
			count() AS matches,
			countIf((lower(radiant_name) = ? AND radiant_win = 1) OR (lower(dire_name) = ? AND radiant_win = 0)) AS wins_a,
			avg(duration_sec) / 60 AS minutes,
			avg(radiant_score + dire_score) AS kills
		FROM oraculo.matches FINAL
		WHERE (lower(radiant_name) = ? AND lower(dire_name) = ?)
		   OR (lower(radiant_name) = ? AND lower(dire_name) = ?)
	`, a, a, a, b, b, a).Scan(&matches, &winsA, &minutes, &kills)
	if err != nil {
		return nil, fmt.Errorf("head to head query failed: %w", err)
	}
	if matches == 0 {
		return h, nil
	}
	h.Matches = int(matches)
	h.WinsA = int(winsA)
	h.WinsB = int(matches - winsA)
	h.WinRateA = ratio(winsA, matches)
	h.AvgDurationMin = minutes
	h.AvgTotalKills = kills
	return h, nil
}
