package logic

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/oraculo/stats-api/internal/analysis"
	"github.com/oraculo/stats-api/internal/models"
)

const defaultDays = 30

type heroStatsService struct {
	ch    driver.Conn
	names map[int]string
}

// NewHeroStatsService resolves hero ids through names; a nil map renders
// ids as hero_<id>.
func NewHeroStatsService(ch driver.Conn, names map[int]string) HeroStatsService {
	return &heroStatsService{ch: ch, names: names}
}

func normalizeWindow(days, minGames int) (int, int) {
	if days <= 0 {
		days = defaultDays
	}
	if minGames < 1 {
		minGames = 1
	}
	return days, minGames
}

func ratio(wins, games uint64) float64 {
	if games == 0 {
		return 0
	}
	return float64(wins) / float64(games)
}

func (s *heroStatsService) GetHeroWinRates(ctx context.Context, days, minGames int) ([]models.WinRateRow, error) {
	days, minGames = normalizeWindow(days, minGames)

	rows, err := s.ch.Query(ctx, `
		SELECT hero_id, count() AS games, sum(win) AS wins
		FROM oraculo.player_matches FINAL
		WHERE start_time >= now() - INTERVAL ? DAY AND hero_id > 0
		GROUP BY hero_id
		HAVING games >= ?
		ORDER BY wins / games DESC, games DESC, hero_id
	`, days, minGames)
	if err != nil {
		return nil, fmt.Errorf("hero win rates query failed: %w", err)
	}
	defer rows.Close()

	out := []models.WinRateRow{}
	for rows.Next() {
		var heroID uint16
		var games, wins uint64
		if err := rows.Scan(&heroID, &games, &wins); err != nil {
			return nil, fmt.Errorf("failed to scan hero win rate: %w", err)
		}
		out = append(out, models.WinRateRow{
			Key:     analysis.HeroName(s.names, int(heroID)),
			Games:   int(games),
			Wins:    int(wins),
			Losses:  int(games - wins),
			WinRate: ratio(wins, games),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("hero win rates row iteration failed: %w", err)
	}
	return out, nil
}

// GetHeroMatchups returns a hero's record against each opposing hero.
func (s *heroStatsService) GetHeroMatchups(ctx context.Context, heroID, days, minGames int) ([]models.HeroMatchup, error) {
	if heroID <= 0 {
		return nil, fmt.Errorf("invalid hero id %d", heroID)
	}
	days, minGames = normalizeWindow(days, minGames)

	rows, err := s.ch.Query(ctx, `
		SELECT opponent, count() AS games, sum(win) AS wins
		FROM oraculo.player_matches FINAL
		ARRAY JOIN opponent_heroes AS opponent
		WHERE hero_id = ? AND start_time >= now() - INTERVAL ? DAY
		GROUP BY opponent
		HAVING games >= ?
		ORDER BY wins / games DESC, games DESC, opponent
	`, heroID, days, minGames)
	if err != nil {
		return nil, fmt.Errorf("hero matchups query failed: %w", err)
	}
	defer rows.Close()

	out := []models.HeroMatchup{}
	for rows.Next() {
		var opp uint16
		var games, wins uint64
		if err := rows.Scan(&opp, &games, &wins); err != nil {
			return nil, fmt.Errorf("failed to scan hero matchup: %w", err)
		}
		out = append(out, models.HeroMatchup{
			HeroID:     heroID,
			OpponentID: int(opp),
			Opponent:   analysis.HeroName(s.names, int(opp)),
			Games:      int(games),
			Wins:       int(wins),
			WinRate:    ratio(wins, games),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("hero matchups row iteration failed: %w", err)
	}
	return out, nil
}
