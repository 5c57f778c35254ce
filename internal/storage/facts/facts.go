// Package facts writes finished matches into ClickHouse, where the API runs
// its win-rate and matchup aggregations.
package facts

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/oraculo/stats-api/internal/models"
)

// Schema creates the analytics tables. Statements are idempotent.
var Schema = []string{
	`CREATE DATABASE IF NOT EXISTS oraculo`,
	`CREATE TABLE IF NOT EXISTS oraculo.matches (
		match_id      UInt64,
		start_time    DateTime,
		duration_sec  UInt32,
		league_id     UInt64,
		league_name   LowCardinality(String),
		series_id     UInt64,
		patch         UInt16,
		radiant_id    UInt64,
		radiant_name  String,
		dire_id       UInt64,
		dire_name     String,
		radiant_win   UInt8,
		radiant_score UInt16,
		dire_score    UInt16,
		inserted_at   DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree(inserted_at)
	PARTITION BY toYYYYMM(start_time)
	ORDER BY match_id`,
	`CREATE TABLE IF NOT EXISTS oraculo.player_matches (
		match_id        UInt64,
		start_time      DateTime,
		duration_sec    UInt32,
		league_name     LowCardinality(String),
		patch           UInt16,
		side            LowCardinality(String),
		win             UInt8,
		team_id         UInt64,
		team_name       String,
		account_id      UInt64,
		player_name     String,
		hero_id         UInt16,
		opponent_heroes Array(UInt16),
		kills           UInt16,
		deaths          UInt16,
		assists         UInt16,
		gpm             UInt16,
		xpm             UInt16,
		last_hits       UInt16,
		net_worth       UInt32,
		hero_damage     UInt32,
		tower_damage    UInt32,
		inserted_at     DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree(inserted_at)
	PARTITION BY toYYYYMM(start_time)
	ORDER BY (match_id, hero_id)`,
}

// Store inserts matches into ClickHouse.
type Store struct {
	ch     driver.Conn
	logger *zap.SugaredLogger
}

func NewStore(ch driver.Conn, logger *zap.Logger) *Store {
	return &Store{ch: ch, logger: logger.Sugar()}
}

// EnsureSchema runs every Schema statement in order.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range Schema {
		if err := s.ch.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("clickhouse schema: %w", err)
		}
	}
	return nil
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func heroIDs(ids []int) []uint16 {
	out := make([]uint16, len(ids))
	for i, id := range ids {
		out[i] = uint16(id)
	}
	return out
}

// InsertMatches writes one row per match and one row per player. Rows that
// fail to append are logged and skipped; a failed send fails the call.
func (s *Store) InsertMatches(ctx context.Context, matches []models.Match) error {
	if len(matches) == 0 {
		return nil
	}

	mb, err := s.ch.PrepareBatch(ctx, `
		INSERT INTO oraculo.matches (
			match_id, start_time, duration_sec, league_id, league_name, series_id, patch,
			radiant_id, radiant_name, dire_id, dire_name, radiant_win, radiant_score, dire_score
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare matches batch: %w", err)
	}
	pb, err := s.ch.PrepareBatch(ctx, `
		INSERT INTO oraculo.player_matches (
			match_id, start_time, duration_sec, league_name, patch, side, win, team_id, team_name,
			account_id, player_name, hero_id, opponent_heroes,
			kills, deaths, assists, gpm, xpm, last_hits, net_worth, hero_damage, tower_damage
		)
	`)
	if err != nil {
		_ = mb.Abort()
		return fmt.Errorf("prepare player batch: %w", err)
	}

	for _, m := range matches {
		start := m.StartTime
		if start.IsZero() {
			start = time.Now().UTC()
		}
		err := mb.Append(
			uint64(m.MatchID), start, uint32(m.DurationSec), uint64(m.LeagueID), m.LeagueName,
			uint64(m.SeriesID), uint16(m.Patch),
			uint64(m.Radiant.ID), m.Radiant.Name, uint64(m.Dire.ID), m.Dire.Name,
			b2u(m.RadiantWin), uint16(m.RadiantScore), uint16(m.DireScore),
		)
		if err != nil {
			s.logger.Warnw("Failed to append match to batch", "error", err, "match_id", m.MatchID)
			continue
		}

		for _, p := range m.Players {
			side := p.Side()
			team := m.TeamFor(side)
			err := pb.Append(
				uint64(m.MatchID), start, uint32(m.DurationSec), m.LeagueName, uint16(m.Patch),
				string(side), b2u(p.Win(m.RadiantWin)), uint64(team.ID), team.Name,
				uint64(p.AccountID), p.Name, uint16(p.HeroID), heroIDs(m.HeroesFor(side.Opponent())),
				uint16(p.Kills), uint16(p.Deaths), uint16(p.Assists), uint16(p.GPM), uint16(p.XPM),
				uint16(p.LastHits), uint32(p.NetWorth), uint32(p.HeroDamage), uint32(p.TowerDamage),
			)
			if err != nil {
				s.logger.Warnw("Failed to append player row to batch", "error", err, "match_id", m.MatchID, "hero_id", p.HeroID)
			}
		}
	}

	if err := mb.Send(); err != nil {
		_ = pb.Abort()
		return fmt.Errorf("send matches batch: %w", err)
	}
	if err := pb.Send(); err != nil {
		return fmt.Errorf("send player batch: %w", err)
	}
	return nil
}
