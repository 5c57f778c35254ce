// Package sqldb builds a local relational copy of collected matches,
// SQLite by default and MySQL when a server is preferred.
package sqldb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/oraculo/stats-api/internal/models"
)

//go:embed migrations/sqlite3/*.sql migrations/mysql/*.sql
var migrations embed.FS

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

func checkDriver(driver string) (string, error) {
	if driver == "" {
		return DriverSQLite, nil
	}
	switch driver {
	case DriverSQLite, DriverMySQL:
		return driver, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
}

// Open connects and pings the database. An empty driver means sqlite3.
func Open(driver, dsn string) (*sql.DB, error) {
	driver, err := checkDriver(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// a single writer avoids "database is locked" during imports
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// Migrate applies the embedded migrations for the driver's dialect.
func Migrate(db *sql.DB, driver string) error {
	driver, err := checkDriver(driver)
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(driver); err != nil {
		return err
	}
	return goose.Up(db, "migrations/"+driver)
}

// Builder writes and reads matches. It implements the collector sink.
type Builder struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

func NewBuilder(db *sql.DB, logger *zap.Logger) *Builder {
	return &Builder{db: db, logger: logger.Sugar()}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ImportMatches upserts matches with their teams, players and draft in
// a single transaction.
func (b *Builder) ImportMatches(ctx context.Context, matches []models.Match) (err error) {
	if len(matches) == 0 {
		return nil
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	teamStmt, err := tx.PrepareContext(ctx, `REPLACE INTO teams (team_id, name, tag) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare teams: %w", err)
	}
	defer teamStmt.Close()

	matchStmt, err := tx.PrepareContext(ctx, `
		REPLACE INTO matches (
			match_id, start_time, duration_sec, radiant_win,
			radiant_team_id, radiant_name, dire_team_id, dire_name,
			league_id, league_name, series_id, series_type,
			radiant_score, dire_score, patch
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare matches: %w", err)
	}
	defer matchStmt.Close()

	playerStmt, err := tx.PrepareContext(ctx, `
		REPLACE INTO player_matches (
			match_id, player_slot, account_id, name, hero_id, is_radiant,
			kills, deaths, assists, gpm, xpm, last_hits, net_worth, hero_damage, tower_damage
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare player_matches: %w", err)
	}
	defer playerStmt.Close()

	draftStmt, err := tx.PrepareContext(ctx, `REPLACE INTO picks_bans (match_id, ord, is_pick, hero_id, team) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare picks_bans: %w", err)
	}
	defer draftStmt.Close()

	for _, m := range matches {
		for _, t := range []models.TeamRef{m.Radiant, m.Dire} {
			if t.ID == 0 {
				continue
			}
			if _, err = teamStmt.ExecContext(ctx, t.ID, t.Name, t.Tag); err != nil {
				return fmt.Errorf("team %d: %w", t.ID, err)
			}
		}
		_, err = matchStmt.ExecContext(ctx,
			m.MatchID, m.StartTime.Unix(), m.DurationSec, boolInt(m.RadiantWin),
			m.Radiant.ID, m.Radiant.Name, m.Dire.ID, m.Dire.Name,
			m.LeagueID, m.LeagueName, m.SeriesID, m.SeriesType,
			m.RadiantScore, m.DireScore, m.Patch,
		)
		if err != nil {
			return fmt.Errorf("match %d: %w", m.MatchID, err)
		}
		for _, p := range m.Players {
			_, err = playerStmt.ExecContext(ctx,
				m.MatchID, p.PlayerSlot, p.AccountID, p.Name, p.HeroID, boolInt(p.IsRadiant),
				p.Kills, p.Deaths, p.Assists, p.GPM, p.XPM, p.LastHits, p.NetWorth, p.HeroDamage, p.TowerDamage,
			)
			if err != nil {
				return fmt.Errorf("match %d player slot %d: %w", m.MatchID, p.PlayerSlot, err)
			}
		}
		for i, pb := range m.PicksBans {
			ord := pb.Order
			if ord == 0 {
				ord = i
			}
			if _, err = draftStmt.ExecContext(ctx, m.MatchID, ord, boolInt(pb.IsPick), pb.HeroID, pb.Team); err != nil {
				return fmt.Errorf("match %d draft: %w", m.MatchID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	b.logger.Infow("Imported matches", "count", len(matches))
	return nil
}

// InsertMatches lets the builder act as a worker pool sink.
func (b *Builder) InsertMatches(ctx context.Context, matches []models.Match) error {
	return b.ImportMatches(ctx, matches)
}

func (b *Builder) ImportHeroes(ctx context.Context, heroes []models.Hero) (err error) {
	if len(heroes) == 0 {
		return nil
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin hero import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	stmt, err := tx.PrepareContext(ctx, `
		REPLACE INTO heroes (id, name, localized_name, primary_attr, attack_type, roles)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare heroes: %w", err)
	}
	defer stmt.Close()

	for _, h := range heroes {
		if _, err = stmt.ExecContext(ctx, h.ID, h.Name, h.LocalizedName, h.PrimaryAttr, h.AttackType, strings.Join(h.Roles, ",")); err != nil {
			return fmt.Errorf("hero %d: %w", h.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit hero import: %w", err)
	}
	return nil
}

// LoadMatches returns the most recent matches, oldest first, with players
// and draft attached. A non-positive limit loads everything.
func (b *Builder) LoadMatches(ctx context.Context, limit int) ([]models.Match, error) {
	query := `
		SELECT match_id, start_time, duration_sec, radiant_win,
			radiant_team_id, radiant_name, dire_team_id, dire_name,
			league_id, league_name, series_id, series_type,
			radiant_score, dire_score, patch
		FROM matches
		ORDER BY start_time DESC, match_id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	index := map[int64]int{}
	for rows.Next() {
		var m models.Match
		var start int64
		var radiantWin int
		if err := rows.Scan(
			&m.MatchID, &start, &m.DurationSec, &radiantWin,
			&m.Radiant.ID, &m.Radiant.Name, &m.Dire.ID, &m.Dire.Name,
			&m.LeagueID, &m.LeagueName, &m.SeriesID, &m.SeriesType,
			&m.RadiantScore, &m.DireScore, &m.Patch,
		); err != nil {
			return nil, err
		}
		m.StartTime = time.Unix(start, 0).UTC()
		m.RadiantWin = radiantWin == 1
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// reverse into chronological order
	for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
		matches[i], matches[j] = matches[j], matches[i]
	}
	for i, m := range matches {
		index[m.MatchID] = i
	}
	if len(matches) == 0 {
		return matches, nil
	}

	if err := b.loadPlayers(ctx, matches, index); err != nil {
		return nil, err
	}
	if err := b.loadDrafts(ctx, matches, index); err != nil {
		return nil, err
	}
	return matches, nil
}

func (b *Builder) loadPlayers(ctx context.Context, matches []models.Match, index map[int64]int) error {
	rows, err := b.db.QueryContext(ctx, `
		SELECT match_id, player_slot, account_id, name, hero_id, is_radiant,
			kills, deaths, assists, gpm, xpm, last_hits, net_worth, hero_damage, tower_damage
		FROM player_matches
		ORDER BY match_id, player_slot`)
	if err != nil {
		return fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var isRadiant int
		var p models.PlayerMatch
		if err := rows.Scan(
			&id, &p.PlayerSlot, &p.AccountID, &p.Name, &p.HeroID, &isRadiant,
			&p.Kills, &p.Deaths, &p.Assists, &p.GPM, &p.XPM, &p.LastHits, &p.NetWorth, &p.HeroDamage, &p.TowerDamage,
		); err != nil {
			return err
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		p.IsRadiant = isRadiant == 1
		matches[i].Players = append(matches[i].Players, p)
	}
	return rows.Err()
}

func (b *Builder) loadDrafts(ctx context.Context, matches []models.Match, index map[int64]int) error {
	rows, err := b.db.QueryContext(ctx, `SELECT match_id, ord, is_pick, hero_id, team FROM picks_bans ORDER BY match_id, ord`)
	if err != nil {
		return fmt.Errorf("query picks_bans: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var isPick int
		var pb models.PickBan
		if err := rows.Scan(&id, &pb.Order, &isPick, &pb.HeroID, &pb.Team); err != nil {
			return err
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		pb.IsPick = isPick == 1
		matches[i].PicksBans = append(matches[i].PicksBans, pb)
	}
	return rows.Err()
}

// Counts reports row counts per table, used by the builder CLI summary.
func (b *Builder) Counts(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, table := range []string{"heroes", "teams", "matches", "player_matches", "picks_bans"} {
		var n int64
		if err := b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		out[table] = n
	}
	return out, nil
}
