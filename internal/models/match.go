package models

import (
	"strconv"
	"strings"
	"time"
)

// Side is one of the two opposing factions of a Dota 2 match.
type Side string

const (
	SideRadiant Side = "radiant"
	SideDire    Side = "dire"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideRadiant {
		return SideDire
	}
	return SideRadiant
}

// ParseSide accepts radiant/dire in English or Portuguese shorthand.
func ParseSide(s string) (Side, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "radiant", "r", "iluminados":
		return SideRadiant, true
	case "dire", "d", "temidos":
		return SideDire, true
	}
	return "", false
}

// TeamRef identifies a team as seen inside a match record.
type TeamRef struct {
	ID   int64  `json:"id" csv:"id"`
	Name string `json:"name" csv:"name"`
	Tag  string `json:"tag,omitempty" csv:"tag"`
}

// Match mirrors a finished professional match.
type Match struct {
	MatchID      int64         `json:"match_id"`
	StartTime    time.Time     `json:"start_time"`
	DurationSec  int           `json:"duration"`
	RadiantWin   bool          `json:"radiant_win"`
	Radiant      TeamRef       `json:"radiant_team"`
	Dire         TeamRef       `json:"dire_team"`
	LeagueID     int64         `json:"league_id,omitempty"`
	LeagueName   string        `json:"league_name,omitempty"`
	SeriesID     int64         `json:"series_id,omitempty"`
	SeriesType   int           `json:"series_type,omitempty"`
	RadiantScore int           `json:"radiant_score"`
	DireScore    int           `json:"dire_score"`
	Patch        int           `json:"patch,omitempty"`
	Players      []PlayerMatch `json:"players,omitempty"`
	PicksBans    []PickBan     `json:"picks_bans,omitempty"`
}

// PlayerMatch is one player's line in a match scoreboard.
type PlayerMatch struct {
	AccountID   int64  `json:"account_id"`
	Name        string `json:"name,omitempty"`
	HeroID      int    `json:"hero_id"`
	PlayerSlot  int    `json:"player_slot"`
	IsRadiant   bool   `json:"is_radiant"`
	Kills       int    `json:"kills"`
	Deaths      int    `json:"deaths"`
	Assists     int    `json:"assists"`
	GPM         int    `json:"gold_per_min"`
	XPM         int    `json:"xp_per_min"`
	LastHits    int    `json:"last_hits"`
	NetWorth    int    `json:"net_worth"`
	HeroDamage  int    `json:"hero_damage"`
	TowerDamage int    `json:"tower_damage"`
}

// PickBan is a single draft action.
type PickBan struct {
	IsPick bool `json:"is_pick"`
	HeroID int  `json:"hero_id"`
	Team   int  `json:"team"` // 0 radiant, 1 dire
	Order  int  `json:"order"`
}

// Side returns the side the player was on.
func (p PlayerMatch) Side() Side {
	if p.IsRadiant {
		return SideRadiant
	}
	return SideDire
}

// Win reports whether the player's side won.
func (p PlayerMatch) Win(radiantWin bool) bool {
	return p.IsRadiant == radiantWin
}

// Winner returns the winning side.
func (m Match) Winner() Side {
	if m.RadiantWin {
		return SideRadiant
	}
	return SideDire
}

func (m Match) DurationMinutes() float64 {
	return float64(m.DurationSec) / 60
}

// TeamFor returns the team that played the given side.
func (m Match) TeamFor(s Side) TeamRef {
	if s == SideRadiant {
		return m.Radiant
	}
	return m.Dire
}

// HeroesFor returns the hero IDs picked by a side, in player slot order.
func (m Match) HeroesFor(s Side) []int {
	var ids []int
	for _, p := range m.Players {
		if p.Side() == s && p.HeroID > 0 {
			ids = append(ids, p.HeroID)
		}
	}
	return ids
}

// TotalKills sums both sides' scores.
func (m Match) TotalKills() int {
	return m.RadiantScore + m.DireScore
}

// MatchRow is the flat CSV form of a match: one line per match, heroes as
// semicolon separated IDs.
type MatchRow struct {
	MatchID       int64  `csv:"match_id"`
	StartTime     int64  `csv:"start_time"`
	DurationSec   int    `csv:"duration"`
	RadiantWin    bool   `csv:"radiant_win"`
	RadiantTeamID int64  `csv:"radiant_team_id"`
	RadiantTeam   string `csv:"radiant_team"`
	DireTeamID    int64  `csv:"dire_team_id"`
	DireTeam      string `csv:"dire_team"`
	LeagueID      int64  `csv:"league_id"`
	LeagueName    string `csv:"league_name"`
	RadiantScore  int    `csv:"radiant_score"`
	DireScore     int    `csv:"dire_score"`
	RadiantHeroes string `csv:"radiant_heroes"`
	DireHeroes    string `csv:"dire_heroes"`
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ";")
}

func splitIDs(s string) []int {
	var ids []int
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' || r == ' ' }) {
		if id, err := strconv.Atoi(f); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Row flattens m. Player statistics other than heroes are dropped.
func (m Match) Row() MatchRow {
	return MatchRow{
		MatchID:       m.MatchID,
		StartTime:     m.StartTime.Unix(),
		DurationSec:   m.DurationSec,
		RadiantWin:    m.RadiantWin,
		RadiantTeamID: m.Radiant.ID,
		RadiantTeam:   m.Radiant.Name,
		DireTeamID:    m.Dire.ID,
		DireTeam:      m.Dire.Name,
		LeagueID:      m.LeagueID,
		LeagueName:    m.LeagueName,
		RadiantScore:  m.RadiantScore,
		DireScore:     m.DireScore,
		RadiantHeroes: joinIDs(m.HeroesFor(SideRadiant)),
		DireHeroes:    joinIDs(m.HeroesFor(SideDire)),
	}
}

// Match rebuilds a match from its row. Heroes become players without an account.
func (r MatchRow) Match() Match {
	m := Match{
		MatchID:      r.MatchID,
		StartTime:    time.Unix(r.StartTime, 0).UTC(),
		DurationSec:  r.DurationSec,
		RadiantWin:   r.RadiantWin,
		Radiant:      TeamRef{ID: r.RadiantTeamID, Name: r.RadiantTeam},
		Dire:         TeamRef{ID: r.DireTeamID, Name: r.DireTeam},
		LeagueID:     r.LeagueID,
		LeagueName:   r.LeagueName,
		RadiantScore: r.RadiantScore,
		DireScore:    r.DireScore,
	}
	for i, id := range splitIDs(r.RadiantHeroes) {
		m.Players = append(m.Players, PlayerMatch{HeroID: id, PlayerSlot: i, IsRadiant: true})
	}
	for i, id := range splitIDs(r.DireHeroes) {
		m.Players = append(m.Players, PlayerMatch{HeroID: id, PlayerSlot: 128 + i})
	}
	return m
}
