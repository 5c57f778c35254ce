// Package opendota reads professional match data from the OpenDota API.
package opendota

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/sources/httpclient"
)

const DefaultBaseURL = "https://api.opendota.com/api"

type Client struct {
	http *httpclient.Client
}

// New returns an OpenDota client. apiKey may be empty.
func New(baseURL, apiKey string, opts ...httpclient.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts = append([]httpclient.Option{httpclient.WithQueryKey("api_key", apiKey)}, opts...)
	return &Client{http: httpclient.New("opendota", baseURL, opts...)}
}

// ProMatch is a row of /proMatches.
type ProMatch struct {
	MatchID       int64  `json:"match_id"`
	Duration      int    `json:"duration"`
	StartTime     int64  `json:"start_time"`
	RadiantTeamID int64  `json:"radiant_team_id"`
	RadiantName   string `json:"radiant_name"`
	DireTeamID    int64  `json:"dire_team_id"`
	DireName      string `json:"dire_name"`
	LeagueID      int64  `json:"leagueid"`
	LeagueName    string `json:"league_name"`
	SeriesID      int64  `json:"series_id"`
	SeriesType    int    `json:"series_type"`
	RadiantScore  int    `json:"radiant_score"`
	DireScore     int    `json:"dire_score"`
	RadiantWin    bool   `json:"radiant_win"`
}

// ToMatch converts the summary row into a match without players.
func (p ProMatch) ToMatch() models.Match {
	return models.Match{
		MatchID:      p.MatchID,
		StartTime:    time.Unix(p.StartTime, 0).UTC(),
		DurationSec:  p.Duration,
		RadiantWin:   p.RadiantWin,
		Radiant:      models.TeamRef{ID: p.RadiantTeamID, Name: p.RadiantName},
		Dire:         models.TeamRef{ID: p.DireTeamID, Name: p.DireName},
		LeagueID:     p.LeagueID,
		LeagueName:   p.LeagueName,
		SeriesID:     p.SeriesID,
		SeriesType:   p.SeriesType,
		RadiantScore: p.RadiantScore,
		DireScore:    p.DireScore,
	}
}

type teamDTO struct {
	TeamID int64  `json:"team_id"`
	Name   string `json:"name"`
	Tag    string `json:"tag"`
}

type leagueDTO struct {
	LeagueID int64  `json:"leagueid"`
	Name     string `json:"name"`
}

type playerDTO struct {
	AccountID   int64  `json:"account_id"`
	Name        string `json:"name"`
	Personaname string `json:"personaname"`
	HeroID      int    `json:"hero_id"`
	PlayerSlot  int    `json:"player_slot"`
	IsRadiant   *bool  `json:"isRadiant"`
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

type matchDTO struct {
	MatchID      int64            `json:"match_id"`
	StartTime    int64            `json:"start_time"`
	Duration     int              `json:"duration"`
	RadiantWin   bool             `json:"radiant_win"`
	RadiantScore int              `json:"radiant_score"`
	DireScore    int              `json:"dire_score"`
	LeagueID     int64            `json:"leagueid"`
	SeriesID     int64            `json:"series_id"`
	SeriesType   int              `json:"series_type"`
	Patch        int              `json:"patch"`
	RadiantTeam  *teamDTO         `json:"radiant_team"`
	DireTeam     *teamDTO         `json:"dire_team"`
	League       *leagueDTO       `json:"league"`
	Players      []playerDTO      `json:"players"`
	PicksBans    []models.PickBan `json:"picks_bans"`
}

func (d matchDTO) toModel() models.Match {
	m := models.Match{
		MatchID:      d.MatchID,
		StartTime:    time.Unix(d.StartTime, 0).UTC(),
		DurationSec:  d.Duration,
		RadiantWin:   d.RadiantWin,
		RadiantScore: d.RadiantScore,
		DireScore:    d.DireScore,
		LeagueID:     d.LeagueID,
		SeriesID:     d.SeriesID,
		SeriesType:   d.SeriesType,
		Patch:        d.Patch,
		PicksBans:    d.PicksBans,
	}
	if d.RadiantTeam != nil {
		m.Radiant = models.TeamRef{ID: d.RadiantTeam.TeamID, Name: d.RadiantTeam.Name, Tag: d.RadiantTeam.Tag}
	}
	if d.DireTeam != nil {
		m.Dire = models.TeamRef{ID: d.DireTeam.TeamID, Name: d.DireTeam.Name, Tag: d.DireTeam.Tag}
	}
	if d.League != nil {
		m.LeagueName = d.League.Name
	}
	for _, p := range d.Players {
		name := p.Name
		if name == "" {
			name = p.Personaname
		}
		// Slots 0-4 are radiant, 128-132 dire.
		radiant := p.PlayerSlot < 128
		if p.IsRadiant != nil {
			radiant = *p.IsRadiant
		}
		m.Players = append(m.Players, models.PlayerMatch{
			AccountID:   p.AccountID,
			Name:        name,
			HeroID:      p.HeroID,
			PlayerSlot:  p.PlayerSlot,
			IsRadiant:   radiant,
			Kills:       p.Kills,
			Deaths:      p.Deaths,
			Assists:     p.Assists,
			GPM:         p.GPM,
			XPM:         p.XPM,
			LastHits:    p.LastHits,
			NetWorth:    p.NetWorth,
			HeroDamage:  p.HeroDamage,
			TowerDamage: p.TowerDamage,
		})
	}
	return m
}

// ProMatches returns the most recent professional matches. A lessThan of 0
// starts from the newest; otherwise only matches with a smaller ID are returned.
func (c *Client) ProMatches(ctx context.Context, lessThan int64) ([]ProMatch, error) {
	q := url.Values{}
	if lessThan > 0 {
		q.Set("less_than_match_id", strconv.FormatInt(lessThan, 10))
	}
	var out []ProMatch
	if err := c.http.GetJSON(ctx, "/proMatches", q, &out); err != nil {
		return nil, fmt.Errorf("pro matches: %w", err)
	}
	return out, nil
}

// Match returns the full match including players and draft.
func (c *Client) Match(ctx context.Context, matchID int64) (*models.Match, error) {
	var dto matchDTO
	if err := c.http.GetJSON(ctx, fmt.Sprintf("/matches/%d", matchID), nil, &dto); err != nil {
		return nil, fmt.Errorf("match %d: %w", matchID, err)
	}
	m := dto.toModel()
	return &m, nil
}

type heroDTO struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	LocalizedName string   `json:"localized_name"`
	PrimaryAttr   string   `json:"primary_attr"`
	AttackType    string   `json:"attack_type"`
	Roles         []string `json:"roles"`
}

func (c *Client) Heroes(ctx context.Context) ([]models.Hero, error) {
	var dtos []heroDTO
	if err := c.http.GetJSON(ctx, "/heroes", nil, &dtos); err != nil {
		return nil, fmt.Errorf("heroes: %w", err)
	}
	heroes := make([]models.Hero, 0, len(dtos))
	for _, d := range dtos {
		heroes = append(heroes, models.Hero(d))
	}
	return heroes, nil
}

type heroStatsDTO struct {
	ID            int    `json:"id"`
	LocalizedName string `json:"localized_name"`
	ProPick       int    `json:"pro_pick"`
	ProWin        int    `json:"pro_win"`
	ProBan        int    `json:"pro_ban"`
}

// HeroStats returns professional pick/win/ban counters for every hero.
func (c *Client) HeroStats(ctx context.Context) ([]models.HeroStats, error) {
	var dtos []heroStatsDTO
	if err := c.http.GetJSON(ctx, "/heroStats", nil, &dtos); err != nil {
		return nil, fmt.Errorf("hero stats: %w", err)
	}
	stats := make([]models.HeroStats, 0, len(dtos))
	for _, d := range dtos {
		stats = append(stats, models.HeroStats{
			HeroID:  d.ID,
			Name:    d.LocalizedName,
			ProPick: d.ProPick,
			ProWin:  d.ProWin,
			ProBan:  d.ProBan,
		})
	}
	return stats, nil
}

func (c *Client) Teams(ctx context.Context) ([]models.Team, error) {
	var out []models.Team
	if err := c.http.GetJSON(ctx, "/teams", nil, &out); err != nil {
		return nil, fmt.Errorf("teams: %w", err)
	}
	return out, nil
}

// TeamMatch is a row of /teams/{id}/matches, seen from the team's perspective.
type TeamMatch struct {
	MatchID      int64  `json:"match_id"`
	RadiantWin   bool   `json:"radiant_win"`
	Radiant      bool   `json:"radiant"`
	Duration     int    `json:"duration"`
	StartTime    int64  `json:"start_time"`
	LeagueID     int64  `json:"leagueid"`
	LeagueName   string `json:"league_name"`
	OpposingID   int64  `json:"opposing_team_id"`
	OpposingName string `json:"opposing_team_name"`
}

// Won reports whether the team won the match.
func (t TeamMatch) Won() bool {
	return t.Radiant == t.RadiantWin
}

func (c *Client) TeamMatches(ctx context.Context, teamID int64) ([]TeamMatch, error) {
	var out []TeamMatch
	if err := c.http.GetJSON(ctx, fmt.Sprintf("/teams/%d/matches", teamID), nil, &out); err != nil {
		return nil, fmt.Errorf("team %d matches: %w", teamID, err)
	}
	return out, nil
}

// LeagueMatches returns the summary rows for every match of a league.
func (c *Client) LeagueMatches(ctx context.Context, leagueID int64) ([]ProMatch, error) {
	var out []ProMatch
	if err := c.http.GetJSON(ctx, fmt.Sprintf("/leagues/%d/matches", leagueID), nil, &out); err != nil {
		return nil, fmt.Errorf("league %d matches: %w", leagueID, err)
	}
	return out, nil
}

// DecodeMatches reads match JSON as returned by /matches/{id}: either a single
// object or an array of them, as found in saved dumps.
func DecodeMatches(data []byte) ([]models.Match, error) {
	data = bytes.TrimSpace(data)
	var dtos []matchDTO
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &dtos); err != nil {
			return nil, fmt.Errorf("decode matches: %w", err)
		}
	} else {
		var one matchDTO
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("decode match: %w", err)
		}
		dtos = append(dtos, one)
	}
	out := make([]models.Match, 0, len(dtos))
	for _, d := range dtos {
		if d.MatchID == 0 {
			continue
		}
		out = append(out, d.toModel())
	}
	return out, nil
}
