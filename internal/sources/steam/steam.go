// Package steam reads Dota 2 match data from the Steam Web API.
package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/sources/httpclient"
)

const DefaultBaseURL = "https://api.steampowered.com"

// ErrResult is wrapped when the API answers 200 with an error inside "result".
var ErrResult = errors.New("steam result error")

type Client struct {
	http *httpclient.Client
}

func New(baseURL, key string, opts ...httpclient.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts = append([]httpclient.Option{httpclient.WithQueryKey("key", key)}, opts...)
	return &Client{http: httpclient.New("steam", baseURL, opts...)}
}

type envelope struct {
	Result json.RawMessage `json:"result"`
}

type resultStatus struct {
	Status       int    `json:"status"`
	StatusDetail string `json:"statusDetail"`
	Error        string `json:"error"`
}

// get unwraps {"result": ...} and turns embedded errors into ErrResult.
func (c *Client) get(ctx context.Context, path string, q url.Values, dest any) error {
	var env envelope
	if err := c.http.GetJSON(ctx, path, q, &env); err != nil {
		return err
	}
	if len(env.Result) == 0 {
		return fmt.Errorf("%w: empty result", ErrResult)
	}
	var st resultStatus
	if err := json.Unmarshal(env.Result, &st); err == nil {
		if st.Error != "" {
			return fmt.Errorf("%w: %s", ErrResult, st.Error)
		}
		// status 1 is success; 0 means the field is absent
		if st.Status > 1 {
			return fmt.Errorf("%w: status %d %s", ErrResult, st.Status, strings.TrimSpace(st.StatusDetail))
		}
	}
	return json.Unmarshal(env.Result, dest)
}

// HistoryEntry is a row of GetMatchHistory.
type HistoryEntry struct {
	MatchID     int64 `json:"match_id"`
	StartTime   int64 `json:"start_time"`
	LobbyType   int   `json:"lobby_type"`
	RadiantTeam int64 `json:"radiant_team_id"`
	DireTeam    int64 `json:"dire_team_id"`
}

// MatchHistory lists recent matches of a league. leagueID 0 lists public matches.
func (c *Client) MatchHistory(ctx context.Context, leagueID int64, count int) ([]HistoryEntry, error) {
	q := url.Values{}
	if leagueID > 0 {
		q.Set("league_id", strconv.FormatInt(leagueID, 10))
	}
	if count > 0 {
		q.Set("matches_requested", strconv.Itoa(count))
	}
	var res struct {
		Matches []HistoryEntry `json:"matches"`
	}
	if err := c.get(ctx, "/IDOTA2Match_570/GetMatchHistory/v1/", q, &res); err != nil {
		return nil, fmt.Errorf("match history: %w", err)
	}
	return res.Matches, nil
}

type detailsPlayer struct {
	AccountID   int64 `json:"account_id"`
	PlayerSlot  int   `json:"player_slot"`
	TeamNumber  *int  `json:"team_number"`
	HeroID      int   `json:"hero_id"`
	Kills       int   `json:"kills"`
	Deaths      int   `json:"deaths"`
	Assists     int   `json:"assists"`
	LastHits    int   `json:"last_hits"`
	GPM         int   `json:"gold_per_min"`
	XPM         int   `json:"xp_per_min"`
	NetWorth    int   `json:"net_worth"`
	HeroDamage  int   `json:"hero_damage"`
	TowerDamage int   `json:"tower_damage"`
}

type detailsDTO struct {
	MatchID      int64           `json:"match_id"`
	RadiantWin   bool            `json:"radiant_win"`
	Duration     int             `json:"duration"`
	StartTime    int64           `json:"start_time"`
	LeagueID     int64           `json:"leagueid"`
	RadiantScore int             `json:"radiant_score"`
	DireScore    int             `json:"dire_score"`
	RadiantID    int64           `json:"radiant_team_id"`
	RadiantName  string          `json:"radiant_name"`
	RadiantTag   string          `json:"radiant_tag"`
	DireID       int64           `json:"dire_team_id"`
	DireName     string          `json:"dire_name"`
	DireTag      string          `json:"dire_tag"`
	Players      []detailsPlayer `json:"players"`
	PicksBans    []struct {
		IsPick bool `json:"is_pick"`
		HeroID int  `json:"hero_id"`
		Team   int  `json:"team"`
		Order  int  `json:"order"`
	} `json:"picks_bans"`
}

// MatchDetails returns a finished match. Account IDs of anonymous players
// come back as 4294967295 and are zeroed.
func (c *Client) MatchDetails(ctx context.Context, matchID int64) (*models.Match, error) {
	q := url.Values{"match_id": {strconv.FormatInt(matchID, 10)}}
	var d detailsDTO
	if err := c.get(ctx, "/IDOTA2Match_570/GetMatchDetails/v1/", q, &d); err != nil {
		return nil, fmt.Errorf("match details %d: %w", matchID, err)
	}

	m := &models.Match{
		MatchID:      d.MatchID,
		StartTime:    time.Unix(d.StartTime, 0).UTC(),
		DurationSec:  d.Duration,
		RadiantWin:   d.RadiantWin,
		Radiant:      models.TeamRef{ID: d.RadiantID, Name: d.RadiantName, Tag: d.RadiantTag},
		Dire:         models.TeamRef{ID: d.DireID, Name: d.DireName, Tag: d.DireTag},
		LeagueID:     d.LeagueID,
		RadiantScore: d.RadiantScore,
		DireScore:    d.DireScore,
	}
	for _, p := range d.Players {
		radiant := p.PlayerSlot < 128
		if p.TeamNumber != nil {
			radiant = *p.TeamNumber == 0
		}
		account := p.AccountID
		if account == 4294967295 {
			account = 0
		}
		m.Players = append(m.Players, models.PlayerMatch{
			AccountID:   account,
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
	for _, pb := range d.PicksBans {
		m.PicksBans = append(m.PicksBans, models.PickBan(pb))
	}
	return m, nil
}

// LiveGame is an in-progress league game.
type LiveGame struct {
	MatchID     int64    `json:"match_id"`
	LeagueID    int64    `json:"league_id"`
	Spectators  int      `json:"spectators"`
	RadiantTeam LiveTeam `json:"radiant_team"`
	DireTeam    LiveTeam `json:"dire_team"`
	Scoreboard  struct {
		Duration float64 `json:"duration"`
		Radiant  struct {
			Score int `json:"score"`
		} `json:"radiant"`
		Dire struct {
			Score int `json:"score"`
		} `json:"dire"`
	} `json:"scoreboard"`
}

type LiveTeam struct {
	TeamID   int64  `json:"team_id"`
	TeamName string `json:"team_name"`
}

func (c *Client) LiveLeagueGames(ctx context.Context) ([]LiveGame, error) {
	var res struct {
		Games []LiveGame `json:"games"`
	}
	if err := c.get(ctx, "/IDOTA2Match_570/GetLiveLeagueGames/v1/", nil, &res); err != nil {
		return nil, fmt.Errorf("live league games: %w", err)
	}
	return res.Games, nil
}

// Heroes returns the hero list with English names.
func (c *Client) Heroes(ctx context.Context) ([]models.Hero, error) {
	var res struct {
		Heroes []struct {
			ID            int    `json:"id"`
			Name          string `json:"name"`
			LocalizedName string `json:"localized_name"`
		} `json:"heroes"`
	}
	q := url.Values{"language": {"en"}}
	if err := c.get(ctx, "/IEconDOTA2_570/GetHeroes/v1/", q, &res); err != nil {
		return nil, fmt.Errorf("heroes: %w", err)
	}
	out := make([]models.Hero, 0, len(res.Heroes))
	for _, h := range res.Heroes {
		out = append(out, models.Hero{ID: h.ID, Name: h.Name, LocalizedName: h.LocalizedName})
	}
	return out, nil
}
