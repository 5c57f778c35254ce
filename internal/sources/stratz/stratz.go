// Package stratz queries the STRATZ GraphQL API.
package stratz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/sources/httpclient"
)

const DefaultBaseURL = "https://api.stratz.com"

// GraphQLError carries the messages of a non-empty "errors" array.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "stratz graphql: " + strings.Join(e.Messages, "; ")
}

type Client struct {
	http *httpclient.Client
}

func New(baseURL, token string, opts ...httpclient.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts = append([]httpclient.Option{httpclient.WithBearer(token)}, opts...)
	return &Client{http: httpclient.New("stratz", baseURL, opts...)}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Query runs a GraphQL document and decodes "data" into dest.
func (c *Client) Query(ctx context.Context, query string, vars map[string]any, dest any) error {
	var resp gqlResponse
	if err := c.http.PostJSON(ctx, "/graphql", gqlRequest{Query: query, Variables: vars}, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		gqlErr := &GraphQLError{}
		for _, e := range resp.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		return gqlErr
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return fmt.Errorf("stratz: empty data: %w", httpclient.ErrNotFound)
	}
	return json.Unmarshal(resp.Data, dest)
}

const matchQuery = `query Match($id: Long!) {
  match(id: $id) {
    id
    didRadiantWin
    durationSeconds
    startDateTime
    leagueId
    radiantKills
    direKills
    radiantTeam { id name tag }
    direTeam { id name tag }
    league { displayName }
    players {
      steamAccountId
      heroId
      playerSlot
      isRadiant
      kills
      deaths
      assists
      goldPerMinute
      experiencePerMinute
      numLastHits
      networth
      heroDamage
      towerDamage
      steamAccount { name }
    }
    pickBans { isPick heroId order isRadiant }
  }
}`

type teamNode struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

type matchNode struct {
	ID              int64     `json:"id"`
	DidRadiantWin   bool      `json:"didRadiantWin"`
	DurationSeconds int       `json:"durationSeconds"`
	StartDateTime   int64     `json:"startDateTime"`
	LeagueID        int64     `json:"leagueId"`
	RadiantKills    []int     `json:"radiantKills"`
	DireKills       []int     `json:"direKills"`
	RadiantTeam     *teamNode `json:"radiantTeam"`
	DireTeam        *teamNode `json:"direTeam"`
	League          *struct {
		DisplayName string `json:"displayName"`
	} `json:"league"`
	Players []struct {
		SteamAccountID      int64 `json:"steamAccountId"`
		HeroID              int   `json:"heroId"`
		PlayerSlot          int   `json:"playerSlot"`
		IsRadiant           bool  `json:"isRadiant"`
		Kills               int   `json:"kills"`
		Deaths              int   `json:"deaths"`
		Assists             int   `json:"assists"`
		GoldPerMinute       int   `json:"goldPerMinute"`
		ExperiencePerMinute int   `json:"experiencePerMinute"`
		NumLastHits         int   `json:"numLastHits"`
		Networth            int   `json:"networth"`
		HeroDamage          int   `json:"heroDamage"`
		TowerDamage         int   `json:"towerDamage"`
		SteamAccount        *struct {
			Name string `json:"name"`
		} `json:"steamAccount"`
	} `json:"players"`
	PickBans []struct {
		IsPick    bool `json:"isPick"`
		HeroID    int  `json:"heroId"`
		Order     int  `json:"order"`
		IsRadiant bool `json:"isRadiant"`
	} `json:"pickBans"`
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

// Match fetches a parsed match. Scores are the sum of the per-minute kill arrays.
func (c *Client) Match(ctx context.Context, id int64) (*models.Match, error) {
	var data struct {
		Match *matchNode `json:"match"`
	}
	if err := c.Query(ctx, matchQuery, map[string]any{"id": id}, &data); err != nil {
		return nil, fmt.Errorf("match %d: %w", id, err)
	}
	if data.Match == nil {
		return nil, fmt.Errorf("match %d: %w", id, httpclient.ErrNotFound)
	}
	n := data.Match

	m := &models.Match{
		MatchID:      n.ID,
		StartTime:    time.Unix(n.StartDateTime, 0).UTC(),
		DurationSec:  n.DurationSeconds,
		RadiantWin:   n.DidRadiantWin,
		LeagueID:     n.LeagueID,
		RadiantScore: sum(n.RadiantKills),
		DireScore:    sum(n.DireKills),
	}
	if n.RadiantTeam != nil {
		m.Radiant = models.TeamRef{ID: n.RadiantTeam.ID, Name: n.RadiantTeam.Name, Tag: n.RadiantTeam.Tag}
	}
	if n.DireTeam != nil {
		m.Dire = models.TeamRef{ID: n.DireTeam.ID, Name: n.DireTeam.Name, Tag: n.DireTeam.Tag}
	}
	if n.League != nil {
		m.LeagueName = n.League.DisplayName
	}
	for _, p := range n.Players {
		pm := models.PlayerMatch{
			AccountID:   p.SteamAccountID,
			HeroID:      p.HeroID,
			PlayerSlot:  p.PlayerSlot,
			IsRadiant:   p.IsRadiant,
			Kills:       p.Kills,
			Deaths:      p.Deaths,
			Assists:     p.Assists,
			GPM:         p.GoldPerMinute,
			XPM:         p.ExperiencePerMinute,
			LastHits:    p.NumLastHits,
			NetWorth:    p.Networth,
			HeroDamage:  p.HeroDamage,
			TowerDamage: p.TowerDamage,
		}
		if p.SteamAccount != nil {
			pm.Name = p.SteamAccount.Name
		}
		m.Players = append(m.Players, pm)
	}
	for _, pb := range n.PickBans {
		team := 1
		if pb.IsRadiant {
			team = 0
		}
		m.PicksBans = append(m.PicksBans, models.PickBan{IsPick: pb.IsPick, HeroID: pb.HeroID, Team: team, Order: pb.Order})
	}
	return m, nil
}

const teamQuery = `query Team($id: Int!) {
  team(teamId: $id) {
    id
    name
    tag
    winCount
    lossCount
  }
}`

// TeamSummary returns name, tag and lifetime record of a team.
func (c *Client) TeamSummary(ctx context.Context, teamID int64) (*models.Team, error) {
	var data struct {
		Team *struct {
			ID        int64  `json:"id"`
			Name      string `json:"name"`
			Tag       string `json:"tag"`
			WinCount  int    `json:"winCount"`
			LossCount int    `json:"lossCount"`
		} `json:"team"`
	}
	if err := c.Query(ctx, teamQuery, map[string]any{"id": teamID}, &data); err != nil {
		return nil, fmt.Errorf("team %d: %w", teamID, err)
	}
	if data.Team == nil {
		return nil, fmt.Errorf("team %d: %w", teamID, httpclient.ErrNotFound)
	}
	return &models.Team{
		TeamID: data.Team.ID,
		Name:   data.Team.Name,
		Tag:    data.Team.Tag,
		Wins:   data.Team.WinCount,
		Losses: data.Team.LossCount,
	}, nil
}
