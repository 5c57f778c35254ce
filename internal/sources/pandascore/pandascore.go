// Package pandascore reads Dota 2 fixtures from the PandaScore REST API.
package pandascore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/oraculo/stats-api/internal/sources/httpclient"
)

const DefaultBaseURL = "https://api.pandascore.co"

type Client struct {
	http *httpclient.Client
}

func New(baseURL, token string, opts ...httpclient.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts = append([]httpclient.Option{httpclient.WithBearer(token)}, opts...)
	return &Client{http: httpclient.New("pandascore", baseURL, opts...)}
}

// Fixture is a scheduled, running or finished series.
type Fixture struct {
	ID         int64         `json:"id"`
	Name       string        `json:"name"`
	BeginAt    *time.Time    `json:"begin_at"`
	Status     string        `json:"status"`
	BestOf     int           `json:"number_of_games"`
	Teams      []FixtureTeam `json:"teams"`
	League     string        `json:"league"`
	Tournament string        `json:"tournament"`
	Results    []Result      `json:"results"`
	WinnerID   int64         `json:"winner_id,omitempty"`
}

type FixtureTeam struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Acronym string `json:"acronym"`
}

type Result struct {
	TeamID int64 `json:"team_id"`
	Score  int   `json:"score"`
}

// Score returns the map score for a team, or 0 if it is not in the results.
func (f Fixture) Score(teamID int64) int {
	for _, r := range f.Results {
		if r.TeamID == teamID {
			return r.Score
		}
	}
	return 0
}

type matchDTO struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	BeginAt       *time.Time `json:"begin_at"`
	Status        string     `json:"status"`
	NumberOfGames int        `json:"number_of_games"`
	WinnerID      *int64     `json:"winner_id"`
	Opponents     []struct {
		Opponent FixtureTeam `json:"opponent"`
	} `json:"opponents"`
	League struct {
		Name string `json:"name"`
	} `json:"league"`
	Tournament struct {
		Name string `json:"name"`
	} `json:"tournament"`
	Results []Result `json:"results"`
}

func (d matchDTO) toFixture() Fixture {
	f := Fixture{
		ID:         d.ID,
		Name:       d.Name,
		BeginAt:    d.BeginAt,
		Status:     d.Status,
		BestOf:     d.NumberOfGames,
		League:     d.League.Name,
		Tournament: d.Tournament.Name,
		Results:    d.Results,
	}
	if d.WinnerID != nil {
		f.WinnerID = *d.WinnerID
	}
	for _, o := range d.Opponents {
		f.Teams = append(f.Teams, o.Opponent)
	}
	return f
}

func (c *Client) list(ctx context.Context, path string, q url.Values) ([]Fixture, error) {
	var dtos []matchDTO
	if err := c.http.GetJSON(ctx, path, q, &dtos); err != nil {
		return nil, err
	}
	out := make([]Fixture, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toFixture())
	}
	return out, nil
}

// UpcomingMatches returns scheduled series ordered by start time.
func (c *Client) UpcomingMatches(ctx context.Context, perPage int) ([]Fixture, error) {
	q := url.Values{"sort": {"begin_at"}}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	out, err := c.list(ctx, "/dota2/matches/upcoming", q)
	if err != nil {
		return nil, fmt.Errorf("upcoming matches: %w", err)
	}
	return out, nil
}

func (c *Client) RunningMatches(ctx context.Context) ([]Fixture, error) {
	out, err := c.list(ctx, "/dota2/matches/running", nil)
	if err != nil {
		return nil, fmt.Errorf("running matches: %w", err)
	}
	return out, nil
}

// PastMatches pages finished series, newest first. page starts at 1.
func (c *Client) PastMatches(ctx context.Context, page, perPage int) ([]Fixture, error) {
	q := url.Values{"sort": {"-begin_at"}}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	out, err := c.list(ctx, "/dota2/matches/past", q)
	if err != nil {
		return nil, fmt.Errorf("past matches: %w", err)
	}
	return out, nil
}

func (c *Client) Match(ctx context.Context, id int64) (*Fixture, error) {
	var dto matchDTO
	if err := c.http.GetJSON(ctx, fmt.Sprintf("/dota2/matches/%d", id), nil, &dto); err != nil {
		return nil, fmt.Errorf("match %d: %w", id, err)
	}
	f := dto.toFixture()
	return &f, nil
}
