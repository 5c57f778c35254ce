package opendota

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/sources/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matchBody = `{
  "match_id": 7700000001,
  "start_time": 1717200000,
  "duration": 2460,
  "radiant_win": false,
  "radiant_score": 21,
  "dire_score": 34,
  "leagueid": 16632,
  "league": {"leagueid": 16632, "name": "PGL Wallachia"},
  "radiant_team": {"team_id": 1, "name": "Team Spirit", "tag": "TS"},
  "dire_team": {"team_id": 2, "name": "Gaimin Gladiators", "tag": "GG"},
  "players": [
    {"account_id": 10, "personaname": "Yatoro", "hero_id": 1, "player_slot": 0, "kills": 5, "gold_per_min": 610},
    {"account_id": 20, "name": "dyrachyo", "hero_id": 8, "player_slot": 128, "kills": 12, "gold_per_min": 720}
  ],
  "picks_bans": [{"is_pick": true, "hero_id": 1, "team": 0, "order": 7}]
}`

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
}

func TestMatch_MapsPlayersAndTeams(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/matches/7700000001": matchBody})
	defer srv.Close()

	c := New(srv.URL, "")
	m, err := c.Match(context.Background(), 7700000001)
	require.NoError(t, err)

	assert.Equal(t, "Team Spirit", m.Radiant.Name)
	assert.Equal(t, "GG", m.Dire.Tag)
	assert.Equal(t, "PGL Wallachia", m.LeagueName)
	assert.Equal(t, models.SideDire, m.Winner())
	assert.Equal(t, 41.0, m.DurationMinutes())
	require.Len(t, m.Players, 2)
	assert.Equal(t, "Yatoro", m.Players[0].Name)
	assert.True(t, m.Players[0].IsRadiant)
	assert.False(t, m.Players[1].IsRadiant)
	assert.Equal(t, []int{8}, m.HeroesFor(models.SideDire))
	assert.Len(t, m.PicksBans, 1)
}

func TestMatch_NotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	_, err := New(srv.URL, "").Match(context.Background(), 1)
	assert.True(t, errors.Is(err, httpclient.ErrNotFound))
}

func TestProMatches_Pagination(t *testing.T) {
	var gotLessThan, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLessThan = r.URL.Query().Get("less_than_match_id")
		gotKey = r.URL.Query().Get("api_key")
		w.Write([]byte(`[{"match_id": 99, "radiant_name": "A", "dire_name": "B", "radiant_win": true, "duration": 1800}]`))
	}))
	defer srv.Close()

	rows, err := New(srv.URL, "secret").ProMatches(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "100", gotLessThan)
	assert.Equal(t, "secret", gotKey)

	m := rows[0].ToMatch()
	assert.Equal(t, "A", m.Radiant.Name)
	assert.Equal(t, models.SideRadiant, m.Winner())
}

func TestHeroStats(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/heroStats": `[{"id": 1, "localized_name": "Anti-Mage", "pro_pick": 40, "pro_win": 22, "pro_ban": 9}]`,
	})
	defer srv.Close()

	stats, err := New(srv.URL, "").HeroStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "Anti-Mage", stats[0].Name)
	assert.InDelta(t, 0.55, stats[0].WinRate(), 1e-9)
}

func TestTeamMatches_Won(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/teams/5/matches": `[{"match_id": 1, "radiant": true, "radiant_win": true}, {"match_id": 2, "radiant": false, "radiant_win": true}]`,
	})
	defer srv.Close()

	rows, err := New(srv.URL, "").TeamMatches(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Won())
	assert.False(t, rows[1].Won())
}

func TestDecodeMatches(t *testing.T) {
	one, err := DecodeMatches([]byte(matchBody))
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "PGL Wallachia", one[0].LeagueName)

	many, err := DecodeMatches([]byte("\n[" + matchBody + `, {"match_id": 0}]`))
	require.NoError(t, err)
	assert.Len(t, many, 1, "records without an ID are skipped")

	_, err = DecodeMatches([]byte(`{"match_id": "x"}`))
	assert.Error(t, err)
}
