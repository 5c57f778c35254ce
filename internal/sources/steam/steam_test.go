package steam

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "k" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(body))
	}))
}

func TestMatchDetails(t *testing.T) {
	srv := serve(t, `{"result": {
		"match_id": 5, "radiant_win": true, "duration": 1980, "start_time": 1700000000,
		"radiant_name": "Tundra", "dire_name": "Liquid", "radiant_score": 30, "dire_score": 12,
		"players": [
			{"account_id": 4294967295, "player_slot": 0, "hero_id": 14, "kills": 9},
			{"account_id": 77, "player_slot": 132, "team_number": 1, "hero_id": 2, "kills": 3}
		],
		"picks_bans": [{"is_pick": false, "hero_id": 23, "team": 1, "order": 0}]
	}}`)
	defer srv.Close()

	m, err := New(srv.URL, "k").MatchDetails(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Tundra", m.Radiant.Name)
	assert.Equal(t, 42, m.TotalKills())
	require.Len(t, m.Players, 2)
	assert.Zero(t, m.Players[0].AccountID)
	assert.True(t, m.Players[0].IsRadiant)
	assert.False(t, m.Players[1].IsRadiant)
	require.Len(t, m.PicksBans, 1)
	assert.Equal(t, 23, m.PicksBans[0].HeroID)
}

func TestMatchDetails_ResultError(t *testing.T) {
	srv := serve(t, `{"result": {"error": "Practice matches are not available via GetMatchDetails"}}`)
	defer srv.Close()

	_, err := New(srv.URL, "k").MatchDetails(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResult))
	assert.Contains(t, err.Error(), "Practice matches")
}

func TestMatchHistory_StatusError(t *testing.T) {
	srv := serve(t, `{"result": {"status": 15, "statusDetail": "Cannot get match history for a user that hasn't allowed it"}}`)
	defer srv.Close()

	_, err := New(srv.URL, "k").MatchHistory(context.Background(), 0, 10)
	assert.True(t, errors.Is(err, ErrResult))
}

func TestMatchHistory(t *testing.T) {
	srv := serve(t, `{"result": {"status": 1, "matches": [{"match_id": 11, "start_time": 1}, {"match_id": 10}]}}`)
	defer srv.Close()

	rows, err := New(srv.URL, "k").MatchHistory(context.Background(), 16632, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(11), rows[0].MatchID)
}

func TestLiveLeagueGames(t *testing.T) {
	srv := serve(t, `{"result": {"games": [{"match_id": 3, "radiant_team": {"team_name": "BB"}, "scoreboard": {"duration": 600.5, "radiant": {"score": 4}}}]}}`)
	defer srv.Close()

	games, err := New(srv.URL, "k").LiveLeagueGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "BB", games[0].RadiantTeam.TeamName)
	assert.Equal(t, 4, games[0].Scoreboard.Radiant.Score)
}

func TestHeroes(t *testing.T) {
	srv := serve(t, `{"result": {"heroes": [{"id": 1, "name": "npc_dota_hero_antimage", "localized_name": "Anti-Mage"}]}}`)
	defer srv.Close()

	heroes, err := New(srv.URL, "k").Heroes(context.Background())
	require.NoError(t, err)
	require.Len(t, heroes, 1)
	assert.Equal(t, "Anti-Mage", heroes[0].LocalizedName)
}
