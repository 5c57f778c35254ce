package pandascore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturesBody = `[{
  "id": 900,
  "name": "Grand Final: TS vs GG",
  "begin_at": "2024-06-09T14:00:00Z",
  "status": "finished",
  "number_of_games": 5,
  "winner_id": 1,
  "opponents": [
    {"opponent": {"id": 1, "name": "Team Spirit", "acronym": "TS"}},
    {"opponent": {"id": 2, "name": "Gaimin Gladiators", "acronym": "GG"}}
  ],
  "league": {"name": "PGL"},
  "tournament": {"name": "Wallachia Playoffs"},
  "results": [{"team_id": 1, "score": 3}, {"team_id": 2, "score": 1}]
}]`

func TestPastMatches(t *testing.T) {
	var gotAuth, gotPage, gotSort string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dota2/matches/past" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		gotPage = r.URL.Query().Get("page")
		gotSort = r.URL.Query().Get("sort")
		w.Write([]byte(fixturesBody))
	}))
	defer srv.Close()

	fixtures, err := New(srv.URL, "tok").PastMatches(context.Background(), 2, 50)
	require.NoError(t, err)
	require.Len(t, fixtures, 1)

	f := fixtures[0]
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "2", gotPage)
	assert.Equal(t, "-begin_at", gotSort)
	assert.Equal(t, 5, f.BestOf)
	assert.Equal(t, "PGL", f.League)
	assert.Equal(t, int64(1), f.WinnerID)
	require.Len(t, f.Teams, 2)
	assert.Equal(t, "GG", f.Teams[1].Acronym)
	assert.Equal(t, 3, f.Score(1))
	assert.Equal(t, 0, f.Score(42))
	require.NotNil(t, f.BeginAt)
	assert.Equal(t, 2024, f.BeginAt.Year())
}

func TestUpcomingMatches_NullBeginAt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "name": "TBD vs TBD", "begin_at": null, "status": "not_started", "winner_id": null, "opponents": []}]`))
	}))
	defer srv.Close()

	fixtures, err := New(srv.URL, "").UpcomingMatches(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Nil(t, fixtures[0].BeginAt)
	assert.Zero(t, fixtures[0].WinnerID)
	assert.Empty(t, fixtures[0].Teams)
}
