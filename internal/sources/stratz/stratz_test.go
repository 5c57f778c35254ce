package stratz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oraculo/stats-api/internal/sources/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphqlServer(t *testing.T, respond func(req gqlRequest) string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graphql" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(respond(req)))
	}))
}

func TestMatch(t *testing.T) {
	var gotID any
	srv := graphqlServer(t, func(req gqlRequest) string {
		gotID = req.Variables["id"]
		return `{"data": {"match": {
			"id": 8, "didRadiantWin": false, "durationSeconds": 2100, "startDateTime": 1700000000,
			"radiantKills": [1, 2, 3], "direKills": [4, 5],
			"radiantTeam": {"id": 1, "name": "Falcons", "tag": "FLC"},
			"direTeam": {"id": 2, "name": "BetBoom", "tag": "BB"},
			"league": {"displayName": "Riyadh Masters"},
			"players": [{"steamAccountId": 1, "heroId": 5, "isRadiant": true, "goldPerMinute": 500, "steamAccount": {"name": "ATF"}}],
			"pickBans": [{"isPick": true, "heroId": 5, "order": 8, "isRadiant": true}, {"isPick": false, "heroId": 6, "order": 0, "isRadiant": false}]
		}}}`
	})
	defer srv.Close()

	m, err := New(srv.URL, "tok").Match(context.Background(), 8)
	require.NoError(t, err)
	assert.EqualValues(t, 8, gotID)
	assert.Equal(t, 6, m.RadiantScore)
	assert.Equal(t, 9, m.DireScore)
	assert.Equal(t, "Riyadh Masters", m.LeagueName)
	assert.Equal(t, "BB", m.Dire.Tag)
	require.Len(t, m.Players, 1)
	assert.Equal(t, "ATF", m.Players[0].Name)
	assert.Equal(t, 500, m.Players[0].GPM)
	require.Len(t, m.PicksBans, 2)
	assert.Equal(t, 0, m.PicksBans[0].Team)
	assert.Equal(t, 1, m.PicksBans[1].Team)
}

func TestMatch_GraphQLErrors(t *testing.T) {
	srv := graphqlServer(t, func(req gqlRequest) string {
		return `{"data": null, "errors": [{"message": "match not parsed"}, {"message": "rate limited"}]}`
	})
	defer srv.Close()

	_, err := New(srv.URL, "tok").Match(context.Background(), 1)
	var gqlErr *GraphQLError
	require.True(t, errors.As(err, &gqlErr))
	assert.Equal(t, []string{"match not parsed", "rate limited"}, gqlErr.Messages)
}

func TestMatch_NullMatch(t *testing.T) {
	srv := graphqlServer(t, func(req gqlRequest) string {
		return `{"data": {"match": null}}`
	})
	defer srv.Close()

	_, err := New(srv.URL, "tok").Match(context.Background(), 1)
	assert.True(t, errors.Is(err, httpclient.ErrNotFound))
}

func TestTeamSummary(t *testing.T) {
	srv := graphqlServer(t, func(req gqlRequest) string {
		return `{"data": {"team": {"id": 2163, "name": "Team Liquid", "tag": "Liquid", "winCount": 900, "lossCount": 600}}}`
	})
	defer srv.Close()

	team, err := New(srv.URL, "tok").TeamSummary(context.Background(), 2163)
	require.NoError(t, err)
	assert.Equal(t, "Team Liquid", team.Name)
	assert.Equal(t, 900, team.Wins)
	assert.Equal(t, 600, team.Losses)
}
