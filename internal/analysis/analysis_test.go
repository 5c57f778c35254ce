package analysis

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraculo/stats-api/internal/export"
	"github.com/oraculo/stats-api/internal/models"
)

var heroNames = map[int]string{1: "Anti-Mage", 2: "Axe", 14: "Pudge"}

func player(hero int, radiant bool, gpm int) models.PlayerMatch {
	return models.PlayerMatch{HeroID: hero, IsRadiant: radiant, GPM: gpm}
}

func fixtures() []models.Match {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return []models.Match{
		{
			MatchID: 1, StartTime: base, DurationSec: 1800, RadiantWin: true, LeagueName: "PGL",
			Radiant: models.TeamRef{Name: "Tundra"}, Dire: models.TeamRef{Name: "OG"},
			RadiantScore: 30, DireScore: 10,
			Players: []models.PlayerMatch{player(1, true, 700), player(14, false, 300)},
		},
		{
			MatchID: 2, StartTime: base.Add(24 * time.Hour), DurationSec: 2400, RadiantWin: false, LeagueName: "PGL",
			Radiant: models.TeamRef{Name: "OG"}, Dire: models.TeamRef{Name: "Tundra"},
			RadiantScore: 12, DireScore: 25,
			Players: []models.PlayerMatch{player(14, true, 350), player(1, false, 650)},
		},
		{
			MatchID: 3, StartTime: base.Add(48 * time.Hour), DurationSec: 3000, RadiantWin: true, LeagueName: "ESL",
			Radiant: models.TeamRef{Name: "OG"}, Dire: models.TeamRef{Name: "Liquid"},
			RadiantScore: 20, DireScore: 22,
			Players: []models.PlayerMatch{player(2, true, 500), player(1, false, 480)},
		},
	}
}

func TestGroupWinRates_OrderAndFilter(t *testing.T) {
	outcomes := []Outcome{
		{"A", true}, {"A", false},
		{"B", true}, {"B", true}, {"B", false}, {"B", false},
		{"C", true},
		{"D", true}, {"D", false},
		{"", true},
	}

	rows := GroupWinRates(outcomes, 2)
	require.Len(t, rows, 3)
	// equal win rate: more games first, then key
	assert.Equal(t, "B", rows[0].Key)
	assert.Equal(t, "A", rows[1].Key)
	assert.Equal(t, "D", rows[2].Key)
	assert.Equal(t, 0.5, rows[0].WinRate)
	assert.Equal(t, 2, rows[0].Wins)
	assert.Equal(t, 2, rows[0].Losses)

	all := GroupWinRates(outcomes, 0)
	assert.Equal(t, "C", all[0].Key)
}

func TestTeamAndSideOutcomes(t *testing.T) {
	matches := fixtures()

	teams := GroupWinRates(TeamOutcomes(matches), 1)
	require.Len(t, teams, 3)
	assert.Equal(t, models.WinRateRow{Key: "Tundra", Games: 2, Wins: 2, Losses: 0, WinRate: 1}, teams[0])
	assert.Equal(t, "OG", teams[1].Key)
	assert.InDelta(t, 1.0/3, teams[1].WinRate, 1e-9)

	sides := GroupWinRates(SideOutcomes(matches), 1)
	assert.Equal(t, "radiant", sides[0].Key)
	assert.Equal(t, 2, sides[0].Wins)
}

func TestHeroOutcomes_UnknownHeroName(t *testing.T) {
	m := models.Match{RadiantWin: true, Players: []models.PlayerMatch{player(999, true, 0), player(0, false, 0)}}
	out := HeroOutcomes([]models.Match{m}, heroNames)
	require.Len(t, out, 1)
	assert.Equal(t, Outcome{Key: "hero_999", Win: true}, out[0])
}

func TestHeroSideAndLeagueOutcomes(t *testing.T) {
	matches := fixtures()
	rows := GroupWinRates(HeroSideOutcomes(matches, heroNames), 1)
	keys := map[string]bool{}
	for _, r := range rows {
		keys[r.Key] = true
	}
	assert.True(t, keys["Anti-Mage (radiant)"])
	assert.True(t, keys["Pudge (dire)"])

	league := GroupWinRates(LeagueTeamOutcomes(matches), 1)
	assert.Equal(t, "PGL / Tundra", league[0].Key)
}

func TestHeadToHead(t *testing.T) {
	h := HeadToHead(fixtures(), "tundra", "OG")
	assert.Equal(t, 2, h.Matches)
	assert.Equal(t, 2, h.WinsA)
	assert.Equal(t, 0, h.WinsB)
	assert.Equal(t, 1.0, h.WinRateA)
	assert.Equal(t, 35.0, h.AvgDurationMin)
	assert.Equal(t, 38.5, h.AvgTotalKills)

	none := HeadToHead(fixtures(), "Tundra", "Spirit")
	assert.Zero(t, none.Matches)
	assert.Zero(t, none.WinRateA)
}

func TestStats(t *testing.T) {
	xs := []float64{4, 1, 3, 2}
	assert.Equal(t, 2.5, Mean(xs))
	assert.Equal(t, 2.5, Median(xs))
	assert.InDelta(t, 1.2909944, StdDev(xs), 1e-6)
	assert.Equal(t, 1.75, Percentile(xs, 25))
	assert.Equal(t, 4.0, Percentile(xs, 100))
	assert.Zero(t, StdDev([]float64{5}))
	assert.Zero(t, Mean(nil))

	s := Summarize(xs)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 3.25, s.P75)
}

func TestPearson(t *testing.T) {
	r, err := Pearson([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-12)

	r, err = Pearson([]float64{1, 2, 3}, []float64{3, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, r, 1e-12)

	_, err = Pearson([]float64{1, 2}, []float64{1})
	assert.True(t, errors.Is(err, ErrLengthMismatch))
	_, err = Pearson([]float64{1}, []float64{1})
	assert.True(t, errors.Is(err, ErrTooFewPoints))
	_, err = Pearson([]float64{1, 1, 1}, []float64{1, 2, 3})
	assert.True(t, errors.Is(err, ErrZeroVariance))
}

func TestMetricCorrelations(t *testing.T) {
	rows := MetricCorrelations(fixtures())
	require.NotEmpty(t, rows)
	// only GPM varies in the fixtures; it separates winners perfectly
	assert.Equal(t, "gold_per_min", rows[0].Metric)
	assert.Greater(t, rows[0].Correlation, 0.8)
	assert.Equal(t, 6, rows[0].Samples)
	for _, r := range rows {
		assert.False(t, math.IsNaN(r.Correlation))
	}
}

func TestDurations(t *testing.T) {
	s := DurationSummary(fixtures())
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 40.0, s.Median)

	rows := TeamDuration(fixtures())
	require.Len(t, rows, 3)
	assert.Equal(t, "OG", rows[0].Team)
	assert.Equal(t, 3, rows[0].Games)
	assert.Equal(t, 50.0, rows[0].AvgWinMinutes)
	assert.Equal(t, 35.0, rows[0].AvgLossMinutes)
}

func TestHeroMatchups(t *testing.T) {
	rows := HeroMatchups(fixtures(), heroNames, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, models.HeroMatchup{HeroID: 1, OpponentID: 14, Opponent: "Pudge", Games: 2, Wins: 2, WinRate: 1}, rows[0])
	assert.Equal(t, 14, rows[1].HeroID)
	assert.Zero(t, rows[1].Wins)
}

func TestSideComparison(t *testing.T) {
	st := SideComparison(fixtures(), heroNames)
	assert.Equal(t, uint64(3), st.Matches)
	assert.Equal(t, uint64(2), st.Radiant.Wins)
	assert.Equal(t, uint64(1), st.Dire.Wins)
	assert.Equal(t, "Anti-Mage", st.Radiant.TopHero)
	assert.InDelta(t, 62.0/3, st.Radiant.AvgKills, 1e-9)
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	r := BuildReport(fixtures(), ReportOptions{Title: "PGL", HeroNames: heroNames, MinGames: 1, TeamA: "Tundra", TeamB: "OG", Now: now})

	headings := []string{}
	for _, s := range r.Sections {
		headings = append(headings, s.Heading)
	}
	assert.Equal(t, []string{
		"Overview", "Duration", "Sides", "Team win rates", "Head to head",
		"Hero win rates", "Hero win rates by side", "What correlates with winning", "Game length by team",
	}, headings)
	assert.Contains(t, r.Sections[0].Text, "3 matches from 2024-06-01 to 2024-06-03 across 2 leagues")

	var buf bytes.Buffer
	require.NoError(t, export.WriteMarkdown(&buf, r))
	assert.Contains(t, buf.String(), "| Tundra | 2 | 2 | 0 | 100.0% |")
	assert.Contains(t, buf.String(), "Tundra 2 x 0 OG in 2 matches.")
}

func TestBuildReport_Empty(t *testing.T) {
	r := BuildReport(nil, ReportOptions{})
	require.Len(t, r.Sections, 1)
	assert.Equal(t, "No matches.", r.Sections[0].Text)
	assert.Equal(t, "Match report", r.Title)
}
