package betting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraculo/stats-api/internal/models"
)

const slip = `
Team Spirit vs Gaimin Gladiators
Vencedor da partida
Team Spirit 1.85
Gaimin Gladiators 1,95

Mapa 1
Vencedor
Spirit @ 1.70
Gaimin Gladiators @ 2.10
Handicap de mapas
Team Spirit -1.5 2.60
Gaimin Gladiators +1.5 1.45
Total de abates 48.5
Mais de 48.5 1.85
Menos de 48.5 1.90
Duração
Over 38.5 1.80
Under 38.5 1.95
Cashout disponível
`

func TestParseOddsText_Portuguese(t *testing.T) {
	got, err := ParseOddsText(slip)
	require.NoError(t, err)
	assert.Equal(t, "Team Spirit", got.TeamA)
	assert.Equal(t, "Gaimin Gladiators", got.TeamB)
	require.Len(t, got.Markets, 5)

	winner := got.Markets[0]
	assert.Equal(t, models.MarketMatchWinner, winner.Type)
	assert.Equal(t, "Vencedor da partida", winner.Label)
	assert.Equal(t, models.Selection{Name: "Team Spirit", Side: models.SideRadiant, Odds: 1.85}, winner.Selections[0])
	assert.Equal(t, 1.95, winner.Selections[1].Odds)
	assert.Equal(t, models.SideDire, winner.Selections[1].Side)

	m1 := got.Markets[1]
	assert.Equal(t, models.MarketMapWinner, m1.Type)
	assert.Equal(t, 1, m1.MapNumber)
	assert.Equal(t, "Mapa 1 Vencedor", m1.Label)
	assert.Equal(t, models.SideRadiant, m1.Selections[0].Side, "short team name still maps to its side")
	assert.Equal(t, 1.70, m1.Selections[0].Odds)

	hcp := got.Markets[2]
	assert.Equal(t, models.MarketHandicap, hcp.Type)
	assert.Equal(t, models.Selection{Name: "Team Spirit", Side: models.SideRadiant, Line: -1.5, Odds: 2.60}, hcp.Selections[0])
	assert.Equal(t, 1.5, hcp.Selections[1].Line)

	kills := got.Markets[3]
	assert.Equal(t, models.MarketTotalKills, kills.Type)
	assert.Equal(t, 48.5, kills.Line)
	require.NotNil(t, kills.Selections[0].Over)
	assert.True(t, *kills.Selections[0].Over)
	assert.False(t, *kills.Selections[1].Over)
	assert.Equal(t, 48.5, kills.Selections[1].Line)

	dur := got.Markets[4]
	assert.Equal(t, models.MarketDuration, dur.Type)
	assert.Equal(t, 38.5, dur.Selections[0].Line)

	require.Len(t, got.Warnings, 1)
	assert.Contains(t, got.Warnings[0], "line 20 not understood")
}

func TestParseOddsText_LearnsTeamsWithoutHeader(t *testing.T) {
	got, err := ParseOddsText("Match Winner\nOG 2.50\nTeam Liquid 1.55\n")
	require.NoError(t, err)
	assert.Equal(t, "OG", got.TeamA)
	assert.Equal(t, "Team Liquid", got.TeamB)
	assert.Equal(t, models.SideDire, got.Markets[0].Selections[1].Side)
}

func TestParseOddsText_DefaultsToMatchWinner(t *testing.T) {
	got, err := ParseOddsText("OG x Tundra\nOG 2.5\nTundra 1.5")
	require.NoError(t, err)
	require.Len(t, got.Markets, 1)
	assert.Equal(t, models.MarketMatchWinner, got.Markets[0].Type)
	assert.Equal(t, "Tundra", got.TeamB)
}

func TestParseOddsText_Failures(t *testing.T) {
	got, err := ParseOddsText("hello world")
	assert.True(t, errors.Is(err, ErrNoMarkets))
	assert.Len(t, got.Warnings, 1)

	got, err = ParseOddsText("Vencedor\nOG 1.5\nTundra 0.9\n")
	assert.ErrorIs(t, err, ErrNoMarkets)
	assert.Equal(t, []string{
		"line 3: odds 0.90 must be greater than 1",
		`market "Vencedor" dropped: only one price`,
	}, got.Warnings)

	got, err = ParseOddsText("OG vs Tundra\nOver 40.5 1.9\nUnder 40.5 1.9")
	assert.ErrorIs(t, err, ErrNoMarkets)
	assert.Len(t, got.Warnings, 2)
}

func TestParseOddsText_TotalsWithUnits(t *testing.T) {
	got, err := ParseOddsText("OG vs Team Falcons\nDuração do mapa 1\nOver 38.5 min 1.80\nUnder 38.5 min 1.95\n" +
		"Mapa 1 - Total de abates\nMais de 45,5 abates 1.87\nMenos de 45,5 abates 1.87\n")
	require.NoError(t, err)
	require.Len(t, got.Markets, 2)

	dur := got.Markets[0]
	assert.Equal(t, models.MarketDuration, dur.Type)
	assert.Equal(t, 38.5, dur.Selections[0].Line)
	assert.Equal(t, 38.5, dur.Selections[1].Line)
	assert.Equal(t, "Over 38.5 min", dur.Selections[0].Name)

	kills := got.Markets[1]
	assert.Equal(t, models.MarketTotalKills, kills.Type)
	assert.Equal(t, 45.5, kills.Selections[0].Line)
	assert.Equal(t, 45.5, kills.Selections[1].Line)

	pred := &models.MatchPrediction{RadiantWinProb: 0.5, DireWinProb: 0.5, ExpectedDurationMin: 38.5}
	bets := FindValueBets(got.Markets, PredictionEstimator{Prediction: pred, KillsMean: 45.5}, 5, 0.25)
	assert.Empty(t, bets, "lines at the forecast mean carry no edge")
}

func TestProbabilities(t *testing.T) {
	assert.Equal(t, 0.5, ImpliedProbability(2))
	assert.Zero(t, ImpliedProbability(1))

	margin, err := Overround([]float64{1.9, 1.9})
	require.NoError(t, err)
	assert.InDelta(t, 2/1.9-1, margin, 1e-12)

	fair, err := FairProbabilities([]float64{1.9, 1.9})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, fair[0], 1e-12)

	fair, err = FairProbabilities([]float64{1.8, 2.2})
	require.NoError(t, err)
	assert.InDelta(t, 0.55, fair[0], 1e-12)
	assert.InDelta(t, 1, fair[0]+fair[1], 1e-12)

	_, err = FairProbabilities([]float64{1.8, 0.5})
	assert.ErrorIs(t, err, ErrInvalidOdds)
	_, err = FairProbabilities([]float64{1.8})
	assert.Error(t, err)
}

func TestFindValueBets(t *testing.T) {
	markets := []models.Market{
		{Type: models.MarketMatchWinner, Bookmaker: "bet365", Selections: []models.Selection{
			{Name: "Spirit", Side: models.SideRadiant, Odds: 1.85},
			{Name: "GG", Side: models.SideDire, Odds: 1.95},
		}},
		{Type: models.MarketMapWinner, MapNumber: 1, Selections: []models.Selection{
			{Name: "Spirit", Side: models.SideRadiant, Odds: 1.70},
			{Name: "GG", Side: models.SideDire, Odds: 2.10},
		}},
	}
	est := EstimatorFunc(func(m models.Market, s models.Selection) (float64, bool) {
		if s.Side == models.SideRadiant {
			return 0.6, true
		}
		return 0.4, true
	})

	bets := FindValueBets(markets, est, 5, 0.25)
	require.Len(t, bets, 1)
	vb := bets[0]
	assert.Equal(t, "Spirit", vb.Selection)
	assert.Equal(t, "bet365", vb.Bookmaker)
	assert.InDelta(t, 11.0, vb.EdgePercent, 1e-9)
	assert.InDelta(t, 1/1.85, vb.ImpliedProb, 1e-12)
	assert.InDelta(t, 0.25*0.11/0.85, vb.KellyStake, 1e-12)

	all := FindValueBets(markets, est, 0, 0.25)
	require.Len(t, all, 2)
	assert.Equal(t, models.MarketMatchWinner, all[0].Market)
	assert.InDelta(t, 2.0, all[1].EdgePercent, 1e-9)

	none := FindValueBets(markets, EstimatorFunc(func(models.Market, models.Selection) (float64, bool) { return 0, false }), 0, 0.25)
	assert.Empty(t, none)
}

func TestKellyStake(t *testing.T) {
	assert.Zero(t, KellyStake(0.3, 2, 0.25), "negative edge stakes nothing")
	assert.Equal(t, 0.25, KellyStake(1, 3, 0.25))
	assert.Zero(t, KellyStake(0.6, 1, 0.25))
}

func TestConsensusValueBets(t *testing.T) {
	quotes := []Quote{
		{Bookmaker: "A", Odds: []float64{2.0, 2.0}},
		{Bookmaker: "B", Odds: []float64{1.8, 2.2}},
	}
	weights := map[string]float64{"B": 3}

	probs, err := ConsensusProbabilities(quotes, weights)
	require.NoError(t, err)
	assert.InDelta(t, 0.5375, probs[0], 1e-12)
	assert.InDelta(t, 0.4625, probs[1], 1e-12)

	market := models.Market{Type: models.MarketMatchWinner, Label: "Spirit vs GG"}
	bets, err := ConsensusValueBets(market, []string{"Spirit", "GG"}, quotes, weights, 1)
	require.NoError(t, err)
	require.Len(t, bets, 2)
	assert.Equal(t, "A", bets[0].Bookmaker)
	assert.Equal(t, "Spirit", bets[0].Selection)
	assert.InDelta(t, 7.5, bets[0].EdgePercent, 1e-9)
	assert.Equal(t, "B", bets[1].Bookmaker)
	assert.InDelta(t, 1.75, bets[1].EdgePercent, 1e-9)

	_, err = ConsensusProbabilities(nil, nil)
	assert.ErrorIs(t, err, ErrNoQuotes)
	_, err = ConsensusProbabilities(quotes, map[string]float64{"A": 0, "B": 0})
	assert.ErrorIs(t, err, ErrNoQuotes)
	_, err = ConsensusProbabilities([]Quote{{Odds: []float64{2, 2}}, {Odds: []float64{2}}}, nil)
	assert.Error(t, err)
	_, err = ConsensusValueBets(market, []string{"only one"}, quotes, nil, 0)
	assert.Error(t, err)
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name   string
		a, b   int
		line   float64
		result Result
	}{
		{"favourite covers", 2, 0, -1.5, ResultWin},
		{"favourite fails", 2, 1, -1.5, ResultLose},
		{"underdog covers", 1, 2, 1.5, ResultWin},
		{"whole line push", 1, 1, 0, ResultPush},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.result, SettleHandicap(tt.a, tt.b, tt.line))
		})
	}

	assert.Equal(t, ResultWin, SettleTotal(50, 48.5, true))
	assert.Equal(t, ResultLose, SettleTotal(50, 48.5, false))
	assert.Equal(t, ResultPush, SettleTotal(48, 48, true))

	assert.InDelta(t, 18.5, Payout(ResultWin, 10, 1.85), 1e-9)
	assert.Equal(t, 10.0, Payout(ResultPush, 10, 1.85))
	assert.Zero(t, Payout(ResultLose, 10, 1.85))
}

func TestSeries(t *testing.T) {
	assert.InDelta(t, 0.6, SeriesWinProbability(0.6, 1), 1e-12)
	assert.InDelta(t, 0.36, SeriesWinProbability(0.6, 2), 1e-12)
	assert.InDelta(t, 0.648, SeriesWinProbability(0.6, 3), 1e-12)

	scores := SeriesScores(0.6, 3)
	require.Len(t, scores, 4)
	assert.Equal(t, 2, scores[0].Wins)
	assert.Zero(t, scores[0].Losses)
	total := 0.0
	for _, s := range scores {
		total += s.Prob
	}
	assert.InDelta(t, 1, total, 1e-12)
}

func TestPredictionEstimator(t *testing.T) {
	over, under := true, false
	pred := &models.MatchPrediction{RadiantWinProb: 0.6, DireWinProb: 0.4, ExpectedDurationMin: 40}
	est := PredictionEstimator{Prediction: pred, BestOf: 3, KillsMean: 50}

	p, ok := est.Estimate(models.Market{Type: models.MarketMapWinner}, models.Selection{Side: models.SideDire})
	require.True(t, ok)
	assert.InDelta(t, 0.4, p, 1e-12)

	p, _ = est.Estimate(models.Market{Type: models.MarketMatchWinner}, models.Selection{Side: models.SideRadiant})
	assert.InDelta(t, 0.648, p, 1e-12)

	p, _ = est.Estimate(models.Market{Type: models.MarketHandicap}, models.Selection{Side: models.SideRadiant, Line: -1.5})
	assert.InDelta(t, 0.36, p, 1e-12)
	p, _ = est.Estimate(models.Market{Type: models.MarketHandicap, Line: 1.5}, models.Selection{Side: models.SideDire})
	assert.InDelta(t, 0.64, p, 1e-12)

	p, _ = est.Estimate(models.Market{Type: models.MarketTotalKills, Line: 50}, models.Selection{Over: &over})
	assert.InDelta(t, 0.5, p, 1e-12)
	p, _ = est.Estimate(models.Market{Type: models.MarketDuration}, models.Selection{Over: &under, Line: 48})
	assert.InDelta(t, 0.8413447, p, 1e-6)

	_, ok = est.Estimate(models.Market{Type: models.MarketDuration}, models.Selection{Over: &over})
	assert.False(t, ok, "totals without a line are not priced")
	_, ok = est.Estimate(models.Market{Type: models.MarketTotalKills}, models.Selection{Over: &under})
	assert.False(t, ok)

	_, ok = est.Estimate(models.Market{Type: models.MarketMatchWinner}, models.Selection{Name: "Draw"})
	assert.False(t, ok)
	_, ok = PredictionEstimator{Prediction: pred}.Estimate(models.Market{Type: models.MarketHandicap}, models.Selection{Side: models.SideRadiant})
	assert.False(t, ok, "handicap needs a series")
	_, ok = PredictionEstimator{}.Estimate(models.Market{Type: models.MarketMapWinner}, models.Selection{Side: models.SideRadiant})
	assert.False(t, ok)
}
