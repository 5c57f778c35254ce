package betting

import (
	"math"
	"sort"

	"github.com/oraculo/stats-api/internal/models"
)

// PredictionEstimator prices markets from a single-game forecast.
//
// The forecast's radiant probability is treated as a per-map probability;
// series markets are derived assuming independent maps. Totals use a normal
// approximation around KillsMean and the forecast duration.
type PredictionEstimator struct {
	Prediction     *models.MatchPrediction
	BestOf         int     // 1 when unknown
	KillsMean      float64 // 0 disables kill totals
	KillsStdDev    float64 // 10
	DurationStdDev float64 // 8 minutes
}

func (e PredictionEstimator) Estimate(m models.Market, s models.Selection) (float64, bool) {
	if e.Prediction == nil {
		return 0, false
	}
	p := e.Prediction.RadiantWinProb
	if s.Side == models.SideDire {
		p = 1 - p
	}
	bestOf := e.BestOf
	if bestOf < 1 {
		bestOf = 1
	}

	switch m.Type {
	case models.MarketMapWinner:
		if s.Side == "" {
			return 0, false
		}
		return p, true

	case models.MarketMatchWinner:
		if s.Side == "" {
			return 0, false
		}
		return SeriesWinProbability(p, bestOf), true

	case models.MarketHandicap:
		if s.Side == "" || bestOf < 2 {
			return 0, false
		}
		line := s.Line
		if line == 0 {
			line = m.Line
		}
		cover := 0.0
		for _, sc := range SeriesScores(p, bestOf) {
			if float64(sc.Wins)+line > float64(sc.Losses) {
				cover += sc.Prob
			}
		}
		return cover, true

	case models.MarketTotalKills:
		if e.KillsMean <= 0 || s.Over == nil || lineOf(m, s) <= 0 {
			return 0, false
		}
		sd := e.KillsStdDev
		if sd <= 0 {
			sd = 10
		}
		return overUnder(e.KillsMean, sd, lineOf(m, s), *s.Over), true

	case models.MarketDuration:
		mean := e.Prediction.ExpectedDurationMin
		if mean <= 0 || s.Over == nil || lineOf(m, s) <= 0 {
			return 0, false
		}
		sd := e.DurationStdDev
		if sd <= 0 {
			sd = 8
		}
		return overUnder(mean, sd, lineOf(m, s), *s.Over), true
	}
	return 0, false
}

func lineOf(m models.Market, s models.Selection) float64 {
	if s.Line != 0 {
		return s.Line
	}
	return m.Line
}

func overUnder(mean, sd, line float64, over bool) float64 {
	pOver := 1 - normalCDF((line-mean)/sd)
	if over {
		return pOver
	}
	return 1 - pOver
}

func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// SeriesScore is one final score of a series and its probability.
type SeriesScore struct {
	Wins   int
	Losses int
	Prob   float64
}

// SeriesScores enumerates final series scores for a team that wins each map
// with probability p. Odd series stop at a majority; even series play out.
func SeriesScores(p float64, bestOf int) []SeriesScore {
	if bestOf < 1 {
		bestOf = 1
	}
	target := bestOf/2 + 1
	even := bestOf%2 == 0
	probs := map[[2]int]float64{}
	var walk func(w, l int, prob float64)
	walk = func(w, l int, prob float64) {
		if w+l == bestOf || (!even && (w == target || l == target)) {
			probs[[2]int{w, l}] += prob
			return
		}
		walk(w+1, l, prob*p)
		walk(w, l+1, prob*(1-p))
	}
	walk(0, 0, 1)

	out := make([]SeriesScore, 0, len(probs))
	for k, v := range probs {
		out = append(out, SeriesScore{Wins: k[0], Losses: k[1], Prob: v})
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Wins-out[i].Losses, out[j].Wins-out[j].Losses
		if di != dj {
			return di > dj
		}
		return out[i].Wins > out[j].Wins
	})
	return out
}

// SeriesWinProbability is the chance of winning the series outright. In even
// series a draw is not a win.
func SeriesWinProbability(p float64, bestOf int) float64 {
	total := 0.0
	for _, s := range SeriesScores(p, bestOf) {
		if s.Wins > s.Losses {
			total += s.Prob
		}
	}
	return total
}
