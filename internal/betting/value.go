package betting

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/oraculo/stats-api/internal/models"
)

var ErrNoQuotes = errors.New("no bookmaker quotes")

// Estimator gives our probability for a selection. ok is false when the
// selection cannot be estimated.
type Estimator interface {
	Estimate(m models.Market, s models.Selection) (p float64, ok bool)
}

type EstimatorFunc func(m models.Market, s models.Selection) (float64, bool)

func (f EstimatorFunc) Estimate(m models.Market, s models.Selection) (float64, bool) {
	return f(m, s)
}

// EdgePercent is the expected return of a unit stake in percent: (p*odds - 1)*100.
func EdgePercent(p, odds float64) float64 {
	return (p*odds - 1) * 100
}

// KellyStake is the Kelly bankroll share scaled by fraction and clamped to [0, fraction].
func KellyStake(p, odds, fraction float64) float64 {
	if odds <= 1 || fraction <= 0 {
		return 0
	}
	full := (p*odds - 1) / (odds - 1)
	return math.Min(math.Max(full*fraction, 0), fraction)
}

// FindValueBets returns every selection whose edge reaches minEdgePercent,
// best edge first.
func FindValueBets(markets []models.Market, est Estimator, minEdgePercent, kellyFraction float64) []models.ValueBet {
	var out []models.ValueBet
	for _, m := range markets {
		for _, s := range m.Selections {
			if s.Odds <= 1 {
				continue
			}
			p, ok := est.Estimate(m, s)
			if !ok || p <= 0 || p >= 1 {
				continue
			}
			edge := EdgePercent(p, s.Odds)
			if edge <= 0 || edge < minEdgePercent {
				continue
			}
			line := s.Line
			if line == 0 {
				line = m.Line
			}
			out = append(out, models.ValueBet{
				Market:        m.Type,
				Label:         m.Label,
				Selection:     s.Name,
				Line:          line,
				Bookmaker:     m.Bookmaker,
				Odds:          s.Odds,
				ImpliedProb:   ImpliedProbability(s.Odds),
				EstimatedProb: p,
				EdgePercent:   edge,
				KellyStake:    KellyStake(p, s.Odds, kellyFraction),
			})
		}
	}
	sortByEdge(out)
	return out
}

func sortByEdge(bets []models.ValueBet) {
	sort.SliceStable(bets, func(i, j int) bool { return bets[i].EdgePercent > bets[j].EdgePercent })
}

// Quote is one bookmaker's prices for the same outcomes, in the same order.
type Quote struct {
	Bookmaker string
	Odds      []float64
}

// ConsensusProbabilities averages each bookmaker's margin-free probabilities,
// weighting by bookmaker. Missing weights count as 1; zero weights exclude the book.
func ConsensusProbabilities(quotes []Quote, weights map[string]float64) ([]float64, error) {
	if len(quotes) == 0 {
		return nil, ErrNoQuotes
	}
	n := len(quotes[0].Odds)
	sum := make([]float64, n)
	totalWeight := 0.0
	for _, q := range quotes {
		if len(q.Odds) != n {
			return nil, fmt.Errorf("%s: %d prices, want %d", q.Bookmaker, len(q.Odds), n)
		}
		w, ok := weights[q.Bookmaker]
		if !ok {
			w = 1
		}
		if w <= 0 {
			continue
		}
		fair, err := FairProbabilities(q.Odds)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", q.Bookmaker, err)
		}
		for i, p := range fair {
			sum[i] += w * p
		}
		totalWeight += w
	}
	if totalWeight == 0 {
		return nil, ErrNoQuotes
	}
	for i := range sum {
		sum[i] /= totalWeight
	}
	return sum, nil
}

// ConsensusValueBets prices every bookmaker's quote against the weighted
// consensus and keeps those at or above minValuePercent.
func ConsensusValueBets(market models.Market, outcomes []string, quotes []Quote, weights map[string]float64, minValuePercent float64) ([]models.ValueBet, error) {
	probs, err := ConsensusProbabilities(quotes, weights)
	if err != nil {
		return nil, err
	}
	if len(outcomes) != len(probs) {
		return nil, fmt.Errorf("%d outcome names for %d prices", len(outcomes), len(probs))
	}
	var out []models.ValueBet
	for _, q := range quotes {
		for i, odds := range q.Odds {
			edge := EdgePercent(probs[i], odds)
			if edge <= 0 || edge < minValuePercent {
				continue
			}
			out = append(out, models.ValueBet{
				Market:        market.Type,
				Label:         market.Label,
				Selection:     outcomes[i],
				Line:          market.Line,
				Bookmaker:     q.Bookmaker,
				Odds:          odds,
				ImpliedProb:   ImpliedProbability(odds),
				EstimatedProb: probs[i],
				EdgePercent:   edge,
			})
		}
	}
	sortByEdge(out)
	return out, nil
}
