// Package betting turns bookmaker prices into probabilities and finds
// selections priced above their estimated chance.
package betting

import (
	"errors"
	"fmt"
)

var ErrInvalidOdds = errors.New("decimal odds must be greater than 1")

// ImpliedProbability is 1/odds, or 0 for odds that cannot be a price.
func ImpliedProbability(odds float64) float64 {
	if odds <= 1 {
		return 0
	}
	return 1 / odds
}

// Overround is the bookmaker margin: the sum of implied probabilities minus one.
func Overround(odds []float64) (float64, error) {
	sum := 0.0
	for i, o := range odds {
		if o <= 1 {
			return 0, fmt.Errorf("selection %d: %w", i, ErrInvalidOdds)
		}
		sum += 1 / o
	}
	return sum - 1, nil
}

// FairProbabilities removes the margin proportionally so the result sums to one.
func FairProbabilities(odds []float64) ([]float64, error) {
	if len(odds) < 2 {
		return nil, fmt.Errorf("need at least 2 selections, got %d", len(odds))
	}
	margin, err := Overround(odds)
	if err != nil {
		return nil, err
	}
	total := 1 + margin
	out := make([]float64, len(odds))
	for i, o := range odds {
		out[i] = (1 / o) / total
	}
	return out, nil
}
