package models

import "time"

// MatchPrediction forecasts the outcome of an upcoming match
type MatchPrediction struct {
	RadiantWinProb      float64   `json:"radiant_win_prob"`
	DireWinProb         float64   `json:"dire_win_prob"`
	ExpectedWinner      Side      `json:"expected_winner"`
	ExpectedDurationMin float64   `json:"expected_duration_min"`
	Confidence          float64   `json:"confidence"`
	Method              string    `json:"method"` // "elo", "draft", "blend", "prior"
	Factors             []string  `json:"factors"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// ProbabilityFor returns the predicted win probability of a side.
func (p *MatchPrediction) ProbabilityFor(s Side) float64 {
	if s == SideRadiant {
		return p.RadiantWinProb
	}
	return p.DireWinProb
}
