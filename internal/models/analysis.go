package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisSource identifies which processing endpoint produced an analysis.
type AnalysisSource string

const (
	SourceText  AnalysisSource = "text"
	SourceImage AnalysisSource = "image"
	SourceForm  AnalysisSource = "form"
	// SourceImport marks records converted from older JSON exports.
	SourceImport AnalysisSource = "import"
)

// Analysis is a processed betting slip: parsed markets, the match
// prediction and any value bets found. It is the unit stored in history.
type Analysis struct {
	ID            uuid.UUID        `json:"id"`
	Source        AnalysisSource   `json:"source"`
	Input         string           `json:"input,omitempty"`
	RadiantTeam   string           `json:"radiant_team"`
	DireTeam      string           `json:"dire_team"`
	RadiantHeroes []string         `json:"radiant_heroes,omitempty"`
	DireHeroes    []string         `json:"dire_heroes,omitempty"`
	Markets       []Market         `json:"markets"`
	Prediction    *MatchPrediction `json:"prediction,omitempty"`
	ValueBets     []ValueBet       `json:"value_bets"`
	Warnings      []string         `json:"warnings,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// BestEdge returns the highest edge among the analysis' value bets, or 0.
func (a *Analysis) BestEdge() float64 {
	best := 0.0
	for _, vb := range a.ValueBets {
		if vb.EdgePercent > best {
			best = vb.EdgePercent
		}
	}
	return best
}

// HistoryStats aggregates stored analyses.
type HistoryStats struct {
	Total          int64            `json:"total"`
	BySource       map[string]int64 `json:"by_source"`
	WithValueBets  int64            `json:"with_value_bets"`
	ValueBetsFound int64            `json:"value_bets_found"`
	AvgBestEdge    float64          `json:"avg_best_edge"`
	LastCreatedAt  *time.Time       `json:"last_created_at,omitempty"`
}
