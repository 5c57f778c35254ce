package models

// MarketType names a betting market.
type MarketType string

const (
	MarketMatchWinner MarketType = "match_winner"
	MarketMapWinner   MarketType = "map_winner"
	MarketHandicap    MarketType = "handicap"
	MarketTotalKills  MarketType = "total_kills"
	MarketDuration    MarketType = "duration"
)

// Market is one offer from a bookmaker with two or more selections.
type Market struct {
	Type       MarketType  `json:"type" validate:"required,oneof=match_winner map_winner handicap total_kills duration"`
	Label      string      `json:"label,omitempty"`
	MapNumber  int         `json:"map_number,omitempty"`
	Line       float64     `json:"line,omitempty"`
	Bookmaker  string      `json:"bookmaker,omitempty"`
	Selections []Selection `json:"selections" validate:"required,min=2,dive"`
}

// Selection is a priced outcome inside a market. Side is set for team
// outcomes; Over is set for totals. Line overrides the market line for
// handicaps quoted per team (-1.5 / +1.5).
type Selection struct {
	Name string  `json:"name" validate:"required"`
	Side Side    `json:"side,omitempty"`
	Over *bool   `json:"over,omitempty"`
	Line float64 `json:"line,omitempty"`
	Odds float64 `json:"odds" validate:"required,gt=1"`
}

// ValueBet is a selection whose estimated probability beats the implied one.
type ValueBet struct {
	Market        MarketType `json:"market" csv:"market"`
	Label         string     `json:"label,omitempty" csv:"label"`
	Selection     string     `json:"selection" csv:"selection"`
	Line          float64    `json:"line,omitempty" csv:"line"`
	Bookmaker     string     `json:"bookmaker,omitempty" csv:"bookmaker"`
	Odds          float64    `json:"odds" csv:"odds"`
	ImpliedProb   float64    `json:"implied_prob" csv:"implied_prob"`
	EstimatedProb float64    `json:"estimated_prob" csv:"estimated_prob"`
	EdgePercent   float64    `json:"edge_percent" csv:"edge_percent"`
	KellyStake    float64    `json:"kelly_stake" csv:"kelly_stake"`
}
