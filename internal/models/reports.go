package models

// WinRateRow is one line of a grouped win-rate table.
type WinRateRow struct {
	Key     string  `json:"key" csv:"key"`
	Games   int     `json:"games" csv:"games"`
	Wins    int     `json:"wins" csv:"wins"`
	Losses  int     `json:"losses" csv:"losses"`
	WinRate float64 `json:"win_rate" csv:"win_rate"`
}

// HeroMatchup is a hero's record against one opponent hero.
type HeroMatchup struct {
	HeroID     int     `json:"hero_id" csv:"hero_id"`
	OpponentID int     `json:"opponent_id" csv:"opponent_id"`
	Opponent   string  `json:"opponent" csv:"opponent"`
	Games      int     `json:"games" csv:"games"`
	Wins       int     `json:"wins" csv:"wins"`
	WinRate    float64 `json:"win_rate" csv:"win_rate"`
}

// CorrelationRow is the Pearson correlation of a metric with winning.
type CorrelationRow struct {
	Metric      string  `json:"metric" csv:"metric"`
	Correlation float64 `json:"correlation" csv:"correlation"`
	Samples     int     `json:"samples" csv:"samples"`
}

// Summary holds descriptive statistics of a numeric series.
type Summary struct {
	Count  int     `json:"count" csv:"count"`
	Mean   float64 `json:"mean" csv:"mean"`
	Median float64 `json:"median" csv:"median"`
	StdDev float64 `json:"std_dev" csv:"std_dev"`
	Min    float64 `json:"min" csv:"min"`
	Max    float64 `json:"max" csv:"max"`
	P25    float64 `json:"p25" csv:"p25"`
	P75    float64 `json:"p75" csv:"p75"`
}

// TeamDurationRow describes how long a team's games last.
type TeamDurationRow struct {
	Team           string  `json:"team" csv:"team"`
	Games          int     `json:"games" csv:"games"`
	AvgMinutes     float64 `json:"avg_minutes" csv:"avg_minutes"`
	AvgWinMinutes  float64 `json:"avg_win_minutes" csv:"avg_win_minutes"`
	AvgLossMinutes float64 `json:"avg_loss_minutes" csv:"avg_loss_minutes"`
}
