package models

// SideStats compares Radiant and Dire over a period.
type SideStats struct {
	Radiant SideMetrics `json:"radiant"`
	Dire    SideMetrics `json:"dire"`
	Matches uint64      `json:"matches"`
}

type SideMetrics struct {
	Wins           uint64  `json:"wins"`
	Losses         uint64  `json:"losses"`
	WinRate        float64 `json:"win_rate"`
	AvgKills       float64 `json:"avg_kills"`
	AvgDurationMin float64 `json:"avg_duration_min"`
	TopHero        string  `json:"top_hero"`
}

// HeadToHead summarises the series history between two teams.
type HeadToHead struct {
	TeamA          string  `json:"team_a"`
	TeamB          string  `json:"team_b"`
	Matches        int     `json:"matches"`
	WinsA          int     `json:"wins_a"`
	WinsB          int     `json:"wins_b"`
	WinRateA       float64 `json:"win_rate_a"`
	AvgDurationMin float64 `json:"avg_duration_min"`
	AvgTotalKills  float64 `json:"avg_total_kills"`
}
