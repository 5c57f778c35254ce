package models

// Hero is a static hero definition.
type Hero struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	LocalizedName string   `json:"localized_name"`
	PrimaryAttr   string   `json:"primary_attr"`
	AttackType    string   `json:"attack_type"`
	Roles         []string `json:"roles"`
}

// HeroStats are professional pick/win/ban counters for a hero.
type HeroStats struct {
	HeroID  int    `json:"hero_id"`
	Name    string `json:"localized_name"`
	ProPick int    `json:"pro_pick"`
	ProWin  int    `json:"pro_win"`
	ProBan  int    `json:"pro_ban"`
}

// WinRate returns ProWin/ProPick in [0,1], or 0.5 when the hero was never picked.
func (h HeroStats) WinRate() float64 {
	if h.ProPick <= 0 {
		return 0.5
	}
	return float64(h.ProWin) / float64(h.ProPick)
}

// Team is a professional team record.
type Team struct {
	TeamID int64   `json:"team_id"`
	Name   string  `json:"name"`
	Tag    string  `json:"tag"`
	Rating float64 `json:"rating"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
}
