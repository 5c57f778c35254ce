// Package analysis computes descriptive statistics over in-memory match lists.
// It backs the offline report tool; the API runs the same aggregations in ClickHouse.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oraculo/stats-api/internal/models"
)

// Outcome is one game result attributed to a grouping key.
type Outcome struct {
	Key string
	Win bool
}

// GroupWinRates aggregates outcomes by key and drops keys with fewer than
// minGames games. Rows are ordered by win rate, then games (both descending),
// then key.
func GroupWinRates(outcomes []Outcome, minGames int) []models.WinRateRow {
	idx := map[string]int{}
	var rows []models.WinRateRow
	for _, o := range outcomes {
		if o.Key == "" {
			continue
		}
		i, ok := idx[o.Key]
		if !ok {
			i = len(rows)
			idx[o.Key] = i
			rows = append(rows, models.WinRateRow{Key: o.Key})
		}
		rows[i].Games++
		if o.Win {
			rows[i].Wins++
		} else {
			rows[i].Losses++
		}
	}

	out := rows[:0]
	for _, r := range rows {
		if r.Games < minGames {
			continue
		}
		r.WinRate = float64(r.Wins) / float64(r.Games)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		if out[i].Games != out[j].Games {
			return out[i].Games > out[j].Games
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// TeamOutcomes yields one outcome per named team per match.
func TeamOutcomes(matches []models.Match) []Outcome {
	out := make([]Outcome, 0, len(matches)*2)
	for _, m := range matches {
		for _, s := range []models.Side{models.SideRadiant, models.SideDire} {
			if name := m.TeamFor(s).Name; name != "" {
				out = append(out, Outcome{Key: name, Win: m.Winner() == s})
			}
		}
	}
	return out
}

// SideOutcomes yields "radiant" and "dire" outcomes for every match.
func SideOutcomes(matches []models.Match) []Outcome {
	out := make([]Outcome, 0, len(matches)*2)
	for _, m := range matches {
		out = append(out,
			Outcome{Key: string(models.SideRadiant), Win: m.RadiantWin},
			Outcome{Key: string(models.SideDire), Win: !m.RadiantWin},
		)
	}
	return out
}

// HeroName resolves a hero id; unknown ids render as "hero_<id>".
func HeroName(names map[int]string, id int) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return fmt.Sprintf("hero_%d", id)
}

// HeroOutcomes yields one outcome per picked hero.
func HeroOutcomes(matches []models.Match, names map[int]string) []Outcome {
	var out []Outcome
	for _, m := range matches {
		for _, p := range m.Players {
			if p.HeroID <= 0 {
				continue
			}
			out = append(out, Outcome{Key: HeroName(names, p.HeroID), Win: p.Win(m.RadiantWin)})
		}
	}
	return out
}

// HeroSideOutcomes keys hero outcomes by side, e.g. "Pudge (dire)".
func HeroSideOutcomes(matches []models.Match, names map[int]string) []Outcome {
	var out []Outcome
	for _, m := range matches {
		for _, p := range m.Players {
			if p.HeroID <= 0 {
				continue
			}
			key := fmt.Sprintf("%s (%s)", HeroName(names, p.HeroID), p.Side())
			out = append(out, Outcome{Key: key, Win: p.Win(m.RadiantWin)})
		}
	}
	return out
}

// LeagueTeamOutcomes keys team outcomes by league, e.g. "PGL Wallachia / Tundra".
func LeagueTeamOutcomes(matches []models.Match) []Outcome {
	var out []Outcome
	for _, m := range matches {
		league := m.LeagueName
		if league == "" {
			league = fmt.Sprintf("league_%d", m.LeagueID)
		}
		for _, s := range []models.Side{models.SideRadiant, models.SideDire} {
			if name := m.TeamFor(s).Name; name != "" {
				out = append(out, Outcome{Key: league + " / " + name, Win: m.Winner() == s})
			}
		}
	}
	return out
}

// HeadToHead summarises all matches between two teams. Names compare
// case-insensitively.
func HeadToHead(matches []models.Match, teamA, teamB string) models.HeadToHead {
	h := models.HeadToHead{TeamA: teamA, TeamB: teamB}
	var minutes, kills float64
	for _, m := range matches {
		r, d := m.Radiant.Name, m.Dire.Name
		var aSide models.Side
		switch {
		case strings.EqualFold(r, teamA) && strings.EqualFold(d, teamB):
			aSide = models.SideRadiant
		case strings.EqualFold(d, teamA) && strings.EqualFold(r, teamB):
			aSide = models.SideDire
		default:
			continue
		}
		h.Matches++
		if m.Winner() == aSide {
			h.WinsA++
		} else {
			h.WinsB++
		}
		minutes += m.DurationMinutes()
		kills += float64(m.TotalKills())
	}
	if h.Matches > 0 {
		n := float64(h.Matches)
		h.WinRateA = float64(h.WinsA) / n
		h.AvgDurationMin = minutes / n
		h.AvgTotalKills = kills / n
	}
	return h
}

// HeroMatchups computes each hero's record against every opposing hero it
// met at least minGames times. Rows are ordered by hero, then win rate desc.
func HeroMatchups(matches []models.Match, names map[int]string, minGames int) []models.HeroMatchup {
	type pair struct{ hero, opp int }
	acc := map[pair]*models.HeroMatchup{}
	for _, m := range matches {
		for _, p := range m.Players {
			if p.HeroID <= 0 {
				continue
			}
			for _, q := range m.Players {
				if q.HeroID <= 0 || q.IsRadiant == p.IsRadiant {
					continue
				}
				k := pair{p.HeroID, q.HeroID}
				row, ok := acc[k]
				if !ok {
					row = &models.HeroMatchup{HeroID: p.HeroID, OpponentID: q.HeroID, Opponent: HeroName(names, q.HeroID)}
					acc[k] = row
				}
				row.Games++
				if p.Win(m.RadiantWin) {
					row.Wins++
				}
			}
		}
	}

	out := make([]models.HeroMatchup, 0, len(acc))
	for _, r := range acc {
		if r.Games < minGames {
			continue
		}
		r.WinRate = float64(r.Wins) / float64(r.Games)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HeroID != out[j].HeroID {
			return out[i].HeroID < out[j].HeroID
		}
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		return out[i].OpponentID < out[j].OpponentID
	})
	return out
}
