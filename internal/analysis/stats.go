package analysis

import (
	"errors"
	"math"
	"sort"

	"github.com/oraculo/stats-api/internal/models"
)

var (
	ErrLengthMismatch = errors.New("series have different lengths")
	ErrTooFewPoints   = errors.New("at least two points are required")
	ErrZeroVariance   = errors.New("series has zero variance")
)

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func Median(xs []float64) float64 {
	return Percentile(xs, 50)
}

// StdDev is the sample standard deviation (n-1); 0 for fewer than two values.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	ss := 0.0
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// Percentile uses linear interpolation between closest ranks. p is in [0,100].
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func Summarize(xs []float64) models.Summary {
	if len(xs) == 0 {
		return models.Summary{}
	}
	return models.Summary{
		Count:  len(xs),
		Mean:   Mean(xs),
		Median: Median(xs),
		StdDev: StdDev(xs),
		Min:    Percentile(xs, 0),
		Max:    Percentile(xs, 100),
		P25:    Percentile(xs, 25),
		P75:    Percentile(xs, 75),
	}
}

// Pearson returns the correlation coefficient of x and y.
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, ErrLengthMismatch
	}
	if len(x) < 2 {
		return 0, ErrTooFewPoints
	}
	mx, my := Mean(x), Mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, ErrZeroVariance
	}
	return sxy / math.Sqrt(sxx*syy), nil
}

type metric struct {
	name string
	get  func(models.PlayerMatch) float64
}

var playerMetrics = []metric{
	{"gold_per_min", func(p models.PlayerMatch) float64 { return float64(p.GPM) }},
	{"xp_per_min", func(p models.PlayerMatch) float64 { return float64(p.XPM) }},
	{"kills", func(p models.PlayerMatch) float64 { return float64(p.Kills) }},
	{"deaths", func(p models.PlayerMatch) float64 { return float64(p.Deaths) }},
	{"assists", func(p models.PlayerMatch) float64 { return float64(p.Assists) }},
	{"last_hits", func(p models.PlayerMatch) float64 { return float64(p.LastHits) }},
	{"hero_damage", func(p models.PlayerMatch) float64 { return float64(p.HeroDamage) }},
	{"net_worth", func(p models.PlayerMatch) float64 { return float64(p.NetWorth) }},
}

// MetricCorrelations correlates each player metric with winning (1/0).
// Metrics without variance are left out. Rows are ordered by |r| descending.
func MetricCorrelations(matches []models.Match) []models.CorrelationRow {
	var wins []float64
	values := make([][]float64, len(playerMetrics))
	for _, m := range matches {
		for _, p := range m.Players {
			w := 0.0
			if p.Win(m.RadiantWin) {
				w = 1
			}
			wins = append(wins, w)
			for i, mt := range playerMetrics {
				values[i] = append(values[i], mt.get(p))
			}
		}
	}

	var rows []models.CorrelationRow
	for i, mt := range playerMetrics {
		r, err := Pearson(values[i], wins)
		if err != nil {
			continue
		}
		rows = append(rows, models.CorrelationRow{Metric: mt.name, Correlation: r, Samples: len(wins)})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return math.Abs(rows[i].Correlation) > math.Abs(rows[j].Correlation)
	})
	return rows
}

// DurationSummary describes match length in minutes.
func DurationSummary(matches []models.Match) models.Summary {
	xs := make([]float64, 0, len(matches))
	for _, m := range matches {
		if m.DurationSec > 0 {
			xs = append(xs, m.DurationMinutes())
		}
	}
	return Summarize(xs)
}

// TeamDuration averages game length per team, split by result. Rows are
// ordered by games descending, then team.
func TeamDuration(matches []models.Match) []models.TeamDurationRow {
	type acc struct {
		all, win, loss []float64
	}
	byTeam := map[string]*acc{}
	for _, m := range matches {
		if m.DurationSec <= 0 {
			continue
		}
		for _, s := range []models.Side{models.SideRadiant, models.SideDire} {
			name := m.TeamFor(s).Name
			if name == "" {
				continue
			}
			a, ok := byTeam[name]
			if !ok {
				a = &acc{}
				byTeam[name] = a
			}
			d := m.DurationMinutes()
			a.all = append(a.all, d)
			if m.Winner() == s {
				a.win = append(a.win, d)
			} else {
				a.loss = append(a.loss, d)
			}
		}
	}

	rows := make([]models.TeamDurationRow, 0, len(byTeam))
	for name, a := range byTeam {
		rows = append(rows, models.TeamDurationRow{
			Team:           name,
			Games:          len(a.all),
			AvgMinutes:     Mean(a.all),
			AvgWinMinutes:  Mean(a.win),
			AvgLossMinutes: Mean(a.loss),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Games != rows[j].Games {
			return rows[i].Games > rows[j].Games
		}
		return rows[i].Team < rows[j].Team
	})
	return rows
}

// SideComparison aggregates radiant and dire results from match records.
func SideComparison(matches []models.Match, names map[int]string) models.SideStats {
	var st models.SideStats
	var radKills, direKills, minutes float64
	heroWins := map[models.Side]map[int]int{models.SideRadiant: {}, models.SideDire: {}}
	for _, m := range matches {
		st.Matches++
		if m.RadiantWin {
			st.Radiant.Wins++
			st.Dire.Losses++
		} else {
			st.Dire.Wins++
			st.Radiant.Losses++
		}
		radKills += float64(m.RadiantScore)
		direKills += float64(m.DireScore)
		minutes += m.DurationMinutes()
		for _, p := range m.Players {
			if p.HeroID > 0 && p.Win(m.RadiantWin) {
				heroWins[p.Side()][p.HeroID]++
			}
		}
	}
	if st.Matches == 0 {
		return st
	}
	n := float64(st.Matches)
	st.Radiant.WinRate = float64(st.Radiant.Wins) / n
	st.Dire.WinRate = float64(st.Dire.Wins) / n
	st.Radiant.AvgKills = radKills / n
	st.Dire.AvgKills = direKills / n
	st.Radiant.AvgDurationMin = minutes / n
	st.Dire.AvgDurationMin = minutes / n
	st.Radiant.TopHero = topHero(heroWins[models.SideRadiant], names)
	st.Dire.TopHero = topHero(heroWins[models.SideDire], names)
	return st
}

func topHero(wins map[int]int, names map[int]string) string {
	best, bestWins := 0, 0
	for id, w := range wins {
		if w > bestWins || (w == bestWins && id < best) {
			best, bestWins = id, w
		}
	}
	if bestWins == 0 {
		return ""
	}
	return HeroName(names, best)
}
