package analysis

import (
	"fmt"
	"time"

	"github.com/oraculo/stats-api/internal/export"
	"github.com/oraculo/stats-api/internal/models"
)

type ReportOptions struct {
	Title     string
	HeroNames map[int]string
	MinGames  int
	Top       int // rows per ranking table; 0 keeps all
	// Optional head-to-head section
	TeamA, TeamB string
	Now          time.Time
}

func top[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

func winRateTable(rows []models.WinRateRow, label string) *export.Table {
	t := export.NewTable(label, "Games", "Wins", "Losses", "Win rate")
	for _, r := range rows {
		t.AddRow(r.Key, r.Games, r.Wins, r.Losses, export.Percent(r.WinRate))
	}
	return t
}

// BuildReport composes the standard statistics report for a set of matches.
func BuildReport(matches []models.Match, opts ReportOptions) export.Report {
	if opts.Title == "" {
		opts.Title = "Match report"
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	r := export.Report{Title: opts.Title, GeneratedAt: opts.Now.UTC()}

	r.AddSection("Overview", overviewText(matches), nil)
	if len(matches) == 0 {
		return r
	}

	dur := DurationSummary(matches)
	durTable := export.NewTable("Statistic", "Minutes")
	durTable.AddRow("mean", dur.Mean)
	durTable.AddRow("median", dur.Median)
	durTable.AddRow("std dev", dur.StdDev)
	durTable.AddRow("p25", dur.P25)
	durTable.AddRow("p75", dur.P75)
	durTable.AddRow("min", dur.Min)
	durTable.AddRow("max", dur.Max)
	r.AddSection("Duration", fmt.Sprintf("%d matches with a recorded duration.", dur.Count), durTable)

	sides := SideComparison(matches, opts.HeroNames)
	sideTable := export.NewTable("Side", "Wins", "Losses", "Win rate", "Avg kills", "Top hero")
	sideTable.AddRow("radiant", sides.Radiant.Wins, sides.Radiant.Losses, export.Percent(sides.Radiant.WinRate), sides.Radiant.AvgKills, sides.Radiant.TopHero)
	sideTable.AddRow("dire", sides.Dire.Wins, sides.Dire.Losses, export.Percent(sides.Dire.WinRate), sides.Dire.AvgKills, sides.Dire.TopHero)
	r.AddSection("Sides", "", sideTable)

	r.AddSection("Team win rates", "", winRateTable(top(GroupWinRates(TeamOutcomes(matches), opts.MinGames), opts.Top), "Team"))

	if opts.TeamA != "" && opts.TeamB != "" {
		h := HeadToHead(matches, opts.TeamA, opts.TeamB)
		text := fmt.Sprintf("%s %d x %d %s in %d matches.", h.TeamA, h.WinsA, h.WinsB, h.TeamB, h.Matches)
		var t *export.Table
		if h.Matches > 0 {
			t = export.NewTable("Team A win rate", "Avg duration (min)", "Avg total kills")
			t.AddRow(export.Percent(h.WinRateA), h.AvgDurationMin, h.AvgTotalKills)
		}
		r.AddSection("Head to head", text, t)
	}

	heroes := GroupWinRates(HeroOutcomes(matches, opts.HeroNames), opts.MinGames)
	if len(heroes) > 0 {
		r.AddSection("Hero win rates", "", winRateTable(top(heroes, opts.Top), "Hero"))
		r.AddSection("Hero win rates by side", "", winRateTable(top(GroupWinRates(HeroSideOutcomes(matches, opts.HeroNames), opts.MinGames), opts.Top), "Hero"))
	}

	if corr := MetricCorrelations(matches); len(corr) > 0 {
		t := export.NewTable("Metric", "Correlation with win", "Samples")
		for _, c := range corr {
			t.AddRow(c.Metric, fmt.Sprintf("%.3f", c.Correlation), c.Samples)
		}
		r.AddSection("What correlates with winning", "Pearson correlation of per-player metrics with the player's result.", t)
	}

	teamDur := export.NewTable("Team", "Games", "Avg (min)", "Avg win (min)", "Avg loss (min)")
	for _, row := range top(TeamDuration(matches), opts.Top) {
		teamDur.AddRow(row.Team, row.Games, row.AvgMinutes, row.AvgWinMinutes, row.AvgLossMinutes)
	}
	r.AddSection("Game length by team", "", teamDur)

	return r
}

func overviewText(matches []models.Match) string {
	if len(matches) == 0 {
		return "No matches."
	}
	first, last := matches[0].StartTime, matches[0].StartTime
	leagues := map[string]bool{}
	for _, m := range matches {
		if m.StartTime.Before(first) {
			first = m.StartTime
		}
		if m.StartTime.After(last) {
			last = m.StartTime
		}
		if m.LeagueName != "" {
			leagues[m.LeagueName] = true
		}
	}
	return fmt.Sprintf("%d matches from %s to %s across %d leagues.",
		len(matches), first.UTC().Format("2006-01-02"), last.UTC().Format("2006-01-02"), len(leagues))
}
