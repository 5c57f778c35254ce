// Package predict holds the match outcome models: team Elo ratings, a
// logistic regression over draft features and a linear duration model.
package predict

import (
	"github.com/oraculo/stats-api/internal/knowledge"
	"github.com/oraculo/stats-api/internal/models"
)

// FeatureNames labels the entries of Features.Vector, radiant minus dire.
var FeatureNames = []string{
	"hero_win_rate",
	"synergy",
	"counter",
	"strength",
	"agility",
	"intelligence",
	"early_power",
	"late_power",
	"elo",
}

// Features compare the radiant draft against the dire one.
type Features struct {
	HeroWinRateDiff float64 `json:"hero_win_rate_diff"`
	SynergyDiff     float64 `json:"synergy_diff"`
	CounterDiff     float64 `json:"counter_diff"`
	StrDiff         float64 `json:"str_diff"`
	AgiDiff         float64 `json:"agi_diff"`
	IntDiff         float64 `json:"int_diff"`
	EarlyDiff       float64 `json:"early_diff"`
	LateDiff        float64 `json:"late_diff"`
	EloDiff         float64 `json:"elo_diff"` // rating points / 400
}

func (f Features) Vector() []float64 {
	return []float64{
		f.HeroWinRateDiff,
		f.SynergyDiff,
		f.CounterDiff,
		f.StrDiff,
		f.AgiDiff,
		f.IntDiff,
		f.EarlyDiff,
		f.LateDiff,
		f.EloDiff,
	}
}

// Sample is one labelled training row.
type Sample struct {
	X           []float64
	RadiantWin  bool
	DurationMin float64
}

func (s Sample) label() float64 {
	if s.RadiantWin {
		return 1
	}
	return 0
}

// FeatureBuilder turns drafts into Features. HeroWinRates are keyed by hero
// id; heroes without an entry count as 0.5. Elo may be nil.
type FeatureBuilder struct {
	KB           *knowledge.Base
	HeroWinRates map[int]float64
	Elo          *Elo
}

// HeroWinRatesFrom indexes OpenDota pro stats by hero id.
func HeroWinRatesFrom(stats []models.HeroStats) map[int]float64 {
	out := make(map[int]float64, len(stats))
	for _, s := range stats {
		out[s.HeroID] = s.WinRate()
	}
	return out
}

func (fb *FeatureBuilder) meanWinRate(heroes []*knowledge.Hero) float64 {
	if len(heroes) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, h := range heroes {
		if wr, ok := fb.HeroWinRates[h.ID]; ok {
			sum += wr
		} else {
			sum += 0.5
		}
	}
	return sum / float64(len(heroes))
}

// Build computes features for two named drafts. Unknown hero names are
// returned so callers can surface them.
func (fb *FeatureBuilder) Build(radiantTeam, direTeam string, radiant, dire []string) (Features, []string) {
	var rh, dh []*knowledge.Hero
	var unknown []string
	if fb.KB != nil {
		var u []string
		rh, u = fb.KB.Resolve(radiant)
		unknown = append(unknown, u...)
		dh, u = fb.KB.Resolve(dire)
		unknown = append(unknown, u...)
	}
	f := fb.fromHeroes(rh, dh)
	f.EloDiff = fb.eloDiff(radiantTeam, direTeam)
	return f, unknown
}

// FromMatch computes features for a finished match using its hero ids.
func (fb *FeatureBuilder) FromMatch(m models.Match) Features {
	lookup := func(ids []int) []*knowledge.Hero {
		var out []*knowledge.Hero
		if fb.KB == nil {
			return out
		}
		for _, id := range ids {
			if h, ok := fb.KB.HeroByID(id); ok {
				out = append(out, h)
			}
		}
		return out
	}
	f := fb.fromHeroes(lookup(m.HeroesFor(models.SideRadiant)), lookup(m.HeroesFor(models.SideDire)))
	f.EloDiff = fb.eloDiff(m.Radiant.Name, m.Dire.Name)
	return f
}

func (fb *FeatureBuilder) fromHeroes(rh, dh []*knowledge.Hero) Features {
	var f Features
	f.HeroWinRateDiff = fb.meanWinRate(rh) - fb.meanWinRate(dh)
	if fb.KB == nil {
		return f
	}
	rs, _ := fb.KB.DraftSynergy(rh)
	ds, _ := fb.KB.DraftSynergy(dh)
	f.SynergyDiff = rs - ds
	f.CounterDiff = fb.KB.CounterScore(rh, dh)

	ra, da := knowledge.AttributeCounts(rh), knowledge.AttributeCounts(dh)
	f.StrDiff = float64(ra[knowledge.AttrStrength] - da[knowledge.AttrStrength])
	f.AgiDiff = float64(ra[knowledge.AttrAgility] - da[knowledge.AttrAgility])
	f.IntDiff = float64(ra[knowledge.AttrIntelligence] - da[knowledge.AttrIntelligence])

	rp, dp := knowledge.PowerCurve(rh), knowledge.PowerCurve(dh)
	f.EarlyDiff = rp.Early - dp.Early
	f.LateDiff = rp.Late - dp.Late
	return f
}

func (fb *FeatureBuilder) eloDiff(a, b string) float64 {
	if fb.Elo == nil {
		return 0
	}
	ra, _ := fb.Elo.Rating(a)
	rb, _ := fb.Elo.Rating(b)
	return (ra - rb) / 400
}

// BuildSamples walks matches in start-time order, computing each match's
// features with the ratings as they stood before it and then recording the
// result. fb.Elo is replaced by a fresh rating table when nil.
func BuildSamples(matches []models.Match, fb *FeatureBuilder) []Sample {
	if fb.Elo == nil {
		fb.Elo = NewElo(0, 0)
	}
	out := make([]Sample, 0, len(matches))
	for _, m := range chronological(matches) {
		f := fb.FromMatch(m)
		out = append(out, Sample{X: f.Vector(), RadiantWin: m.RadiantWin, DurationMin: m.DurationMinutes()})
		fb.Elo.Record(m)
	}
	return out
}
