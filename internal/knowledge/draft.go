package knowledge

import (
	"fmt"
	"sort"
)

// PhaseProfile is the average power of a lineup in each phase.
type PhaseProfile struct {
	Early    float64 `json:"early"`
	Mid      float64 `json:"mid"`
	Late     float64 `json:"late"`
	Dominant string  `json:"dominant"`
}

// DraftProfile describes one side's five heroes.
type DraftProfile struct {
	Heroes       []string       `json:"heroes"`
	Unknown      []string       `json:"unknown,omitempty"`
	Attributes   map[string]int `json:"attributes"`
	Synergy      float64        `json:"synergy"`
	SynergyPairs []string       `json:"synergy_pairs,omitempty"`
	Power        PhaseProfile   `json:"power"`
}

// DraftComparison puts two drafts side by side. CounterScore is positive
// when the radiant heroes counter the dire ones more than the reverse.
type DraftComparison struct {
	Radiant      DraftProfile `json:"radiant"`
	Dire         DraftProfile `json:"dire"`
	SynergyDiff  float64      `json:"synergy_diff"`
	CounterScore float64      `json:"counter_score"`
	Notes        []string     `json:"notes,omitempty"`
}

// Resolve maps names to heroes, returning the names that are unknown.
func (b *Base) Resolve(names []string) ([]*Hero, []string) {
	var heroes []*Hero
	var unknown []string
	seen := map[int]bool{}
	for _, n := range names {
		h, ok := b.Hero(n)
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		if seen[h.ID] {
			continue
		}
		seen[h.ID] = true
		heroes = append(heroes, h)
	}
	return heroes, unknown
}

// AttributeCounts counts heroes per primary attribute.
func AttributeCounts(heroes []*Hero) map[string]int {
	out := map[string]int{AttrStrength: 0, AttrAgility: 0, AttrIntelligence: 0, AttrUniversal: 0}
	for _, h := range heroes {
		out[h.Attribute]++
	}
	return out
}

// DraftSynergy sums the scores of every known pair inside the lineup and
// lists the pairs that contributed, strongest first.
func (b *Base) DraftSynergy(heroes []*Hero) (float64, []string) {
	type scored struct {
		label string
		score float64
	}
	var pairs []scored
	total := 0.0
	for i := 0; i < len(heroes); i++ {
		for j := i + 1; j < len(heroes); j++ {
			s, ok := b.synergy[orderedPair(heroes[i].ID, heroes[j].ID)]
			if !ok {
				continue
			}
			total += s
			pairs = append(pairs, scored{heroes[i].Name + " + " + heroes[j].Name, s})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })
	labels := make([]string, len(pairs))
	for i, p := range pairs {
		labels[i] = fmt.Sprintf("%s (%+.2f)", p.label, p.score)
	}
	return total, labels
}

// CounterScore is how much ours counters theirs minus how much theirs counters ours.
func (b *Base) CounterScore(ours, theirs []*Hero) float64 {
	score := 0.0
	for _, o := range ours {
		for _, t := range theirs {
			score += b.counters[pairKey{t.ID, o.ID}]
			score -= b.counters[pairKey{o.ID, t.ID}]
		}
	}
	return score
}

// PowerCurve averages the lineup's spikes per phase. Ties for the dominant
// phase go to the earlier phase.
func PowerCurve(heroes []*Hero) PhaseProfile {
	var p PhaseProfile
	if len(heroes) == 0 {
		return p
	}
	for _, h := range heroes {
		p.Early += h.Spikes.Early
		p.Mid += h.Spikes.Mid
		p.Late += h.Spikes.Late
	}
	n := float64(len(heroes))
	p.Early /= n
	p.Mid /= n
	p.Late /= n

	p.Dominant = PhaseEarly
	best := p.Early
	if p.Mid > best {
		p.Dominant, best = PhaseMid, p.Mid
	}
	if p.Late > best {
		p.Dominant = PhaseLate
	}
	return p
}

func (b *Base) profile(names []string) (DraftProfile, []*Hero) {
	heroes, unknown := b.Resolve(names)
	p := DraftProfile{Unknown: unknown, Attributes: AttributeCounts(heroes), Power: PowerCurve(heroes)}
	for _, h := range heroes {
		p.Heroes = append(p.Heroes, h.Name)
	}
	p.Synergy, p.SynergyPairs = b.DraftSynergy(heroes)
	return p, heroes
}

// CompareDrafts profiles both lineups and writes short notes on the
// differences that matter for the pick phase.
func (b *Base) CompareDrafts(radiant, dire []string) DraftComparison {
	rp, rh := b.profile(radiant)
	dp, dh := b.profile(dire)
	c := DraftComparison{
		Radiant:      rp,
		Dire:         dp,
		SynergyDiff:  rp.Synergy - dp.Synergy,
		CounterScore: b.CounterScore(rh, dh),
	}

	if len(rp.Unknown)+len(dp.Unknown) > 0 {
		c.Notes = append(c.Notes, fmt.Sprintf("unknown heroes ignored: %v", append(append([]string{}, rp.Unknown...), dp.Unknown...)))
	}
	switch {
	case c.SynergyDiff > 0.25:
		c.Notes = append(c.Notes, fmt.Sprintf("radiant draft has better synergy (%+.2f)", c.SynergyDiff))
	case c.SynergyDiff < -0.25:
		c.Notes = append(c.Notes, fmt.Sprintf("dire draft has better synergy (%+.2f)", -c.SynergyDiff))
	}
	switch {
	case c.CounterScore > 0.25:
		c.Notes = append(c.Notes, fmt.Sprintf("radiant counters dire (%+.2f)", c.CounterScore))
	case c.CounterScore < -0.25:
		c.Notes = append(c.Notes, fmt.Sprintf("dire counters radiant (%+.2f)", -c.CounterScore))
	}
	if rp.Power.Dominant != "" && dp.Power.Dominant != "" && rp.Power.Dominant != dp.Power.Dominant {
		c.Notes = append(c.Notes, fmt.Sprintf("radiant peaks %s game, dire peaks %s game", rp.Power.Dominant, dp.Power.Dominant))
	}
	return c
}
