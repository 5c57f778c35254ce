package predict

import (
	"fmt"
	"math"
	"time"

	"github.com/oraculo/stats-api/internal/knowledge"
	"github.com/oraculo/stats-api/internal/models"
)

// DefaultDraftWeight is the share of the draft model in a blended forecast.
const DefaultDraftWeight = 0.6

// Predictor combines team ratings with the draft model.
type Predictor struct {
	Builder     *FeatureBuilder
	Model       *LogisticModel // nil falls back to the draft heuristic
	DraftWeight float64
	Now         func() time.Time
}

// EloFromKnowledge seeds ratings from the teams listed in the knowledge file.
func EloFromKnowledge(kb *knowledge.Base, k float64) *Elo {
	e := NewElo(k, 0)
	if kb == nil {
		return e
	}
	for _, t := range kb.Teams() {
		if t.Rating > 0 {
			e.Seed(t.Name, t.Rating)
		}
	}
	return e
}

func NewPredictor(kb *knowledge.Base, heroWinRates map[int]float64, elo *Elo, model *LogisticModel) *Predictor {
	return &Predictor{
		Builder:     &FeatureBuilder{KB: kb, HeroWinRates: heroWinRates, Elo: elo},
		Model:       model,
		DraftWeight: DefaultDraftWeight,
		Now:         time.Now,
	}
}

func (p *Predictor) canonicalTeam(name string) string {
	if p.Builder.KB != nil {
		if t, ok := p.Builder.KB.ResolveTeam(name); ok {
			return t.Name
		}
	}
	return name
}

// heuristicDraft scores a draft without a trained model.
func heuristicDraft(f Features) float64 {
	return sigmoid(4*f.HeroWinRateDiff + 1.5*f.SynergyDiff + 1.5*f.CounterDiff)
}

// PredictMatch forecasts a single game. Drafts count as known when both
// sides have at least one recognised hero; teams count as rated when either
// has an Elo rating. With both the draft probability gets DraftWeight.
func (p *Predictor) PredictMatch(req models.PredictRequest) models.MatchPrediction {
	radiant := p.canonicalTeam(req.RadiantTeam)
	dire := p.canonicalTeam(req.DireTeam)
	f, unknown := p.Builder.Build(radiant, dire, req.RadiantHeroes, req.DireHeroes)

	out := models.MatchPrediction{GeneratedAt: p.Now().UTC()}

	var draftProb float64
	draftKnown := false
	if kb := p.Builder.KB; kb != nil {
		cmp := kb.CompareDrafts(req.RadiantHeroes, req.DireHeroes)
		if len(cmp.Radiant.Heroes) > 0 && len(cmp.Dire.Heroes) > 0 {
			draftKnown = true
			draftProb = heuristicDraft(f)
			if p.Model != nil {
				if mp, err := p.Model.Predict(f.Vector()); err == nil {
					draftProb = mp
				}
			}
			out.Factors = append(out.Factors, cmp.Notes...)
			out.Factors = append(out.Factors, fmt.Sprintf("draft model gives radiant %.1f%%", draftProb*100))
		} else if len(unknown) > 0 {
			out.Factors = append(out.Factors, fmt.Sprintf("unknown heroes ignored: %v", unknown))
		}
	}

	var eloProb float64
	eloKnown := false
	if e := p.Builder.Elo; e != nil && radiant != "" && dire != "" {
		ra, okA := e.Rating(radiant)
		rb, okB := e.Rating(dire)
		if okA || okB {
			eloKnown = true
			eloProb = expected(ra, rb)
			out.Factors = append(out.Factors, fmt.Sprintf("Elo %s %.0f vs %s %.0f", radiant, ra, dire, rb))
		}
	}

	w := p.DraftWeight
	if w <= 0 || w > 1 {
		w = DefaultDraftWeight
	}
	switch {
	case draftKnown && eloKnown:
		out.RadiantWinProb = w*draftProb + (1-w)*eloProb
		out.Method = "blend"
	case draftKnown:
		out.RadiantWinProb = draftProb
		out.Method = "draft"
	case eloKnown:
		out.RadiantWinProb = eloProb
		out.Method = "elo"
	default:
		out.RadiantWinProb = 0.5
		out.Method = "prior"
		out.Factors = append(out.Factors, "no ratings or drafts available, using even odds")
	}

	out.DireWinProb = 1 - out.RadiantWinProb
	out.ExpectedWinner = models.SideRadiant
	if out.RadiantWinProb < 0.5 {
		out.ExpectedWinner = models.SideDire
	}
	out.Confidence = math.Abs(out.RadiantWinProb-0.5) * 2

	if p.Model != nil && p.Model.Duration != nil {
		out.ExpectedDurationMin = p.Model.Duration.Predict(f.Vector())
	}
	if out.Factors == nil {
		out.Factors = []string{}
	}
	return out
}
