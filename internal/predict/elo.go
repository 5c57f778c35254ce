package predict

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/oraculo/stats-api/internal/models"
)

// Elo keeps team ratings. Team names are matched case-insensitively.
type Elo struct {
	K    float64
	Base float64

	mu      sync.RWMutex
	ratings map[string]float64
	names   map[string]string
	games   map[string]int
}

// TeamRating is a team's current Elo rating.
type TeamRating struct {
	Team   string  `json:"team" csv:"team"`
	Rating float64 `json:"rating" csv:"rating"`
	Games  int     `json:"games" csv:"games"`
}

func NewElo(k, base float64) *Elo {
	if k <= 0 {
		k = 32
	}
	if base <= 0 {
		base = 1500
	}
	return &Elo{
		K:       k,
		Base:    base,
		ratings: map[string]float64{},
		names:   map[string]string{},
		games:   map[string]int{},
	}
}

func teamKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Seed sets a starting rating, e.g. from the knowledge file.
func (e *Elo) Seed(team string, rating float64) {
	key := teamKey(team)
	if key == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ratings[key] = rating
	e.names[key] = team
}

// Rating returns the team's rating and whether the team has one.
func (e *Elo) Rating(team string) (float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.ratings[teamKey(team)]
	if !ok {
		return e.Base, false
	}
	return r, true
}

// Expected is the probability that a beats b: 1/(1+10^((Rb-Ra)/400)).
func (e *Elo) Expected(a, b string) float64 {
	ra, _ := e.Rating(a)
	rb, _ := e.Rating(b)
	return expected(ra, rb)
}

func expected(ra, rb float64) float64 {
	return 1 / (1 + math.Pow(10, (rb-ra)/400))
}

// Update applies one result and returns the rating change of the winner.
func (e *Elo) Update(winner, loser string) float64 {
	wk, lk := teamKey(winner), teamKey(loser)
	if wk == "" || lk == "" || wk == lk {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	rw, ok := e.ratings[wk]
	if !ok {
		rw = e.Base
		e.names[wk] = winner
	}
	rl, ok := e.ratings[lk]
	if !ok {
		rl = e.Base
		e.names[lk] = loser
	}
	delta := e.K * (1 - expected(rw, rl))
	e.ratings[wk] = rw + delta
	e.ratings[lk] = rl - delta
	e.games[wk]++
	e.games[lk]++
	return delta
}

// Record applies a finished match. Matches without both team names are skipped.
func (e *Elo) Record(m models.Match) {
	if m.Radiant.Name == "" || m.Dire.Name == "" {
		return
	}
	w, l := m.Radiant.Name, m.Dire.Name
	if !m.RadiantWin {
		w, l = l, w
	}
	e.Update(w, l)
}

// FromMatches rates teams by replaying matches in start-time order.
func FromMatches(matches []models.Match, k, base float64) *Elo {
	e := NewElo(k, base)
	for _, m := range chronological(matches) {
		e.Record(m)
	}
	return e
}

// Ratings lists every rated team, best first.
func (e *Elo) Ratings() []TeamRating {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]TeamRating, 0, len(e.ratings))
	for k, r := range e.ratings {
		out = append(out, TeamRating{Team: e.names[k], Rating: r, Games: e.games[k]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Team < out[j].Team
	})
	return out
}

func chronological(matches []models.Match) []models.Match {
	sorted := append([]models.Match(nil), matches...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].StartTime.Equal(sorted[j].StartTime) {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		}
		return sorted[i].MatchID < sorted[j].MatchID
	})
	return sorted
}
