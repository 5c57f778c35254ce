// Package knowledge loads the hero, team and synergy data used by the
// draft heuristics. The data lives in a YAML file so it can be updated
// per patch without a release.
package knowledge

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Attribute values accepted in the file.
const (
	AttrStrength     = "str"
	AttrAgility      = "agi"
	AttrIntelligence = "int"
	AttrUniversal    = "all"
)

// Game phases.
const (
	PhaseEarly = "early"
	PhaseMid   = "mid"
	PhaseLate  = "late"
)

var ErrInvalid = errors.New("invalid knowledge base")

type Spikes struct {
	Early float64 `yaml:"early" json:"early"`
	Mid   float64 `yaml:"mid" json:"mid"`
	Late  float64 `yaml:"late" json:"late"`
}

type Hero struct {
	ID        int      `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Aliases   []string `yaml:"aliases" json:"aliases,omitempty"`
	Attribute string   `yaml:"attribute" json:"attribute"`
	Roles     []string `yaml:"roles" json:"roles,omitempty"`
	Spikes    Spikes   `yaml:"spikes" json:"spikes"`
}

type Synergy struct {
	Heroes [2]string `yaml:"heroes"`
	Score  float64   `yaml:"score"`
}

// Counter says Hero is weak against CounteredBy by Score in [-1,1].
type Counter struct {
	Hero        string  `yaml:"hero"`
	CounteredBy string  `yaml:"countered_by"`
	Score       float64 `yaml:"score"`
}

type Team struct {
	ID      int64    `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	Tag     string   `yaml:"tag" json:"tag"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty"`
	Tier    int      `yaml:"tier" json:"tier"`
	Rating  float64  `yaml:"rating" json:"rating,omitempty"`
}

// Phases are the minute boundaries between early, mid and late game.
type Phases struct {
	EarlyEnd float64 `yaml:"early_end"`
	MidEnd   float64 `yaml:"mid_end"`
}

type file struct {
	Phases    Phases    `yaml:"phases"`
	Heroes    []Hero    `yaml:"heroes"`
	Synergies []Synergy `yaml:"synergies"`
	Counters  []Counter `yaml:"counters"`
	Teams     []Team    `yaml:"teams"`
}

type pairKey struct{ a, b int }

func orderedPair(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Base is a validated, indexed knowledge file. It is read-only after Load.
type Base struct {
	phases    Phases
	heroes    []Hero
	teams     []Team
	heroByKey map[string]int // normalized name/alias/id -> index in heroes
	heroByID  map[int]int
	teamByKey map[string]int
	synergy   map[pairKey]float64
	counters  map[pairKey]float64 // {weak, strong}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var sb strings.Builder
	for _, r := range s {
		if r == ' ' || r == '-' || r == '_' || r == '\'' || r == '.' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Load reads and validates a YAML knowledge file.
func Load(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}
	return Parse(data)
}

// Parse validates the document and builds the lookup indexes. All problems
// are reported together.
func Parse(data []byte) (*Base, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if f.Phases.EarlyEnd <= 0 {
		f.Phases.EarlyEnd = 15
	}
	if f.Phases.MidEnd <= 0 {
		f.Phases.MidEnd = 35
	}

	b := &Base{
		phases:    f.Phases,
		heroes:    f.Heroes,
		teams:     f.Teams,
		heroByKey: map[string]int{},
		heroByID:  map[int]int{},
		teamByKey: map[string]int{},
		synergy:   map[pairKey]float64{},
		counters:  map[pairKey]float64{},
	}

	var errs error
	if f.Phases.MidEnd <= f.Phases.EarlyEnd {
		errs = multierr.Append(errs, fmt.Errorf("phases: mid_end (%v) must be after early_end (%v)", f.Phases.MidEnd, f.Phases.EarlyEnd))
	}

	for i, h := range f.Heroes {
		if h.ID <= 0 || h.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("hero #%d: id and name are required", i))
			continue
		}
		if _, dup := b.heroByID[h.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("hero %q: duplicate id %d", h.Name, h.ID))
			continue
		}
		switch h.Attribute {
		case AttrStrength, AttrAgility, AttrIntelligence, AttrUniversal:
		default:
			errs = multierr.Append(errs, fmt.Errorf("hero %q: unknown attribute %q", h.Name, h.Attribute))
		}
		for _, v := range []float64{h.Spikes.Early, h.Spikes.Mid, h.Spikes.Late} {
			if v < 0 || v > 10 {
				errs = multierr.Append(errs, fmt.Errorf("hero %q: power spikes must be within [0,10]", h.Name))
				break
			}
		}
		b.heroByID[h.ID] = i
		b.heroByKey[strconv.Itoa(h.ID)] = i
		for _, k := range append([]string{h.Name}, h.Aliases...) {
			key := normalize(k)
			if prev, taken := b.heroByKey[key]; taken && prev != i {
				errs = multierr.Append(errs, fmt.Errorf("hero %q: name or alias %q already used by %q", h.Name, k, f.Heroes[prev].Name))
				continue
			}
			b.heroByKey[key] = i
		}
	}

	for _, s := range f.Synergies {
		a, okA := b.Hero(s.Heroes[0])
		c, okC := b.Hero(s.Heroes[1])
		if !okA || !okC {
			errs = multierr.Append(errs, fmt.Errorf("synergy %v: unknown hero", s.Heroes))
			continue
		}
		if a.ID == c.ID {
			errs = multierr.Append(errs, fmt.Errorf("synergy %v: a hero cannot pair with itself", s.Heroes))
			continue
		}
		if s.Score < -1 || s.Score > 1 {
			errs = multierr.Append(errs, fmt.Errorf("synergy %v: score %v outside [-1,1]", s.Heroes, s.Score))
			continue
		}
		b.synergy[orderedPair(a.ID, c.ID)] = s.Score
	}

	for _, c := range f.Counters {
		weak, okW := b.Hero(c.Hero)
		strong, okS := b.Hero(c.CounteredBy)
		if !okW || !okS {
			errs = multierr.Append(errs, fmt.Errorf("counter %s/%s: unknown hero", c.Hero, c.CounteredBy))
			continue
		}
		if c.Score < -1 || c.Score > 1 {
			errs = multierr.Append(errs, fmt.Errorf("counter %s/%s: score %v outside [-1,1]", c.Hero, c.CounteredBy, c.Score))
			continue
		}
		b.counters[pairKey{weak.ID, strong.ID}] = c.Score
	}

	for i, t := range f.Teams {
		if t.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("team #%d: name is required", i))
			continue
		}
		keys := append([]string{t.Name, t.Tag}, t.Aliases...)
		for _, k := range keys {
			key := normalize(k)
			if key == "" {
				continue
			}
			if prev, taken := b.teamByKey[key]; taken && prev != i {
				errs = multierr.Append(errs, fmt.Errorf("team %q: name or alias %q already used by %q", t.Name, k, f.Teams[prev].Name))
				continue
			}
			b.teamByKey[key] = i
		}
	}

	if errs != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, errs)
	}
	return b, nil
}

// Hero looks a hero up by id, name or alias. Case, spaces and hyphens are ignored.
func (b *Base) Hero(nameOrID string) (*Hero, bool) {
	i, ok := b.heroByKey[normalize(nameOrID)]
	if !ok {
		return nil, false
	}
	return &b.heroes[i], true
}

func (b *Base) HeroByID(id int) (*Hero, bool) {
	i, ok := b.heroByID[id]
	if !ok {
		return nil, false
	}
	return &b.heroes[i], true
}

// HeroNames maps hero id to display name.
func (b *Base) HeroNames() map[int]string {
	out := make(map[int]string, len(b.heroes))
	for _, h := range b.heroes {
		out[h.ID] = h.Name
	}
	return out
}

func (b *Base) Heroes() []Hero { return b.heroes }

func (b *Base) Teams() []Team { return b.teams }

// ResolveTeam finds a team by name, tag or alias.
func (b *Base) ResolveTeam(nameOrAlias string) (*Team, bool) {
	i, ok := b.teamByKey[normalize(nameOrAlias)]
	if !ok {
		return nil, false
	}
	return &b.teams[i], true
}

// PhaseForMinute returns the phase a game minute falls in.
func (b *Base) PhaseForMinute(minute float64) string {
	switch {
	case minute < b.phases.EarlyEnd:
		return PhaseEarly
	case minute < b.phases.MidEnd:
		return PhaseMid
	default:
		return PhaseLate
	}
}

func (b *Base) Phases() Phases { return b.phases }
