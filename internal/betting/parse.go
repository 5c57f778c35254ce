package betting

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/oraculo/stats-api/internal/models"
)

var ErrNoMarkets = errors.New("no betting markets recognised")

// ParsedOdds is the result of reading pasted bookmaker text. TeamA plays as
// radiant and TeamB as dire for side mapping.
type ParsedOdds struct {
	TeamA    string          `json:"team_a"`
	TeamB    string          `json:"team_b"`
	Markets  []models.Market `json:"markets"`
	Warnings []string        `json:"warnings,omitempty"`
}

var (
	versusRe = regexp.MustCompile(`(?i)^(.+?)\s+(?:vs\.?|versus|x|v)\s+(.+)$`)
	priceRe  = regexp.MustCompile(`^(.*?)\s*@?\s*(\d+(?:[.,]\d+)?)$`)
	numberRe = regexp.MustCompile(`([+-]?\d+(?:[.,]\d+)?)\s*$`)
	lineRe   = regexp.MustCompile(`[+-]?\d+(?:[.,]\d+)?`)
	mapRe    = regexp.MustCompile(`\b(?:mapa|map|jogo|game)\s*(\d+)\b`)
	overRe   = regexp.MustCompile(`^(?:over|mais de|mais|acima de|acima)\b`)
	underRe  = regexp.MustCompile(`^(?:under|menos de|menos|abaixo de|abaixo)\b`)
)

var folder = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a",
	"é", "e", "ê", "e", "í", "i",
	"ó", "o", "ô", "o", "õ", "o", "ú", "u", "ç", "c",
)

// fold lowercases and strips Portuguese accents.
func fold(s string) string {
	return folder.Replace(strings.ToLower(strings.TrimSpace(s)))
}

func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

type header struct {
	typ       models.MarketType
	mapNumber int
	line      float64
}

// classify recognises a market header line.
func classify(line string) (header, bool) {
	f := fold(line)
	var h header
	found := false

	if m := mapRe.FindStringSubmatch(f); m != nil {
		h.mapNumber, _ = strconv.Atoi(m[1])
		f = strings.TrimSpace(strings.Replace(f, m[0], " ", 1))
		found = true
	}

	switch {
	case strings.Contains(f, "handicap") || strings.Contains(f, "hcp"):
		h.typ = models.MarketHandicap
	case strings.Contains(f, "kill") || strings.Contains(f, "abate"):
		h.typ = models.MarketTotalKills
	case strings.Contains(f, "duracao") || strings.Contains(f, "duration") || strings.Contains(f, "tempo de jogo"):
		h.typ = models.MarketDuration
	case strings.Contains(f, "vencedor") || strings.Contains(f, "winner") || strings.Contains(f, "moneyline") ||
		strings.Contains(f, "resultado") || strings.Contains(f, "ganhador") || strings.Contains(f, "match result"):
		h.typ = models.MarketMatchWinner
	default:
		if !found {
			return h, false
		}
	}
	if h.typ == "" || (h.typ == models.MarketMatchWinner && h.mapNumber > 0) {
		h.typ = models.MarketMapWinner
	}
	if h.typ == models.MarketTotalKills || h.typ == models.MarketDuration || h.typ == models.MarketHandicap {
		if m := numberRe.FindStringSubmatch(f); m != nil {
			h.line, _ = parseDecimal(m[1])
		} else if n := lineRe.FindString(f); n != "" && h.typ != models.MarketHandicap {
			// "total de abates 45.5 (mapa 1)"
			h.line, _ = parseDecimal(n)
		}
	}
	return h, true
}

type parser struct {
	out *ParsedOdds
	cur *models.Market
}

func (p *parser) warn(format string, args ...any) {
	p.out.Warnings = append(p.out.Warnings, fmt.Sprintf(format, args...))
}

func (p *parser) flush() {
	if p.cur == nil {
		return
	}
	if len(p.cur.Selections) >= 2 {
		p.out.Markets = append(p.out.Markets, *p.cur)
	} else if len(p.cur.Selections) == 1 {
		p.warn("market %q dropped: only one price", marketName(p.cur))
	}
	p.cur = nil
}

func marketName(m *models.Market) string {
	if m.Label != "" {
		return m.Label
	}
	return string(m.Type)
}

func (p *parser) open(label string, h header) {
	// "Mapa 2" followed by "Vencedor" describes one market
	if p.cur != nil && len(p.cur.Selections) == 0 {
		if h.mapNumber == 0 {
			h.mapNumber = p.cur.MapNumber
		}
		if h.typ == models.MarketMapWinner && p.cur.Type != models.MarketMatchWinner && p.cur.Type != models.MarketMapWinner {
			h.typ = p.cur.Type
		}
		if h.typ == models.MarketMatchWinner && h.mapNumber > 0 {
			h.typ = models.MarketMapWinner
		}
		if h.line == 0 {
			h.line = p.cur.Line
		}
		label = p.cur.Label + " " + label
	} else {
		p.flush()
	}
	p.cur = &models.Market{Type: h.typ, Label: strings.TrimSpace(label), MapNumber: h.mapNumber, Line: h.line}
}

// sideFor maps a selection name to a side using the known team names and
// learns team names when no header was given.
func (p *parser) sideFor(name string) models.Side {
	n := fold(name)
	match := func(team string) bool {
		t := fold(team)
		if t == "" || n == "" {
			return false
		}
		return strings.Contains(" "+n+" ", " "+t+" ") || strings.Contains(" "+t+" ", " "+n+" ")
	}
	switch {
	case match(p.out.TeamA):
		return models.SideRadiant
	case match(p.out.TeamB):
		return models.SideDire
	}
	if side, ok := models.ParseSide(name); ok {
		return side
	}
	if p.out.TeamA == "" {
		p.out.TeamA = name
		return models.SideRadiant
	}
	if p.out.TeamB == "" {
		p.out.TeamB = name
		return models.SideDire
	}
	return ""
}

func (p *parser) selection(lineNo int, name string, odds float64) {
	if odds <= 1 {
		p.warn("line %d: odds %.2f must be greater than 1", lineNo, odds)
		return
	}
	if p.cur == nil {
		p.cur = &models.Market{Type: models.MarketMatchWinner}
	}
	name = strings.TrimRight(strings.TrimSpace(name), " :-@")
	if name == "" {
		p.warn("line %d: price without a selection name", lineNo)
		return
	}
	sel := models.Selection{Name: name, Odds: odds}
	f := fold(name)

	isOver, isUnder := overRe.MatchString(f), underRe.MatchString(f)
	switch {
	case isOver || isUnder:
		over := isOver
		sel.Over = &over
		// the line follows the keyword and may carry a unit: "over 38.5 min"
		rest := overRe.ReplaceAllString(underRe.ReplaceAllString(f, ""), "")
		if n := lineRe.FindString(rest); n != "" {
			sel.Line, _ = parseDecimal(n)
		}
		if p.cur.Type != models.MarketTotalKills && p.cur.Type != models.MarketDuration {
			p.warn("line %d: over/under price outside a totals market", lineNo)
			return
		}
	case p.cur.Type == models.MarketHandicap:
		if m := numberRe.FindStringSubmatch(name); m != nil && strings.ContainsAny(m[1], "+-") {
			sel.Line, _ = parseDecimal(m[1])
			sel.Name = strings.TrimSpace(strings.TrimSuffix(name, m[0]))
		}
		sel.Side = p.sideFor(sel.Name)
	default:
		sel.Side = p.sideFor(name)
	}
	p.cur.Selections = append(p.cur.Selections, sel)
}

// ParseOddsText reads odds copied from a bookmaker page. It understands
// Portuguese and English market names, decimal commas and an optional "@"
// before the price. Lines it cannot read become warnings.
func ParseOddsText(text string) (*ParsedOdds, error) {
	p := &parser{out: &ParsedOdds{}}
	for i, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		f := fold(line)
		priced := priceRe.FindStringSubmatch(line)
		if h, ok := classify(line); ok && !overRe.MatchString(f) && !underRe.MatchString(f) {
			p.open(line, h)
			continue
		}
		if priced != nil {
			if odds, err := parseDecimal(priced[2]); err == nil {
				p.selection(lineNo, priced[1], odds)
				continue
			}
		}
		if p.out.TeamA == "" {
			if m := versusRe.FindStringSubmatch(line); m != nil {
				p.out.TeamA, p.out.TeamB = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
				continue
			}
		}
		p.warn("line %d not understood: %q", lineNo, line)
	}
	p.flush()

	if len(p.out.Markets) == 0 {
		return p.out, ErrNoMarkets
	}
	return p.out, nil
}
