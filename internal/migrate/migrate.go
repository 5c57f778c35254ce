// Package migrate upgrades stored analysis records from the older JSON
// layouts to the current one.
//
// Version 1 is the flat spreadsheet export (time_a, odd_a, herois_a...),
// version 2 nests teams, odds and drafts, and version 3 is a models.Analysis
// with a version field and an optional winner.
package migrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/oraculo/stats-api/internal/export"
	"github.com/oraculo/stats-api/internal/models"
)

const CurrentVersion = 3

var (
	ErrUnknownVersion = errors.New("unknown record version")
	ErrNotRecord      = errors.New("record is not a JSON object")
)

// V1 is the legacy flat record.
type V1 struct {
	TimeA    string           `json:"time_a"`
	TimeB    string           `json:"time_b"`
	OddA     models.FlexFloat `json:"odd_a"`
	OddB     models.FlexFloat `json:"odd_b"`
	HeroisA  stringList       `json:"herois_a"`
	HeroisB  stringList       `json:"herois_b"`
	Vencedor string           `json:"vencedor"`
	Data     string           `json:"data"`
}

type pair[T any] struct {
	A T `json:"a"`
	B T `json:"b"`
}

// V2 nests both sides under a/b keys. Winner is "a", "b" or empty.
type V2 struct {
	Version int              `json:"version"`
	Teams   pair[string]     `json:"teams"`
	Odds    pair[float64]    `json:"odds"`
	Drafts  pair[stringList] `json:"drafts"`
	Winner  string           `json:"winner,omitempty"`
	Date    string           `json:"date,omitempty"`
}

// V3 is the current layout.
type V3 struct {
	Version int `json:"version"`
	models.Analysis
	Winner models.Side `json:"winner,omitempty"`
}

// stringList accepts ["a","b"] or "a, b".
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("hero list: %w", err)
	}
	*l = nil
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			*l = append(*l, p)
		}
	}
	return nil
}

// DetectVersion reads the version field, falling back to the shape of the
// record for files written before versions were stored.
func DetectVersion(raw json.RawMessage) (int, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil || probe == nil {
		return 0, ErrNotRecord
	}
	if v, ok := probe["version"]; ok {
		var n int
		if err := json.Unmarshal(v, &n); err != nil {
			return 0, fmt.Errorf("%w: %s", ErrUnknownVersion, v)
		}
		if n < 1 || n > CurrentVersion {
			return 0, fmt.Errorf("%w: %d", ErrUnknownVersion, n)
		}
		return n, nil
	}
	switch {
	case probe["time_a"] != nil || probe["vencedor"] != nil:
		return 1, nil
	case probe["teams"] != nil:
		return 2, nil
	case probe["markets"] != nil:
		return 3, nil
	}
	return 0, fmt.Errorf("%w: no version and unrecognised fields", ErrUnknownVersion)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func upgradeV1(r V1) (V2, error) {
	out := V2{
		Version: 2,
		Teams:   pair[string]{A: strings.TrimSpace(r.TimeA), B: strings.TrimSpace(r.TimeB)},
		Odds:    pair[float64]{A: float64(r.OddA), B: float64(r.OddB)},
		Drafts:  pair[stringList]{A: r.HeroisA, B: r.HeroisB},
	}
	if out.Teams.A == "" || out.Teams.B == "" {
		return V2{}, errors.New("both team names are required")
	}

	w := strings.TrimSpace(r.Vencedor)
	switch {
	case w == "":
	case strings.EqualFold(w, "a") || strings.EqualFold(w, out.Teams.A):
		out.Winner = "a"
	case strings.EqualFold(w, "b") || strings.EqualFold(w, out.Teams.B):
		out.Winner = "b"
	default:
		return V2{}, fmt.Errorf("winner %q is neither team", w)
	}

	date, err := parseDate(r.Data)
	if err != nil {
		return V2{}, err
	}
	if !date.IsZero() {
		out.Date = date.Format(time.RFC3339)
	}
	return out, nil
}

func upgradeV2(r V2, id uuid.UUID) (V3, error) {
	created, err := parseDate(r.Date)
	if err != nil {
		return V3{}, err
	}
	a := models.Analysis{
		ID:            id,
		Source:        models.SourceImport,
		RadiantTeam:   r.Teams.A,
		DireTeam:      r.Teams.B,
		RadiantHeroes: r.Drafts.A,
		DireHeroes:    r.Drafts.B,
		Markets:       []models.Market{},
		ValueBets:     []models.ValueBet{},
		CreatedAt:     created,
	}
	if r.Odds.A > 1 && r.Odds.B > 1 {
		a.Markets = append(a.Markets, models.Market{
			Type: models.MarketMatchWinner,
			Selections: []models.Selection{
				{Name: r.Teams.A, Side: models.SideRadiant, Odds: r.Odds.A},
				{Name: r.Teams.B, Side: models.SideDire, Odds: r.Odds.B},
			},
		})
	} else if r.Odds.A != 0 || r.Odds.B != 0 {
		a.Warnings = append(a.Warnings, fmt.Sprintf("odds %.2f/%.2f dropped: both must be greater than 1", r.Odds.A, r.Odds.B))
	}

	out := V3{Version: CurrentVersion, Analysis: a}
	switch r.Winner {
	case "":
	case "a":
		out.Winner = models.SideRadiant
	case "b":
		out.Winner = models.SideDire
	default:
		return V3{}, fmt.Errorf("invalid winner %q", r.Winner)
	}
	return out, nil
}

// Migrate upgrades one record to CurrentVersion. migrated is false when the
// record was already current; it is then returned unchanged.
func Migrate(raw json.RawMessage) (out json.RawMessage, migrated bool, err error) {
	version, err := DetectVersion(raw)
	if err != nil {
		return nil, false, err
	}
	if version == CurrentVersion {
		return raw, false, nil
	}
	// ids are derived from the original bytes so re-running is stable
	id := uuid.NewSHA1(uuid.NameSpaceOID, bytes.TrimSpace(raw))

	var v2 V2
	switch version {
	case 1:
		var v1 V1
		// spreadsheet exports quote numbers inconsistently; unreadable fields stay zero
		if err := models.DecodeFlexible(raw, &v1); err != nil {
			return nil, false, fmt.Errorf("decode v1: %w", err)
		}
		if v2, err = upgradeV1(v1); err != nil {
			return nil, false, fmt.Errorf("v1 to v2: %w", err)
		}
	case 2:
		if err := json.Unmarshal(raw, &v2); err != nil {
			return nil, false, fmt.Errorf("decode v2: %w", err)
		}
	}
	v3, err := upgradeV2(v2, id)
	if err != nil {
		return nil, false, fmt.Errorf("v2 to v3: %w", err)
	}
	out, err = json.Marshal(v3)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Result counts what MigrateFile did.
type Result struct {
	Total          int `json:"total"`
	Migrated       int `json:"migrated"`
	AlreadyCurrent int `json:"already_current"`
	Failed         int `json:"failed"`
}

// MigrateFile reads a JSON array of records from in and writes the upgraded
// array to out. Records that fail are copied unchanged and reported in the
// aggregated error; the output is written either way.
func MigrateFile(in, out string) (Result, error) {
	var res Result
	data, err := os.ReadFile(in)
	if err != nil {
		return res, err
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return res, fmt.Errorf("%s: expected a JSON array of records: %w", in, err)
	}

	var errs error
	upgraded := make([]json.RawMessage, 0, len(records))
	for i, rec := range records {
		res.Total++
		next, migrated, err := Migrate(rec)
		switch {
		case err != nil:
			res.Failed++
			errs = multierr.Append(errs, fmt.Errorf("record %d: %w", i, err))
			upgraded = append(upgraded, rec)
		case migrated:
			res.Migrated++
			upgraded = append(upgraded, next)
		default:
			res.AlreadyCurrent++
			upgraded = append(upgraded, next)
		}
	}

	if err := export.WriteJSON(out, upgraded); err != nil {
		return res, multierr.Append(errs, err)
	}
	return res, errs
}
