// Package dataset loads saved match dumps for the offline tools.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/oraculo/stats-api/internal/export"
	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/sources/opendota"
)

// expand replaces directories with the .json and .csv files they contain.
func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if !e.IsDir() && (ext == ".json" || ext == ".csv") {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	return files, nil
}

// LoadMatches reads OpenDota match JSON (object or array) and MatchRow CSV
// files. Directories are scanned one level deep. Matches are deduplicated by
// ID, later files winning, and returned oldest first. Unreadable files do not
// stop the load; their errors are returned together with what was read.
func LoadMatches(paths ...string) ([]models.Match, error) {
	files, err := expand(paths)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Match)
	var errs error
	for _, f := range files {
		matches, err := loadFile(f)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", f, err))
			continue
		}
		for _, m := range matches {
			byID[m.MatchID] = m
		}
	}

	out := make([]models.Match, 0, len(byID))
	for _, m := range byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].MatchID < out[j].MatchID
	})
	return out, errs
}

func loadFile(path string) ([]models.Match, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		var rows []models.MatchRow
		if err := export.ReadCSV(path, &rows); err != nil {
			return nil, err
		}
		out := make([]models.Match, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.Match())
		}
		return out, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return opendota.DecodeMatches(data)
}

// LoadHeroes reads a hero list in the OpenDota /heroes format.
func LoadHeroes(path string) ([]models.Hero, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var heroes []models.Hero
	if err := json.Unmarshal(data, &heroes); err != nil {
		return nil, fmt.Errorf("decode heroes %s: %w", path, err)
	}
	return heroes, nil
}

// HeroNames indexes heroes by ID using the localized name when present.
func HeroNames(heroes []models.Hero) map[int]string {
	names := make(map[int]string, len(heroes))
	for _, h := range heroes {
		name := h.LocalizedName
		if name == "" {
			name = h.Name
		}
		names[h.ID] = name
	}
	return names
}
