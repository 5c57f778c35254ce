package models

import (
	"encoding/json"
	"testing"
)

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{`1.85`, 1.85},
		{`"1.85"`, 1.85},
		{`"1,85"`, 1.85},
		{`""`, 0},
		{`null`, 0},
	}

	for _, tt := range tests {
		var f FlexFloat
		if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.input, err)
		}
		if float64(f) != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, f, tt.want)
		}
	}

	var f FlexFloat
	if err := json.Unmarshal([]byte(`"abc"`), &f); err == nil {
		t.Error("expected error for non-numeric string")
	}
}

func TestDecodeFlexible_AllStrings(t *testing.T) {
	input := `{"match_id": "7701234567", "duration": "2455", "radiant_win": "true", "radiant_score": "31", "dire_score": "18.0", "league_name": "PGL Wallachia"}`

	var m Match
	if err := DecodeFlexible([]byte(input), &m); err != nil {
		t.Fatalf("DecodeFlexible: %v", err)
	}
	if m.MatchID != 7701234567 {
		t.Errorf("MatchID = %d", m.MatchID)
	}
	if m.DurationSec != 2455 {
		t.Errorf("DurationSec = %d", m.DurationSec)
	}
	if !m.RadiantWin {
		t.Error("RadiantWin = false, want true")
	}
	if m.DireScore != 18 {
		t.Errorf("DireScore = %d, want 18", m.DireScore)
	}
	if m.LeagueName != "PGL Wallachia" {
		t.Errorf("LeagueName = %q", m.LeagueName)
	}
}

func TestDecodeFlexible_NativeTypes(t *testing.T) {
	input := `{"match_id": 42, "duration": 1800, "radiant_win": false}`

	var m Match
	if err := DecodeFlexible([]byte(input), &m); err != nil {
		t.Fatalf("DecodeFlexible: %v", err)
	}
	if m.MatchID != 42 || m.DurationSec != 1800 || m.RadiantWin {
		t.Errorf("unexpected match: %+v", m)
	}
}

func TestDecodeFlexible_RejectsNonStruct(t *testing.T) {
	var n int
	if err := DecodeFlexible([]byte(`1`), &n); err == nil {
		t.Error("expected error for non-struct destination")
	}
}
