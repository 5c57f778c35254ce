package models

// ProcessTextRequest carries odds text pasted from a bookmaker.
type ProcessTextRequest struct {
	Text      string `json:"text" validate:"required,max=20000"`
	Bookmaker string `json:"bookmaker"`
}

// ProcessFormRequest is the structured equivalent of a betting slip.
type ProcessFormRequest struct {
	RadiantTeam   string   `json:"radiant_team" validate:"required"`
	DireTeam      string   `json:"dire_team" validate:"required"`
	RadiantHeroes []string `json:"radiant_heroes" validate:"omitempty,max=5,dive,required"`
	DireHeroes    []string `json:"dire_heroes" validate:"omitempty,max=5,dive,required"`
	Markets       []Market `json:"markets" validate:"dive"`
	Bookmaker     string   `json:"bookmaker"`
}

// PredictRequest asks for a match forecast.
type PredictRequest struct {
	RadiantTeam   string   `json:"radiant_team"`
	DireTeam      string   `json:"dire_team"`
	RadiantHeroes []string `json:"radiant_heroes" validate:"omitempty,max=5"`
	DireHeroes    []string `json:"dire_heroes" validate:"omitempty,max=5"`
}

type IngestMatchesRequest struct {
	MatchIDs []int64 `json:"match_ids" validate:"required,min=1,max=500,dive,gt=0"`
}
