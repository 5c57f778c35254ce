// Package docs registers the OpenAPI description of the API with swag.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/process/text": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Processing"],
                "summary": "Analyse Odds Text",
                "parameters": [{"description": "Odds text", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ProcessTextRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Analysis"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "No markets recognised", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/process/image": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Processing"],
                "summary": "Analyse Betting Slip Screenshot",
                "parameters": [
                    {"type": "file", "description": "Screenshot (max 5MB)", "name": "image", "in": "formData", "required": true},
                    {"type": "string", "description": "Bookmaker name", "name": "bookmaker", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Analysis"}},
                    "413": {"description": "Image too large", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/process/form": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Processing"],
                "summary": "Analyse Structured Slip",
                "parameters": [{"description": "Form", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ProcessFormRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Analysis"}}}
            }
        },
        "/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["History"],
                "summary": "List Analyses",
                "parameters": [
                    {"type": "string", "name": "source", "in": "query"},
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Analysis"}}}}
            }
        },
        "/history/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["History"],
                "summary": "History Stats",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HistoryStats"}}}
            }
        },
        "/history/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["History"],
                "summary": "Get Analysis",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Analysis"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "tags": ["History"],
                "summary": "Delete Analysis",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/stats/heroes": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Heroes"],
                "summary": "Hero Win Rates",
                "parameters": [
                    {"type": "integer", "default": 30, "name": "days", "in": "query"},
                    {"type": "integer", "default": 1, "name": "min_games", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.WinRateRow"}}}}
            }
        },
        "/stats/heroes/{heroId}/matchups": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Heroes"],
                "summary": "Hero Matchups",
                "parameters": [
                    {"type": "integer", "name": "heroId", "in": "path", "required": true},
                    {"type": "integer", "default": 30, "name": "days", "in": "query"},
                    {"type": "integer", "default": 1, "name": "min_games", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.HeroMatchup"}}}}
            }
        },
        "/stats/sides": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Teams"],
                "summary": "Side Performance Stats",
                "parameters": [{"type": "integer", "default": 30, "name": "days", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SideStats"}}}
            }
        },
        "/stats/teams": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Teams"],
                "summary": "Team Win Rates",
                "parameters": [
                    {"type": "integer", "default": 30, "name": "days", "in": "query"},
                    {"type": "integer", "default": 1, "name": "min_games", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.WinRateRow"}}}}
            }
        },
        "/stats/teams/head-to-head": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Teams"],
                "summary": "Head to Head",
                "parameters": [
                    {"type": "string", "name": "a", "in": "query", "required": true},
                    {"type": "string", "name": "b", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HeadToHead"}}}
            }
        },
        "/stats/query": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Stats"],
                "summary": "Dynamic Stats Query",
                "parameters": [{"description": "Query", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/logic.DynamicQueryRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/logic.QueryResult"}}}}
            }
        },
        "/predict": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Predictions"],
                "summary": "Predict Match",
                "parameters": [{"description": "Teams and drafts", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.PredictRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MatchPrediction"}}}
            }
        },
        "/ingest/matches": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Ingestion"],
                "summary": "Ingest Matches",
                "parameters": [{"description": "Match IDs", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.IngestMatchesRequest"}}],
                "responses": {"202": {"description": "Accepted"}, "503": {"description": "Queue full"}}
            }
        },
        "/system/install": {
            "post": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Install Database Schema",
                "responses": {"200": {"description": "OK"}, "500": {"description": "Internal Server Error"}}
            }
        }
    },
    "definitions": {
        "models.ProcessTextRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {"text": {"type": "string"}, "bookmaker": {"type": "string"}}
        },
        "models.ProcessFormRequest": {
            "type": "object",
            "required": ["radiant_team", "dire_team"],
            "properties": {
                "radiant_team": {"type": "string"},
                "dire_team": {"type": "string"},
                "radiant_heroes": {"type": "array", "maxItems": 5, "items": {"type": "string"}},
                "dire_heroes": {"type": "array", "maxItems": 5, "items": {"type": "string"}},
                "markets": {"type": "array", "items": {"$ref": "#/definitions/models.Market"}},
                "bookmaker": {"type": "string"}
            }
        },
        "models.PredictRequest": {
            "type": "object",
            "properties": {
                "radiant_team": {"type": "string"},
                "dire_team": {"type": "string"},
                "radiant_heroes": {"type": "array", "items": {"type": "string"}},
                "dire_heroes": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.IngestMatchesRequest": {
            "type": "object",
            "required": ["match_ids"],
            "properties": {"match_ids": {"type": "array", "items": {"type": "integer"}}}
        },
        "models.Market": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["match_winner", "map_winner", "handicap", "total_kills", "duration"]},
                "label": {"type": "string"},
                "map_number": {"type": "integer"},
                "line": {"type": "number"},
                "bookmaker": {"type": "string"},
                "selections": {"type": "array", "items": {"$ref": "#/definitions/models.Selection"}}
            }
        },
        "models.Selection": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "side": {"type": "string"},
                "over": {"type": "boolean"},
                "line": {"type": "number"},
                "odds": {"type": "number"}
            }
        },
        "models.ValueBet": {
            "type": "object",
            "properties": {
                "market": {"type": "string"},
                "label": {"type": "string"},
                "selection": {"type": "string"},
                "line": {"type": "number"},
                "bookmaker": {"type": "string"},
                "odds": {"type": "number"},
                "implied_prob": {"type": "number"},
                "estimated_prob": {"type": "number"},
                "edge_percent": {"type": "number"},
                "kelly_stake": {"type": "number"}
            }
        },
        "models.MatchPrediction": {
            "type": "object",
            "properties": {
                "radiant_win_prob": {"type": "number"},
                "dire_win_prob": {"type": "number"},
                "expected_winner": {"type": "string"},
                "expected_duration_min": {"type": "number"},
                "confidence": {"type": "number"},
                "method": {"type": "string"},
                "factors": {"type": "array", "items": {"type": "string"}},
                "generated_at": {"type": "string"}
            }
        },
        "models.Analysis": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "source": {"type": "string"},
                "input": {"type": "string"},
                "radiant_team": {"type": "string"},
                "dire_team": {"type": "string"},
                "radiant_heroes": {"type": "array", "items": {"type": "string"}},
                "dire_heroes": {"type": "array", "items": {"type": "string"}},
                "markets": {"type": "array", "items": {"$ref": "#/definitions/models.Market"}},
                "prediction": {"$ref": "#/definitions/models.MatchPrediction"},
                "value_bets": {"type": "array", "items": {"$ref": "#/definitions/models.ValueBet"}},
                "warnings": {"type": "array", "items": {"type": "string"}},
                "created_at": {"type": "string"}
            }
        },
        "models.HistoryStats": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "by_source": {"type": "object", "additionalProperties": {"type": "integer"}},
                "with_value_bets": {"type": "integer"},
                "value_bets_found": {"type": "integer"},
                "avg_best_edge": {"type": "number"},
                "last_created_at": {"type": "string"}
            }
        },
        "models.WinRateRow": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "games": {"type": "integer"},
                "wins": {"type": "integer"},
                "losses": {"type": "integer"},
                "win_rate": {"type": "number"}
            }
        },
        "models.HeroMatchup": {
            "type": "object",
            "properties": {
                "hero_id": {"type": "integer"},
                "opponent_id": {"type": "integer"},
                "opponent": {"type": "string"},
                "games": {"type": "integer"},
                "wins": {"type": "integer"},
                "win_rate": {"type": "number"}
            }
        },
        "models.SideMetrics": {
            "type": "object",
            "properties": {
                "wins": {"type": "integer"},
                "losses": {"type": "integer"},
                "win_rate": {"type": "number"},
                "avg_kills": {"type": "number"},
                "avg_duration_min": {"type": "number"},
                "top_hero": {"type": "string"}
            }
        },
        "models.SideStats": {
            "type": "object",
            "properties": {
                "radiant": {"$ref": "#/definitions/models.SideMetrics"},
                "dire": {"$ref": "#/definitions/models.SideMetrics"},
                "matches": {"type": "integer"}
            }
        },
        "models.HeadToHead": {
            "type": "object",
            "properties": {
                "team_a": {"type": "string"},
                "team_b": {"type": "string"},
                "matches": {"type": "integer"},
                "wins_a": {"type": "integer"},
                "wins_b": {"type": "integer"},
                "win_rate_a": {"type": "number"},
                "avg_duration_min": {"type": "number"},
                "avg_total_kills": {"type": "number"}
            }
        },
        "logic.DynamicQueryRequest": {
            "type": "object",
            "properties": {
                "dimension": {"type": "string", "enum": ["hero", "team", "side", "league", "patch", "account"]},
                "metric": {"type": "string", "enum": ["games", "wins", "win_rate", "avg_duration", "avg_kills", "avg_gpm", "avg_xpm"]},
                "filter_hero": {"type": "integer"},
                "filter_team": {"type": "string"},
                "filter_league": {"type": "string"},
                "filter_side": {"type": "string"},
                "filter_patch": {"type": "integer"},
                "min_games": {"type": "integer"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "limit": {"type": "integer"}
            }
        },
        "logic.QueryResult": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "value": {"type": "number"},
                "games": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Oráculo Stats API",
	Description:      "Dota 2 esports statistics, match predictions and value bet detection.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
