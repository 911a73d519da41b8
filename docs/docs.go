// Package docs registers the OpenAPI description served under /swagger.
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in and receive a bearer token",
                "parameters": [
                    {"description": "Credentials", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.LoginInput"}}
                ],
                "responses": {
                    "200": {"description": "token and user", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorBody"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/challenges": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["challenges"],
                "summary": "Challenge a teammate",
                "parameters": [
                    {"description": "Opponent, witness and optional team", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateChallengeInput"}}
                ],
                "responses": {
                    "201": {"description": "challenge", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorBody"}},
                    "404": {"description": "Player has no active membership", "schema": {"$ref": "#/definitions/handlers.errorBody"}},
                    "409": {"description": "Team cannot be determined", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/challenges/{challengeID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["challenges"],
                "summary": "Get a challenge",
                "parameters": [
                    {"type": "integer", "description": "Challenge ID", "name": "challengeID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "challenge", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/challenges/{challengeID}/accept": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["challenges"],
                "summary": "Accept a pending challenge",
                "parameters": [
                    {"type": "integer", "description": "Challenge ID", "name": "challengeID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "challenge", "schema": {"type": "object", "additionalProperties": true}},
                    "403": {"description": "Not the opponent or not pending", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/challenges/{challengeID}/decline": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["challenges"],
                "summary": "Decline a pending challenge",
                "parameters": [
                    {"type": "integer", "description": "Challenge ID", "name": "challengeID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "challenge", "schema": {"type": "object", "additionalProperties": true}},
                    "403": {"description": "Not the opponent or not pending", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/challenges/{challengeID}/outcome": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Only the witness may call this, once. Ranks are swapped when the winner stood below the loser.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["challenges"],
                "summary": "Record the winner of an accepted challenge",
                "parameters": [
                    {"type": "integer", "description": "Challenge ID", "name": "challengeID", "in": "path", "required": true},
                    {"description": "Winner", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.submitOutcomeRequest"}}
                ],
                "responses": {
                    "200": {"description": "outcome", "schema": {"type": "object", "additionalProperties": true}},
                    "403": {"description": "Not the witness or challenge not accepted", "schema": {"$ref": "#/definitions/handlers.errorBody"}},
                    "404": {"description": "Player has no active membership", "schema": {"$ref": "#/definitions/handlers.errorBody"}},
                    "409": {"description": "Outcome already recorded or team ambiguous", "schema": {"$ref": "#/definitions/handlers.errorBody"}},
                    "422": {"description": "Winner is not a participant", "schema": {"$ref": "#/definitions/handlers.errorBody"}},
                    "503": {"description": "Retry later", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/me/challenges": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["challenges"],
                "summary": "List challenges the current user plays or witnesses",
                "parameters": [
                    {"type": "string", "description": "pending, accepted, declined or completed", "name": "status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "challenges", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/teams/{teamID}/ladder": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ladder"],
                "summary": "Team ladder ordered by rank",
                "parameters": [
                    {"type": "integer", "description": "Team ID", "name": "teamID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "team with members", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/teams/{teamID}/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ladder"],
                "summary": "Rank changes in a team, newest first",
                "parameters": [
                    {"type": "integer", "description": "Team ID", "name": "teamID", "in": "path", "required": true},
                    {"type": "integer", "description": "Only this player's changes", "name": "user_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "history", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/ws/teams/{teamID}": {
            "get": {
                "tags": ["ladder"],
                "summary": "Live ladder and challenge events of a team",
                "parameters": [
                    {"type": "integer", "description": "Team ID", "name": "teamID", "in": "path", "required": true}
                ],
                "responses": {}
            }
        }
    },
    "definitions": {
        "handlers.errorBody": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "handlers.submitOutcomeRequest": {
            "type": "object",
            "properties": {
                "winner_id": {"type": "integer"}
            }
        },
        "services.CreateChallengeInput": {
            "type": "object",
            "properties": {
                "banned_agent": {"type": "object"},
                "opponent_id": {"type": "integer"},
                "team_id": {"type": "integer"},
                "witness_id": {"type": "integer"}
            }
        },
        "services.LoginInput": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Rank Ladder API",
	Description:      "Team ladders, challenges and witnessed outcomes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
