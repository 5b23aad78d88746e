// Package docs registers the OpenAPI description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/votes/validate": {
            "post": {
                "summary": "Check a voter token without consuming it",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/CheckTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "valid", "schema": {"$ref": "#/definitions/CheckTokenResponse"}},
                    "401": {"description": "not_found, already_used or expired", "schema": {"$ref": "#/definitions/CheckTokenResponse"}},
                    "400": {"description": "invalid request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/v1/votes/cast": {
            "post": {
                "summary": "Consume a voter token and record a vote",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/CastVoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "recorded", "schema": {"$ref": "#/definitions/CastVoteResponse"}},
                    "401": {"description": "invalid_or_used_token", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "ballot_not_found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "422": {"description": "invalid_selection or unsupported_ballot_type", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/v1/votes/results/{election_id}/{ballot_id}": {
            "get": {
                "summary": "Current tally for a ballot",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "election_id", "required": true, "type": "string"},
                    {"in": "path", "name": "ballot_id", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "tally", "schema": {"$ref": "#/definitions/BallotResultsResponse"}},
                    "404": {"description": "ballot_not_found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/v1/elections/{election_id}/tokens": {
            "post": {
                "summary": "Issue one-time voter tokens",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "header", "name": "X-Organizer-Id", "required": true, "type": "string"},
                    {"in": "path", "name": "election_id", "required": true, "type": "string"},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/IssueTokensRequest"}}
                ],
                "responses": {
                    "201": {"description": "issued", "schema": {"$ref": "#/definitions/IssueTokensResponse"}},
                    "400": {"description": "invalid request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "CheckTokenRequest": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "election_id": {"type": "string"}}
        },
        "CheckTokenResponse": {
            "type": "object",
            "properties": {"valid": {"type": "boolean"}, "reason": {"type": "string", "enum": ["not_found", "already_used", "expired"]}}
        },
        "CastVoteRequest": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "election_id": {"type": "string"},
                "ballot_id": {"type": "string"},
                "option_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CastVoteResponse": {
            "type": "object",
            "properties": {
                "recorded": {"type": "boolean"},
                "election_id": {"type": "string"},
                "ballot_id": {"type": "string"},
                "option_ids": {"type": "array", "items": {"type": "string"}},
                "recorded_at": {"type": "string", "format": "date-time"}
            }
        },
        "OptionCountItem": {
            "type": "object",
            "properties": {"option_id": {"type": "string"}, "text": {"type": "string"}, "count": {"type": "integer"}}
        },
        "BallotResultsResponse": {
            "type": "object",
            "properties": {
                "election_id": {"type": "string"},
                "ballot_id": {"type": "string"},
                "ballot_title": {"type": "string"},
                "ballot_type": {"type": "string"},
                "total_votes": {"type": "integer"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/OptionCountItem"}},
                "computed_at": {"type": "string", "format": "date-time"}
            }
        },
        "IssueTokensRequest": {
            "type": "object",
            "properties": {
                "emails": {"type": "array", "items": {"type": "string"}},
                "count": {"type": "integer"},
                "expiry_hours": {"type": "integer"}
            }
        },
        "IssueTokensResponse": {
            "type": "object",
            "properties": {
                "election_id": {"type": "string"},
                "expires_at": {"type": "string", "format": "date-time"},
                "count": {"type": "integer"},
                "tokens": {
                    "type": "array",
                    "items": {"type": "object", "properties": {"email": {"type": "string"}, "token": {"type": "string"}}}
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ballotbox API",
	Description:      "One-time voter credentials, vote casting and tallies.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
