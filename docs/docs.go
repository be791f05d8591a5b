// Package docs registers the OpenAPI document for the HTTP API with swag.
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
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Create a password account",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/User"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Error"}},
                    "422": {"description": "Email already exists", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign in with email and password; sets the session cookie",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Error"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/auth/external": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign in with an OpenID Connect ID token; sets the session cookie",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ExternalSignInRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}},
                    "401": {"description": "Token rejected", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "External sign-in not configured", "schema": {"$ref": "#/definitions/Error"}},
                    "503": {"description": "Identity provider unavailable", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Revoke the current session and clear the cookie",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/current": {
            "get": {
                "tags": ["users"],
                "summary": "Signed-in user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}},
                    "401": {"description": "Not signed in", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/movies": {
            "get": {
                "tags": ["movies"],
                "summary": "List the catalog",
                "produces": ["application/json", "application/x-ndjson"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Movie"}}}
                }
            }
        },
        "/movies/random": {
            "get": {
                "tags": ["movies"],
                "summary": "A uniformly random movie",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Movie"}},
                    "404": {"description": "Catalog is empty", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/movies/{movieId}": {
            "get": {
                "tags": ["movies"],
                "summary": "One movie",
                "parameters": [{"in": "path", "name": "movieId", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Movie"}},
                    "401": {"description": "Not signed in", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Invalid id", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/favorite": {
            "post": {
                "tags": ["favorites"],
                "summary": "Add a movie to the signed-in user's favorites",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/FavoriteRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}},
                    "401": {"description": "Not signed in", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Invalid id", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "delete": {
                "tags": ["favorites"],
                "summary": "Remove a movie from the signed-in user's favorites",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/FavoriteRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}},
                    "401": {"description": "Not signed in", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Invalid id or not a favorite", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/favorites": {
            "get": {
                "tags": ["favorites"],
                "summary": "Movies in the signed-in user's favorites",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Movie"}}},
                    "401": {"description": "Not signed in", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        }
    },
    "definitions": {
        "Error": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "code": {"type": "string"}}
        },
        "User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "image": {"type": "string"},
                "favoriteIds": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "Movie": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "videoUrl": {"type": "string"},
                "thumbnailUrl": {"type": "string"},
                "genre": {"type": "string"},
                "duration": {"type": "string"}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "name"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "name": {"type": "string"}}
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "ExternalSignInRequest": {
            "type": "object",
            "required": ["idToken"],
            "properties": {"idToken": {"type": "string"}}
        },
        "FavoriteRequest": {
            "type": "object",
            "required": ["movieId"],
            "properties": {"movieId": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "go-flix API",
	Description:      "Movie catalog, sessions and per-user favorites.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
