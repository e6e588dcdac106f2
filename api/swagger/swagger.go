// Package swagger holds the hand-maintained OpenAPI document served under /docs.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "gophauth",
        "description": "Token lifecycle service: registration, login, refresh rotation and logout",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "auth", "description": "Token lifecycle"},
        {"name": "user", "description": "Authenticated user"},
        {"name": "system", "description": "Probes"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["system"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/AuthEnvelope"}},
                    "400": {"description": "Validation or directory error", "schema": {"$ref": "#/definitions/Envelope"}},
                    "409": {"description": "User already exists", "schema": {"$ref": "#/definitions/Envelope"}},
                    "502": {"description": "Directory unavailable", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Authenticate with username and password",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/AuthEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Envelope"}},
                    "403": {"description": "Account disabled", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/auth/refresh": {
            "post": {
                "tags": ["auth"],
                "summary": "Rotate a refresh token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "New token pair", "schema": {"$ref": "#/definitions/AuthEnvelope"}},
                    "400": {"description": "Wrong token type", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Invalid, expired or unknown token", "schema": {"$ref": "#/definitions/Envelope"}},
                    "403": {"description": "Account disabled", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/auth/logout": {
            "delete": {
                "tags": ["auth"],
                "summary": "End the user's session",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "Logout result", "schema": {"$ref": "#/definitions/LogoutEnvelope"}},
                    "400": {"description": "Wrong token type", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Invalid token", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/user/profile": {
            "get": {
                "tags": ["user"],
                "summary": "Current user profile",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Profile", "schema": {"$ref": "#/definitions/ProfileEnvelope"}},
                    "401": {"description": "Missing or invalid access token", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["username", "email", "password"],
            "properties": {
                "username": {"type": "string", "example": "john_doe"},
                "email": {"type": "string", "format": "email", "example": "john.doe@example.com"},
                "password": {"type": "string", "example": "password123"},
                "firstName": {"type": "string", "example": "John"},
                "lastName": {"type": "string", "example": "Doe"},
                "phoneNumber": {"type": "string", "example": "+1234567890"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "required": ["refreshToken"],
            "properties": {
                "refreshToken": {"type": "string"}
            }
        },
        "AuthResponse": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "refreshToken": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "LogoutResult": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "string"},
                "wasActiveSession": {"type": "boolean"}
            }
        },
        "Profile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "phoneNumber": {"type": "string"},
                "role": {"type": "string"},
                "active": {"type": "boolean"}
            }
        },
        "FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "rule": {"type": "string"},
                "param": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "array", "items": {"$ref": "#/definitions/FieldError"}}
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"}
            }
        },
        "AuthEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/AuthResponse"}
            }
        },
        "LogoutEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/LogoutResult"}
            }
        },
        "ProfileEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Profile"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
