// Package server registers the swagger document served at /swagger/.
// Regenerate with: swag init -g internal/server/http/router.go -o api/server --parseDependency
package server

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/stackplate"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "headers": {"Authorization": {"type": "string", "description": "Bearer {session token}"}}, "schema": {"$ref": "#/definitions/authsdk.UserInfo"}},
                    "400": {"description": "MissingFields, InvalidEmail or BadRequest (malformed body, username containing @)", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "409": {"description": "UserAlreadyExists", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "500": {"description": "ServerError", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Login",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.LoginRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "headers": {"Authorization": {"type": "string", "description": "Bearer {session token}"}}, "schema": {"$ref": "#/definitions/authsdk.UserInfo"}},
                    "401": {"description": "WrongCredentials", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "404": {"description": "UserDoesNotExist", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "429": {"description": "TooManyRequests", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/auth/request": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Request an access token",
                "responses": {
                    "201": {"description": "Created", "headers": {"Authorization": {"type": "string", "description": "Bearer {access token}"}}},
                    "403": {"description": "InvalidToken or AccessDenied", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "500": {"description": "TokenCreation", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/auth/test": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/plain"],
                "tags": ["Auth"],
                "summary": "Check an access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "403": {"description": "InvalidToken", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/auth/reset": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["Reset"],
                "summary": "Request a password reset",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.ResetRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "InvalidEmail", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "404": {"description": "UserDoesNotExist", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "500": {"description": "ServerError", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/auth/reset/{key}": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["Reset"],
                "summary": "Reset a password",
                "parameters": [
                    {"type": "string", "description": "reset key from the mailed link", "name": "key", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.ResetPasswordRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "ResetLinkInvalid or MissingFields", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "404": {"description": "UserDoesNotExist", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/user/info": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Get my user information",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.UserInfo"}},
                    "403": {"description": "InvalidToken", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "404": {"description": "UserDoesNotExist", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/user/all": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/authsdk.UserInfo"}}},
                    "403": {"description": "InvalidToken or AccessDenied", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/user": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Users"],
                "summary": "Delete a user",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.DeleteUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "InvalidToken or AccessDenied", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "404": {"description": "UserDoesNotExist", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/ws": {
            "get": {
                "tags": ["Chat"],
                "summary": "Join the chat room",
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/livez": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version, checks", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}},
                    "503": {"description": "service not ready", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "authsdk.APIError": {
            "type": "object",
            "properties": {
                "error_type": {"type": "string", "example": "WrongCredentials"},
                "message": {"type": "string"}
            }
        },
        "authsdk.RegisterRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string", "example": "alice"},
                "pass": {"type": "string", "example": "correct horse battery staple"},
                "email": {"type": "string", "example": "alice@example.com"}
            }
        },
        "authsdk.LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string", "example": "alice"},
                "pass": {"type": "string", "example": "correct horse battery staple"}
            }
        },
        "authsdk.ResetRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "alice@example.com"}
            }
        },
        "authsdk.ResetPasswordRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "alice@example.com"},
                "pass": {"type": "string", "example": "a brand new password"}
            }
        },
        "authsdk.DeleteUserRequest": {
            "type": "object",
            "properties": {
                "uuid": {"type": "string"}
            }
        },
        "authsdk.UserInfo": {
            "type": "object",
            "properties": {
                "uuid": {"type": "string"},
                "username": {"type": "string", "example": "alice"},
                "email": {"type": "string", "example": "alice@example.com"},
                "is_admin": {"type": "boolean", "example": false}
            }
        },
        "authsdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string"},
                "reset_store": {"type": "string"}
            }
        },
        "authsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "service": {"type": "string", "example": "stackplate"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"$ref": "#/definitions/authsdk.HealthChecks"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Session or access token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:3001",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Stackplate API",
	Description:      "Username/password accounts with a two token session scheme, password reset by email and a broadcast chat room.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
