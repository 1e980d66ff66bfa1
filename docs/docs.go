// Package docs serves the OpenAPI description of the StudyBot API.
// Regenerate with: swag init -g main.go -o docs
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/api/chat": {
            "post": {
                "description": "Runs the tool-calling conversation loop. Streams progress as text/event-stream when stream=true or Accept is text/event-stream.",
                "consumes": ["application/json"],
                "produces": ["application/json", "text/event-stream"],
                "tags": ["chat"],
                "summary": "Chat with the study assistant",
                "parameters": [
                    {"type": "string", "description": "Bearer <Canvas access token>", "name": "Authorization", "in": "header"},
                    {"description": "chat request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ChatResponse"}},
                    "400": {"description": "invalid body or missing message", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "step limit exceeded", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "502": {"description": "model unavailable", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/chat/runs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "List recent chat runs",
                "parameters": [{"type": "integer", "description": "max records (default 20)", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}}
            }
        },
        "/api/chat/runs/{run_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Get a chat run",
                "parameters": [{"type": "string", "description": "run id", "name": "run_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}}
            }
        },
        "/api/study-pack": {
            "post": {
                "description": "Fetches modules, assignments, pages and quizzes concurrently and asks the model for a plain-text study guide.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["study-pack"],
                "summary": "Generate a course study pack",
                "parameters": [
                    {"type": "string", "description": "Bearer <Canvas access token>", "name": "Authorization", "in": "header"},
                    {"description": "course and token", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.StudyPackRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.StudyPackResponse"}},
                    "400": {"description": "missing courseId", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "missing or rejected token", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "502": {"description": "Canvas or model failure", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/canvas/{resource}": {
            "get": {
                "description": "Read-only Canvas proxy. resource is one of courses, modules, assignments, pages, quizzes, files.",
                "produces": ["application/json"],
                "tags": ["canvas"],
                "summary": "Proxy a Canvas collection or item",
                "parameters": [
                    {"type": "string", "name": "resource", "in": "path", "required": true},
                    {"type": "integer", "name": "courseId", "in": "query"},
                    {"type": "integer", "name": "moduleId", "in": "query"},
                    {"type": "integer", "name": "assignmentId", "in": "query"},
                    {"type": "integer", "name": "quizId", "in": "query"},
                    {"type": "integer", "name": "fileId", "in": "query"},
                    {"type": "string", "name": "pageUrl", "in": "query"},
                    {"type": "string", "name": "moduleItemId", "in": "query"},
                    {"type": "string", "name": "token", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "detail": {"type": "string"}
            }
        },
        "model.ChatRequest": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "token": {"type": "string"},
                "stream": {"type": "boolean"}
            }
        },
        "model.ChatResponse": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "message": {"type": "object"},
                "toolTrace": {"type": "array", "items": {"type": "object"}}
            }
        },
        "model.StudyPackRequest": {
            "type": "object",
            "properties": {
                "courseId": {"type": "integer"},
                "token": {"type": "string"}
            }
        },
        "model.StudyPackResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "summary": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "StudyBot API",
	Description:      "Canvas-aware study assistant: tool-calling chat, study packs and a read-only Canvas proxy.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
