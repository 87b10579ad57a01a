// Package docs registers the API description served under /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Todos", "description": "Todo list operations"},
        {"name": "Reminders", "description": "Reminder operations and notification scheduling"},
        {"name": "Agenda", "description": "Schedule and calendar views"}
    ],
    "paths": {
        "/health": {"get": {"tags": ["Health"], "summary": "Database health", "security": [], "responses": {"200": {"description": "OK"}, "503": {"description": "Database unavailable"}}}},
        "/todos": {
            "get": {"tags": ["Todos"], "summary": "List todos", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Todos"], "summary": "Create or replace a todo", "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid request"}}},
            "put": {"tags": ["Todos"], "summary": "Replace the whole list atomically", "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid request"}}}
        },
        "/todos/stream": {"get": {"tags": ["Todos"], "summary": "Server-sent events with the list after every change", "produces": ["text/event-stream"], "responses": {"200": {"description": "Event stream"}}}},
        "/todos/{id}": {
            "get": {"tags": ["Todos"], "summary": "Get a todo", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "delete": {"tags": ["Todos"], "summary": "Delete a todo", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/todos/{id}/reminders": {
            "get": {"tags": ["Reminders"], "summary": "Reminders of a todo", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Reminders"], "summary": "Cancel and delete reminders of a todo", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/reminders": {
            "get": {"tags": ["Reminders"], "summary": "List reminders, optionally within [from, to]", "parameters": [{"name": "from", "in": "query", "type": "integer"}, {"name": "to", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid range"}}},
            "post": {"tags": ["Reminders"], "summary": "Create a reminder and schedule its notification", "responses": {"201": {"description": "Created"}}}
        },
        "/reminders/{id}": {
            "get": {"tags": ["Reminders"], "summary": "Get a reminder", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["Reminders"], "summary": "Replace a reminder and reschedule it", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "delete": {"tags": ["Reminders"], "summary": "Delete a reminder and cancel it", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/schedule": {"get": {"tags": ["Agenda"], "summary": "Dated todos and reminders grouped by day", "responses": {"200": {"description": "OK"}}}},
        "/calendar": {"get": {"tags": ["Agenda"], "summary": "Items of one day", "parameters": [{"name": "date", "in": "query", "required": true, "type": "string", "format": "date"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid date"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Todolist API",
	Description:      "Local API over the todo list, reminders and schedule.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
