// Package swagger holds the OpenAPI document served at /docs. Regenerate
// with `swag init -g cmd/api-gateway/main.go -o api/swagger` after changing
// handler annotations.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
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
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Authenticate a user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "token pair and user info"},
                    "401": {"description": "invalid credentials"}
                }
            }
        },
        "/requests": {
            "get": {
                "tags": ["requests"],
                "summary": "List requests visible to the caller",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "description": "comma separated statuses"},
                    {"name": "type", "in": "query", "type": "string", "enum": ["cc", "exam"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "request list"}}
            },
            "post": {
                "tags": ["requests"],
                "summary": "Submit a contestation request",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "created request"},
                    "400": {"description": "validation failure"}
                }
            }
        },
        "/requests/{id}": {
            "get": {
                "tags": ["requests"],
                "summary": "Fetch one request",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "request"}, "404": {"description": "not found"}}
            },
            "put": {
                "tags": ["requests"],
                "summary": "Edit an unacknowledged request",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "updated request"}, "403": {"description": "no longer editable"}}
            },
            "delete": {
                "tags": ["requests"],
                "summary": "Delete an unacknowledged request",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "deleted"}, "403": {"description": "no longer deletable"}}
            }
        },
        "/requests/{id}/acknowledge": {
            "post": {
                "tags": ["workflow"],
                "summary": "Acknowledge receipt of a request",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "request now received"}, "409": {"description": "invalid transition"}}
            }
        },
        "/requests/{id}/decision": {
            "post": {
                "tags": ["workflow"],
                "summary": "Approve or reject a request",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "decision applied"}, "409": {"description": "invalid transition"}}
            }
        },
        "/requests/{id}/send-to-cellule": {
            "post": {
                "tags": ["workflow"],
                "summary": "Forward an approved request to the IT cell",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "request in the cell"}, "409": {"description": "invalid transition"}}
            }
        },
        "/requests/{id}/return": {
            "post": {
                "tags": ["workflow"],
                "summary": "Hand a request back from the IT cell",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "request returned"}, "409": {"description": "invalid transition"}}
            }
        },
        "/requests/{id}/complete": {
            "post": {
                "tags": ["workflow"],
                "summary": "Close a request with its final disposition",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "request closed"}, "409": {"description": "invalid transition"}}
            }
        },
        "/requests/{id}/logs": {
            "get": {
                "tags": ["requests"],
                "summary": "Read the audit ledger of a request",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "chronological ledger"}}
            }
        },
        "/requests/{id}/attachments": {
            "get": {
                "tags": ["attachments"],
                "summary": "List attachments with signed links",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "attachment list"}}
            },
            "post": {
                "tags": ["attachments"],
                "summary": "Attach a file to a request",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {"201": {"description": "stored attachment"}, "400": {"description": "rejected file"}}
            }
        },
        "/notifications": {
            "get": {
                "tags": ["notifications"],
                "summary": "List the caller's notifications",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "inbox"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Grade Contestation API",
	Description:      "Workflow service for student grade contestation requests.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
