// Package docs holds the OpenAPI document served at /swagger. Regenerate with
// swag init -g cmd/server/main.go -o docs.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Alfred Support",
            "email": "support@alfred.dev"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["identity"],
                "summary": "Current user with plan and facet",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["identity"],
                "summary": "Update profile and default facet",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/facets": {
            "get": {
                "tags": ["identity"],
                "summary": "List assistant facets",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/conversations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["conversations"],
                "summary": "List conversations",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["conversations"],
                "summary": "Create a conversation",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/conversations/{id}/messages": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["text/event-stream"],
                "tags": ["conversations"],
                "summary": "Send a message and stream the reply",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "token, done or error events"}, "429": {"description": "Quota exceeded"}}
            }
        },
        "/projects": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["projects"],
                "summary": "List builder projects",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["projects"],
                "summary": "Create a project",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/projects/{id}/generate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["projects"],
                "summary": "Generate project files from a prompt",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "429": {"description": "Quota exceeded"}}
            }
        },
        "/projects/{id}/deployments": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["deployments"],
                "summary": "Deploy to Vercel with automatic build fixes",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"202": {"description": "Accepted"}, "422": {"description": "Empty project"}}
            }
        },
        "/deployments/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["deployments"],
                "summary": "Deployment status and attempts",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/domains/check": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["domains"],
                "summary": "Check availability and price",
                "parameters": [{"type": "string", "name": "name", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/domains/checkout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["domains"],
                "summary": "Start a domain purchase checkout",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Unavailable"}}
            }
        },
        "/projects/{id}/seo/analyze": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["seo"],
                "summary": "Analyze the project's HTML pages",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "No HTML pages"}}
            }
        },
        "/billing/plans": {
            "get": {
                "tags": ["billing"],
                "summary": "Plan table",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/billing/checkout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["billing"],
                "summary": "Open a subscription checkout",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Stripe unavailable"}}
            }
        },
        "/personas/{id}/renders": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["personas"],
                "summary": "Submit a studio render job",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"202": {"description": "Accepted"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer token issued by the identity provider. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Alfred API",
	Description:      "Chat, build, deploy and publish web projects with an AI assistant.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
