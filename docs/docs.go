// Package docs registers the OpenAPI document served under /v1/swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/health": {"get": {"tags": ["ops"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Degraded"}}}},
        "/auth/sync": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Sync the local user record", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/auth/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Current user", "responses": {"200": {"description": "OK"}}}},
        "/workers/jobs/{jobId}/applications": {"post": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Apply to a job",
            "parameters": [{"type": "integer", "name": "jobId", "in": "path", "required": true}],
            "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "429": {"description": "Too Many Requests"}}}},
        "/workers/applications": {"get": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "List my applications",
            "parameters": [{"type": "string", "name": "cursor", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}],
            "responses": {"200": {"description": "OK"}}}},
        "/workers/applications/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Withdraw an application",
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}}},
        "/employers/jobs/{jobId}/applications": {"get": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "List applicants for a job",
            "parameters": [{"type": "integer", "name": "jobId", "in": "path", "required": true}, {"type": "string", "name": "cursor", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/employers/applications/{id}/status": {"patch": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Update application status",
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}}},
        "/applications/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Get an application",
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/workers/experiences": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["experiences"], "summary": "List my work experiences", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["experiences"], "summary": "Add a work experience", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/workers/experiences/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["experiences"], "summary": "Update a work experience",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["experiences"], "summary": "Delete a work experience",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/workers/experiences/{id}/visibility": {"patch": {"security": [{"BearerAuth": []}], "tags": ["experiences"], "summary": "Toggle work experience visibility",
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/workers/profile": {"get": {"security": [{"BearerAuth": []}], "tags": ["experiences"], "summary": "Get my worker profile", "responses": {"200": {"description": "OK"}}}},
        "/employers/workers/{workerId}/experiences": {"get": {"security": [{"BearerAuth": []}], "tags": ["experiences"], "summary": "List a worker's visible work experiences",
            "parameters": [{"type": "string", "name": "workerId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/experiences/{id}/end": {"post": {"security": [{"BearerAuth": []}], "tags": ["experiences"], "summary": "End an employment",
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Hiring Backend API",
	Description:      "Applications, hiring and verified work history.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
