package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Residence Portal API",
        "description": "Request lifecycle engine for a student residence: guest visits, sleepovers, maintenance and complaints",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Requests", "description": "Submit, list and transition guest, sleepover, maintenance and complaint requests"},
        {"name": "Notifications", "description": "Per-user notification feed and live stream"},
        {"name": "Announcements", "description": "Residence-wide notices"},
        {"name": "Applications", "description": "Residence applications and communication logs"},
        {"name": "Dashboard", "description": "Request volume analytics, daily report and exports"},
        {"name": "Security", "description": "Shared guest checkout PIN"}
    ],
    "paths": {
        "/auth/me": {
            "get": {"tags": ["Authentication"], "summary": "Current identity", "responses": {"200": {"$ref": "#/responses/OK"}, "401": {"$ref": "#/responses/Error"}}}
        },
        "/requests/{kind}": {
            "parameters": [{"$ref": "#/parameters/kind"}],
            "get": {
                "tags": ["Requests"],
                "summary": "List requests of a kind",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "userId", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["createdAt", "updatedAt", "checkInTime", "checkOutTime", "signOutTime", "status"]},
                    {"name": "order", "in": "query", "type": "string", "enum": ["asc", "desc"]},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"$ref": "#/responses/OK"}, "403": {"$ref": "#/responses/Error"}}
            },
            "post": {
                "tags": ["Requests"],
                "summary": "Submit a request",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"201": {"$ref": "#/responses/OK"}, "400": {"$ref": "#/responses/Error"}}
            }
        },
        "/requests/{kind}/{id}": {
            "parameters": [{"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/id"}],
            "get": {"tags": ["Requests"], "summary": "Get a request", "responses": {"200": {"$ref": "#/responses/OK"}, "404": {"$ref": "#/responses/Error"}}}
        },
        "/requests/{kind}/{id}/transitions": {
            "parameters": [{"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/id"}],
            "post": {
                "tags": ["Requests"],
                "summary": "Apply a lifecycle action",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionRequest"}}],
                "responses": {"200": {"$ref": "#/responses/OK"}, "403": {"$ref": "#/responses/Error"}, "409": {"$ref": "#/responses/Error"}}
            }
        },
        "/notifications": {
            "get": {"tags": ["Notifications"], "summary": "List my notifications", "responses": {"200": {"$ref": "#/responses/OK"}}}
        },
        "/notifications/unread-count": {
            "get": {"tags": ["Notifications"], "summary": "Unread notification count", "responses": {"200": {"$ref": "#/responses/OK"}}}
        },
        "/notifications/{id}/read": {
            "parameters": [{"$ref": "#/parameters/id"}],
            "post": {"tags": ["Notifications"], "summary": "Mark one notification read", "responses": {"200": {"$ref": "#/responses/OK"}, "404": {"$ref": "#/responses/Error"}}}
        },
        "/notifications/read-all": {
            "post": {"tags": ["Notifications"], "summary": "Mark every notification read", "responses": {"200": {"$ref": "#/responses/OK"}}}
        },
        "/notifications/stream": {
            "get": {"tags": ["Notifications"], "summary": "Websocket notification stream", "parameters": [{"name": "access_token", "in": "query", "type": "string"}], "responses": {"101": {"description": "Switching Protocols"}}}
        },
        "/announcements": {
            "get": {"tags": ["Announcements"], "summary": "List announcements", "responses": {"200": {"$ref": "#/responses/OK"}}},
            "post": {"tags": ["Announcements"], "summary": "Publish an announcement", "responses": {"201": {"$ref": "#/responses/OK"}, "403": {"$ref": "#/responses/Error"}}}
        },
        "/announcements/{id}": {
            "parameters": [{"$ref": "#/parameters/id"}],
            "put": {"tags": ["Announcements"], "summary": "Update an announcement", "responses": {"200": {"$ref": "#/responses/OK"}}},
            "delete": {"tags": ["Announcements"], "summary": "Delete an announcement", "responses": {"204": {"description": "Deleted"}}}
        },
        "/applications": {
            "get": {"tags": ["Applications"], "summary": "List residence applications", "responses": {"200": {"$ref": "#/responses/OK"}}}
        },
        "/applications/{id}": {
            "parameters": [{"$ref": "#/parameters/id"}],
            "get": {"tags": ["Applications"], "summary": "Get an applicant or resident profile", "responses": {"200": {"$ref": "#/responses/OK"}}}
        },
        "/applications/{id}/decision": {
            "parameters": [{"$ref": "#/parameters/id"}],
            "post": {"tags": ["Applications"], "summary": "Accept or deny an application", "responses": {"200": {"$ref": "#/responses/OK"}, "409": {"$ref": "#/responses/Error"}}}
        },
        "/applications/{id}/messages": {
            "parameters": [{"$ref": "#/parameters/id"}],
            "post": {"tags": ["Applications"], "summary": "Add a message to a communication log", "responses": {"200": {"$ref": "#/responses/OK"}}}
        },
        "/dashboard/analytics": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Request volume per bucket",
                "parameters": [
                    {"name": "window", "in": "query", "type": "string", "enum": ["days", "weeks", "months"]},
                    {"name": "buckets", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"$ref": "#/responses/OK"}}
            }
        },
        "/dashboard/analytics/refresh": {
            "post": {"tags": ["Dashboard"], "summary": "Recompute the request volume series", "responses": {"200": {"$ref": "#/responses/OK"}}}
        },
        "/dashboard/reports/daily": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Daily request report",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date"},
                    {"name": "detailed", "in": "query", "type": "boolean"}
                ],
                "responses": {"200": {"$ref": "#/responses/OK"}}
            }
        },
        "/dashboard/reports/daily/export": {
            "post": {"tags": ["Dashboard"], "summary": "Export the daily report as CSV or PDF", "responses": {"201": {"$ref": "#/responses/OK"}}}
        },
        "/exports/{token}": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Download an exported report",
                "security": [],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "produces": ["text/csv", "application/pdf"],
                "responses": {"200": {"description": "File"}, "403": {"$ref": "#/responses/Error"}}
            }
        },
        "/security/checkout-pin": {
            "get": {"tags": ["Security"], "summary": "Current guest checkout PIN", "responses": {"200": {"$ref": "#/responses/OK"}}},
            "put": {"tags": ["Security"], "summary": "Replace the guest checkout PIN", "responses": {"200": {"$ref": "#/responses/OK"}}}
        }
    },
    "parameters": {
        "kind": {"name": "kind", "in": "path", "required": true, "type": "string", "enum": ["guest", "sleepover", "maintenance", "complaint"]},
        "id": {"name": "id", "in": "path", "required": true, "type": "string"}
    },
    "responses": {
        "OK": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
        "Error": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
    },
    "definitions": {
        "TransitionRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "enum": ["approve", "reject", "start", "complete", "resolve", "checkout", "sign_out", "decline"]},
                "response": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
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
