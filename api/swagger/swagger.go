package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Nippo API",
        "description": "Daily activity report service: schedule reconciliation, draft editing and submission",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Sessions", "description": "Report editing sessions"},
        {"name": "Events", "description": "Schedule events within a session"},
        {"name": "Report", "description": "Report body operations"},
        {"name": "Lookups", "description": "Form-support lookups"}
    ],
    "paths": {
        "/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Open an editing session for a report date",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Current document view",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Sessions"],
                "summary": "Close a session, discarding unsaved state",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/sessions/{id}/refresh": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Re-fetch the day's calendar and merge it into the schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/reset": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Discard all local events and edits in favor of a fresh fetch",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Confirmation required"}
                }
            }
        },
        "/sessions/{id}/save": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Save the current document as a draft",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Save or submit already in progress"}
                }
            }
        },
        "/sessions/{id}/submit": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Finalize the report for the day",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already finalized or in progress"}
                }
            }
        },
        "/sessions/{id}/export": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Export the document as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/sessions/{id}/events": {
            "post": {
                "tags": ["Events"],
                "summary": "Add a manual event to the schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/events/{eventId}": {
            "patch": {
                "tags": ["Events"],
                "summary": "Patch an event's title or time range",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "eventId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid time range"},
                    "404": {"description": "Event not found"}
                }
            },
            "delete": {
                "tags": ["Events"],
                "summary": "Remove an event regardless of source",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "eventId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/sessions/{id}/report": {
            "put": {
                "tags": ["Report"],
                "summary": "Replace the report body",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetReportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Length limit exceeded"}
                }
            }
        },
        "/sessions/{id}/report/quick-insert": {
            "post": {
                "tags": ["Report"],
                "summary": "Append a template snippet to the report body",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/QuickInsertRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Length limit exceeded"}
                }
            }
        },
        "/time-options": {
            "get": {
                "tags": ["Lookups"],
                "summary": "List selectable start/end times in quarter-hour steps",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dates": {
            "get": {
                "tags": ["Lookups"],
                "summary": "Resolve a date relative to a base date in the report timezone",
                "parameters": [
                    {"name": "base", "in": "query", "type": "string"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/templates": {
            "get": {
                "tags": ["Lookups"],
                "summary": "List the configured quick-insert templates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ScheduleEvent": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "start": {"type": "string"},
                "end": {"type": "string"},
                "source": {"type": "string", "enum": ["FETCHED", "MANUAL"]},
                "edited": {"type": "boolean"}
            }
        },
        "ReportBody": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "length": {"type": "integer"}
            }
        },
        "SessionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "date": {"type": "string"},
                "status": {"type": "string", "enum": ["DRAFT", "SUBMITTED"]},
                "state": {"type": "string", "enum": ["EDITING", "SAVING", "SUBMITTING", "SUBMITTED"]},
                "events": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ScheduleEvent"}
                },
                "report": {"$ref": "#/definitions/ReportBody"},
                "quality": {"type": "string", "enum": ["BELOW_MINIMUM", "ACCEPTABLE", "OVER_GUIDANCE"]}
            }
        },
        "CreateSessionRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2025-09-01"}
            },
            "required": ["date"]
        },
        "ResetRequest": {
            "type": "object",
            "properties": {
                "confirm": {"type": "boolean"}
            }
        },
        "CreateEventRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "start": {"type": "string"},
                "end": {"type": "string"}
            },
            "required": ["title", "start", "end"]
        },
        "UpdateEventRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "start": {"type": "string"},
                "end": {"type": "string"}
            }
        },
        "SetReportRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"}
            }
        },
        "QuickInsertRequest": {
            "type": "object",
            "properties": {
                "template": {"type": "string"}
            },
            "required": ["template"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
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
