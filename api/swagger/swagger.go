package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Study Planner API",
        "description": "Allocates study hours across subjects and dates, keeps proposals and versioned plans, and exports schedules as CSV, ICS or PDF.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Planner", "description": "Stateless weight, split and allocation endpoints"},
        {"name": "StudyPlans", "description": "Proposals and saved plan versions"},
        {"name": "Exports", "description": "CSV, ICS and PDF downloads"}
    ],
    "paths": {
        "/planner/weights": {
            "post": {
                "tags": ["Planner"],
                "summary": "Compute subject weights",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ComputeWeightsRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/split": {
            "post": {
                "tags": ["Planner"],
                "summary": "Split total hours across weights",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SplitHoursRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/schedule": {
            "post": {
                "tags": ["Planner"],
                "summary": "Place hour budgets onto a date window",
                "description": "A capacity shortfall is reported under meta.warnings with code INSUFFICIENT_CAPACITY.",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BuildScheduleRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/study-plans/generate": {
            "post": {
                "tags": ["StudyPlans"],
                "summary": "Generate a study plan proposal",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateStudyPlanRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/study-plans/proposals/{id}": {
            "get": {
                "tags": ["StudyPlans"],
                "summary": "Fetch a stored proposal",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Proposal expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/study-plans/proposals/{id}/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a proposal",
                "produces": ["text/csv", "text/calendar", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "ics", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "404": {"description": "Proposal expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/study-plans": {
            "get": {
                "tags": ["StudyPlans"],
                "summary": "List saved study plans",
                "parameters": [
                    {"name": "owner", "in": "query", "type": "string"},
                    {"name": "title", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["DRAFT", "ACTIVE", "ARCHIVED"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["StudyPlans"],
                "summary": "Save a proposal as a new plan version",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveStudyPlanRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Proposal expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/study-plans/{id}": {
            "get": {
                "tags": ["StudyPlans"],
                "summary": "Get a saved plan",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["StudyPlans"],
                "summary": "Delete a draft plan",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Plan is not a draft", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/study-plans/{id}/activate": {
            "post": {
                "tags": ["StudyPlans"],
                "summary": "Mark a plan version active",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/study-plans/{id}/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue an export of a saved plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExportRequest"}}
                ],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports/jobs/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Get export job status",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SubjectRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "difficulty": {"type": "integer", "minimum": 1, "maximum": 5},
                "confidence": {"type": "integer", "minimum": 1, "maximum": 5}
            },
            "required": ["name"]
        },
        "WeightParams": {
            "type": "object",
            "properties": {
                "alpha": {"type": "number"},
                "beta": {"type": "number"},
                "floor": {"type": "number"}
            }
        },
        "ComputeWeightsRequest": {
            "type": "object",
            "properties": {
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/SubjectRequest"}},
                "params": {"$ref": "#/definitions/WeightParams"}
            },
            "required": ["subjects"]
        },
        "SplitHoursRequest": {
            "type": "object",
            "properties": {
                "totalHours": {"type": "number"},
                "weights": {"type": "array", "items": {"type": "number"}},
                "stepHours": {"type": "number", "minimum": 0.25, "maximum": 24}
            },
            "required": ["weights"]
        },
        "BudgetRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "hours": {"type": "number"}
            },
            "required": ["name"]
        },
        "BuildScheduleRequest": {
            "type": "object",
            "properties": {
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/BudgetRequest"}},
                "startDate": {"type": "string", "format": "date"},
                "endDate": {"type": "string", "format": "date"},
                "weekdayHours": {"type": "number"},
                "weekendHours": {"type": "number"},
                "excludedDates": {"type": "array", "items": {"type": "string", "format": "date"}},
                "blockHours": {"type": "number", "minimum": 0.25, "maximum": 24},
                "stepHours": {"type": "number", "minimum": 0.25, "maximum": 24},
                "policy": {"type": "string", "enum": ["proportional", "round_robin"]}
            },
            "required": ["subjects", "startDate", "endDate"]
        },
        "GenerateStudyPlanRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/SubjectRequest"}},
                "params": {"$ref": "#/definitions/WeightParams"},
                "totalHours": {"type": "number"},
                "startDate": {"type": "string", "format": "date"},
                "endDate": {"type": "string", "format": "date"},
                "weekdayHours": {"type": "number"},
                "weekendHours": {"type": "number"},
                "excludedDates": {"type": "array", "items": {"type": "string", "format": "date"}},
                "blockHours": {"type": "number", "minimum": 0.25, "maximum": 24},
                "stepHours": {"type": "number", "minimum": 0.25, "maximum": 24},
                "policy": {"type": "string", "enum": ["proportional", "round_robin"]}
            },
            "required": ["subjects", "startDate", "endDate"]
        },
        "SaveStudyPlanRequest": {
            "type": "object",
            "properties": {
                "proposalId": {"type": "string"},
                "title": {"type": "string"},
                "activate": {"type": "boolean"}
            },
            "required": ["proposalId"]
        },
        "CreateExportRequest": {
            "type": "object",
            "properties": {
                "format": {"type": "string", "enum": ["csv", "ics", "pdf"]}
            },
            "required": ["format"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
