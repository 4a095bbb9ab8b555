package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Hub API",
        "description": "Grading, task and evaluation backend for the final-project course.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Grades", "description": "Aggregated course grades"},
        {"name": "Tasks", "description": "Final-project task boards"},
        {"name": "Grading", "description": "Per-task grading"},
        {"name": "Appeals", "description": "Grade dispute workflow"},
        {"name": "Evaluations", "description": "Weekly rubric evaluations"},
        {"name": "Statistics", "description": "Dashboard aggregates"},
        {"name": "Feedback", "description": "Reusable feedback templates"},
        {"name": "Reports", "description": "Asynchronous exports"}
    ],
    "paths": {
        "/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "List all aggregated grades",
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}
                }
            }
        },
        "/grades/{id}": {
            "get": {
                "tags": ["Grades"],
                "summary": "Get a student's aggregated grade",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"},
                    "404": {"schema": {"$ref": "#/definitions/APIError"}, "description": "Not found"}
                }
            }
        },
        "/grades/by-email/{email}": {
            "get": {
                "tags": ["Grades"],
                "summary": "Get a student's aggregated grade by email",
                "parameters": [
                    {"name": "email", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"},
                    "404": {"schema": {"$ref": "#/definitions/APIError"}, "description": "Not found"}
                }
            }
        },
        "/grades/{id}/recalculate": {
            "post": {
                "tags": ["Grades"],
                "summary": "Rebuild a student's grade from submission data",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}
                }
            }
        },
        "/grades/extra-points": {
            "put": {
                "tags": ["Grades"],
                "summary": "Set a student's bonus points",
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}
                }
            }
        },
        "/tasks": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Create a task",
                "responses": {
                    "201": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Created"}
                }
            }
        },
        "/tasks/{id}": {
            "get": {
                "tags": ["Tasks"],
                "summary": "Get a task with assignees",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}
                }
            },
            "put": {
                "tags": ["Tasks"],
                "summary": "Update a task",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}
                }
            },
            "delete": {
                "tags": ["Tasks"],
                "summary": "Delete a task",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/tasks/{id}/status": {
            "patch": {
                "tags": ["Tasks"],
                "summary": "Move a task between member-settable statuses",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"},
                    "409": {"schema": {"$ref": "#/definitions/APIError"}, "description": "Status conflict"}
                }
            }
        },
        "/task-grades": {
            "post": {
                "tags": ["Grading"],
                "summary": "Award points to a task assignee",
                "responses": {
                    "201": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Created"},
                    "409": {"schema": {"$ref": "#/definitions/APIError"}, "description": "Already graded"}
                }
            }
        },
        "/appeals": {
            "get": {
                "tags": ["Appeals"],
                "summary": "List unresolved appeals",
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}
                }
            },
            "post": {
                "tags": ["Appeals"],
                "summary": "Dispute a graded task's points",
                "responses": {
                    "201": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Created"}
                }
            }
        },
        "/appeals/{id}/resolve": {
            "post": {
                "tags": ["Appeals"],
                "summary": "Resolve an appeal with a final re-grade",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}
                }
            }
        },
        "/evaluations": {
            "put": {
                "tags": ["Evaluations"],
                "summary": "Create or replace a student's evaluation",
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}
                }
            }
        },
        "/evaluations/summary": {
            "get": {
                "tags": ["Evaluations"],
                "summary": "Course-wide evaluation averages",
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}
                }
            }
        },
        "/statistics/overview": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Course-wide task statistics",
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}
                }
            }
        },
        "/feedback-templates": {
            "get": {
                "tags": ["Feedback"],
                "summary": "List feedback templates",
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}
                }
            },
            "post": {
                "tags": ["Feedback"],
                "summary": "Create a feedback template",
                "responses": {
                    "201": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Created"}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report export",
                "responses": {
                    "202": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Accepted"}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status with download link when ready",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}
                }
            }
        }
    },
    "definitions": {
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
