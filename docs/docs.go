// Package docs registers the OpenAPI description served under /swagger.
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
        "/reports": {
            "post": {
                "description": "Run the After Market report for a plant and primary store",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Run the report",
                "parameters": [
                    {
                        "description": "Report filters",
                        "name": "filters",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/model.FilterSet"}
                    }
                ],
                "responses": {
                    "200": {"description": "Report rows", "schema": {"$ref": "#/definitions/handler.ReportResponse"}},
                    "400": {"description": "Invalid request payload", "schema": {"type": "object", "additionalProperties": true}},
                    "502": {"description": "Database error", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/reports/export": {
            "get": {
                "description": "Run the report and download it as xlsx, csv or json",
                "produces": ["application/octet-stream"],
                "tags": ["reports"],
                "summary": "Export the report",
                "parameters": [
                    {"type": "string", "default": "xlsx", "description": "xlsx, csv or json", "name": "format", "in": "query"},
                    {"type": "string", "description": "Plant code", "name": "plant", "in": "query", "required": true},
                    {"type": "string", "description": "Primary store", "name": "store", "in": "query", "required": true},
                    {"type": "string", "description": "Client name contains", "name": "client", "in": "query"},
                    {"type": "string", "description": "Client part number contains", "name": "client_pn", "in": "query"},
                    {"type": "string", "description": "Vendor part number contains", "name": "vendor_pn", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Report file", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"type": "object", "additionalProperties": true}},
                    "502": {"description": "Database error", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/reports/email": {
            "post": {
                "description": "Run the report and email it with the selection attached",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Email the report",
                "parameters": [
                    {"type": "string", "description": "User running the report", "name": "user", "in": "query"},
                    {
                        "description": "Recipient, filters and selection",
                        "name": "email",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.EmailRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Email sent", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid request", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Email not configured", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/selections": {
            "post": {
                "description": "Append the selected rows of a store to the After Market log",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["selections"],
                "summary": "Log a selection",
                "parameters": [
                    {"type": "string", "description": "User running the report", "name": "user", "in": "query"},
                    {
                        "description": "Selected rows",
                        "name": "selection",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.SelectionRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Rows appended", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid request payload", "schema": {"type": "object", "additionalProperties": true}},
                    "422": {"description": "Selected rows lack a required column", "schema": {"type": "object", "additionalProperties": true}},
                    "423": {"description": "Log file locked", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/runs": {
            "get": {
                "description": "Get the most recent report runs",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "List runs",
                "parameters": [
                    {"type": "integer", "default": 100, "description": "Maximum runs returned", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Runs", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Run"}}},
                    "500": {"description": "Internal server error", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/runs/{id}": {
            "get": {
                "description": "Retrieve one report run",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run",
                "parameters": [
                    {"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Run details", "schema": {"$ref": "#/definitions/model.Run"}},
                    "404": {"description": "Run not found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/runs/{id}/errors": {
            "get": {
                "description": "Retrieve the errors recorded for a report run",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run errors",
                "parameters": [
                    {"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Run errors", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid run ID", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal server error", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        }
    },
    "definitions": {
        "handler.EmailRequest": {
            "type": "object",
            "properties": {
                "filters": {"$ref": "#/definitions/model.FilterSet"},
                "recipient": {"type": "string"},
                "selection": {"type": "array", "items": {"type": "object", "additionalProperties": true}}
            }
        },
        "handler.ReportResponse": {
            "type": "object",
            "properties": {
                "row_count": {"type": "integer"},
                "rows": {"type": "array", "items": {"type": "object", "additionalProperties": true}},
                "run_id": {"type": "string"}
            }
        },
        "handler.SelectionRequest": {
            "type": "object",
            "properties": {
                "rows": {"type": "array", "items": {"type": "object", "additionalProperties": true}},
                "store": {"type": "string"}
            }
        },
        "model.FilterSet": {
            "type": "object",
            "properties": {
                "client_name": {"type": "string"},
                "client_part_number": {"type": "string"},
                "plant": {"type": "string"},
                "primary_store": {"type": "string"},
                "vendor_part_number": {"type": "string"}
            }
        },
        "model.Run": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "filters": {"$ref": "#/definitions/model.FilterSet"},
                "id": {"type": "string"},
                "row_count": {"type": "integer"},
                "status": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "After Market Report API",
	Description:      "Sales history of a client across the stores of a plant.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
