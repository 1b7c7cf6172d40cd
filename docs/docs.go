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
        "/healthcheck/": {
            "get": {
                "description": "Reports whether Elasticsearch answers a ping",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/indices/{index}/_search": {
            "get": {
                "description": "Same as the POST form. Filters are passed as filter[key]=value, in order; repeat a key or append [] for a list, omit \"=\" for null.",
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Search an index using query parameters",
                "parameters": [
                    {"type": "string", "description": "Index name", "name": "index", "in": "path", "required": true},
                    {"type": "string", "description": "Free text", "name": "q", "in": "query"},
                    {"type": "string", "description": "Comma separated fields searched by q", "name": "fields", "in": "query"},
                    {"type": "string", "description": "Sort token, ^field or field:asc|desc (repeatable)", "name": "sort", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset of the first hit", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PaginatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/dto.RateLimitErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Compiles the filter and sort tokens into an Elasticsearch bool query and returns the matching documents.\nFilter keys are \"field\" or \"field(op)\" with op one of not, min, max, any, none, all.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Search an index",
                "parameters": [
                    {"type": "string", "description": "Index name", "name": "index", "in": "path", "required": true},
                    {"description": "Search request", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SearchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PaginatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/dto.RateLimitErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/indices/{index}/_doc/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Creates or replaces the document with the given id.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Index a document",
                "parameters": [
                    {"type": "string", "description": "Index name", "name": "index", "in": "path", "required": true},
                    {"type": "string", "description": "Document id", "name": "id", "in": "path", "required": true},
                    {"description": "Document source", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.AuthErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.SearchRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string", "example": "My book"},
                "fields": {"type": "array", "items": {"type": "string"}, "example": ["name"]},
                "filter": {"type": "object", "example": {"year(min)": 1973, "id(not)": "0002"}},
                "sort": {"type": "array", "items": {"type": "string"}, "example": ["^year"]},
                "limit": {"type": "integer", "example": 15},
                "offset": {"type": "integer", "example": 0}
            }
        },
        "dto.SearchHit": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "index": {"type": "string"},
                "score": {"type": "number"},
                "source": {"type": "object", "additionalProperties": true}
            }
        },
        "dto.Pagination": {
            "type": "object",
            "properties": {
                "offset": {"type": "integer", "example": 0},
                "limit": {"type": "integer", "example": 10},
                "returned": {"type": "integer", "example": 10},
                "total_records": {"type": "integer", "example": 50},
                "has_next": {"type": "boolean", "example": true},
                "has_prev": {"type": "boolean", "example": false}
            }
        },
        "dto.PaginatedResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "timestamp": {"type": "string"},
                "request_id": {"type": "string"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/dto.SearchHit"}},
                "pagination": {"$ref": "#/definitions/dto.Pagination"},
                "message": {"type": "string"}
            }
        },
        "dto.SuccessResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "timestamp": {"type": "string"},
                "request_id": {"type": "string"},
                "data": {},
                "message": {"type": "string"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "timestamp": {"type": "string"},
                "request_id": {"type": "string"},
                "error": {"type": "string", "example": "invalid_filter"},
                "code": {"type": "integer", "example": 400},
                "message": {"type": "string"},
                "details": {}
            }
        },
        "dto.AuthErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "unauthorized"},
                "code": {"type": "integer", "example": 401},
                "message": {"type": "string", "example": "Invalid or expired token"}
            }
        },
        "dto.RateLimitErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "rate_limit_exceeded"},
                "code": {"type": "integer", "example": 429},
                "message": {"type": "string", "example": "Too many requests"},
                "retry_after": {"type": "string", "example": "60s"},
                "limit": {"type": "integer", "example": 100}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "OK"},
                "service": {"type": "string", "example": "esfilter"},
                "version": {"type": "string", "example": "1.0.0"},
                "uptime": {"type": "string", "example": "1h30m45s"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "esfilter API",
	Description:      "Search gateway compiling compact filters into Elasticsearch bool queries.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
