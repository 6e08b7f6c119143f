package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Escolinha de Futebol API",
        "description": "Registration, roster management and owner access for a youth football school",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Pais", "description": "Public registration"},
        {"name": "Authentication", "description": "Owner access code login"},
        {"name": "Donos", "description": "Owner dashboard"},
        {"name": "Fotos", "description": "Photos served from GridFS"}
    ],
    "paths": {
        "/pais/alunos/cadastro": {
            "post": {
                "tags": ["Pais"],
                "summary": "Register a student",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "nomeCompleto", "in": "formData", "type": "string", "required": true},
                    {"name": "dataNascimento", "in": "formData", "type": "string", "required": true},
                    {"name": "genero", "in": "formData", "type": "string", "required": true},
                    {"name": "nomeResponsavel", "in": "formData", "type": "string", "required": true},
                    {"name": "cpfResponsavel", "in": "formData", "type": "string", "required": true},
                    {"name": "nomeMae", "in": "formData", "type": "string", "required": true},
                    {"name": "contato1", "in": "formData", "type": "string", "required": true},
                    {"name": "contato2", "in": "formData", "type": "string"},
                    {"name": "foto", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/StudentEnvelope"}},
                    "400": {"description": "Missing fields, unmapped category or bad photo", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Store or photo host failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Owner login",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginEnvelope"}},
                    "400": {"description": "Missing access code", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Wrong access code", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Server misconfigured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/donos/alunos": {
            "get": {
                "tags": ["Donos"],
                "summary": "List every student",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/donos/categorias": {
            "get": {
                "tags": ["Donos"],
                "summary": "List students grouped by category",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CategoryEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/donos/alunos/{id}": {
            "put": {
                "tags": ["Donos"],
                "summary": "Update a student",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data", "application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "nomeCompleto", "in": "formData", "type": "string"},
                    {"name": "dataNascimento", "in": "formData", "type": "string"},
                    {"name": "genero", "in": "formData", "type": "string"},
                    {"name": "categoria", "in": "formData", "type": "string"},
                    {"name": "statusPagamento", "in": "formData", "type": "string", "enum": ["Pendente", "Pago"]},
                    {"name": "foto", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Donos"],
                "summary": "Delete a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/donos/alunos/export": {
            "get": {
                "tags": ["Donos"],
                "summary": "Download the roster",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fotos/{id}": {
            "get": {
                "tags": ["Fotos"],
                "summary": "Fetch a student photo",
                "produces": ["image/jpeg", "image/png"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Image", "schema": {"type": "file"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["password"],
            "properties": {
                "password": {"type": "string"}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "message": {"type": "string"},
                "token": {"type": "string"},
                "role": {"type": "string"},
                "expires_in": {"type": "integer"},
                "expires_at": {"type": "string", "format": "date-time"}
            }
        },
        "Student": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "nomeCompleto": {"type": "string"},
                "dataNascimento": {"type": "string", "format": "date-time"},
                "genero": {"type": "string"},
                "foto": {"type": "string"},
                "nomeResponsavel": {"type": "string"},
                "cpfResponsavel": {"type": "string"},
                "nomeMae": {"type": "string"},
                "contato1": {"type": "string"},
                "contato2": {"type": "string"},
                "categoria": {"type": "string", "enum": ["Feminina", "Sub06", "Sub08", "Sub10", "Sub14", "Fora de Categoria"]},
                "statusPagamento": {"type": "string", "enum": ["Pendente", "Pago"]},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "DashboardStudent": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "paid": {"type": "boolean"},
                "foto": {"type": "string"},
                "dataNascimento": {"type": "string"},
                "genero": {"type": "string"},
                "categoria": {"type": "string"},
                "statusPagamento": {"type": "string"}
            }
        },
        "CategoryGroup": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "students": {"type": "array", "items": {"$ref": "#/definitions/DashboardStudent"}}
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
                "meta": {"type": "object"}
            }
        },
        "StudentEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Student"},
                "meta": {"type": "object"}
            }
        },
        "LoginEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/LoginResponse"}
            }
        },
        "CategoryEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/CategoryGroup"}},
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
