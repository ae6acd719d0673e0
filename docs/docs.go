// Package docs registers the generated OpenAPI document with swag at init
// time. Regenerate with:
//
//	swag init -g cmd/server/main.go -o docs
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
        "/flashcards": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Flashcards"],
                "summary": "Get all flashcards grouped by topic",
                "operationId": "getFlashcards",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "array",
                                "items": {"$ref": "#/definitions/domain.Flashcard"}
                            }
                        }
                    },
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Flashcards"],
                "summary": "Save flashcards into a topic deck",
                "operationId": "saveFlashcards",
                "parameters": [
                    {"type": "string", "description": "Client retry deduplication key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Cards to merge", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SaveFlashcardsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SaveFlashcardsResponse"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/sessions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "List sessions (paginated)",
                "operationId": "listSessions",
                "parameters": [
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"},
                    {"type": "integer", "default": 1, "minimum": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "maximum": 100, "minimum": 1, "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListSessionsResponse"}},
                    "304": {"description": "Not Modified", "schema": {"type": "string"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Create or update a session",
                "operationId": "saveSession",
                "parameters": [
                    {"type": "string", "description": "Client retry deduplication key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Session payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SaveSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated session", "schema": {"$ref": "#/definitions/domain.Session"}},
                    "201": {"description": "Created session", "schema": {"$ref": "#/definitions/domain.Session"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Model failure", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Get one session",
                "operationId": "getSession",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Session ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Session"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/tutor/flashcards": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tutor"],
                "summary": "Extract flashcards from a conversation",
                "operationId": "extractFlashcards",
                "parameters": [
                    {"description": "Conversation payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ExtractFlashcardsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ExtractFlashcardsResponse"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Model failure", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/tutor/reply": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tutor"],
                "summary": "Ask the tutor a question",
                "operationId": "tutorReply",
                "parameters": [
                    {"description": "Question payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.TutorReplyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TutorReplyResponse"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Model failure", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Flashcard": {
            "type": "object",
            "properties": {
                "question": {"type": "string"},
                "answer": {"type": "string"}
            }
        },
        "domain.Session": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "topic": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/domain.Message"}},
                "summary": {"type": "string"},
                "flashcard_count": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "domain.Message": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "enum": ["user", "model"]},
                "content": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"},
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string", "example": "session not found"}
            }
        },
        "handlers.FlashcardPayload": {
            "type": "object",
            "required": ["answer", "question"],
            "properties": {
                "question": {"type": "string", "example": "What is a qubit?"},
                "answer": {"type": "string", "example": "The basic unit of quantum information."}
            }
        },
        "handlers.SaveFlashcardsRequest": {
            "type": "object",
            "required": ["topic"],
            "properties": {
                "topic": {"type": "string", "example": "Quantum Computing"},
                "session_id": {"type": "string", "example": "141add05-4415-4938-b5a1-17e0d3171aff"},
                "flashcards": {"type": "array", "items": {"$ref": "#/definitions/handlers.FlashcardPayload"}}
            }
        },
        "handlers.SaveFlashcardsResponse": {
            "type": "object",
            "properties": {
                "topic": {"type": "string", "example": "Quantum Computing"},
                "added": {"type": "integer", "example": 2}
            }
        },
        "handlers.MessagePayload": {
            "type": "object",
            "required": ["content", "role"],
            "properties": {
                "role": {"type": "string", "example": "user"},
                "content": {"type": "string", "example": "What is superposition?"}
            }
        },
        "handlers.SaveSessionRequest": {
            "type": "object",
            "required": ["messages"],
            "properties": {
                "id": {"type": "string", "example": "141add05-4415-4938-b5a1-17e0d3171aff"},
                "topic": {"type": "string", "example": "Quantum Computing"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/handlers.MessagePayload"}}
            }
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_next": {"type": "boolean"}
            }
        },
        "handlers.ListSessionsResponse": {
            "type": "object",
            "properties": {
                "sessions": {"type": "array", "items": {"$ref": "#/definitions/domain.Session"}},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.TutorReplyRequest": {
            "type": "object",
            "required": ["question", "topic"],
            "properties": {
                "topic": {"type": "string", "example": "Quantum Computing"},
                "question": {"type": "string", "example": "Why does measurement collapse a superposition?"},
                "history": {"type": "array", "items": {"$ref": "#/definitions/handlers.MessagePayload"}}
            }
        },
        "handlers.TutorReplyResponse": {
            "type": "object",
            "properties": {
                "reply": {"type": "string"}
            }
        },
        "handlers.ExtractFlashcardsRequest": {
            "type": "object",
            "required": ["messages"],
            "properties": {
                "messages": {"type": "array", "items": {"$ref": "#/definitions/handlers.MessagePayload"}}
            }
        },
        "handlers.ExtractFlashcardsResponse": {
            "type": "object",
            "properties": {
                "flashcards": {"type": "array", "items": {"$ref": "#/definitions/domain.Flashcard"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Bearer token issued by the identity service. Format: \"Bearer {token}\"."
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Tutor Backend API",
	Description:      "Token-authenticated backend for AI tutoring sessions and flashcard decks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
