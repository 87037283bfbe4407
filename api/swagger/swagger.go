package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Portal API",
        "description": "Admission, result and contact backend for the school website and admin panel",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Admissions", "description": "Admission application intake and review"},
        {"name": "Results", "description": "Result publication and public lookup"},
        {"name": "Contact", "description": "Contact form submissions"},
        {"name": "Authentication", "description": "Admin login and token lifecycle"},
        {"name": "Admins", "description": "Admin roster and system maintenance"},
        {"name": "Dashboard", "description": "Admin dashboard counters"},
        {"name": "Documents", "description": "Admission document upload and signed download"}
    ],
    "paths": {
        "/admissions": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Submit an admission application",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitApplicationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/contact": {
            "post": {
                "tags": ["Contact"],
                "summary": "Submit a contact message",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitContactRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents": {
            "post": {
                "tags": ["Documents"],
                "summary": "Upload an admission document",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/download": {
            "get": {
                "tags": ["Documents"],
                "summary": "Download a document via signed URL",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File data"},
                    "403": {"description": "Invalid or expired link"}
                }
            }
        },
        "/results/{rollNumber}": {
            "get": {
                "tags": ["Results"],
                "summary": "Look up a student result by roll number",
                "parameters": [
                    {"name": "rollNumber", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No result for this roll number"}
                }
            }
        },
        "/results/{rollNumber}/marksheet": {
            "get": {
                "tags": ["Results"],
                "summary": "Download a result as a PDF marksheet",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "rollNumber", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "PDF data"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate admin",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/bootstrap": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Create the first super admin",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BootstrapRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "An admin already exists"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Current password does not match"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current admin",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/dashboard/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/admissions": {
            "get": {
                "tags": ["Admissions"],
                "summary": "List admission applications",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/admissions/export": {
            "get": {
                "tags": ["Admissions"],
                "summary": "Export applications as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV data"}
                }
            }
        },
        "/admin/admissions/{id}": {
            "get": {
                "tags": ["Admissions"],
                "summary": "Get application detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Admissions"],
                "summary": "Delete an application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/admissions/{id}/status": {
            "patch": {
                "tags": ["Admissions"],
                "summary": "Approve or reject an application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "412": {"description": "Application is no longer pending"}
                }
            }
        },
        "/admin/admissions/{id}/field": {
            "patch": {
                "tags": ["Admissions"],
                "summary": "Edit one application field",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateFieldRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/admissions/{id}/documents": {
            "put": {
                "tags": ["Admissions"],
                "summary": "Replace an application's document list",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateDocumentsRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/results": {
            "get": {
                "tags": ["Results"],
                "summary": "List published results",
                "parameters": [
                    {"name": "class", "in": "query", "type": "string"},
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Results"],
                "summary": "Publish a student result",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitResultRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Result already exists for this roll number"}
                }
            }
        },
        "/admin/results/{rollNumber}": {
            "delete": {
                "tags": ["Results"],
                "summary": "Delete a published result",
                "parameters": [
                    {"name": "rollNumber", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/contact": {
            "get": {
                "tags": ["Contact"],
                "summary": "List contact submissions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/admins": {
            "get": {
                "tags": ["Admins"],
                "summary": "List admin accounts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Admins"],
                "summary": "Grant admin access",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddAdminRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/admins/{id}": {
            "delete": {
                "tags": ["Admins"],
                "summary": "Revoke admin access",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Self removal or super admin"}
                }
            }
        },
        "/admin/system/reset": {
            "post": {
                "tags": ["Admins"],
                "summary": "Wipe all applications, results and contact submissions",
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Super admin only"}
                }
            }
        }
    },
    "definitions": {
        "SubmitApplicationRequest": {
            "type": "object",
            "properties": {
                "student_name": {"type": "string"},
                "father_name": {"type": "string"},
                "mother_name": {"type": "string"},
                "date_of_birth": {"type": "string"},
                "mobile": {"type": "string"},
                "address": {"type": "string"},
                "email": {"type": "string"},
                "previous_school": {"type": "string"},
                "class_name": {"type": "string"},
                "document_urls": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["student_name", "father_name", "mother_name", "date_of_birth", "mobile", "address", "email", "previous_school", "class_name"]
        },
        "UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["approved", "rejected"]}
            },
            "required": ["status"]
        },
        "UpdateFieldRequest": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "value": {"type": "string"}
            },
            "required": ["field", "value"]
        },
        "UpdateDocumentsRequest": {
            "type": "object",
            "properties": {
                "document_urls": {"type": "array", "items": {"type": "string"}}
            }
        },
        "SubmitResultRequest": {
            "type": "object",
            "properties": {
                "roll_number": {"type": "integer"},
                "student_name": {"type": "string"},
                "class_name": {"type": "string"},
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/SubjectMark"}}
            },
            "required": ["roll_number", "student_name", "class_name", "subjects"]
        },
        "SubjectMark": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "marks": {"type": "integer"}
            }
        },
        "SubmitContactRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "message": {"type": "string"}
            },
            "required": ["name", "email", "phone", "message"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "current_password": {"type": "string"},
                "new_password": {"type": "string"},
                "confirm_password": {"type": "string"}
            },
            "required": ["current_password", "new_password", "confirm_password"]
        },
        "BootstrapRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "full_name", "password"]
        },
        "AddAdminRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "full_name", "password"]
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
