// Package docs is generated by swag. Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/auth/register": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Register",
                "description": "Create an account and return a token",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "user",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RegisterRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "User registered"
                    },
                    "400": {
                        "description": "Validation failed or email already registered"
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Login",
                "description": "Exchange credentials for a token",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "credentials",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Login successful"
                    },
                    "401": {
                        "description": "Invalid credentials"
                    }
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Current user",
                "description": "Return the authenticated user",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "User"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/recipes/categories": {
            "get": {
                "tags": [
                    "Recipes"
                ],
                "summary": "List categories",
                "description": "All recipe categories ordered by name",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/recipes/search": {
            "get": {
                "tags": [
                    "Recipes"
                ],
                "summary": "Search recipes",
                "description": "Case-insensitive substring search on recipe names",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "name",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Matching recipes"
                    },
                    "400": {
                        "description": "Missing name"
                    }
                }
            }
        },
        "/recipes/category/{category}": {
            "get": {
                "tags": [
                    "Recipes"
                ],
                "summary": "Recipes by category",
                "description": "Recipes of a category, empty when the category is unknown",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "category",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/recipes/{id}": {
            "get": {
                "tags": [
                    "Recipes"
                ],
                "summary": "Get recipe",
                "description": "One recipe with its lists",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "integer",
                        "required": true,
                        "description": "Recipe ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Recipe"
                    },
                    "404": {
                        "description": "Recipe not found"
                    }
                }
            }
        },
        "/calendar/events": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "List events",
                "description": "All events of the caller with completion state",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Events"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            },
            "post": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Create event",
                "description": "Plan a meal",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "event",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/EventRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Event created"
                    },
                    "400": {
                        "description": "Validation failed"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/calendar/events/{eventId}": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Get event",
                "description": "One event with recipe data and checklist",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventId",
                        "type": "integer",
                        "required": true,
                        "description": "Event ID"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Event"
                    },
                    "404": {
                        "description": "Event not found"
                    }
                }
            },
            "put": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Update event",
                "description": "Replace an event",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventId",
                        "type": "integer",
                        "required": true,
                        "description": "Event ID"
                    },
                    {
                        "in": "body",
                        "name": "event",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/EventRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Event updated"
                    },
                    "400": {
                        "description": "Validation failed"
                    },
                    "404": {
                        "description": "Event not found"
                    }
                }
            },
            "delete": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Delete event",
                "description": "Delete an event with its status and checklist",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventId",
                        "type": "integer",
                        "required": true,
                        "description": "Event ID"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Event deleted"
                    },
                    "404": {
                        "description": "Event not found"
                    }
                }
            }
        },
        "/calendar/events/{eventId}/complete": {
            "post": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Complete event",
                "description": "Mark an event as cooked",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventId",
                        "type": "integer",
                        "required": true,
                        "description": "Event ID"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Event completed"
                    },
                    "404": {
                        "description": "Event not found"
                    }
                }
            }
        },
        "/calendar/events/{eventId}/checklist": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Get checklist",
                "description": "Ingredient checklist of an event",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventId",
                        "type": "integer",
                        "required": true,
                        "description": "Event ID"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Checklist"
                    },
                    "404": {
                        "description": "Event not found"
                    }
                }
            },
            "put": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Replace checklist",
                "description": "Overwrite the ingredient checklist",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventId",
                        "type": "integer",
                        "required": true,
                        "description": "Event ID"
                    },
                    {
                        "in": "body",
                        "name": "checklist",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ChecklistRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Checklist updated"
                    },
                    "404": {
                        "description": "Event not found"
                    }
                }
            },
            "post": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Replace checklist (POST alias)",
                "description": "Overwrite the ingredient checklist",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "eventId",
                        "type": "integer",
                        "required": true,
                        "description": "Event ID"
                    },
                    {
                        "in": "body",
                        "name": "checklist",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ChecklistRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Checklist updated"
                    },
                    "404": {
                        "description": "Event not found"
                    }
                }
            }
        },
        "/calendar/export.ics": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Export calendar",
                "description": "All events as an iCalendar document",
                "produces": [
                    "text/calendar"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "iCalendar file"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": [
                "email",
                "password"
            ],
            "properties": {
                "name": {
                    "type": "string"
                },
                "surname": {
                    "type": "string"
                },
                "email": {
                    "type": "string",
                    "example": "cook@mealcal.dev"
                },
                "password": {
                    "type": "string",
                    "example": "secret123"
                }
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": [
                "email",
                "password"
            ],
            "properties": {
                "email": {
                    "type": "string",
                    "example": "cook@mealcal.dev"
                },
                "password": {
                    "type": "string",
                    "example": "secret123"
                }
            }
        },
        "EventRequest": {
            "type": "object",
            "required": [
                "title",
                "day",
                "month",
                "year",
                "timeFrom",
                "timeTo"
            ],
            "properties": {
                "title": {
                    "type": "string",
                    "maxLength": 255,
                    "example": "Pasta"
                },
                "day": {
                    "type": "integer",
                    "example": 15
                },
                "month": {
                    "type": "integer",
                    "example": 12
                },
                "year": {
                    "type": "integer",
                    "example": 2024
                },
                "timeFrom": {
                    "type": "string",
                    "example": "18:00"
                },
                "timeTo": {
                    "type": "string",
                    "example": "19:00"
                },
                "ingredients": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "instructions": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "recipeId": {
                    "type": "integer"
                }
            }
        },
        "ChecklistRequest": {
            "type": "object",
            "properties": {
                "ingredients": {
                    "description": "ingredient name (at most 255 characters) to checked state",
                    "type": "object",
                    "additionalProperties": {
                        "type": "boolean"
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type \"Bearer\" followed by a space and JWT token."
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "MealCal API",
	Description:      "Recipe catalog and meal-planning calendar",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
