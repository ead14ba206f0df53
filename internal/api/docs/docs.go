// Package docs registers the solarquote OpenAPI document with swag.
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
        "/api/v1/catalog": {
            "get": {
                "description": "Appliance categories with their options and unit wattage",
                "produces": ["application/json"],
                "tags": ["load"],
                "summary": "List the appliance catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.CatalogResponse"}}
                }
            }
        },
        "/api/v1/load": {
            "post": {
                "description": "Sums the connected load of the selected and additional appliances",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["load"],
                "summary": "Compute a load summary",
                "parameters": [
                    {"description": "Appliances", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.LoadRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/load.Summary"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/v1/quote": {
            "post": {
                "description": "Sizes and costs a solar system. Identical inputs are served from cache.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quote"],
                "summary": "Estimate a quote",
                "parameters": [
                    {"description": "Quote input", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/quote.Input"}},
                    {"type": "string", "description": "ISO 4217 display currency", "name": "currency", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.QuoteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/v1/calculate": {
            "post": {
                "description": "Aggregates the appliance load and estimates a quote for it",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quote"],
                "summary": "Load calculation and quote in one call",
                "parameters": [
                    {"description": "Appliances, customer and overrides", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.CalculateRequest"}},
                    {"type": "string", "description": "ISO 4217 display currency", "name": "currency", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.QuoteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/v1/leads": {
            "get": {
                "description": "Most recent leads first",
                "produces": ["application/json"],
                "tags": ["leads"],
                "summary": "List captured leads",
                "parameters": [
                    {"type": "integer", "description": "Maximum number of leads (default 50)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/storage.Lead"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/v1/format": {
            "get": {
                "produces": ["application/json"],
                "tags": ["currency"],
                "summary": "Format a money amount",
                "parameters": [
                    {"type": "number", "description": "Amount", "name": "amount", "in": "query", "required": true},
                    {"type": "string", "description": "ISO 4217 currency code", "name": "currency", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.FormatResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "api.CatalogResponse": {
            "type": "object",
            "properties": {
                "categories": {"type": "array", "items": {"$ref": "#/definitions/appliances.Category"}}
            }
        },
        "appliances.Category": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "name": {"type": "string"},
                "options": {"type": "array", "items": {"$ref": "#/definitions/appliances.Option"}}
            }
        },
        "appliances.Option": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "watts": {"type": "integer"}
            }
        },
        "api.LoadRequest": {
            "type": "object",
            "properties": {
                "selections": {"type": "array", "items": {"$ref": "#/definitions/load.ApplianceSelection"}},
                "extras": {"type": "array", "items": {"$ref": "#/definitions/load.AdditionalAppliance"}}
            }
        },
        "api.CalculateRequest": {
            "type": "object",
            "properties": {
                "selections": {"type": "array", "items": {"$ref": "#/definitions/load.ApplianceSelection"}},
                "extras": {"type": "array", "items": {"$ref": "#/definitions/load.AdditionalAppliance"}},
                "customer": {"$ref": "#/definitions/quote.Customer"},
                "overrides": {"$ref": "#/definitions/quote.Input"}
            }
        },
        "api.QuoteResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "hash": {"type": "string"},
                "cached": {"type": "boolean"},
                "leadId": {"type": "string"},
                "currency": {"type": "string"},
                "quote": {"$ref": "#/definitions/quote.Result"},
                "load": {"$ref": "#/definitions/load.Summary"},
                "display": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "api.FormatResponse": {
            "type": "object",
            "properties": {
                "amount": {"type": "number"},
                "currency": {"type": "string"},
                "formatted": {"type": "string"}
            }
        },
        "load.ApplianceSelection": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "selectedOption": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "load.AdditionalAppliance": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "watts": {"type": "integer"},
                "quantity": {"type": "integer"}
            }
        },
        "load.LineItem": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "name": {"type": "string"},
                "watts": {"type": "integer"},
                "quantity": {"type": "integer"},
                "totalWatts": {"type": "integer"}
            }
        },
        "load.Summary": {
            "type": "object",
            "properties": {
                "totalWatts": {"type": "integer"},
                "totalKW": {"type": "number"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/load.LineItem"}}
            }
        },
        "quote.Customer": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "city": {"type": "string"}
            }
        },
        "quote.Input": {
            "type": "object",
            "properties": {
                "customer": {"$ref": "#/definitions/quote.Customer"},
                "load": {"$ref": "#/definitions/load.Summary"},
                "systemSizeKW": {"type": "number"},
                "dailyEnergyKWh": {"type": "number"},
                "panelQuantity": {"type": "integer"},
                "panelsRequired": {"type": "integer"},
                "inverterSizeKW": {"type": "number"},
                "batteryCapacityKWh": {"type": "number"},
                "totalCost": {"type": "number"},
                "estimatedCost": {"type": "number"},
                "paybackPeriod": {"type": "string"},
                "totalSavings25Years": {"type": "number"},
                "roiPercentage": {"type": "number"}
            }
        },
        "quote.Result": {
            "type": "object",
            "properties": {
                "customer": {"$ref": "#/definitions/quote.Customer"},
                "dailyEnergyKWh": {"type": "number"},
                "systemSizeKW": {"type": "number"},
                "panelQuantity": {"type": "integer"},
                "panelWatts": {"type": "integer"},
                "totalPanelCapacityKW": {"type": "number"},
                "inverterSizeKW": {"type": "number"},
                "batteryCapacityKWh": {"type": "number"},
                "cost": {
                    "type": "object",
                    "properties": {
                        "systemCost": {"type": "number"},
                        "installationCharge": {"type": "number"},
                        "totalInvestment": {"type": "number"}
                    }
                },
                "environment": {
                    "type": "object",
                    "properties": {
                        "annualCO2ReductionTons": {"type": "number"},
                        "co2Reduction25Years": {"type": "number"},
                        "treesEquivalent": {"type": "number"}
                    }
                },
                "roi": {
                    "type": "object",
                    "properties": {
                        "monthlySavings": {"type": "number"},
                        "annualSavings": {"type": "number"},
                        "paybackPeriodYears": {"type": "string"},
                        "totalSavings25Years": {"type": "number"},
                        "roiPercentage": {"type": "number"}
                    }
                }
            }
        },
        "storage.Lead": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "city": {"type": "string"},
                "quote_id": {"type": "string"},
                "system_size_kw": {"type": "number"},
                "panel_quantity": {"type": "integer"},
                "total_investment": {"type": "number"},
                "monthly_savings": {"type": "number"},
                "created_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Solar Quote API",
	Description:      "Appliance load calculation, solar system sizing and cost estimation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
