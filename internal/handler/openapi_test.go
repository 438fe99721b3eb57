package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

const swagger2Fixture = `{
	"swagger": "2.0",
	"info": {"title": "Loan Ledger API", "version": "1.0"},
	"paths": {
		"/loans/{id}/payments": {
			"post": {
				"consumes": ["application/json"],
				"parameters": [
					{"type": "string", "description": "Loan ID", "name": "id", "in": "path", "required": true},
					{"description": "Payment", "name": "request", "in": "body", "required": true,
					 "schema": {"$ref": "#/definitions/handler.RecordPaymentRequest"}}
				],
				"responses": {
					"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.LoanDetailResponse"}},
					"204": {"description": "No Content"}
				}
			}
		},
		"/loans/{id}/attachments": {
			"post": {
				"consumes": ["multipart/form-data"],
				"parameters": [
					{"type": "file", "description": "Receipt image", "name": "file", "in": "formData", "required": true},
					{"type": "string", "description": "Event ID", "name": "eventId", "in": "formData"}
				],
				"responses": {"201": {"description": "Created"}}
			}
		}
	},
	"definitions": {
		"handler.LoanDetailResponse": {
			"type": "object",
			"properties": {"timeline": {"type": "array", "items": {"$ref": "#/definitions/handler.TimelineEntryResponse"}}}
		}
	},
	"securityDefinitions": {"BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}}
}`

func convertFixture(t *testing.T) (OpenAPIDocument, string) {
	t.Helper()
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(swagger2Fixture), &doc); err != nil {
		t.Fatalf("Failed to parse fixture: %v", err)
	}
	converted := convertSwagger2(doc, []OpenAPIServer{{URL: "http://ledger.test/api/v1"}})
	out, err := json.Marshal(converted)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	return converted, string(out)
}

func TestConvertSwagger2_BodyBecomesRequestBody(t *testing.T) {
	doc, raw := convertFixture(t)

	if doc.OpenAPI != "3.0.3" {
		t.Errorf("Expected openapi 3.0.3, got %s", doc.OpenAPI)
	}
	if strings.Contains(raw, "#/definitions/") {
		t.Error("Expected every $ref to point at components/schemas")
	}

	op := asMap(asMap(doc.Paths["/loans/{id}/payments"])["post"])
	body := asMap(op["requestBody"])
	if body["required"] != true {
		t.Errorf("Expected required request body, got %v", body)
	}
	schema := asMap(asMap(asMap(body["content"])["application/json"])["schema"])
	if schema["$ref"] != "#/components/schemas/handler.RecordPaymentRequest" {
		t.Errorf("Unexpected body schema %v", schema)
	}

	params := asSlice(op["parameters"])
	if len(params) != 1 {
		t.Fatalf("Expected only the path parameter, got %v", params)
	}
	path := asMap(params[0])
	if asMap(path["schema"])["type"] != "string" || path["type"] != nil {
		t.Errorf("Expected type moved under schema, got %v", path)
	}
}

func TestConvertSwagger2_ResponsesAndForms(t *testing.T) {
	doc, _ := convertFixture(t)

	payments := asMap(asMap(doc.Paths["/loans/{id}/payments"])["post"])
	responses := asMap(payments["responses"])
	ok := asMap(responses["200"])
	if _, has := asMap(ok["content"])["application/json"]; !has {
		t.Errorf("Expected JSON content on 200, got %v", ok)
	}
	if _, has := asMap(responses["204"])["content"]; has {
		t.Error("Expected no content on 204")
	}

	upload := asMap(asMap(doc.Paths["/loans/{id}/attachments"])["post"])
	form := asMap(asMap(asMap(asMap(upload["requestBody"])["content"])["multipart/form-data"])["schema"])
	file := asMap(asMap(form["properties"])["file"])
	if file["type"] != "string" || file["format"] != "binary" {
		t.Errorf("Expected binary file property, got %v", file)
	}
	required := asSlice(form["required"])
	if len(required) != 1 || required[0] != "file" {
		t.Errorf("Expected file required, got %v", required)
	}
	if _, has := upload["parameters"]; has {
		t.Error("Expected form fields removed from parameters")
	}

	if _, has := doc.Components["securitySchemes"]; !has {
		t.Error("Expected security schemes in components")
	}
}

func TestOpenAPIHandler_Serve(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	req.Host = "ledger.test:8080"
	rec := httptest.NewRecorder()

	h := NewOpenAPIHandler("https://api.loan-ledger.app/")
	if err := h.Serve(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var doc OpenAPIDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if len(doc.Servers) != 2 {
		t.Fatalf("Expected request and public servers, got %+v", doc.Servers)
	}
	if doc.Servers[0].URL != "http://ledger.test:8080/api/v1" {
		t.Errorf("Unexpected request server %s", doc.Servers[0].URL)
	}
	if doc.Servers[1].URL != "https://api.loan-ledger.app/api/v1" {
		t.Errorf("Unexpected public server %s", doc.Servers[1].URL)
	}
	if _, ok := doc.Paths["/loans"]; !ok {
		t.Error("Expected /loans in paths")
	}
}
