package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/fortuna/loan-ledger/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

const openAPIVersion = "3.0.3"

// OpenAPIDocument is the subset of an OpenAPI 3.0 document the converter produces
type OpenAPIDocument struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []OpenAPIServer        `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// OpenAPIServer is one entry of the servers list
type OpenAPIServer struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// OpenAPIHandler serves the generated Swagger 2.0 document as OpenAPI 3.0
type OpenAPIHandler struct {
	publicURL string
}

// NewOpenAPIHandler creates an OpenAPIHandler. publicURL, when set, is listed
// after the server answering the request.
func NewOpenAPIHandler(publicURL string) *OpenAPIHandler {
	return &OpenAPIHandler{publicURL: strings.TrimRight(publicURL, "/")}
}

// Serve handles GET /openapi.json
func (h *OpenAPIHandler) Serve(c echo.Context) error {
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return HandleServiceError(c, err, "read API document")
	}
	var swagger2 map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &swagger2); err != nil {
		return HandleServiceError(c, err, "parse API document")
	}
	return c.JSON(http.StatusOK, convertSwagger2(swagger2, h.servers(c)))
}

func (h *OpenAPIHandler) servers(c echo.Context) []OpenAPIServer {
	base := docs.SwaggerInfo.BasePath
	servers := []OpenAPIServer{{
		URL:         c.Scheme() + "://" + c.Request().Host + base,
		Description: "This server",
	}}
	if h.publicURL != "" && h.publicURL+base != servers[0].URL {
		servers = append(servers, OpenAPIServer{URL: h.publicURL + base, Description: "Public"})
	}
	return servers
}

// convertSwagger2 rewrites a swag document into OpenAPI 3.0: body and form
// parameters become request bodies, response schemas move under content, and
// definitions move to components.
func convertSwagger2(doc map[string]interface{}, servers []OpenAPIServer) OpenAPIDocument {
	consumes := mediaTypes(doc["consumes"], "application/json")
	produces := mediaTypes(doc["produces"], "application/json")

	out := OpenAPIDocument{
		OpenAPI:    openAPIVersion,
		Info:       asMap(doc["info"]),
		Servers:    servers,
		Paths:      map[string]interface{}{},
		Components: map[string]interface{}{},
	}

	for path, item := range asMap(doc["paths"]) {
		ops := map[string]interface{}{}
		for method, op := range asMap(item) {
			ops[method] = convertOperation(asMap(op), consumes, produces)
		}
		out.Paths[path] = ops
	}

	if defs := asMap(doc["definitions"]); len(defs) > 0 {
		out.Components["schemas"] = rewriteRefs(defs)
	}
	if schemes := asMap(doc["securityDefinitions"]); len(schemes) > 0 {
		out.Components["securitySchemes"] = schemes
	}
	return out
}

func convertOperation(op map[string]interface{}, consumes, produces []string) map[string]interface{} {
	consumes = mediaTypes(op["consumes"], consumes...)
	produces = mediaTypes(op["produces"], produces...)

	out := map[string]interface{}{}
	for key, value := range op {
		switch key {
		case "parameters", "responses", "consumes", "produces":
		default:
			out[key] = value
		}
	}

	var params []interface{}
	form := map[string]interface{}{}
	var formRequired []interface{}
	for _, p := range asSlice(op["parameters"]) {
		param := asMap(p)
		switch param["in"] {
		case "body":
			body := map[string]interface{}{
				"required": param["required"] == true,
				"content":  contentOf(consumes, rewriteRefs(param["schema"])),
			}
			if d, ok := param["description"]; ok {
				body["description"] = d
			}
			out["requestBody"] = body
		case "formData":
			name, _ := param["name"].(string)
			form[name] = formProperty(param)
			if param["required"] == true {
				formRequired = append(formRequired, name)
			}
		default:
			params = append(params, convertParameter(param))
		}
	}
	if len(form) > 0 {
		schema := map[string]interface{}{"type": "object", "properties": form}
		if len(formRequired) > 0 {
			schema["required"] = formRequired
		}
		out["requestBody"] = map[string]interface{}{
			"content": map[string]interface{}{"multipart/form-data": map[string]interface{}{"schema": schema}},
		}
	}
	if len(params) > 0 {
		out["parameters"] = params
	}

	responses := map[string]interface{}{}
	for status, r := range asMap(op["responses"]) {
		resp := asMap(r)
		converted := map[string]interface{}{"description": resp["description"]}
		if schema, ok := resp["schema"]; ok {
			converted["content"] = contentOf(produces, rewriteRefs(schema))
		}
		responses[status] = converted
	}
	out["responses"] = responses
	return out
}

// convertParameter moves the type fields of a path, query or header parameter under schema
func convertParameter(param map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	schema := map[string]interface{}{}
	for key, value := range param {
		switch key {
		case "type", "format", "enum", "default", "minimum", "maximum", "items":
			schema[key] = rewriteRefs(value)
		default:
			out[key] = value
		}
	}
	if len(schema) > 0 {
		out["schema"] = schema
	}
	return out
}

func formProperty(param map[string]interface{}) map[string]interface{} {
	prop := map[string]interface{}{"type": param["type"]}
	if param["type"] == "file" {
		prop = map[string]interface{}{"type": "string", "format": "binary"}
	}
	if d, ok := param["description"]; ok {
		prop["description"] = d
	}
	return prop
}

func contentOf(types []string, schema interface{}) map[string]interface{} {
	content := map[string]interface{}{}
	for _, t := range types {
		content[t] = map[string]interface{}{"schema": schema}
	}
	return content
}

// rewriteRefs points every $ref at components/schemas
func rewriteRefs(v interface{}) interface{} {
	switch node := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(node))
		for key, value := range node {
			if ref, ok := value.(string); ok && key == "$ref" {
				out[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			out[key] = rewriteRefs(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(node))
		for i, item := range node {
			out[i] = rewriteRefs(item)
		}
		return out
	default:
		return v
	}
}

func mediaTypes(v interface{}, fallback ...string) []string {
	var out []string
	for _, t := range asSlice(v) {
		if s, ok := t.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}
