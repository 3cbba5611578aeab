package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"logistics-service/internal/catalog"
	"logistics-service/internal/platform/obs"
)

type object = map[string]any

// SchemaHandler serves the OpenAPI 3 document built from the catalog, as
// YAML by default or JSON with ?format=json.
type SchemaHandler struct {
	doc object
}

func NewSchemaHandler(title, version string) *SchemaHandler {
	return &SchemaHandler{doc: OpenAPIDocument(title, version)}
}

func (h *SchemaHandler) Schema(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "json") {
		writeJSON(w, r, http.StatusOK, h.doc)
		return
	}

	out, err := yaml.Marshal(h.doc)
	if err != nil {
		obs.Logger(r.Context()).Error("encode schema failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.oai.openapi; charset=utf-8")
	_, _ = w.Write(out)
}

const swaggerPage = `<!DOCTYPE html>
<html>
<head>
<title>Logistics API</title>
<meta charset="utf-8">
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: "/api/schema/?format=json", dom_id: "#swagger-ui"});
</script>
</body>
</html>
`

const redocPage = `<!DOCTYPE html>
<html>
<head>
<title>Logistics API</title>
<meta charset="utf-8">
</head>
<body>
<redoc spec-url="/api/schema/?format=json"></redoc>
<script src="https://cdn.jsdelivr.net/npm/redoc@2/bundles/redoc.standalone.js"></script>
</body>
</html>
`

func (h *SchemaHandler) Swagger(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, swaggerPage)
}

func (h *SchemaHandler) Redoc(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, redocPage)
}

func writeHTML(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

// OpenAPIDocument describes every collection, the token endpoints and the
// dispatch check.
func OpenAPIDocument(title, version string) object {
	paths := object{}
	schemas := object{
		"Error": object{
			"type": "object",
			"properties": object{
				"error":  object{"type": "string"},
				"kind":   object{"type": "string"},
				"fields": object{"type": "object", "additionalProperties": object{"type": "string"}},
			},
			"required": []string{"error"},
		},
		"Assignment": object{
			"type": "object",
			"properties": object{
				"mode":     object{"type": "string", "enum": []string{"GROUND", "AIR"}},
				"vehicle":  object{"type": "integer"},
				"driver":   object{"type": "integer"},
				"aircraft": object{"type": "integer"},
				"pilot":    object{"type": "integer"},
			},
		},
	}

	for _, e := range catalog.All() {
		name := schemaName(e)
		schemas[name] = entitySchema(e)
		schemas["Paginated"+name+"List"] = object{
			"type": "object",
			"properties": object{
				"count":    object{"type": "integer"},
				"next":     object{"type": "string", "format": "uri", "nullable": true},
				"previous": object{"type": "string", "format": "uri", "nullable": true},
				"results":  object{"type": "array", "items": ref(name)},
			},
		}

		base := "/api/" + e.Path + "/"
		paths[base] = object{
			"get":  listOperation(e, name),
			"post": writeOperation(e, name, "Create "+strings.ToLower(e.Label), "201"),
		}
		paths[base+"{id}/"] = object{
			"parameters": []object{{"name": "id", "in": "path", "required": true, "schema": object{"type": "integer"}}},
			"get":        readOperation(e, name),
			"put":        writeOperation(e, name, "Replace "+strings.ToLower(e.Label), "200"),
			"patch":      writeOperation(e, name, "Partially update "+strings.ToLower(e.Label), "200"),
			"delete": object{
				"tags":      []string{e.Path},
				"summary":   "Delete " + strings.ToLower(e.Label),
				"responses": object{"204": object{"description": "Deleted"}, "404": errorResponse("Not found"), "409": errorResponse("Still referenced")},
			},
		}
	}

	paths["/api/dispatches/validate/"] = object{
		"post": object{
			"tags":        []string{"dispatches"},
			"summary":     "Check a dispatch candidate without saving it",
			"requestBody": object{"required": true, "content": jsonContent(ref("Dispatch"))},
			"responses": object{
				"200": object{"description": "Valid", "content": jsonContent(object{
					"type": "object",
					"properties": object{
						"valid":      object{"type": "boolean"},
						"assignment": ref("Assignment"),
					},
				})},
				"400": errorResponse("Rejected"),
			},
		},
	}
	paths["/api/token/"] = tokenPath("Obtain an access/refresh token pair",
		object{"username": object{"type": "string"}, "password": object{"type": "string", "writeOnly": true}},
		object{"access": object{"type": "string"}, "refresh": object{"type": "string"}})
	paths["/api/token/refresh/"] = tokenPath("Exchange a refresh token for an access token",
		object{"refresh": object{"type": "string"}},
		object{"access": object{"type": "string"}})

	return object{
		"openapi": "3.0.3",
		"info":    object{"title": title, "version": version},
		"paths":   paths,
		"components": object{
			"schemas": schemas,
			"securitySchemes": object{
				"jwtAuth":    object{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"},
				"cookieAuth": object{"type": "apiKey", "in": "cookie", "name": "sessionid"},
			},
		},
		"security": []object{{"jwtAuth": []string{}}, {"cookieAuth": []string{}}},
	}
}

func schemaName(e *catalog.Entity) string {
	return strings.ReplaceAll(e.Label, " ", "")
}

func ref(name string) object {
	return object{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema object) object {
	return object{"application/json": object{"schema": schema}}
}

func errorResponse(desc string) object {
	return object{"description": desc, "content": jsonContent(ref("Error"))}
}

func fieldSchema(f catalog.Field) object {
	s := object{}
	switch f.Kind {
	case catalog.Text:
		s["type"] = "string"
	case catalog.Email:
		s["type"], s["format"] = "string", "email"
	case catalog.Integer:
		s["type"], s["minimum"] = "integer", 0
	case catalog.Decimal:
		s["type"], s["format"], s["minimum"] = "number", "double", 0
	case catalog.Boolean:
		s["type"] = "boolean"
	case catalog.Date:
		s["type"], s["format"] = "string", "date"
	case catalog.Choice:
		s["type"], s["enum"] = "string", f.Choices
	case catalog.Reference:
		s["type"] = "integer"
		s["description"] = "id of the referenced " + f.Ref
	}
	if f.MaxLen > 0 {
		s["maxLength"] = f.MaxLen
	}
	if f.Default != nil {
		s["default"] = f.Default
	}
	if f.ReadOnly {
		s["readOnly"] = true
	}
	if !f.Required && f.Kind != catalog.Text && f.Kind != catalog.Email && f.Kind != catalog.Boolean {
		s["nullable"] = true
	}
	return s
}

func entitySchema(e *catalog.Entity) object {
	props := object{"id": object{"type": "integer", "readOnly": true}}
	var required []string
	for _, f := range e.Fields {
		props[f.Name] = fieldSchema(f)
		if f.Required && f.Default == nil {
			required = append(required, f.Name)
		}
	}
	for _, c := range e.Computed {
		if c == "assignment" {
			s := ref("Assignment")
			props[c] = object{"allOf": []object{s}, "readOnly": true, "nullable": true}
		}
	}

	s := object{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func listOperation(e *catalog.Entity, name string) object {
	params := []object{
		{"name": pageParam, "in": "query", "schema": object{"type": "integer"}},
		{"name": searchParam, "in": "query", "schema": object{"type": "string"}},
		{"name": orderingParam, "in": "query", "schema": object{"type": "string"},
			"description": "one of: " + strings.Join(e.Ordering, ", ") + " (prefix with - for descending)"},
	}
	for _, flt := range e.Filters {
		f, _ := e.Field(flt.Field)
		schema := fieldSchema(f)
		if flt.Op == catalog.Contains {
			schema = object{"type": "string"}
		}
		delete(schema, "readOnly")
		params = append(params, object{"name": flt.Param, "in": "query", "description": flt.Label, "schema": schema})
	}

	op := object{
		"tags":       []string{e.Path},
		"summary":    "List " + strings.ToLower(e.LabelPlural),
		"parameters": params,
		"responses": object{
			"200": object{"description": "A page of results", "content": jsonContent(ref("Paginated" + name + "List"))},
			"400": errorResponse("Invalid filter or ordering"),
			"404": errorResponse("Invalid page"),
		},
	}
	if e.PublicRead {
		op["security"] = []object{{}}
	}
	return op
}

func readOperation(e *catalog.Entity, name string) object {
	op := object{
		"tags":    []string{e.Path},
		"summary": "Retrieve " + strings.ToLower(e.Label),
		"responses": object{
			"200": object{"description": "The record", "content": jsonContent(ref(name))},
			"404": errorResponse("Not found"),
		},
	}
	if e.PublicRead {
		op["security"] = []object{{}}
	}
	return op
}

func writeOperation(e *catalog.Entity, name, summary, status string) object {
	return object{
		"tags":        []string{e.Path},
		"summary":     summary,
		"requestBody": object{"required": true, "content": jsonContent(ref(name))},
		"responses": object{
			status: object{"description": "The stored record", "content": jsonContent(ref(name))},
			"400":  errorResponse("Rejected"),
			"401":  errorResponse("Not authenticated"),
		},
	}
}

func tokenPath(summary string, request, response object) object {
	return object{
		"post": object{
			"tags":        []string{"token"},
			"summary":     summary,
			"security":    []object{},
			"requestBody": object{"required": true, "content": jsonContent(object{"type": "object", "properties": request})},
			"responses": object{
				"200": object{"description": "Tokens", "content": jsonContent(object{"type": "object", "properties": response})},
				"401": errorResponse("Invalid credentials or token"),
			},
		},
	}
}
