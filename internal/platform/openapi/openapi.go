// Package openapi builds an OpenAPI 3.0 document for the REST resources and
// serves it together with a Swagger UI page.
package openapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

// Param is a query parameter accepted by a list route.
type Param struct {
	Name        string
	Type        string
	Format      string
	Description string
	Enum        []string
}

// Resource describes one CRUD collection, e.g. "/patients".
type Resource struct {
	// Name is the schema name, e.g. "Patient".
	Name string
	Path string
	Tag  string
	// IDSchema is the schema of the {id} path parameter.
	IDSchema map[string]interface{}
	// Schema, Create and Update are JSON schemas for the entity and its bodies.
	Schema map[string]interface{}
	Create map[string]interface{}
	Update map[string]interface{}
	Query  []Param
	// DeleteSummary overrides the delete summary, e.g. for a status change.
	DeleteSummary string
}

// SubList is a list route nested under another resource, e.g.
// "/patients/{id}/clinical-records".
type SubList struct {
	Path     string
	Tag      string
	Summary  string
	Item     string
	IDSchema map[string]interface{}
	Query    []Param
}

// Generator accumulates resources and renders the document.
type Generator struct {
	title     string
	version   string
	baseURL   string
	resources []Resource
	subLists  []SubList
}

func NewGenerator(title, version, baseURL string) *Generator {
	return &Generator{title: title, version: version, baseURL: baseURL}
}

func (g *Generator) AddResource(r Resource) *Generator {
	g.resources = append(g.resources, r)
	return g
}

func (g *Generator) AddSubList(s SubList) *Generator {
	g.subLists = append(g.subLists, s)
	return g
}

// GenerateSpec produces the OpenAPI 3.0 document as a map.
func (g *Generator) GenerateSpec() map[string]interface{} {
	paths := make(map[string]interface{})
	schemas := map[string]interface{}{
		"Error":      errorSchema(),
		"Pagination": paginationSchema(),
	}
	var tags []string

	for _, r := range g.resources {
		tags = append(tags, r.Tag)
		schemas[r.Name] = r.Schema
		schemas["Create"+r.Name] = r.Create
		schemas["Update"+r.Name] = r.Update

		idParam := pathParam(r.IDSchema)
		paths[r.Path] = map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "List " + r.Tag,
				"operationId": "list" + r.Name,
				"tags":        []string{r.Tag},
				"parameters":  append(pageParams(), queryParams(r.Query)...),
				"responses": withErrors(map[string]interface{}{
					"200": listResponse(r.Name),
				}),
			},
			"post": map[string]interface{}{
				"summary":     "Create " + r.Name,
				"operationId": "create" + r.Name,
				"tags":        []string{r.Tag},
				"requestBody": requestBody("Create" + r.Name),
				"responses": withErrors(map[string]interface{}{
					"201": dataResponse("Created", r.Name),
				}),
			},
		}

		deleteSummary := r.DeleteSummary
		if deleteSummary == "" {
			deleteSummary = "Delete " + r.Name
		}
		paths[r.Path+"/{id}"] = map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "Get " + r.Name,
				"operationId": "get" + r.Name,
				"tags":        []string{r.Tag},
				"parameters":  []map[string]interface{}{idParam},
				"responses": withErrors(map[string]interface{}{
					"200": dataResponse("OK", r.Name),
				}),
			},
			"put": map[string]interface{}{
				"summary":     "Update " + r.Name,
				"operationId": "update" + r.Name,
				"tags":        []string{r.Tag},
				"parameters":  []map[string]interface{}{idParam},
				"requestBody": requestBody("Update" + r.Name),
				"responses": withErrors(map[string]interface{}{
					"200": dataResponse("Updated", r.Name),
				}),
			},
			"delete": map[string]interface{}{
				"summary":     deleteSummary,
				"operationId": "delete" + r.Name,
				"tags":        []string{r.Tag},
				"parameters":  []map[string]interface{}{idParam},
				"responses": withErrors(map[string]interface{}{
					"200": messageResponse(),
				}),
			},
		}
	}

	for _, s := range g.subLists {
		paths[s.Path] = map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     s.Summary,
				"operationId": operationID(s.Path),
				"tags":        []string{s.Tag},
				"parameters": append(append([]map[string]interface{}{pathParam(s.IDSchema)},
					pageParams()...), queryParams(s.Query)...),
				"responses": withErrors(map[string]interface{}{
					"200": listResponse(s.Item),
				}),
			},
		}
	}

	sort.Strings(tags)
	tagList := make([]map[string]string, len(tags))
	for i, t := range tags {
		tagList[i] = map[string]string{"name": t}
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   g.title,
			"version": g.version,
		},
		"servers": []map[string]string{{"url": g.baseURL}},
		"tags":    tagList,
		"paths":   paths,
		"components": map[string]interface{}{
			"schemas": schemas,
		},
	}
}

func pathParam(schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"name": "id", "in": "path", "required": true, "schema": schema}
}

func pageParams() []map[string]interface{} {
	return []map[string]interface{}{
		{"name": "page", "in": "query", "schema": map[string]interface{}{"type": "integer", "minimum": 1, "default": 1}},
		{"name": "limit", "in": "query", "schema": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 100, "default": 10}},
	}
}

func queryParams(params []Param) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(params))
	for _, p := range params {
		schema := map[string]interface{}{"type": p.Type}
		if p.Format != "" {
			schema["format"] = p.Format
		}
		if len(p.Enum) > 0 {
			schema["enum"] = p.Enum
		}
		param := map[string]interface{}{"name": p.Name, "in": "query", "schema": schema}
		if p.Description != "" {
			param["description"] = p.Description
		}
		out = append(out, param)
	}
	return out
}

func ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"application/json": map[string]interface{}{"schema": schema},
	}
}

func requestBody(schemaName string) map[string]interface{} {
	return map[string]interface{}{"required": true, "content": jsonContent(ref(schemaName))}
}

func dataResponse(description, schemaName string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": jsonContent(map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"message": map[string]string{"type": "string"},
				"data":    ref(schemaName),
			},
		}),
	}
}

func listResponse(item string) map[string]interface{} {
	return map[string]interface{}{
		"description": "OK",
		"content": jsonContent(map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"message":    map[string]string{"type": "string"},
				"data":       map[string]interface{}{"type": "array", "items": ref(item)},
				"pagination": ref("Pagination"),
			},
		}),
	}
}

func messageResponse() map[string]interface{} {
	return map[string]interface{}{
		"description": "OK",
		"content": jsonContent(map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{"message": map[string]string{"type": "string"}},
		}),
	}
}

// withErrors adds the error responses every route can produce.
func withErrors(responses map[string]interface{}) map[string]interface{} {
	for status, desc := range map[string]string{
		"400": "Validation error or rejected state change",
		"404": "Not found",
		"429": "Too many requests",
		"500": "Internal server error",
	} {
		responses[status] = map[string]interface{}{"description": desc, "content": jsonContent(ref("Error"))}
	}
	return responses
}

func errorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"code", "errorCode", "message", "requestId"},
		"properties": map[string]interface{}{
			"code":      map[string]string{"type": "integer"},
			"errorCode": map[string]interface{}{"type": "string", "enum": []string{"NOT_FOUND", "BAD_REQUEST", "VALIDATION_ERROR", "CONFLICT", "TOO_MANY_REQUESTS", "INTERNAL_ERROR"}},
			"message":   map[string]string{"type": "string"},
			"details":   map[string]interface{}{},
			"requestId": map[string]string{"type": "string"},
		},
	}
}

func paginationSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"page":       map[string]string{"type": "integer"},
			"limit":      map[string]string{"type": "integer"},
			"total":      map[string]string{"type": "integer"},
			"totalPages": map[string]string{"type": "integer"},
		},
	}
}

// operationID turns "/patients/{id}/clinical-records" into "listPatientsIdClinicalRecords".
func operationID(path string) string {
	var b strings.Builder
	b.WriteString("list")
	for _, part := range strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '-' || r == '{' || r == '}'
	}) {
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	return b.String()
}

// RegisterRoutes serves the document at /openapi.json and Swagger UI at /docs.
func (g *Generator) RegisterRoutes(group *echo.Group) {
	spec := g.GenerateSpec()
	group.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, spec)
	})
	group.GET("/docs", func(c echo.Context) error {
		// The API-wide policy is default-src 'none'; the UI needs its CDN assets.
		c.Response().Header().Set("Content-Security-Policy", docsCSP)
		return c.HTML(http.StatusOK, swaggerUIHTML)
	})
}

const docsCSP = "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"style-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data:; frame-ancestors 'none'"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Clinic API - Swagger UI</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" >
  <style>
    html { box-sizing: border-box; overflow-y: scroll; }
    *, *:before, *:after { box-sizing: inherit; }
    body { margin: 0; background: #fafafa; }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/openapi.json",
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [
        SwaggerUIBundle.presets.apis,
        SwaggerUIBundle.SwaggerUIStandalonePreset
      ],
      layout: "BaseLayout"
    })
  </script>
</body>
</html>`
