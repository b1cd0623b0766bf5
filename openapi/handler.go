package openapi

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"

	"github.com/vitalvas/autoroute/router"
)

// DocsUI selects which interactive documentation UI to serve.
type DocsUI int

const (
	DocsSwaggerUI DocsUI = iota
	DocsRedoc
)

// HandleConfig configures the endpoints registered by Handle.
type HandleConfig struct {
	// UI selects the interactive docs UI (default: DocsSwaggerUI).
	UI DocsUI

	// Title overrides the HTML page title (default: the document info.title).
	Title string

	// JSONFilename is the path for the JSON endpoint (default: "schema.json").
	// Set to "-" to disable. Relative paths are joined with the base path,
	// absolute paths are used as is.
	JSONFilename string

	// YAMLFilename is the path for the YAML endpoint (default: "schema.yaml").
	// Set to "-" to disable.
	YAMLFilename string

	// DisableDocs disables the interactive HTML docs endpoint.
	DisableDocs bool
}

func (cfg HandleConfig) jsonFilename() string {
	if cfg.JSONFilename == "" {
		return "schema.json"
	}
	return cfg.JSONFilename
}

func (cfg HandleConfig) yamlFilename() string {
	if cfg.YAMLFilename == "" {
		return "schema.yaml"
	}
	return cfg.YAMLFilename
}

// resolvePath returns the route path for a filename under basePath.
func resolvePath(basePath, filename string) string {
	if strings.HasPrefix(filename, "/") {
		return filename
	}
	return basePath + "/" + filename
}

// docCache generates the document once and keeps its encodings.
type docCache struct {
	gen *Generator

	once sync.Once
	doc  Document
	err  error

	mu        sync.Mutex
	encoded   map[Format][]byte
	encodeErr map[Format]error
}

func (c *docCache) document(ctx context.Context) (Document, error) {
	c.once.Do(func() {
		defer func() {
			if rv := recover(); rv != nil {
				c.err = fmt.Errorf("openapi: generate: %v", rv)
			}
		}()
		c.doc, c.err = c.gen.Generate(context.WithoutCancel(ctx))
	})
	return c.doc, c.err
}

func (c *docCache) encode(ctx context.Context, format Format) ([]byte, error) {
	doc, err := c.document(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if data, ok := c.encoded[format]; ok {
		return data, c.encodeErr[format]
	}

	var buf bytes.Buffer
	err = Encode(&buf, doc, format)
	c.encoded[format] = buf.Bytes()
	c.encodeErr[format] = err

	return buf.Bytes(), err
}

// Handle registers documentation endpoints under basePath on r:
//
//	<basePath>/            - interactive HTML docs (unless DisableDocs)
//	<JSONFilename path>    - document as JSON (unless JSONFilename is "-")
//	<YAMLFilename path>    - document as YAML (unless YAMLFilename is "-")
//
// The document is generated on the first request and cached. Pass nil for
// the default config.
func (g *Generator) Handle(r *router.Router, basePath string, cfg *HandleConfig) {
	if cfg == nil {
		cfg = &HandleConfig{}
	}
	basePath = strings.TrimRight(basePath, "/")

	cache := &docCache{
		gen:       g,
		encoded:   make(map[Format][]byte),
		encodeErr: make(map[Format]error),
	}

	var jsonPath, yamlPath string

	if name := cfg.jsonFilename(); name != "-" {
		jsonPath = resolvePath(basePath, name)
		r.Get(jsonPath, router.Handle(cache.handler(FormatJSON, "application/json")))
	}

	if name := cfg.yamlFilename(); name != "-" {
		yamlPath = resolvePath(basePath, name)
		r.Get(yamlPath, router.Handle(cache.handler(FormatYAML, "application/x-yaml")))
	}

	if cfg.DisableDocs {
		return
	}

	specURL := jsonPath
	if specURL == "" {
		specURL = yamlPath
	}
	if specURL == "" {
		return
	}

	docs := router.Handle(cache.docsHandler(cfg, specURL))
	if basePath == "" {
		r.Get("/", docs)
		return
	}
	r.Get(basePath, docs)
	r.Get(basePath+"/", docs)
}

func (c *docCache) handler(format Format, contentType string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		data, err := c.encode(req.Context(), format)
		if err != nil {
			http.Error(w, "failed to generate OpenAPI document", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})
}

func (c *docCache) docsHandler(cfg *HandleConfig, specURL string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		title := cfg.Title
		if title == "" {
			doc, err := c.document(req.Context())
			if err != nil {
				http.Error(w, "failed to generate OpenAPI document", http.StatusInternalServerError)
				return
			}
			title = documentTitle(doc)
		}

		var page string
		switch cfg.UI {
		case DocsRedoc:
			page = redocTemplate(title, specURL)
		default:
			page = swaggerUITemplate(title, specURL)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(page))
	})
}

// documentTitle returns info.title, or "API" when it is not a string.
func documentTitle(doc Document) string {
	if info, ok := doc["info"].(map[string]any); ok {
		if title, ok := info["title"].(string); ok && title != "" {
			return title
		}
	}
	return "API"
}

func swaggerUITemplate(title, specPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: %q, dom_id: "#swagger-ui"});
</script>
</body>
</html>`, html.EscapeString(title), specPath)
}

func redocTemplate(title, specPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
</head>
<body>
<redoc spec-url=%q></redoc>
<script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`, html.EscapeString(title), specPath)
}
