// Package docs serves the OpenAPI document and the Swagger UI and ReDoc
// pages. The UI assets are loaded from the local static directory.
package docs

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed openapi.json
var openAPIDocument []byte

//go:embed templates/*.html
var templateFS embed.FS

type Options struct {
	APIName    string
	Version    string
	BasePath   string
	MainSite   string
	StaticDir  string
	Favicon    string
	RedocJS    string
	SwaggerJS  string
	SwaggerCSS string
}

type Handler struct {
	opts  Options
	spec  []byte
	pages *template.Template
}

type pageData struct {
	Title         string
	OpenAPIURL    string
	OAuth2URL     string
	SwaggerJSURL  string
	SwaggerCSSURL string
	RedocJSURL    string
	FaviconURL    string
}

func New(opts Options) (*Handler, error) {
	spec, err := renderSpec(opts)
	if err != nil {
		return nil, err
	}
	pages, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse docs templates failed: %w", err)
	}
	return &Handler{opts: opts, spec: spec, pages: pages}, nil
}

func (h *Handler) OpenAPIPath() string { return h.opts.BasePath + "/openapi.json" }
func (h *Handler) SwaggerPath() string { return h.opts.BasePath + "/docs" }
func (h *Handler) RedocPath() string   { return h.opts.BasePath + "/redoc" }
func (h *Handler) OAuth2Path() string  { return h.opts.BasePath + "/docs/oauth2-redirect" }

func (h *Handler) OpenAPI(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", h.spec)
}

func (h *Handler) Swagger(c *gin.Context) {
	h.render(c, "swagger.html", h.title()+" - Swagger Docs")
}

func (h *Handler) Redoc(c *gin.Context) {
	h.render(c, "redoc.html", h.title()+" - ReDoc")
}

func (h *Handler) OAuth2Redirect(c *gin.Context) {
	h.render(c, "oauth2-redirect.html", h.title())
}

func (h *Handler) render(c *gin.Context, name, title string) {
	data := pageData{
		Title:         title,
		OpenAPIURL:    h.OpenAPIPath(),
		OAuth2URL:     h.OAuth2Path(),
		SwaggerJSURL:  h.staticURL(h.opts.SwaggerJS),
		SwaggerCSSURL: h.staticURL(h.opts.SwaggerCSS),
		RedocJSURL:    h.staticURL(h.opts.RedocJS),
		FaviconURL:    h.staticURL(h.opts.Favicon),
	}
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, name, data); err != nil {
		c.String(http.StatusInternalServerError, "render docs page failed")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) title() string {
	return h.opts.APIName + " API"
}

func (h *Handler) staticURL(file string) string {
	return h.opts.BasePath + "/" + strings.Trim(h.opts.StaticDir, "/") + "/" + file
}

func renderSpec(opts Options) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(openAPIDocument, &doc); err != nil {
		return nil, fmt.Errorf("decode openapi document failed: %w", err)
	}

	description := fmt.Sprintf("This is the %s API.\n\nYou can check the docs at %s/docs and %s/redoc.",
		opts.APIName, opts.BasePath, opts.BasePath)
	if opts.MainSite != "" {
		description += " " + opts.MainSite
	}
	info, _ := doc["info"].(map[string]any)
	if info == nil {
		info = map[string]any{}
	}
	info["title"] = opts.APIName + " API"
	info["description"] = description
	if opts.Version != "" {
		info["version"] = opts.Version
	}
	doc["info"] = info
	doc["servers"] = []map[string]string{
		{"url": opts.BasePath + "/v1"},
		{"url": opts.BasePath + "/latest"},
		{"url": opts.BasePath},
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi document failed: %w", err)
	}
	return out, nil
}
