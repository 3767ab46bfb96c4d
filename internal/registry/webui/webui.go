// Package webui renders the two out-of-scope HTML pages named in spec.md
// §1 as placeholders: the landing page and a per-user account stub. Neither
// carries real data; both exist so the core's surface matches the original
// site's routes.
package webui

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Handler serves the static index and account pages.
type Handler struct{}

// NewHandler builds a webui Handler.
func NewHandler() *Handler { return &Handler{} }

// Index serves GET /.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index.html.tmpl")
}

// Me serves GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	h.render(w, "me.html.tmpl")
}

func (h *Handler) render(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, nil); err != nil {
		http.Error(w, "template render error", http.StatusInternalServerError)
	}
}

// Register mounts the webui routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /me", h.Me)
}
