package render

import (
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
)

// Renderer parses and executes HTML templates from an embedded filesystem.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses all templates from the given filesystem.
// Each page template is combined with the base layout.
func NewRenderer(fsys fs.FS) *Renderer {
	r := &Renderer{
		templates: make(map[string]*template.Template),
	}

	pages, err := fs.Glob(fsys, "*.html")
	if err != nil {
		slog.Error("failed to glob pages", "error", err)
		return r
	}

	for _, page := range pages {
		name := filepath.Base(page)
		if name == "base.html" {
			continue
		}

		tmpl, err := template.New("").ParseFS(fsys, "base.html", page)
		if err != nil {
			slog.Error("failed to parse template", "page", name, "error", err)
			continue
		}
		r.templates[name] = tmpl
	}

	return r
}

// Render executes the named page template inside the base layout.
// It injects the CSRF token from the cookie so forms can reference
// {{.CSRFToken}}.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, tmpl string, data map[string]interface{}) {
	t, ok := r.templates[tmpl]
	if !ok {
		slog.Error("template not found", "name", tmpl)
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	if cookie, err := req.Cookie("csrf_token"); err == nil {
		data["CSRFToken"] = cookie.Value
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		slog.Error("failed to execute template", "name", tmpl, "error", err)
	}
}
