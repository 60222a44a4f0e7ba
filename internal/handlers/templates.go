package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates renders the server-side pages.
type Templates struct {
	tmpl *template.Template
}

// ParseTemplates parses the embedded page templates.
func ParseTemplates() (*Templates, error) {
	tmpl, err := template.New("pages").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Templates{tmpl: tmpl}, nil
}

// render buffers the page before writing the status.
func (t *Templates) render(w http.ResponseWriter, name string, status int, data any) {
	var buf bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Log.Errorw("failed to render page", "template", name, "err", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
